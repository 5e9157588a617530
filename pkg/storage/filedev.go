//go:build !tinygo

package storage

import (
	"errors"
	"fmt"
	"os"
)

// FileDevice is a tinyfs.BlockDevice backed by an image file, so the host
// build persists settings with the same LittleFS code as the device.
type FileDevice struct {
	f          *os.File
	size       int64
	pageSize   int64
	eraseBlock int64
}

// OpenFileDevice opens or creates an image of blocks*eraseBlock bytes.
// New images are filled with 0xFF like erased NOR flash.
func OpenFileDevice(name string, pageSize, eraseBlock, blocks int64) (*FileDevice, error) {
	if pageSize <= 0 || eraseBlock <= 0 || blocks <= 0 || eraseBlock%pageSize != 0 {
		return nil, errors.New("invalid block geometry")
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	d := &FileDevice{
		f:          f,
		size:       eraseBlock * blocks,
		pageSize:   pageSize,
		eraseBlock: eraseBlock,
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	switch {
	case fi.Size() == 0:
		if err := d.EraseBlocks(0, blocks); err != nil {
			f.Close()
			return nil, err
		}
	case fi.Size() != d.size:
		f.Close()
		return nil, fmt.Errorf("image %s is %d bytes, want %d", name, fi.Size(), d.size)
	}
	return d, nil
}

func (d *FileDevice) ReadAt(buf []byte, off int64) (int, error) {
	return d.f.ReadAt(buf, off)
}

func (d *FileDevice) WriteAt(buf []byte, off int64) (int, error) {
	if off+int64(len(buf)) > d.size {
		return 0, errors.New("write past end of device")
	}
	return d.f.WriteAt(buf, off)
}

func (d *FileDevice) Size() int64 { return d.size }

func (d *FileDevice) WriteBlockSize() int64 { return d.pageSize }

func (d *FileDevice) EraseBlockSize() int64 { return d.eraseBlock }

func (d *FileDevice) EraseBlocks(start, length int64) error {
	blank := make([]byte, d.eraseBlock)
	for i := range blank {
		blank[i] = 0xFF
	}
	for b := start; b < start+length; b++ {
		if _, err := d.f.WriteAt(blank, b*d.eraseBlock); err != nil {
			return err
		}
	}
	return nil
}

// Sync flushes the image to disk.
func (d *FileDevice) Sync() error { return d.f.Sync() }

func (d *FileDevice) Close() error { return d.f.Close() }
