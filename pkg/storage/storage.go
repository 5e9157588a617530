// Package storage provides persistent clock settings using LittleFS.
// It handles atomic writes, version checking, and cleanup of temporary files.
package storage

import (
	"errors"
	"os"
	"path"
	"strings"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	configDir  = "/config"
	configFile = "/config/clock.bin"
	tempSuffix = ".tmp"

	// configOverhead approximates LittleFS metadata per file.
	configOverhead = 32
	dirOverhead    = 100
)

var (
	ErrConfigNotFound  = errors.New("config not found")
	ErrFlashFull       = errors.New("insufficient flash space")
	ErrInvalidConfig   = errors.New("invalid config data")
	ErrVersionMismatch = errors.New("config version mismatch")
	ErrFilesystem      = errors.New("filesystem error")
)

// Manager handles config persistence using LittleFS.
type Manager struct {
	fs       *littlefs.LFS
	blockDev tinyfs.BlockDevice
	mounted  bool
	wiped    bool
}

// Stats provides information about storage usage.
type Stats struct {
	TotalSpace    int64
	UsedSpace     int64
	FreeSpace     int64
	ConfigPresent bool
	WipedAtBoot   bool // true if a config version mismatch was wiped on mount
}

// New initializes the storage system with the given block device.
// It mounts the filesystem and performs boot-time cleanup.
// If format is true and mount fails, it will format the filesystem.
func New(blockDev tinyfs.BlockDevice, format bool) (*Manager, error) {
	lfs := littlefs.New(blockDev)

	// Conservative settings for small NOR flash
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	err := lfs.Mount()
	if err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		fs:       lfs,
		blockDev: blockDev,
		mounted:  true,
	}

	// A failed cleanup leaves stray temp files but the config is still usable.
	_ = m.bootCleanup()

	needsWipe, err := m.checkVersion()
	if err != nil {
		// Unreadable config is treated like first boot
		needsWipe = false
	}
	if needsWipe {
		// Settings written by other firmware are discarded, defaults apply
		if err := m.wipeAll(); err != nil {
			return nil, err
		}
		m.wiped = true
	}

	return m, nil
}

// Close unmounts the filesystem.
func (m *Manager) Close() error {
	if m.mounted {
		m.mounted = false
		return m.fs.Unmount()
	}
	return nil
}

// bootCleanup removes temporary files left over from interrupted writes.
func (m *Manager) bootCleanup() error {
	entries, err := m.readDir(configDir)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, tempSuffix) {
			m.fs.Remove(path.Join(configDir, name))
		}
	}
	return nil
}

// readDir reads the directory entries at the given path.
func (m *Manager) readDir(dirPath string) ([]os.FileInfo, error) {
	f, err := m.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.IsDir() {
		return nil, errors.New("not a directory")
	}

	return f.Readdir(-1)
}

// checkVersion reads the stored config and reports whether it must be wiped.
func (m *Manager) checkVersion() (bool, error) {
	var cfg config.ClockConfig
	err := m.LoadConfig(&cfg)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrVersionMismatch):
		return true, nil
	case errors.Is(err, ErrConfigNotFound):
		return false, nil
	default:
		return false, err
	}
}

// wipeAll removes all configuration files.
func (m *Manager) wipeAll() error {
	err := m.fs.Remove(configFile)
	if err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

// ensureDirs creates the config directory if it doesn't exist.
func (m *Manager) ensureDirs() error {
	if err := m.fs.Mkdir(configDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

// isExist checks if an error is "already exists".
// LittleFS errors don't always match os.IsExist, so we check the message too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// isNotExist is isExist for missing entries.
func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "No directory entry")
}

// LoadConfig loads the clock configuration.
// A config written with another format version returns ErrVersionMismatch.
func (m *Manager) LoadConfig(cfg *config.ClockConfig) error {
	f, err := m.fs.Open(configFile)
	if err != nil {
		if isNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}
	defer f.Close()

	buf := make([]byte, config.Size)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != config.Size {
		return ErrInvalidConfig
	}

	var loaded config.ClockConfig
	if err := loaded.UnmarshalBinary(buf); err != nil {
		return err
	}
	if loaded.Version != config.CurrentVersion {
		return ErrVersionMismatch
	}
	if err := loaded.Validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	*cfg = loaded
	return nil
}

// SaveConfig validates and saves the clock configuration atomically.
func (m *Manager) SaveConfig(cfg *config.ClockConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := m.ensureDirs(); err != nil {
		return err
	}

	// Set version
	cfg.Version = config.CurrentVersion

	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}

	return m.atomicWrite(configFile, data)
}

// ConfigExists checks if a config has been saved.
func (m *Manager) ConfigExists() bool {
	return m.fileExists(configFile)
}

func (m *Manager) fileExists(name string) bool {
	f, err := m.fs.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// GetStats returns storage statistics.
func (m *Manager) GetStats() (*Stats, error) {
	// LittleFS doesn't have a direct "free space" call, so usage is estimated
	present := m.ConfigExists()
	used := int64(dirOverhead)
	if present {
		used += config.Size + configOverhead
	}

	total := m.blockDev.Size()

	return &Stats{
		TotalSpace:    total,
		UsedSpace:     used,
		FreeSpace:     total - used,
		ConfigPresent: present,
		WipedAtBoot:   m.wiped,
	}, nil
}

// atomicWrite writes data to a temporary file, syncs it, then renames.
// The original file is never in a partially written state.
func (m *Manager) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix

	// Remove temp file if it exists (from interrupted previous write)
	m.fs.Remove(tempPath)

	f, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tempPath)
		return err
	}

	// Sync ensures data hits flash
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			m.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	// LittleFS rename doesn't replace
	m.fs.Remove(filepath)

	if err := m.fs.Rename(tempPath, filepath); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	return nil
}

// ForceWipe erases the stored configuration (factory reset).
func (m *Manager) ForceWipe() error {
	return m.wipeAll()
}
