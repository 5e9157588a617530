// Package protocol implements the binary serial protocol used to configure
// the clock from a PC. It is simple enough for TinyGo and allocation-light.
//
// Frame format:
//
//	[SYNC:1][CMD:1][LEN:2][PAYLOAD:LEN][CRC:2]
//	- SYNC: 0xAA (frame start marker)
//	- CMD: Command byte
//	- LEN: Payload length (uint16, little-endian)
//	- PAYLOAD: Variable length data
//	- CRC: CRC16-CCITT of [CMD][LEN][PAYLOAD]
//
// Response format is identical with a status byte in place of CMD.
package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	SyncByte = 0xAA

	// MaxPayload bounds the LEN field.
	MaxPayload = 1024

	// Command codes (PC → Device)
	CmdGetConfig       = 0x01
	CmdSetConfig       = 0x02
	CmdSetDimLevel     = 0x03
	CmdSetTime         = 0x04
	CmdGetStatus       = 0x05
	CmdListZones       = 0x06
	CmdGetStorageStats = 0x07
	CmdPing            = 0x08
	CmdFactoryReset    = 0x09
	CmdGetVersion      = 0x10
	CmdDiscover        = 0x11

	// Response status codes (Device → PC)
	StatusOK              = 0x00
	StatusError           = 0x01
	StatusInvalidCmd      = 0x02
	StatusInvalidData     = 0x03
	StatusNotFound        = 0x04
	StatusNoSpace         = 0x05
	StatusVersionMismatch = 0x06
	StatusCRCError        = 0x07
	StatusUnsupported     = 0x08
)

// DiscoverReply identifies the device to a scanning host.
const DiscoverReply = "nixie-clock"

var (
	ErrInvalidFrame = errors.New("invalid frame")
	ErrCRCMismatch  = errors.New("CRC mismatch")
	ErrTimeout      = errors.New("timeout")
)

// Frame represents a protocol frame.
type Frame struct {
	Cmd     uint8
	Payload []byte
}

// Response represents a protocol response.
type Response struct {
	Status  uint8
	Payload []byte
}

// ReadFrame reads and validates a frame from the reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	// Read sync byte
	sync := make([]byte, 1)
	if _, err := io.ReadFull(r, sync); err != nil {
		return nil, err
	}
	if sync[0] != SyncByte {
		return nil, ErrInvalidFrame
	}

	// Read header (cmd + len)
	header := make([]byte, 3)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	cmd := header[0]
	length := binary.LittleEndian.Uint16(header[1:])

	if length > MaxPayload {
		return nil, ErrInvalidFrame
	}

	var payload []byte
	if length > 0 {
		payload = make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	crcBytes := make([]byte, 2)
	if _, err := io.ReadFull(r, crcBytes); err != nil {
		return nil, err
	}
	receivedCRC := binary.LittleEndian.Uint16(crcBytes)

	calculatedCRC := calcCRC(append(header, payload...))
	if receivedCRC != calculatedCRC {
		return nil, ErrCRCMismatch
	}

	return &Frame{
		Cmd:     cmd,
		Payload: payload,
	}, nil
}

// WriteResponse writes a response frame to the writer.
func WriteResponse(w io.Writer, resp *Response) error {
	return writeFrame(w, resp.Status, resp.Payload)
}

// WriteFrame writes a request frame (for testing/PC side).
func WriteFrame(w io.Writer, frame *Frame) error {
	return writeFrame(w, frame.Cmd, frame.Payload)
}

// ReadResponse reads a response frame (for testing/PC side).
func ReadResponse(r io.Reader) (*Response, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}
	return &Response{Status: f.Cmd, Payload: f.Payload}, nil
}

func writeFrame(w io.Writer, code uint8, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrInvalidFrame
	}
	payloadLen := uint16(len(payload))
	frameLen := 1 + 1 + 2 + int(payloadLen) + 2 // sync + code + len + payload + crc

	buf := make([]byte, 4, frameLen)
	buf[0] = SyncByte
	buf[1] = code
	binary.LittleEndian.PutUint16(buf[2:], payloadLen)
	buf = append(buf, payload...)

	// CRC of code + len + payload
	buf = binary.LittleEndian.AppendUint16(buf, calcCRC(buf[1:]))

	_, err := w.Write(buf)
	return err
}

// calcCRC calculates CRC16-CCITT.
// Polynomial: 0x1021, Initial: 0xFFFF
func calcCRC(data []byte) uint16 {
	var crc uint16 = 0xFFFF

	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}

	return crc
}
