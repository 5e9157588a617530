// Package serial runs the configuration protocol over a byte stream such
// as the USB CDC port.
package serial

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/protocol"
)

// IdleDelay is how long Handle sleeps when the port has no data.
const IdleDelay = 5 * time.Millisecond

// Port is the subset of machine.Serialer the protocol needs.
type Port interface {
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// Observer is told about every handled command.
type Observer func(cmd, status uint8)

type Serial struct {
	port    Port
	handler *protocol.Handler
	observe Observer

	inIndex  int
	inBuffer [4 + protocol.MaxPayload + 2]byte
}

func NewSerial(port Port, handler *protocol.Handler) *Serial {
	return &Serial{
		port:    port,
		handler: handler,
	}
}

// SetObserver installs fn; nil disables it.
func (s *Serial) SetObserver(fn Observer) {
	s.observe = fn
}

// Handle polls the port forever.
func (s *Serial) Handle() {
	for {
		if !s.Poll() {
			time.Sleep(IdleDelay)
		}
	}
}

// Poll consumes one byte if available and answers a frame once complete.
// It reports whether a byte was read.
func (s *Serial) Poll() bool {
	b, err := s.port.ReadByte()
	if err != nil {
		return false
	}
	s.feed(b)
	return true
}

func (s *Serial) feed(b byte) {
	if s.inIndex == 0 && b != protocol.SyncByte {
		return
	}
	s.inBuffer[s.inIndex] = b
	s.inIndex++

	if s.inIndex < 4 {
		return
	}
	length := int(binary.LittleEndian.Uint16(s.inBuffer[2:4]))
	if length > protocol.MaxPayload {
		s.resync()
		return
	}
	if s.inIndex < 4+length+2 {
		return
	}

	n := s.inIndex
	frame, err := protocol.ReadFrame(bytes.NewReader(s.inBuffer[:n]))
	s.inIndex = 0
	switch {
	case errors.Is(err, protocol.ErrCRCMismatch) && bytes.IndexByte(s.inBuffer[1:n], protocol.SyncByte) >= 0:
		// The sync byte was likely noise and a real frame starts later.
		s.inIndex = n
		s.resync()
	case errors.Is(err, protocol.ErrCRCMismatch):
		s.respond(s.inBuffer[1], &protocol.Response{Status: protocol.StatusCRCError})
	case err != nil:
		// Unreachable with a complete buffer; drop it.
	default:
		s.respond(frame.Cmd, s.handler.Handle(frame))
	}
}

// resync drops the current sync byte and rescans the rest of the buffer.
func (s *Serial) resync() {
	rest := make([]byte, s.inIndex-1)
	copy(rest, s.inBuffer[1:s.inIndex])
	s.inIndex = 0
	for _, b := range rest {
		s.feed(b)
	}
}

func (s *Serial) respond(cmd uint8, resp *protocol.Response) {
	protocol.WriteResponse(s.port, resp)
	if s.observe != nil {
		s.observe(cmd, resp.Status)
	}
}
