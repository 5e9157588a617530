package serial

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/protocol"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
)

var errEmpty = errors.New("no data")

type fakePort struct {
	in  bytes.Buffer
	out bytes.Buffer
}

func (p *fakePort) ReadByte() (byte, error) {
	b, err := p.in.ReadByte()
	if err != nil {
		return 0, errEmpty
	}
	return b, nil
}

func (p *fakePort) Write(b []byte) (int, error) { return p.out.Write(b) }

func newTestSerial() (*Serial, *fakePort, *render.State) {
	state := render.New(render.DefaultDim)
	ctl := control.New(state, nil, timesource.NewManual(), nil, config.Default())
	port := &fakePort{}
	return NewSerial(port, protocol.NewHandler(ctl)), port, state
}

func drain(s *Serial) {
	for s.Poll() {
	}
}

func TestPingRoundTrip(t *testing.T) {
	s, port, _ := newTestSerial()
	protocol.WriteFrame(&port.in, &protocol.Frame{Cmd: protocol.CmdPing, Payload: []byte("hi")})
	drain(s)

	resp, err := protocol.ReadResponse(&port.out)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if resp.Status != protocol.StatusOK || string(resp.Payload) != "hi" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSkipsNoiseBeforeSync(t *testing.T) {
	s, port, state := newTestSerial()
	port.in.Write([]byte{0x00, 0x13, '\n'})
	protocol.WriteFrame(&port.in, &protocol.Frame{Cmd: protocol.CmdSetDimLevel, Payload: []byte{7}})
	drain(s)

	resp, err := protocol.ReadResponse(&port.out)
	if err != nil || resp.Status != protocol.StatusOK {
		t.Fatalf("resp = %+v, err %v", resp, err)
	}
	if state.ReadDimLevel() != 7 {
		t.Errorf("dim = %d, want 7", state.ReadDimLevel())
	}
}

func TestBadCRCAnswered(t *testing.T) {
	s, port, _ := newTestSerial()
	var observed []uint8
	s.SetObserver(func(cmd, status uint8) { observed = append(observed, cmd, status) })

	port.in.Write([]byte{protocol.SyncByte, protocol.CmdPing, 0, 0, 0xDE, 0xAD})
	drain(s)

	resp, err := protocol.ReadResponse(&port.out)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if resp.Status != protocol.StatusCRCError {
		t.Errorf("status = 0x%x, want StatusCRCError", resp.Status)
	}
	if len(observed) != 2 || observed[0] != protocol.CmdPing || observed[1] != protocol.StatusCRCError {
		t.Errorf("observed = %v", observed)
	}
}

func TestResyncAfterBogusLength(t *testing.T) {
	s, port, _ := newTestSerial()
	// A stray sync byte followed by an impossible length, then a real frame.
	port.in.Write([]byte{protocol.SyncByte, 0x01, 0xFF, 0xFF})
	protocol.WriteFrame(&port.in, &protocol.Frame{Cmd: protocol.CmdDiscover})
	drain(s)

	resp, err := protocol.ReadResponse(&port.out)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if string(resp.Payload) != protocol.DiscoverReply {
		t.Errorf("payload = %q", resp.Payload)
	}
}

func TestStraySyncDoesNotSwallowFrames(t *testing.T) {
	s, port, _ := newTestSerial()
	var observed []uint8
	s.SetObserver(func(cmd, status uint8) { observed = append(observed, status) })

	// The stray byte makes the first ping's command byte read as a length.
	port.in.WriteByte(protocol.SyncByte)
	for i := 0; i < 3; i++ {
		protocol.WriteFrame(&port.in, &protocol.Frame{Cmd: protocol.CmdPing})
	}
	drain(s)

	for i := 0; i < 3; i++ {
		resp, err := protocol.ReadResponse(&port.out)
		if err != nil {
			t.Fatalf("response %d: %v", i, err)
		}
		if resp.Status != protocol.StatusOK {
			t.Errorf("response %d status = 0x%x, want StatusOK", i, resp.Status)
		}
	}
	if port.out.Len() != 0 {
		t.Errorf("%d unexpected trailing bytes", port.out.Len())
	}
	for _, st := range observed {
		if st == protocol.StatusCRCError {
			t.Errorf("observed a CRC error: %v", observed)
			break
		}
	}
}

func TestBackToBackFrames(t *testing.T) {
	s, port, _ := newTestSerial()
	for i := 0; i < 3; i++ {
		protocol.WriteFrame(&port.in, &protocol.Frame{Cmd: protocol.CmdPing, Payload: []byte{byte(i)}})
	}
	drain(s)

	for i := 0; i < 3; i++ {
		resp, err := protocol.ReadResponse(&port.out)
		if err != nil {
			t.Fatalf("response %d: %v", i, err)
		}
		if len(resp.Payload) != 1 || resp.Payload[0] != byte(i) {
			t.Errorf("response %d payload = %v", i, resp.Payload)
		}
	}
}

func TestPollEmpty(t *testing.T) {
	s, _, _ := newTestSerial()
	if s.Poll() {
		t.Error("Poll() = true on empty port")
	}
}
