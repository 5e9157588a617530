package display

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/protocol"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
)

func TestNames(t *testing.T) {
	f := NewFrameFormatter()
	for _, cmd := range []uint8{
		protocol.CmdGetConfig, protocol.CmdSetConfig, protocol.CmdSetDimLevel,
		protocol.CmdSetTime, protocol.CmdGetStatus, protocol.CmdListZones,
		protocol.CmdGetStorageStats, protocol.CmdPing, protocol.CmdFactoryReset,
		protocol.CmdGetVersion, protocol.CmdDiscover,
	} {
		if name := f.CommandName(cmd); strings.HasPrefix(name, "Cmd") {
			t.Errorf("command 0x%02x has no name", cmd)
		}
	}
	if got := f.CommandName(0xEE); got != "CmdEE" {
		t.Errorf("unknown command = %q", got)
	}
	if got := f.StatusName(protocol.StatusUnsupported); got != "Unsupp" {
		t.Errorf("StatusUnsupported = %q", got)
	}
	if got := f.FormatExchange(protocol.CmdPing, protocol.StatusOK); got != "Ping > OK" {
		t.Errorf("FormatExchange = %q", got)
	}
}

func TestFormatStatus(t *testing.T) {
	f := NewFrameFormatter()

	st := control.Status{Frame: render.BlankFrame(), Dim: 2}
	tubes, clock := f.FormatStatus(st)
	if tubes != "----  dim 2" || clock != "time not set" {
		t.Errorf("no time: %q / %q", tubes, clock)
	}

	st = control.Status{
		Now:       time.Date(2025, 3, 9, 14, 7, 30, 0, time.UTC),
		TimeValid: true,
		Frame:     render.Frame{{1, false}, {4, true}, {0, false}, {7, false}},
		Dim:       8,
		Uptime:    90 * time.Minute,
	}
	tubes, clock = f.FormatStatus(st)
	if tubes != "14.07 dim 8" {
		t.Errorf("tubes = %q", tubes)
	}
	if clock != "14:07:30 UTC up 1h" {
		t.Errorf("clock = %q", clock)
	}
	if len(clock) > Cols {
		t.Errorf("clock row too wide: %d", len(clock))
	}
}

func TestFormatErrorTruncates(t *testing.T) {
	f := NewFrameFormatter()
	got := f.FormatError(errors.New("a very long error message that will not fit"))
	if len(got) != Cols || !strings.HasPrefix(got, "ERR:") || !strings.HasSuffix(got, "..") {
		t.Errorf("FormatError = %q", got)
	}
}

func TestFormatStatusShowsSourceError(t *testing.T) {
	f := NewFrameFormatter()
	st := control.Status{
		Frame:     render.BlankFrame(),
		SourceErr: errors.New("rtc stopped"),
	}
	if _, clock := f.FormatStatus(st); clock != "ERR:rtc stopped" {
		t.Errorf("clock = %q, want ERR:rtc stopped", clock)
	}

	st.TimeValid = true
	st.Now = time.Date(2025, 3, 9, 14, 7, 30, 0, time.UTC)
	if _, clock := f.FormatStatus(st); clock != "14:07:30 UTC up 0s" {
		t.Errorf("valid time with stale error: clock = %q", clock)
	}
}
