package display

import (
	"fmt"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/protocol"
)

// Cols is the character width of one debug display row.
const Cols = 21

// FrameFormatter formats protocol traffic and clock status for the SSD1306.
// It creates compact strings suitable for narrow display rows.
type FrameFormatter struct{}

// NewFrameFormatter creates a new frame formatter.
func NewFrameFormatter() *FrameFormatter {
	return &FrameFormatter{}
}

// FormatExchange is the one-line summary of a handled command.
func (f *FrameFormatter) FormatExchange(cmd, status uint8) string {
	return truncate(f.CommandName(cmd)+" > "+f.StatusName(status), Cols)
}

// FormatError formats an error for display.
func (f *FrameFormatter) FormatError(err error) string {
	return truncate("ERR:"+err.Error(), Cols)
}

// FormatStatus renders the clock state as two rows: what the tubes show
// and the wall time behind it. Without a valid time the second row carries
// the time source error, if it reported one.
func (f *FrameFormatter) FormatStatus(st control.Status) (tubes, clock string) {
	tubes = fmt.Sprintf("%-5s dim %d", st.Frame.String(), st.Dim)
	if !st.TimeValid {
		if st.SourceErr != nil {
			return tubes, f.FormatError(st.SourceErr)
		}
		return tubes, "time not set"
	}
	clock = st.Now.UTC().Format("15:04:05") + " UTC up " + formatUptime(st.Uptime)
	return tubes, truncate(clock, Cols)
}

func formatUptime(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	default:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
}

// CommandName returns a short name for a command code.
func (f *FrameFormatter) CommandName(cmd uint8) string {
	switch cmd {
	case protocol.CmdGetConfig:
		return "GetCfg"
	case protocol.CmdSetConfig:
		return "SetCfg"
	case protocol.CmdSetDimLevel:
		return "SetDim"
	case protocol.CmdSetTime:
		return "SetTime"
	case protocol.CmdGetStatus:
		return "GetSts"
	case protocol.CmdListZones:
		return "Zones"
	case protocol.CmdGetStorageStats:
		return "GetStor"
	case protocol.CmdPing:
		return "Ping"
	case protocol.CmdFactoryReset:
		return "FctRst"
	case protocol.CmdGetVersion:
		return "GetVer"
	case protocol.CmdDiscover:
		return "Discvr"
	default:
		return fmt.Sprintf("Cmd%02X", cmd)
	}
}

// StatusName returns a short name for a status code.
func (f *FrameFormatter) StatusName(status uint8) string {
	switch status {
	case protocol.StatusOK:
		return "OK"
	case protocol.StatusError:
		return "Err"
	case protocol.StatusInvalidCmd:
		return "InvCmd"
	case protocol.StatusInvalidData:
		return "InvData"
	case protocol.StatusNotFound:
		return "NotFnd"
	case protocol.StatusNoSpace:
		return "NoSpace"
	case protocol.StatusVersionMismatch:
		return "VerMis"
	case protocol.StatusCRCError:
		return "CRC"
	case protocol.StatusUnsupported:
		return "Unsupp"
	default:
		return fmt.Sprintf("Sts%02X", status)
	}
}

// truncate limits a string to maxLen characters, adding ".." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 2 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
