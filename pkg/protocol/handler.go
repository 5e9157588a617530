package protocol

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/internal/buildinfo"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/storage"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/tz"
)

// StatusSize is the GetStatus payload length.
const StatusSize = 22

// Handler processes protocol commands.
type Handler struct {
	ctl *control.Controller
}

// NewHandler creates a new protocol handler.
func NewHandler(ctl *control.Controller) *Handler {
	return &Handler{
		ctl: ctl,
	}
}

// Handle processes a command frame and returns a response.
func (h *Handler) Handle(frame *Frame) *Response {
	switch frame.Cmd {
	case CmdPing:
		return h.handlePing(frame.Payload)
	case CmdDiscover:
		return &Response{Status: StatusOK, Payload: []byte(DiscoverReply)}
	case CmdGetConfig:
		return h.handleGetConfig()
	case CmdSetConfig:
		return h.handleSetConfig(frame.Payload)
	case CmdSetDimLevel:
		return h.handleSetDimLevel(frame.Payload)
	case CmdSetTime:
		return h.handleSetTime(frame.Payload)
	case CmdGetStatus:
		return h.handleGetStatus()
	case CmdListZones:
		return h.handleListZones()
	case CmdGetStorageStats:
		return h.handleGetStorageStats()
	case CmdFactoryReset:
		return h.handleFactoryReset()
	case CmdGetVersion:
		return h.handleGetVersion()
	default:
		return &Response{Status: StatusInvalidCmd}
	}
}

// statusFor maps an error to a status byte.
func statusFor(err error) uint8 {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, config.ErrInvalidDimLevel),
		errors.Is(err, config.ErrInvalidDateWindow),
		errors.Is(err, config.ErrInvalidBlink),
		errors.Is(err, config.ErrInvalidTZ),
		errors.Is(err, config.ErrInvalidSize),
		errors.Is(err, timesource.ErrZeroTime):
		return StatusInvalidData
	case errors.Is(err, storage.ErrConfigNotFound):
		return StatusNotFound
	case errors.Is(err, storage.ErrFlashFull):
		return StatusNoSpace
	case errors.Is(err, storage.ErrVersionMismatch):
		return StatusVersionMismatch
	case errors.Is(err, timesource.ErrReadOnly), errors.Is(err, control.ErrNoStorage):
		return StatusUnsupported
	default:
		return StatusError
	}
}

// handlePing responds with the same payload (echo).
func (h *Handler) handlePing(payload []byte) *Response {
	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetConfig returns the active clock configuration.
func (h *Handler) handleGetConfig() *Response {
	cfg := h.ctl.Config()
	data, err := cfg.MarshalBinary()
	if err != nil {
		return &Response{Status: StatusError}
	}

	return &Response{
		Status:  StatusOK,
		Payload: data,
	}
}

// handleSetConfig replaces the clock configuration.
// Payload: [ClockConfig:48 bytes]
func (h *Handler) handleSetConfig(payload []byte) *Response {
	if len(payload) != config.Size {
		return &Response{Status: StatusInvalidData}
	}

	var cfg config.ClockConfig
	if err := cfg.UnmarshalBinary(payload); err != nil {
		return &Response{Status: StatusInvalidData}
	}

	if cfg.Version != config.CurrentVersion {
		return &Response{Status: StatusVersionMismatch}
	}

	return &Response{Status: statusFor(h.ctl.Apply(cfg))}
}

// handleSetDimLevel changes the LED level.
// Payload: [DimLevel:1 byte, 0-8]
func (h *Handler) handleSetDimLevel(payload []byte) *Response {
	if len(payload) != 1 {
		return &Response{Status: StatusInvalidData}
	}
	return &Response{Status: statusFor(h.ctl.SetDim(render.DimLevel(payload[0])))}
}

// handleSetTime sets wall-clock time.
// Payload: [UnixSeconds:8 bytes, int64 LE]
func (h *Handler) handleSetTime(payload []byte) *Response {
	if len(payload) != 8 {
		return &Response{Status: StatusInvalidData}
	}
	secs := int64(binary.LittleEndian.Uint64(payload))
	if secs <= 0 {
		return &Response{Status: StatusInvalidData}
	}
	return &Response{Status: statusFor(h.ctl.SetTime(time.Unix(secs, 0).UTC()))}
}

// handleGetStatus returns a snapshot of the clock.
// Response: [UnixSeconds:8][TimeValid:1][DimLevel:1][Frame:8 (digit,dot)x4][UptimeSec:4]
func (h *Handler) handleGetStatus() *Response {
	st := h.ctl.Status()

	payload := make([]byte, StatusSize)
	if st.TimeValid {
		binary.LittleEndian.PutUint64(payload[0:], uint64(st.Now.Unix()))
		payload[8] = 1
	}
	payload[9] = uint8(st.Dim)
	for i, ts := range st.Frame {
		payload[10+2*i] = uint8(ts.Digit)
		if ts.Dot {
			payload[11+2*i] = 1
		}
	}
	binary.LittleEndian.PutUint32(payload[18:], uint32(st.Uptime/time.Second))

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleListZones returns the zone presets.
// Response: [Count:1]{[LabelLen:1][Label][TZLen:1][TZ]}...
func (h *Handler) handleListZones() *Response {
	payload := []byte{uint8(len(tz.Presets))}
	for _, p := range tz.Presets {
		payload = append(payload, uint8(len(p.Label)))
		payload = append(payload, p.Label...)
		payload = append(payload, uint8(len(p.TZ)))
		payload = append(payload, p.TZ...)
	}
	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleGetStorageStats returns storage statistics.
// Response: [Total:4][Used:4][Free:4][ConfigPresent:1][WipedAtBoot:1]
func (h *Handler) handleGetStorageStats() *Response {
	stats, err := h.ctl.StorageStats()
	if err != nil {
		return &Response{Status: statusFor(err)}
	}

	payload := make([]byte, 14)
	binary.LittleEndian.PutUint32(payload[0:], uint32(stats.TotalSpace))
	binary.LittleEndian.PutUint32(payload[4:], uint32(stats.UsedSpace))
	binary.LittleEndian.PutUint32(payload[8:], uint32(stats.FreeSpace))
	if stats.ConfigPresent {
		payload[12] = 1
	}
	if stats.WipedAtBoot {
		payload[13] = 1
	}

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}

// handleFactoryReset wipes stored settings and restores defaults.
func (h *Handler) handleFactoryReset() *Response {
	return &Response{Status: statusFor(h.ctl.FactoryReset())}
}

// handleGetVersion returns firmware and config version info.
// Response: [ConfigVersion:2][Firmware version string]
func (h *Handler) handleGetVersion() *Response {
	ver := buildinfo.Short()
	payload := make([]byte, 2, 2+len(ver))
	binary.LittleEndian.PutUint16(payload, config.CurrentVersion)
	payload = append(payload, ver...)

	return &Response{
		Status:  StatusOK,
		Payload: payload,
	}
}
