// Package clock decides what the tubes show and publishes it to the render
// state. It is the only periodic writer of the display frame.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

// Interval is the formatter period (50 Hz).
const Interval = 20 * time.Millisecond

// Source supplies wall-clock time and whether it has ever been set.
type Source interface {
	Now() (t time.Time, valid bool)
}

// Policy controls the date/time layout choice and the dot blink.
type Policy struct {
	// DateWindowStart and DateWindowLen select the seconds during which
	// DD.MM replaces HH:MM.
	DateWindowStart int
	DateWindowLen   int

	// BlinkPeriod is one full on/off dot cycle.
	BlinkPeriod time.Duration

	// BlinkInTimeMode blinks the hour-ones dot in HH:MM layout.
	BlinkInTimeMode bool
}

// DefaultPolicy shows the date from :50 to :54 and blinks at 1 Hz.
func DefaultPolicy() Policy {
	return Policy{
		DateWindowStart: 50,
		DateWindowLen:   5,
		BlinkPeriod:     time.Second,
	}
}

// InDateWindow reports whether sec falls inside the date window.
func (p Policy) InDateWindow(sec int) bool {
	return sec >= p.DateWindowStart && sec < p.DateWindowStart+p.DateWindowLen
}

// Blink returns the dot state for the given uptime: on for the first half
// of every period.
func (p Policy) Blink(elapsed time.Duration) bool {
	if p.BlinkPeriod <= 0 {
		return false
	}
	return elapsed%p.BlinkPeriod < p.BlinkPeriod/2
}

// Format builds the frame for now. elapsed is monotonic uptime, used only
// for the blink.
func Format(now time.Time, valid bool, elapsed time.Duration, p Policy) render.Frame {
	if !valid {
		return render.BlankFrame()
	}

	dot := p.Blink(elapsed)

	var f render.Frame
	if p.InDateWindow(now.Second()) {
		f[0].Digit, f[1].Digit = segment.Split(now.Day())
		f[2].Digit, f[3].Digit = segment.Split(int(now.Month()))
		for i := range f {
			f[i].Dot = dot
		}
		return f
	}

	f[0].Digit, f[1].Digit = segment.Split(now.Hour())
	f[2].Digit, f[3].Digit = segment.Split(now.Minute())
	if p.BlinkInTimeMode {
		f[1].Dot = dot
	}
	return f
}

// Zone converts an instant to local wall time.
type Zone interface {
	In(t time.Time) time.Time
}

// LocationZone adapts a *time.Location. nil means UTC.
func LocationZone(loc *time.Location) Zone {
	if loc == nil {
		loc = time.UTC
	}
	return locZone{loc}
}

type locZone struct{ loc *time.Location }

func (z locZone) In(t time.Time) time.Time { return t.In(z.loc) }

func (z locZone) String() string { return z.loc.String() }

// Formatter periodically formats the clock source into a render.State.
type Formatter struct {
	state  *render.State
	src    Source
	uptime func() time.Duration

	mu     sync.Mutex
	policy Policy
	zone   Zone
}

// New returns a formatter writing to state. A nil zone means UTC.
func New(state *render.State, src Source, p Policy, zone Zone) *Formatter {
	if zone == nil {
		zone = LocationZone(time.UTC)
	}
	start := time.Now()
	return &Formatter{
		state:  state,
		src:    src,
		uptime: func() time.Duration { return time.Since(start) },
		policy: p,
		zone:   zone,
	}
}

// SetPolicy swaps the layout policy; it applies from the next Update.
func (f *Formatter) SetPolicy(p Policy) {
	f.mu.Lock()
	f.policy = p
	f.mu.Unlock()
}

// Policy returns the active policy.
func (f *Formatter) Policy() Policy {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.policy
}

// SetZone changes the zone used for formatting. nil means UTC.
func (f *Formatter) SetZone(z Zone) {
	if z == nil {
		z = LocationZone(time.UTC)
	}
	f.mu.Lock()
	f.zone = z
	f.mu.Unlock()
}

func (f *Formatter) Zone() Zone {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.zone
}

// Uptime is the monotonic time since the formatter was created.
func (f *Formatter) Uptime() time.Duration { return f.uptime() }

// Update reads the source once, formats and publishes the frame.
func (f *Formatter) Update() render.Frame {
	f.mu.Lock()
	p, zone := f.policy, f.zone
	f.mu.Unlock()

	now, valid := f.src.Now()
	if valid {
		now = zone.In(now)
	}
	frame := Format(now, valid, f.uptime(), p)
	f.state.WriteDisplay(frame)
	return frame
}

// Run calls Update every Interval until ctx is done.
func (f *Formatter) Run(ctx context.Context) error {
	t := time.NewTicker(Interval)
	defer t.Stop()

	f.Update()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			f.Update()
		}
	}
}
