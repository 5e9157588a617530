// Package control applies settings changes to the running clock. The
// serial protocol and the HTTP API both go through a Controller so a
// change takes effect on the tubes and in storage the same way.
package control

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/internal/buildinfo"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/clock"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/storage"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
)

var ErrNoStorage = errors.New("no settings storage")

// Store persists the clock config. *storage.Manager implements it.
type Store interface {
	LoadConfig(cfg *config.ClockConfig) error
	SaveConfig(cfg *config.ClockConfig) error
	ForceWipe() error
	GetStats() (*storage.Stats, error)
}

// Status is a snapshot of what the clock is doing.
type Status struct {
	Now       time.Time
	TimeValid bool
	Frame     render.Frame
	Dim       render.DimLevel
	Uptime    time.Duration
	TZ        string
	Version   string

	// SourceErr is the clock source's last read error, if it reports one.
	SourceErr error
}

// errReporter is implemented by sources that can fail, like timesource.RTC.
type errReporter interface {
	Err() error
}

// Controller owns the active ClockConfig.
type Controller struct {
	state *render.State
	fmt   *clock.Formatter
	src   clock.Source
	store Store // nil: settings live in memory only

	defaults config.ClockConfig

	mu  sync.Mutex
	cfg config.ClockConfig
}

// New returns a controller starting from defaults, which are also what
// Load falls back to and FactoryReset restores. Call Apply or Load before
// the tick source is armed so the state carries the configured dim level.
func New(state *render.State, f *clock.Formatter, src clock.Source, store Store, defaults config.ClockConfig) *Controller {
	return &Controller{
		state:    state,
		fmt:      f,
		src:      src,
		store:    store,
		defaults: defaults,
		cfg:      defaults,
	}
}

// Load reads the stored config and applies it. Missing or unusable
// settings fall back to the defaults; the error is returned for logging.
func (c *Controller) Load() error {
	if c.store == nil {
		return c.apply(c.Config())
	}
	var cfg config.ClockConfig
	loadErr := c.store.LoadConfig(&cfg)
	if loadErr != nil {
		cfg = c.defaults
	}
	if err := c.apply(cfg); err != nil {
		return err
	}
	return loadErr
}

// Config returns the active settings.
func (c *Controller) Config() config.ClockConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Apply validates and persists cfg, then pushes it to the display path.
// Nothing changes on the tubes if the save fails.
func (c *Controller) Apply(cfg config.ClockConfig) error {
	cfg.Version = config.CurrentVersion
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.save(cfg); err != nil {
		return err
	}
	return c.apply(cfg)
}

func (c *Controller) apply(cfg config.ClockConfig) error {
	zone, err := cfg.Zone()
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidTZ, err)
	}

	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()

	c.state.WriteDimLevel(cfg.Dim())
	if c.fmt != nil {
		c.fmt.SetPolicy(cfg.Policy())
		c.fmt.SetZone(zone)
		c.fmt.Update()
	}
	return nil
}

func (c *Controller) save(cfg config.ClockConfig) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.SaveConfig(&cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// SetDim changes only the LED level.
func (c *Controller) SetDim(l render.DimLevel) error {
	if l > render.DimOn {
		return config.ErrInvalidDimLevel
	}
	cfg := c.Config()
	cfg.DimLevel = uint8(l)
	return c.Apply(cfg)
}

// SetTime hands t to the time source if it accepts one.
func (c *Controller) SetTime(t time.Time) error {
	s, ok := c.src.(timesource.Setter)
	if !ok {
		return timesource.ErrReadOnly
	}
	if err := s.SetTime(t); err != nil {
		return err
	}
	if c.fmt != nil {
		c.fmt.Update()
	}
	return nil
}

// FactoryReset wipes stored settings and reapplies the defaults.
func (c *Controller) FactoryReset() error {
	if c.store != nil {
		if err := c.store.ForceWipe(); err != nil {
			return err
		}
	}
	return c.apply(c.defaults)
}

// StorageStats reports settings storage usage.
func (c *Controller) StorageStats() (*storage.Stats, error) {
	if c.store == nil {
		return nil, ErrNoStorage
	}
	return c.store.GetStats()
}

// Status snapshots the clock.
func (c *Controller) Status() Status {
	now, valid := c.src.Now()
	st := Status{
		Now:       now,
		TimeValid: valid,
		Frame:     c.state.ReadDisplay(),
		Dim:       c.state.ReadDimLevel(),
		TZ:        c.Config().GetTZ(),
		Version:   buildinfo.Short(),
	}
	if r, ok := c.src.(errReporter); ok {
		st.SourceErr = r.Err()
	}
	if c.fmt != nil {
		st.Uptime = c.fmt.Uptime()
	}
	return st
}
