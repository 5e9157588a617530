//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tuffrabit/tinygo-nixie-clock/internal/buildinfo"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/api"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/clock"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/pins"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/sim"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/storage"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/tick"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
)

func run(cfg appConfig) error {
	log.Printf("nixied %s starting (backend=%s, time-source=%s)", buildinfo.Short(), cfg.Backend, cfg.TimeSource)
	if cfg.ConfigPath != "" {
		log.Printf("config: %s", cfg.ConfigPath)
	}

	// Render state exists before any output is opened.
	state := render.New(render.DimLevel(cfg.Dim))

	var board *pins.SimBoard
	if cfg.Backend == pins.BackendSim {
		board = pins.NewSimBoard()
	}
	pinMap, err := pins.ParseMap(cfg.Pins)
	if err != nil {
		return fmt.Errorf("pin map: %w", err)
	}
	outputs, release, err := pins.Open(cfg.Backend, pinMap, board)
	if err != nil {
		return fmt.Errorf("open %s pins: %w", cfg.Backend, err)
	}
	defer release()

	engine, err := mux.New(outputs, state)
	if err != nil {
		return err
	}
	defer engine.Halt()

	var src clock.Source = timesource.System{}
	if cfg.TimeSource == "manual" {
		src = timesource.NewManual()
	}

	var store control.Store
	if cfg.Settings != "" {
		mgr, closeStore, err := openSettings(cfg.Settings)
		if err != nil {
			return err
		}
		defer closeStore()
		store = mgr
	}

	defaults := config.Default()
	defaults.DimLevel = uint8(cfg.Dim)
	if cfg.Timezone != "" {
		defaults.SetTZ(cfg.Timezone)
		if err := defaults.Validate(); err != nil {
			return fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
		}
	}

	formatter := clock.New(state, src, defaults.Policy(), nil)
	ctl := control.New(state, formatter, src, store, defaults)
	if err := ctl.Load(); err != nil {
		log.Printf("settings: %v, using defaults", err)
	}
	log.Printf("settings: dim=%d tz=%q", ctl.Config().DimLevel, ctl.Config().GetTZ())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// The tick goroutine is the only caller of engine.Tick.
	g.Go(func() error {
		err := tick.Run(gctx, func() {
			engine.Tick()
			if board != nil {
				board.Sample()
			}
		})
		engine.Halt()
		return ignoreCanceled(err)
	})

	g.Go(func() error {
		return ignoreCanceled(formatter.Run(gctx))
	})

	if cfg.APIEnabled {
		srv := api.NewServer(cfg.HTTPAddr, ctl)
		log.Printf("http api on %s", cfg.HTTPAddr)
		g.Go(func() error {
			if err := srv.Run(gctx); err != nil {
				return fmt.Errorf("http api: %w", err)
			}
			return nil
		})
	}

	if cfg.Window {
		// ebiten needs the main goroutine; closing the window stops the rest.
		if err := sim.RunWindow(gctx, board); err != nil {
			log.Printf("window: %v", err)
		}
		stop()
	}

	err = g.Wait()
	log.Printf("nixied stopped")
	return err
}

// openSettings mounts the LittleFS settings image at path.
func openSettings(path string) (*storage.Manager, func(), error) {
	dev, err := storage.OpenFileDevice(path, imagePageSize, imageEraseBlock, imageBlocks)
	if err != nil {
		return nil, nil, fmt.Errorf("settings image %s: %w", path, err)
	}
	mgr, err := storage.New(dev, true)
	if err != nil {
		dev.Close()
		return nil, nil, fmt.Errorf("mount settings: %w", err)
	}
	if st, err := mgr.GetStats(); err == nil && st.WipedAtBoot {
		log.Printf("settings: format version changed, stored settings wiped")
	}
	return mgr, func() {
		if err := mgr.Close(); err != nil {
			log.Printf("settings: unmount: %v", err)
		}
		if err := dev.Sync(); err != nil {
			log.Printf("settings: sync: %v", err)
		}
		dev.Close()
	}, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
