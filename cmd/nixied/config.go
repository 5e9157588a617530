//go:build !tinygo

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/pins"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
)

const (
	defaultBackend    = pins.BackendSim
	defaultHTTPAddr   = "127.0.0.1:8080"
	defaultTimeSource = "system"
	defaultSettings   = "nixie-settings.img"

	// Settings image geometry: 64 x 4 KiB erase blocks.
	imagePageSize   = 256
	imageEraseBlock = 4096
	imageBlocks     = 64
)

// appConfig is the daemon's runtime configuration. Clock settings
// (dim level, zone, date window) live in the settings image; dim and
// timezone here are only the values used until one has been saved.
type appConfig struct {
	Backend    string            `mapstructure:"backend"`
	Pins       map[string]string `mapstructure:"pins"`
	APIEnabled bool              `mapstructure:"api-enabled"`
	HTTPAddr   string            `mapstructure:"http-addr"`
	TimeSource string            `mapstructure:"time-source"`
	Timezone   string            `mapstructure:"timezone"`
	Dim        int               `mapstructure:"dim"`
	Settings   string            `mapstructure:"settings"`
	Window     bool              `mapstructure:"window"`
	LogFile    string            `mapstructure:"log-file"`

	ConfigPath string `mapstructure:"-"`
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("NIXIE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("backend", defaultBackend)
	v.SetDefault("api-enabled", true)
	v.SetDefault("http-addr", defaultHTTPAddr)
	v.SetDefault("time-source", defaultTimeSource)
	v.SetDefault("timezone", "")
	v.SetDefault("dim", int(render.DefaultDim))
	v.SetDefault("settings", defaultSettings)
	v.SetDefault("window", false)
	v.SetDefault("log-file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("nixied")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/nixied")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/nixied")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.Dim < 0 || cfg.Dim > int(render.DimOn) {
		return cfg, fmt.Errorf("invalid dim: %d (0-%d)", cfg.Dim, render.DimOn)
	}
	switch cfg.TimeSource {
	case "system", "manual":
	default:
		return cfg, fmt.Errorf("invalid time-source: %q (system or manual)", cfg.TimeSource)
	}
	if cfg.Window && cfg.Backend != pins.BackendSim {
		return cfg, fmt.Errorf("window requires the %s backend", pins.BackendSim)
	}

	return cfg, nil
}
