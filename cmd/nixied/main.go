//go:build !tinygo

// Command nixied runs the Nixie clock on a Linux host: real GPIO through
// go-rpio or periph.io, or an in-memory board shown in a window.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tuffrabit/tinygo-nixie-clock/internal/buildinfo"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is ./nixied.yaml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("nixied %s\n", buildinfo.Short())
		fmt.Printf("  Commit: %s\n", buildinfo.Commit)
		fmt.Printf("  Built:  %s\n", buildinfo.Date)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	closeLog := configureLogger(cfg.LogFile)
	defer closeLog()

	if err := run(cfg); err != nil {
		log.Printf("nixied: %v", err)
		closeLog()
		os.Exit(1)
	}
}

func configureLogger(path string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetOutput(os.Stderr)
	if path == "" {
		return func() {}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("log file %s: %v, using stderr", path, err)
		return func() {}
	}
	log.SetOutput(f)
	return func() { _ = f.Close() }
}
