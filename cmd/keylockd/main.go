// Command keylockd runs the keyboard blocker without a menu bar icon, for
// use from launchd or a terminal. State is driven entirely by the emergency
// shortcut and the persisted settings; SIGINT/SIGTERM shut it down.
//
// Exits 1 if the event tap cannot be installed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaz8081/keylock/internal/config"
	"github.com/chaz8081/keylock/internal/engine"
	"github.com/chaz8081/keylock/internal/logging"
	"github.com/chaz8081/keylock/internal/settings"
	"github.com/chaz8081/keylock/internal/tap"
	"github.com/chaz8081/keylock/internal/update"
)

func main() {
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "enable debug logging (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	logLevel := flag.String("log-level", "", "log verbosity: debug, info or error")
	configPath := flag.String("config", "", "path to config file (default: ~/.config/keylock/config.yaml)")
	blockOnStart := flag.Bool("block", false, "enable blocking immediately after startup")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	if *logLevel != "" {
		level = *logLevel
	}
	log, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	log.Info("keylockd starting", "version", update.Version)

	store := settings.NewFileStore(cfg.SettingsPath)
	eng := engine.New(tap.New(), store, log)
	eng.SetStateCallback(func(active bool) {
		log.Info("blocking state changed", "active", active)
	})
	eng.SetRecordingCallback(func(flags uint64, keyCode uint16) {
		log.Info("shortcut recorded", "shortcut", tap.FormatFlags(flags), "keycode", keyCode)
	})

	if err := eng.Install(); err != nil {
		if errors.Is(err, tap.ErrPermissionDenied) {
			log.Error("accessibility permission missing; grant it in System Settings > Privacy & Security > Accessibility and restart")
		} else {
			log.Error("installing event tap failed", "error", err)
		}
		os.Exit(1)
	}

	if *blockOnStart {
		eng.SetBlocking(true)
	}

	flags, keyCode := eng.Shortcut()
	log.Info("running", "unlock", tap.FormatFlags(flags), "keycode", keyCode)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	eng.Close()
}

// loadConfig loads the config from the specified path, or falls back to the
// default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}

	return config.Default(), nil
}
