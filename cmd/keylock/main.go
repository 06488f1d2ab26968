// Command keylock is the menu-bar keyboard blocker. It installs a
// system-wide event tap, suppresses keyboard events while blocking is
// enabled, and always lets the emergency unlock combination through.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/chaz8081/keylock/internal/config"
	"github.com/chaz8081/keylock/internal/engine"
	"github.com/chaz8081/keylock/internal/logging"
	"github.com/chaz8081/keylock/internal/settings"
	"github.com/chaz8081/keylock/internal/tap"
	"github.com/chaz8081/keylock/internal/tray"
	"github.com/chaz8081/keylock/internal/update"
)

func main() {
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "enable debug logging (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
	logLevel := flag.String("log-level", "", "log verbosity: debug, info or error")
	configPath := flag.String("config", "", "path to config file (default: ~/.config/keylock/config.yaml)")
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

	log, err := logging.New(effectiveLevel(cfg, *logLevel, verbose))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	log.Info("keylock starting", "version", update.Version)

	store := settings.NewFileStore(cfg.SettingsPath)
	eng := engine.New(tap.New(), store, log)
	ui := tray.New(eng, cfg, log)

	if err := eng.Install(); err != nil {
		fatalInstall(log, err)
	}

	// Blocks until Quit; the engine is closed on the way out.
	ui.Run()

	log.Info("keylock stopped")
}

// fatalInstall surfaces a hook installation failure as a critical alert and
// terminates. Operating without the tap defeats the application's purpose,
// so there is no retry.
func fatalInstall(log *slog.Logger, err error) {
	log.Error("installing event tap failed", "error", err)

	switch {
	case errors.Is(err, tap.ErrPermissionDenied):
		_ = tray.Alert("Accessibility permission required",
			"keylock needs Accessibility access to intercept keyboard events. "+
				"Grant it in System Settings > Privacy & Security > Accessibility, then restart keylock.")
	default:
		_ = tray.Alert("keylock failed to start",
			fmt.Sprintf("The keyboard event tap could not be installed: %v", err))
	}
	os.Exit(1)
}

// effectiveLevel resolves the log level: the --log-level flag wins, then
// -v/--verbose, then the config file.
func effectiveLevel(cfg *config.Config, flagLevel string, verbose bool) string {
	if flagLevel != "" {
		return flagLevel
	}
	if verbose {
		return "debug"
	}
	return cfg.LogLevel
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
