// Package settings persists the blocker's runtime state as a small plain
// text key=value file. Loading never fails: a missing or unreadable file
// yields defaults, and the blocking flag is never restored from disk.
package settings

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chaz8081/keylock/internal/tap"
)

// Defaults for a fresh installation. Blocking is intentionally disabled by
// default: the app must never silently resume blocking after a restart.
const (
	DefaultShortcutEnabled = true
	DefaultShortcutFlags   = tap.MaskCommand | tap.MaskShift
	DefaultShortcutKeycode = 12 // Q
	DefaultBlockingEnabled = false
)

// Settings holds all persisted fields.
type Settings struct {
	ShortcutEnabled bool
	ShortcutFlags   uint64
	ShortcutKeycode uint16
	BlockingEnabled bool
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		ShortcutEnabled: DefaultShortcutEnabled,
		ShortcutFlags:   DefaultShortcutFlags,
		ShortcutKeycode: DefaultShortcutKeycode,
		BlockingEnabled: DefaultBlockingEnabled,
	}
}

// Store abstracts settings persistence so the engine can run against any
// backend (tests use an in-memory store).
type Store interface {
	Load() Settings
	Save(Settings) error
}

// FileStore persists settings to a key=value file.
type FileStore struct {
	path string
}

// NewFileStore creates a store writing to path, or to DefaultPath() when
// path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// DefaultPath returns the standard settings location, under
// ~/Library/Application Support on macOS.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "keylock", "settings.conf")
}

// Load reads settings from disk. Unknown keys are ignored; a missing file
// yields defaults. The blocking_enabled key is parsed but discarded: for
// safety the blocking state always starts out disabled.
func (s *FileStore) Load() Settings {
	return parseFile(s.path)
}

func parseFile(path string) Settings {
	out := Default()

	f, err := os.Open(path)
	if err != nil {
		return out
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, val, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found {
			continue
		}
		switch key {
		case "shortcut_enabled":
			out.ShortcutEnabled = val != "0"
		case "shortcut_flags":
			if flags, err := strconv.ParseUint(val, 10, 64); err == nil {
				out.ShortcutFlags = flags
			}
		case "shortcut_keycode":
			if code, err := strconv.ParseUint(val, 10, 16); err == nil {
				out.ShortcutKeycode = uint16(code)
			}
		case "blocking_enabled":
			// Never restored from disk.
			out.BlockingEnabled = DefaultBlockingEnabled
		}
	}
	return out
}

// Save writes all settings in a fixed key order, creating the parent
// directory if needed.
func (s *FileStore) Save(cfg Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "shortcut_enabled=%d\n", boolToInt(cfg.ShortcutEnabled))
	fmt.Fprintf(&b, "shortcut_flags=%d\n", cfg.ShortcutFlags)
	fmt.Fprintf(&b, "shortcut_keycode=%d\n", cfg.ShortcutKeycode)
	fmt.Fprintf(&b, "blocking_enabled=%d\n", boolToInt(cfg.BlockingEnabled))

	if err := os.WriteFile(s.path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
