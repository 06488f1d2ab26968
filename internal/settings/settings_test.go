package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	s := Default()

	if !s.ShortcutEnabled {
		t.Error("ShortcutEnabled should default to true")
	}
	if s.ShortcutFlags != 1179648 {
		t.Errorf("ShortcutFlags = %d, want 1179648 (cmd+shift)", s.ShortcutFlags)
	}
	if s.ShortcutKeycode != 12 {
		t.Errorf("ShortcutKeycode = %d, want 12", s.ShortcutKeycode)
	}
	if s.BlockingEnabled {
		t.Error("BlockingEnabled should default to false")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.conf"))

	got := store.Load()
	if got != Default() {
		t.Errorf("Load() of missing file = %+v, want defaults %+v", got, Default())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "settings.conf"))

	in := Settings{
		ShortcutEnabled: true,
		ShortcutFlags:   1179648,
		ShortcutKeycode: 12,
		BlockingEnabled: true,
	}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := store.Load()
	if !got.ShortcutEnabled {
		t.Error("ShortcutEnabled = false, want true")
	}
	if got.ShortcutFlags != 1179648 {
		t.Errorf("ShortcutFlags = %d, want 1179648", got.ShortcutFlags)
	}
	if got.ShortcutKeycode != 12 {
		t.Errorf("ShortcutKeycode = %d, want 12", got.ShortcutKeycode)
	}
	// blocking_enabled is written but never read back as true.
	if got.BlockingEnabled {
		t.Error("BlockingEnabled = true after load, want false (forced default)")
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.conf")
	store := NewFileStore(path)

	if err := store.Save(Settings{ShortcutEnabled: true, ShortcutFlags: 786432, ShortcutKeycode: 53, BlockingEnabled: false}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading settings file: %v", err)
	}
	want := "shortcut_enabled=1\nshortcut_flags=786432\nshortcut_keycode=53\nblocking_enabled=0\n"
	if string(data) != want {
		t.Errorf("file contents = %q, want %q", data, want)
	}
}

func TestLoadIgnoresUnknownKeysAndJunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.conf")
	content := strings.Join([]string{
		"shortcut_enabled=0",
		"future_option=yes",
		"not a key value line",
		"shortcut_keycode=53",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got := NewFileStore(path).Load()
	if got.ShortcutEnabled {
		t.Error("ShortcutEnabled = true, want false")
	}
	if got.ShortcutKeycode != 53 {
		t.Errorf("ShortcutKeycode = %d, want 53", got.ShortcutKeycode)
	}
	// Untouched fields keep defaults.
	if got.ShortcutFlags != DefaultShortcutFlags {
		t.Errorf("ShortcutFlags = %d, want default %d", got.ShortcutFlags, uint64(DefaultShortcutFlags))
	}
}

func TestLoadNeverRestoresBlocking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.conf")
	if err := os.WriteFile(path, []byte("blocking_enabled=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if got := NewFileStore(path).Load(); got.BlockingEnabled {
		t.Error("BlockingEnabled restored from disk, want forced false")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "settings.conf")
	store := NewFileStore(path)

	if err := store.Save(Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file not created: %v", err)
	}
}

func TestNewFileStoreDefaultPath(t *testing.T) {
	store := NewFileStore("")
	if store.Path() == "" {
		t.Error("Path() should not be empty for default store")
	}
	if filepath.Base(store.Path()) != "settings.conf" {
		t.Errorf("Path() = %q, want a settings.conf file", store.Path())
	}
}
