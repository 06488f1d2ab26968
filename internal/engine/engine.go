// Package engine implements the keyboard interception engine: a single
// mutex-guarded state object whose decision function is called for every
// intercepted event and returns pass or suppress.
//
// The decision function is a total function with four mutually exclusive
// branches in strict priority order: recording capture first, emergency
// unlock second, plain pass-through third, suppression last. The ordering is
// the core correctness property: the panic combination can never be
// swallowed by blocking, and a recording capture can never be mistaken for a
// blocked keystroke.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chaz8081/keylock/internal/settings"
	"github.com/chaz8081/keylock/internal/tap"
)

// ErrAlreadyStarted is returned by Install when the engine already owns a
// live event tap.
var ErrAlreadyStarted = errors.New("engine already installed")

// EventTap is the OS hook the engine drives. *tap.Tap satisfies it.
type EventTap interface {
	Start(tap.Handler) error
	Stop()
}

// StateFunc is notified when the blocking state changes.
type StateFunc func(active bool)

// RecordedFunc is invoked after a recording captures a new shortcut.
type RecordedFunc func(flags uint64, keyCode uint16)

// Engine owns the event tap and the shared interception state. All public
// operations are safe to call concurrently with the tap's callback.
type Engine struct {
	tap   EventTap
	store settings.Store
	log   *slog.Logger

	mu              sync.Mutex
	installed       bool
	blocking        bool
	shortcutEnabled bool
	recording       bool
	shortcutFlags   uint64
	shortcutKey     uint16
	onState         StateFunc
	onRecorded      RecordedFunc
}

// New creates an engine around the given tap and settings store. The tap is
// not started until Install.
func New(t EventTap, store settings.Store, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{tap: t, store: store, log: log}
}

// Install loads persisted settings and starts the event tap. A second call
// without an intervening Close fails with ErrAlreadyStarted and leaves the
// first tap untouched. Tap startup errors (tap.ErrPermissionDenied,
// tap.ErrCreateFailed) are wrapped and returned.
func (e *Engine) Install() error {
	e.mu.Lock()
	if e.installed {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}

	s := e.store.Load()
	e.blocking = s.BlockingEnabled // forced false by the store on load
	e.shortcutEnabled = s.ShortcutEnabled
	e.shortcutFlags = s.ShortcutFlags
	e.shortcutKey = s.ShortcutKeycode
	e.recording = false
	e.mu.Unlock()

	if err := e.tap.Start(e.handle); err != nil {
		return fmt.Errorf("starting event tap: %w", err)
	}

	e.mu.Lock()
	e.installed = true
	e.mu.Unlock()

	e.log.Info("event tap installed",
		"shortcut", tap.FormatFlags(s.ShortcutFlags),
		"keycode", s.ShortcutKeycode)
	return nil
}

// Close tears the tap down. It returns only after the tap's run-loop source
// has been removed, so no callback runs afterwards. Safe to call twice.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.installed {
		e.mu.Unlock()
		return
	}
	e.installed = false
	e.mu.Unlock()

	e.tap.Stop()
	e.log.Info("event tap removed")
}

// SetBlocking enables or disables suppression of keyboard events. A no-op
// when the engine is not installed. The new state is persisted and the
// state callback notified.
func (e *Engine) SetBlocking(on bool) {
	e.mu.Lock()
	if !e.installed {
		e.mu.Unlock()
		return
	}
	e.blocking = on
	e.persistLocked()
	fn := e.onState
	e.mu.Unlock()

	e.log.Info("blocking state updated", "active", on)
	if fn != nil {
		fn(on)
	}
}

// Blocking reports whether suppression is currently active.
func (e *Engine) Blocking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.installed && e.blocking
}

// SetShortcutEnabled enables or disables emergency shortcut matching.
func (e *Engine) SetShortcutEnabled(on bool) {
	e.mu.Lock()
	if !e.installed {
		e.mu.Unlock()
		return
	}
	e.shortcutEnabled = on
	e.persistLocked()
	e.mu.Unlock()
}

// ShortcutEnabled reports whether the emergency shortcut is matched.
func (e *Engine) ShortcutEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.installed && e.shortcutEnabled
}

// SetShortcut overwrites the stored emergency combination. flags is
// normalized to the four primary modifier bits before storing.
func (e *Engine) SetShortcut(flags uint64, keyCode uint16) {
	e.mu.Lock()
	if !e.installed {
		e.mu.Unlock()
		return
	}
	e.shortcutFlags = tap.NormalizeFlags(flags)
	e.shortcutKey = keyCode
	e.persistLocked()
	e.mu.Unlock()
}

// Shortcut returns the stored emergency combination.
func (e *Engine) Shortcut() (flags uint64, keyCode uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shortcutFlags, e.shortcutKey
}

// StartRecording arms one-shot capture: the next key-down becomes the new
// shortcut instead of being matched or blocked. Idempotent while already
// recording.
func (e *Engine) StartRecording() {
	e.mu.Lock()
	if !e.installed {
		e.mu.Unlock()
		return
	}
	e.recording = true
	e.mu.Unlock()
	e.log.Debug("recording armed (one-shot)")
}

// SetRecordingCallback registers the function invoked after a capture
// completes. At most one callback is held; the last write wins. The
// callback runs on the tap's background loop and must hand off to the UI
// itself (the tray bridge does a non-blocking channel send).
func (e *Engine) SetRecordingCallback(fn RecordedFunc) {
	e.mu.Lock()
	e.onRecorded = fn
	e.mu.Unlock()
}

// SetStateCallback registers the function notified when the blocking state
// changes, either by SetBlocking or by the emergency shortcut. Same
// delivery contract as SetRecordingCallback.
func (e *Engine) SetStateCallback(fn StateFunc) {
	e.mu.Lock()
	e.onState = fn
	e.mu.Unlock()
}

// handle is the per-event decision function, run synchronously on the tap's
// background loop for every intercepted event.
func (e *Engine) handle(ev tap.KeyEvent) tap.Decision {
	e.mu.Lock()

	// 1. One-shot recording capture. Wins over everything, including an
	// exact emergency match, so the recording UI cannot be preempted.
	if e.recording && ev.Kind == tap.KindKeyDown {
		flags := tap.NormalizeFlags(ev.Flags)
		e.shortcutFlags = flags
		e.shortcutKey = ev.KeyCode
		e.recording = false
		e.persistLocked()
		fn := e.onRecorded
		e.mu.Unlock()

		e.log.Info("shortcut recorded",
			"shortcut", tap.FormatFlags(flags), "keycode", ev.KeyCode)
		if fn != nil {
			fn(flags, ev.KeyCode)
		}
		return tap.Pass
	}

	// 2. Emergency unlock. Matching does not require blocking to be
	// active, and the keystroke itself always passes through.
	if e.shortcutEnabled && ev.Kind == tap.KindKeyDown &&
		tap.NormalizeFlags(ev.Flags) == e.shortcutFlags &&
		ev.KeyCode == e.shortcutKey {
		e.blocking = false
		e.persistLocked()
		fn := e.onState
		e.mu.Unlock()

		e.log.Info("emergency shortcut detected, blocking disabled")
		if fn != nil {
			fn(false)
		}
		return tap.Pass
	}

	// 3. Blocking inactive: everything passes.
	if !e.blocking {
		e.mu.Unlock()
		return tap.Pass
	}

	// 4. Blocking active: suppress the keyboard event categories, pass
	// anything else untouched.
	kind := ev.Kind
	e.mu.Unlock()
	switch kind {
	case tap.KindKeyDown, tap.KindKeyUp, tap.KindModifierChange, tap.KindSystemDefined:
		e.log.Debug("keyboard event suppressed", "kind", kind)
		return tap.Suppress
	}
	return tap.Pass
}

// persistLocked writes the current state through the store. Persistence
// failures are logged and swallowed; they must never crash the callback.
// Callers hold e.mu.
func (e *Engine) persistLocked() {
	err := e.store.Save(settings.Settings{
		ShortcutEnabled: e.shortcutEnabled,
		ShortcutFlags:   e.shortcutFlags,
		ShortcutKeycode: e.shortcutKey,
		BlockingEnabled: e.blocking,
	})
	if err != nil {
		e.log.Error("saving settings failed", "error", err)
	}
}
