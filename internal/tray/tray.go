// Package tray is the menu-bar shell around the interception engine. It
// renders the blocking state, drives toggles and shortcut recording, and
// bridges engine notifications from the tap's background loop onto its own
// goroutine via buffered channels.
package tray

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getlantern/systray"

	"github.com/chaz8081/keylock/internal/config"
	"github.com/chaz8081/keylock/internal/engine"
	"github.com/chaz8081/keylock/internal/tap"
	"github.com/chaz8081/keylock/internal/update"
)

const (
	titleIdle     = "⌨"
	titleBlocking = "🔒"
)

type shortcut struct {
	flags   uint64
	keyCode uint16
}

// UI owns the systray lifecycle and the engine notification bridge.
type UI struct {
	eng *engine.Engine
	cfg *config.Config
	log *slog.Logger

	// Engine callbacks run on the tap's loop; they hand off here with
	// non-blocking sends and the tray goroutine consumes. At-least-once,
	// FIFO per sender.
	stateCh    chan bool
	recordedCh chan shortcut
}

// New wires the engine's callbacks to a UI instance. Call Run afterwards.
func New(eng *engine.Engine, cfg *config.Config, log *slog.Logger) *UI {
	ui := &UI{
		eng:        eng,
		cfg:        cfg,
		log:        log,
		stateCh:    make(chan bool, 8),
		recordedCh: make(chan shortcut, 1),
	}

	eng.SetStateCallback(func(active bool) {
		select {
		case ui.stateCh <- active:
		default: // drop rather than block the event callback
		}
	})
	eng.SetRecordingCallback(func(flags uint64, keyCode uint16) {
		select {
		case ui.recordedCh <- shortcut{flags: flags, keyCode: keyCode}:
		default:
		}
	})

	return ui
}

// Run enters the tray's main loop. Blocks until Quit is chosen; the engine
// is closed on the way out.
func (ui *UI) Run() {
	systray.Run(ui.onReady, ui.onExit)
}

func (ui *UI) onExit() {
	ui.eng.Close()
}

func (ui *UI) onReady() {
	systray.SetTitle(titleIdle)
	systray.SetTooltip("keylock — keyboard blocker")

	mStatus := systray.AddMenuItem("Blocking: off", "Current blocking state")
	mStatus.Disable()
	mToggle := systray.AddMenuItem("Enable blocking", "Toggle keyboard blocking")
	systray.AddSeparator()

	mShortcut := systray.AddMenuItemCheckbox("Emergency shortcut", "Unlock combination is matched while blocking", ui.eng.ShortcutEnabled())
	mRecord := systray.AddMenuItem(recordTitle(ui.eng.Shortcut()), "Capture a new unlock combination")
	systray.AddSeparator()

	mUpdate := systray.AddMenuItem("Check for updates", "Compare against the published version")
	mQuit := systray.AddMenuItem("Quit", "Quit keylock")

	if ui.cfg.Update.Check {
		go ui.logUpdateStatus()
	}

	go func() {
		for {
			select {
			case active := <-ui.stateCh:
				ui.render(mStatus, mToggle, active)

			case sc := <-ui.recordedCh:
				mRecord.SetTitle(recordTitle(sc.flags, sc.keyCode))
				ui.log.Info("new shortcut active",
					"shortcut", tap.FormatFlags(sc.flags), "keycode", sc.keyCode)

			case <-mToggle.ClickedCh:
				next := !ui.eng.Blocking()
				ui.eng.SetBlocking(next)
				ui.render(mStatus, mToggle, next)

			case <-mShortcut.ClickedCh:
				if mShortcut.Checked() {
					mShortcut.Uncheck()
					ui.eng.SetShortcutEnabled(false)
				} else {
					mShortcut.Check()
					ui.eng.SetShortcutEnabled(true)
				}

			case <-mRecord.ClickedCh:
				ui.eng.StartRecording()
				mRecord.SetTitle("Press a key combination…")

			case <-mUpdate.ClickedCh:
				go ui.checkUpdate(mUpdate)

			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (ui *UI) render(mStatus, mToggle *systray.MenuItem, active bool) {
	if active {
		systray.SetTitle(titleBlocking)
		mStatus.SetTitle("Blocking: on")
		mToggle.SetTitle("Disable blocking")
	} else {
		systray.SetTitle(titleIdle)
		mStatus.SetTitle("Blocking: off")
		mToggle.SetTitle("Enable blocking")
	}
}

func (ui *UI) checkUpdate(item *systray.MenuItem) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	latest, err := update.Check(ctx, ui.cfg.Update.URL)
	if err != nil {
		ui.log.Error("update check failed", "error", err)
		item.SetTitle("Check for updates (failed)")
		return
	}
	if update.Outdated(update.Version, latest) {
		item.SetTitle(fmt.Sprintf("Update available: %s", latest))
	} else {
		item.SetTitle("Check for updates (up to date)")
	}
}

func (ui *UI) logUpdateStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	latest, err := update.Check(ctx, ui.cfg.Update.URL)
	if err != nil {
		ui.log.Debug("startup update check failed", "error", err)
		return
	}
	if update.Outdated(update.Version, latest) {
		ui.log.Info("a newer version is available", "current", update.Version, "latest", latest)
	}
}

func recordTitle(flags uint64, keyCode uint16) string {
	return fmt.Sprintf("Record new shortcut (%s, key %d)", tap.FormatFlags(flags), keyCode)
}
