// Package tap wraps the macOS CGEventTap in a small, platform-neutral
// surface: an event kind enum, a two-value pass/suppress decision, and a
// handler function invoked for every intercepted keyboard event. All
// OS-specific marshaling lives in the darwin adapter so the handler itself
// stays pure and testable.
package tap

import (
	"errors"
	"strings"
)

// EventKind classifies an intercepted event.
type EventKind int

const (
	// KindOther is any event category the blocker does not act on.
	KindOther EventKind = iota
	// KindKeyDown is a key press.
	KindKeyDown
	// KindKeyUp is a key release.
	KindKeyUp
	// KindModifierChange is a modifier flags change (kCGEventFlagsChanged).
	KindModifierChange
	// KindSystemDefined is a system-defined event such as media keys.
	KindSystemDefined
)

// String returns the kind name for logs.
func (k EventKind) String() string {
	switch k {
	case KindKeyDown:
		return "key-down"
	case KindKeyUp:
		return "key-up"
	case KindModifierChange:
		return "modifier-change"
	case KindSystemDefined:
		return "system-defined"
	}
	return "other"
}

// Decision is the result of handling an event.
type Decision int

const (
	// Pass delivers the event to the rest of the system unmodified.
	Pass Decision = iota
	// Suppress drops the event so no other application receives it.
	Suppress
)

// KeyEvent is an intercepted keyboard event.
type KeyEvent struct {
	Kind    EventKind
	KeyCode uint16
	Flags   uint64
}

// Handler decides, per event, whether it passes through or is suppressed.
// It runs synchronously on the tap's background loop and must not block.
type Handler func(KeyEvent) Decision

// Modifier bit masks, matching the CGEventFlags values the tap reports.
const (
	MaskShift     uint64 = 1 << 17
	MaskControl   uint64 = 1 << 18
	MaskAlternate uint64 = 1 << 19
	MaskCommand   uint64 = 1 << 20

	// MaskModifiers is the set of modifier bits a shortcut may contain.
	MaskModifiers = MaskShift | MaskControl | MaskAlternate | MaskCommand
)

// NormalizeFlags strips everything but the four primary modifier bits.
// Raw event flags carry extra state (caps lock, fn, device-dependent bits)
// that must never reach a stored or compared shortcut.
func NormalizeFlags(flags uint64) uint64 {
	return flags & MaskModifiers
}

// FormatFlags renders a normalized modifier mask as a readable combo,
// e.g. "cmd+shift". Returns "none" for an empty mask.
func FormatFlags(flags uint64) string {
	var parts []string
	if flags&MaskControl != 0 {
		parts = append(parts, "ctrl")
	}
	if flags&MaskAlternate != 0 {
		parts = append(parts, "option")
	}
	if flags&MaskShift != 0 {
		parts = append(parts, "shift")
	}
	if flags&MaskCommand != 0 {
		parts = append(parts, "cmd")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// ErrPermissionDenied means macOS Accessibility trust has not been granted
// to this process. The user must enable it in System Settings and restart.
var ErrPermissionDenied = errors.New("accessibility permission denied")

// ErrCreateFailed means CGEventTapCreate failed for a reason other than
// missing permissions.
var ErrCreateFailed = errors.New("failed to create event tap")
