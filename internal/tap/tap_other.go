//go:build !darwin

package tap

import "errors"

var errUnsupported = errors.New("keyboard event taps are only supported on macOS")

// Tap is a stub on non-darwin platforms so the engine and commands build
// and test everywhere. Start always fails.
type Tap struct{}

// New returns a stub Tap.
func New() *Tap {
	return &Tap{}
}

// Start reports that event taps are unavailable on this platform.
func (t *Tap) Start(Handler) error {
	return errUnsupported
}

// Stop is a no-op.
func (t *Tap) Stop() {}
