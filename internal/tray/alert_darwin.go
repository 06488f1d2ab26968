//go:build darwin

package tray

import (
	"fmt"
	"os/exec"
	"strings"
)

// Alert shows a blocking critical dialog. Used for startup failures that
// require a user action before the process exits.
func Alert(title, message string) error {
	script := fmt.Sprintf(
		`display dialog %q with title %q buttons {"OK"} default button "OK" with icon stop`,
		sanitize(message), sanitize(title))
	if out, err := exec.Command("osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("showing alert: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}
