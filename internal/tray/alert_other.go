//go:build !darwin

package tray

import "fmt"

// Alert prints the message on platforms without a native dialog.
func Alert(title, message string) error {
	fmt.Printf("%s: %s\n", title, message)
	return nil
}
