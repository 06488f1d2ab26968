// Command keylock-probe is a manual helper for picking an emergency
// shortcut: it prints every key-down it observes, with the raw key code to
// put in settings.conf. It only listens; nothing is suppressed.
//
// Press Ctrl+C to exit.
//
// Usage:
//
//	go run ./cmd/keylock-probe
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	hook "github.com/robotn/gohook"
)

func main() {
	fmt.Println("Press keys to see their codes; Ctrl+C to exit.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nShutting down...")
		hook.End()
	}()

	events := hook.Start()
	for ev := range events {
		if ev.Kind != hook.KeyDown {
			continue
		}
		name := hook.RawcodetoKeychar(ev.Rawcode)
		fmt.Printf("key-down  rawcode=%-4d  key=%q\n", ev.Rawcode, name)
	}
	fmt.Println("Done.")
}
