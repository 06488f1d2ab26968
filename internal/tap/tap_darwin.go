//go:build darwin

package tap

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework CoreFoundation

#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

#ifndef kCGEventSystemDefined
#define kCGEventSystemDefined 14
#endif

extern CGEventRef goTapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static int axTrusted(void) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef opts = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
	                                          &kCFTypeDictionaryKeyCallBacks,
	                                          &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(opts);
	CFRelease(opts);
	return trusted ? 1 : 0;
}

static CFMachPortRef createKeyboardTap(uintptr_t handle) {
	CGEventMask mask = CGEventMaskBit(kCGEventKeyDown) |
	                   CGEventMaskBit(kCGEventKeyUp) |
	                   CGEventMaskBit(kCGEventFlagsChanged) |
	                   CGEventMaskBit(kCGEventSystemDefined);
	return CGEventTapCreate(kCGSessionEventTap,
	                        kCGHeadInsertEventTap,
	                        kCGEventTapOptionDefault,
	                        mask,
	                        goTapCallback,
	                        (void *)handle);
}

static CFRunLoopSourceRef createTapSource(CFMachPortRef tapPort) {
	return CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tapPort, 0);
}

static void addTapSource(CFRunLoopRef loop, CFRunLoopSourceRef source) {
	CFRunLoopAddSource(loop, source, kCFRunLoopCommonModes);
}

static void removeTapSource(CFRunLoopRef loop, CFRunLoopSourceRef source) {
	CFRunLoopRemoveSource(loop, source, kCFRunLoopCommonModes);
}

static void enableTap(CFMachPortRef tapPort, int on) {
	CGEventTapEnable(tapPort, on ? true : false);
}

static CFRunLoopRef currentRunLoop(void) {
	return CFRunLoopGetCurrent();
}

static void runCurrentRunLoop(void) {
	CFRunLoopRun();
}

static void stopRunLoop(CFRunLoopRef loop) {
	CFRunLoopStop(loop);
}

static int64_t eventKeycode(CGEventRef event) {
	return CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}

static uint64_t eventFlags(CGEventRef event) {
	return (uint64_t)CGEventGetFlags(event);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"sync"
	"unsafe"
)

// Tap owns a session-level CGEventTap and the background goroutine that
// services its run loop. One Tap serves one installed engine.
type Tap struct {
	mu      sync.Mutex
	handler Handler
	loop    C.CFRunLoopRef
	running bool
	done    chan struct{}
}

// New returns an unstarted Tap.
func New() *Tap {
	return &Tap{}
}

// Start installs the event tap and begins delivering events to h. It spawns
// a dedicated OS-thread-locked goroutine that owns the tap's run loop, and
// returns once the tap is live (or with the startup error). Returns
// ErrPermissionDenied when Accessibility trust is missing and
// ErrCreateFailed for other tap creation failures.
func (t *Tap) Start(h Handler) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("event tap already running")
	}
	t.running = true
	t.done = make(chan struct{})
	t.mu.Unlock()

	ready := make(chan error, 1)
	go t.run(h, ready)

	if err := <-ready; err != nil {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
		return err
	}
	return nil
}

func (t *Tap) run(h Handler, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	if C.axTrusted() == 0 {
		ready <- ErrPermissionDenied
		return
	}

	handle := cgo.NewHandle(t)
	defer handle.Delete()

	tapPort := C.createKeyboardTap(C.uintptr_t(handle))
	if tapPort == C.CFMachPortRef(0) {
		ready <- ErrCreateFailed
		return
	}

	source := C.createTapSource(tapPort)
	loop := C.currentRunLoop()
	C.addTapSource(loop, source)
	C.enableTap(tapPort, 1)

	t.mu.Lock()
	t.handler = h
	t.loop = loop
	t.mu.Unlock()

	ready <- nil
	C.runCurrentRunLoop()

	// Stop was requested: tear the tap down on its owning thread so no
	// callback can run once Stop returns.
	C.removeTapSource(loop, source)
	C.enableTap(tapPort, 0)
	C.CFRelease(C.CFTypeRef(source))
	C.CFRelease(C.CFTypeRef(tapPort))

	t.mu.Lock()
	t.handler = nil
	t.loop = 0
	t.mu.Unlock()
}

// Stop shuts the tap down and waits for its background goroutine to release
// the run-loop source and the tap. Safe to call multiple times.
func (t *Tap) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	loop := t.loop
	done := t.done
	t.mu.Unlock()

	if loop != 0 {
		C.stopRunLoop(loop)
	}
	<-done
}

func eventKind(typ C.CGEventType) EventKind {
	switch typ {
	case C.kCGEventKeyDown:
		return KindKeyDown
	case C.kCGEventKeyUp:
		return KindKeyUp
	case C.kCGEventFlagsChanged:
		return KindModifierChange
	case C.kCGEventSystemDefined:
		return KindSystemDefined
	}
	return KindOther
}

//export goTapCallback
func goTapCallback(_ C.CGEventTapProxy, typ C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	t, ok := cgo.Handle(uintptr(refcon)).Value().(*Tap)
	if !ok {
		return event
	}

	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h == nil {
		return event
	}

	ev := KeyEvent{
		Kind:    eventKind(typ),
		KeyCode: uint16(C.eventKeycode(event)),
		Flags:   uint64(C.eventFlags(event)),
	}
	if h(ev) == Suppress {
		return C.CGEventRef(0)
	}
	return event
}
