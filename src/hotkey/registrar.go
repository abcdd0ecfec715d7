package hotkey

import (
	"fmt"
	"strings"
)

const (
	// BackendNative uses OS hotkey registration; the combo is consumed and
	// never reaches the focused application.
	BackendNative = "native"
	// BackendHook observes the raw keyboard stream through gohook. It cannot
	// suppress the combo.
	BackendHook = "hook"
)

// Handle is one live registration.
type Handle interface {
	Unregister() error
}

// Registrar registers global hotkeys. Callbacks run on the registrar's own
// goroutine and may block; the next trigger of the same combo waits for them.
type Registrar interface {
	Register(c Combo, callback func()) (Handle, error)
}

// New returns the registrar for backend ("" means native).
func New(backend string) (Registrar, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendNative:
		return newNativeRegistrar(), nil
	case BackendHook:
		return NewHookRegistrar(), nil
	default:
		return nil, fmt.Errorf("unknown hotkey backend %q", backend)
	}
}
