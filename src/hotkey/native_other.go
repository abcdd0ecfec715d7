//go:build !windows && !linux && !darwin

package hotkey

import (
	"errors"
	"log"
)

type nativeRegistrar struct{}

func newNativeRegistrar() Registrar { return nativeRegistrar{} }

func (nativeRegistrar) Register(c Combo, callback func()) (Handle, error) {
	return nil, errors.New("native hotkeys are not supported on this platform")
}

func runCallback(c Combo, callback func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey callback for %s: %v", c, r)
		}
	}()
	if callback != nil {
		callback()
	}
}
