//go:build windows || linux || darwin

package hotkey

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"
)

var nativeKeys = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "enter": hotkey.KeyReturn, "return": hotkey.KeyReturn,
	"esc": hotkey.KeyEscape, "escape": hotkey.KeyEscape, "tab": hotkey.KeyTab,
	"delete": hotkey.KeyDelete, "del": hotkey.KeyDelete,
	"left": hotkey.KeyLeft, "right": hotkey.KeyRight, "up": hotkey.KeyUp, "down": hotkey.KeyDown,

	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
	"f13": hotkey.KeyF13, "f14": hotkey.KeyF14, "f15": hotkey.KeyF15, "f16": hotkey.KeyF16,
	"f17": hotkey.KeyF17, "f18": hotkey.KeyF18, "f19": hotkey.KeyF19, "f20": hotkey.KeyF20,
}

type nativeRegistrar struct{}

func newNativeRegistrar() Registrar { return nativeRegistrar{} }

func (nativeRegistrar) Register(c Combo, callback func()) (Handle, error) {
	key, ok := nativeKeys[c.Key]
	if !ok {
		return nil, fmt.Errorf("hotkey %s: key %q not supported by native backend", c, c.Key)
	}
	mods := make([]hotkey.Modifier, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		mod, ok := modifierMap[m]
		if !ok {
			return nil, fmt.Errorf("hotkey %s: modifier %q not supported on this platform", c, m)
		}
		mods = append(mods, mod)
	}

	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register %s: %w", c, err)
	}
	log.Printf("hotkey: registered %s (native)", c)

	h := &nativeHandle{hk: hk, combo: c, stop: make(chan struct{}), done: make(chan struct{})}
	go h.listen(callback)
	return h, nil
}

type nativeHandle struct {
	hk    *hotkey.Hotkey
	combo Combo
	once  sync.Once
	stop  chan struct{}
	done  chan struct{}
}

func (h *nativeHandle) listen(callback func()) {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case _, ok := <-h.hk.Keydown():
			if !ok {
				return
			}
			log.Printf("hotkey: %s pressed", h.combo)
			runCallback(h.combo, callback)
		}
	}
}

func (h *nativeHandle) Unregister() error {
	var err error
	h.once.Do(func() {
		close(h.stop)
		err = h.hk.Unregister()
		log.Printf("hotkey: unregistered %s (native)", h.combo)
	})
	return err
}

// runCallback keeps a panicking callback from killing the listener goroutine.
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
