package hotkey

import (
	"errors"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// HookRegistrar matches combos against the gohook keyboard stream. A single
// gohook session serves every registration; it starts with the first Register
// and ends with the last Unregister.
type HookRegistrar struct {
	mu      sync.Mutex
	matcher *matcher
	running bool
	start   func() chan gohook.Event
	end     func()
}

func NewHookRegistrar() *HookRegistrar {
	return &HookRegistrar{matcher: newMatcher(), start: gohook.Start, end: gohook.End}
}

func (r *HookRegistrar) Register(c Combo, callback func()) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.matcher.add(c, callback)
	log.Printf("hotkey: registered %s (hook)", c)
	if !r.running {
		evChan := r.start()
		if evChan == nil {
			r.matcher.remove(id)
			return nil, errHookStart
		}
		r.running = true
		go r.consume(evChan)
	}
	return &hookHandle{r: r, id: id, combo: c}, nil
}

func (r *HookRegistrar) unregister(id int, c Combo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matcher.remove(id)
	log.Printf("hotkey: unregistered %s (hook)", c)
	if r.running && r.matcher.empty() {
		r.end()
		r.running = false
	}
}

func (r *HookRegistrar) consume(evChan chan gohook.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("PANIC in hotkey goroutine: %v", rec)
		}
	}()
	for ev := range evChan {
		switch ev.Kind {
		case gohook.KeyDown:
			for _, fire := range r.matcher.keyDown(ev.Rawcode) {
				fire()
			}
		case gohook.KeyUp:
			r.matcher.keyUp(ev.Rawcode)
		}
	}
	log.Printf("hotkey: event channel closed")
}

type hookHandle struct {
	r     *HookRegistrar
	id    int
	combo Combo
	once  sync.Once
}

func (h *hookHandle) Unregister() error {
	h.once.Do(func() { h.r.unregister(h.id, h.combo) })
	return nil
}

var errHookStart = errors.New("gohook.Start() returned nil channel")

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type binding struct {
	combo    Combo
	states   []keyState
	callback func()
}

// matcher tracks per-binding key states. keyDown returns the callbacks whose
// combination just completed; they are invoked outside the lock.
type matcher struct {
	mu       sync.Mutex
	nextID   int
	bindings map[int]*binding
}

func newMatcher() *matcher {
	return &matcher{bindings: make(map[int]*binding)}
}

func (m *matcher) add(c Combo, callback func()) int {
	b := &binding{combo: c, callback: callback}
	for _, name := range c.Keys() {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("ERROR: Cannot map key '%s' to rawcodes, hotkey may not work correctly", name)
			continue
		}
		b.states = append(b.states, keyState{name: name, rawcodes: rawcodes})
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.bindings[m.nextID] = b
	return m.nextID
}

func (m *matcher) remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, id)
}

func (m *matcher) empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bindings) == 0
}

func (m *matcher) keyDown(rawcode uint16) []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var fired []func()
	for _, b := range m.bindings {
		// fire on the press that completes the combo; auto-repeat of a key
		// already down does not count
		if !b.mark(rawcode, true) || !b.complete() {
			continue
		}
		log.Printf("HOTKEY COMBINATION DETECTED! %s", b.combo)
		combo, cb := b.combo, b.callback
		fired = append(fired, func() { runCallback(combo, cb) })
	}
	return fired
}

func (m *matcher) keyUp(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bindings {
		b.mark(rawcode, false)
	}
}

// mark sets the pressed flag of the key matching rawcode and reports whether
// any key changed state.
func (b *binding) mark(rawcode uint16, pressed bool) bool {
	changed := false
	for i := range b.states {
		for _, rc := range b.states[i].rawcodes {
			if rc == rawcode {
				if b.states[i].pressed != pressed {
					b.states[i].pressed = pressed
					changed = true
				}
				break
			}
		}
	}
	return changed
}

func (b *binding) complete() bool {
	if len(b.states) == 0 {
		return false
	}
	for i := range b.states {
		if !b.states[i].pressed {
			return false
		}
	}
	return true
}
