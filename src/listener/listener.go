package listener

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"copypolish/src/config"
	"copypolish/src/hotkey"
	"copypolish/src/job"
	"copypolish/src/notification"
)

const (
	TitleOn  = "Dinleyici Açık"
	TitleOff = "Dinleyici Kapalı"
)

var ErrNoBindings = errors.New("no hotkey could be registered")

type State int

const (
	Stopped State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "stopped"
}

// HandlerFunc returns the trigger callback for a kind.
type HandlerFunc func(kind job.Kind) func()

type binding struct {
	kind   job.Kind
	raw    string
	handle hotkey.Handle
}

// Listener owns the Stopped/Listening toggle and the live registrations.
// Start, Stop and Reload are expected to be called from one goroutine; the
// mutex only guards readers such as State and Bindings.
type Listener struct {
	registrar hotkey.Registrar
	view      func() config.View
	handler   HandlerFunc
	notifier  notification.Notifier

	mu     sync.Mutex
	state  State
	active []binding
}

func New(reg hotkey.Registrar, view func() config.View, handler HandlerFunc, n notification.Notifier) *Listener {
	return &Listener{registrar: reg, view: view, handler: handler, notifier: n}
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Bindings returns the registered kind → hotkey set; empty while Stopped.
func (l *Listener) Bindings() map[job.Kind]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[job.Kind]string, len(l.active))
	for _, b := range l.active {
		out[b.kind] = b.raw
	}
	return out
}

// Start registers every non-empty binding in Kinds order. Bindings that fail
// to parse or register are logged and skipped.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Listening {
		return nil
	}

	bindings := l.view().HotkeyBindings
	var active []binding
	var errs []error
	for _, kind := range job.Kinds {
		raw := strings.TrimSpace(bindings[kind])
		if raw == "" {
			continue
		}
		h, err := l.register(kind, raw)
		if err != nil {
			log.Printf("Listener: %s hotkey %q not registered: %v", kind, raw, err)
			errs = append(errs, err)
			continue
		}
		log.Printf("Listener: %s bound to %s", kind, raw)
		active = append(active, binding{kind: kind, raw: raw, handle: h})
	}
	if len(active) == 0 {
		if len(errs) == 0 {
			return ErrNoBindings
		}
		return fmt.Errorf("%w: %w", ErrNoBindings, errors.Join(errs...))
	}

	l.active = active
	l.state = Listening
	l.notifier.Notify(TitleOn, announce(active))
	return nil
}

func (l *Listener) register(kind job.Kind, raw string) (hotkey.Handle, error) {
	c, err := hotkey.Parse(raw)
	if err != nil {
		return nil, err
	}
	return l.registrar.Register(c, l.handler(kind))
}

// Stop unregisters every recorded binding. Unregister errors are joined and
// returned; the state is Stopped regardless.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Stopped {
		return nil
	}

	var errs []error
	for _, b := range l.active {
		if err := b.handle.Unregister(); err != nil {
			errs = append(errs, fmt.Errorf("unregister %s: %w", b.kind, err))
		}
	}
	l.active = nil
	l.state = Stopped
	err := errors.Join(errs...)
	if err != nil {
		log.Printf("Listener: stop finished with errors: %v", err)
	}
	l.notifier.Notify(TitleOff, "")
	return err
}

// Reload re-registers from a fresh view when Listening.
func (l *Listener) Reload() error {
	if l.State() != Listening {
		return nil
	}
	stopErr := l.Stop()
	return errors.Join(stopErr, l.Start())
}

func announce(active []binding) string {
	combos := make([]string, len(active))
	for i, b := range active {
		combos[i] = strings.ToUpper(b.raw)
	}
	return strings.Join(combos, " / ") + " etkin"
}
