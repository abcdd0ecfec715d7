package keys

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

// Synthesizer injects the system-wide copy and paste commands into whatever
// window currently holds input focus.
type Synthesizer interface {
	Copy() error
	Paste() error
}

// Keyboard drives keybd_event. One KeyBonding is shared by every caller, so
// presses are serialised.
type Keyboard struct {
	mu sync.Mutex
	kb keybd_event.KeyBonding
}

// New creates the virtual keyboard. On Linux the uinput device needs a moment
// before the first event is accepted.
func New() (*Keyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("init virtual keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}
	return &Keyboard{kb: kb}, nil
}

func (k *Keyboard) Copy() error  { return k.chord(keybd_event.VK_C) }
func (k *Keyboard) Paste() error { return k.chord(keybd_event.VK_V) }

func (k *Keyboard) chord(key int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kb.Clear()
	k.kb.SetKeys(key)
	k.kb.HasCTRL(true)
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("send ctrl chord: %w", err)
	}
	return nil
}
