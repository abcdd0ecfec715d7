package clipboard

import (
	"fmt"
	"log"
	"strings"
	"sync"

	atotto "github.com/atotto/clipboard"
	"golang.design/x/clipboard"
)

const (
	BackendSystem = "system"
	BackendAtotto = "atotto"
)

// Clipboard is the text clipboard as seen by the pipeline.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

var (
	writeMu sync.Mutex
)

// New returns the requested backend. The system backend falls back to atotto
// when golang.design/x/clipboard cannot initialise (no display, missing libs).
func New(backend string) (Clipboard, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendSystem:
		if err := clipboard.Init(); err != nil {
			log.Printf("clipboard: system backend unavailable (%v), falling back to atotto", err)
			return Atotto{}, nil
		}
		return System{}, nil
	case BackendAtotto:
		if atotto.Unsupported {
			return nil, fmt.Errorf("atotto clipboard is unsupported on this platform")
		}
		return Atotto{}, nil
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", backend)
	}
}

// System uses golang.design/x/clipboard. Init must have succeeded.
type System struct{}

func (System) Read() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

// Write performs a mutex-guarded clipboard write to prevent corruption under parallel writes.
func (System) Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// Atotto shells out to the platform clipboard tools via atotto/clipboard.
type Atotto struct{}

func (Atotto) Read() (string, error) {
	return atotto.ReadAll()
}

func (Atotto) Write(text string) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	return atotto.WriteAll(text)
}
