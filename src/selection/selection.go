package selection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"copypolish/src/clipboard"
	"copypolish/src/keys"
)

const (
	DefaultSettleDelay  = 200 * time.Millisecond
	DefaultPollInterval = 25 * time.Millisecond
)

// Selection is the outcome of one clipboard round-trip.
type Selection struct {
	// Original is the clipboard content before the round-trip started.
	Original string
	Text     string
}

// Extractor approximates "the currently selected text" by clearing the
// clipboard, sending a copy command and reading back what the focused
// application put there.
type Extractor struct {
	Clipboard clipboard.Clipboard
	Keys      keys.Synthesizer
	// SettleDelay is the fixed wait after the copy command before the first read.
	SettleDelay time.Duration
	// Grace keeps polling an empty clipboard for this much longer. Zero means
	// a single read after SettleDelay.
	Grace        time.Duration
	PollInterval time.Duration
}

func New(cb clipboard.Clipboard, kb keys.Synthesizer) *Extractor {
	return &Extractor{
		Clipboard:    cb,
		Keys:         kb,
		SettleDelay:  DefaultSettleDelay,
		PollInterval: DefaultPollInterval,
	}
}

// Timeout is the hard bound on a single Extract call, copy command included.
func (e *Extractor) Timeout() time.Duration {
	return e.SettleDelay + e.Grace + time.Second
}

// Extract runs the round-trip. The original clipboard content is put back
// before Extract returns in every case; the selected text travels only in the
// returned Selection. ok is false when nothing was selected or the hard bound
// was hit.
func (e *Extractor) Extract(ctx context.Context) (Selection, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout())
	defer cancel()

	original, err := e.Clipboard.Read()
	if err != nil {
		return Selection{}, false, fmt.Errorf("read clipboard: %w", err)
	}

	if err := e.Clipboard.Write(""); err != nil {
		return Selection{}, false, fmt.Errorf("clear clipboard: %w", err)
	}

	text, err := e.copyAndAwait(ctx)
	e.restore(original)
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("selection: gave up after %v", e.Timeout())
		return Selection{}, false, nil
	}
	if err != nil {
		return Selection{}, false, err
	}
	if text == "" {
		return Selection{}, false, nil
	}
	return Selection{Original: original, Text: text}, true, nil
}

// copyAndAwait sends the copy command and waits for the selection, both under
// ctx. A copy command that never returns is abandoned once ctx is done.
func (e *Extractor) copyAndAwait(ctx context.Context) (string, error) {
	copied := make(chan error, 1)
	go func() { copied <- e.Keys.Copy() }()
	select {
	case err := <-copied:
		if err != nil {
			return "", fmt.Errorf("send copy: %w", err)
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return e.await(ctx)
}

func (e *Extractor) await(ctx context.Context) (string, error) {
	if err := sleep(ctx, e.SettleDelay); err != nil {
		return "", err
	}
	text, err := e.Clipboard.Read()
	if err != nil {
		return "", fmt.Errorf("read selection: %w", err)
	}
	if text != "" || e.Grace <= 0 {
		return text, nil
	}

	interval := e.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(e.Grace)
	for time.Now().Before(deadline) {
		if err := sleep(ctx, interval); err != nil {
			return "", err
		}
		text, err = e.Clipboard.Read()
		if err != nil {
			return "", fmt.Errorf("read selection: %w", err)
		}
		if text != "" {
			return text, nil
		}
	}
	return "", nil
}

func (e *Extractor) restore(original string) {
	if err := e.Clipboard.Write(original); err != nil {
		log.Printf("selection: failed to restore clipboard: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
