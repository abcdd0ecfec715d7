package pastepath

import (
	"context"
	"fmt"
	"log"
	"time"

	"copypolish/src/clipboard"
	"copypolish/src/keys"
	"copypolish/src/notification"
)

const (
	TitleSuccess = "Ekran Görüntüsü"
	TitleFailure = "Ekran Görüntüsü Bulunamadı"
)

// Locator finds the screenshot file to paste.
type Locator interface {
	Latest() (string, error)
}

// CaptureFunc takes a fresh screenshot into dir and returns its path.
type CaptureFunc func(dir string) (string, error)

// Options is read on every trigger so settings changes apply immediately.
type Options struct {
	Capture    bool
	Dir        string
	AutoPaste  bool
	// PasteDelay is the wait between the clipboard write and the paste.
	PasteDelay time.Duration
}

// Handler puts the path of the newest screenshot on the clipboard.
type Handler struct {
	Clipboard clipboard.Clipboard
	Keys      keys.Synthesizer
	Notifier  notification.Notifier
	Locator   Locator
	Capture   CaptureFunc
	Options   func() Options
}

// Paste resolves the path, writes it to the clipboard and pastes it when
// AutoPaste is set. Failures are reported through the notifier too.
func (h *Handler) Paste(ctx context.Context) error {
	path, err := h.resolve()
	if err != nil {
		h.Notifier.Notify(TitleFailure, err.Error())
		return err
	}
	if err := h.Clipboard.Write(path); err != nil {
		h.Notifier.Notify(TitleFailure, "Pano yazılamadı")
		return fmt.Errorf("write path to clipboard: %w", err)
	}
	log.Printf("PastePath: %s on clipboard", path)

	if opts := h.Options(); opts.AutoPaste {
		if opts.PasteDelay > 0 {
			select {
			case <-time.After(opts.PasteDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := h.Keys.Paste(); err != nil {
			h.Notifier.Notify(TitleFailure, "Yapıştırılamadı")
			return fmt.Errorf("send paste: %w", err)
		}
	}
	h.Notifier.Notify(TitleSuccess, path)
	return nil
}

func (h *Handler) resolve() (string, error) {
	opts := h.Options()
	if opts.Capture && h.Capture != nil {
		path, err := h.Capture(opts.Dir)
		if err != nil {
			return "", fmt.Errorf("capture screenshot: %w", err)
		}
		return path, nil
	}
	return h.Locator.Latest()
}
