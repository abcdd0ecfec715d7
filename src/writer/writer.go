package writer

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"copypolish/src/clipboard"
	"copypolish/src/keys"
	"copypolish/src/notification"
)

// Terminator is appended to every pasted result.
const Terminator = "\r\n\r\n"

const DefaultPasteDelay = 100 * time.Millisecond

const (
	TitleSuccess = "İşlem Başarılı!"
	BodySuccess  = "Metin düzeltildi ve yapıştırıldı."
	TitleFailure = "İşlem Başarısız Oldu"
	BodyFailure  = "Metin düzeltilemedi. API hatası olabilir."
)

// Writer delivers a job's outcome back to the focused application.
type Writer struct {
	Clipboard  clipboard.Clipboard
	Keys       keys.Synthesizer
	Notifier   notification.Notifier
	PasteDelay time.Duration
	Sleep      func(time.Duration)
}

func New(cb clipboard.Clipboard, kb keys.Synthesizer, n notification.Notifier) *Writer {
	return &Writer{Clipboard: cb, Keys: kb, Notifier: n, PasteDelay: DefaultPasteDelay, Sleep: time.Sleep}
}

// Format strips trailing whitespace and appends Terminator.
func Format(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace) + Terminator
}

// Success puts the formatted result on the clipboard and pastes it. On error
// nothing has been pasted and no notification was sent.
func (w *Writer) Success(text string) error {
	if err := w.Clipboard.Write(Format(text)); err != nil {
		return fmt.Errorf("write result to clipboard: %w", err)
	}
	w.sleep(w.PasteDelay)
	if err := w.Keys.Paste(); err != nil {
		return fmt.Errorf("send paste: %w", err)
	}
	w.Notifier.Notify(TitleSuccess, BodySuccess)
	return nil
}

// Failure puts original back unchanged and reports the failure. No paste.
func (w *Writer) Failure(original string) {
	if err := w.Clipboard.Write(original); err != nil {
		log.Printf("writer: failed to restore clipboard: %v", err)
	}
	w.Notifier.Notify(TitleFailure, BodyFailure)
}

func (w *Writer) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if w.Sleep != nil {
		w.Sleep(d)
		return
	}
	time.Sleep(d)
}
