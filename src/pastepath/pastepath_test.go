package pastepath

import (
	"context"
	"errors"
	"testing"

	"copypolish/src/clipboard"
	"copypolish/src/keys"
	"copypolish/src/notification"
)

type staticLocator struct {
	path string
	err  error
}

func (s staticLocator) Latest() (string, error) { return s.path, s.err }

func newHandler(loc Locator, opts Options) (*Handler, *clipboard.Memory, *keys.Recorder, *notification.Recorder) {
	cb := clipboard.NewMemory("previous")
	kb := &keys.Recorder{}
	notes := &notification.Recorder{}
	h := &Handler{
		Clipboard: cb,
		Keys:      kb,
		Notifier:  notes,
		Locator:   loc,
		Options:   func() Options { return opts },
	}
	return h, cb, kb, notes
}

func TestPasteWritesLatestPath(t *testing.T) {
	tests := []struct {
		name       string
		autoPaste  bool
		wantPastes int
	}{
		{"clipboard only", false, 0},
		{"auto paste", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, cb, kb, notes := newHandler(staticLocator{path: "/shots/a.png"}, Options{AutoPaste: tt.autoPaste})
			if err := h.Paste(context.Background()); err != nil {
				t.Fatalf("Paste: %v", err)
			}
			if cb.Text() != "/shots/a.png" {
				t.Errorf("Expected path on clipboard, got %q", cb.Text())
			}
			if kb.Pastes() != tt.wantPastes {
				t.Errorf("Expected %d pastes, got %d", tt.wantPastes, kb.Pastes())
			}
			if titles := notes.Titles(); len(titles) != 1 || titles[0] != TitleSuccess {
				t.Errorf("Unexpected notifications %q", titles)
			}
		})
	}
}

func TestPasteCapturesWhenConfigured(t *testing.T) {
	h, cb, _, _ := newHandler(staticLocator{err: errors.New("should not scan")}, Options{Capture: true, Dir: "/shots"})
	var gotDir string
	h.Capture = func(dir string) (string, error) {
		gotDir = dir
		return "/shots/screenshot-20240101-000000.png", nil
	}
	if err := h.Paste(context.Background()); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if gotDir != "/shots" || cb.Text() != "/shots/screenshot-20240101-000000.png" {
		t.Errorf("Unexpected capture dir %q / clipboard %q", gotDir, cb.Text())
	}
}

func TestPasteFailureLeavesClipboard(t *testing.T) {
	h, cb, kb, notes := newHandler(staticLocator{err: errors.New("no screenshot found")}, Options{AutoPaste: true})
	if err := h.Paste(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if cb.Text() != "previous" || kb.Pastes() != 0 {
		t.Errorf("Expected untouched clipboard and no paste, got %q / %d", cb.Text(), kb.Pastes())
	}
	if titles := notes.Titles(); len(titles) != 1 || titles[0] != TitleFailure {
		t.Errorf("Unexpected notifications %q", titles)
	}
}
