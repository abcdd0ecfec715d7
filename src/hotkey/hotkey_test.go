package hotkey

import (
	"sync"
	"testing"
	"time"

	gohook "github.com/robotn/gohook"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"cmd", []uint16{91, 92}},
		{"k", []uint16{75}},
		{"j", []uint16{74}},
		{"0", []uint16{48}},
		{"9", []uint16{57}},
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f24", []uint16{135}},
		{"space", []uint16{32}},
		{"esc", []uint16{27}},
		{"f25", nil},
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Fatalf("keyNameToRawcodes(%q) returned %d rawcodes, expected %d",
					tt.keyName, len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToRawcodes(%q)[%d] = %d, expected %d",
						tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		mods    []string
		key     string
		display string
		wantErr bool
	}{
		{input: "ctrl+shift+k", mods: []string{"ctrl", "shift"}, key: "k", display: "CTRL+SHIFT+K"},
		{input: "Ctrl + Shift + J", mods: []string{"ctrl", "shift"}, key: "j", display: "CTRL+SHIFT+J"},
		{input: "Win+Shift+S", mods: []string{"cmd", "shift"}, key: "s", display: "CMD+SHIFT+S"},
		{input: "Alt+F4", mods: []string{"alt"}, key: "f4", display: "ALT+F4"},
		{input: "control+option+p", mods: []string{"ctrl", "alt"}, key: "p", display: "CTRL+ALT+P"},
		{input: "ctrl+shift", wantErr: true},
		{input: "ctrl+a+b", wantErr: true},
		{input: "ctrl++k", wantErr: true},
		{input: "ctrl+banana", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %+v", tt.input, c)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if c.Key != tt.key {
				t.Errorf("Expected key %q, got %q", tt.key, c.Key)
			}
			if len(c.Modifiers) != len(tt.mods) {
				t.Fatalf("Expected modifiers %v, got %v", tt.mods, c.Modifiers)
			}
			for i := range tt.mods {
				if c.Modifiers[i] != tt.mods[i] {
					t.Errorf("Modifier[%d] = %q, expected %q", i, c.Modifiers[i], tt.mods[i])
				}
			}
			if c.String() != tt.display {
				t.Errorf("Expected display %q, got %q", tt.display, c.String())
			}
		})
	}
}

func TestMatcherFiresOnlyCompletedCombo(t *testing.T) {
	m := newMatcher()
	var rewrite, translate int
	m.add(mustParse(t, "ctrl+shift+k"), func() { rewrite++ })
	m.add(mustParse(t, "ctrl+shift+j"), func() { translate++ })

	press := func(codes ...uint16) {
		for _, rc := range codes {
			for _, fire := range m.keyDown(rc) {
				fire()
			}
		}
	}

	press(162, 160, 75) // LCtrl, LShift, K
	if rewrite != 1 || translate != 0 {
		t.Fatalf("Expected rewrite=1 translate=0, got %d/%d", rewrite, translate)
	}

	// releasing K and pressing J with modifiers still held
	m.keyUp(75)
	press(163, 161, 74) // right-hand modifiers count as well
	if translate != 1 {
		t.Fatalf("Expected translate=1, got %d", translate)
	}

	m.keyUp(162)
	m.keyUp(160)
	m.keyUp(163)
	m.keyUp(161)
	press(75) // K alone must not fire
	if rewrite != 1 {
		t.Errorf("Expected K alone not to fire, rewrite=%d", rewrite)
	}
}

func TestMatcherRepeatsWhileModifiersHeld(t *testing.T) {
	m := newMatcher()
	fired := 0
	m.add(mustParse(t, "ctrl+shift+k"), func() { fired++ })
	press := func(rc uint16) {
		for _, fire := range m.keyDown(rc) {
			fire()
		}
	}

	press(162)
	press(160)
	for i := 0; i < 3; i++ {
		press(75)
		m.keyUp(75)
	}
	if fired != 3 {
		t.Errorf("Expected 3 firings with Ctrl+Shift held, got %d", fired)
	}

	// auto-repeat of a held K fires only once
	press(75)
	press(75)
	press(75)
	if fired != 4 {
		t.Errorf("Expected auto-repeat to fire once, got %d", fired)
	}
}

func TestMatcherCallbackPanicIsContained(t *testing.T) {
	m := newMatcher()
	m.add(mustParse(t, "alt+q"), func() { panic("boom") })
	for _, rc := range []uint16{164, 81} {
		for _, fire := range m.keyDown(rc) {
			fire()
		}
	}
}

func TestHookRegistrarLifecycle(t *testing.T) {
	events := make(chan gohook.Event, 8)
	var mu sync.Mutex
	starts, ends := 0, 0
	r := NewHookRegistrar()
	r.start = func() chan gohook.Event {
		mu.Lock()
		defer mu.Unlock()
		starts++
		return events
	}
	r.end = func() {
		mu.Lock()
		defer mu.Unlock()
		ends++
	}

	fired := make(chan struct{}, 1)
	h1, err := r.Register(mustParse(t, "ctrl+k"), func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	h2, err := r.Register(mustParse(t, "ctrl+j"), func() {})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	events <- gohook.Event{Kind: gohook.KeyDown, Rawcode: 162}
	events <- gohook.Event{Kind: gohook.KeyDown, Rawcode: 75}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Expected ctrl+k callback")
	}

	_ = h1.Unregister()
	_ = h1.Unregister()
	mu.Lock()
	if ends != 0 {
		t.Errorf("Expected hook to keep running while a binding remains")
	}
	mu.Unlock()
	_ = h2.Unregister()

	mu.Lock()
	defer mu.Unlock()
	if starts != 1 || ends != 1 {
		t.Errorf("Expected one start and one end, got %d/%d", starts, ends)
	}
}

func TestNewRegistrarBackends(t *testing.T) {
	if _, err := New("hook"); err != nil {
		t.Errorf("hook backend: %v", err)
	}
	if _, err := New("telepathy"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func mustParse(t *testing.T, s string) Combo {
	t.Helper()
	c, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}
