package hotkey

import (
	"fmt"
	"strings"
)

// Combo is a parsed hotkey string such as "ctrl+shift+k".
type Combo struct {
	Raw       string
	Modifiers []string // normalised: ctrl, alt, shift, cmd
	Key       string
}

// Keys returns modifiers followed by the main key.
func (c Combo) Keys() []string {
	return append(append([]string(nil), c.Modifiers...), c.Key)
}

// String renders the combo the way the listener announces it.
func (c Combo) String() string {
	return strings.ToUpper(strings.Join(c.Keys(), "+"))
}

// Parse converts a hotkey string like "Ctrl+Alt+q" to a Combo. Exactly one
// non-modifier key is required.
func Parse(s string) (Combo, error) {
	keys := parseHotkey(s)
	c := Combo{Raw: strings.TrimSpace(s)}
	for _, k := range keys {
		switch {
		case k == "":
			return Combo{}, fmt.Errorf("hotkey %q: empty key", s)
		case isModifier(k):
			c.Modifiers = append(c.Modifiers, k)
		case c.Key != "":
			return Combo{}, fmt.Errorf("hotkey %q: more than one non-modifier key", s)
		default:
			c.Key = k
		}
	}
	if c.Key == "" {
		return Combo{}, fmt.Errorf("hotkey %q: no main key", s)
	}
	if keyNameToRawcodes(c.Key) == nil {
		return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, c.Key)
	}
	return c, nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "control":
			part = "ctrl"
		case "option":
			part = "alt"
		case "win", "cmd", "super", "command", "meta":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

func isModifier(k string) bool {
	switch k {
	case "ctrl", "alt", "shift", "cmd":
		return true
	}
	return false
}

var specialRawcodes = map[string][]uint16{
	// both left and right variants for modifiers
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes. The hook
// backend matches these against gohook rawcodes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := specialRawcodes[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(65 + c - 'a')} // VK 0x41-0x5A
		case c >= '0' && c <= '9':
			return []uint16{uint16(48 + c - '0')} // VK 0x30-0x39
		}
	}
	if n, ok := functionKey(keyName); ok && n <= 24 {
		return []uint16{uint16(111 + n)} // VK_F1 = 112
	}
	return nil
}

// functionKey parses "f1".."f24".
func functionKey(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'f' {
		return 0, false
	}
	n := 0
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, n >= 1
}
