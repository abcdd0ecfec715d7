//go:build linux

package hotkey

import "golang.design/x/hotkey"

// X11: Mod1 is Alt, Mod4 is Super on common keymaps.
var modifierMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.Mod1,
	"shift": hotkey.ModShift,
	"cmd":   hotkey.Mod4,
}
