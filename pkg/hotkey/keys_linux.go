//go:build linux

package hotkey

import "golang.design/x/hotkey"

const (
	modCtrl = hotkey.ModCtrl
	modAlt  = hotkey.Mod1 // Alt on most X11 keymaps

	keyRight = hotkey.KeyRight
	keyLeft  = hotkey.KeyLeft
)
