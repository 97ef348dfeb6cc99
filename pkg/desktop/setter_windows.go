//go:build windows

package desktop

import (
	"context"
	"fmt"
	"unsafe"

	"github.com/doorhinge/wallscenes/pkg/display"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

// Windows API constants
const (
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02
)

// windowsSetter sets the wallpaper shared by all monitors.
type windowsSetter struct{}

// NewSetter returns the setter for this system. The runner is unused.
func NewSetter(_ CommandRunner) Setter {
	return &windowsSetter{}
}

// SetWallpaper sets the desktop wallpaper. Windows applies it to every monitor.
func (w *windowsSetter) SetWallpaper(_ context.Context, imagePath string, _ display.Display) error {
	imagePathUTF16, err := windows.UTF16PtrFromString(imagePath)
	if err != nil {
		return err
	}

	ret, _, err := systemParametersInfo.Call(
		uintptr(spiSetDeskWallpaper),
		uintptr(0),
		uintptr(unsafe.Pointer(imagePathUTF16)),
		uintptr(spifUpdateIniFile|spifSendChange),
	)
	if ret == 0 {
		return fmt.Errorf("SystemParametersInfoW: %w", err)
	}
	return nil
}
