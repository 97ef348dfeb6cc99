//go:build darwin

package desktop

import (
	"context"
	"fmt"

	"github.com/doorhinge/wallscenes/pkg/display"
)

// macOSSetter sets the picture of one display through System Events.
type macOSSetter struct {
	runner CommandRunner
}

// NewSetter returns the setter for this system.
func NewSetter(runner CommandRunner) Setter {
	return &macOSSetter{runner: runner}
}

// SetWallpaper sets the desktop picture of the display's visible Space.
func (m *macOSSetter) SetWallpaper(ctx context.Context, imagePath string, d display.Display) error {
	script := fmt.Sprintf(`tell application "System Events" to set picture of desktop %d to %s`,
		d.Index+1, appleScriptString(imagePath))
	if err := runAppleScript(ctx, m.runner, script); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	return nil
}
