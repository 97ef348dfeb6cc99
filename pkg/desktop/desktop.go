// Package desktop sets desktop pictures. It holds the per-OS single-Space
// setters, the Propagator variants that push one image to every Space of a
// display, and the Applier that applies a whole scene.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/doorhinge/wallscenes/pkg/display"
)

// ErrUnsupported is returned when the running system cannot perform an operation.
var ErrUnsupported = errors.New("not supported on this system")

// Setter sets the desktop picture of the currently visible Space of a display.
type Setter interface {
	SetWallpaper(ctx context.Context, imagePath string, d display.Display) error
}

// CommandRunner runs an external program and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// DefaultRunner runs commands with os/exec.
var DefaultRunner CommandRunner = execRunner{}

// appleScriptString quotes s as an AppleScript string literal.
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// runAppleScript executes a one-line AppleScript through osascript.
func runAppleScript(ctx context.Context, runner CommandRunner, script string) error {
	_, err := runner.Run(ctx, "osascript", "-e", script)
	return err
}
