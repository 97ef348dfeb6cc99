//go:build linux

package desktop

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doorhinge/wallscenes/pkg/display"
)

// linuxSetter sets the wallpaper through the running desktop environment.
type linuxSetter struct {
	runner CommandRunner
	getenv func(string) string
}

// NewSetter returns the setter for this system.
func NewSetter(runner CommandRunner) Setter {
	return &linuxSetter{runner: runner, getenv: os.Getenv}
}

func (l *linuxSetter) desktopEnv() string {
	env := l.getenv("XDG_CURRENT_DESKTOP")
	if env == "" {
		env = l.getenv("DESKTOP_SESSION")
	}
	return strings.ToLower(env)
}

// SetWallpaper sets the wallpaper of one monitor where the environment
// supports it, otherwise of the whole desktop.
func (l *linuxSetter) SetWallpaper(ctx context.Context, imagePath string, d display.Display) error {
	env := l.desktopEnv()
	switch {
	case strings.Contains(env, "gnome") || strings.Contains(env, "unity") || strings.Contains(env, "cinnamon"):
		return l.setGNOME(ctx, imagePath)
	case strings.Contains(env, "kde"):
		return l.setKDE(ctx, imagePath, d.Index)
	case strings.Contains(env, "xfce"):
		return l.setXFCE(ctx, imagePath, d.Index)
	default:
		return fmt.Errorf("%w: desktop environment %q", ErrUnsupported, env)
	}
}

// setGNOME sets the wallpaper for GNOME-based desktop environments. GNOME
// shares one picture across monitors.
func (l *linuxSetter) setGNOME(ctx context.Context, imagePath string) error {
	uri := "file://" + imagePath
	for _, key := range []string{"picture-uri", "picture-uri-dark"} {
		if _, err := l.runner.Run(ctx, "gsettings", "set", "org.gnome.desktop.background", key, uri); err != nil {
			return fmt.Errorf("failed to set GNOME %s: %w", key, err)
		}
	}
	return nil
}

// setKDE sets the wallpaper of one Plasma desktop.
func (l *linuxSetter) setKDE(ctx context.Context, imagePath string, index int) error {
	script := fmt.Sprintf(`
var allDesktops = desktops();
if (%[1]d < allDesktops.length) {
    d = allDesktops[%[1]d];
    d.wallpaperPlugin = "org.kde.image";
    d.currentConfigGroup = Array("Wallpaper", "org.kde.image", "General");
    d.writeConfig("Image", "file://%[2]s");
}`, index, imagePath)

	_, err := l.runner.Run(ctx, "dbus-send", "--session",
		"--dest=org.kde.plasmashell", "--type=method_call",
		"/PlasmaShell", "org.kde.PlasmaShell.evaluateScript",
		"string:"+script)
	if err != nil {
		return fmt.Errorf("failed to set KDE wallpaper: %w", err)
	}
	return nil
}

// setXFCE sets the last-image property of one monitor.
func (l *linuxSetter) setXFCE(ctx context.Context, imagePath string, index int) error {
	prop := fmt.Sprintf("/backdrop/screen0/monitor%d/workspace0/last-image", index)
	if _, err := l.runner.Run(ctx, "xfconf-query",
		"--channel", "xfce4-desktop",
		"--property", prop,
		"--create", "--type", "string",
		"--set", imagePath); err != nil {
		return fmt.Errorf("failed to set XFCE wallpaper: %w", err)
	}
	return nil
}
