package config

import (
	"time"

	"fyne.io/fyne/v2"
)

// AppConfig holds the application-wide configuration
type AppConfig struct {
	prefs fyne.Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p fyne.Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// AppNotificationsEnabledKey is the key for the app notifications enabled preference
const AppNotificationsEnabledKey = "app_notifications_enabled"

// GetAppNotificationsEnabled returns whether system notifications are enabled
func (c *AppConfig) GetAppNotificationsEnabled() bool {
	return c.prefs.BoolWithFallback(AppNotificationsEnabledKey, true)
}

// SetAppNotificationsEnabled sets whether system notifications are enabled
func (c *AppConfig) SetAppNotificationsEnabled(enabled bool) {
	c.prefs.SetBool(AppNotificationsEnabledKey, enabled)
}

// PropagationStrategyKey is the key for the multi-space propagation strategy preference
const PropagationStrategyKey = "propagation_strategy"

// DefaultPropagationStrategy lets the applier pick a strategy for the running OS.
const DefaultPropagationStrategy = "auto"

// GetPropagationStrategy returns the configured propagation strategy name
// ("auto", "datastore", "private_api", "automation" or "none").
func (c *AppConfig) GetPropagationStrategy() string {
	return c.prefs.StringWithFallback(PropagationStrategyKey, DefaultPropagationStrategy)
}

// SetPropagationStrategy sets the propagation strategy name
func (c *AppConfig) SetPropagationStrategy(name string) {
	c.prefs.SetString(PropagationStrategyKey, name)
}

// PaletteAnimationEnabledKey is the key for the animated palette background preference
const PaletteAnimationEnabledKey = "palette_animation_enabled"

// GetPaletteAnimationEnabled returns whether the decorative background animates
func (c *AppConfig) GetPaletteAnimationEnabled() bool {
	return c.prefs.BoolWithFallback(PaletteAnimationEnabledKey, true)
}

// SetPaletteAnimationEnabled sets whether the decorative background animates
func (c *AppConfig) SetPaletteAnimationEnabled(enabled bool) {
	c.prefs.SetBool(PaletteAnimationEnabledKey, enabled)
}

// PaletteIntervalKey is the key for the palette animation tick, in seconds
const PaletteIntervalKey = "palette_interval_seconds"

// GetPaletteInterval returns the palette animation tick. Values below one second fall back to the default.
func (c *AppConfig) GetPaletteInterval() time.Duration {
	secs := c.prefs.IntWithFallback(PaletteIntervalKey, 4)
	if secs < 1 {
		secs = 4
	}
	return time.Duration(secs) * time.Second
}

// SetPaletteInterval sets the palette animation tick
func (c *AppConfig) SetPaletteInterval(d time.Duration) {
	c.prefs.SetInt(PaletteIntervalKey, int(d/time.Second))
}

// HotkeysEnabledKey is the key for the global hotkeys preference
const HotkeysEnabledKey = "hotkeys_enabled"

// GetHotkeysEnabled returns whether the global scene hotkeys are registered at startup
func (c *AppConfig) GetHotkeysEnabled() bool {
	return c.prefs.BoolWithFallback(HotkeysEnabledKey, true)
}

// SetHotkeysEnabled sets whether the global scene hotkeys are registered at startup
func (c *AppConfig) SetHotkeysEnabled(enabled bool) {
	c.prefs.SetBool(HotkeysEnabledKey, enabled)
}

// LastSceneKey is the key for the id of the last applied scene
const LastSceneKey = "last_scene_id"

// GetLastSceneID returns the id of the scene applied most recently, or ""
func (c *AppConfig) GetLastSceneID() string {
	return c.prefs.String(LastSceneKey)
}

// SetLastSceneID records the id of the scene applied most recently
func (c *AppConfig) SetLastSceneID(id string) {
	c.prefs.SetString(LastSceneKey, id)
}
