package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/doorhinge/wallscenes/pkg/desktop"
)

// intervalChoices are the selectable palette animation ticks.
var intervalChoices = []time.Duration{2 * time.Second, 4 * time.Second, 10 * time.Second, 30 * time.Second, time.Minute}

var strategyDescriptions = map[desktop.Strategy]string{
	desktop.StrategyAuto:       "Pick the best technique for this macOS version",
	desktop.StrategyDatastore:  "Rewrite the Dock's desktop picture database and restart the Dock",
	desktop.StrategyPrivateAPI: "Ask the window server directly through private frameworks",
	desktop.StrategyAutomation: "Visit each Space with keyboard shortcuts (needs Accessibility access)",
	desktop.StrategyNone:       "Only update the visible Space",
}

func strategyOptions() []string {
	opts := make([]string, len(desktop.Strategies))
	for i, s := range desktop.Strategies {
		opts[i] = string(s)
	}
	return opts
}

func intervalOptions() []string {
	opts := make([]string, len(intervalChoices))
	for i, d := range intervalChoices {
		opts[i] = d.String()
	}
	return opts
}

// ShowPreferencesWindow opens the preferences window. Changes apply immediately.
func (sa *ScenesApp) ShowPreferencesWindow() {
	if sa.prefsWindow != nil {
		sa.prefsWindow.RequestFocus()
		return
	}
	w, g := sa.newWindow("Preferences", fyne.NewSize(620, 460), func() { sa.prefsWindow = nil })
	sa.prefsWindow = w

	strategyDesc := createSettingDescriptionLabel("")
	strategy := widget.NewSelect(strategyOptions(), func(s string) {
		sa.cfg.SetPropagationStrategy(s)
		strategyDesc.SetText(strategyDescriptions[desktop.Strategy(s)])
		go sa.configurePropagator()
	})
	current := desktop.ParseStrategy(sa.cfg.GetPropagationStrategy())
	strategy.Selected = string(current)
	strategyDesc.SetText(strategyDescriptions[current])

	notifications := newPrefCheck("Show a notification after applying a scene",
		sa.cfg.GetAppNotificationsEnabled(), sa.cfg.SetAppNotificationsEnabled)

	interval := widget.NewSelect(intervalOptions(), func(s string) {
		d, err := time.ParseDuration(s)
		if err != nil {
			return
		}
		sa.cfg.SetPaletteInterval(d)
		sa.animator.SetInterval(d)
		if sa.animator.Running() {
			sa.animator.Start(sa.ctx)
		}
	})
	interval.Selected = sa.cfg.GetPaletteInterval().String()

	animate := newPrefCheck("Animate the window background", sa.cfg.GetPaletteAnimationEnabled(), func(on bool) {
		sa.cfg.SetPaletteAnimationEnabled(on)
		if on {
			sa.animator.Start(sa.ctx)
		} else {
			sa.animator.Stop()
		}
	})

	hotkeys := newPrefCheck("Ctrl+Alt+Left/Right cycles scenes", sa.cfg.GetHotkeysEnabled(), func(on bool) {
		sa.cfg.SetHotkeysEnabled(on)
		if on {
			sa.startHotkeys()
		} else {
			sa.hotkeys.Stop()
		}
	})

	content := container.NewVBox(
		createSectionTitleLabel("Desktops"),
		NewSplitRow(createSettingTitleLabel("All-desktops strategy"), container.NewVBox(strategy, strategyDesc), 0.35),
		widget.NewSeparator(),
		createSectionTitleLabel("General"),
		notifications,
		hotkeys,
		widget.NewSeparator(),
		createSectionTitleLabel("Appearance"),
		animate,
		NewSplitRow(createSettingTitleLabel("Animation interval"), interval, 0.35),
	)
	w.SetContent(withBackground(g, container.NewVScroll(content)))
	w.Show()
}

// newPrefCheck returns a check showing value that calls onChanged on user edits only.
func newPrefCheck(label string, value bool, onChanged func(bool)) *widget.Check {
	c := widget.NewCheck(label, nil)
	c.SetChecked(value)
	c.OnChanged = onChanged
	return c
}
