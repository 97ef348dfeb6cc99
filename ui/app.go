// Package ui is the fyne front end: the tray menu, the library and scene
// windows, preferences and the animated palette background.
package ui

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/doorhinge/wallscenes/asset"
	"github.com/doorhinge/wallscenes/config"
	wsdesktop "github.com/doorhinge/wallscenes/pkg/desktop"
	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/pkg/hotkey"
	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/pkg/palette"
	"github.com/doorhinge/wallscenes/pkg/thumbnail"
	"github.com/doorhinge/wallscenes/util"
	"github.com/doorhinge/wallscenes/util/log"
)

// OS abstracts platform specific window behaviour.
type OS interface {
	TransformToForeground()
	TransformToBackground()
}

// ScenesApp represents the application.
type ScenesApp struct {
	app      fyne.App
	assetMgr *asset.Manager
	cfg      *config.AppConfig
	os       OS

	store    *library.Store
	setter   wsdesktop.Setter
	applier  *wsdesktop.Applier
	thumbs   *thumbnail.Cache
	animator *palette.Animator
	hotkeys  *hotkey.Listener

	// Listing connected displays; replaced in tests.
	listDisplays func() ([]display.Display, error)

	trayMenu    *fyne.Menu
	openWindows *util.SafeCounter
	applying    *util.SafeCounter
	rebuilding  *util.SafeFlag

	gradMu    sync.Mutex
	gradients map[*canvas.LinearGradient]struct{}

	ctx    context.Context
	cancel context.CancelFunc

	libraryWindow fyne.Window
	scenesWindow  fyne.Window
	prefsWindow   fyne.Window
}

// NewScenesApp wires the application around an already loaded store.
func NewScenesApp(a fyne.App, store *library.Store) *ScenesApp {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := config.NewAppConfig(a.Preferences())
	setter := wsdesktop.NewSetter(wsdesktop.DefaultRunner)

	sa := &ScenesApp{
		app:          a,
		assetMgr:     asset.NewManager(),
		cfg:          cfg,
		os:           getOS(),
		store:        store,
		setter:       setter,
		applier:      wsdesktop.NewApplier(store, setter, nil),
		thumbs:       thumbnail.NewCache(thumbnail.DefaultSize),
		hotkeys:      hotkey.NewListener(),
		listDisplays: display.List,
		openWindows:  util.NewSafeCounter(),
		applying:     util.NewSafeCounter(),
		rebuilding:   util.NewSafeFlag(false),
		gradients:    make(map[*canvas.LinearGradient]struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	sa.animator = palette.NewAnimator(cfg.GetPaletteInterval(), sa.paintFrame)
	sa.configurePropagator()
	return sa
}

// configurePropagator installs the propagator selected in preferences.
func (sa *ScenesApp) configurePropagator() {
	strategy := wsdesktop.ParseStrategy(sa.cfg.GetPropagationStrategy())
	p, err := wsdesktop.NewPropagator(strategy, wsdesktop.Options{Setter: sa.setter})
	if err != nil {
		log.Printf("App: %v; scenes for all desktops will only update the visible Space", err)
		p = nil
	}
	sa.applier.SetPropagator(p)
	log.Printf("App: propagation strategy %s", sa.applier.Propagator().Name())
}

// Start builds the tray menu and starts the background services.
func (sa *ScenesApp) Start() {
	sa.CreateTrayMenu()
	sa.os.TransformToBackground()

	go sa.store.Watch(sa.ctx, func() {
		fyne.Do(sa.refreshTrayMenu)
		go sa.rebuildThumbnails()
	})
	go sa.rebuildThumbnails()
	go sa.restorePalette()

	if sa.cfg.GetPaletteAnimationEnabled() {
		sa.animator.Start(sa.ctx)
	}
	if sa.cfg.GetHotkeysEnabled() {
		sa.startHotkeys()
	}
}

// Run runs the application.
func (sa *ScenesApp) Run() {
	sa.Start()
	sa.app.Run()
	sa.Stop()
}

// Stop halts background work.
func (sa *ScenesApp) Stop() {
	sa.hotkeys.Stop()
	sa.animator.Stop()
	sa.cancel()
}

func (sa *ScenesApp) startHotkeys() {
	sa.hotkeys.Start(hotkey.Actions{
		NextScene:     func() { sa.stepScene(1) },
		PreviousScene: func() { sa.stepScene(-1) },
	})
}

// stepScene applies the scene step positions away from the last one applied.
func (sa *ScenesApp) stepScene(step int) {
	scene, ok := hotkey.Cycle(sa.store.Scenes(), sa.cfg.GetLastSceneID(), step)
	if !ok {
		log.Debugf("App: no scenes to cycle through")
		return
	}
	sa.ApplyScene(scene.ID)
}

// ApplyScene applies a scene in the background and reports the result.
func (sa *ScenesApp) ApplyScene(id string) {
	scene, ok := sa.store.Scene(id)
	if !ok {
		log.Printf("App: scene %s not found", id)
		return
	}

	go func() {
		sa.applying.Increment()
		fyne.Do(sa.refreshTrayMenu)
		defer func() {
			sa.applying.Decrement()
			fyne.Do(sa.refreshTrayMenu)
		}()

		displays, err := sa.listDisplays()
		if err != nil {
			log.Printf("App: cannot list displays: %v", err)
			sa.notify(fmt.Sprintf("Could not apply %s: %v", scene.Name, err))
			return
		}

		report := sa.applier.ApplyScene(sa.ctx, scene, displays)
		sa.cfg.SetLastSceneID(scene.ID)
		sa.notify(report.Summary())
		sa.updatePalette(scene, displays)
	}()
}

func (sa *ScenesApp) notify(msg string) {
	if !sa.cfg.GetAppNotificationsEnabled() {
		return
	}
	sa.app.SendNotification(fyne.NewNotification(config.AppName, msg))
}

// sceneImageForPalette picks the image of the main display, or the first
// assigned image that still exists.
func (sa *ScenesApp) sceneImageForPalette(scene library.Scene, displays []display.Display) (string, bool) {
	for _, d := range displays {
		if !d.Primary {
			continue
		}
		if id, ok := scene.Assignment(d.ID); ok {
			if _, exists := sa.store.Image(id); exists {
				return id, true
			}
		}
	}
	for _, d := range displays {
		if id, ok := scene.Assignment(d.ID); ok {
			if _, exists := sa.store.Image(id); exists {
				return id, true
			}
		}
	}
	return "", false
}

func (sa *ScenesApp) updatePalette(scene library.Scene, displays []display.Display) {
	id, ok := sa.sceneImageForPalette(scene, displays)
	if !ok {
		return
	}
	path, err := sa.store.ImagePath(id)
	if err != nil {
		log.Printf("App: palette: %v", err)
		return
	}
	colors, err := palette.ExtractFile(path)
	if err != nil {
		log.Printf("App: palette: %v", err)
		return
	}
	log.Debugf("App: palette for %s: %v", scene.Name, colors)
	sa.animator.SetColors(colors)
	if !sa.cfg.GetPaletteAnimationEnabled() {
		sa.paintFrame(sa.animator.Next())
	}
}

// restorePalette seeds the background from the last applied scene.
func (sa *ScenesApp) restorePalette() {
	scene, ok := sa.store.Scene(sa.cfg.GetLastSceneID())
	if !ok {
		return
	}
	displays, err := sa.listDisplays()
	if err != nil {
		return
	}
	sa.updatePalette(scene, displays)
}

// rebuildThumbnails regenerates the thumbnail cache for the current library.
// Overlapping calls are dropped.
func (sa *ScenesApp) rebuildThumbnails() {
	if !sa.rebuilding.TryAcquire() {
		return
	}
	defer sa.rebuilding.Release()

	images := sa.store.Images()
	entries := make([]thumbnail.Entry, 0, len(images))
	for _, img := range images {
		path, err := sa.store.ImagePath(img.ID)
		if err != nil {
			continue
		}
		entries = append(entries, thumbnail.Entry{ID: img.ID, Path: path})
	}
	if err := sa.thumbs.Rebuild(sa.ctx, entries); err != nil {
		log.Printf("App: thumbnails: %v", err)
	}
	fyne.Do(func() {
		if sa.libraryWindow != nil {
			sa.libraryWindow.Content().Refresh()
		}
	})
}

// newWindow creates a window that shows the Dock icon while open. The
// gradient background sits behind content.
func (sa *ScenesApp) newWindow(title string, size fyne.Size, onClosed func()) (fyne.Window, *canvas.LinearGradient) {
	w := sa.app.NewWindow(title)
	w.Resize(size)
	w.CenterOnScreen()

	g := sa.newGradient()
	if sa.openWindows.Increment() == 1 {
		sa.os.TransformToForeground()
	}
	w.SetOnClosed(func() {
		sa.releaseGradient(g)
		if onClosed != nil {
			onClosed()
		}
		if sa.openWindows.Decrement() == 0 {
			sa.os.TransformToBackground()
		}
	})
	return w, g
}

// CreateTrayMenu creates the tray menu for the application.
func (sa *ScenesApp) CreateTrayMenu() {
	sa.trayMenu = fyne.NewMenu(config.AppName)
	sa.refreshTrayMenu()

	desk, ok := sa.app.(desktop.App)
	if !ok {
		log.Println("Tray icon not supported on this platform")
		return
	}
	trayIcon, err := sa.assetMgr.GetIcon("tray.png")
	if err == nil {
		desk.SetSystemTrayIcon(trayIcon)
		sa.app.SetIcon(trayIcon)
	}
	desk.SetSystemTrayMenu(sa.trayMenu)
}

// refreshTrayMenu rebuilds the menu items. Must run on the UI goroutine.
func (sa *ScenesApp) refreshTrayMenu() {
	if sa.trayMenu == nil {
		return
	}
	sa.trayMenu.Items = sa.trayMenuItems()
	sa.trayMenu.Refresh()
}

func (sa *ScenesApp) trayMenuItems() []*fyne.MenuItem {
	var items []*fyne.MenuItem

	if n := sa.applying.Value(); n > 0 {
		status := fyne.NewMenuItem("Applying scene...", nil)
		status.Disabled = true
		items = append(items, status, fyne.NewMenuItemSeparator())
	}

	scenes := sa.store.Scenes()
	if len(scenes) == 0 {
		empty := fyne.NewMenuItem("No scenes yet", nil)
		empty.Disabled = true
		items = append(items, empty)
	}
	last := sa.cfg.GetLastSceneID()
	for _, sc := range scenes {
		id := sc.ID
		mi := sa.createMenuItem(sceneMenuLabel(sc), func() { sa.ApplyScene(id) }, "apply.png")
		mi.Checked = id == last
		items = append(items, mi)
	}

	items = append(items,
		fyne.NewMenuItemSeparator(),
		sa.createMenuItem("Library...", sa.ShowLibraryWindow, "library.png"),
		sa.createMenuItem("Scenes...", sa.ShowScenesWindow, "scene.png"),
		fyne.NewMenuItemSeparator(),
		sa.createMenuItem("Preferences", sa.ShowPreferencesWindow, "prefs.png"),
		sa.createMenuItem("About "+config.AppName, sa.ShowAbout, "tray.png"),
		fyne.NewMenuItemSeparator(),
		sa.createMenuItem("Quit", func() { sa.app.Quit() }, "quit.png"),
	)
	return items
}

func (sa *ScenesApp) createMenuItem(label string, action func(), iconName string) *fyne.MenuItem {
	mi := fyne.NewMenuItem(label, action)
	icon, err := sa.assetMgr.GetIcon(iconName)
	if err != nil {
		log.Printf("Failed to load icon: %v", err)
		return mi
	}
	mi.Icon = icon
	return mi
}

// sceneMenuLabel returns the tray label of a scene.
func sceneMenuLabel(sc library.Scene) string {
	if sc.SetForAllDesktops {
		return sc.Name + " (all desktops)"
	}
	return sc.Name
}

// ShowAbout shows the about dialog.
func (sa *ScenesApp) ShowAbout() {
	text, err := sa.assetMgr.GetText("about.txt")
	if err != nil {
		text = config.AppName
	}
	version := config.AppVersion
	if version == "" {
		version = "dev"
	}

	w, g := sa.newWindow("About "+config.AppName, fyne.NewSize(460, 360), nil)
	body := widget.NewLabel(text)
	body.Wrapping = fyne.TextWrapWord
	content := container.NewBorder(nil,
		container.NewVBox(widget.NewSeparator(), createSettingDescriptionLabel("Version "+version)),
		nil, nil, container.NewVScroll(body))
	w.SetContent(withBackground(g, content))
	w.Show()
}

// showError reports err in a dialog on w.
func showError(err error, w fyne.Window) {
	if err == nil {
		return
	}
	log.Printf("UI: %v", err)
	dialog.ShowError(err, w)
}
