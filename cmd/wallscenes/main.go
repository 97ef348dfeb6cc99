package main

import (
	"fyne.io/fyne/v2/app"

	"github.com/doorhinge/wallscenes/config"
	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/ui"
	"github.com/doorhinge/wallscenes/util/log"
)

func main() {
	dir, err := config.EnsureStorageDir()
	if err != nil {
		log.Fatalf("Cannot create storage directory: %v", err)
	}

	acquired, err := acquireLock(dir)
	if err != nil {
		log.Fatalf("Error acquiring single-instance lock: %v", err)
	}
	if !acquired {
		log.Printf("Another instance of %s is already running.", config.AppName)
		return
	}
	defer releaseLock()

	fm := library.NewFileManager(config.ImagesPath(dir))
	if err := fm.EnsureDirs(); err != nil {
		log.Fatalf("Cannot create images folder: %v", err)
	}
	store := library.NewStore(config.LibraryPath(dir), fm)
	if err := store.Load(); err != nil {
		log.Printf("Failed to load library, starting empty: %v", err)
	} else if n := store.CleanupOrphans(); n > 0 {
		// Before the UI exists, so no import can race the scan.
		log.Printf("Removed %d orphaned image files", n)
	}

	a := app.NewWithID(config.AppID)
	log.Printf("%s %s starting, storage at %s", config.AppName, config.AppVersion, dir)
	ui.NewScenesApp(a, store).Run()
}
