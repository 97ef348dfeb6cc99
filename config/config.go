package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// StorageDir returns the application-private storage directory,
// e.g. ~/Library/Application Support/WallpaperScenes on macOS.
func StorageDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// EnsureStorageDir creates the storage directory and the images folder below it.
func EnsureStorageDir() (string, error) {
	dir, err := StorageDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, ImagesSubDir), 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// LibraryPath returns the path of the library document inside dir.
func LibraryPath(dir string) string {
	return filepath.Join(dir, LibraryFileName)
}

// ImagesPath returns the path of the images folder inside dir.
func ImagesPath(dir string) string {
	return filepath.Join(dir, ImagesSubDir)
}
