package library

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/doorhinge/wallscenes/util/log"
	"github.com/google/uuid"
)

// FileManager handles all file system operations for imported images.
// Every imported file lives directly in rootDir under a generated name.
type FileManager struct {
	rootDir string
}

// NewFileManager creates a new FileManager with the given images folder.
func NewFileManager(rootDir string) *FileManager {
	return &FileManager{
		rootDir: rootDir,
	}
}

// GetRootDir returns the folder imported images are copied into.
func (fm *FileManager) GetRootDir() string {
	return fm.rootDir
}

// EnsureDirs creates the images folder.
func (fm *FileManager) EnsureDirs() error {
	if err := os.MkdirAll(fm.rootDir, 0755); err != nil {
		return fmt.Errorf("failed to create images directory %s: %w", fm.rootDir, err)
	}
	return nil
}

// validateName ensures a stored file name does not escape the images folder.
func (fm *FileManager) validateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid file name %q", name)
	}
	return nil
}

// GetPath returns the absolute path of a stored file name.
func (fm *FileManager) GetPath(name string) (string, error) {
	if err := fm.validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(fm.rootDir, name), nil
}

// Copy byte-copies src into the images folder under a fresh unique name and
// returns that name. The extension of src is kept, lower-cased.
func (fm *FileManager) Copy(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := fm.EnsureDirs(); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(src))
	dest := filepath.Join(fm.rootDir, name)
	tmp := dest + ".tmp"

	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming %s: %w", tmp, err)
	}
	log.Debugf("FileManager: copied %s to %s", src, dest)
	return name, nil
}

// Delete removes a stored file. A file that is already gone is not an error.
func (fm *FileManager) Delete(name string) error {
	path, err := fm.GetPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	log.Debugf("FileManager: deleted %s", path)
	return nil
}

// Exists reports whether a stored file is present on disk.
func (fm *FileManager) Exists(name string) bool {
	path, err := fm.GetPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// CleanupOrphans removes files from the images folder that are NOT present
// in the known map, and leftover .tmp files from interrupted copies.
// It returns the number of files removed.
func (fm *FileManager) CleanupOrphans(known map[string]bool) int {
	log.Print("FileManager: Starting orphan cleanup...")
	deletedCount := 0

	entries, err := os.ReadDir(fm.rootDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("FileManager: Error reading images dir during cleanup: %v", err)
		}
		return 0
	}
	for _, entry := range entries {
		if entry.IsDir() || known[entry.Name()] {
			continue
		}
		fullPath := filepath.Join(fm.rootDir, entry.Name())
		if err := os.Remove(fullPath); err != nil {
			log.Printf("FileManager: Failed to delete orphan %s: %v", fullPath, err)
			continue
		}
		deletedCount++
	}

	log.Printf("FileManager: Orphan cleanup finished. Removed %d files.", deletedCount)
	return deletedCount
}

// GetDimensions returns the width and height of an image file on disk.
func (fm *FileManager) GetDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
