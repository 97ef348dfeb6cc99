package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/doorhinge/wallscenes/util/log"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"
)

// MaxParallelImports bounds the number of files copied at once by ImportFiles.
const MaxParallelImports = 4

// SupportedExtensions lists the file extensions accepted for import.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// IsSupported reports whether path has an importable image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// validateImage checks that src decodes as an image.
func validateImage(src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("%s is not a readable image: %w", filepath.Base(src), err)
	}
	return nil
}

// ImportFile copies src into the library and records it. The display name
// defaults to the file's base name without extension.
func (s *Store) ImportFile(src string) (Image, error) {
	if s.fm == nil {
		return Image{}, fmt.Errorf("no file manager configured")
	}
	if !IsSupported(src) {
		return Image{}, fmt.Errorf("unsupported file type: %s", filepath.Base(src))
	}
	if err := validateImage(src); err != nil {
		return Image{}, err
	}

	s.beginImport()
	defer s.endImport()

	name, err := s.fm.Copy(src)
	if err != nil {
		return Image{}, err
	}

	base := filepath.Base(src)
	img := Image{
		ID:          uuid.NewString(),
		FileName:    name,
		DisplayName: strings.TrimSuffix(base, filepath.Ext(base)),
		Groups:      []string{},
	}
	if err := s.AddImage(img); err != nil {
		_ = s.fm.Delete(name)
		return Image{}, err
	}
	log.Printf("Store: Imported %s as %s", src, img.ID)
	return img, nil
}

// ImportFiles imports several files with bounded parallelism. Successful
// imports are returned in input order; failures are joined into the error.
func (s *Store) ImportFiles(ctx context.Context, srcs []string) ([]Image, error) {
	results := make([]*Image, len(srcs))
	var (
		errMu sync.Mutex
		errs  []error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallelImports)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := s.ImportFile(src)
			if err != nil {
				log.Printf("Store: Failed to import %s: %v", src, err)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
				return nil
			}
			results[i] = &img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}

	imported := make([]Image, 0, len(srcs))
	for _, r := range results {
		if r != nil {
			imported = append(imported, *r)
		}
	}
	return imported, errors.Join(errs...)
}
