// Package thumbnail keeps square previews of library images in memory.
// The cache only grows; Rebuild replaces it wholesale.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/doorhinge/wallscenes/util/log"
	"github.com/muesli/smartcrop"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"golang.org/x/sync/errgroup"
)

// DefaultSize is the edge length of generated thumbnails.
const DefaultSize = 160

// maxParallel bounds the number of thumbnails generated at once by Rebuild.
const maxParallel = 4

// Entry names an image to preview.
type Entry struct {
	ID   string
	Path string
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

// Cache maps image ids to thumbnails.
type Cache struct {
	mu      sync.RWMutex
	size    int
	entries map[string]image.Image

	// Testing hook
	generate func(ctx context.Context, path string, size int) (image.Image, error)
}

// NewCache returns an empty cache producing size x size thumbnails.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache{
		size:     size,
		entries:  make(map[string]image.Image),
		generate: Generate,
	}
}

// Len returns the number of cached thumbnails.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Peek returns a cached thumbnail without generating one.
func (c *Cache) Peek(id string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.entries[id]
	return img, ok
}

// Get returns the thumbnail for id, generating it from path on a miss.
func (c *Cache) Get(ctx context.Context, id, path string) (image.Image, error) {
	if img, ok := c.Peek(id); ok {
		return img, nil
	}

	img, err := c.generate(ctx, path, c.size)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if existing, ok := c.entries[id]; ok {
		img = existing
	} else {
		c.entries[id] = img
	}
	c.mu.Unlock()
	return img, nil
}

// Rebuild regenerates thumbnails for entries and replaces the whole cache.
// Entries that fail are left out and their errors joined.
func (c *Cache) Rebuild(ctx context.Context, entries []Entry) error {
	var (
		mu   sync.Mutex
		next = make(map[string]image.Image, len(entries))
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			img, err := c.generate(gctx, e.Path, c.size)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", e.ID, err))
				return nil
			}
			next[e.ID] = img
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
	log.Debugf("Thumbnail: rebuilt cache with %d entries", len(next))
	return errors.Join(errs...)
}

// Generate opens path and returns a size x size thumbnail centred on the
// most interesting region of the image.
func Generate(ctx context.Context, path string, size int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &resizer{resampler: imaging.Linear}
	analyzer := smartcrop.NewAnalyzer(r)
	crop, err := analyzer.FindBestCrop(img, size, size)
	if err != nil || crop.Empty() {
		log.Debugf("Thumbnail: smart crop failed for %s, using centre crop: %v", path, err)
		return imaging.Fill(img, size, size, imaging.Center, imaging.Linear), nil
	}
	return imaging.Resize(imaging.Crop(img, crop), size, size, imaging.Linear), nil
}
