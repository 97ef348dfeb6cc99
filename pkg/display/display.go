// Package display enumerates the connected displays and gives each one a
// stable identifier that scenes use as an assignment key.
package display

import (
	"fmt"
	"image"

	"github.com/doorhinge/wallscenes/util/log"
	"github.com/kbinani/screenshot"
)

// Display represents a connected monitor.
type Display struct {
	Index   int             // Position in the OS display list; 0 is the main display
	ID      string          // Assignment key, e.g. "Color LCD" or "display-1"
	Name    string          // Human-readable name, empty when unknown
	Bounds  image.Rectangle // Global desktop coordinates
	Primary bool
}

// Width returns the display width in points.
func (d Display) Width() int { return d.Bounds.Dx() }

// Height returns the display height in points.
func (d Display) Height() int { return d.Bounds.Dy() }

// Label returns the name shown to the user.
func (d Display) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Display %d", d.Index+1)
}

// List returns the currently connected displays, main display first.
func List() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("no active displays")
	}

	names, err := displayNames()
	if err != nil {
		log.Printf("Display: could not read display names: %v", err)
	}

	out := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Display{
			Index:   i,
			Bounds:  screenshot.GetDisplayBounds(i),
			Primary: i == 0,
		})
	}
	assignIdentity(out, names)
	return out, nil
}

// assignIdentity fills Name and ID. Names are matched by position; repeated
// names get a " (n)" suffix so every ID is unique. Displays without a name
// fall back to "display-<index>".
func assignIdentity(displays []Display, names []string) {
	seen := make(map[string]int, len(displays))
	for i := range displays {
		d := &displays[i]
		if i < len(names) {
			d.Name = names[i]
		}
		if d.Name == "" {
			d.ID = fmt.Sprintf("display-%d", d.Index)
			continue
		}
		seen[d.Name]++
		if n := seen[d.Name]; n > 1 {
			d.ID = fmt.Sprintf("%s (%d)", d.Name, n)
		} else {
			d.ID = d.Name
		}
	}
}
