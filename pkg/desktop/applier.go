package desktop

import (
	"context"
	"fmt"
	"sync"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/util/log"
)

// ImageSource resolves image ids to records and files.
type ImageSource interface {
	Image(id string) (library.Image, bool)
	ImagePath(id string) (string, error)
}

// Status is the outcome of applying a scene to one display.
type Status int

const (
	StatusUnassigned Status = iota // No assignment for the display
	StatusMissing                  // Assigned image no longer exists
	StatusApplied                  // Visible Space updated
	StatusPropagated               // Every Space updated (possibly partially)
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnassigned:
		return "unassigned"
	case StatusMissing:
		return "missing"
	case StatusApplied:
		return "applied"
	case StatusPropagated:
		return "propagated"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// DisplayOutcome is the result for one display.
type DisplayOutcome struct {
	DisplayID string
	ImageID   string
	Status    Status
	Spaces    Result
	Err       error
}

// Report lists what happened on every display.
type Report struct {
	SceneID   string
	SceneName string
	Displays  []DisplayOutcome
}

// Count returns the number of displays with the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, d := range r.Displays {
		if d.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether no display failed.
func (r Report) OK() bool {
	return r.Count(StatusFailed) == 0
}

// Summary returns a one-line description suitable for a notification.
func (r Report) Summary() string {
	updated := r.Count(StatusApplied) + r.Count(StatusPropagated)
	msg := fmt.Sprintf("%s: %d of %d displays updated", r.SceneName, updated, len(r.Displays))
	if n := r.Count(StatusFailed); n > 0 {
		msg += fmt.Sprintf(", %d failed", n)
	}
	if n := r.Count(StatusMissing); n > 0 {
		msg += fmt.Sprintf(", %d missing images", n)
	}
	return msg
}

// Applier applies scenes to the connected displays.
type Applier struct {
	images ImageSource
	setter Setter

	mu         sync.RWMutex
	propagator Propagator
}

// NewApplier returns an applier. A nil propagator falls back to the setter.
func NewApplier(images ImageSource, setter Setter, propagator Propagator) *Applier {
	a := &Applier{images: images, setter: setter}
	a.SetPropagator(propagator)
	return a
}

// SetPropagator swaps the strategy used for scenes set for all desktops.
func (a *Applier) SetPropagator(p Propagator) {
	if p == nil {
		p = &nonePropagator{setter: a.setter}
	}
	a.mu.Lock()
	a.propagator = p
	a.mu.Unlock()
}

// Propagator returns the active propagator.
func (a *Applier) Propagator() Propagator {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.propagator
}

// ApplyScene sets the assigned image on every display, one display at a
// time. A failure on one display does not stop the others.
func (a *Applier) ApplyScene(ctx context.Context, scene library.Scene, displays []display.Display) Report {
	report := Report{SceneID: scene.ID, SceneName: scene.Name}
	propagator := a.Propagator()

	for _, d := range displays {
		out := a.applyDisplay(ctx, scene, d, propagator)
		report.Displays = append(report.Displays, out)
	}

	log.Printf("Applier: %s", report.Summary())
	return report
}

func (a *Applier) applyDisplay(ctx context.Context, scene library.Scene, d display.Display, propagator Propagator) DisplayOutcome {
	out := DisplayOutcome{DisplayID: d.ID}

	imageID, ok := scene.Assignment(d.ID)
	if !ok {
		log.Debugf("[Display %s] No assignment in scene %q", d.ID, scene.Name)
		return out
	}
	out.ImageID = imageID

	if _, ok := a.images.Image(imageID); !ok {
		log.Printf("[Display %s] Warning: scene %q references missing image %s, skipping", d.ID, scene.Name, imageID)
		out.Status = StatusMissing
		return out
	}
	path, err := a.images.ImagePath(imageID)
	if err != nil {
		log.Printf("[Display %s] Cannot resolve image %s: %v", d.ID, imageID, err)
		out.Status, out.Err = StatusFailed, err
		return out
	}

	if ctx.Err() != nil {
		out.Status, out.Err = StatusFailed, ctx.Err()
		return out
	}

	if !scene.SetForAllDesktops {
		if err := a.setter.SetWallpaper(ctx, path, d); err != nil {
			log.Printf("[Display %s] Failed to set wallpaper: %v", d.ID, err)
			out.Status, out.Err = StatusFailed, err
			return out
		}
		out.Status = StatusApplied
		return out
	}

	res, err := propagator.PropagateToAllSpaces(ctx, path, d)
	out.Spaces = res
	if err != nil {
		log.Printf("[Display %s] %s propagation failed: %v", d.ID, propagator.Name(), err)
		out.Status, out.Err = StatusFailed, err
		return out
	}
	if res.Partial() {
		log.Printf("[Display %s] %s propagation partial: %s", d.ID, propagator.Name(), res)
	}
	out.Status = StatusPropagated
	return out
}
