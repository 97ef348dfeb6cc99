package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/doorhinge/wallscenes/pkg/display"
)

// Propagator makes one image the desktop picture of every Space of a display.
type Propagator interface {
	Name() string
	// PropagateToAllSpaces returns an error only when nothing was applied.
	// Per-Space problems are reported in the Result.
	PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error)
}

// SpaceFailure records a Space that could not be updated.
type SpaceFailure struct {
	Space string
	Err   error
}

func (f SpaceFailure) String() string {
	return fmt.Sprintf("space %s: %v", f.Space, f.Err)
}

// Result summarizes a propagation.
type Result struct {
	Spaces   int // Spaces updated
	Failures []SpaceFailure
}

// Partial reports whether some Spaces were updated and some failed.
func (r Result) Partial() bool {
	return r.Spaces > 0 && len(r.Failures) > 0
}

func (r Result) String() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("%d spaces updated", r.Spaces)
	}
	parts := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%d spaces updated, %d failed (%s)", r.Spaces, len(r.Failures), strings.Join(parts, "; "))
}

// nonePropagator only updates the visible Space.
type nonePropagator struct {
	setter Setter
}

func (p *nonePropagator) Name() string { return string(StrategyNone) }

func (p *nonePropagator) PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error) {
	if err := p.setter.SetWallpaper(ctx, imagePath, d); err != nil {
		return Result{}, err
	}
	return Result{Spaces: 1}, nil
}
