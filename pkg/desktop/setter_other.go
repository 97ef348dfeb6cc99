//go:build !darwin && !linux && !windows

package desktop

import (
	"context"

	"github.com/doorhinge/wallscenes/pkg/display"
)

type unsupportedSetter struct{}

// NewSetter returns a setter that always fails with ErrUnsupported.
func NewSetter(_ CommandRunner) Setter {
	return unsupportedSetter{}
}

func (unsupportedSetter) SetWallpaper(context.Context, string, display.Display) error {
	return ErrUnsupported
}
