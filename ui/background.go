package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"

	"github.com/doorhinge/wallscenes/pkg/palette"
)

// veilAlpha is the opacity of the theme background laid over the gradient.
const veilAlpha = 0xb4

// veilColor returns the theme background colour made translucent.
func veilColor(a fyne.App) color.Color {
	var base color.Color = color.White
	if a != nil {
		base = a.Settings().Theme().Color(theme.ColorNameBackground, a.Settings().ThemeVariant())
	}
	c := color.NRGBAModel.Convert(base).(color.NRGBA)
	c.A = veilAlpha
	return c
}

// newGradient returns a background gradient driven by the palette animator.
// Call releaseGradient when its window closes.
func (sa *ScenesApp) newGradient() *canvas.LinearGradient {
	f := sa.animator.Next()
	g := canvas.NewLinearGradient(f.Start, f.End, f.Angle)
	sa.gradMu.Lock()
	sa.gradients[g] = struct{}{}
	sa.gradMu.Unlock()
	return g
}

func (sa *ScenesApp) releaseGradient(g *canvas.LinearGradient) {
	sa.gradMu.Lock()
	delete(sa.gradients, g)
	sa.gradMu.Unlock()
}

// paintFrame is called by the animator from its own goroutine.
func (sa *ScenesApp) paintFrame(f palette.Frame) {
	sa.gradMu.Lock()
	targets := make([]*canvas.LinearGradient, 0, len(sa.gradients))
	for g := range sa.gradients {
		targets = append(targets, g)
	}
	sa.gradMu.Unlock()
	if len(targets) == 0 {
		return
	}

	fyne.Do(func() {
		for _, g := range targets {
			g.StartColor = f.Start
			g.EndColor = f.End
			g.Angle = f.Angle
			g.Refresh()
		}
	})
}

// withBackground stacks content over the gradient with a translucent veil so
// widgets stay readable.
func withBackground(g *canvas.LinearGradient, content fyne.CanvasObject) fyne.CanvasObject {
	veil := canvas.NewRectangle(veilColor(fyne.CurrentApp()))
	return container.NewStack(g, veil, container.NewPadded(content))
}
