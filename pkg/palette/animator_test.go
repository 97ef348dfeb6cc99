package palette

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnimator_Rotates(t *testing.T) {
	a := NewAnimator(time.Second, nil)
	a.SetColors([]string{"#FF0000", "#00FF00", "bogus", "#0000FF"})

	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	f := a.Next()
	assert.Equal(t, red, f.Start)
	assert.Equal(t, green, f.End)
	assert.Equal(t, 0.0, f.Angle)

	f = a.Next()
	assert.Equal(t, green, f.Start)
	assert.Equal(t, blue, f.End)
	assert.Equal(t, 45.0, f.Angle)

	f = a.Next()
	assert.Equal(t, blue, f.Start)
	assert.Equal(t, red, f.End, "wraps around")
}

func TestAnimator_EmptyPaletteIgnored(t *testing.T) {
	a := NewAnimator(time.Second, nil)
	a.SetColors([]string{"#112233", "#445566"})
	a.SetColors(nil)
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}, a.Next().Start)
}

func TestAnimator_ShuffleKeepsColours(t *testing.T) {
	a := NewAnimator(time.Second, nil)
	in := []string{"#000001", "#000002", "#000003", "#000004"}
	a.SetColors(in)
	a.SetShuffle(true)

	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		seen[Hex(a.Next().Start)] = true
	}
	assert.Len(t, seen, len(in))
}

func TestAnimator_StartStop(t *testing.T) {
	frames := make(chan Frame, 16)
	a := NewAnimator(5*time.Millisecond, func(f Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	a.SetColors([]string{"#FF0000", "#00FF00"})

	a.Start(context.Background())
	for i := 0; i < 2; i++ {
		select {
		case <-frames:
		case <-time.After(time.Second):
			t.Fatal("no frame published")
		}
	}
	a.Stop()
	a.Stop()

	for len(frames) > 0 {
		<-frames
	}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, frames, "no frames after Stop")
}

func TestAnimator_RunningAndInterval(t *testing.T) {
	a := NewAnimator(time.Hour, nil)
	a.SetInterval(0)
	assert.Equal(t, time.Hour, a.interval)
	a.SetInterval(time.Minute)
	assert.Equal(t, time.Minute, a.interval)

	assert.False(t, a.Running())
	a.Start(context.Background())
	assert.True(t, a.Running())
	a.Stop()
	assert.False(t, a.Running())
}

func TestAnimator_StopsRunningWhenContextEnds(t *testing.T) {
	a := NewAnimator(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	a.Start(ctx)
	assert.True(t, a.Running())

	cancel()
	assert.Eventually(t, func() bool { return !a.Running() }, time.Second, 5*time.Millisecond)

	a.Stop()
	a.Start(context.Background())
	assert.True(t, a.Running(), "a restart after the context ended runs again")
	a.Stop()
}
