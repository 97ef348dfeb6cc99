package palette

import (
	"context"
	"image/color"
	"math/rand"
	"sync"
	"time"

	"github.com/doorhinge/wallscenes/util/log"
)

// Frame is one gradient step.
type Frame struct {
	Start color.NRGBA
	End   color.NRGBA
	Angle float64 // Degrees
}

// angleStep is how far the gradient turns per frame.
const angleStep = 45.0

// Animator cycles through a palette on a timer and publishes a Frame per tick.
type Animator struct {
	mu       sync.Mutex
	colors   []color.NRGBA
	step     int
	shuffle  bool
	interval time.Duration
	onFrame  func(Frame)
	rng      *rand.Rand

	cancel context.CancelFunc
	done   chan struct{}
}

// NewAnimator returns a stopped animator calling onFrame every interval.
func NewAnimator(interval time.Duration, onFrame func(Frame)) *Animator {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Animator{
		colors:   []color.NRGBA{{A: 0xff}, {A: 0xff}},
		interval: interval,
		onFrame:  onFrame,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetColors replaces the palette. Invalid entries are skipped; an empty
// result keeps the current palette.
func (a *Animator) SetColors(hex []string) {
	parsed := make([]color.NRGBA, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			log.Debugf("Palette: skipping %v", err)
			continue
		}
		parsed = append(parsed, c)
	}
	if len(parsed) == 0 {
		return
	}

	a.mu.Lock()
	a.colors = parsed
	a.step = 0
	a.mu.Unlock()
}

// SetShuffle reshuffles the palette at the end of every cycle when enabled.
func (a *Animator) SetShuffle(enabled bool) {
	a.mu.Lock()
	a.shuffle = enabled
	a.mu.Unlock()
}

// SetInterval changes the tick. A running animator picks it up on its next Start.
func (a *Animator) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	a.mu.Lock()
	a.interval = d
	a.mu.Unlock()
}

// Running reports whether the animation loop is active.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done != nil
}

// Next advances one step and returns the frame.
func (a *Animator) Next() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.colors)
	if a.step > 0 && a.step%n == 0 && a.shuffle {
		a.rng.Shuffle(n, func(i, j int) { a.colors[i], a.colors[j] = a.colors[j], a.colors[i] })
	}
	f := Frame{
		Start: a.colors[a.step%n],
		End:   a.colors[(a.step+1)%n],
		Angle: float64(a.step%8) * angleStep,
	}
	a.step++
	return f
}

// Start publishes frames until ctx is done or Stop is called. Starting a
// running animator restarts it.
func (a *Animator) Start(ctx context.Context) {
	a.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.mu.Lock()
	a.cancel, a.done = cancel, done
	interval := a.interval
	a.mu.Unlock()

	go func() {
		defer close(done)
		defer a.clearRun(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		a.publish()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.publish()
			}
		}
	}()
}

// clearRun forgets the loop identified by done unless a newer one replaced it.
func (a *Animator) clearRun(done chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.done != done {
		return
	}
	a.cancel()
	a.cancel, a.done = nil, nil
}

func (a *Animator) publish() {
	f := a.Next()
	if a.onFrame != nil {
		a.onFrame(f)
	}
}

// Stop halts the animation and waits for the loop to exit.
func (a *Animator) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
