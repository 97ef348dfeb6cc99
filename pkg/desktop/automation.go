package desktop

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/util/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultAutomationDelay is the pause after each Space switch.
	DefaultAutomationDelay = 700 * time.Millisecond
	// MaxAutomationAttempts bounds the number of Space switches per walk.
	MaxAutomationAttempts = 30
)

// macOS virtual key codes for the digit row, index 0 is "1" and index 9 is "0".
var digitKeyCodes = [10]int{18, 19, 20, 21, 23, 22, 26, 28, 25, 29}

const rightArrowKeyCode = 124

// spaceShortcut returns the key code and modifiers that switch to Space n.
// Spaces 1-10 use Control+digit, 11-16 Control+Option+digit; later Spaces are
// reached with Control+Right from the previous one.
func spaceShortcut(n int) (keyCode int, modifiers string) {
	switch {
	case n >= 1 && n <= 10:
		return digitKeyCodes[n-1], "{control down}"
	case n >= 11 && n <= 16:
		return digitKeyCodes[n-11], "{control down, option down}"
	default:
		return rightArrowKeyCode, "{control down}"
	}
}

// AutomationPropagator walks the Spaces with keyboard shortcuts, setting the
// picture of each one as it becomes visible. The end of the available Spaces
// is detected by the first failing shortcut.
type AutomationPropagator struct {
	runner      CommandRunner
	setter      Setter
	delay       time.Duration
	maxAttempts int
}

// NewAutomationPropagator returns a propagator pausing delay after each switch.
func NewAutomationPropagator(runner CommandRunner, setter Setter, delay time.Duration) *AutomationPropagator {
	if delay <= 0 {
		delay = DefaultAutomationDelay
	}
	return &AutomationPropagator{
		runner:      runner,
		setter:      setter,
		delay:       delay,
		maxAttempts: MaxAutomationAttempts,
	}
}

func (p *AutomationPropagator) Name() string { return string(StrategyAutomation) }

func (p *AutomationPropagator) switchTo(ctx context.Context, n int) error {
	keyCode, modifiers := spaceShortcut(n)
	script := fmt.Sprintf(`tell application "System Events" to key code %d using %s`, keyCode, modifiers)
	return runAppleScript(ctx, p.runner, script)
}

// PropagateToAllSpaces switches to Space 1, 2, ... until a switch fails or
// the attempt limit is reached, then returns to Space 1.
func (p *AutomationPropagator) PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error) {
	var res Result
	limiter := rate.NewLimiter(rate.Every(p.delay), 1)
	limiter.Allow()

	for n := 1; n <= p.maxAttempts; n++ {
		if err := p.switchTo(ctx, n); err != nil {
			log.Debugf("[Display %s] Automation: stopped at space %d: %v", d.ID, n, err)
			if n == 1 {
				return res, fmt.Errorf("switching spaces: %w", err)
			}
			break
		}
		if err := limiter.Wait(ctx); err != nil {
			return res, err
		}

		if err := p.setter.SetWallpaper(ctx, imagePath, d); err != nil {
			log.Printf("[Display %s] Automation: space %d failed: %v", d.ID, n, err)
			res.Failures = append(res.Failures, SpaceFailure{Space: strconv.Itoa(n), Err: err})
			continue
		}
		res.Spaces++
	}

	if err := p.switchTo(ctx, 1); err != nil {
		log.Printf("[Display %s] Automation: could not return to space 1: %v", d.ID, err)
	}

	if res.Spaces == 0 && len(res.Failures) > 0 {
		return res, fmt.Errorf("no space updated: %w", res.Failures[0].Err)
	}
	return res, nil
}
