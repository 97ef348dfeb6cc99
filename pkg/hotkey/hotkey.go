// Package hotkey registers the global shortcuts that step through scenes.
package hotkey

import (
	"sync"
	"time"

	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/util/log"
	"golang.design/x/hotkey"
)

// debounce is the pause after handling a key press.
const debounce = 200 * time.Millisecond

// Actions are invoked when a shortcut is pressed.
type Actions struct {
	NextScene     func()
	PreviousScene func()
}

// Listener owns the registered shortcuts.
type Listener struct {
	mu   sync.Mutex
	keys []*hotkey.Hotkey
	done chan struct{}
}

// NewListener returns a listener with nothing registered.
func NewListener() *Listener {
	return &Listener{}
}

// Start registers Ctrl+Alt+Right (next scene) and Ctrl+Alt+Left (previous
// scene). Shortcuts that cannot be registered are logged and skipped.
func (l *Listener) Start(actions Actions) {
	l.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = make(chan struct{})

	l.register(hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keyRight), "Next Scene", actions.NextScene)
	l.register(hotkey.New([]hotkey.Modifier{modCtrl, modAlt}, keyLeft), "Previous Scene", actions.PreviousScene)
}

// register must be called with l.mu held.
func (l *Listener) register(hk *hotkey.Hotkey, name string, action func()) {
	if action == nil {
		return
	}
	if err := hk.Register(); err != nil {
		log.Printf("Failed to register hotkey %s: %v", name, err)
		return
	}
	log.Printf("Registered hotkey: %s", name)
	l.keys = append(l.keys, hk)

	done := l.done
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-hk.Keydown():
				if !ok {
					return
				}
				log.Debugf("Hotkey pressed: %s", name)
				action()
				time.Sleep(debounce)
			}
		}
	}()
}

// Stop unregisters every shortcut.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		close(l.done)
		l.done = nil
	}
	for _, hk := range l.keys {
		if err := hk.Unregister(); err != nil {
			log.Debugf("Failed to unregister hotkey: %v", err)
		}
	}
	l.keys = nil
}

// Cycle returns the scene step positions away from currentID in scenes,
// wrapping at both ends. An unknown currentID starts before the first scene
// when stepping forward and after the last when stepping back.
func Cycle(scenes []library.Scene, currentID string, step int) (library.Scene, bool) {
	n := len(scenes)
	if n == 0 {
		return library.Scene{}, false
	}

	pos := -1
	for i, sc := range scenes {
		if sc.ID == currentID {
			pos = i
			break
		}
	}
	if pos < 0 {
		if step > 0 {
			pos = -1
		} else {
			pos = n
		}
	}
	next := ((pos+step)%n + n) % n
	return scenes[next], true
}
