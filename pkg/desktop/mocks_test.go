package desktop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/stretchr/testify/mock"
)

// MockSetter is a mock implementation of the Setter interface.
type MockSetter struct {
	mock.Mock
}

func (m *MockSetter) SetWallpaper(ctx context.Context, imagePath string, d display.Display) error {
	args := m.Called(ctx, imagePath, d)
	return args.Error(0)
}

// MockPropagator is a mock implementation of the Propagator interface.
type MockPropagator struct {
	mock.Mock
}

func (m *MockPropagator) Name() string { return "mock" }

func (m *MockPropagator) PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error) {
	args := m.Called(ctx, imagePath, d)
	return args.Get(0).(Result), args.Error(1)
}

// fakeRunner records every command and fails the ones fail selects.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  func(call int, cmd string) error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	f.calls = append(f.calls, cmd)
	if f.fail != nil {
		if err := f.fail(len(f.calls), cmd); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (f *fakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeImages is an in-memory ImageSource.
type fakeImages map[string]string // id -> path

func (f fakeImages) Image(id string) (library.Image, bool) {
	if _, ok := f[id]; !ok {
		return library.Image{}, false
	}
	return library.Image{ID: id}, true
}

func (f fakeImages) ImagePath(id string) (string, error) {
	p, ok := f[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", library.ErrImageNotFound, id)
	}
	return p, nil
}
