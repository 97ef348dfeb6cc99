package util

import "sync/atomic"

// SafeCounter counts outstanding background jobs.
type SafeCounter struct {
	value atomic.Int64
}

// NewSafeCounter creates a counter starting at zero.
func NewSafeCounter() *SafeCounter {
	return &SafeCounter{}
}

// Increment adds one and returns the new value.
func (c *SafeCounter) Increment() int {
	return int(c.value.Add(1))
}

// Decrement subtracts one and returns the new value.
func (c *SafeCounter) Decrement() int {
	return int(c.value.Add(-1))
}

// Add adds delta and returns the new value.
func (c *SafeCounter) Add(delta int) int {
	return int(c.value.Add(int64(delta)))
}

// Value returns the current value.
func (c *SafeCounter) Value() int {
	return int(c.value.Load())
}

// SafeFlag is a boolean shared between goroutines.
type SafeFlag struct {
	value atomic.Bool
}

// NewSafeFlag creates a flag with an initial value.
func NewSafeFlag(initial bool) *SafeFlag {
	f := &SafeFlag{}
	f.value.Store(initial)
	return f
}

// Set stores v and returns it.
func (f *SafeFlag) Set(v bool) bool {
	f.value.Store(v)
	return v
}

// Value returns the current value.
func (f *SafeFlag) Value() bool {
	return f.value.Load()
}

// TryAcquire sets the flag if it was clear and reports whether it did.
// Pair with Release to guard work that must not overlap.
func (f *SafeFlag) TryAcquire() bool {
	return f.value.CompareAndSwap(false, true)
}

// Release clears the flag.
func (f *SafeFlag) Release() {
	f.value.Store(false)
}
