package library

import "context"

// notifyUpdateLocked signals that the store has been updated.
// CALLER MUST HOLD s.mu.Lock()
func (s *Store) notifyUpdateLocked() {
	// Close the current channel to broadcast to all waiters
	select {
	case <-s.updateCh:
	default:
		close(s.updateCh)
	}
	s.updateCh = make(chan struct{})
}

// GetUpdateChannel returns a channel that is closed when the store content changes.
func (s *Store) GetUpdateChannel() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updateCh
}

// Watch calls fn after every change until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, fn func()) {
	ch := s.GetUpdateChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			ch = s.GetUpdateChannel()
			fn()
		}
	}
}
