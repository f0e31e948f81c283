package cart

import (
	"context"
	"log/slog"
	"sync"
)

// KeyPrefix namespaces cart keys in the slot.
const KeyPrefix = "cart:"

// Sessions hands out the cart Store of a session. Calls for the same session run one at a time.
type Sessions struct {
	slot   Slot
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func NewSessions(slot Slot, logger *slog.Logger) *Sessions {
	return &Sessions{
		slot:   slot,
		logger: logger.With("component", "cart"),
		locks:  make(map[string]*sessionLock),
	}
}

// With loads the cart of session and runs fn while holding the session lock.
func (s *Sessions) With(ctx context.Context, session string, fn func(*Store) error) error {
	l := s.acquire(session)
	defer s.release(session, l)

	store := Open(ctx, s.slot, KeyPrefix+session, s.logger.With("session", session))
	return fn(store)
}

// View returns the current cart of session.
func (s *Sessions) View(ctx context.Context, session string) Cart {
	var c Cart
	_ = s.With(ctx, session, func(st *Store) error {
		c = st.Cart()
		return nil
	})
	return c
}

func (s *Sessions) acquire(session string) *sessionLock {
	s.mu.Lock()
	l, ok := s.locks[session]
	if !ok {
		l = &sessionLock{}
		s.locks[session] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return l
}

// release unlocks the session and forgets the lock once nobody waits on it.
func (s *Sessions) release(session string, l *sessionLock) {
	l.Unlock()

	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, session)
	}
	s.mu.Unlock()
}

// activeLocks is the number of sessions currently held or awaited.
func (s *Sessions) activeLocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
