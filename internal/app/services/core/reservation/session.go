package reservation

import (
	"context"
	"errors"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/exceptions"
	"sync"
)

// Session scopes holds to a requester's context. When the context ends, or
// Close is called, every hold the session still owns is released.
type Session struct {
	c      *Coordinator
	mu     sync.Mutex
	holds  []*hold
	closed bool
	stop   func() bool
}

func (c *Coordinator) NewSession(ctx context.Context) *Session {
	s := &Session{c: c}
	s.mu.Lock()
	s.stop = context.AfterFunc(ctx, func() {
		_ = s.Close(context.WithoutCancel(ctx))
	})
	s.mu.Unlock()
	return s
}

func (s *Session) Reserve(ctx context.Context, key models.PoolKey, slotID string) (models.Hold, error) {
	return s.ReserveSet(ctx, key, []string{slotID})
}

func (s *Session) ReserveSet(ctx context.Context, key models.PoolKey, slotIDs []string) (models.Hold, error) {
	if s.isClosed() {
		return models.Hold{}, exceptions.ErrSessionClosed
	}
	return s.c.reserve(ctx, s, key, slotIDs)
}

// Holds returns the session's holds that still own their slots.
func (s *Session) Holds() []models.Hold {
	s.mu.Lock()
	held := append([]*hold(nil), s.holds...)
	s.mu.Unlock()

	var out []models.Hold
	for _, h := range held {
		if v := s.c.view(h); v.Status.Owning() {
			out = append(out, v)
		}
	}
	return out
}

// Close is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	held := s.holds
	s.holds = nil
	stop := s.stop
	s.mu.Unlock()

	if stop != nil {
		stop()
	}

	var errs []error
	for _, h := range held {
		if err := s.c.releaseHold(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// add reports false once the session is closed.
func (s *Session) add(h *hold) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.holds = append(s.holds, h)
	return true
}
