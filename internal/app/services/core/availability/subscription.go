package availability

import (
	"slotbook-service/internal/app/models"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// SubscriptionStats tracks delivery for a single subscription.
type SubscriptionStats struct {
	// Sent is the number of events queued for the observer
	Sent uint64
	// Dropped is the number of queued events evicted because the observer fell behind
	Dropped uint64
}

// Subscription is an observer's bounded queue of pool events. When the queue
// is full the oldest undelivered event is evicted; the observer can always
// resync from Channel.Snapshot.
type Subscription struct {
	id     string
	key    models.PoolKey
	events chan Event

	sent    atomic.Uint64
	dropped atomic.Uint64
	closed  atomic.Bool
	once    sync.Once
}

func newSubscription(key models.PoolKey, size int) *Subscription {
	return &Subscription{
		id:     uuid.NewString(),
		key:    key,
		events: make(chan Event, size),
	}
}

func (s *Subscription) ID() string {
	return s.id
}

func (s *Subscription) Key() models.PoolKey {
	return s.key
}

// Events is closed once the subscription is removed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Stats() SubscriptionStats {
	return SubscriptionStats{
		Sent:    s.sent.Load(),
		Dropped: s.dropped.Load(),
	}
}

// deliver never blocks. It must be called with the topic lock held.
func (s *Subscription) deliver(ev Event) {
	if s.closed.Load() {
		return
	}
	ev = cloneEvent(ev)

	select {
	case s.events <- ev:
		s.sent.Add(1)
		return
	default:
	}

	select {
	case <-s.events:
		s.dropped.Add(1)
	default:
	}

	select {
	case s.events <- ev:
		s.sent.Add(1)
	default:
		s.dropped.Add(1)
	}
}

func (s *Subscription) close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.events)
	})
}

func cloneEvent(ev Event) Event {
	slots := make([]models.Slot, len(ev.Slots))
	for i, sl := range ev.Slots {
		slots[i] = sl.Clone()
	}
	ev.Slots = slots
	return ev
}
