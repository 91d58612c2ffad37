package availability

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/pool"
	"slotbook-service/internal/pkg/clock"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"slotbook-service/internal/pkg/exceptions"
	"sort"
	"sync"

	"go.uber.org/zap"
)

const DefaultQueueSize = 16

// Event is delivered to subscriptions after a batch of deltas was merged.
type Event struct {
	Key     models.PoolKey
	Slots   []models.Slot
	Version uint64
}

// MutateFunc runs with exclusive access to a pool and returns the slots it changed.
type MutateFunc func(p *pool.Pool) ([]models.Slot, error)

type topic struct {
	mu   sync.Mutex
	pool *pool.Pool
	subs []*Subscription
}

// Channel owns every open pool. Each key has one lock under which pool
// mutations and their fan-out happen, so observers never see a pool older
// than the event they were notified about.
type Channel struct {
	log       *zap.Logger
	transport contracts.Transport
	clock     clock.Clock
	queueSize int

	mu     sync.RWMutex
	topics map[models.PoolKey]*topic
}

type Option func(*Channel)

func WithQueueSize(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

func WithClock(cl clock.Clock) Option {
	return func(c *Channel) {
		c.clock = cl
	}
}

func NewChannel(logger *zap.Logger, transport contracts.Transport, opts ...Option) *Channel {
	c := &Channel{
		log:       logger,
		transport: transport,
		clock:     clock.NewSystem(),
		queueSize: DefaultQueueSize,
		topics:    make(map[models.PoolKey]*topic),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open registers a pool seeded with generated slots.
func (c *Channel) Open(key models.PoolKey, slots []models.Slot) error {
	p, err := pool.New(key, slots, pool.WithClock(c.clock))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.topics[key]; exists {
		return fmt.Errorf("%w: %s", exceptions.ErrPoolExists, key)
	}
	c.topics[key] = &topic{pool: p}
	return nil
}

// Close drops a pool and closes all of its subscriptions.
func (c *Channel) Close(key models.PoolKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[key]
	if !ok {
		return
	}
	delete(c.topics, key)

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sub := range t.subs {
		sub.close()
	}
	t.subs = nil
}

// Keys lists open pools in a stable order.
func (c *Channel) Keys() []models.PoolKey {
	c.mu.RLock()
	keys := make([]models.PoolKey, 0, len(c.topics))
	for k := range c.topics {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

func (c *Channel) topic(key models.PoolKey) (*topic, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.topics[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", exceptions.ErrUnknownPool, key)
	}
	return t, nil
}

// Subscribe registers an observer on key and asks the transport to start
// streaming availability for it.
func (c *Channel) Subscribe(ctx context.Context, key models.PoolKey) (*Subscription, error) {
	t, err := c.topic(key)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(key, c.queueSize)
	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	c.log.Info("availability.Channel.Subscribe subscription added",
		zap.String(constvars.LoggingPoolKey, key.String()),
		zap.String(constvars.LoggingSubscriptionIDKey, sub.ID()),
	)

	if c.transport != nil {
		if err := c.transport.Send(ctx, messages.NewSubscribeAvailability(key)); err != nil {
			c.log.Warn("availability.Channel.Subscribe failed to send subscribe_availability",
				zap.String(constvars.LoggingPoolKey, key.String()),
				zap.Error(err),
			)
		}
	}
	return sub, nil
}

// Unsubscribe is idempotent.
func (c *Channel) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	t, err := c.topic(sub.key)
	if err != nil {
		sub.close()
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
			break
		}
	}
	sub.close()
}

// Publish merges inbound deltas in message order, then fans the merged slots
// out once. Deltas for unknown slots are logged and dropped.
func (c *Channel) Publish(key models.PoolKey, deltas ...models.SlotDelta) ([]models.Slot, error) {
	log := c.log.With(
		zap.String(constvars.LoggingMethodKey, "availability.Channel.Publish"),
		zap.String(constvars.LoggingPoolKey, key.String()),
	)

	var applied []models.Slot
	err := c.Mutate(key, func(p *pool.Pool) ([]models.Slot, error) {
		for _, d := range deltas {
			s, err := p.ApplyDelta(d)
			if errors.Is(err, exceptions.ErrUnknownSlot) {
				log.Warn("dropping delta for unknown slot", zap.String(constvars.LoggingSlotIDKey, d.SlotID))
				continue
			}
			if err != nil {
				return applied, err
			}
			applied = append(applied, s)
		}
		return applied, nil
	})
	return applied, err
}

// Mutate runs fn under the key lock and fans out the slots it returns while
// the lock is still held.
func (c *Channel) Mutate(key models.PoolKey, fn MutateFunc) error {
	t, err := c.topic(key)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	changed, err := fn(t.pool)
	if len(changed) > 0 {
		t.fanOut(Event{Key: key, Slots: changed, Version: t.pool.Version()})
	}
	return err
}

// View runs fn under the key lock without fan-out.
func (c *Channel) View(key models.PoolKey, fn func(p *pool.Pool) error) error {
	t, err := c.topic(key)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.pool)
}

// Snapshot returns the pool's slots and the version they were read at.
func (c *Channel) Snapshot(key models.PoolKey) ([]models.Slot, uint64, error) {
	var (
		slots   []models.Slot
		version uint64
	)
	err := c.View(key, func(p *pool.Pool) error {
		slots = p.Snapshot()
		version = p.Version()
		return nil
	})
	return slots, version, err
}

// Stats returns per-subscription delivery counters for key.
func (c *Channel) Stats(key models.PoolKey) (map[string]SubscriptionStats, error) {
	t, err := c.topic(key)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]SubscriptionStats, len(t.subs))
	for _, s := range t.subs {
		out[s.ID()] = s.Stats()
	}
	return out, nil
}

func (t *topic) fanOut(ev Event) {
	for _, sub := range t.subs {
		sub.deliver(ev)
	}
}
