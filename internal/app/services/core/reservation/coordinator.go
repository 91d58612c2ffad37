// Package reservation runs the hold state machine on top of the availability
// channel: optimistic unavailability, bounded confirmation wait, exact
// rollback and idempotent release.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/availability"
	"slotbook-service/internal/app/services/core/pool"
	"slotbook-service/internal/pkg/clock"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"slotbook-service/internal/pkg/exceptions"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultConfirmationTimeout = 5 * time.Second
	ledgerWriteTimeout         = 3 * time.Second
)

type hold struct {
	data      models.Hold
	snapshots []models.Slot
	done      chan struct{}

	// wire orders reserve_slot before any release_slot for the hold.
	wire      sync.Mutex
	announced bool

	// ledgerMu serializes ledger writes so a stale status never lands last.
	ledgerMu sync.Mutex
	recorded models.HoldStatus
}

type ownerKey struct {
	key    models.PoolKey
	slotID string
}

// Coordinator owns every live hold. Lock order is always the channel's key
// lock first, then mu.
type Coordinator struct {
	log       *zap.Logger
	channel   *availability.Channel
	transport contracts.Transport
	clock     clock.Clock
	timeout   time.Duration
	ledger    contracts.HoldLedger

	mu     sync.Mutex
	holds  map[string]*hold
	owners map[ownerKey]*hold
	closed bool
}

type Option func(*Coordinator)

func WithConfirmationTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(cl clock.Clock) Option {
	return func(c *Coordinator) {
		c.clock = cl
	}
}

// WithLedger records every hold transition.
func WithLedger(ledger contracts.HoldLedger) Option {
	return func(c *Coordinator) {
		c.ledger = ledger
	}
}

func NewCoordinator(logger *zap.Logger, channel *availability.Channel, transport contracts.Transport, opts ...Option) *Coordinator {
	c := &Coordinator{
		log:       logger,
		channel:   channel,
		transport: transport,
		clock:     clock.NewSystem(),
		timeout:   DefaultConfirmationTimeout,
		holds:     make(map[string]*hold),
		owners:    make(map[ownerKey]*hold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reserve holds a single slot outside of any session.
func (c *Coordinator) Reserve(ctx context.Context, key models.PoolKey, slotID string) (models.Hold, error) {
	return c.reserve(ctx, nil, key, []string{slotID})
}

// ReserveSet holds every id as one logical hold with a single correlated
// reserve_slot message.
func (c *Coordinator) ReserveSet(ctx context.Context, key models.PoolKey, slotIDs []string) (models.Hold, error) {
	return c.reserve(ctx, nil, key, slotIDs)
}

func (c *Coordinator) reserve(ctx context.Context, sess *Session, key models.PoolKey, slotIDs []string) (models.Hold, error) {
	ids := dedupe(slotIDs)
	if len(ids) == 0 {
		return models.Hold{}, fmt.Errorf("%w: no slot ids", exceptions.ErrUnknownSlot)
	}
	log := c.log.With(
		zap.String(constvars.LoggingMethodKey, "reservation.Coordinator.reserve"),
		zap.String(constvars.LoggingPoolKey, key.String()),
		zap.Strings(constvars.LoggingSlotIDsKey, ids),
	)

	var h *hold
	err := c.channel.Mutate(key, func(p *pool.Pool) ([]models.Slot, error) {
		snapshots := make([]models.Slot, 0, len(ids))
		for _, id := range ids {
			s, ok := p.Get(id)
			if !ok {
				return nil, fmt.Errorf("%w: %s", exceptions.ErrUnknownSlot, id)
			}
			if !s.Available {
				return nil, fmt.Errorf("%w: %s", exceptions.ErrSlotUnavailable, id)
			}
			snapshots = append(snapshots, s)
		}

		var err error
		h, err = c.register(sess, key, ids, snapshots)
		if err != nil {
			return nil, err
		}

		changed := make([]models.Slot, 0, len(ids))
		for _, id := range ids {
			s, err := p.ApplyDelta(models.AvailabilityDelta(id, false))
			if err != nil {
				return changed, err
			}
			changed = append(changed, s)
		}
		return changed, nil
	})
	if err != nil {
		log.Debug("reservation refused", zap.Error(err))
		return models.Hold{}, err
	}

	log = log.With(zap.String(constvars.LoggingHoldIDKey, h.data.ID))
	log.Info("hold pending")
	c.record(h)

	sent, err := c.announce(ctx, h)
	if err != nil {
		log.Error("failed to send reserve_slot", zap.Error(err))
		c.resolve(h, models.HoldStatusRejected, models.HoldReasonTransport)
		<-h.done
		return c.view(h), fmt.Errorf("%w: %w", exceptions.ErrReservationRejected, err)
	}
	if !sent {
		log.Info("hold resolved before reserve_slot went out")
		<-h.done
		result := c.view(h)
		return result, holdError(result)
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case <-h.done:
	case <-timer.C:
		if c.resolve(h, models.HoldStatusRejected, models.HoldReasonTimeout) {
			log.Warn("confirmation timed out, hold rolled back")
			c.sendRelease(context.WithoutCancel(ctx), h)
		}
	case <-ctx.Done():
		if c.resolve(h, models.HoldStatusRejected, models.HoldReasonCancelled) {
			log.Info("requester went away, hold rolled back")
			c.sendRelease(context.WithoutCancel(ctx), h)
		}
	}
	<-h.done

	result := c.view(h)
	return result, holdError(result)
}

// register must run under the key lock.
func (c *Coordinator) register(sess *Session, key models.PoolKey, ids []string, snapshots []models.Slot) (*hold, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, exceptions.ErrSessionClosed
	}
	for _, id := range ids {
		if _, owned := c.owners[ownerKey{key, id}]; owned {
			return nil, fmt.Errorf("%w: %s is held", exceptions.ErrSlotUnavailable, id)
		}
	}

	h := &hold{
		data: models.Hold{
			ID:          uuid.NewString(),
			Key:         key,
			SlotIDs:     ids,
			Status:      models.HoldStatusPending,
			RequestedAt: c.clock.Now(),
		},
		snapshots: snapshots,
		done:      make(chan struct{}),
	}
	if sess != nil && !sess.add(h) {
		return nil, exceptions.ErrSessionClosed
	}

	c.holds[h.data.ID] = h
	for _, id := range ids {
		c.owners[ownerKey{key, id}] = h
	}
	return h, nil
}

// resolve moves h to status under the key lock and applies the pool side
// effect of the move. It reports false when h was not in a state that
// allows the move, which makes every resolution happen at most once.
func (c *Coordinator) resolve(h *hold, status models.HoldStatus, reason models.HoldReason) bool {
	var (
		from  models.HoldStatus
		moved bool
	)
	err := c.channel.Mutate(h.data.Key, func(p *pool.Pool) ([]models.Slot, error) {
		var changed []models.Slot
		changed, from, moved = c.transition(p, h, status, reason)
		return changed, nil
	})
	if errors.Is(err, exceptions.ErrUnknownPool) {
		_, from, moved = c.transition(nil, h, status, reason)
	}
	if !moved {
		return false
	}

	if from == models.HoldStatusPending {
		close(h.done)
	}
	c.log.Info("reservation.Coordinator.resolve hold moved",
		zap.String(constvars.LoggingHoldIDKey, h.data.ID),
		zap.String(constvars.LoggingHoldStatusKey, string(status)),
		zap.String(constvars.LoggingHoldReasonKey, string(reason)),
	)
	c.record(h)
	return true
}

// transition runs under the key lock when p is non-nil.
func (c *Coordinator) transition(p *pool.Pool, h *hold, status models.HoldStatus, reason models.HoldReason) ([]models.Slot, models.HoldStatus, bool) {
	c.mu.Lock()
	from := h.data.Status
	if !allowed(from, status) {
		c.mu.Unlock()
		return nil, from, false
	}
	now := c.clock.Now()
	h.data.Status = status
	h.data.Reason = reason
	h.data.ResolvedAt = &now
	if !status.Owning() {
		for _, id := range h.data.SlotIDs {
			k := ownerKey{h.data.Key, id}
			if c.owners[k] == h {
				delete(c.owners, k)
			}
		}
	}
	if status.Terminal() {
		delete(c.holds, h.data.ID)
	}
	c.mu.Unlock()

	if p == nil {
		return nil, from, true
	}

	var changed []models.Slot
	switch status {
	case models.HoldStatusRejected:
		for _, snap := range h.snapshots {
			s, err := p.Restore(snap)
			if err != nil {
				continue
			}
			changed = append(changed, s)
		}
	case models.HoldStatusReleased:
		for _, id := range h.data.SlotIDs {
			s, err := p.ApplyDelta(models.AvailabilityDelta(id, true))
			if err != nil {
				continue
			}
			changed = append(changed, s)
		}
	}
	return changed, from, true
}

func allowed(from, to models.HoldStatus) bool {
	switch from {
	case models.HoldStatusPending:
		return to == models.HoldStatusConfirmed || to == models.HoldStatusRejected
	case models.HoldStatusConfirmed:
		return to == models.HoldStatusReleased
	}
	return false
}

// Confirm applies a reservation_confirmed message. A zero key correlates by
// slot ids alone. Confirmations that match no pending hold are ignored.
func (c *Coordinator) Confirm(key models.PoolKey, slotIDs []string, success bool) bool {
	h := c.match(key, dedupe(slotIDs))
	if h == nil {
		c.log.Debug("reservation.Coordinator.Confirm no pending hold matches, ignoring",
			zap.String(constvars.LoggingPoolKey, key.String()),
			zap.Strings(constvars.LoggingSlotIDsKey, slotIDs),
		)
		return false
	}
	if success {
		return c.resolve(h, models.HoldStatusConfirmed, models.HoldReasonNone)
	}
	return c.resolve(h, models.HoldStatusRejected, models.HoldReasonRejected)
}

func (c *Coordinator) match(key models.PoolKey, ids []string) *hold {
	if len(ids) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !key.IsZero() {
		h := c.owners[ownerKey{key, ids[0]}]
		if h != nil && h.data.Status == models.HoldStatusPending && sameIDs(h.data.SlotIDs, ids) {
			return h
		}
		return nil
	}

	var best *hold
	for _, h := range c.holds {
		if h.data.Status != models.HoldStatusPending || !sameIDs(h.data.SlotIDs, ids) {
			continue
		}
		if best == nil || h.data.RequestedAt.Before(best.data.RequestedAt) ||
			(h.data.RequestedAt.Equal(best.data.RequestedAt) && h.data.ID < best.data.ID) {
			best = h
		}
	}
	return best
}

// Release frees whichever hold owns slotID. It is a no-op when nothing owns
// it, so repeated calls send release_slot only once.
func (c *Coordinator) Release(ctx context.Context, key models.PoolKey, slotID string) error {
	c.mu.Lock()
	h := c.owners[ownerKey{key, slotID}]
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	return c.releaseHold(ctx, h)
}

// releaseHold rolls back a pending hold or releases a confirmed one. A block
// hold is released as a whole.
func (c *Coordinator) releaseHold(ctx context.Context, h *hold) error {
	for {
		status := c.status(h)
		var moved bool
		switch status {
		case models.HoldStatusPending:
			moved = c.resolve(h, models.HoldStatusRejected, models.HoldReasonCancelled)
		case models.HoldStatusConfirmed:
			moved = c.resolve(h, models.HoldStatusReleased, models.HoldReasonNone)
		default:
			return nil
		}
		if moved {
			return c.sendRelease(ctx, h)
		}
	}
}

// announce sends reserve_slot unless h was resolved first, and reports
// whether it went out.
func (c *Coordinator) announce(ctx context.Context, h *hold) (bool, error) {
	h.wire.Lock()
	defer h.wire.Unlock()
	if c.status(h).Terminal() {
		return false, nil
	}
	if err := c.transport.Send(ctx, messages.NewReserveSlot(h.data.Key, h.data.SlotIDs)); err != nil {
		return false, err
	}
	h.announced = true
	return true, nil
}

// sendRelease is a no-op for holds whose reserve_slot never went out.
func (c *Coordinator) sendRelease(ctx context.Context, h *hold) error {
	h.wire.Lock()
	defer h.wire.Unlock()
	if !h.announced {
		return nil
	}

	var errs []error
	for _, id := range h.data.SlotIDs {
		if err := c.transport.Send(ctx, messages.NewReleaseSlot(h.data.Key, id)); err != nil {
			c.log.Warn("reservation.Coordinator.sendRelease failed to send release_slot",
				zap.String(constvars.LoggingHoldIDKey, h.data.ID),
				zap.String(constvars.LoggingSlotIDKey, id),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) status(h *hold) models.HoldStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return h.data.Status
}

func (c *Coordinator) view(h *hold) models.Hold {
	c.mu.Lock()
	defer c.mu.Unlock()
	return h.data.Clone()
}

// Hold returns a live (pending or confirmed) hold by id.
func (c *Coordinator) Hold(id string) (models.Hold, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.holds[id]
	if !ok {
		return models.Hold{}, false
	}
	return h.data.Clone(), true
}

// Holds lists live holds oldest first.
func (c *Coordinator) Holds() []models.Hold {
	c.mu.Lock()
	out := make([]models.Hold, 0, len(c.holds))
	for _, h := range c.holds {
		out = append(out, h.data.Clone())
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out
}

// Close refuses new holds and releases every live one.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	live := make([]*hold, 0, len(c.holds))
	for _, h := range c.holds {
		live = append(live, h)
	}
	c.mu.Unlock()

	var errs []error
	for _, h := range live {
		if err := c.releaseHold(ctx, h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// record writes the current state of h. Writes for one hold are serialized
// and a state is never written after a later one.
func (c *Coordinator) record(h *hold) {
	if c.ledger == nil {
		return
	}
	h.ledgerMu.Lock()
	defer h.ledgerMu.Unlock()

	snapshot := c.view(h)
	if h.recorded != "" && ledgerRank(snapshot.Status) <= ledgerRank(h.recorded) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ledgerWriteTimeout)
	defer cancel()
	if err := c.ledger.RecordHold(ctx, snapshot); err != nil {
		c.log.Error("reservation.Coordinator.record failed to write hold ledger",
			zap.String(constvars.LoggingHoldIDKey, snapshot.ID),
			zap.String(constvars.LoggingHoldStatusKey, string(snapshot.Status)),
			zap.Error(err),
		)
		return
	}
	h.recorded = snapshot.Status
}

func ledgerRank(s models.HoldStatus) int {
	switch s {
	case models.HoldStatusPending:
		return 1
	case models.HoldStatusConfirmed:
		return 2
	}
	return 3
}

func holdError(h models.Hold) error {
	if h.Status != models.HoldStatusRejected {
		return nil
	}
	switch h.Reason {
	case models.HoldReasonTimeout:
		return fmt.Errorf("%w: hold %s", exceptions.ErrConfirmationTimeout, h.ID)
	case models.HoldReasonCancelled:
		return fmt.Errorf("%w: hold %s", exceptions.ErrReservationCancelled, h.ID)
	}
	return fmt.Errorf("%w: hold %s", exceptions.ErrReservationRejected, h.ID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
