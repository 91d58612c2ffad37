// Package engine is the single entry point of the availability engine. It
// wires slot generation, pools, the availability channel, holds and blocks
// behind one facade used by the HTTP layer, the CLI and inbound consumers.
package engine

import (
	"context"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/availability"
	"slotbook-service/internal/app/services/core/block"
	"slotbook-service/internal/app/services/core/reservation"
	"slotbook-service/internal/app/services/core/slot"
	"slotbook-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

const DefaultSuggestionLimit = 3

type Engine struct {
	log       *zap.Logger
	generator *slot.Generator
	channel   *availability.Channel
	coord     *reservation.Coordinator
	blocks    *block.Resolver
	ranker    slot.Ranker
	limit     int
}

type Option func(*Engine)

// WithRanker replaces FirstAvailable as the default suggestion policy.
func WithRanker(r slot.Ranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

func WithSuggestionLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

func NewEngine(logger *zap.Logger, generator *slot.Generator, channel *availability.Channel, coord *reservation.Coordinator, opts ...Option) *Engine {
	e := &Engine{
		log:       logger,
		generator: generator,
		channel:   channel,
		coord:     coord,
		blocks:    block.NewResolver(logger, channel, coord),
		ranker:    slot.FirstAvailable,
		limit:     DefaultSuggestionLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Channel() *availability.Channel {
	return e.channel
}

// OpenPool generates the slots of key and starts serving them.
func (e *Engine) OpenPool(ctx context.Context, key models.PoolKey, cfg slot.Configuration) ([]models.Slot, error) {
	log := e.log.With(
		zap.String(constvars.LoggingMethodKey, "engine.Engine.OpenPool"),
		zap.String(constvars.LoggingPoolKey, key.String()),
	)

	slots, err := e.generator.Generate(ctx, cfg, key)
	if err != nil {
		return nil, err
	}
	if err := e.channel.Open(key, slots); err != nil {
		log.Warn("pool not opened", zap.Error(err))
		return nil, err
	}

	log.Info("pool opened", zap.Int("slots", len(slots)))
	return slots, nil
}

func (e *Engine) ClosePool(key models.PoolKey) {
	e.channel.Close(key)
}

func (e *Engine) Pools() []models.PoolKey {
	return e.channel.Keys()
}

func (e *Engine) Snapshot(key models.PoolKey) ([]models.Slot, uint64, error) {
	return e.channel.Snapshot(key)
}

func (e *Engine) Subscribe(ctx context.Context, key models.PoolKey) (*availability.Subscription, error) {
	return e.channel.Subscribe(ctx, key)
}

func (e *Engine) Unsubscribe(sub *availability.Subscription) {
	e.channel.Unsubscribe(sub)
}

// RefreshEvery asks the transport to refresh key until ctx ends or stop is called.
func (e *Engine) RefreshEvery(ctx context.Context, key models.PoolKey, interval time.Duration) (stop func()) {
	return e.channel.RefreshEvery(ctx, key, interval)
}

func (e *Engine) NewSession(ctx context.Context) *reservation.Session {
	return e.coord.NewSession(ctx)
}

func (e *Engine) Reserve(ctx context.Context, key models.PoolKey, slotID string) (models.Hold, error) {
	return e.coord.Reserve(ctx, key, slotID)
}

// ReserveSet holds every id of slotIDs or none of them.
func (e *Engine) ReserveSet(ctx context.Context, key models.PoolKey, slotIDs []string) (models.Hold, error) {
	return e.coord.ReserveSet(ctx, key, slotIDs)
}

func (e *Engine) ReserveBlock(ctx context.Context, key models.PoolKey, startSlotID string, units int) (models.Hold, error) {
	return e.blocks.ReserveBlock(ctx, key, startSlotID, units)
}

// ReserveBlockIn scopes the block hold to sess.
func (e *Engine) ReserveBlockIn(ctx context.Context, sess *reservation.Session, key models.PoolKey, startSlotID string, units int) (models.Hold, error) {
	return e.blocks.ReserveBlockIn(ctx, sess, key, startSlotID, units)
}

func (e *Engine) Release(ctx context.Context, key models.PoolKey, slotID string) error {
	return e.coord.Release(ctx, key, slotID)
}

func (e *Engine) Hold(id string) (models.Hold, bool) {
	return e.coord.Hold(id)
}

func (e *Engine) Holds() []models.Hold {
	return e.coord.Holds()
}

// Suggest ranks the current snapshot of key. Preferred HH:MM times, when
// given, take precedence over the default ranker.
func (e *Engine) Suggest(key models.PoolKey, limit int, preferred ...string) ([]models.Slot, error) {
	snapshot, _, err := e.channel.Snapshot(key)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.limit
	}
	ranker := e.ranker
	if len(preferred) > 0 {
		ranker = slot.PreferredTimes(preferred)
	}
	return ranker(snapshot, limit), nil
}

// Close releases every live hold and closes every pool.
func (e *Engine) Close(ctx context.Context) error {
	err := e.coord.Close(ctx)
	for _, key := range e.channel.Keys() {
		e.channel.Close(key)
	}
	return err
}
