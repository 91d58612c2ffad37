// Package block reserves contiguous runs of slots for services that last
// more than one slot.
package block

import (
	"context"
	"fmt"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/availability"
	"slotbook-service/internal/app/services/core/pool"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

// Reserver turns a set of slot ids into one logical hold.
type Reserver interface {
	ReserveSet(ctx context.Context, key models.PoolKey, slotIDs []string) (models.Hold, error)
}

type Resolver struct {
	log      *zap.Logger
	channel  *availability.Channel
	reserver Reserver
}

func NewResolver(logger *zap.Logger, channel *availability.Channel, reserver Reserver) *Resolver {
	return &Resolver{
		log:      logger,
		channel:  channel,
		reserver: reserver,
	}
}

// ReserveBlock holds the units slots starting at startSlotID or none of
// them. The run is taken in pool order, so excluded windows are skipped.
func (r *Resolver) ReserveBlock(ctx context.Context, key models.PoolKey, startSlotID string, units int) (models.Hold, error) {
	return r.reserveWith(ctx, r.reserver, key, startSlotID, units)
}

// ReserveBlockIn is ReserveBlock on behalf of a specific reserver, such as
// a requester's session.
func (r *Resolver) ReserveBlockIn(ctx context.Context, reserver Reserver, key models.PoolKey, startSlotID string, units int) (models.Hold, error) {
	return r.reserveWith(ctx, reserver, key, startSlotID, units)
}

func (r *Resolver) reserveWith(ctx context.Context, reserver Reserver, key models.PoolKey, startSlotID string, units int) (models.Hold, error) {
	log := r.log.With(
		zap.String(constvars.LoggingMethodKey, "block.Resolver.ReserveBlock"),
		zap.String(constvars.LoggingPoolKey, key.String()),
		zap.String(constvars.LoggingSlotIDKey, startSlotID),
		zap.Int(constvars.LoggingUnitsKey, units),
	)

	ids, err := r.Run(key, startSlotID, units)
	if err != nil {
		log.Debug("block refused", zap.Error(err))
		return models.Hold{}, err
	}
	return reserver.ReserveSet(ctx, key, ids)
}

// Run returns the ids of the run when every slot in it is available.
func (r *Resolver) Run(key models.PoolKey, startSlotID string, units int) ([]string, error) {
	var ids []string
	err := r.channel.View(key, func(p *pool.Pool) error {
		run, err := p.Run(startSlotID, units)
		if err != nil {
			return err
		}
		ids = make([]string, 0, len(run))
		for _, s := range run {
			if !s.Available {
				return fmt.Errorf("%w: %s in block starting at %s", exceptions.ErrSlotUnavailable, s.ID, startSlotID)
			}
			ids = append(ids, s.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
