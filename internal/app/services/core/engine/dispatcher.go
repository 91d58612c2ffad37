package engine

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/app/services/core/pool"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/dto/messages"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var (
	errMissingSlotIDs = errors.New("slotId or slotIds is required")
	errPartialPool    = errors.New("category, serviceId and date must be given together")
	errNoPoolForSlot  = errors.New("no open pool holds the slot")
	errAmbiguousSlot  = errors.New("slot is held by more than one open pool")
)

// HandleInbound routes one raw transport message. It is safe to use as a
// contracts.InboundHandler.
func (e *Engine) HandleInbound(ctx context.Context, raw []byte) error {
	msgType, err := messages.PeekType(raw)
	if err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	log := e.log.With(
		zap.String(constvars.LoggingMethodKey, "engine.Engine.HandleInbound"),
		zap.String(constvars.LoggingMessageTypeKey, msgType),
	)

	switch msgType {
	case messages.TypeAvailabilityUpdate:
		var msg messages.AvailabilityUpdate
		if err := decode(raw, &msg); err != nil {
			log.Warn("dropping malformed message", zap.Error(err))
			return err
		}
		return e.route(log, models.PoolKey{}, []messages.SlotUpdate{msg.SlotUpdate})

	case messages.TypeBulkUpdate:
		msg, err := messages.DecodeBulkUpdate(raw)
		if err == nil {
			err = validate(&msg)
		} else {
			err = exceptions.ErrCannotParseJSON(err)
		}
		if err != nil {
			log.Warn("dropping malformed message", zap.Error(err))
			return err
		}
		return e.route(log, msg.Key(), msg.Updates)

	case messages.TypeReservationConfirmed:
		var msg messages.ReservationConfirmed
		if err := json.Unmarshal(raw, &msg); err != nil {
			return exceptions.ErrCannotParseJSON(err)
		}
		ids := msg.IDs()
		if len(ids) == 0 {
			return exceptions.ErrInputValidation(errMissingSlotIDs)
		}
		if !e.coord.Confirm(msg.Key(), ids, msg.Success) {
			log.Debug("confirmation matched no pending hold", zap.Strings(constvars.LoggingSlotIDsKey, ids))
		}
		return nil
	}

	log.Warn("unknown inbound message type")
	return exceptions.ErrUnknownMessageType(errors.New(msgType), msgType)
}

// route groups updates by pool and publishes each group in message order.
// An update naming no pool uses fallback, and failing that the one open pool
// that holds its slot id. Updates that match no pool or several are dropped.
func (e *Engine) route(log *zap.Logger, fallback models.PoolKey, updates []messages.SlotUpdate) error {
	var (
		order   []models.PoolKey
		batches = make(map[models.PoolKey][]models.SlotDelta)
	)
	for _, u := range updates {
		key := u.Key()
		if key.IsZero() {
			key = fallback
		}
		if key.IsZero() {
			located, err := e.locate(u.SlotID)
			if err != nil {
				log.Warn("dropping update without a pool",
					zap.String(constvars.LoggingSlotIDKey, u.SlotID),
					zap.Error(err),
				)
				continue
			}
			key = located
		}
		if _, ok := batches[key]; !ok {
			order = append(order, key)
		}
		batches[key] = append(batches[key], u.Delta())
	}

	var errs []error
	for _, key := range order {
		if err := e.publish(log, key, batches[key]...); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

// locate finds the single open pool holding slotID.
func (e *Engine) locate(slotID string) (models.PoolKey, error) {
	var found []models.PoolKey
	for _, key := range e.channel.Keys() {
		err := e.channel.View(key, func(p *pool.Pool) error {
			if _, ok := p.Get(slotID); ok {
				found = append(found, key)
			}
			return nil
		})
		if err != nil && !errors.Is(err, exceptions.ErrUnknownPool) {
			return models.PoolKey{}, err
		}
	}
	switch len(found) {
	case 0:
		return models.PoolKey{}, errNoPoolForSlot
	case 1:
		return found[0], nil
	}
	return models.PoolKey{}, fmt.Errorf("%w: %d pools", errAmbiguousSlot, len(found))
}

func (e *Engine) publish(log *zap.Logger, key models.PoolKey, deltas ...models.SlotDelta) error {
	applied, err := e.channel.Publish(key, deltas...)
	if err != nil {
		log.Warn("availability update not applied",
			zap.String(constvars.LoggingPoolKey, key.String()),
			zap.Error(err),
		)
		return err
	}
	log.Debug("availability update applied",
		zap.String(constvars.LoggingPoolKey, key.String()),
		zap.Int("slots", len(applied)),
	)
	return nil
}

func decode(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	return validate(v)
}

func validate(v interface{}) error {
	if err := utils.ValidateStruct(v); err != nil {
		return exceptions.ErrInputValidation(err)
	}
	var refs []messages.PoolRef
	switch m := v.(type) {
	case *messages.AvailabilityUpdate:
		refs = append(refs, m.PoolRef)
	case *messages.BulkUpdate:
		refs = append(refs, m.PoolRef)
		for _, u := range m.Updates {
			refs = append(refs, u.PoolRef)
		}
	}
	for _, r := range refs {
		if r.Partial() {
			return exceptions.ErrInputValidation(errPartialPool)
		}
	}
	return nil
}
