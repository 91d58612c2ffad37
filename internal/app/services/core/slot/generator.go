package slot

import (
	"context"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
)

// Generate returns the ordered candidate slots of a day. It is pure: the same
// configuration, date and category always yield the same ids, times and metadata.
// Every slot starts available.
func Generate(cfg Configuration, date time.Time, category string) ([]models.Slot, error) {
	return buildTemplate(cfg, date, category, DefaultMetadata)
}

// buildTemplate walks the cursor from open to close inclusive in fixed
// slot+buffer increments. A step is emitted only when its slot ends by close,
// and steps starting inside the exclusion window are omitted without shifting
// the cursor.
func buildTemplate(cfg Configuration, date time.Time, category string, metadata MetadataFunc) ([]models.Slot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = DefaultMetadata
	}

	closeAt := cfg.Close.Offset()
	var out []models.Slot
	for cursor := cfg.Open.Offset(); cursor <= closeAt; cursor += cfg.step() {
		if cursor+cfg.SlotDuration > closeAt {
			break
		}
		at := wallTimeAt(cursor)
		if cfg.Exclusion != nil && cfg.Exclusion.Contains(at) {
			continue
		}
		out = append(out, models.Slot{
			ID:        models.SlotID(date, at.H, at.M),
			Time:      at.String(),
			Available: true,
			Metadata:  metadata(category, at),
		})
	}
	return out, nil
}

type Option func(*Generator)

// WithAvailabilitySource replaces the default all-available source.
func WithAvailabilitySource(source contracts.AvailabilitySource) Option {
	return func(g *Generator) {
		g.source = source
	}
}

func WithMetadata(fn MetadataFunc) Option {
	return func(g *Generator) {
		g.metadata = fn
	}
}

// Generator builds a pool's initial slot set, overlaying the template with
// the availability reported by the injected source.
type Generator struct {
	log      *zap.Logger
	source   contracts.AvailabilitySource
	metadata MetadataFunc
}

func NewGenerator(logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		log:      logger,
		metadata: DefaultMetadata,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Generate(ctx context.Context, cfg Configuration, key models.PoolKey) ([]models.Slot, error) {
	log := g.log.With(
		zap.String(constvars.LoggingMethodKey, "slot.Generator.Generate"),
		zap.String(constvars.LoggingPoolKey, key.String()),
	)

	date, err := time.Parse(constvars.DateLayout, key.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date '%s'", exceptions.ErrInvalidConfiguration, key.Date)
	}

	slots, err := buildTemplate(cfg, date, key.Category, g.metadata)
	if err != nil {
		log.Warn("refusing slot configuration", zap.Error(err))
		return nil, err
	}
	if g.source == nil || len(slots) == 0 {
		return slots, nil
	}

	ids := make([]string, len(slots))
	for i, s := range slots {
		ids[i] = s.ID
	}
	availability, err := g.source.Availability(ctx, key, ids)
	if err != nil {
		log.Error("availability source failed", zap.Error(err))
		return nil, err
	}
	for i := range slots {
		if available, ok := availability[slots[i].ID]; ok {
			slots[i].Available = available
		}
	}

	log.Debug("slots generated", zap.Int("count", len(slots)))
	return slots, nil
}
