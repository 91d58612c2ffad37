package contracts

import (
	"context"
	"slotbook-service/internal/app/models"
)

// AvailabilitySource answers which generated slots of a pool are still free.
// Slot ids missing from the returned map keep their default availability.
type AvailabilitySource interface {
	Availability(ctx context.Context, key models.PoolKey, slotIDs []string) (map[string]bool, error)
}

// HoldLedger records hold transitions in the authoritative reservation store.
type HoldLedger interface {
	RecordHold(ctx context.Context, hold models.Hold) error
}

// HoldFinder loads holds that are no longer live in the coordinator.
type HoldFinder interface {
	FindHold(ctx context.Context, id string) (models.Hold, error)
}
