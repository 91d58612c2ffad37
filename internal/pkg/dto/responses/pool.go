package responses

import "slotbook-service/internal/app/models"

type PoolSlots struct {
	Key     models.PoolKey `json:"key"`
	Version uint64         `json:"version"`
	Slots   []models.Slot  `json:"slots"`
}

type Health struct {
	Status string           `json:"status"`
	Pools  int              `json:"pools"`
	Holds  int              `json:"holds"`
	Keys   []models.PoolKey `json:"keys,omitempty"`
}
