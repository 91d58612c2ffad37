package models

import (
	"fmt"
	"time"
)

// PoolKey identifies one slot pool: a service of a category on a given day.
type PoolKey struct {
	Category  string `json:"category" validate:"required"`
	ServiceID string `json:"serviceId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (k PoolKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Category, k.ServiceID, k.Date)
}

func (k PoolKey) IsZero() bool {
	return k == PoolKey{}
}

// Slot is an addressable unit of bookable time.
type Slot struct {
	ID        string            `json:"id"`
	Time      string            `json:"time"`
	Available bool              `json:"available"`
	Capacity  *int              `json:"capacity,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy, so callers never share metadata maps with the pool.
func (s Slot) Clone() Slot {
	out := s
	if s.Capacity != nil {
		capacity := *s.Capacity
		out.Capacity = &capacity
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// SlotID builds the deterministic id of the slot starting at hh:mm on date.
func SlotID(date time.Time, hour, minute int) string {
	return fmt.Sprintf("%s@%02d:%02d", date.Format("2006-01-02"), hour, minute)
}

// SlotDelta is a partial update, nil fields are left untouched on merge.
type SlotDelta struct {
	SlotID    string
	Available *bool
	Capacity  *int
	Metadata  map[string]string
}

func (d SlotDelta) IsEmpty() bool {
	return d.Available == nil && d.Capacity == nil && len(d.Metadata) == 0
}

// AvailabilityDelta is the shorthand used by the reservation paths.
func AvailabilityDelta(slotID string, available bool) SlotDelta {
	return SlotDelta{SlotID: slotID, Available: &available}
}
