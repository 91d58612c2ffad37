package models

import "time"

type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusConfirmed HoldStatus = "confirmed"
	HoldStatusRejected  HoldStatus = "rejected"
	HoldStatusReleased  HoldStatus = "released"
)

// Owning reports whether a hold in this status still owns its slot ids.
func (s HoldStatus) Owning() bool {
	return s == HoldStatusPending || s == HoldStatusConfirmed
}

func (s HoldStatus) Terminal() bool {
	return s == HoldStatusRejected || s == HoldStatusReleased
}

type HoldReason string

const (
	HoldReasonNone      HoldReason = ""
	HoldReasonRejected  HoldReason = "rejected"
	HoldReasonTimeout   HoldReason = "timeout"
	HoldReasonCancelled HoldReason = "cancelled"
	HoldReasonTransport HoldReason = "transport"
)

// Hold is a claim on one or more slot ids of a single pool.
type Hold struct {
	ID          string     `json:"id"`
	Key         PoolKey    `json:"key"`
	SlotIDs     []string   `json:"slotIds"`
	Status      HoldStatus `json:"status"`
	Reason      HoldReason `json:"reason,omitempty"`
	RequestedAt time.Time  `json:"requestedAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

func (h Hold) Clone() Hold {
	out := h
	out.SlotIDs = append([]string(nil), h.SlotIDs...)
	if h.ResolvedAt != nil {
		resolvedAt := *h.ResolvedAt
		out.ResolvedAt = &resolvedAt
	}
	return out
}
