package requests

import "github.com/goccy/go-json"

type OpenPool struct {
	Category  string `json:"category" validate:"required"`
	ServiceID string `json:"serviceId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	// Schedule is decoded by the slot generator, which owns its validation
	Schedule json.RawMessage `json:"schedule" validate:"required"`
}

// Reserve carries either a single slot id or a set reserved all-or-nothing.
type Reserve struct {
	SlotID  string   `json:"slotId,omitempty" validate:"required_without=SlotIDs"`
	SlotIDs []string `json:"slotIds,omitempty" validate:"required_without=SlotID"`
}

func (r Reserve) IDs() []string {
	if len(r.SlotIDs) > 0 {
		return r.SlotIDs
	}
	return []string{r.SlotID}
}

type ReserveBlock struct {
	StartSlotID string `json:"startSlotId" validate:"required"`
	Units       int    `json:"units" validate:"gt=0"`
}
