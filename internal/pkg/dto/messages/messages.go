package messages

import (
	"errors"
	"slotbook-service/internal/app/models"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Inbound message types (transport to engine).
const (
	TypeAvailabilityUpdate    = "availability_update"
	TypeBulkUpdate            = "bulk_update"
	TypeReservationConfirmed  = "reservation_confirmed"
	TypeSubscribeAvailability = "subscribe_availability"
	TypeReserveSlot           = "reserve_slot"
	TypeReleaseSlot           = "release_slot"
	TypeRefreshAvailability   = "refresh_availability"
)

var (
	ErrMissingType = errors.New("message type is missing")
	ErrInvalidJSON = errors.New("message is not valid JSON")
)

// PoolRef names a pool on an inbound message. Every field is optional; an
// update without them is routed by its slot id.
type PoolRef struct {
	Category  string `json:"category,omitempty"`
	ServiceID string `json:"serviceId,omitempty"`
	Date      string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r PoolRef) Key() models.PoolKey {
	return models.PoolKey{Category: r.Category, ServiceID: r.ServiceID, Date: r.Date}
}

// Partial reports whether some but not all pool fields are set.
func (r PoolRef) Partial() bool {
	set := 0
	for _, f := range []string{r.Category, r.ServiceID, r.Date} {
		if f != "" {
			set++
		}
	}
	return set > 0 && set < 3
}

// SlotUpdate is a single availability delta as carried on the wire.
type SlotUpdate struct {
	PoolRef
	SlotID    string            `json:"slotId" validate:"required"`
	Available *bool             `json:"available" validate:"required"`
	Capacity  *int              `json:"capacity,omitempty" validate:"omitempty,gte=0"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (u SlotUpdate) Delta() models.SlotDelta {
	return models.SlotDelta{
		SlotID:    u.SlotID,
		Available: u.Available,
		Capacity:  u.Capacity,
		Metadata:  u.Metadata,
	}
}

type AvailabilityUpdate struct {
	Type string `json:"type"`
	SlotUpdate
}

// BulkUpdate arrives either as an object with an updates list or as a bare
// array of availability updates.
type BulkUpdate struct {
	Type string `json:"type"`
	PoolRef
	Updates []SlotUpdate `json:"updates" validate:"required,min=1,dive"`
}

// DecodeBulkUpdate accepts both bulk_update wire forms.
func DecodeBulkUpdate(raw []byte) (BulkUpdate, error) {
	var msg BulkUpdate
	if gjson.ParseBytes(raw).IsArray() {
		msg.Type = TypeBulkUpdate
		err := json.Unmarshal(raw, &msg.Updates)
		return msg, err
	}
	err := json.Unmarshal(raw, &msg)
	return msg, err
}

// ReservationConfirmed carries either slotId or slotIds. The pool fields are
// optional; when missing the confirmation is correlated by slot ids alone.
type ReservationConfirmed struct {
	Type string `json:"type"`
	PoolRef
	SlotID  string   `json:"slotId,omitempty"`
	SlotIDs []string `json:"slotIds,omitempty"`
	Success bool     `json:"success"`
}

func (m ReservationConfirmed) IDs() []string {
	if len(m.SlotIDs) > 0 {
		return m.SlotIDs
	}
	if m.SlotID != "" {
		return []string{m.SlotID}
	}
	return nil
}

// Outbound is implemented by every message the engine sends to the transport.
type Outbound interface {
	MessageType() string
	Key() models.PoolKey
}

type SubscribeAvailability struct {
	Type string `json:"type"`
	models.PoolKey
}

type ReserveSlot struct {
	Type    string   `json:"type"`
	SlotID  string   `json:"slotId,omitempty"`
	SlotIDs []string `json:"slotIds,omitempty"`
	models.PoolKey
}

type ReleaseSlot struct {
	Type   string `json:"type"`
	SlotID string `json:"slotId"`
	models.PoolKey
}

type RefreshAvailability struct {
	Type string `json:"type"`
	models.PoolKey
}

func NewSubscribeAvailability(key models.PoolKey) SubscribeAvailability {
	return SubscribeAvailability{Type: TypeSubscribeAvailability, PoolKey: key}
}

// NewReserveSlot uses slotId for a single slot and slotIds for a block.
func NewReserveSlot(key models.PoolKey, slotIDs []string) ReserveSlot {
	msg := ReserveSlot{Type: TypeReserveSlot, PoolKey: key}
	if len(slotIDs) == 1 {
		msg.SlotID = slotIDs[0]
	} else {
		msg.SlotIDs = append([]string(nil), slotIDs...)
	}
	return msg
}

func NewReleaseSlot(key models.PoolKey, slotID string) ReleaseSlot {
	return ReleaseSlot{Type: TypeReleaseSlot, SlotID: slotID, PoolKey: key}
}

func NewRefreshAvailability(key models.PoolKey) RefreshAvailability {
	return RefreshAvailability{Type: TypeRefreshAvailability, PoolKey: key}
}

func (m SubscribeAvailability) MessageType() string { return m.Type }
func (m SubscribeAvailability) Key() models.PoolKey { return m.PoolKey }
func (m ReserveSlot) MessageType() string           { return m.Type }
func (m ReserveSlot) Key() models.PoolKey           { return m.PoolKey }
func (m ReleaseSlot) MessageType() string           { return m.Type }
func (m ReleaseSlot) Key() models.PoolKey           { return m.PoolKey }
func (m RefreshAvailability) MessageType() string   { return m.Type }
func (m RefreshAvailability) Key() models.PoolKey   { return m.PoolKey }

// Encode marshals an outbound message into its wire form.
func Encode(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}

// PeekType returns the type of a raw inbound message without decoding the
// rest of the payload. A top-level array is a bulk_update.
func PeekType(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", ErrInvalidJSON
	}
	if gjson.ParseBytes(raw).IsArray() {
		return TypeBulkUpdate, nil
	}
	msgType := gjson.GetBytes(raw, "type")
	if msgType.Type != gjson.String || msgType.Str == "" {
		return "", ErrMissingType
	}
	return msgType.Str, nil
}
