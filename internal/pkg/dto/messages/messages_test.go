package messages

import (
	"slotbook-service/internal/app/models"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekType(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		err      error
	}{
		{name: "Availability update", raw: `{"type":"availability_update","slotId":"x"}`, expected: TypeAvailabilityUpdate},
		{name: "Type after payload", raw: `{"success":true,"type":"reservation_confirmed"}`, expected: TypeReservationConfirmed},
		{name: "Missing type", raw: `{"slotId":"x"}`, err: ErrMissingType},
		{name: "Empty type", raw: `{"type":""}`, err: ErrMissingType},
		{name: "Numeric type", raw: `{"type":7}`, err: ErrMissingType},
		{name: "Truncated", raw: `{"type":"bulk_update"`, err: ErrInvalidJSON},
		{name: "Bare array is a bulk update", raw: ` [{"slotId":"x","available":true}]`, expected: TypeBulkUpdate},
		{name: "Empty bare array", raw: `[]`, expected: TypeBulkUpdate},
		{name: "Scalar", raw: `"bulk_update"`, err: ErrMissingType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeekType([]byte(tt.raw))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeBulkUpdate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		key     models.PoolKey
		slotIDs []string
	}{
		{
			name:    "Bare array",
			raw:     `[{"type":"availability_update","slotId":"2024-05-01@09:00","available":false},{"slotId":"2024-05-01@09:30","available":true}]`,
			slotIDs: []string{"2024-05-01@09:00", "2024-05-01@09:30"},
		},
		{
			name:    "Object with pool fields",
			raw:     `{"type":"bulk_update","category":"salon","serviceId":"chair-1","date":"2024-05-01","updates":[{"slotId":"2024-05-01@09:00","available":false}]}`,
			key:     models.PoolKey{Category: "salon", ServiceID: "chair-1", Date: "2024-05-01"},
			slotIDs: []string{"2024-05-01@09:00"},
		},
		{
			name:    "Object without pool fields",
			raw:     `{"type":"bulk_update","updates":[{"slotId":"2024-05-01@10:00","available":false}]}`,
			slotIDs: []string{"2024-05-01@10:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeBulkUpdate([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, TypeBulkUpdate, msg.Type)
			assert.Equal(t, tt.key, msg.Key())

			var ids []string
			for _, u := range msg.Updates {
				require.NotNil(t, u.Available)
				ids = append(ids, u.SlotID)
			}
			assert.Equal(t, tt.slotIDs, ids)
		})
	}
}

func TestPoolRefPartial(t *testing.T) {
	assert.False(t, PoolRef{}.Partial())
	assert.False(t, PoolRef{Category: "salon", ServiceID: "chair-1", Date: "2024-05-01"}.Partial())
	assert.True(t, PoolRef{Category: "salon"}.Partial())
	assert.True(t, PoolRef{ServiceID: "chair-1", Date: "2024-05-01"}.Partial())
}

func TestNewReserveSlot(t *testing.T) {
	key := models.PoolKey{Category: "salon", ServiceID: "chair-1", Date: "2024-05-01"}

	t.Run("Single slot uses slotId", func(t *testing.T) {
		body, err := Encode(NewReserveSlot(key, []string{"2024-05-01@09:00"}))
		require.NoError(t, err)

		var wire map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &wire))
		assert.Equal(t, TypeReserveSlot, wire["type"])
		assert.Equal(t, "2024-05-01@09:00", wire["slotId"])
		assert.NotContains(t, wire, "slotIds")
		assert.Equal(t, "chair-1", wire["serviceId"])
	})

	t.Run("Block uses slotIds", func(t *testing.T) {
		ids := []string{"2024-05-01@09:00", "2024-05-01@09:30"}
		msg := NewReserveSlot(key, ids)
		ids[0] = "mutated"

		assert.Empty(t, msg.SlotID)
		assert.Equal(t, []string{"2024-05-01@09:00", "2024-05-01@09:30"}, msg.SlotIDs)
	})
}
