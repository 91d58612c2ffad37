package pool

import (
	"errors"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/clock"
	"slotbook-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = models.PoolKey{Category: "medical", ServiceID: "gp", Date: "2024-03-15"}

func seed() []models.Slot {
	return []models.Slot{
		{ID: "2024-03-15@09:00", Time: "09:00", Available: true, Metadata: map[string]string{"room": "Room 1"}},
		{ID: "2024-03-15@09:30", Time: "09:30", Available: true},
		{ID: "2024-03-15@10:00", Time: "10:00", Available: false},
	}
}

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	p, err := New(testKey, seed(), WithClock(clock.NewFixed(time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	return p
}

func TestNew(t *testing.T) {
	t.Run("Keeps generation order", func(t *testing.T) {
		p := newTestPool(t)
		assert.Equal(t, seed(), p.Snapshot())
		assert.Equal(t, uint64(0), p.Version())
		assert.Equal(t, testKey, p.Key())
	})

	t.Run("Rejects duplicate ids", func(t *testing.T) {
		slots := append(seed(), models.Slot{ID: "2024-03-15@09:00"})
		_, err := New(testKey, slots)
		assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration))
	})
}

func TestApplyDelta(t *testing.T) {
	t.Run("Merges only present fields", func(t *testing.T) {
		p := newTestPool(t)
		capacity := 4
		updated, err := p.ApplyDelta(models.SlotDelta{
			SlotID:   "2024-03-15@09:00",
			Capacity: &capacity,
			Metadata: map[string]string{"popular": "true"},
		})
		require.NoError(t, err)

		assert.True(t, updated.Available, "availability should be preserved")
		require.NotNil(t, updated.Capacity)
		assert.Equal(t, 4, *updated.Capacity)
		assert.Equal(t, map[string]string{"room": "Room 1", "popular": "true"}, updated.Metadata)
		assert.Equal(t, uint64(1), p.Version())
	})

	t.Run("Metadata keys are overwritten individually", func(t *testing.T) {
		p := newTestPool(t)
		_, err := p.ApplyDelta(models.SlotDelta{SlotID: "2024-03-15@09:00", Metadata: map[string]string{"room": "Room 7"}})
		require.NoError(t, err)

		s, ok := p.Get("2024-03-15@09:00")
		require.True(t, ok)
		assert.Equal(t, "Room 7", s.Metadata["room"])
	})

	t.Run("Unknown slot leaves the pool untouched", func(t *testing.T) {
		p := newTestPool(t)
		_, err := p.ApplyDelta(models.AvailabilityDelta("2024-03-15@23:00", false))
		assert.True(t, errors.Is(err, exceptions.ErrUnknownSlot))
		assert.Equal(t, uint64(0), p.Version())
		assert.Equal(t, seed(), p.Snapshot())
	})

	t.Run("Returned slots do not alias pool state", func(t *testing.T) {
		p := newTestPool(t)
		s, _ := p.Get("2024-03-15@09:00")
		s.Metadata["room"] = "mutated"

		again, _ := p.Get("2024-03-15@09:00")
		assert.Equal(t, "Room 1", again.Metadata["room"])
	})
}

func TestRestore(t *testing.T) {
	p := newTestPool(t)
	before, _ := p.Get("2024-03-15@09:00")

	_, err := p.ApplyDelta(models.SlotDelta{SlotID: before.ID, Available: boolPtr(false), Metadata: map[string]string{"held": "yes"}})
	require.NoError(t, err)

	restored, err := p.Restore(before)
	require.NoError(t, err)
	assert.Equal(t, before, restored)

	current, _ := p.Get(before.ID)
	assert.Equal(t, before, current)
	assert.Equal(t, uint64(2), p.Version())
}

func TestRun(t *testing.T) {
	p := newTestPool(t)

	run, err := p.Run("2024-03-15@09:00", 3)
	require.NoError(t, err)
	assert.Len(t, run, 3)
	assert.Equal(t, "2024-03-15@10:00", run[2].ID)

	_, err = p.Run("2024-03-15@09:30", 3)
	assert.True(t, errors.Is(err, exceptions.ErrInsufficientRun))

	_, err = p.Run("2024-03-15@09:30", 0)
	assert.True(t, errors.Is(err, exceptions.ErrInsufficientRun))

	_, err = p.Run("missing", 1)
	assert.True(t, errors.Is(err, exceptions.ErrUnknownSlot))
}

func boolPtr(b bool) *bool {
	return &b
}
