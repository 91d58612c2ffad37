package slot

import (
	"context"
	"errors"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	availability map[string]bool
	err          error
	gotKey       models.PoolKey
	gotIDs       []string
}

func (f *fakeSource) Availability(ctx context.Context, key models.PoolKey, slotIDs []string) (map[string]bool, error) {
	f.gotKey = key
	f.gotIDs = slotIDs
	return f.availability, f.err
}

func lunchConfig() Configuration {
	return Configuration{
		Open:           NewWallTime(8, 0),
		Close:          NewWallTime(18, 0),
		SlotDuration:   30 * time.Minute,
		BufferDuration: 15 * time.Minute,
		Exclusion:      &Window{Start: NewWallTime(12, 0), End: NewWallTime(13, 0)},
	}
}

func TestGenerate(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Deterministic", func(t *testing.T) {
		first, err := Generate(lunchConfig(), date, CategoryRestaurant)
		require.NoError(t, err)
		second, err := Generate(lunchConfig(), date, CategoryRestaurant)
		require.NoError(t, err)
		assert.Equal(t, first, second, "same inputs should yield identical slots")
	})

	t.Run("Exclusion window is skipped without shifting the cursor", func(t *testing.T) {
		slots, err := Generate(lunchConfig(), date, CategoryMedical)
		require.NoError(t, err)

		var times []string
		for _, s := range slots {
			times = append(times, s.Time)
			at, ok := parseWallTimeFlex(s.Time)
			require.True(t, ok)
			assert.False(t, at.H == 12, "slot %s falls inside the excluded window", s.Time)
		}
		assert.Equal(t, []string{
			"08:00", "08:45", "09:30", "10:15", "11:00", "11:45",
			"13:15", "14:00", "14:45", "15:30", "16:15", "17:00",
		}, times)
	})

	t.Run("Slots must end by close", func(t *testing.T) {
		cfg := Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(11, 0), SlotDuration: 30 * time.Minute}
		slots, err := Generate(cfg, date, "")
		require.NoError(t, err)
		require.Len(t, slots, 4)
		assert.Equal(t, "2024-03-15@09:00", slots[0].ID)
		assert.Equal(t, "2024-03-15@09:30", slots[1].ID)
		assert.Equal(t, "2024-03-15@10:00", slots[2].ID)
		assert.Equal(t, "2024-03-15@10:30", slots[3].ID)
		for _, s := range slots {
			assert.True(t, s.Available)
			assert.Nil(t, s.Metadata)
		}
	})

	t.Run("Metadata depends on category and time only", func(t *testing.T) {
		slots, err := Generate(lunchConfig(), date, CategoryRestaurant)
		require.NoError(t, err)
		assert.Equal(t, DefaultMetadata(CategoryRestaurant, NewWallTime(8, 0)), slots[0].Metadata)
		assert.Equal(t, "lunch", slots[0].Metadata["period"])
	})
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Configuration
	}{
		{
			name: "open equals close",
			cfg:  Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(9, 0), SlotDuration: time.Minute},
		},
		{
			name: "open after close",
			cfg:  Configuration{Open: NewWallTime(18, 0), Close: NewWallTime(9, 0), SlotDuration: time.Minute},
		},
		{
			name: "exclusion starts before open",
			cfg: Configuration{
				Open: NewWallTime(9, 0), Close: NewWallTime(17, 0), SlotDuration: 30 * time.Minute,
				Exclusion: &Window{Start: NewWallTime(8, 0), End: NewWallTime(10, 0)},
			},
		},
		{
			name: "exclusion ends after close",
			cfg: Configuration{
				Open: NewWallTime(9, 0), Close: NewWallTime(17, 0), SlotDuration: 30 * time.Minute,
				Exclusion: &Window{Start: NewWallTime(16, 0), End: NewWallTime(18, 0)},
			},
		},
		{
			name: "zero slot duration",
			cfg:  Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(17, 0)},
		},
		{
			name: "sub-minute slot duration",
			cfg:  Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(9, 2), SlotDuration: 30 * time.Second},
		},
		{
			name: "slot duration not a whole minute",
			cfg:  Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(10, 0), SlotDuration: 90 * time.Second},
		},
		{
			name: "buffer not a whole minute",
			cfg: Configuration{
				Open: NewWallTime(9, 0), Close: NewWallTime(10, 0),
				SlotDuration: 10 * time.Minute, BufferDuration: 20 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := Generate(tt.cfg, time.Now(), CategorySalon)
			assert.Nil(t, slots)
			assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration), "got %v", err)
		})
	}
}

func TestGeneratorAvailabilitySource(t *testing.T) {
	key := models.PoolKey{Category: CategorySalon, ServiceID: "cut", Date: "2024-03-15"}
	cfg := Configuration{Open: NewWallTime(9, 0), Close: NewWallTime(11, 0), SlotDuration: 30 * time.Minute}

	t.Run("Source overrides default availability", func(t *testing.T) {
		source := &fakeSource{availability: map[string]bool{"2024-03-15@09:30": false}}
		g := NewGenerator(zap.NewNop(), WithAvailabilitySource(source))

		slots, err := g.Generate(context.Background(), cfg, key)
		require.NoError(t, err)
		require.Len(t, slots, 4)
		assert.Equal(t, key, source.gotKey)
		assert.Len(t, source.gotIDs, 4)
		assert.True(t, slots[0].Available)
		assert.False(t, slots[1].Available)
		assert.Equal(t, "Chair 2", slots[1].Metadata["chair"])
	})

	t.Run("Source failure is returned", func(t *testing.T) {
		source := &fakeSource{err: errors.New("ledger down")}
		g := NewGenerator(zap.NewNop(), WithAvailabilitySource(source))

		_, err := g.Generate(context.Background(), cfg, key)
		assert.EqualError(t, err, "ledger down")
	})

	t.Run("Invalid date", func(t *testing.T) {
		g := NewGenerator(zap.NewNop())
		_, err := g.Generate(context.Background(), cfg, models.PoolKey{Category: "x", ServiceID: "y", Date: "15/03/2024"})
		assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration))
	})
}

func TestParseScheduleConfig(t *testing.T) {
	t.Run("Valid configuration with exclusion window", func(t *testing.T) {
		raw := []byte(`{"openTime":"08:00","closeTime":"18:00","slotMinutes":30,"bufferMinutes":15,"exclusionWindow":{"start":"12:00","end":"13:00"}}`)
		cfg, err := ParseScheduleConfig(raw)
		require.NoError(t, err)
		assert.Equal(t, lunchConfig(), cfg)
	})

	t.Run("Missing slot minutes", func(t *testing.T) {
		_, err := ParseScheduleConfig([]byte(`{"openTime":"08:00","closeTime":"18:00"}`))
		assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration))
	})

	t.Run("Malformed wall time", func(t *testing.T) {
		_, err := ParseScheduleConfig([]byte(`{"openTime":"8am","closeTime":"18:00","slotMinutes":30}`))
		assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration))
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := ParseScheduleConfig([]byte(`{`))
		assert.True(t, errors.Is(err, exceptions.ErrInvalidConfiguration))
	})
}
