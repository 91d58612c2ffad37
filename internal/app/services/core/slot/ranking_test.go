package slot

import (
	"slotbook-service/internal/app/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rankingSnapshot() []models.Slot {
	return []models.Slot{
		{ID: "d@09:00", Time: "09:00", Available: false},
		{ID: "d@09:30", Time: "09:30", Available: true},
		{ID: "d@10:00", Time: "10:00", Available: true},
		{ID: "d@10:30", Time: "10:30", Available: false},
		{ID: "d@11:00", Time: "11:00", Available: true},
		{ID: "d@11:30", Time: "11:30", Available: true},
	}
}

func ids(slots []models.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.ID)
	}
	return out
}

func TestFirstAvailable(t *testing.T) {
	assert.Equal(t, []string{"d@09:30", "d@10:00", "d@11:00"}, ids(FirstAvailable(rankingSnapshot(), 3)))
	assert.Empty(t, FirstAvailable(rankingSnapshot(), 0))
	assert.Empty(t, FirstAvailable(nil, 3))
}

func TestPreferredTimes(t *testing.T) {
	t.Run("Preferred first then earliest", func(t *testing.T) {
		rank := PreferredTimes([]string{"11:30", "10:30", "9.30"})
		assert.Equal(t, []string{"d@11:30", "d@09:30", "d@10:00"}, ids(rank(rankingSnapshot(), 3)))
	})

	t.Run("No preference behaves like first available", func(t *testing.T) {
		rank := PreferredTimes(nil)
		assert.Equal(t, ids(FirstAvailable(rankingSnapshot(), 2)), ids(rank(rankingSnapshot(), 2)))
	})
}
