package slot

import "slotbook-service/internal/app/models"

// Ranker picks up to limit suggested slots from a pool snapshot.
type Ranker func(snapshot []models.Slot, limit int) []models.Slot

// FirstAvailable suggests the earliest available slots in pool order.
func FirstAvailable(snapshot []models.Slot, limit int) []models.Slot {
	if limit <= 0 {
		return nil
	}
	out := make([]models.Slot, 0, limit)
	for _, s := range snapshot {
		if len(out) >= limit {
			break
		}
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// PreferredTimes suggests available slots matching the preferred HH:MM labels
// in preference order, then fills up with the earliest remaining ones.
func PreferredTimes(preferred []string) Ranker {
	return func(snapshot []models.Slot, limit int) []models.Slot {
		if limit <= 0 {
			return nil
		}
		byTime := make(map[string]models.Slot, len(snapshot))
		for _, s := range snapshot {
			if s.Available {
				byTime[s.Time] = s
			}
		}

		out := make([]models.Slot, 0, limit)
		picked := make(map[string]bool, limit)
		for _, p := range preferred {
			if len(out) >= limit {
				return out
			}
			c, ok := parseWallTimeFlex(p)
			if !ok {
				continue
			}
			if s, ok := byTime[c.String()]; ok && !picked[s.ID] {
				out = append(out, s)
				picked[s.ID] = true
			}
		}
		for _, s := range FirstAvailable(snapshot, len(snapshot)) {
			if len(out) >= limit {
				break
			}
			if !picked[s.ID] {
				out = append(out, s)
				picked[s.ID] = true
			}
		}
		return out
	}
}
