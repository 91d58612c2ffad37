package slot

import "fmt"

const (
	CategoryRestaurant = "restaurant"
	CategoryMedical    = "medical"
	CategorySalon      = "salon"
	CategoryAutomotive = "automotive"
)

// MetadataFunc derives a slot's metadata from the category tag and start time only.
type MetadataFunc func(category string, at WallTime) map[string]string

// DefaultMetadata populates the per-category fields. Unknown categories get none.
func DefaultMetadata(category string, at WallTime) map[string]string {
	minutes := at.H*60 + at.M
	switch category {
	case CategoryRestaurant:
		seating := []string{"indoor", "terrace", "bar"}
		period := "lunch"
		if at.H >= 16 {
			period = "dinner"
		}
		meta := map[string]string{
			"seating": seating[(minutes/30)%len(seating)],
			"period":  period,
		}
		if at.H == 12 || at.H == 13 || at.H == 19 || at.H == 20 {
			meta["popular"] = "true"
		}
		return meta
	case CategoryMedical:
		return map[string]string{
			"room":  fmt.Sprintf("Room %d", (minutes/15)%4+1),
			"visit": "consultation",
		}
	case CategorySalon:
		return map[string]string{
			"chair": fmt.Sprintf("Chair %d", (minutes/30)%3+1),
		}
	case CategoryAutomotive:
		return map[string]string{
			"bay": fmt.Sprintf("Bay %d", (minutes/60)%2+1),
		}
	}
	return nil
}
