package queries

const (
	// GetUnavailableSlotIDs returns the requested slot ids that are booked,
	// either directly or through a confirmed hold.
	GetUnavailableSlotIDs = `
		SELECT slot_id
		FROM bookings
		WHERE category = $1 AND service_id = $2 AND pool_date = $3 AND slot_id = ANY($4)
		UNION
		SELECT held.slot_id
		FROM holds, unnest(holds.slot_ids) AS held(slot_id)
		WHERE holds.category = $1 AND holds.service_id = $2 AND holds.pool_date = $3
			AND holds.status = 'confirmed' AND held.slot_id = ANY($4)
	`
)
