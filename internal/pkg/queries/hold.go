package queries

const (
	// UpsertHold never moves a row back: terminal rows are frozen and a
	// confirmed row ignores a pending write.
	UpsertHold = `
		INSERT INTO holds (
			id, category, service_id, pool_date, slot_ids, status, reason, requested_at, resolved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			reason = EXCLUDED.reason,
			resolved_at = EXCLUDED.resolved_at,
			updated_at = NOW()
		WHERE holds.status NOT IN ('rejected', 'released')
			AND NOT (holds.status = 'confirmed' AND EXCLUDED.status = 'pending')
	`

	GetHoldByID = `
		SELECT id, category, service_id, to_char(pool_date, 'YYYY-MM-DD'), slot_ids, status, reason, requested_at, resolved_at
		FROM holds
		WHERE id = $1
	`
)
