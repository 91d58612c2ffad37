// Package ledger persists holds into postgres and reads booked slots back
// when pools are generated.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/drivers/database"
	"slotbook-service/internal/app/models"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/queries"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PostgresLedger struct {
	log *zap.Logger
	db  database.Querier
}

var (
	_ contracts.AvailabilitySource = (*PostgresLedger)(nil)
	_ contracts.HoldLedger         = (*PostgresLedger)(nil)
	_ contracts.HoldFinder         = (*PostgresLedger)(nil)
)

func NewPostgresLedger(log *zap.Logger, db database.Querier) *PostgresLedger {
	return &PostgresLedger{log: log, db: db}
}

// Availability marks every requested slot that is booked, or owned by a
// confirmed hold, as unavailable. All other requested ids are available.
func (l *PostgresLedger) Availability(ctx context.Context, key models.PoolKey, slotIDs []string) (map[string]bool, error) {
	log := l.log.With(
		zap.String(constvars.LoggingMethodKey, "ledger.PostgresLedger.Availability"),
		zap.String(constvars.LoggingPoolKey, key.String()),
	)

	out := make(map[string]bool, len(slotIDs))
	for _, id := range slotIDs {
		out[id] = true
	}
	if len(slotIDs) == 0 {
		return out, nil
	}

	rows, err := l.db.Query(ctx, queries.GetUnavailableSlotIDs, key.Category, key.ServiceID, key.Date, slotIDs)
	if err != nil {
		log.Error("failed to query booked slots", zap.Error(err))
		return nil, exceptions.ErrPostgresQuery(err)
	}
	defer rows.Close()

	booked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan booked slot", zap.Error(err))
			return nil, exceptions.ErrPostgresQuery(err)
		}
		if _, ok := out[id]; ok {
			out[id] = false
			booked++
		}
	}
	if err := rows.Err(); err != nil {
		log.Error("failed to iterate booked slots", zap.Error(err))
		return nil, exceptions.ErrPostgresQuery(err)
	}

	log.Debug("ledger availability loaded", zap.Int("booked", booked))
	return out, nil
}

// RecordHold upserts hold by id, so later transitions overwrite status,
// reason and resolution time of the same row. A rejected or released row is
// final and a late write for it is ignored by the database.
func (l *PostgresLedger) RecordHold(ctx context.Context, hold models.Hold) error {
	err := l.db.Exec(ctx, queries.UpsertHold,
		hold.ID,
		hold.Key.Category,
		hold.Key.ServiceID,
		hold.Key.Date,
		hold.SlotIDs,
		string(hold.Status),
		string(hold.Reason),
		hold.RequestedAt,
		hold.ResolvedAt,
	)
	if err != nil {
		l.log.Error("ledger.PostgresLedger.RecordHold failed",
			zap.String(constvars.LoggingHoldIDKey, hold.ID),
			zap.String(constvars.LoggingHoldStatusKey, string(hold.Status)),
			zap.Error(err),
		)
		return exceptions.ErrPostgresExec(err)
	}
	return nil
}

// FindHold loads a recorded hold. It returns ErrUnknownHold when id was
// never written.
func (l *PostgresLedger) FindHold(ctx context.Context, id string) (models.Hold, error) {
	var (
		hold       models.Hold
		status     string
		reason     string
		resolvedAt *time.Time
	)
	err := l.db.QueryRow(ctx, queries.GetHoldByID, id).Scan(
		&hold.ID,
		&hold.Key.Category,
		&hold.Key.ServiceID,
		&hold.Key.Date,
		&hold.SlotIDs,
		&status,
		&reason,
		&hold.RequestedAt,
		&resolvedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Hold{}, fmt.Errorf("%w: %s", exceptions.ErrUnknownHold, id)
	}
	if err != nil {
		return models.Hold{}, exceptions.ErrPostgresQuery(err)
	}
	hold.Status = models.HoldStatus(status)
	hold.Reason = models.HoldReason(reason)
	hold.ResolvedAt = resolvedAt
	return hold, nil
}
