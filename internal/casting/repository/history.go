package repository

import (
	"context"
	"fmt"
	"time"

	"casting_ops_backend/internal/casting/domain"

	"github.com/google/uuid"
)

// HistoryEntry is a master record of a finalized booking.
type HistoryEntry struct {
	ID          uuid.UUID
	BookingID   uuid.UUID
	CastID      uuid.UUID
	CastName    string
	CastType    domain.CastType
	AccountName string
	ProjectName string
	RoleName    string
	Tier        domain.Tier
	ShootDate   time.Time
	EndDate     time.Time
	Cost        int64
	DecidedAt   time.Time
	DecidedBy   *uuid.UUID
}

const insertHistoryQuery = `
	INSERT INTO cast_history (
		id, booking_id, cast_id, cast_name, cast_type, account_name, project_name, role_name,
		tier, shoot_date, end_date, cost, decided_at, decided_by, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
	ON CONFLICT (booking_id) DO NOTHING`

const renameHistoryQuery = `
	UPDATE cast_history SET project_name = $3, updated_at = now()
	WHERE cast_id = $1 AND project_name = $2`

// InsertHistory records a finalized booking once; a second call for the same
// booking reports false.
func (r *Repository) InsertHistory(ctx context.Context, e HistoryEntry) (bool, error) {
	result, err := r.pool.Exec(ctx, insertHistoryQuery,
		e.ID, e.BookingID, e.CastID, e.CastName, string(e.CastType), e.AccountName, e.ProjectName, e.RoleName,
		string(e.Tier), e.ShootDate, e.EndDate, e.Cost, e.DecidedAt, e.DecidedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert cast history: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// RenameHistoryProject moves every history entry of the cast from the old
// project name to the new one.
func (r *Repository) RenameHistoryProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error) {
	result, err := r.pool.Exec(ctx, renameHistoryQuery, castID, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("failed to rename cast history project: %w", err)
	}
	return result.RowsAffected(), nil
}
