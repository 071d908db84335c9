package repository

import (
	"context"
	"fmt"
	"time"

	"casting_ops_backend/internal/casting/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking represents the booking database model
type Booking struct {
	ID              uuid.UUID
	CastID          uuid.UUID
	CastName        string
	CastType        domain.CastType
	AccountName     string
	ProjectName     string
	ProjectID       string
	RoleName        string
	StartDate       time.Time
	EndDate         time.Time
	StartTime       string
	EndTime         string
	ShootingDates   []time.Time
	Rank            int
	Tier            domain.Tier
	Mode            domain.Mode
	Status          domain.Status
	Note            string
	Cost            int64
	ThreadTS        string
	Permalink       string
	CalendarEventID string
	AttachmentKey   string
	CreatedBy       *uuid.UUID
	UpdatedBy       *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Cast represents a roster entry
type Cast struct {
	ID             uuid.UUID
	Name           string
	Furigana       string
	CastType       domain.CastType
	Agency         string
	Email          string
	SlackMentionID string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Repository provides database operations for bookings, casts and their history
type Repository struct {
	pool *pgxpool.Pool
}

const (
	bookingNotFoundMsg = "booking not found"
	castNotFoundMsg    = "cast not found"
)

// New creates a new casting repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// inTx runs fn inside a transaction, committing only when it returns nil.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sendBatch executes every queued statement and fails on the first error.
func sendBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, what string) error {
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to %s: %w", what, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	return nil
}
