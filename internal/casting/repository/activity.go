package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity is one entry of a booking's audit timeline.
type Activity struct {
	ID         uuid.UUID       `json:"id"`
	BookingID  uuid.UUID       `json:"bookingId"`
	Kind       string          `json:"kind"`
	FromStatus string          `json:"fromStatus,omitempty"`
	ToStatus   string          `json:"toStatus,omitempty"`
	Detail     json.RawMessage `json:"detail"`
	ActorID    *uuid.UUID      `json:"actorId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// InsertActivity appends to the timeline
func (r *Repository) InsertActivity(ctx context.Context, a Activity) error {
	detail := a.Detail
	if len(detail) == 0 {
		detail = json.RawMessage(`{}`)
	}
	query := `
		INSERT INTO booking_activity (id, booking_id, kind, from_status, to_status, detail, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.BookingID, a.Kind, a.FromStatus, a.ToStatus, []byte(detail), a.ActorID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking activity: %w", err)
	}
	return nil
}

// ListActivity returns the booking's timeline oldest first
func (r *Repository) ListActivity(ctx context.Context, bookingID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT id, booking_id, kind, from_status, to_status, detail, actor_id, created_at
		FROM booking_activity
		WHERE booking_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booking activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var (
			a      Activity
			detail []byte
		)
		if err := rows.Scan(&a.ID, &a.BookingID, &a.Kind, &a.FromStatus, &a.ToStatus, &detail, &a.ActorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking activity: %w", err)
		}
		a.Detail = detail
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking activity: %w", err)
	}
	return out, nil
}
