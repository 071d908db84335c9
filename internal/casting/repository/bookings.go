package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, cast_id, cast_name, cast_type, account_name, project_name, project_id, role_name,
	start_date, end_date, start_time, end_time, shooting_dates, rank, tier, mode, status, note, cost,
	thread_ts, permalink, calendar_event_id, attachment_key, created_by, updated_by, created_at, updated_at, deleted_at`

const insertBookingQuery = `
	INSERT INTO bookings (
		id, cast_id, cast_name, cast_type, account_name, project_name, project_id, role_name,
		start_date, end_date, start_time, end_time, shooting_dates, rank, tier, mode, status, note, cost,
		created_by, updated_by, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20, $21, $21
	)`

const threadLookupQuery = `
	SELECT thread_ts, permalink FROM bookings
	WHERE project_id = $1 AND thread_ts <> ''
	ORDER BY created_at ASC
	LIMIT 1`

// conflictQuery finds another live booking of the cast that covers the day.
const conflictQuery = `SELECT ` + bookingColumns + ` FROM bookings
	WHERE cast_id = $1
		AND start_date <= $2 AND end_date >= $2
		AND status = ANY($3)
		AND deleted_at IS NULL
		AND NOT (id = ANY($4))
	ORDER BY created_at ASC
	LIMIT 1`

// holdSharedQuery finds another live booking that still uses a calendar hold.
const holdSharedQuery = `SELECT EXISTS (
	SELECT 1 FROM bookings
	WHERE calendar_event_id = $1
		AND id <> $2
		AND status = ANY($3)
		AND deleted_at IS NULL)`

const correlationUpdateQuery = `
	UPDATE bookings SET
		thread_ts = $2,
		permalink = $3,
		calendar_event_id = CASE WHEN $4 = '' THEN calendar_event_id ELSE $4 END,
		attachment_key = CASE WHEN $5 = '' THEN attachment_key ELSE $5 END,
		updated_at = now()
	WHERE id = $1`

// ThreadRef is the notification thread an order was posted in.
type ThreadRef struct {
	TS        string
	Permalink string
}

// Correlation carries the external identifiers written back after an order.
type Correlation struct {
	BookingID       uuid.UUID
	ThreadTS        string
	Permalink       string
	CalendarEventID string
	AttachmentKey   string
}

// StatusUpdate is the primary write of a status transition.
type StatusUpdate struct {
	BookingID uuid.UUID
	Status    domain.Status
	Cost      *int64
	ActorID   uuid.UUID
}

// FieldUpdate is the full set of editable booking fields after an edit.
type FieldUpdate struct {
	StartDate     time.Time
	EndDate       time.Time
	ShootingDates []time.Time
	StartTime     string
	EndTime       string
	ProjectName   string
	ActorID       uuid.UUID
}

// BookingFilter narrows ListBookings. Zero values are ignored.
type BookingFilter struct {
	ProjectID      string
	CastID         *uuid.UUID
	Status         *domain.Status
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Limit          int
}

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.CastID, &b.CastName, &b.CastType, &b.AccountName, &b.ProjectName, &b.ProjectID, &b.RoleName,
		&b.StartDate, &b.EndDate, &b.StartTime, &b.EndTime, &b.ShootingDates, &b.Rank, &b.Tier, &b.Mode, &b.Status,
		&b.Note, &b.Cost, &b.ThreadTS, &b.Permalink, &b.CalendarEventID, &b.AttachmentKey,
		&b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt,
	)
	return b, err
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return out, nil
}

// CreateBookings inserts all bookings of one order atomically
func (r *Repository) CreateBookings(ctx context.Context, bookings []Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, b := range bookings {
			dates := b.ShootingDates
			if dates == nil {
				dates = []time.Time{}
			}
			batch.Queue(insertBookingQuery,
				b.ID, b.CastID, b.CastName, string(b.CastType), b.AccountName, b.ProjectName, b.ProjectID, b.RoleName,
				b.StartDate, b.EndDate, b.StartTime, b.EndTime, dates, b.Rank, string(b.Tier), string(b.Mode),
				string(b.Status), b.Note, b.Cost, b.CreatedBy, b.CreatedAt,
			)
		}
		return sendBatch(ctx, tx, batch, "create bookings")
	})
}

// GetBooking retrieves a booking by ID, including soft-deleted ones
func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, apperr.NotFound(bookingNotFoundMsg)
		}
		return Booking{}, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// FindThread returns the first notification thread recorded for a project key.
func (r *Repository) FindThread(ctx context.Context, projectID string) (ThreadRef, bool, error) {
	if projectID == "" {
		return ThreadRef{}, false, nil
	}
	var ref ThreadRef
	err := r.pool.QueryRow(ctx, threadLookupQuery, projectID).Scan(&ref.TS, &ref.Permalink)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ThreadRef{}, false, nil
		}
		return ThreadRef{}, false, fmt.Errorf("failed to look up thread: %w", err)
	}
	return ref, true, nil
}

// FindConflict returns the earliest active booking of the cast on day that is
// not one of exclude, or nil when the day is free.
func (r *Repository) FindConflict(ctx context.Context, castID uuid.UUID, day time.Time, exclude []uuid.UUID) (*Booking, error) {
	if exclude == nil {
		exclude = []uuid.UUID{}
	}
	row := r.pool.QueryRow(ctx, conflictQuery, castID, day, statusStrings(domain.ActiveStatuses()), exclude)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return &b, nil
}

// ApplyCorrelation writes thread, permalink, hold and attachment identifiers
// for every booking of an order in one transaction.
func (r *Repository) ApplyCorrelation(ctx context.Context, updates []Correlation) error {
	if len(updates) == 0 {
		return nil
	}
	return r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(correlationUpdateQuery, u.BookingID, u.ThreadTS, u.Permalink, u.CalendarEventID, u.AttachmentKey)
		}
		return sendBatch(ctx, tx, batch, "write back order identifiers")
	})
}

// UpdateStatus persists a status transition and, when given, the agreed cost
func (r *Repository) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	query := `
		UPDATE bookings SET
			status = $2,
			cost = COALESCE($3, cost),
			updated_by = $4,
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, u.BookingID, string(u.Status), u.Cost, u.ActorID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	return nil
}

// ClearCalendarEvent drops the stored hold id after the hold is removed
func (r *Repository) ClearCalendarEvent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE bookings SET calendar_event_id = '', updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear calendar hold: %w", err)
	}
	return nil
}

// HoldShared reports whether a live booking other than exclude still points
// at the calendar event.
func (r *Repository) HoldShared(ctx context.Context, eventID string, exclude uuid.UUID) (bool, error) {
	var shared bool
	err := r.pool.QueryRow(ctx, holdSharedQuery, eventID, exclude, statusStrings(domain.ActiveStatuses())).Scan(&shared)
	if err != nil {
		return false, fmt.Errorf("failed to check shared calendar hold: %w", err)
	}
	return shared, nil
}

// SoftDelete marks a booking deleted; rows are never removed
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	query := `
		UPDATE bookings SET
			status = 'deleted',
			calendar_event_id = '',
			deleted_at = now(),
			updated_by = $2,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, id, actorID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// UpdateFields persists edited schedule and project fields
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, u FieldUpdate) error {
	dates := u.ShootingDates
	if dates == nil {
		dates = []time.Time{}
	}
	query := `
		UPDATE bookings SET
			start_date = $2,
			end_date = $3,
			shooting_dates = $4,
			start_time = $5,
			end_time = $6,
			project_name = $7,
			updated_by = $8,
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, u.StartDate, u.EndDate, dates, u.StartTime, u.EndTime, u.ProjectName, u.ActorID)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(bookingNotFoundMsg)
	}
	return nil
}

// ListBookings returns bookings matching the filter, newest shoot first
func (r *Repository) ListBookings(ctx context.Context, f BookingFilter) ([]Booking, error) {
	where, args := bookingFilterClause(f)
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	args = append(args, limit)
	query := fmt.Sprintf(`SELECT %s FROM bookings %s ORDER BY start_date DESC, rank ASC LIMIT $%d`, bookingColumns, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return collectBookings(rows)
}

func bookingFilterClause(f BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.ProjectID != "" {
		add("project_id = $%d", f.ProjectID)
	}
	if f.CastID != nil {
		add("cast_id = $%d", *f.CastID)
	}
	if f.Status != nil {
		add("status = $%d", string(*f.Status))
	}
	if f.From != nil {
		add("end_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("start_date <= $%d", *f.To)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// ListActiveForCast returns the cast's live bookings overlapping [from, to]
func (r *Repository) ListActiveForCast(ctx context.Context, castID uuid.UUID, from, to time.Time) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE cast_id = $1 AND start_date <= $3 AND end_date >= $2
			AND status = ANY($4) AND deleted_at IS NULL
		ORDER BY start_date ASC`

	rows, err := r.pool.Query(ctx, query, castID, from, to, statusStrings(domain.ActiveStatuses()))
	if err != nil {
		return nil, fmt.Errorf("failed to list cast bookings: %w", err)
	}
	return collectBookings(rows)
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
