package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contact represents the contact_records database model
type Contact struct {
	ID               uuid.UUID
	BookingID        uuid.UUID
	CastID           uuid.UUID
	CastName         string
	CastType         string
	AccountName      string
	ProjectName      string
	RoleName         string
	Tier             string
	ShootDate        time.Time
	InTime           string
	OutTime          string
	Location         string
	Address          string
	Fee              *int64
	MakingURL        string
	PostDate         *time.Time
	OrderDocumentKey string
	ThreadTS         string
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter narrows ListContacts
type Filter struct {
	Status      *string
	ProjectName *string
}

// Patch is a partial update; nil fields are left untouched
type Patch struct {
	Status    *string
	InTime    *string
	OutTime   *string
	Location  *string
	Address   *string
	Fee       *int64
	MakingURL *string
	PostDate  *time.Time
}

// Repository provides database operations for contact records
type Repository struct {
	pool *pgxpool.Pool
}

const contactNotFoundMsg = "contact record not found"

const contactColumns = `
	id, booking_id, cast_id, cast_name, cast_type, account_name, project_name, role_name, tier,
	shoot_date, in_time, out_time, location, address, fee, making_url, post_date,
	order_document_key, thread_ts, status, created_at, updated_at`

const insertContactQuery = `
	INSERT INTO contact_records (
		id, booking_id, cast_id, cast_name, cast_type, account_name, project_name, role_name, tier,
		shoot_date, thread_ts, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
	ON CONFLICT (booking_id) DO NOTHING`

const contactForBookingQuery = `SELECT id FROM contact_records WHERE booking_id = $1`

const renameContactsQuery = `
	UPDATE contact_records SET project_name = $3, updated_at = now()
	WHERE cast_id = $1 AND project_name = $2`

// New creates a new contacts repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByBooking returns the id of the record derived from the booking, if any.
func (r *Repository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, contactForBookingQuery, bookingID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, false, nil
	}
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("failed to look up contact record: %w", err)
	}
	return id, true, nil
}

// Create inserts the record unless one already exists for its booking; the
// unique constraint on booking_id settles races between concurrent callers.
func (r *Repository) Create(ctx context.Context, c Contact) (bool, error) {
	result, err := r.pool.Exec(ctx, insertContactQuery,
		c.ID, c.BookingID, c.CastID, c.CastName, c.CastType, c.AccountName, c.ProjectName, c.RoleName, c.Tier,
		c.ShootDate, c.ThreadTS, c.Status,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create contact record: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// GetByID retrieves a contact record
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contact_records WHERE id = $1`, id)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, apperr.NotFound(contactNotFoundMsg)
	}
	if err != nil {
		return Contact{}, fmt.Errorf("failed to get contact record: %w", err)
	}
	return c, nil
}

// List returns contact records ordered by shoot date
func (r *Repository) List(ctx context.Context, f Filter) ([]Contact, error) {
	where, args := filterClause(f)
	rows, err := r.pool.Query(ctx, `SELECT `+contactColumns+` FROM contact_records`+where+` ORDER BY shoot_date DESC, created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact records: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact record: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list contact records: %w", err)
	}
	return out, nil
}

// Update applies a partial update and returns the stored record.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p Patch) (Contact, error) {
	set, args := patchClause(p)
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contact_records SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), contactColumns)

	c, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, apperr.NotFound(contactNotFoundMsg)
	}
	if err != nil {
		return Contact{}, fmt.Errorf("failed to update contact record: %w", err)
	}
	return c, nil
}

// SetOrderDocument stores the object key of the purchase-order document.
func (r *Repository) SetOrderDocument(ctx context.Context, id uuid.UUID, key string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE contact_records SET order_document_key = $2, updated_at = now() WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to set order document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMsg)
	}
	return nil
}

// RenameProject moves the cast's records from the old project name to the new one.
func (r *Repository) RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error) {
	result, err := r.pool.Exec(ctx, renameContactsQuery, castID, oldName, newName)
	if err != nil {
		return 0, fmt.Errorf("failed to rename contact records project: %w", err)
	}
	return result.RowsAffected(), nil
}

func filterClause(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.ProjectName != nil {
		args = append(args, *f.ProjectName)
		conds = append(conds, fmt.Sprintf("project_name = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func patchClause(p Patch) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.InTime != nil {
		add("in_time", *p.InTime)
	}
	if p.OutTime != nil {
		add("out_time", *p.OutTime)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Fee != nil {
		add("fee", *p.Fee)
	}
	if p.MakingURL != nil {
		add("making_url", *p.MakingURL)
	}
	if p.PostDate != nil {
		add("post_date", *p.PostDate)
	}
	return set, args
}

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID, &c.BookingID, &c.CastID, &c.CastName, &c.CastType, &c.AccountName, &c.ProjectName, &c.RoleName, &c.Tier,
		&c.ShootDate, &c.InTime, &c.OutTime, &c.Location, &c.Address, &c.Fee, &c.MakingURL, &c.PostDate,
		&c.OrderDocumentKey, &c.ThreadTS, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
