package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DriveLink is the shared folder of a project's making footage
type DriveLink struct {
	PageKey     string
	ProjectName string
	FolderURL   string
	UpdatedAt   time.Time
}

// ShootDetail is one cast's logistics for a shoot, keyed by page and name
type ShootDetail struct {
	ID             uuid.UUID
	PageKey        string
	ProjectName    string
	CastName       string
	NormalizedName string
	InTime         string
	OutTime        string
	Location       string
	Address        string
	UpdatedAt      time.Time
}

// ContactTarget is the slice of a contact record the sync jobs read and fill
type ContactTarget struct {
	ID          uuid.UUID
	CastName    string
	ProjectName string
	InTime      string
	OutTime     string
	Location    string
	Address     string
	MakingURL   string
}

// MakingURLFill sets the making URL of a contact that has none
type MakingURLFill struct {
	ContactID uuid.UUID
	URL       string
}

// DetailFill copies shoot logistics onto a contact. Empty values are skipped.
type DetailFill struct {
	ContactID uuid.UUID
	InTime    string
	OutTime   string
	Location  string
	Address   string
}

// Repository provides database operations for the reconciliation sources and
// the contact records they feed
type Repository struct {
	pool *pgxpool.Pool
}

var errContactNotFound = apperr.NotFound("contact record not found")

// New creates a new reconcile repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const (
	upsertDriveLinkQuery = `
	INSERT INTO drive_links (page_key, project_name, folder_url, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (page_key) DO UPDATE
	SET project_name = EXCLUDED.project_name, folder_url = EXCLUDED.folder_url, updated_at = now()`

	upsertShootDetailQuery = `
	INSERT INTO shoot_details (id, page_key, project_name, cast_name, normalized_name, in_time, out_time, location, address, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (page_key, normalized_name) DO UPDATE
	SET project_name = EXCLUDED.project_name, cast_name = EXCLUDED.cast_name,
		in_time = EXCLUDED.in_time, out_time = EXCLUDED.out_time,
		location = EXCLUDED.location, address = EXCLUDED.address, updated_at = now()`

	shootDetailColumns = `id, page_key, project_name, cast_name, normalized_name, in_time, out_time, location, address, updated_at`

	contactTargetColumns = `c.id, c.cast_name, c.project_name, c.in_time, c.out_time, c.location, c.address, c.making_url`

	// Contacts are tied to a page through the booking they were created from.
	contactsForPageQuery = `
	SELECT ` + contactTargetColumns + `
	FROM contact_records c
	JOIN bookings b ON b.id = c.booking_id
	WHERE b.project_id = $1
		AND ($2::text IS NULL OR c.project_name = $2)
		AND ($3::uuid IS NULL OR c.id = $3)`

	fillMakingURLQuery = `
	UPDATE contact_records SET making_url = $2, updated_at = now()
	WHERE id = $1 AND making_url = ''`

	fillDetailsQuery = `
	UPDATE contact_records SET
		in_time = CASE WHEN in_time = '' THEN $2 ELSE in_time END,
		out_time = CASE WHEN out_time = '' THEN $3 ELSE out_time END,
		location = CASE WHEN location = '' THEN $4 ELSE location END,
		address = CASE WHEN address = '' THEN $5 ELSE address END,
		updated_at = now()
	WHERE id = $1`

	applyDetailsQuery = `
	UPDATE contact_records SET
		in_time = COALESCE(NULLIF($2, ''), in_time),
		out_time = COALESCE(NULLIF($3, ''), out_time),
		location = COALESCE(NULLIF($4, ''), location),
		address = COALESCE(NULLIF($5, ''), address),
		updated_at = now()
	WHERE id = $1`
)

// GetDriveLink returns the link for a page key, or nil when there is none.
func (r *Repository) GetDriveLink(ctx context.Context, pageKey string) (*DriveLink, error) {
	var l DriveLink
	err := r.pool.QueryRow(ctx,
		`SELECT page_key, project_name, folder_url, updated_at FROM drive_links WHERE page_key = $1`, pageKey,
	).Scan(&l.PageKey, &l.ProjectName, &l.FolderURL, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drive link: %w", err)
	}
	return &l, nil
}

// ListDriveLinks returns every drive link, optionally narrowed by project name.
func (r *Repository) ListDriveLinks(ctx context.Context, projectName *string) ([]DriveLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT page_key, project_name, folder_url, updated_at FROM drive_links
		WHERE ($1::text IS NULL OR project_name = $1)
		ORDER BY page_key`, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to list drive links: %w", err)
	}
	defer rows.Close()

	var out []DriveLink
	for rows.Next() {
		var l DriveLink
		if err := rows.Scan(&l.PageKey, &l.ProjectName, &l.FolderURL, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan drive link: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// UpsertDriveLinks writes the links in one transaction.
func (r *Repository) UpsertDriveLinks(ctx context.Context, links []DriveLink) error {
	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(upsertDriveLinkQuery, l.PageKey, l.ProjectName, l.FolderURL)
	}
	return r.execBatch(ctx, batch, "upsert drive links")
}

// UpsertShootDetails writes the details in one transaction.
func (r *Repository) UpsertShootDetails(ctx context.Context, details []ShootDetail) error {
	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(upsertShootDetailQuery,
			d.ID, d.PageKey, d.ProjectName, d.CastName, d.NormalizedName, d.InTime, d.OutTime, d.Location, d.Address)
	}
	return r.execBatch(ctx, batch, "upsert shoot details")
}

// ShootDetailKeys returns the distinct page keys that have shoot details,
// optionally narrowed by project name.
func (r *Repository) ShootDetailKeys(ctx context.Context, projectName *string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT page_key FROM shoot_details
		WHERE ($1::text IS NULL OR project_name = $1)
		ORDER BY page_key`, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to list shoot detail keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan shoot detail key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// FindShootDetails searches by page key and/or normalized cast name.
func (r *Repository) FindShootDetails(ctx context.Context, pageKey, normalizedName *string) ([]ShootDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+shootDetailColumns+` FROM shoot_details
		WHERE ($1::text IS NULL OR page_key = $1)
			AND ($2::text IS NULL OR normalized_name = $2)
		ORDER BY updated_at DESC`, pageKey, normalizedName)
	if err != nil {
		return nil, fmt.Errorf("failed to find shoot details: %w", err)
	}
	defer rows.Close()

	var out []ShootDetail
	for rows.Next() {
		var d ShootDetail
		if err := rows.Scan(&d.ID, &d.PageKey, &d.ProjectName, &d.CastName, &d.NormalizedName,
			&d.InTime, &d.OutTime, &d.Location, &d.Address, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shoot detail: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ContactsForPage returns the contact records whose source booking points at
// the page, optionally narrowed by project name or a single contact.
func (r *Repository) ContactsForPage(ctx context.Context, pageKey string, projectName *string, contactID *uuid.UUID) ([]ContactTarget, error) {
	rows, err := r.pool.Query(ctx, contactsForPageQuery, pageKey, projectName, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts for page: %w", err)
	}
	defer rows.Close()

	var out []ContactTarget
	for rows.Next() {
		var c ContactTarget
		if err := rows.Scan(&c.ID, &c.CastName, &c.ProjectName, &c.InTime, &c.OutTime, &c.Location, &c.Address, &c.MakingURL); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FillMakingURLs sets the making URL on contacts that still have none.
func (r *Repository) FillMakingURLs(ctx context.Context, fills []MakingURLFill) error {
	batch := &pgx.Batch{}
	for _, f := range fills {
		batch.Queue(fillMakingURLQuery, f.ContactID, f.URL)
	}
	return r.execBatch(ctx, batch, "fill making urls")
}

// FillDetails copies shoot logistics into empty contact fields only.
func (r *Repository) FillDetails(ctx context.Context, fills []DetailFill) error {
	batch := &pgx.Batch{}
	for _, f := range fills {
		batch.Queue(fillDetailsQuery, f.ContactID, f.InTime, f.OutTime, f.Location, f.Address)
	}
	return r.execBatch(ctx, batch, "fill shoot details")
}

// ApplyDetails overwrites a contact's logistics with the non-empty values.
func (r *Repository) ApplyDetails(ctx context.Context, f DetailFill) error {
	result, err := r.pool.Exec(ctx, applyDetailsQuery, f.ContactID, f.InTime, f.OutTime, f.Location, f.Address)
	if err != nil {
		return fmt.Errorf("failed to apply shoot details: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errContactNotFound
	}
	return nil
}

func (r *Repository) execBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	if batch.Len() == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

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
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
