package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const castColumns = `id, name, furigana, cast_type, agency, email, slack_mention_id, notes, created_at, updated_at`

func scanCast(row pgx.Row) (Cast, error) {
	var c Cast
	err := row.Scan(&c.ID, &c.Name, &c.Furigana, &c.CastType, &c.Agency, &c.Email, &c.SlackMentionID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetCast retrieves a roster entry by ID
func (r *Repository) GetCast(ctx context.Context, id uuid.UUID) (Cast, error) {
	c, err := scanCast(r.pool.QueryRow(ctx, `SELECT `+castColumns+` FROM casts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cast{}, apperr.NotFound(castNotFoundMsg)
		}
		return Cast{}, fmt.Errorf("failed to get cast: %w", err)
	}
	return c, nil
}

// GetCastsByIDs loads several roster entries at once, keyed by ID. Missing
// IDs are simply absent from the result.
func (r *Repository) GetCastsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Cast, error) {
	out := make(map[uuid.UUID]Cast, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+castColumns+` FROM casts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get casts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCast(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cast: %w", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate casts: %w", err)
	}
	return out, nil
}

// ListCasts returns the roster ordered by name, optionally filtered by category
func (r *Repository) ListCasts(ctx context.Context, castType *domain.CastType) ([]Cast, error) {
	query := `SELECT ` + castColumns + ` FROM casts`
	var args []any
	if castType != nil {
		query += ` WHERE cast_type = $1`
		args = append(args, string(*castType))
	}
	query += ` ORDER BY furigana, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list casts: %w", err)
	}
	defer rows.Close()

	var out []Cast
	for rows.Next() {
		c, err := scanCast(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cast: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate casts: %w", err)
	}
	return out, nil
}

// UpsertCast inserts or replaces a roster entry
func (r *Repository) UpsertCast(ctx context.Context, c Cast) (Cast, error) {
	query := `
		INSERT INTO casts (id, name, furigana, cast_type, agency, email, slack_mention_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			furigana = EXCLUDED.furigana,
			cast_type = EXCLUDED.cast_type,
			agency = EXCLUDED.agency,
			email = EXCLUDED.email,
			slack_mention_id = EXCLUDED.slack_mention_id,
			notes = EXCLUDED.notes,
			updated_at = now()
		RETURNING ` + castColumns

	out, err := scanCast(r.pool.QueryRow(ctx, query,
		c.ID, c.Name, c.Furigana, string(c.CastType), c.Agency, c.Email, c.SlackMentionID, c.Notes))
	if err != nil {
		return Cast{}, fmt.Errorf("failed to upsert cast: %w", err)
	}
	return out, nil
}

// FindCastByHandle resolves a name or email to a roster entry, used for CC
// mentions. Returns nil when nothing matches.
func (r *Repository) FindCastByHandle(ctx context.Context, handle string) (*Cast, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, nil
	}
	query := `SELECT ` + castColumns + ` FROM casts
		WHERE name = $1 OR lower(email) = lower($1)
		ORDER BY (slack_mention_id <> '') DESC, created_at ASC
		LIMIT 1`

	c, err := scanCast(r.pool.QueryRow(ctx, query, handle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find cast: %w", err)
	}
	return &c, nil
}
