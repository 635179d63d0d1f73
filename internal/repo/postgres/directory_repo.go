package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type DirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{pool: pool}
}

const directoryColumns = `id, name, family, profession, location, phone, email, about, submitted_by,
	approved, approved_by, approved_at, is_deleted, created_at, updated_at`

func (r *DirectoryRepo) Create(ctx context.Context, e model.DirectoryEntry) (model.DirectoryEntry, error) {
	if r.pool == nil {
		return model.DirectoryEntry{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
		return model.DirectoryEntry{}, fmt.Errorf("invalid directory payload")
	}
	created, err := scanDirectoryEntry(r.pool.QueryRow(ctx, `
INSERT INTO directory (
	id, name, family, profession, location, phone, email, about, submitted_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
RETURNING `+directoryColumns,
		e.ID, e.Name, e.Family, e.Profession, e.Location, e.Phone, e.Email, e.About, e.SubmittedBy, e.CreatedAt.UTC(),
	))
	if err != nil {
		return model.DirectoryEntry{}, fmt.Errorf("create directory entry: %w", err)
	}
	return created, nil
}

func (r *DirectoryRepo) List(ctx context.Context, f model.DirectoryFilter) ([]model.DirectoryEntry, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	conds := []string{"NOT is_deleted"}
	args := []any{}
	if !f.IncludePending {
		conds = append(conds, "approved")
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		args = append(args, "%"+escapeLike(loc)+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	limit, offset := pageBounds(f.Limit, f.Offset, defaultProfilePageSize, maxExportRows)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, `SELECT `+directoryColumns+`
FROM directory
WHERE `+strings.Join(conds, " AND ")+fmt.Sprintf(`
ORDER BY name ASC, id ASC
LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, fmt.Errorf("list directory entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.DirectoryEntry, 0)
	for rows.Next() {
		e, err := scanDirectoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan directory entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate directory entries: %w", err)
	}
	return out, nil
}

func (r *DirectoryRepo) Approve(ctx context.Context, id, approvedBy string, now time.Time) (model.DirectoryEntry, error) {
	return r.mutate(ctx, "approve directory entry", `
UPDATE directory SET approved = TRUE, approved_by = $2, approved_at = $3, updated_at = $3
WHERE id = $1 AND NOT is_deleted
RETURNING `+directoryColumns, id, approvedBy, now.UTC())
}

func (r *DirectoryRepo) SoftDelete(ctx context.Context, id string, now time.Time) (model.DirectoryEntry, error) {
	return r.mutate(ctx, "delete directory entry", `
UPDATE directory SET is_deleted = TRUE, updated_at = $2
WHERE id = $1 AND NOT is_deleted
RETURNING `+directoryColumns, id, now.UTC())
}

func (r *DirectoryRepo) mutate(ctx context.Context, op, query string, args ...any) (model.DirectoryEntry, error) {
	if r.pool == nil {
		return model.DirectoryEntry{}, ErrPoolUnavailable
	}
	e, err := scanDirectoryEntry(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.DirectoryEntry{}, ErrDirectoryNotFound
		}
		return model.DirectoryEntry{}, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func scanDirectoryEntry(row pgx.Row) (model.DirectoryEntry, error) {
	var e model.DirectoryEntry
	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Family,
		&e.Profession,
		&e.Location,
		&e.Phone,
		&e.Email,
		&e.About,
		&e.SubmittedBy,
		&e.Approved,
		&e.ApprovedBy,
		&e.ApprovedAt,
		&e.IsDeleted,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return model.DirectoryEntry{}, err
	}
	return e, nil
}
