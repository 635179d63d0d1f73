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

type CMSRepo struct {
	pool *pgxpool.Pool
}

func NewCMSRepo(pool *pgxpool.Pool) *CMSRepo {
	return &CMSRepo{pool: pool}
}

func (r *CMSRepo) Get(ctx context.Context, contentType string) (model.CMSContent, error) {
	if r.pool == nil {
		return model.CMSContent{}, ErrPoolUnavailable
	}
	c, err := scanCMS(r.pool.QueryRow(ctx, `
SELECT type, title, content, version, updated_by, updated_at
FROM cms_content
WHERE type = $1
`, contentType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CMSContent{}, ErrCMSNotFound
		}
		return model.CMSContent{}, fmt.Errorf("get cms content: %w", err)
	}
	return c, nil
}

func (r *CMSRepo) List(ctx context.Context) ([]model.CMSContent, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	rows, err := r.pool.Query(ctx, `
SELECT type, title, content, version, updated_by, updated_at
FROM cms_content
ORDER BY type ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list cms content: %w", err)
	}
	defer rows.Close()

	out := make([]model.CMSContent, 0)
	for rows.Next() {
		c, err := scanCMS(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cms content: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cms content: %w", err)
	}
	return out, nil
}

// Upsert stores content for its type and bumps the version on every write.
func (r *CMSRepo) Upsert(ctx context.Context, c model.CMSContent, now time.Time) (model.CMSContent, error) {
	if r.pool == nil {
		return model.CMSContent{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(c.Type) == "" {
		return model.CMSContent{}, fmt.Errorf("invalid cms payload")
	}
	content := []byte(c.Content)
	if len(content) == 0 {
		content = []byte("{}")
	}
	saved, err := scanCMS(r.pool.QueryRow(ctx, `
INSERT INTO cms_content (type, title, content, version, updated_by, updated_at)
VALUES ($1, $2, $3::jsonb, 1, $4, $5)
ON CONFLICT (type) DO UPDATE SET
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	version = cms_content.version + 1,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING type, title, content, version, updated_by, updated_at
`, c.Type, c.Title, string(content), c.UpdatedBy, now.UTC()))
	if err != nil {
		return model.CMSContent{}, fmt.Errorf("upsert cms content: %w", err)
	}
	return saved, nil
}

func scanCMS(row pgx.Row) (model.CMSContent, error) {
	var (
		c       model.CMSContent
		content []byte
	)
	if err := row.Scan(&c.Type, &c.Title, &content, &c.Version, &c.UpdatedBy, &c.UpdatedAt); err != nil {
		return model.CMSContent{}, err
	}
	c.Content = content
	return c, nil
}
