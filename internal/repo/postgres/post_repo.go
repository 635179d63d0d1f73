package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
)

const (
	defaultPostPageSize = 20
	maxPostPageSize     = 100
	maxActivePosts      = 200
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

const postColumns = `id, title, content, type, priority, visibility, status, is_pinned, images,
	attachments, video_url, scheduled_at, expires_at, created_by, created_at, updated_at`

func (r *PostRepo) Create(ctx context.Context, p model.Post) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(p.ID) == "" {
		return model.Post{}, fmt.Errorf("invalid post payload")
	}
	created, err := scanPost(r.pool.QueryRow(ctx, `
INSERT INTO posts (
	id, title, content, type, priority, visibility, status, is_pinned, images, attachments,
	video_url, scheduled_at, expires_at, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
RETURNING `+postColumns,
		p.ID, p.Title, p.Content, string(p.Type), string(p.Priority), string(p.Visibility), string(p.Status),
		p.IsPinned, nonNilStrings(p.Images), nonNilStrings(p.Attachments), p.VideoURL,
		utcPtr(p.ScheduledAt), utcPtr(p.ExpiresAt), p.CreatedBy, p.CreatedAt.UTC(),
	))
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update replaces the editable fields of a post that is not archived.
func (r *PostRepo) Update(ctx context.Context, p model.Post) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, ErrPoolUnavailable
	}
	updated, err := scanPost(r.pool.QueryRow(ctx, `
UPDATE posts SET
	title = $2,
	content = $3,
	type = $4,
	priority = $5,
	visibility = $6,
	status = $7,
	is_pinned = $8,
	images = $9,
	attachments = $10,
	video_url = $11,
	scheduled_at = $12,
	expires_at = $13,
	updated_at = $14
WHERE id = $1
RETURNING `+postColumns,
		p.ID, p.Title, p.Content, string(p.Type), string(p.Priority), string(p.Visibility), string(p.Status),
		p.IsPinned, nonNilStrings(p.Images), nonNilStrings(p.Attachments), p.VideoURL,
		utcPtr(p.ScheduledAt), utcPtr(p.ExpiresAt), p.UpdatedAt.UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("update post: %w", err)
	}
	return updated, nil
}

func (r *PostRepo) Archive(ctx context.Context, id string, now time.Time) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, ErrPoolUnavailable
	}
	archived, err := scanPost(r.pool.QueryRow(ctx, `
UPDATE posts SET status = 'archived', updated_at = $2
WHERE id = $1
RETURNING `+postColumns, id, now.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("archive post: %w", err)
	}
	return archived, nil
}

func (r *PostRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, ErrPoolUnavailable
	}
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *PostRepo) List(ctx context.Context, f model.PostFilter) ([]model.Post, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	conds := []string{"TRUE"}
	args := []any{}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("type", string(f.Type))
	add("status", string(f.Status))
	add("priority", string(f.Priority))

	limit, offset := pageBounds(f.Limit, f.Offset, defaultPostPageSize, maxPostPageSize)
	args = append(args, limit, offset)

	return r.queryMany(ctx, "list posts", `SELECT `+postColumns+`
FROM posts
WHERE `+strings.Join(conds, " AND ")+fmt.Sprintf(`
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
}

// ListPublished returns published posts whose schedule and expiry windows contain now.
// Visibility is left to the caller.
func (r *PostRepo) ListPublished(ctx context.Context, now time.Time) ([]model.Post, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	return r.queryMany(ctx, "list published posts", `
SELECT `+postColumns+`
FROM posts
WHERE status = 'published'
  AND (scheduled_at IS NULL OR scheduled_at <= $1)
  AND (expires_at IS NULL OR expires_at > $1)
ORDER BY created_at DESC
LIMIT $2
`, now.UTC(), maxActivePosts)
}

func (r *PostRepo) SetRead(ctx context.Context, userID, postID string, read bool, now time.Time) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if _, err := r.pool.Exec(ctx, `
INSERT INTO post_reads (user_id, post_id, read, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id, post_id) DO UPDATE SET
	read = EXCLUDED.read,
	updated_at = EXCLUDED.updated_at
`, userID, postID, read, now.UTC()); err != nil {
		if isForeignKeyViolation(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("set post read status: %w", err)
	}
	return nil
}

func (r *PostRepo) ReadStatus(ctx context.Context, userID string) (map[string]bool, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	rows, err := r.pool.Query(ctx, `SELECT post_id, read FROM post_reads WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list post read status: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var (
			postID string
			read   bool
		)
		if err := rows.Scan(&postID, &read); err != nil {
			return nil, fmt.Errorf("scan post read status: %w", err)
		}
		out[postID] = read
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post read status: %w", err)
	}
	return out, nil
}

func (r *PostRepo) queryMany(ctx context.Context, op, query string, args ...any) ([]model.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

func scanPost(row pgx.Row) (model.Post, error) {
	var p model.Post
	var postType, priority, vis, status string
	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&postType,
		&priority,
		&vis,
		&status,
		&p.IsPinned,
		&p.Images,
		&p.Attachments,
		&p.VideoURL,
		&p.ScheduledAt,
		&p.ExpiresAt,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Post{}, err
	}
	p.Type = enums.PostType(postType)
	p.Priority = enums.PostPriority(priority)
	p.Visibility = enums.PostVisibility(vis)
	p.Status = enums.PostStatus(status)
	p.Images = nonNilStrings(p.Images)
	p.Attachments = nonNilStrings(p.Attachments)
	return p, nil
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
