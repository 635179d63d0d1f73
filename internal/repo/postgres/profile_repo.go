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
	defaultProfilePageSize = 20
	maxProfilePageSize     = 50
	maxExportRows          = 1000
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

// ProfileTransition describes one status change. Empty strings and nil times leave
// the stored value untouched.
type ProfileTransition struct {
	ID               string
	From             []enums.ProfileStatus
	To               enums.ProfileStatus
	SubmittedAt      *time.Time
	ApprovedBy       string
	ApprovalDate     *time.Time
	RejectionReason  string
	ChangeRequests   string
	// ClearReviewNotes empties rejection_reason and change_requests unless new values are given.
	ClearReviewNotes bool
	DeletedAt        *time.Time
	Now              time.Time
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

const profileColumns = `id, user_id, user_email, full_name, gender, date_of_birth, height,
	marital_status, education, occupation, income, religion, caste, gotra, location,
	about, looking_for, phone, preferred_contact_time, photos, spotlight, status,
	submitted_at, approved_by, approval_date, rejection_reason, change_requests,
	deleted_at, created_at, updated_at`

func (r *ProfileRepo) Create(ctx context.Context, p model.Profile) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.UserID) == "" {
		return model.Profile{}, fmt.Errorf("invalid profile payload")
	}
	if p.Photos == nil {
		p.Photos = []model.ProfilePhoto{}
	}

	created, err := scanProfile(r.pool.QueryRow(ctx, `
INSERT INTO matrimony_profiles (
	id, user_id, user_email, full_name, gender, date_of_birth, height, marital_status,
	education, occupation, income, religion, caste, gotra, location, about, looking_for,
	phone, preferred_contact_time, photos, status, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
	$18, $19, $20, $21, $22, $22
)
RETURNING `+profileColumns,
		p.ID, p.UserID, p.UserEmail, p.FullName, p.Gender, p.DateOfBirth, p.Height, p.MaritalStatus,
		p.Education, p.Occupation, p.Income, p.Religion, p.Caste, p.Gotra, p.Location, p.About, p.LookingFor,
		p.Phone, p.PreferredContactTime, p.Photos, string(p.Status), p.CreatedAt.UTC(),
	))
	if err != nil {
		if isUniqueViolation(err, "matrimony_profiles_owner_key") {
			return model.Profile{}, ErrProfileExists
		}
		return model.Profile{}, fmt.Errorf("create matrimony profile: %w", err)
	}
	return created, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM matrimony_profiles
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get matrimony profile: %w", err)
	}
	return p, nil
}

func (r *ProfileRepo) GetByOwner(ctx context.Context, userID string) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
SELECT `+profileColumns+`
FROM matrimony_profiles
WHERE user_id = $1 AND status <> 'deleted'
ORDER BY created_at DESC
LIMIT 1
`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get matrimony profile by owner: %w", err)
	}
	return p, nil
}

// UpdateFields rewrites the owner-editable fields while the profile is in one of allowed.
func (r *ProfileRepo) UpdateFields(ctx context.Context, id, ownerID string, f model.ProfileFields, allowed []enums.ProfileStatus, now time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE matrimony_profiles SET
	full_name = $4,
	gender = $5,
	date_of_birth = $6,
	height = $7,
	marital_status = $8,
	education = $9,
	occupation = $10,
	income = $11,
	religion = $12,
	caste = $13,
	gotra = $14,
	location = $15,
	about = $16,
	looking_for = $17,
	phone = $18,
	preferred_contact_time = $19,
	updated_at = $20
WHERE id = $1 AND user_id = $2 AND status = ANY($3)
RETURNING `+profileColumns,
		id, ownerID, enums.StatusStrings(allowed),
		f.FullName, f.Gender, f.DateOfBirth, f.Height, f.MaritalStatus, f.Education, f.Occupation,
		f.Income, f.Religion, f.Caste, f.Gotra, f.Location, f.About, f.LookingFor, f.Phone,
		f.PreferredContactTime, now.UTC(),
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("update matrimony profile: %w", err)
	}
	return model.Profile{}, r.explainMiss(ctx, id, ownerID)
}

// Transition moves a profile to t.To only while its status is still one of t.From.
func (r *ProfileRepo) Transition(ctx context.Context, t ProfileTransition) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(t.ID) == "" || len(t.From) == 0 || !t.To.Valid() {
		return model.Profile{}, fmt.Errorf("invalid profile transition")
	}

	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE matrimony_profiles SET
	status = $3,
	submitted_at = COALESCE($4, submitted_at),
	approved_by = CASE WHEN $5::text <> '' THEN $5::text ELSE approved_by END,
	approval_date = COALESCE($6, approval_date),
	rejection_reason = CASE WHEN $7::text <> '' THEN $7::text WHEN $11 THEN '' ELSE rejection_reason END,
	change_requests = CASE WHEN $8::text <> '' THEN $8::text WHEN $11 THEN '' ELSE change_requests END,
	deleted_at = COALESCE($9, deleted_at),
	updated_at = $10
WHERE id = $1 AND status = ANY($2)
RETURNING `+profileColumns,
		t.ID, enums.StatusStrings(t.From), string(t.To), utcPtr(t.SubmittedAt), t.ApprovedBy,
		utcPtr(t.ApprovalDate), t.RejectionReason, t.ChangeRequests, utcPtr(t.DeletedAt), t.Now.UTC(),
		t.ClearReviewNotes,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("transition matrimony profile: %w", err)
	}
	return model.Profile{}, r.explainMiss(ctx, t.ID, "")
}

func (r *ProfileRepo) SetSpotlight(ctx context.Context, id string, enabled bool, now time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE matrimony_profiles SET spotlight = $2, updated_at = $3
WHERE id = $1 AND status = 'approved'
RETURNING `+profileColumns, id, enabled, now.UTC()))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("set profile spotlight: %w", err)
	}
	return model.Profile{}, r.explainMiss(ctx, id, "")
}

// AppendPhoto adds photo unless the profile already holds maxPhotos.
func (r *ProfileRepo) AppendPhoto(ctx context.Context, id, ownerID string, photo model.ProfilePhoto, allowed []enums.ProfileStatus, maxPhotos int, now time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE matrimony_profiles SET
	photos = photos || jsonb_build_array($4::jsonb),
	updated_at = $6
WHERE id = $1 AND user_id = $2 AND status = ANY($3) AND jsonb_array_length(photos) < $5
RETURNING `+profileColumns,
		id, ownerID, enums.StatusStrings(allowed), photo, maxPhotos, now.UTC(),
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("append profile photo: %w", err)
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return model.Profile{}, getErr
	}
	if current.UserID != ownerID {
		return model.Profile{}, ErrProfileNotFound
	}
	if len(current.Photos) >= maxPhotos {
		return model.Profile{}, ErrPhotoLimitReached
	}
	return model.Profile{}, ErrProfileStatusConflict
}

func (r *ProfileRepo) RemovePhoto(ctx context.Context, id, ownerID, objectKey string, now time.Time) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, ErrPoolUnavailable
	}
	p, err := scanProfile(r.pool.QueryRow(ctx, `
UPDATE matrimony_profiles SET
	photos = COALESCE((
		SELECT jsonb_agg(elem ORDER BY ord)
		FROM jsonb_array_elements(photos) WITH ORDINALITY AS t(elem, ord)
		WHERE elem->>'object_key' <> $3
	), '[]'::jsonb),
	updated_at = $4
WHERE id = $1 AND user_id = $2 AND status <> 'deleted'
RETURNING `+profileColumns, id, ownerID, objectKey, now.UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("remove profile photo: %w", err)
	}
	return p, nil
}

// Search lists approved profiles only.
func (r *ProfileRepo) Search(ctx context.Context, f model.ProfileSearchFilter, now time.Time) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}

	conds := []string{"status = 'approved'"}
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if g := strings.TrimSpace(f.Gender); g != "" {
		add("LOWER(gender) = LOWER($%d)", g)
	}
	if f.AgeMin > 0 {
		add("date_of_birth <= $%d", now.UTC().AddDate(-f.AgeMin, 0, 0))
	}
	if f.AgeMax > 0 {
		add("date_of_birth > $%d", now.UTC().AddDate(-(f.AgeMax + 1), 0, 0))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		add("location ILIKE $%d", "%"+escapeLike(loc)+"%")
	}
	if edu := strings.TrimSpace(f.Education); edu != "" {
		add("education ILIKE $%d", "%"+escapeLike(edu)+"%")
	}
	if f.SpotlightOnly {
		conds = append(conds, "spotlight")
	}

	limit, offset := pageBounds(f.Limit, f.Offset, defaultProfilePageSize, maxProfilePageSize)
	args = append(args, limit, offset)

	query := `SELECT ` + profileColumns + `
FROM matrimony_profiles
WHERE ` + strings.Join(conds, " AND ") + fmt.Sprintf(`
ORDER BY created_at DESC, id DESC
LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.queryMany(ctx, "search matrimony profiles", query, args...)
}

func (r *ProfileRepo) ListByStatus(ctx context.Context, f model.AdminProfileFilter) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = enums.ReviewableStatuses()
	}
	limit, offset := pageBounds(f.Limit, f.Offset, defaultProfilePageSize, maxExportRows)

	return r.queryMany(ctx, "list matrimony profiles by status", `
SELECT `+profileColumns+`
FROM matrimony_profiles
WHERE status = ANY($1)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, enums.StatusStrings(statuses), limit, offset)
}

// ListDeletedWithPhotos returns soft-deleted profiles older than cutoff that still reference objects.
func (r *ProfileRepo) ListDeletedWithPhotos(ctx context.Context, cutoff time.Time, limit int) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, ErrPoolUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	return r.queryMany(ctx, "list deleted profiles with photos", `
SELECT `+profileColumns+`
FROM matrimony_profiles
WHERE status = 'deleted'
  AND deleted_at IS NOT NULL AND deleted_at < $1
  AND jsonb_array_length(photos) > 0
ORDER BY deleted_at ASC
LIMIT $2
`, cutoff.UTC(), limit)
}

func (r *ProfileRepo) ClearPhotos(ctx context.Context, id string, now time.Time) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	if _, err := r.pool.Exec(ctx, `
UPDATE matrimony_profiles SET photos = '[]'::jsonb, updated_at = $2 WHERE id = $1
`, id, now.UTC()); err != nil {
		return fmt.Errorf("clear profile photos: %w", err)
	}
	return nil
}

func (r *ProfileRepo) queryMany(ctx context.Context, op, query string, args ...any) ([]model.Profile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
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

// explainMiss tells a missing profile apart from one whose status no longer matches.
func (r *ProfileRepo) explainMiss(ctx context.Context, id, ownerID string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ownerID != "" && current.UserID != ownerID {
		return ErrProfileNotFound
	}
	if current.Status == enums.ProfileStatusDeleted {
		return ErrProfileNotFound
	}
	return ErrProfileStatusConflict
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p      model.Profile
		status string
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.UserEmail,
		&p.FullName,
		&p.Gender,
		&p.DateOfBirth,
		&p.Height,
		&p.MaritalStatus,
		&p.Education,
		&p.Occupation,
		&p.Income,
		&p.Religion,
		&p.Caste,
		&p.Gotra,
		&p.Location,
		&p.About,
		&p.LookingFor,
		&p.Phone,
		&p.PreferredContactTime,
		&p.Photos,
		&p.Spotlight,
		&status,
		&p.SubmittedAt,
		&p.ApprovedBy,
		&p.ApprovalDate,
		&p.RejectionReason,
		&p.ChangeRequests,
		&p.DeletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Profile{}, err
	}
	p.Status = enums.ProfileStatus(status)
	if p.Photos == nil {
		p.Photos = []model.ProfilePhoto{}
	}
	return p, nil
}

func pageBounds(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func escapeLike(v string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(v)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
