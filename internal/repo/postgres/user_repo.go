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

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, name, password_hash, provider, google_subject, role,
	onboarding_complete, totp_secret, totp_enabled, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrPoolUnavailable
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return model.User{}, fmt.Errorf("invalid user payload")
	}
	if user.Role == "" {
		user.Role = enums.RoleMember
	}

	created, err := scanUser(r.pool.QueryRow(ctx, `
INSERT INTO users (
	id, email, name, password_hash, provider, google_subject, role,
	onboarding_complete, created_at, updated_at
) VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, FALSE, $8, $8)
RETURNING `+userColumns,
		user.ID, strings.TrimSpace(user.Email), user.Name, user.PasswordHash, user.Provider,
		user.GoogleSubject, string(user.Role), user.CreatedAt.UTC(),
	))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") || isUniqueViolation(err, "users_google_subject_key") {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, "find user by id", `WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, "find user by email", `WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *UserRepo) GetByGoogleSubject(ctx context.Context, subject string) (model.User, error) {
	if strings.TrimSpace(subject) == "" {
		return model.User{}, ErrUserNotFound
	}
	return r.getOne(ctx, "find user by google subject", `WHERE google_subject = $1`, subject)
}

// LinkGoogle attaches a Google subject to an existing email account.
func (r *UserRepo) LinkGoogle(ctx context.Context, id, subject string, now time.Time) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE users SET google_subject = $2, updated_at = $3
WHERE id = $1 AND google_subject = ''
`, id, subject, now.UTC())
	if err != nil {
		return fmt.Errorf("link google subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) SetPasswordHash(ctx context.Context, id, hash string, now time.Time) error {
	return r.exec(ctx, "set password hash", `
UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
`, id, hash, now.UTC())
}

func (r *UserRepo) SetOnboardingComplete(ctx context.Context, id string, now time.Time) error {
	return r.exec(ctx, "set onboarding complete", `
UPDATE users SET onboarding_complete = TRUE, updated_at = $2 WHERE id = $1
`, id, now.UTC())
}

// SetRole changes role unless the target currently holds one of the protected roles.
func (r *UserRepo) SetRole(ctx context.Context, id string, role enums.Role, protected []enums.Role, now time.Time) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrPoolUnavailable
	}
	protectedRaw := make([]string, 0, len(protected))
	for _, p := range protected {
		protectedRaw = append(protectedRaw, string(p))
	}

	updated, err := scanUser(r.pool.QueryRow(ctx, `
UPDATE users SET role = $2, updated_at = $3
WHERE id = $1 AND NOT (role = ANY($4))
RETURNING `+userColumns, id, string(role), now.UTC(), protectedRaw))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("set user role: %w", err)
	}
	return updated, nil
}

func (r *UserRepo) SetTOTPSecret(ctx context.Context, id, secret string, now time.Time) error {
	return r.exec(ctx, "set totp secret", `
UPDATE users SET totp_secret = $2, totp_enabled = FALSE, updated_at = $3 WHERE id = $1
`, id, secret, now.UTC())
}

func (r *UserRepo) EnableTOTP(ctx context.Context, id string, now time.Time) error {
	return r.exec(ctx, "enable totp", `
UPDATE users SET totp_enabled = TRUE, updated_at = $2 WHERE id = $1 AND totp_secret <> ''
`, id, now.UTC())
}

func (r *UserRepo) getOne(ctx context.Context, op, where string, arg any) (model.User, error) {
	if r.pool == nil {
		return model.User{}, ErrPoolUnavailable
	}
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (r *UserRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	if r.pool == nil {
		return ErrPoolUnavailable
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user model.User
		role string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Provider,
		&user.GoogleSubject,
		&role,
		&user.OnboardingComplete,
		&user.TOTPSecret,
		&user.TOTPEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return model.User{}, err
	}
	user.Role = enums.ParseRole(role)
	return user, nil
}
