package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrProfileNotFound       = errors.New("matrimony profile not found")
	ErrProfileExists         = errors.New("user already has a matrimony profile")
	ErrProfileStatusConflict = errors.New("matrimony profile status changed concurrently")
	ErrPhotoLimitReached     = errors.New("profile photo limit reached")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrInterestLimitReached  = errors.New("interest daily limit reached")
	ErrPostNotFound          = errors.New("post not found")
	ErrDirectoryNotFound     = errors.New("directory entry not found")
	ErrCMSNotFound           = errors.New("cms content not found")
	ErrPoolUnavailable       = errors.New("postgres pool is nil")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
