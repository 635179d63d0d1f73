package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	passwordResetPrefix = "password_reset:"
	oauthStatePrefix    = "oauth_state:"
)

var ErrTokenNotFound = errors.New("one-time token not found")

// OneTimeRepo stores short-lived single-use tokens: password reset links and OAuth state.
type OneTimeRepo struct {
	client *goredis.Client
}

func NewOneTimeRepo(client *goredis.Client) *OneTimeRepo {
	return &OneTimeRepo{client: client}
}

func (r *OneTimeRepo) SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.put(ctx, passwordResetPrefix+token, userID, ttl)
}

func (r *OneTimeRepo) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	return r.take(ctx, passwordResetPrefix+token)
}

func (r *OneTimeRepo) SaveOAuthState(ctx context.Context, state string, ttl time.Duration) error {
	return r.put(ctx, oauthStatePrefix+state, "1", ttl)
}

func (r *OneTimeRepo) ConsumeOAuthState(ctx context.Context, state string) error {
	_, err := r.take(ctx, oauthStatePrefix+state)
	return err
}

func (r *OneTimeRepo) put(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return ErrClientUnavailable
	}
	if strings.TrimSpace(value) == "" || ttl <= 0 {
		return fmt.Errorf("invalid one-time token payload")
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("save one-time token: %w", err)
	}
	return nil
}

func (r *OneTimeRepo) take(ctx context.Context, key string) (string, error) {
	if r.client == nil {
		return "", ErrClientUnavailable
	}
	value, err := r.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("consume one-time token: %w", err)
	}
	return value, nil
}
