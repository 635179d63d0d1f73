package notify

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

type TokenStore interface {
	Upsert(ctx context.Context, t model.PushToken) error
	Remove(ctx context.Context, userID string, now time.Time) error
}

type Tokens struct {
	store TokenStore
	now   func() time.Time
}

func NewTokens(store TokenStore) *Tokens {
	return &Tokens{store: store, now: time.Now}
}

// Register stores the browser push subscription of userID, replacing any previous one.
func (t *Tokens) Register(ctx context.Context, userID, token string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	if _, err := ParseSubscription(token); err != nil {
		return err
	}
	return t.store.Upsert(ctx, model.PushToken{
		UserID:    userID,
		Token:     strings.TrimSpace(token),
		UpdatedAt: t.now().UTC(),
	})
}

func (t *Tokens) Remove(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrValidation
	}
	return t.store.Remove(ctx, userID, t.now().UTC())
}

// ParseSubscription decodes a JSON Web Push subscription token.
func ParseSubscription(token string) (webpush.Subscription, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(strings.TrimSpace(token)), &sub); err != nil {
		return webpush.Subscription{}, ErrValidation
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return webpush.Subscription{}, ErrValidation
	}
	return sub, nil
}
