package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Krunal123456/Bari/internal/domain/model"
)

const entitlementPrefix = "entitlement:"

type EntitlementCache struct {
	client *goredis.Client
}

func NewEntitlementCache(client *goredis.Client) *EntitlementCache {
	return &EntitlementCache{client: client}
}

// Get returns the cached entitlement of userID; ok is false on a miss.
func (c *EntitlementCache) Get(ctx context.Context, userID string) (model.Entitlement, bool, error) {
	if c.client == nil {
		return model.Entitlement{}, false, ErrClientUnavailable
	}
	raw, err := c.client.Get(ctx, entitlementKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.Entitlement{}, false, nil
		}
		return model.Entitlement{}, false, fmt.Errorf("get cached entitlement: %w", err)
	}

	var ent model.Entitlement
	if err := json.Unmarshal(raw, &ent); err != nil {
		return model.Entitlement{}, false, fmt.Errorf("decode cached entitlement: %w", err)
	}
	return ent, true, nil
}

func (c *EntitlementCache) Set(ctx context.Context, ent model.Entitlement, ttl time.Duration) error {
	if c.client == nil {
		return ErrClientUnavailable
	}
	if strings.TrimSpace(ent.UserID) == "" || ttl <= 0 {
		return fmt.Errorf("invalid entitlement cache payload")
	}
	raw, err := json.Marshal(ent)
	if err != nil {
		return fmt.Errorf("encode entitlement: %w", err)
	}
	if err := c.client.Set(ctx, entitlementKey(ent.UserID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set cached entitlement: %w", err)
	}
	return nil
}

func (c *EntitlementCache) Invalidate(ctx context.Context, userID string) error {
	if c.client == nil {
		return ErrClientUnavailable
	}
	if err := c.client.Del(ctx, entitlementKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached entitlement: %w", err)
	}
	return nil
}

func entitlementKey(userID string) string {
	return entitlementPrefix + userID
}
