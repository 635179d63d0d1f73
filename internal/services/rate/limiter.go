package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	minuteWindow = time.Minute
	tenSecWindow = 10 * time.Second
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter enforces a per-minute and a per-10-seconds ceiling on one action per user.
type Limiter struct {
	store     WindowStore
	action    string
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, action string, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}
	if strings.TrimSpace(action) == "" {
		action = "default"
	}

	return &Limiter{
		store:     store,
		action:    action,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

// Allow counts one attempt and reports whether it fits both windows. When it does
// not, retryAfterSec is the time until the tightest window resets.
func (l *Limiter) Allow(ctx context.Context, userID string) (retryAfterSec int64, allowed bool, err error) {
	if strings.TrimSpace(userID) == "" {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	windows := []struct {
		limit  int
		key    string
		window time.Duration
	}{
		{l.perMinute, l.key("min", userID), minuteWindow},
		{l.per10Sec, l.key("10s", userID), tenSecWindow},
	}

	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.window)
		if err != nil {
			return 0, false, err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

func (l *Limiter) key(window, userID string) string {
	return "rate:" + l.action + ":" + window + ":" + userID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
