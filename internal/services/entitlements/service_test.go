package entitlements

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	redrepo "github.com/Krunal123456/Bari/internal/repo/redis"
)

type fakeStore struct {
	subs  map[string]model.Subscription
	calls int
	err   error
}

func (f *fakeStore) GetActiveByUser(_ context.Context, userID string) (model.Subscription, error) {
	f.calls++
	if f.err != nil {
		return model.Subscription{}, f.err
	}
	sub, ok := f.subs[userID]
	if !ok {
		return model.Subscription{}, pgrepo.ErrSubscriptionNotFound
	}
	return sub, nil
}

func TestGetResolvesPaidOnlyForActivePaidUnexpired(t *testing.T) {
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name string
		sub  *model.Subscription
		want bool
	}{
		{"no subscription", nil, false},
		{"free active", &model.Subscription{Plan: enums.SubscriptionPlanFree, Status: enums.SubscriptionStatusActive}, false},
		{"paid active no expiry", &model.Subscription{Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusActive}, true},
		{"paid active future expiry", &model.Subscription{Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusActive, ExpiryDate: &future}, true},
		{"paid active past expiry", &model.Subscription{Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusActive, ExpiryDate: &past}, false},
		{"paid expired", &model.Subscription{Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusExpired}, false},
		{"paid cancelled", &model.Subscription{Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusCancelled}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{subs: map[string]model.Subscription{}}
			if tc.sub != nil {
				store.subs["u1"] = *tc.sub
			}
			svc := NewService(store, nil)
			svc.now = func() time.Time { return now }

			ent, err := svc.Get(context.Background(), "u1")
			if err != nil {
				t.Fatalf("get entitlement: %v", err)
			}
			if ent.Paid != tc.want {
				t.Fatalf("paid: got %v want %v", ent.Paid, tc.want)
			}
		})
	}
}

func TestCacheTTLIsBoundedByExpiryAndInvalidated(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mini.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer func() { _ = client.Close() }()

	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	expiry := now.Add(2 * time.Minute)
	store := &fakeStore{subs: map[string]model.Subscription{
		"u1": {Plan: enums.SubscriptionPlanPaid, Status: enums.SubscriptionStatusActive, ExpiryDate: &expiry},
	}}
	svc := NewService(store, nil)
	svc.AttachCache(redrepo.NewEntitlementCache(client), 5*time.Minute)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if ttl := mini.TTL("entitlement:u1"); ttl != 2*time.Minute {
		t.Fatalf("cache ttl must stop at expiry: got %s want %s", ttl, 2*time.Minute)
	}

	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("second read must hit the cache: store calls %d", store.calls)
	}

	svc.Invalidate(ctx, "u1")
	if _, err := svc.Get(ctx, "u1"); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("read after invalidate must reach the store: store calls %d", store.calls)
	}
}

func TestCachedPaidEntryPastExpiryIsNotTrusted(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mini.Close()
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	defer func() { _ = client.Close() }()

	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	expiry := now.Add(-time.Second)
	cache := redrepo.NewEntitlementCache(client)
	if err := cache.Set(context.Background(), model.Entitlement{UserID: "u1", Plan: enums.SubscriptionPlanPaid, Paid: true, ExpiresAt: &expiry}, time.Minute); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	svc := NewService(&fakeStore{}, nil)
	svc.AttachCache(cache, time.Minute)
	svc.now = func() time.Time { return now }

	ent, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ent.Paid {
		t.Fatalf("expired cached entitlement must not grant access")
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("db down")}, nil)
	if _, err := svc.Get(context.Background(), "u1"); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := svc.Get(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v want %v", err, ErrValidation)
	}
}
