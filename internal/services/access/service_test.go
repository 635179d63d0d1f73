package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	"github.com/Krunal123456/Bari/internal/domain/rules"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
)

type memProfiles map[string]model.Profile

func (m memProfiles) GetByID(_ context.Context, id string) (model.Profile, error) {
	p, ok := m[id]
	if !ok {
		return model.Profile{}, pgrepo.ErrProfileNotFound
	}
	return p, nil
}

// subscriptionEntitlements resolves entitlements with the same rule the real service uses.
type subscriptionEntitlements struct {
	subs map[string]model.Subscription
	now  time.Time
}

func (s subscriptionEntitlements) Get(_ context.Context, userID string) (model.Entitlement, error) {
	sub, ok := s.subs[userID]
	if !ok {
		return model.Entitlement{UserID: userID, Plan: enums.SubscriptionPlanFree}, nil
	}
	return model.Entitlement{UserID: userID, Plan: sub.Plan, Paid: rules.IsPaidActive(&sub, s.now), ExpiresAt: sub.ExpiryDate}, nil
}

var gateNow = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func approvedProfile() model.Profile {
	return model.Profile{
		ID:        "p1",
		UserID:    "owner",
		UserEmail: "priya@example.com",
		FullName:  "Priya Sharma",
		Phone:     "9876543210",
		Status:    enums.ProfileStatusApproved,
	}
}

func TestGateMatrix(t *testing.T) {
	future := gateNow.Add(48 * time.Hour)
	past := gateNow.Add(-time.Hour)

	plans := []enums.SubscriptionPlan{enums.SubscriptionPlanFree, enums.SubscriptionPlanPaid}
	statuses := []enums.SubscriptionStatus{enums.SubscriptionStatusActive, enums.SubscriptionStatusExpired, enums.SubscriptionStatusCancelled}
	expiries := []*time.Time{nil, &future, &past}

	for _, plan := range plans {
		for _, status := range statuses {
			for _, expiry := range expiries {
				sub := model.Subscription{Plan: plan, Status: status, ExpiryDate: expiry}
				svc := NewService(memProfiles{"p1": approvedProfile()}, subscriptionEntitlements{
					subs: map[string]model.Subscription{"viewer": sub},
					now:  gateNow,
				})
				svc.now = func() time.Time { return gateNow }

				view, err := svc.Gate(context.Background(), Viewer{UserID: "viewer"}, "p1")
				if err != nil {
					t.Fatalf("gate: %v", err)
				}

				wantFull := plan == enums.SubscriptionPlanPaid && status == enums.SubscriptionStatusActive && expiry != &past
				if wantFull {
					if view.Mode != enums.AccessModeFull || view.Phone != "9876543210" || view.Email != "priya@example.com" {
						t.Fatalf("%s/%s expiry=%v: expected full view, got %+v", plan, status, expiry, view)
					}
					continue
				}
				if view.Mode != enums.AccessModeMasked {
					t.Fatalf("%s/%s expiry=%v: expected masked, got %s", plan, status, expiry, view.Mode)
				}
				if view.Phone != "******3210" || view.Profile.Phone != "******3210" {
					t.Fatalf("phone not masked: %q", view.Phone)
				}
				if view.Email != "" || view.Profile.UserEmail != "" || view.UpgradeCTA == "" {
					t.Fatalf("email must be replaced by the upgrade prompt: %+v", view)
				}
			}
		}
	}
}

func TestGateWithoutSubscriptionIsMasked(t *testing.T) {
	svc := NewService(memProfiles{"p1": approvedProfile()}, subscriptionEntitlements{subs: map[string]model.Subscription{}, now: gateNow})
	view, err := svc.Gate(context.Background(), Viewer{UserID: "viewer"}, "p1")
	if err != nil {
		t.Fatalf("gate: %v", err)
	}
	if view.Mode != enums.AccessModeMasked {
		t.Fatalf("got %s want masked", view.Mode)
	}
}

func TestGateOwnProfileAndVisibility(t *testing.T) {
	pending := approvedProfile()
	pending.ID = "p2"
	pending.Status = enums.ProfileStatusPending
	deleted := approvedProfile()
	deleted.ID = "p3"
	deleted.Status = enums.ProfileStatusDeleted

	svc := NewService(memProfiles{"p1": approvedProfile(), "p2": pending, "p3": deleted}, subscriptionEntitlements{now: gateNow})
	ctx := context.Background()

	if _, err := svc.Gate(ctx, Viewer{UserID: "owner"}, "p1"); !errors.Is(err, ErrOwnProfile) {
		t.Fatalf("own profile: got %v want %v", err, ErrOwnProfile)
	}
	if _, err := svc.Gate(ctx, Viewer{UserID: "viewer"}, "p2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("pending profile: got %v want %v", err, ErrNotFound)
	}
	if _, err := svc.Gate(ctx, Viewer{UserID: "viewer"}, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing profile: got %v want %v", err, ErrNotFound)
	}

	view, err := svc.Gate(ctx, Viewer{UserID: "admin", Admin: true}, "p2")
	if err != nil {
		t.Fatalf("admin gate: %v", err)
	}
	if view.Mode != enums.AccessModeFull {
		t.Fatalf("admins must see full details, got %s", view.Mode)
	}
	if _, err := svc.Gate(ctx, Viewer{UserID: "admin", Admin: true}, "p3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted profile: got %v want %v", err, ErrNotFound)
	}
}
