package payments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

const testWebhookSecret = "whsec_test_secret"

type fakeSubs struct {
	mu         sync.Mutex
	bySession  map[string]model.Subscription
	active     map[string]model.Subscription
	pending    []model.PendingCheckout
	pendingErr error
	activated  []pgrepo.ActivateParams
}

func newFakeSubs() *fakeSubs {
	return &fakeSubs{
		bySession: map[string]model.Subscription{},
		active:    map[string]model.Subscription{},
	}
}

func (f *fakeSubs) Activate(_ context.Context, p pgrepo.ActivateParams) (model.Subscription, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.StripeSessionID != "" {
		if sub, ok := f.bySession[p.StripeSessionID]; ok {
			return sub, false, nil
		}
	}
	sub := model.Subscription{
		ID:              p.ID,
		UserID:          p.UserID,
		Plan:            p.Plan,
		Status:          enums.SubscriptionStatusActive,
		StartDate:       p.StartDate,
		ExpiryDate:      p.ExpiryDate,
		StripeSessionID: p.StripeSessionID,
		Metadata:        p.Metadata,
	}
	f.activated = append(f.activated, p)
	f.active[p.UserID] = sub
	if p.StripeSessionID != "" {
		f.bySession[p.StripeSessionID] = sub
	}
	return sub, true, nil
}

func (f *fakeSubs) CreatePending(_ context.Context, pending model.PendingCheckout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingErr != nil {
		return f.pendingErr
	}
	f.pending = append(f.pending, pending)
	return nil
}

type fakeEntitlements struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeEntitlements) Get(_ context.Context, userID string) (model.Entitlement, error) {
	return model.Entitlement{UserID: userID, Plan: enums.SubscriptionPlanFree}, nil
}

func (f *fakeEntitlements) Invalidate(_ context.Context, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, userID)
}

type fakeCheckout struct {
	last CheckoutRequest
	err  error
}

func (f *fakeCheckout) NewSession(_ context.Context, req CheckoutRequest) (CheckoutSession, error) {
	f.last = req
	if f.err != nil {
		return CheckoutSession{}, f.err
	}
	return CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.test/cs_test_1"}, nil
}

type fakeAuditor struct {
	actions []enums.ActivityAction
}

func (f *fakeAuditor) Record(_ context.Context, _ audit.Actor, action enums.ActivityAction, _ enums.EntityType, _ string, _ map[string]interface{}) {
	f.actions = append(f.actions, action)
}

func newTestService(checkout CheckoutProvider) (*Service, *fakeSubs, *fakeEntitlements, *fakeAuditor) {
	subs := newFakeSubs()
	ents := &fakeEntitlements{}
	aud := &fakeAuditor{}
	svc := NewService(Dependencies{
		Subscriptions: subs,
		Entitlements:  ents,
		Checkout:      checkout,
		Auditor:       aud,
	}, Config{
		BaseURL:       "https://barisamaj.org/",
		WebhookSecret: testWebhookSecret,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, subs, ents, aud
}

func TestCreateCheckoutValidatesCaller(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeCheckout{})
	ctx := context.Background()

	if _, err := svc.CreateCheckout(ctx, "u1", "", "paid"); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing user: got %v want %v", err, ErrValidation)
	}
	if _, err := svc.CreateCheckout(ctx, "u1", "u1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing plan: got %v want %v", err, ErrValidation)
	}
	if _, err := svc.CreateCheckout(ctx, "u1", "u1", "free"); !errors.Is(err, ErrValidation) {
		t.Fatalf("free plan: got %v want %v", err, ErrValidation)
	}
	if _, err := svc.CreateCheckout(ctx, "u1", "u2", "paid"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user: got %v want %v", err, ErrForbidden)
	}
}

func TestCreateCheckoutWithProcessor(t *testing.T) {
	checkout := &fakeCheckout{}
	svc, subs, _, _ := newTestService(checkout)

	res, err := svc.CreateCheckout(context.Background(), "u1", "u1", "paid")
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if res.URL != "https://checkout.stripe.test/cs_test_1" || res.DevFallback {
		t.Fatalf("unexpected result: %+v", res)
	}
	if checkout.last.SuccessURL != "https://barisamaj.org/dashboard/matrimony/success?session_id={CHECKOUT_SESSION_ID}" {
		t.Fatalf("unexpected success url: %s", checkout.last.SuccessURL)
	}
	if checkout.last.CancelURL != "https://barisamaj.org/matrimony/plans?status=cancelled" {
		t.Fatalf("unexpected cancel url: %s", checkout.last.CancelURL)
	}
	if checkout.last.Metadata["userId"] != "u1" || checkout.last.Metadata["plan"] != "paid" {
		t.Fatalf("unexpected metadata: %+v", checkout.last.Metadata)
	}
	if len(subs.pending) != 1 || subs.pending[0].StripeSessionID != "cs_test_1" {
		t.Fatalf("expected one pending checkout, got %+v", subs.pending)
	}
	if len(subs.activated) != 0 {
		t.Fatalf("checkout must not activate before the webhook")
	}
}

func TestCreateCheckoutProcessorErrorIsReturned(t *testing.T) {
	svc, subs, _, _ := newTestService(&fakeCheckout{err: errors.New("stripe down")})

	if _, err := svc.CreateCheckout(context.Background(), "u1", "u1", "paid"); err == nil {
		t.Fatalf("expected processor error")
	}
	if len(subs.pending) != 0 {
		t.Fatalf("no pending row expected on failure")
	}
}

func TestCreateCheckoutSurvivesPendingWriteFailure(t *testing.T) {
	svc, subs, _, _ := newTestService(&fakeCheckout{})
	core, logs := observer.New(zap.WarnLevel)
	svc.logger = zap.New(core)
	subs.pendingErr = errors.New("connection reset")

	res, err := svc.CreateCheckout(context.Background(), "u1", "u1", "paid")
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if res.URL != "https://checkout.stripe.test/cs_test_1" || res.SessionID != "cs_test_1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if logs.FilterMessage("record pending checkout failed").Len() != 1 {
		t.Fatalf("expected pending write failure to be logged, got %d entries", logs.Len())
	}
}

func TestCreateCheckoutDevFallbackActivatesImmediately(t *testing.T) {
	svc, subs, ents, _ := newTestService(nil)

	res, err := svc.CreateCheckout(context.Background(), "u1", "u1", "paid")
	if err != nil {
		t.Fatalf("dev checkout: %v", err)
	}
	if !res.DevFallback || res.URL != "https://barisamaj.org/matrimony?dev_session=1&status=success" {
		t.Fatalf("unexpected dev result: %+v", res)
	}
	if !strings.HasPrefix(res.SessionID, "dev_fallback_") {
		t.Fatalf("unexpected dev session id: %s", res.SessionID)
	}
	sub := subs.active["u1"]
	if sub.Plan != enums.SubscriptionPlanPaid || sub.Metadata["source"] != "dev_fallback" {
		t.Fatalf("unexpected dev subscription: %+v", sub)
	}
	if sub.ExpiryDate == nil || !sub.ExpiryDate.Equal(svc.now().Add(365*24*time.Hour)) {
		t.Fatalf("unexpected expiry: %v", sub.ExpiryDate)
	}
	if len(ents.invalidated) != 1 || ents.invalidated[0] != "u1" {
		t.Fatalf("expected cache invalidation, got %v", ents.invalidated)
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, subs, _, _ := newTestService(&fakeCheckout{})

	_, err := svc.HandleWebhook(context.Background(), []byte(completedEvent("evt_1", "cs_test_1", "u1")), "t=1,v1=bad")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("bad signature: got %v want %v", err, ErrInvalidSignature)
	}
	if len(subs.activated) != 0 {
		t.Fatalf("no subscription may change on a bad signature")
	}
}

func TestHandleWebhookActivatesOnceOnReplay(t *testing.T) {
	svc, subs, ents, _ := newTestService(&fakeCheckout{})
	payload, header := signEvent(t, completedEvent("evt_1", "cs_test_1", "u1"))

	first, err := svc.HandleWebhook(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if !first.Applied {
		t.Fatalf("first delivery should apply")
	}
	second, err := svc.HandleWebhook(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}
	if second.Applied {
		t.Fatalf("replay must not apply again")
	}

	if len(subs.activated) != 1 {
		t.Fatalf("expected one activation, got %d", len(subs.activated))
	}
	act := subs.activated[0]
	if act.UserID != "u1" || act.Plan != enums.SubscriptionPlanPaid {
		t.Fatalf("unexpected activation: %+v", act)
	}
	if act.Metadata["stripeSessionId"] != "cs_test_1" || act.Metadata["source"] != "stripe" {
		t.Fatalf("unexpected metadata: %+v", act.Metadata)
	}
	if act.ExpiryDate == nil || !act.ExpiryDate.Equal(svc.now().Add(365*24*time.Hour)) {
		t.Fatalf("unexpected expiry: %v", act.ExpiryDate)
	}
	if len(ents.invalidated) != 1 {
		t.Fatalf("expected a single invalidation, got %v", ents.invalidated)
	}
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	svc, subs, _, _ := newTestService(&fakeCheckout{})
	raw := `{"id":"evt_2","object":"event","api_version":"2023-10-16","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`
	payload, header := signEvent(t, raw)

	res, err := svc.HandleWebhook(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Applied || res.EventType != "payment_intent.created" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(subs.activated) != 0 {
		t.Fatalf("unrelated events must not activate")
	}
}

func TestHandleWebhookWithoutSecret(t *testing.T) {
	svc, _, _, _ := newTestService(&fakeCheckout{})
	svc.cfg.WebhookSecret = ""

	if _, err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig"); !errors.Is(err, ErrWebhookUnconfigured) {
		t.Fatalf("got %v want %v", err, ErrWebhookUnconfigured)
	}
}

func TestDowngradeRecordsAudit(t *testing.T) {
	svc, subs, ents, aud := newTestService(nil)

	sub, err := svc.Downgrade(context.Background(), audit.Actor{ID: "admin-1", Name: "Admin"}, "u1")
	if err != nil {
		t.Fatalf("downgrade: %v", err)
	}
	if sub.Plan != enums.SubscriptionPlanFree || sub.ExpiryDate != nil {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if subs.active["u1"].Plan != enums.SubscriptionPlanFree {
		t.Fatalf("active subscription should be free")
	}
	if len(ents.invalidated) != 1 {
		t.Fatalf("expected invalidation")
	}
	if len(aud.actions) != 1 || aud.actions[0] != enums.ActionDowngradedSubscription {
		t.Fatalf("unexpected audit trail: %v", aud.actions)
	}
}

func completedEvent(eventID, sessionID, userID string) string {
	return `{"id":"` + eventID + `","object":"event","api_version":"2023-10-16","type":"checkout.session.completed",` +
		`"data":{"object":{"id":"` + sessionID + `","object":"checkout.session","client_reference_id":"` + userID + `",` +
		`"metadata":{"userId":"` + userID + `","plan":"paid"}}}}`
}

func signEvent(t *testing.T, raw string) ([]byte, string) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(raw),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}
