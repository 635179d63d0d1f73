package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	directorysvc "github.com/Krunal123456/Bari/internal/services/directory"
	interestsvc "github.com/Krunal123456/Bari/internal/services/interests"
	notifysvc "github.com/Krunal123456/Bari/internal/services/notify"
	paymentsvc "github.com/Krunal123456/Bari/internal/services/payments"
	profilesvc "github.com/Krunal123456/Bari/internal/services/profiles"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

func withIdentity(req *http.Request, userID string, role enums.Role) *http.Request {
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: userID, SID: "sid-" + userID, Role: role}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestKundliGenerateIsDeterministic(t *testing.T) {
	h := NewKundliHandler()
	body := `{"dobA":"1995-03-14","tobA":"10:30","pobA":"Jodhpur","dobB":"1996-11-02","tobB":"","pobB":"Pali"}`

	var first, second dto.KundliResponse
	for _, target := range []*dto.KundliResponse{&first, &second} {
		rr := httptest.NewRecorder()
		h.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/kundli/generate", strings.NewReader(body)))
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
		}
		if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	if !first.Success || first.Data == nil {
		t.Fatalf("expected success payload, got %+v", first)
	}
	if first.Data.GunaScore < 40 || first.Data.GunaScore > 100 {
		t.Fatalf("guna score out of range: %d", first.Data.GunaScore)
	}
	if *first.Data != *second.Data {
		t.Fatalf("same dates gave different reports: %+v vs %+v", first.Data, second.Data)
	}
}

func TestKundliGenerateRejectsMissingDate(t *testing.T) {
	h := NewKundliHandler()
	rr := httptest.NewRecorder()
	h.Generate(rr, httptest.NewRequest(http.MethodPost, "/api/kundli/generate", strings.NewReader(`{"dobA":"1995-03-14"}`)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
	var res dto.KundliResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Success || res.Error == "" {
		t.Fatalf("expected failure with message, got %+v", res)
	}
}

func TestHealthReportsDegradedDependencies(t *testing.T) {
	h := NewHealthHandler(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
		"mongo":    nil,
	})
	rr := httptest.NewRecorder()
	h.Handle(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var res healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "degraded" {
		t.Fatalf("unexpected status: got %q want %q", res.Status, "degraded")
	}
	if res.Dependencies["postgres"] != "up" || res.Dependencies["redis"] != "down" || res.Dependencies["mongo"] != "disabled" {
		t.Fatalf("unexpected dependencies: %+v", res.Dependencies)
	}
}

func TestProfileEndpointsRequireIdentity(t *testing.T) {
	h := NewProfileHandler(profilesvc.NewService(nil), nil, nil, nil)
	rr := httptest.NewRecorder()
	h.GetOwn(rr, httptest.NewRequest(http.MethodGet, "/v1/matrimony/profiles/me", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestDirectorySubmitReportsFieldErrors(t *testing.T) {
	h := NewDirectoryHandler(directorysvc.NewService(nil, nil))
	req := httptest.NewRequest(http.MethodPost, "/v1/directory", strings.NewReader(`{"email":"not-an-email"}`))
	req = withIdentity(req, "u1", enums.RoleMember)

	rr := httptest.NewRecorder()
	h.Submit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
	var res httperrors.ValidationError
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code: got %q", res.Code)
	}
	if _, ok := res.Fields["name"]; !ok {
		t.Fatalf("expected name field error, got %+v", res.Fields)
	}
	if _, ok := res.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %+v", res.Fields)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	h := NewDirectoryHandler(directorysvc.NewService(nil, nil))
	req := httptest.NewRequest(http.MethodPost, "/v1/directory", strings.NewReader(`{"name":"Mehta","phone":"9829012345","approved":true}`))
	req = withIdentity(req, "u1", enums.RoleMember)

	rr := httptest.NewRecorder()
	h.Submit(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

type interestStoreStub struct {
	err   error
	calls int
}

func (s *interestStoreStub) Create(_ context.Context, in model.Interest, _ string, _ int) (model.Interest, int, error) {
	s.calls++
	if s.err != nil {
		return model.Interest{}, 0, s.err
	}
	return in, 1, nil
}

func (s *interestStoreStub) CountSince(context.Context, string, time.Time) (int, error) {
	return 0, nil
}

type approvedProfileStub struct{}

func (approvedProfileStub) GetByID(_ context.Context, id string) (model.Profile, error) {
	return model.Profile{ID: id, UserID: "owner", Status: enums.ProfileStatusApproved}, nil
}

type entitlementStub struct {
	paid bool
}

func (s entitlementStub) Get(_ context.Context, userID string) (model.Entitlement, error) {
	if s.paid {
		return model.Entitlement{UserID: userID, Plan: enums.SubscriptionPlanPaid, Paid: true}, nil
	}
	return model.Entitlement{UserID: userID, Plan: enums.SubscriptionPlanFree}, nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (int64, bool, error) {
	return 7, false, nil
}

func TestInterestSendMapsDailyLimitTo429(t *testing.T) {
	store := &interestStoreStub{err: pgrepo.ErrInterestLimitReached}
	h := NewInterestsHandler(interestsvc.NewService(store, approvedProfileStub{}, entitlementStub{}, 3))

	req := httptest.NewRequest(http.MethodPost, "/v1/matrimony/profiles/p1/interests", nil)
	req = withURLParam(withIdentity(req, "sender", enums.RoleMember), "id", "p1")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	var res httperrors.APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Code != "DAILY_LIMIT" {
		t.Fatalf("unexpected code: got %q want %q", res.Code, "DAILY_LIMIT")
	}
}

func TestInterestSendReportsRetryAfterForBurst(t *testing.T) {
	store := &interestStoreStub{}
	service := interestsvc.NewService(store, approvedProfileStub{}, entitlementStub{paid: true}, 3)
	service.AttachLimiter(denyLimiter{})
	h := NewInterestsHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/v1/matrimony/profiles/p1/interests", strings.NewReader(`{"message":"Namaste"}`))
	req = withURLParam(withIdentity(req, "sender", enums.RoleMember), "id", "p1")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusTooManyRequests)
	}
	if got := rr.Header().Get("Retry-After"); got != "7" {
		t.Fatalf("unexpected Retry-After: got %q want %q", got, "7")
	}
	if store.calls != 0 {
		t.Fatalf("store must not be touched when the burst limit trips, got %d calls", store.calls)
	}
}

func TestInterestSendCreatesInterest(t *testing.T) {
	store := &interestStoreStub{}
	h := NewInterestsHandler(interestsvc.NewService(store, approvedProfileStub{}, entitlementStub{}, 3))

	req := httptest.NewRequest(http.MethodPost, "/v1/matrimony/profiles/p1/interests", strings.NewReader(`{"message":"Namaste"}`))
	req = withURLParam(withIdentity(req, "sender", enums.RoleMember), "id", "p1")
	rr := httptest.NewRecorder()
	h.Send(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	var interest model.Interest
	if err := json.Unmarshal(rr.Body.Bytes(), &interest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if interest.TargetProfileID != "p1" || interest.SenderID != "sender" || interest.Message != "Namaste" {
		t.Fatalf("unexpected interest: %+v", interest)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	service := paymentsvc.NewService(paymentsvc.Dependencies{}, paymentsvc.Config{WebhookSecret: "whsec_test"})
	h := NewPaymentsHandler(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rr := httptest.NewRecorder()
	h.Webhook(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestParseStatuses(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{raw: "", want: 0, ok: true},
		{raw: "pending", want: 1, ok: true},
		{raw: "pending, Approved", want: 2, ok: true},
		{raw: "pending,bogus", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseStatuses(tt.raw)
		if ok != tt.ok {
			t.Fatalf("parseStatuses(%q) ok: got %v want %v", tt.raw, ok, tt.ok)
		}
		if ok && len(got) != tt.want {
			t.Fatalf("parseStatuses(%q): got %d statuses want %d", tt.raw, len(got), tt.want)
		}
	}
}

type deadLetterStub struct {
	entries []string
}

func (d deadLetterStub) DeadLetters(_ context.Context, _ int64) ([]string, error) {
	return d.entries, nil
}

func TestNotificationDeadLetters(t *testing.T) {
	rr := httptest.NewRecorder()
	NewNotificationsHandler(nil, nil, nil, nil).DeadLetters(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/notifications/dead", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("without queue: got %d want %d", rr.Code, http.StatusServiceUnavailable)
	}

	entry := `{"job":"{\"kind\":\"push\"}","error":"no push sender configured","failed_at":"2026-04-15T10:00:00Z"}`
	h := NewNotificationsHandler(nil, nil, nil, notifysvc.NewFailures(deadLetterStub{entries: []string{entry}}))
	rr = httptest.NewRecorder()
	h.DeadLetters(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/notifications/dead?limit=5", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusOK)
	}
	var res dto.DeadLetterListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Error != "no push sender configured" || res.Items[0].Job != `{"kind":"push"}` {
		t.Fatalf("unexpected dead letters: %+v", res.Items)
	}
}
