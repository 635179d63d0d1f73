package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/domain/enums"
	"github.com/Krunal123456/Bari/internal/domain/model"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	"github.com/Krunal123456/Bari/internal/services/audit"
)

const (
	sourceStripe      = "stripe"
	sourceDevFallback = "dev_fallback"
	sourceAdmin       = "admin_downgrade"

	defaultPaidDuration = 365 * 24 * time.Hour
	defaultCurrency     = "inr"
	defaultAmountMinor  = 99900
	productName         = "Bari Samaj Matrimony Premium"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrForbidden           = errors.New("checkout must be created for the signed-in user")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrWebhookUnconfigured = errors.New("webhook secret is not configured")
	ErrMissingMetadata     = errors.New("checkout session has no user id")
)

type SubscriptionStore interface {
	Activate(ctx context.Context, p pgrepo.ActivateParams) (model.Subscription, bool, error)
	CreatePending(ctx context.Context, pending model.PendingCheckout) error
}

type Entitlements interface {
	Get(ctx context.Context, userID string) (model.Entitlement, error)
	Invalidate(ctx context.Context, userID string)
}

type Auditor interface {
	Record(ctx context.Context, actor audit.Actor, action enums.ActivityAction, entityType enums.EntityType, entityID string, changes map[string]interface{})
}

type CheckoutRequest struct {
	UserID      string
	Currency    string
	AmountMinor int64
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutProvider is nil when no processor key is configured; checkouts then
// take the development fallback path.
type CheckoutProvider interface {
	NewSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

type Config struct {
	BaseURL       string
	WebhookSecret string
	Currency      string
	AmountMinor   int64
	PaidDuration  time.Duration
}

type Dependencies struct {
	Subscriptions SubscriptionStore
	Entitlements  Entitlements
	Checkout      CheckoutProvider
	Auditor       Auditor
	Logger        *zap.Logger
}

type CheckoutResult struct {
	URL         string `json:"url"`
	SessionID   string `json:"session_id,omitempty"`
	DevFallback bool   `json:"dev_fallback,omitempty"`
}

type WebhookResult struct {
	EventType string
	Applied   bool
}

type Service struct {
	subs         SubscriptionStore
	entitlements Entitlements
	checkout     CheckoutProvider
	auditor      Auditor
	logger       *zap.Logger
	cfg          Config
	now          func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	if cfg.AmountMinor <= 0 {
		cfg.AmountMinor = defaultAmountMinor
	}
	if cfg.PaidDuration <= 0 {
		cfg.PaidDuration = defaultPaidDuration
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		subs:         deps.Subscriptions,
		entitlements: deps.Entitlements,
		checkout:     deps.Checkout,
		auditor:      deps.Auditor,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *Service) CreateCheckout(ctx context.Context, callerID, userID, plan string) (CheckoutResult, error) {
	userID = strings.TrimSpace(userID)
	plan = strings.ToLower(strings.TrimSpace(plan))
	if userID == "" || plan == "" {
		return CheckoutResult{}, fmt.Errorf("userId and plan are required: %w", ErrValidation)
	}
	if plan == string(enums.SubscriptionPlanFree) {
		return CheckoutResult{}, fmt.Errorf("free plan needs no checkout: %w", ErrValidation)
	}
	if callerID != userID {
		return CheckoutResult{}, ErrForbidden
	}
	if s.subs == nil {
		return CheckoutResult{}, fmt.Errorf("subscription store is nil")
	}

	if s.checkout == nil {
		return s.devFallback(ctx, userID, plan)
	}

	sess, err := s.checkout.NewSession(ctx, CheckoutRequest{
		UserID:      userID,
		Currency:    s.cfg.Currency,
		AmountMinor: s.cfg.AmountMinor,
		ProductName: productName,
		SuccessURL:  s.cfg.BaseURL + "/dashboard/matrimony/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.cfg.BaseURL + "/matrimony/plans?status=cancelled",
		Metadata:    map[string]string{"userId": userID, "plan": plan},
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	if err := s.subs.CreatePending(ctx, model.PendingCheckout{
		ID:              uuid.NewString(),
		UserID:          userID,
		Plan:            enums.SubscriptionPlanPaid,
		StripeSessionID: sess.ID,
		CreatedAt:       s.now().UTC(),
	}); err != nil {
		// The session already exists; the webhook does not need the pending row.
		s.logger.Warn("record pending checkout failed",
			zap.String("user_id", userID), zap.String("session_id", sess.ID), zap.Error(err))
	}
	return CheckoutResult{URL: sess.URL, SessionID: sess.ID}, nil
}

func (s *Service) devFallback(ctx context.Context, userID, plan string) (CheckoutResult, error) {
	now := s.now().UTC()
	expiry := now.Add(s.cfg.PaidDuration)
	sessionID := "dev_fallback_" + strconv.FormatInt(now.UnixMilli(), 10)

	if _, _, err := s.subs.Activate(ctx, pgrepo.ActivateParams{
		ID:              uuid.NewString(),
		UserID:          userID,
		Plan:            enums.SubscriptionPlanPaid,
		StartDate:       now,
		ExpiryDate:      &expiry,
		StripeSessionID: sessionID,
		Metadata:        map[string]string{"source": sourceDevFallback, "requestedPlan": plan},
	}); err != nil {
		return CheckoutResult{}, fmt.Errorf("activate dev subscription: %w", err)
	}
	s.invalidate(ctx, userID)

	return CheckoutResult{
		URL:         s.cfg.BaseURL + "/matrimony?dev_session=1&status=success",
		SessionID:   sessionID,
		DevFallback: true,
	}, nil
}

// HandleWebhook verifies and applies a processor event. Replaying a completed
// checkout leaves exactly one subscription.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if strings.TrimSpace(s.cfg.WebhookSecret) == "" {
		return WebhookResult{}, ErrWebhookUnconfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookResult{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	res := WebhookResult{EventType: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return res, nil
	}
	if event.Data == nil {
		return res, fmt.Errorf("checkout event has no data")
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return res, fmt.Errorf("decode checkout session: %w", err)
	}
	applied, err := s.applyCheckout(ctx, sess)
	if err != nil {
		return res, err
	}
	res.Applied = applied
	return res, nil
}

func (s *Service) applyCheckout(ctx context.Context, sess stripe.CheckoutSession) (bool, error) {
	userID := strings.TrimSpace(sess.Metadata["userId"])
	if userID == "" {
		userID = strings.TrimSpace(sess.ClientReferenceID)
	}
	if userID == "" || strings.TrimSpace(sess.ID) == "" {
		return false, ErrMissingMetadata
	}
	plan := enums.SubscriptionPlan(strings.ToLower(strings.TrimSpace(sess.Metadata["plan"])))
	if !plan.Valid() {
		plan = enums.SubscriptionPlanPaid
	}

	now := s.now().UTC()
	var expiry *time.Time
	if plan == enums.SubscriptionPlanPaid {
		e := now.Add(s.cfg.PaidDuration)
		expiry = &e
	}

	_, created, err := s.subs.Activate(ctx, pgrepo.ActivateParams{
		ID:              uuid.NewString(),
		UserID:          userID,
		Plan:            plan,
		StartDate:       now,
		ExpiryDate:      expiry,
		StripeSessionID: sess.ID,
		Metadata:        map[string]string{"stripeSessionId": sess.ID, "source": sourceStripe},
	})
	if err != nil {
		return false, fmt.Errorf("activate subscription: %w", err)
	}
	if created {
		s.invalidate(ctx, userID)
	}
	return created, nil
}

// Downgrade moves a user back to the free plan.
func (s *Service) Downgrade(ctx context.Context, actor audit.Actor, userID string) (model.Subscription, error) {
	if strings.TrimSpace(actor.ID) == "" || strings.TrimSpace(userID) == "" {
		return model.Subscription{}, ErrValidation
	}
	now := s.now().UTC()
	sub, _, err := s.subs.Activate(ctx, pgrepo.ActivateParams{
		ID:        uuid.NewString(),
		UserID:    userID,
		Plan:      enums.SubscriptionPlanFree,
		StartDate: now,
		Metadata:  map[string]string{"source": sourceAdmin, "adminId": actor.ID},
	})
	if err != nil {
		return model.Subscription{}, fmt.Errorf("downgrade subscription: %w", err)
	}
	s.invalidate(ctx, userID)
	if s.auditor != nil {
		s.auditor.Record(ctx, actor, enums.ActionDowngradedSubscription, enums.EntitySubscription, sub.ID, map[string]interface{}{"user_id": userID})
	}
	return sub, nil
}

func (s *Service) Entitlement(ctx context.Context, userID string) (model.Entitlement, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Entitlement{}, ErrValidation
	}
	return s.entitlements.Get(ctx, userID)
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.entitlements != nil {
		s.entitlements.Invalidate(ctx, userID)
	}
}
