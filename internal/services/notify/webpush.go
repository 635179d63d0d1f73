package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpush "github.com/SherClockHolmes/webpush-go"
)

var ErrSenderUnavailable = errors.New("push sender is not configured")

type WebPushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	TTLSeconds      int
	HTTPClient      *http.Client
}

// WebPushSender delivers one payload to one browser subscription.
type WebPushSender struct {
	cfg WebPushConfig
}

func NewWebPushSender(cfg WebPushConfig) (*WebPushSender, error) {
	if strings.TrimSpace(cfg.VAPIDPublicKey) == "" || strings.TrimSpace(cfg.VAPIDPrivateKey) == "" {
		return nil, ErrSenderUnavailable
	}
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = 30
	}
	return &WebPushSender{cfg: cfg}, nil
}

// Send returns the push service status code alongside any error so callers can
// prune subscriptions that are gone.
func (s *WebPushSender) Send(ctx context.Context, token string, payload []byte) (int, error) {
	sub, err := ParseSubscription(token)
	if err != nil {
		return http.StatusGone, fmt.Errorf("decode push subscription: %w", err)
	}

	opts := &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             s.cfg.TTLSeconds,
		Urgency:         webpush.UrgencyNormal,
	}
	if s.cfg.HTTPClient != nil {
		opts.HTTPClient = s.cfg.HTTPClient
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, opts)
	if err != nil {
		return 0, fmt.Errorf("send web push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("web push rejected with status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
