package notify

import (
	"context"
	"strings"
)

type RelayRequest struct {
	Tokens []string          `json:"tokens" validate:"required,min=1,dive,required"`
	Title  string            `json:"title" validate:"required,max=200"`
	Body   string            `json:"body" validate:"required,max=2000"`
	Data   map[string]string `json:"data"`
}

type RelayResult struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	TokensCount int    `json:"tokensCount"`
}

// Relay queues an explicit-token push on behalf of an admin tool.
type Relay struct {
	dispatcher *Dispatcher
}

func NewRelay(dispatcher *Dispatcher) *Relay {
	return &Relay{dispatcher: dispatcher}
}

func (r *Relay) Send(ctx context.Context, req RelayRequest) (RelayResult, error) {
	tokens := dedupe(trimAll(req.Tokens))
	if len(tokens) == 0 || strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		return RelayResult{}, ErrValidation
	}
	r.dispatcher.Enqueue(ctx, Job{
		Kind:     KindPush,
		Audience: AudienceTokens,
		Tokens:   tokens,
		Title:    strings.TrimSpace(req.Title),
		Body:     strings.TrimSpace(req.Body),
		Data:     req.Data,
	})
	return RelayResult{
		Success:     true,
		Message:     "Notifications queued for sending",
		TokensCount: len(tokens),
	}, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
