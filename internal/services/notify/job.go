package notify

import (
	"errors"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

type Kind string

const (
	KindPush     Kind = "push"
	KindTelegram Kind = "telegram"
)

type Audience string

const (
	AudienceAll    Audience = "all"
	AudienceUsers  Audience = "users"
	AudienceTokens Audience = "tokens"
)

// Job is the unit the API hands to the worker through the dispatch queue.
type Job struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	Audience   Audience          `json:"audience,omitempty"`
	UserIDs    []string          `json:"user_ids,omitempty"`
	Tokens     []string          `json:"tokens,omitempty"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	Data       map[string]string `json:"data,omitempty"`
	LinkURL    string            `json:"link_url,omitempty"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

func (j Job) Validate() error {
	switch j.Kind {
	case KindTelegram:
		if strings.TrimSpace(j.Body) == "" {
			return ErrValidation
		}
		return nil
	case KindPush:
	default:
		return ErrValidation
	}

	if strings.TrimSpace(j.Title) == "" && strings.TrimSpace(j.Body) == "" {
		return ErrValidation
	}
	switch j.Audience {
	case AudienceAll:
		return nil
	case AudienceUsers:
		if len(j.UserIDs) == 0 {
			return ErrValidation
		}
		return nil
	case AudienceTokens:
		if len(j.Tokens) == 0 {
			return ErrValidation
		}
		return nil
	default:
		return ErrValidation
	}
}

// DeadLetter is what the worker keeps for a job it could not process.
type DeadLetter struct {
	Job      string    `json:"job"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
