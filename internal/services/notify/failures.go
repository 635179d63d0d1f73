package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	defaultFailureLimit = 50
	maxFailureLimit     = 200
)

type DeadLetterReader interface {
	DeadLetters(ctx context.Context, limit int64) ([]string, error)
}

// Failures lists jobs the worker gave up on, newest first.
type Failures struct {
	reader DeadLetterReader
}

func NewFailures(reader DeadLetterReader) *Failures {
	return &Failures{reader: reader}
}

func (f *Failures) Recent(ctx context.Context, limit int) ([]DeadLetter, error) {
	if limit <= 0 || limit > maxFailureLimit {
		limit = defaultFailureLimit
	}
	raw, err := f.reader.DeadLetters(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("read dead letters: %w", err)
	}
	out := make([]DeadLetter, 0, len(raw))
	for _, entry := range raw {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(entry), &dl); err != nil {
			dl = DeadLetter{Job: entry, Error: "unreadable dead letter"}
		}
		out = append(out, dl)
	}
	return out, nil
}
