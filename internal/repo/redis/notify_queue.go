package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	NotifyQueueKey      = "notify:queue"
	NotifyDeadLetterKey = "notify:dead"

	maxDeadLetters = 1000
)

var ErrQueueEmpty = errors.New("notify queue is empty")

// NotifyQueue is a FIFO list: producers LPUSH, the worker BRPOPs.
type NotifyQueue struct {
	client *goredis.Client
}

func NewNotifyQueue(client *goredis.Client) *NotifyQueue {
	return &NotifyQueue{client: client}
}

func (q *NotifyQueue) Push(ctx context.Context, payload []byte) error {
	if q.client == nil {
		return ErrClientUnavailable
	}
	if err := q.client.LPush(ctx, NotifyQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("push notify job: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest job and returns ErrQueueEmpty when none arrived.
func (q *NotifyQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if q.client == nil {
		return nil, ErrClientUnavailable
	}
	res, err := q.client.BRPop(ctx, timeout, NotifyQueueKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("pop notify job: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("pop notify job: unexpected reply length %d", len(res))
	}
	return []byte(res[1]), nil
}

// DeadLetter keeps the newest failed jobs, capped at maxDeadLetters.
func (q *NotifyQueue) DeadLetter(ctx context.Context, payload []byte) error {
	if q.client == nil {
		return ErrClientUnavailable
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, NotifyDeadLetterKey, payload)
	pipe.LTrim(ctx, NotifyDeadLetterKey, 0, maxDeadLetters-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write notify dead letter: %w", err)
	}
	return nil
}

func (q *NotifyQueue) DeadLetters(ctx context.Context, limit int64) ([]string, error) {
	if q.client == nil {
		return nil, ErrClientUnavailable
	}
	if limit <= 0 {
		limit = 50
	}
	items, err := q.client.LRange(ctx, NotifyDeadLetterKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list notify dead letters: %w", err)
	}
	return items, nil
}
