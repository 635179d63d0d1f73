package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Queue interface {
	Push(ctx context.Context, payload []byte) error
}

// Dispatcher enqueues jobs for the worker. Enqueue never fails the caller: a job
// that cannot be queued is logged and dropped.
type Dispatcher struct {
	queue  Queue
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(queue Queue, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{queue: queue, logger: logger, now: time.Now}
}

func (d *Dispatcher) Enqueue(ctx context.Context, job Job) {
	if d == nil {
		return
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = d.now().UTC()
	}
	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("kind", string(job.Kind)),
		zap.String("audience", string(job.Audience)),
	}

	if err := job.Validate(); err != nil {
		d.logger.Warn("notify job rejected", append(fields, zap.Error(err))...)
		return
	}
	if d.queue == nil {
		d.logger.Warn("notify queue unavailable, job dropped", fields...)
		return
	}
	payload, err := json.Marshal(job)
	if err != nil {
		d.logger.Warn("notify job encode failed", append(fields, zap.Error(err))...)
		return
	}
	if err := d.queue.Push(ctx, payload); err != nil {
		d.logger.Warn("notify job enqueue failed", append(fields, zap.Error(err))...)
	}
}

func (d *Dispatcher) PushToUsers(ctx context.Context, userIDs []string, title, body string, data map[string]string) {
	d.Enqueue(ctx, Job{Kind: KindPush, Audience: AudienceUsers, UserIDs: userIDs, Title: title, Body: body, Data: data})
}

func (d *Dispatcher) PushToAll(ctx context.Context, title, body string, data map[string]string) {
	d.Enqueue(ctx, Job{Kind: KindPush, Audience: AudienceAll, Title: title, Body: body, Data: data})
}

func (d *Dispatcher) AlertAdmins(ctx context.Context, text, linkURL string) {
	d.Enqueue(ctx, Job{Kind: KindTelegram, Body: text, LinkURL: linkURL})
}
