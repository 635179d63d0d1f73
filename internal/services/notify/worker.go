package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	redrepo "github.com/Krunal123456/Bari/internal/repo/redis"
)

const (
	MaxBatchSize       = 500
	defaultConcurrency = 8
	defaultPollTimeout = 5 * time.Second
	popErrorBackoff    = time.Second
)

type WorkerQueue interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	DeadLetter(ctx context.Context, payload []byte) error
}

type TokenDirectory interface {
	ListTokens(ctx context.Context, userIDs []string) ([]string, error)
	DeleteToken(ctx context.Context, token string) error
}

type PushSender interface {
	Send(ctx context.Context, token string, payload []byte) (int, error)
}

type AdminAlerter interface {
	SendReviewAlert(ctx context.Context, chatID int64, text, reviewURL string) error
}

type WorkerConfig struct {
	PollTimeout time.Duration
	Concurrency int
}

type DeliveryResult struct {
	Sent   int
	Failed int
	Pruned int
}

// Worker drains the dispatch queue. Jobs that cannot be processed go to the dead
// letter list and the loop moves on.
type Worker struct {
	queue       WorkerQueue
	tokens      TokenDirectory
	sender      PushSender
	alerter     AdminAlerter
	adminChatID int64
	pollTimeout time.Duration
	concurrency int
	logger      *zap.Logger
	now         func() time.Time
}

func NewWorker(queue WorkerQueue, tokens TokenDirectory, cfg WorkerConfig, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Worker{
		queue:       queue,
		tokens:      tokens,
		pollTimeout: cfg.PollTimeout,
		concurrency: cfg.Concurrency,
		logger:      logger,
		now:         time.Now,
	}
}

func (w *Worker) AttachPush(sender PushSender) {
	w.sender = sender
}

func (w *Worker) AttachTelegram(alerter AdminAlerter, adminChatID int64) {
	w.alerter = alerter
	w.adminChatID = adminChatID
}

func (w *Worker) Run(ctx context.Context) error {
	if w.queue == nil {
		return fmt.Errorf("notify queue is nil")
	}
	w.logger.Info("notify worker started", zap.Duration("poll_timeout", w.pollTimeout))

	for {
		if ctx.Err() != nil {
			w.logger.Info("notify worker stopped")
			return nil
		}

		raw, err := w.queue.Pop(ctx, w.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			if errors.Is(err, redrepo.ErrQueueEmpty) {
				continue
			}
			w.logger.Warn("notify queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(popErrorBackoff):
			}
			continue
		}

		if err := w.Process(ctx, raw); err != nil {
			w.deadLetter(ctx, raw, err)
		}
	}
}

func (w *Worker) Process(ctx context.Context, raw []byte) error {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	switch job.Kind {
	case KindTelegram:
		return w.alertAdmins(ctx, job)
	default:
		res, err := w.DeliverPush(ctx, job)
		if err != nil {
			return err
		}
		w.logger.Info("push job delivered",
			zap.String("job_id", job.ID),
			zap.Int("sent", res.Sent),
			zap.Int("failed", res.Failed),
			zap.Int("pruned", res.Pruned),
		)
		return nil
	}
}

func (w *Worker) DeliverPush(ctx context.Context, job Job) (DeliveryResult, error) {
	if w.sender == nil {
		return DeliveryResult{}, ErrSenderUnavailable
	}
	tokens, err := w.resolveTokens(ctx, job)
	if err != nil {
		return DeliveryResult{}, err
	}
	if len(tokens) == 0 {
		return DeliveryResult{}, nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"title": job.Title,
		"body":  job.Body,
		"data":  job.Data,
	})
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("encode push payload: %w", err)
	}

	var (
		mu  sync.Mutex
		res DeliveryResult
	)
	for _, batch := range splitBatches(tokens, MaxBatchSize) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(w.concurrency)
		for _, token := range batch {
			token := token
			g.Go(func() error {
				outcome := w.sendOne(gctx, job.ID, token, payload)
				mu.Lock()
				switch outcome {
				case outcomeSent:
					res.Sent++
				case outcomePruned:
					res.Pruned++
					res.Failed++
				default:
					res.Failed++
				}
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	return res, nil
}

type sendOutcome int

const (
	outcomeSent sendOutcome = iota
	outcomeFailed
	outcomePruned
)

func (w *Worker) sendOne(ctx context.Context, jobID, token string, payload []byte) sendOutcome {
	status, err := w.sender.Send(ctx, token, payload)
	if err == nil {
		return outcomeSent
	}
	if status == http.StatusNotFound || status == http.StatusGone {
		if w.tokens != nil {
			if delErr := w.tokens.DeleteToken(ctx, token); delErr != nil {
				w.logger.Warn("prune push token failed", zap.String("job_id", jobID), zap.Error(delErr))
			}
		}
		return outcomePruned
	}
	w.logger.Warn("push delivery failed", zap.String("job_id", jobID), zap.Int("status", status), zap.Error(err))
	return outcomeFailed
}

func (w *Worker) resolveTokens(ctx context.Context, job Job) ([]string, error) {
	var tokens []string
	switch job.Audience {
	case AudienceTokens:
		tokens = job.Tokens
	case AudienceUsers, AudienceAll:
		if w.tokens == nil {
			return nil, fmt.Errorf("token directory is not configured")
		}
		var userIDs []string
		if job.Audience == AudienceUsers {
			userIDs = job.UserIDs
		}
		list, err := w.tokens.ListTokens(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve push audience: %w", err)
		}
		tokens = list
	}
	return dedupe(tokens), nil
}

func (w *Worker) alertAdmins(ctx context.Context, job Job) error {
	if w.alerter == nil || w.adminChatID == 0 {
		return fmt.Errorf("telegram admin channel is not configured")
	}
	text := job.Body
	if job.Title != "" {
		text = job.Title + "\n\n" + job.Body
	}
	return w.alerter.SendReviewAlert(ctx, w.adminChatID, text, job.LinkURL)
}

func (w *Worker) deadLetter(ctx context.Context, raw []byte, cause error) {
	w.logger.Warn("notify job failed", zap.Error(cause))
	entry, err := json.Marshal(DeadLetter{Job: string(raw), Error: cause.Error(), FailedAt: w.now().UTC()})
	if err != nil {
		w.logger.Error("encode dead letter failed", zap.Error(err))
		return
	}
	// The parent context may already be cancelled on shutdown.
	dlCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := w.queue.DeadLetter(dlCtx, entry); err != nil {
		w.logger.Error("write dead letter failed", zap.Error(err))
	}
}

func splitBatches(tokens []string, size int) [][]string {
	if size <= 0 {
		size = MaxBatchSize
	}
	batches := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := min(start+size, len(tokens))
		batches = append(batches, tokens[start:end])
	}
	return batches
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
