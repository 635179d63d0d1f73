package workerapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Krunal123456/Bari/internal/config"
	"github.com/Krunal123456/Bari/internal/infra/httpclient"
	s3infra "github.com/Krunal123456/Bari/internal/infra/s3"
	tginfra "github.com/Krunal123456/Bari/internal/infra/telegram"
	"github.com/Krunal123456/Bari/internal/jobs/cleanup"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	redrepo "github.com/Krunal123456/Bari/internal/repo/redis"
	mediasvc "github.com/Krunal123456/Bari/internal/services/media"
	notifysvc "github.com/Krunal123456/Bari/internal/services/notify"
)

const pushHTTPTimeout = 15 * time.Second

// App runs the background side of the system: notification delivery and
// storage cleanup. It shares config and stores with the API process.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	worker     *notifysvc.Worker
	cleanupJob *cleanup.Job
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres for worker: %w", err)
	}
	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init redis for worker: %w", err)
	}

	worker := notifysvc.NewWorker(
		redrepo.NewNotifyQueue(redisClient),
		pgrepo.NewPushTokenRepo(pool),
		notifysvc.WorkerConfig{
			PollTimeout: cfg.Worker.QueuePollTimeout,
			Concurrency: cfg.Push.Concurrency,
		},
		logger,
	)

	sender, err := notifysvc.NewWebPushSender(notifysvc.WebPushConfig{
		VAPIDPublicKey:  cfg.Push.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.Push.VAPIDPrivateKey,
		Subscriber:      cfg.Push.Subscriber,
		TTLSeconds:      cfg.Push.TTLSeconds,
		HTTPClient:      httpclient.New(pushHTTPTimeout),
	})
	switch {
	case err == nil:
		worker.AttachPush(sender)
	case errors.Is(err, notifysvc.ErrSenderUnavailable):
		logger.Warn("VAPID keys are empty, push delivery disabled")
	default:
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init web push: %w", err)
	}

	if strings.TrimSpace(cfg.Telegram.BotToken) != "" {
		bot, err := tginfra.NewBot(cfg.Telegram.BotToken)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init telegram bot: %w", err)
		}
		worker.AttachTelegram(bot, cfg.Telegram.AdminChatID)
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, admin review alerts disabled")
	}

	var cleanupJob *cleanup.Job
	s3Client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		logger.Warn("s3 unavailable, media cleanup disabled", zap.Error(err))
	} else {
		storage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
		cleanupJob = cleanup.NewMediaCleanupJob(pgrepo.NewProfileRepo(pool), storage, cfg.Worker.MediaRetention, logger)
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		postgres:   pool,
		redis:      redisClient,
		worker:     worker,
		cleanupJob: cleanupJob,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker app started")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.worker.Run(ctx)
	})
	if a.cleanupJob != nil {
		g.Go(func() error {
			a.cleanupJob.RunEvery(ctx, a.cfg.Worker.CleanupInterval)
			return nil
		})
	}
	return g.Wait()
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
