package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/config"
	"github.com/Krunal123456/Bari/internal/infra/mail"
	mongoinfra "github.com/Krunal123456/Bari/internal/infra/mongo"
	s3infra "github.com/Krunal123456/Bari/internal/infra/s3"
	mongorepo "github.com/Krunal123456/Bari/internal/repo/mongo"
	pgrepo "github.com/Krunal123456/Bari/internal/repo/postgres"
	redrepo "github.com/Krunal123456/Bari/internal/repo/redis"
	accesssvc "github.com/Krunal123456/Bari/internal/services/access"
	adminsvc "github.com/Krunal123456/Bari/internal/services/admin"
	adminauthsvc "github.com/Krunal123456/Bari/internal/services/adminauth"
	"github.com/Krunal123456/Bari/internal/services/audit"
	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	cmssvc "github.com/Krunal123456/Bari/internal/services/cms"
	directorysvc "github.com/Krunal123456/Bari/internal/services/directory"
	entsvc "github.com/Krunal123456/Bari/internal/services/entitlements"
	interestsvc "github.com/Krunal123456/Bari/internal/services/interests"
	mediasvc "github.com/Krunal123456/Bari/internal/services/media"
	modsvc "github.com/Krunal123456/Bari/internal/services/moderation"
	notifysvc "github.com/Krunal123456/Bari/internal/services/notify"
	paymentsvc "github.com/Krunal123456/Bari/internal/services/payments"
	postsvc "github.com/Krunal123456/Bari/internal/services/posts"
	profilesvc "github.com/Krunal123456/Bari/internal/services/profiles"
	ratesvc "github.com/Krunal123456/Bari/internal/services/rate"
	"github.com/Krunal123456/Bari/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	mongo      *mongodrv.Client
	s3         *minio.Client
	hub        *postsvc.Hub
	httpRouter http.Handler
}

// New wires the API. Any backing store that cannot be reached leaves the app
// running in degraded mode; the affected endpoints fail per request.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.HandlerTimeout)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var (
		mongoClient *mongodrv.Client
		mongoDB     *mongodrv.Database
	)
	if strings.TrimSpace(cfg.Mongo.URI) != "" {
		if c, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}); err != nil {
			log.Warn("mongo init failed, activity log and inbox disabled", zap.Error(err))
		} else {
			mongoClient, mongoDB = c, db
		}
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	userRepo := pgrepo.NewUserRepo(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	interestRepo := pgrepo.NewInterestRepo(pool)
	subscriptionRepo := pgrepo.NewSubscriptionRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)
	directoryRepo := pgrepo.NewDirectoryRepo(pool)
	cmsRepo := pgrepo.NewCMSRepo(pool)
	statsRepo := pgrepo.NewStatsRepo(pool)
	pushTokenRepo := pgrepo.NewPushTokenRepo(pool)

	var (
		activityRepo audit.Repo
		inboxStore   notifysvc.InboxStore
	)
	if mongoDB != nil {
		activityRepo = mongorepo.NewActivityLogRepo(mongoDB)
		inboxStore = mongorepo.NewNotificationRepo(mongoDB)
	}

	auditService := audit.NewService(activityRepo, log)
	notifyQueue := redrepo.NewNotifyQueue(redisClient)
	dispatcher := notifysvc.NewDispatcher(notifyQueue, log)
	inbox := notifysvc.NewInbox(inboxStore, dispatcher, log)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, redrepo.NewSessionRepo(redisClient), userRepo, cfg.Auth.RefreshTTL)
	authService.AttachTokens(redrepo.NewOneTimeRepo(redisClient))
	if sender, err := mail.NewSender(mail.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		User:     cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.From,
	}); err != nil {
		log.Warn("mail disabled, password reset links will not be sent", zap.Error(err))
	} else {
		authService.AttachPasswordReset(sender, authsvc.PasswordResetConfig{
			BaseURL: cfg.Payments.BaseURL,
			TTL:     cfg.Auth.PasswordResetTTL,
		})
	}
	if google, err := authsvc.NewGoogleOAuth(cfg.Auth.Google.ClientID, cfg.Auth.Google.ClientSecret, cfg.Auth.Google.RedirectURL); err != nil {
		log.Info("google sign-in disabled", zap.Error(err))
	} else {
		authService.AttachGoogle(google)
	}

	entitlementService := entsvc.NewService(subscriptionRepo, log)
	entitlementService.AttachCache(redrepo.NewEntitlementCache(redisClient), cfg.Entitlements.CacheFreshness)

	mediaStorage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	if s3Client != nil {
		if err := mediaStorage.EnsureBucket(ctx); err != nil {
			log.Warn("s3 bucket check failed", zap.String("bucket", cfg.S3.Bucket), zap.Error(err))
		}
	}
	mediaService := mediasvc.NewService(mediaStorage)

	profileService := profilesvc.NewService(profileRepo)
	profileService.AttachPhotos(mediaService)
	profileService.AttachAlerts(dispatcher, cfg.Payments.BaseURL)

	moderationService := modsvc.NewService(profileRepo, auditService, inbox)
	accessService := accesssvc.NewService(profileRepo, entitlementService)

	interestService := interestsvc.NewService(interestRepo, profileRepo, entitlementService, cfg.Quota.FreeInterestsPerDay)
	interestService.AttachLimiter(ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), "interest", cfg.Quota.PaidRatePerMinute, cfg.Quota.PaidRatePer10Sec))
	interestService.AttachNotifier(inbox)

	hub := postsvc.NewHub(log)
	postService := postsvc.NewService(postRepo)
	postService.AttachMedia(mediaService)
	postService.AttachBroadcast(dispatcher, hub)
	postService.AttachAuditor(auditService)

	var checkout paymentsvc.CheckoutProvider
	if strings.TrimSpace(cfg.Payments.StripeSecretKey) != "" {
		if c, err := paymentsvc.NewStripeCheckout(cfg.Payments.StripeSecretKey); err != nil {
			log.Warn("stripe disabled, checkout falls back to direct activation", zap.Error(err))
		} else {
			checkout = c
		}
	}
	paymentService := paymentsvc.NewService(paymentsvc.Dependencies{
		Subscriptions: subscriptionRepo,
		Entitlements:  entitlementService,
		Checkout:      checkout,
		Auditor:       auditService,
		Logger:        log,
	}, paymentsvc.Config{
		BaseURL:       cfg.Payments.BaseURL,
		WebhookSecret: cfg.Payments.StripeWebhookSecret,
		Currency:      cfg.Payments.Currency,
		AmountMinor:   cfg.Payments.AmountMinor,
		PaidDuration:  cfg.Payments.PaidDuration,
	})

	adminService := adminsvc.NewService(adminsvc.Dependencies{
		Stats:     statsRepo,
		Users:     userRepo,
		Sessions:  authService,
		Profiles:  profileRepo,
		Directory: directoryRepo,
		Auditor:   auditService,
	}, log)

	probes := map[string]handlers.Probe{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"postgres": func(ctx context.Context) error {
			if pool == nil {
				return errors.New("postgres not connected")
			}
			return pool.Ping(ctx)
		},
		"s3": func(ctx context.Context) error {
			if s3Client == nil {
				return mediasvc.ErrStorageUnavailable
			}
			_, err := s3Client.BucketExists(ctx, cfg.S3.Bucket)
			return err
		},
		// nil marks mongo as disabled rather than down when no uri is set.
		"mongo": nil,
	}
	if mongoClient != nil {
		probes["mongo"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }
	} else if strings.TrimSpace(cfg.Mongo.URI) != "" {
		probes["mongo"] = func(context.Context) error { return errors.New("mongo not connected") }
	}

	RegisterRoutes(r, Dependencies{
		AuthService:        authService,
		AdminAuthService:   adminauthsvc.NewService(userRepo, cfg.Auth.TOTPIssuer),
		AdminService:       adminService,
		AuditService:       auditService,
		AccessService:      accessService,
		CMSService:         cmssvc.NewService(cmsRepo, auditService),
		DirectoryService:   directorysvc.NewService(directoryRepo, auditService),
		EntitlementService: entitlementService,
		InterestService:    interestService,
		MediaService:       mediaService,
		ModerationService:  moderationService,
		PaymentService:     paymentService,
		PostService:        postService,
		LiveFeed:           hub,
		ProfileService:     profileService,
		PushTokens:         notifysvc.NewTokens(pushTokenRepo),
		Inbox:              inbox,
		Relay:              notifysvc.NewRelay(dispatcher),
		NotifyFailures:     notifysvc.NewFailures(notifyQueue),
		HealthProbes:       probes,
		Logger:             log,
		Config:             cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		mongo:      mongoClient,
		s3:         s3Client,
		hub:        hub,
		httpRouter: r,
	}, nil
}

// Run serves until Shutdown. The live feed hub lives as long as ctx.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
