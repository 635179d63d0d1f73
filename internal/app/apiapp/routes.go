package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Krunal123456/Bari/internal/config"
	"github.com/Krunal123456/Bari/internal/domain/enums"
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
	"github.com/Krunal123456/Bari/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	AdminAuthService   *adminauthsvc.Service
	AdminService       *adminsvc.Service
	AuditService       *audit.Service
	AccessService      *accesssvc.Service
	CMSService         *cmssvc.Service
	DirectoryService   *directorysvc.Service
	EntitlementService *entsvc.Service
	InterestService    *interestsvc.Service
	MediaService       *mediasvc.Service
	ModerationService  *modsvc.Service
	PaymentService     *paymentsvc.Service
	PostService        *postsvc.Service
	LiveFeed           http.Handler
	ProfileService     *profilesvc.Service
	PushTokens         *notifysvc.Tokens
	Inbox              *notifysvc.Inbox
	Relay              *notifysvc.Relay
	NotifyFailures     *notifysvc.Failures
	HealthProbes       map[string]handlers.Probe
	Logger             *zap.Logger
	Config             config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Config.Payments.BaseURL)
	healthHandler := handlers.NewHealthHandler(deps.HealthProbes)
	meHandler := handlers.NewMeHandler(deps.AuthService, deps.EntitlementService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService, deps.AccessService, deps.AuthService, deps.MediaService)
	interestsHandler := handlers.NewInterestsHandler(deps.InterestService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService, deps.MediaService)
	postsHandler := handlers.NewPostsHandler(deps.PostService, deps.LiveFeed)
	paymentsHandler := handlers.NewPaymentsHandler(deps.PaymentService, deps.Logger)
	notificationsHandler := handlers.NewNotificationsHandler(deps.PushTokens, deps.Inbox, deps.Relay, deps.NotifyFailures)
	directoryHandler := handlers.NewDirectoryHandler(deps.DirectoryService)
	cmsHandler := handlers.NewCMSHandler(deps.CMSService)
	adminHandler := handlers.NewAdminHandler(deps.AdminService, deps.AuditService, deps.AdminAuthService, deps.Logger)
	kundliHandler := handlers.NewKundliHandler()

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	optionalAuthMW := OptionalAuth(deps.AuthService)
	adminRoleMW := RequireRole(enums.RoleAdmin, enums.RoleSuperAdmin)
	superAdminRoleMW := RequireRole(enums.RoleSuperAdmin)

	r.Get("/healthz", healthHandler.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Post("/kundli/generate", kundliHandler.Generate)
		r.Post("/stripe/webhook", paymentsHandler.Webhook)
		r.With(authMW).Post("/stripe/create-checkout-session", paymentsHandler.CreateCheckout)
		r.With(authMW, adminRoleMW).Post("/send-notification", notificationsHandler.Send)
	})

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Get("/google/start", authHandler.GoogleStart)
		r.Get("/google/callback", authHandler.GoogleCallback)
		r.Post("/password/forgot", authHandler.ForgotPassword)
		r.Post("/password/reset", authHandler.ResetPassword)
		r.With(authMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(optionalAuthMW).Get("/posts", postsHandler.Active)
		r.With(optionalAuthMW).Get("/posts/live", postsHandler.Live)
		r.Get("/cms/{type}", cmsHandler.Get)
		r.Get("/directory", directoryHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Get("/me", meHandler.Get)
			r.Post("/me/onboarding", meHandler.CompleteOnboarding)

			r.Route("/matrimony/profiles", func(r chi.Router) {
				r.Post("/", profileHandler.Create)
				r.Get("/", profileHandler.Search)
				r.Get("/me", profileHandler.GetOwn)
				r.Get("/{id}", profileHandler.Get)
				r.Patch("/{id}", profileHandler.Update)
				r.Post("/{id}/submit", profileHandler.Submit)
				r.Post("/{id}/photos", profileHandler.UploadPhoto)
				r.Delete("/{id}/photos", profileHandler.DeletePhoto)
				r.Post("/{id}/interests", interestsHandler.Send)
			})
			r.Get("/interests/quota", interestsHandler.Quota)

			r.Get("/subscription", paymentsHandler.Subscription)

			r.Put("/notifications/token", notificationsHandler.RegisterToken)
			r.Delete("/notifications/token", notificationsHandler.RemoveToken)
			r.Get("/notifications", notificationsHandler.List)
			r.Post("/notifications/{id}/read", notificationsHandler.MarkRead)

			r.Get("/posts/read-status", postsHandler.ReadStatus)
			r.Put("/posts/{id}/read", postsHandler.MarkRead)

			r.Post("/directory", directoryHandler.Submit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authMW, adminRoleMW)

			r.Route("/matrimony/profiles", func(r chi.Router) {
				r.Get("/", moderationHandler.List)
				r.Get("/{id}", moderationHandler.Get)
				r.Post("/{id}/approve", moderationHandler.Approve)
				r.Post("/{id}/reject", moderationHandler.Reject)
				r.Post("/{id}/request-changes", moderationHandler.RequestChanges)
				r.Post("/{id}/spotlight", moderationHandler.Spotlight)
				r.Delete("/{id}", moderationHandler.Delete)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", postsHandler.AdminList)
				r.Post("/", postsHandler.Create)
				r.Post("/media", postsHandler.UploadMedia)
				r.Get("/{id}", postsHandler.AdminGet)
				r.Put("/{id}", postsHandler.Update)
				r.Delete("/{id}", postsHandler.Archive)
			})

			r.Get("/directory", directoryHandler.AdminList)
			r.Post("/directory/{id}/approve", directoryHandler.Approve)
			r.Delete("/directory/{id}", directoryHandler.Delete)

			r.Get("/cms", cmsHandler.List)
			r.Put("/cms/{type}", cmsHandler.Upsert)

			r.Get("/notifications/dead", notificationsHandler.DeadLetters)

			r.Get("/activity", adminHandler.Activity)
			r.Get("/stats", adminHandler.Stats)
			r.Get("/export/matrimony", adminHandler.ExportProfiles)
			r.Get("/export/directory", adminHandler.ExportDirectory)
			r.Post("/subscriptions/{userId}/downgrade", paymentsHandler.Downgrade)
			r.Post("/totp/setup", adminHandler.TOTPSetup)
			r.Post("/totp/confirm", adminHandler.TOTPConfirm)

			r.With(superAdminRoleMW).Post("/users/{id}/promote", adminHandler.Promote)
			r.With(superAdminRoleMW).Post("/users/{id}/demote", adminHandler.Demote)
		})
	})
}
