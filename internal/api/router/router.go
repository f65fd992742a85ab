package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/jamilahmedansari/app-talk-to-my-lawyer/docs"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/handlers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/metrics"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Referral     *handlers.ReferralHandler
	Subscription *handlers.SubscriptionHandler
	Artifact     *handlers.ArtifactHandler
	Admin        *handlers.AdminHandler
	Delivery     *handlers.DeliveryHandler
}

func New(cfg *config.Config, log *logger.Logger, auditSvc audit.Service, h *Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(chimiddleware.CleanPath)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.DefaultCORS(cfg.Server.FrontendURL))
	r.Use(metrics.Middleware)
	r.Use(middleware.AuditInfo)
	r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, errors.NotFound("Route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorMessage(w, http.StatusMethodNotAllowed, errors.ErrCodeBadRequest, "Method not allowed")
	})

	require := func(action access.Action) func(http.Handler) http.Handler {
		return middleware.RequireAction(action, auditSvc)
	}
	authLimit := middleware.AuthRateLimit(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow, auditSvc)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
		r.Handle("/metrics", metrics.Handler())

		r.Get("/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)

		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/api/auth/register", h.Auth.Register)
			r.Post("/api/auth/register-with-coupon", h.Auth.RegisterWithCoupon)
			r.Post("/api/auth/login", h.Auth.Login)
			r.Post("/api/coupons/validate", h.Referral.ValidateCoupon)
		})
		r.Post("/api/auth/refresh", h.Auth.RefreshToken)
		r.Post("/api/auth/logout", h.Auth.Logout)

		r.Get("/api/subscription/packages", h.Subscription.Packages)
		r.Get("/api/documents/types", h.Artifact.DocumentTypes)

		// Authenticated by the shared webhook secret
		r.Post("/api/webhooks/checkout-completed", h.Subscription.CheckoutCompleted)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.Auth.JWTSecret))

		r.With(require(access.ActionViewProfile)).Get("/api/auth/me", h.Auth.Me)

		r.With(require(access.ActionViewReferralStats)).Get("/api/remote-employee/stats", h.Referral.Stats)

		r.With(require(access.ActionCreateCheckout)).Post("/api/subscription/create-checkout", h.Subscription.CreateCheckout)
		r.With(require(access.ActionViewQuota)).Get("/api/subscription/status", h.Subscription.Status)

		r.Route("/api/letters", func(r chi.Router) {
			r.With(require(access.ActionGenerateLetter)).Post("/generate", h.Artifact.GenerateLetter)
			r.With(require(access.ActionGenerateLetter)).Post("/submit", h.Artifact.GenerateLetter)
			r.With(require(access.ActionListOwnArtifacts)).Get("/", h.Artifact.ListLetters)
			r.With(require(access.ActionViewArtifact)).Get("/{id}", h.Artifact.Get)
			r.With(require(access.ActionExportArtifact)).Get("/{id}/pdf", h.Delivery.PDF)
			r.With(require(access.ActionSendArtifact)).Post("/{id}/send-email", h.Delivery.SendEmail)
		})

		// /api/documents/types is public and registered above
		r.With(require(access.ActionGenerateDocument)).Post("/api/documents/generate", h.Artifact.GenerateDocument)
		r.With(require(access.ActionListOwnArtifacts)).Get("/api/documents", h.Artifact.ListDocuments)

		r.Route("/api/admin", func(r chi.Router) {
			r.With(require(access.ActionListAccounts)).Get("/users", h.Admin.Users)
			r.With(require(access.ActionListAllArtifacts)).Get("/letters", h.Admin.Letters)
			r.With(require(access.ActionListAuditLog)).Get("/logs", h.Admin.Logs)
			r.With(require(access.ActionActivateSubscription)).Post("/subscriptions/{accountID}/activate", h.Admin.Activate)
		})
	})

	return r
}
