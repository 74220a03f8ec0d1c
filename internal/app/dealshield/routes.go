// Package dealshield предоставляет маршруты для основного приложения.
package dealshield

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/dealshield/internal/config"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/auth/adminlogin"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/auth/otpsend"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/auth/otpverify"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/billing/status"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/deal/analyze"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/deal/list"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/deal/parse"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/deal/read"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/files/confirm"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/files/presign"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/health"
	"github.com/magabrotheeeer/dealshield/internal/http/handlers/me"
	"github.com/magabrotheeeer/dealshield/internal/http/middlewarectx"
	"github.com/magabrotheeeer/dealshield/internal/lib/jwt"
	analysisservice "github.com/magabrotheeeer/dealshield/internal/services/analysis"
	authservice "github.com/magabrotheeeer/dealshield/internal/services/auth"
	billingservice "github.com/magabrotheeeer/dealshield/internal/services/billing"
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker,
	authService *authservice.AuthService, dealService *dealservice.DealService,
	billingService *billingservice.BillingService, analysisService *analysisservice.AnalysisService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.CORSMiddleware(cfg.FrontendOrigin),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New().ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger)).
			Post("/auth/otp/send", otpsend.New(logger, authService).ServeHTTP)
		r.Post("/auth/otp/verify", otpverify.New(logger, authService).ServeHTTP)
		r.Post("/auth/admin/login", adminlogin.New(logger, authService).ServeHTTP)
		r.Get("/billing/status", status.New(logger, billingService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Get("/me", me.New(logger).ServeHTTP)
			r.Post("/files/presign", presign.New(logger, dealService).ServeHTTP)
			r.Post("/files/confirm", confirm.New(logger, dealService).ServeHTTP)
			r.Post("/deals/parse", parse.New(logger, dealService).ServeHTTP)
			r.Get("/deals/list", list.New(logger, dealService).ServeHTTP)
			r.Get("/deals/{id}", read.New(logger, dealService).ServeHTTP)
			r.Post("/deals/analyze", analyze.New(logger, analysisService).ServeHTTP)
			r.Post("/billing/checkout", checkout.New(logger, billingService).ServeHTTP)
		})

		// Webhook endpoint (без аутентификации)
		r.Post("/stripe/webhook", webhook.New(logger, billingService, cfg.Stripe.WebhookSecret).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
