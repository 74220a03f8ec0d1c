// Package dealshield собирает зависимости HTTP-приложения и управляет
// его жизненным циклом.
package dealshield

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/dealshield/internal/cache"
	"github.com/magabrotheeeer/dealshield/internal/config"
	"github.com/magabrotheeeer/dealshield/internal/filestore"
	"github.com/magabrotheeeer/dealshield/internal/gemini"
	"github.com/magabrotheeeer/dealshield/internal/lib/jwt"
	"github.com/magabrotheeeer/dealshield/internal/lib/smtp"
	"github.com/magabrotheeeer/dealshield/internal/migrations"
	analysisservice "github.com/magabrotheeeer/dealshield/internal/services/analysis"
	authservice "github.com/magabrotheeeer/dealshield/internal/services/auth"
	billingservice "github.com/magabrotheeeer/dealshield/internal/services/billing"
	dealservice "github.com/magabrotheeeer/dealshield/internal/services/deal"
	senderservice "github.com/magabrotheeeer/dealshield/internal/services/sender"
	"github.com/magabrotheeeer/dealshield/internal/storage/repository"
	"github.com/magabrotheeeer/dealshield/internal/stripeapi"
)

// App хранит собранный HTTP-сервер и его ресурсы.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New собирает все зависимости приложения: хранилище, миграции, кеш,
// внешние клиенты, сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL, cfg.RefreshTTL)

	geminiClient := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model)
	filestoreClient := filestore.NewClient(cfg.FileStorage)
	stripeClient := stripeapi.NewClient(cfg.Stripe.SecretKey)
	smtpTransport := smtp.NewTransport(cfg, logger)

	senderService := senderservice.NewSenderService(logger, smtpTransport)
	authService := authservice.NewAuthService(db, senderService, jwtMaker,
		cfg.ServicePassword, cfg.AdminPassword, logger)
	dealService := dealservice.NewDealService(db, filestoreClient, geminiClient, logger)
	billingService := billingservice.NewBillingService(db, stripeClient,
		cfg.Stripe.PriceID, cfg.FrontendOrigin, logger)
	analysisService := analysisservice.NewAnalysisService(db, cacheRedis, geminiClient, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, jwtMaker,
		authService, dealService, billingService, analysisService)

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
