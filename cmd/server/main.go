// Command server starts the visa pathway assessment HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itnext-dev/visa-pathway/internal/adapter/ai/gemini"
	"github.com/itnext-dev/visa-pathway/internal/adapter/cache"
	"github.com/itnext-dev/visa-pathway/internal/adapter/events"
	httpserver "github.com/itnext-dev/visa-pathway/internal/adapter/httpserver"
	"github.com/itnext-dev/visa-pathway/internal/adapter/observability"
	"github.com/itnext-dev/visa-pathway/internal/adapter/repo/postgres"
	"github.com/itnext-dev/visa-pathway/internal/app"
	"github.com/itnext-dev/visa-pathway/internal/config"
	"github.com/itnext-dev/visa-pathway/internal/domain"
	"github.com/itnext-dev/visa-pathway/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	shutdownTracer, err := observability.SetupTracing(cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		slog.Error("db connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		slog.Error("schema migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepo(pool)
	assessRepo := postgres.NewAssessmentRepo(pool)
	countryRepo := postgres.NewCountryRepo(pool)
	activityRepo := postgres.NewActivityRepo(pool)
	feedbackRepo := postgres.NewFeedbackRepo(pool)

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Error("redis connect failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	// The activity event stream is optional; the service runs without a broker.
	var publisher domain.EventPublisher
	if cfg.EventsEnabled() {
		producer, err := events.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic)
		if err != nil {
			slog.Error("kafka producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	}

	model := gemini.New(cfg)

	authSvc := usecase.NewAuthService(userRepo, redisClient, cfg.JWTSecret, cfg.TokenTTL, cfg.VerificationCodeTTL)
	profileSvc := usecase.NewProfileService(userRepo)
	assessSvc := usecase.NewAssessmentService(model, assessRepo, activityRepo, publisher, cfg.MaxOutputTokens)
	compareSvc := usecase.NewComparisonService(assessSvc, countryRepo)
	countrySvc := usecase.NewCountryService(countryRepo, redisClient, activityRepo, cfg.CountryCacheTTL)
	feedbackSvc := usecase.NewFeedbackService(feedbackRepo)
	activitySvc := usecase.NewActivityService(activityRepo, publisher)
	adminSvc := usecase.NewAdminService(userRepo, activityRepo)

	seedCountries(ctx, cfg, countryRepo)
	seedAdmin(ctx, cfg, userRepo)

	srv := &httpserver.Server{
		Cfg:         cfg,
		Auth:        authSvc,
		Profiles:    profileSvc,
		Assessments: assessSvc,
		Comparisons: compareSvc,
		Countries:   countrySvc,
		Feedback:    feedbackSvc,
		Activities:  activitySvc,
		Admin:       adminSvc,
		DBCheck:     pool.Ping,
		RedisCheck:  redisClient.Ping,
	}

	handler := app.BuildRouter(cfg, srv)
	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
}
