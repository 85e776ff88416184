package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biuromax/backend/internal/config"
	"github.com/biuromax/backend/internal/handler"
	"github.com/biuromax/backend/internal/logging"
	"github.com/biuromax/backend/internal/mailer"
	"github.com/biuromax/backend/internal/metrics"
	"github.com/biuromax/backend/internal/repository"
	"github.com/biuromax/backend/internal/service"
	"github.com/biuromax/backend/pkg/auth"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logging.Setup("server")

	cfg := config.Load()

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	submissionRepo := repository.NewPgSubmissionRepository(pool)
	rateLimitRepo := repository.NewPgRateLimitRepository(pool)
	failedEmailRepo := repository.NewPgFailedEmailRepository(pool)
	analyticsRepo := repository.NewPgAnalyticsRepository(pool)
	reqMetricRepo := repository.NewPgRequestMetricRepository(pool)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	prom := metrics.New()

	formService := service.NewFormService(submissionRepo, rateLimitRepo, failedEmailRepo, reqMetricRepo, smtpMailer, prom, service.FormConfig{
		IPSalt:     cfg.IPSalt,
		AdminEmail: cfg.AdminEmail,
		Limit:      config.DefaultFormLimit,
		Window:     config.DefaultFormWindow,
	})
	analyticsService := service.NewAnalyticsService(analyticsRepo, rateLimitRepo, service.AnalyticsConfig{
		IPSalt: cfg.IPSalt,
		Limit:  config.DefaultAnalyticsLimit,
		Window: config.DefaultAnalyticsWindow,
	})
	healthService := service.NewHealthService(pool, smtpMailer, analyticsRepo)
	metricsService := service.NewMetricsService(reqMetricRepo, failedEmailRepo, rateLimitRepo, submissionRepo)

	formHandler := handler.NewFormHandler(formService, submissionRepo)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, auth.Credentials{
		Token: cfg.AnalyticsAuthToken,
		User:  cfg.AnalyticsBasicUser,
		Pass:  cfg.AnalyticsBasicPass,
	})
	healthHandler := handler.NewHealthHandler(healthService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("POST /api/forms/{formType}", formHandler.Submit)
	mux.HandleFunc("POST /api/analytics/track", analyticsHandler.Track)
	mux.HandleFunc("GET /api/analytics/track", analyticsHandler.Export)
	mux.HandleFunc("GET /api/analytics/export", analyticsHandler.Export)

	// Admin routes (credentials enforced by the admin gate middleware)
	mux.HandleFunc("GET /api/admin/metrics", metricsHandler.Metrics)
	mux.HandleFunc("GET /api/admin/submissions", formHandler.AdminList)

	// Prometheus exposition (scraped internally)
	mux.Handle("GET /metrics", prom.Handler())

	adminCreds := auth.Credentials{Token: cfg.AdminAuthToken, User: cfg.AdminUser, Pass: cfg.AdminPass}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Chain(cfg.FrontendURL, adminCreds, cfg.Production(), mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "production", cfg.Production())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
