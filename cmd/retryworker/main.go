// The retry worker drains the failed-email queue once and exits. It is
// meant to run from cron; overlapping invocations are safe because each
// record is claimed with a conditional update before sending.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/biuromax/backend/internal/config"
	"github.com/biuromax/backend/internal/logging"
	"github.com/biuromax/backend/internal/mailer"
	"github.com/biuromax/backend/internal/repository"
	"github.com/biuromax/backend/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logging.Setup("retryworker")

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	failedEmailRepo := repository.NewPgFailedEmailRepository(pool)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)

	retryService := service.NewRetryService(failedEmailRepo, smtpMailer, cfg.AdminEmail, cfg.EmailMaxRetries)

	summary, err := retryService.ProcessPending(ctx)
	if err != nil {
		logging.Fatal("retry pass failed", "error", err)
	}

	slog.Info("retry pass completed",
		"scanned", summary.Scanned,
		"sent", summary.Sent,
		"retried", summary.Retried,
		"failed", summary.Failed,
		"alerted", summary.Alerted,
	)
}
