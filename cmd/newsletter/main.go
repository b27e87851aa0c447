// Command newsletter sends the weekly campaign to every active subscriber.
// It is meant to run from a scheduler once a week.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/mailer"
	"github.com/mescude1/skinly-ecomm/internal/repository/postgres"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Location: cfg.Location()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logging.Error().Err(err).Msg("newsletter_exit")
		os.Exit(1)
	}
	defer db.Close()

	svc := service.NewNewsletterService(
		postgres.NewNewsletterPostgres(db),
		postgres.NewProductPostgres(db),
		mailer.NewSMTP(cfg.SMTP),
		cfg.BaseURL,
	)

	res, err := svc.SendWeekly(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("newsletter_failed")
		db.Close()
		os.Exit(1)
	}
	if res.Failed > 0 && res.Sent == 0 {
		logging.Warn().Int("failed", res.Failed).Msg("newsletter_nothing_delivered")
	}
}
