// Command worker consumes order events and keeps stock-derived state fresh:
// it drops the cached product feed and reports products running low.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/mescude1/skinly-ecomm/internal/cache"
	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/events"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/otel"
	"github.com/mescude1/skinly-ecomm/internal/repository/postgres"
	"github.com/mescude1/skinly-ecomm/internal/service"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Location: cfg.Location()})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("worker_exit")
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "skinly-worker")
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := cache.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	inventory := service.NewInventoryService(postgres.NewProductPostgres(db), cache.New(rdb), cfg.Store.LowStockThreshold)

	reader := events.NewReader(cfg.Kafka)
	defer reader.Close()

	logging.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Str("group_id", cfg.Kafka.GroupID).
		Msg("worker_started")

	return events.NewConsumer(reader, inventory.HandleOrderEvent).Run(ctx)
}
