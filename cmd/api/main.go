package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mescude1/skinly-ecomm/docs"
	"github.com/mescude1/skinly-ecomm/internal/auth"
	"github.com/mescude1/skinly-ecomm/internal/cache"
	"github.com/mescude1/skinly-ecomm/internal/config"
	"github.com/mescude1/skinly-ecomm/internal/database"
	"github.com/mescude1/skinly-ecomm/internal/database/migration"
	"github.com/mescude1/skinly-ecomm/internal/events"
	handlers "github.com/mescude1/skinly-ecomm/internal/http/handler"
	"github.com/mescude1/skinly-ecomm/internal/http/middleware"
	"github.com/mescude1/skinly-ecomm/internal/logging"
	"github.com/mescude1/skinly-ecomm/internal/mailer"
	"github.com/mescude1/skinly-ecomm/internal/otel"
	"github.com/mescude1/skinly-ecomm/internal/partner"
	"github.com/mescude1/skinly-ecomm/internal/pricing"
	"github.com/mescude1/skinly-ecomm/internal/repository/postgres"
	"github.com/mescude1/skinly-ecomm/internal/service"
	"github.com/mescude1/skinly-ecomm/internal/storage"
)

// @title Skinly API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	loc := cfg.Location()
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Location: loc})

	if err := run(cfg, loc); err != nil {
		logging.Error().Err(err).Msg("api_exit")
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, loc *time.Location) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "skinly-api")
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}

	rdb, err := cache.NewClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()
	redisCache := cache.New(rdb)

	kafkaWriter := events.NewWriter(cfg.Kafka)
	defer kafkaWriter.Close()

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		return err
	}
	rules, err := pricing.RulesFromConfig(cfg.Store)
	if err != nil {
		return err
	}

	// Repositories
	products := postgres.NewProductPostgres(db)
	catalogRepo := postgres.NewCatalogPostgres(db)
	reviews := postgres.NewReviewPostgres(db)
	users := postgres.NewUserPostgres(db)
	tastes := postgres.NewTastePostgres(db)
	addresses := postgres.NewAddressPostgres(db)
	carts := postgres.NewCartPostgres(db)
	orders := postgres.NewOrderPostgres(db)
	coupons := postgres.NewCouponPostgres(db)
	wishlist := postgres.NewWishlistPostgres(db)
	newsletter := postgres.NewNewsletterPostgres(db)

	// Services
	recs := service.NewRecommendationService(users, tastes, products, objStore)
	deps := handlers.Deps{
		DB:              db,
		Tokens:          tokens,
		Catalog:         service.NewCatalogService(products, catalogRepo, reviews, recs, redisCache, objStore, cfg.BaseURL),
		Recommendations: recs,
		Cart:            service.NewCartService(carts, products, recs, rules, objStore),
		Checkout: service.NewCheckoutService(service.CheckoutDeps{
			Carts:     carts,
			Orders:    orders,
			Addresses: addresses,
			Coupons:   coupons,
			Idem:      redisCache,
			Feed:      redisCache,
			Publisher: events.NewPublisher(kafkaWriter),
			Rules:     rules,
		}),
		Inventory: service.NewInventoryService(products, redisCache, cfg.Store.LowStockThreshold),
		Reviews:   service.NewReviewService(reviews, products, recs),
		Wishlist:  service.NewWishlistService(wishlist, products, objStore),
		Profile: service.NewProfileService(service.ProfileDeps{
			Users:     users,
			Tastes:    tastes,
			Addresses: addresses,
			Reviews:   reviews,
			Orders:    orders,
			Coupons:   coupons,
		}),
		Auth:       service.NewAuthService(users, tokens),
		Newsletter: service.NewNewsletterService(newsletter, products, mailer.NewSMTP(cfg.SMTP), cfg.BaseURL),
		Partner:    partner.NewClient(cfg.Partner),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}
	deps.Metrics = reg

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    10 * 1024 * 1024,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Logger(loc))

	handlers.RegisterRoutes(app, deps)

	configureSwagger(cfg.BaseURL, cfg.AppHost)
	app.Get("/swagger/*", swagger.HandlerDefault)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", ":"+cfg.Port).Msg("api_listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("api_shutting_down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// configureSwagger points the generated docs at the public base URL.
func configureSwagger(baseURL, fallbackHost string) {
	host, scheme := fallbackHost, "http"
	if u, err := url.Parse(strings.TrimSpace(baseURL)); err == nil && u.Host != "" {
		host = u.Host
		if u.Scheme != "" {
			scheme = u.Scheme
		}
	}
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = []string{scheme}
}
