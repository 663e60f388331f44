package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/capshop-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/capshop-backend/api/controllers/webhooks"
	"github.com/angelmondragon/capshop-backend/api/routes"
	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/checkout"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/internal/orders"
	"github.com/angelmondragon/capshop-backend/internal/session"
	stripewebhook "github.com/angelmondragon/capshop-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/db"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/metrics"
	"github.com/angelmondragon/capshop-backend/pkg/migrate"
	"github.com/angelmondragon/capshop-backend/pkg/redis"
	"github.com/angelmondragon/capshop-backend/pkg/stripe"
)

const (
	shutdownTimeout       = 15 * time.Second
	stripeEventTTL        = 72 * time.Hour
	stripeEventGuardScope = "stripe_event"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers = append(closers, dbClient)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
	} else {
		logg.Warn(context.Background(), "redis not configured: idempotency, promo rate limiting and webhook dedupe are disabled")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(promRegistry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	requireService(logg, "catalog", err)

	discountService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()), logg, time.Now)
	requireService(logg, "discounts", err)

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(dbClient.DB()),
		Logger:  logg,
		Metrics: storefrontMetrics,
	})
	requireService(logg, "orders", err)

	registry, err := session.NewRegistry(session.RegistryParams{
		Logger:        logg,
		Validator:     discounts.NewLocalValidator(discountService, storefrontMetrics),
		Catalog:       catalogService,
		Metrics:       storefrontMetrics,
		IdleTTL:       cfg.Session.IdleTTL,
		MaxImageBytes: cfg.Media.MaxUploadBytes(),
	})
	requireService(logg, "session registry", err)

	var (
		stripeClient         *stripe.Client
		checkoutService      controllers.CheckoutService
		stripeWebhookService webhookcontrollers.StripeWebhookService
		stripeWebhookGuard   webhookcontrollers.StripeWebhookGuard
	)
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		requireService(logg, "stripe client", err)

		checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
			Gateway:          checkout.NewStripeGateway(),
			Orders:           ordersService,
			Logger:           logg,
			Metrics:          storefrontMetrics,
			PublicURL:        cfg.App.PublicURL,
			Currency:         stripeClient.Currency(),
			AllowedCountries: stripeClient.AllowedCountries(),
		})
		requireService(logg, "checkout", err)
		checkoutService = checkoutSvc

		webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{Checkout: checkoutSvc, Logger: logg})
		requireService(logg, "stripe webhook", err)
		stripeWebhookService = webhookSvc

		if redisClient != nil {
			guard, err := stripewebhook.NewIdempotencyGuard(redisClient, stripeEventTTL, stripeEventGuardScope)
			requireService(logg, "stripe webhook guard", err)
			stripeWebhookGuard = guard
		}
	} else {
		logg.Warn(context.Background(), "stripe not configured: checkout routes will fail")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	go func() {
		if err := registry.Run(ctx, cfg.Session.SweepInterval); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "session sweeper stopped unexpectedly", err)
		}
	}()

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			storefrontMetrics,
			registry,
			catalogService,
			discountService,
			ordersService,
			checkoutService,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	<-shutdownDone
	logg.Info(ctx, "api server shut down gracefully")
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
