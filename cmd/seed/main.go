package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/capshop-backend/internal/catalog"
	"github.com/angelmondragon/capshop-backend/internal/discounts"
	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/angelmondragon/capshop-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/capshop-backend/pkg/errors"
	"github.com/angelmondragon/capshop-backend/pkg/logger"
	"github.com/angelmondragon/capshop-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	path := flag.String("file", "", "catalog fixture json (defaults to the bundled fixture)")
	skipDiscounts := flag.Bool("skip-discounts", false, "only import catalog records")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})

	raw := defaultFixture
	if *path != "" {
		raw, err = os.ReadFile(*path)
		requireResource(ctx, logg, "fixture file", err)
	}
	f, err := parseFixture(raw)
	requireResource(ctx, logg, "fixture", err)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), logg)
	requireResource(ctx, logg, "catalog service", err)
	if err := catalogService.Import(ctx, f.Seed); err != nil {
		logg.Error(ctx, "catalog import failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"products":   len(f.Products),
		"base_hats":  len(f.BaseHats),
		"categories": len(f.Categories),
	}), "catalog imported")

	if *skipDiscounts {
		return
	}

	discountService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()), logg, time.Now)
	requireResource(ctx, logg, "discount service", err)

	created := 0
	for _, code := range f.DiscountCodes {
		codeCtx := logg.WithField(ctx, "code", code.Code)
		if _, err := discountService.Create(codeCtx, code.input()); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				logg.Info(codeCtx, "discount code already present")
				continue
			}
			logg.Error(codeCtx, "discount code seed failed", err)
			os.Exit(1)
		}
		created++
	}
	logg.Info(logg.WithField(ctx, "created", created), "discount codes seeded")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
