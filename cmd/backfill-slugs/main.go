package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/internal/cache"
	"github.com/explorepe/explorepe-api/internal/database/postgres"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/explorepe/explorepe-api/pkg/db"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"go.uber.org/zap"
)

// Assigns slugs to profiles created before slugs existed and rewrites
// legacy image entries. Safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "explorepe-backfill-slugs",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		URL:             cfg.Database.URL,
		MaxConns:        2,
		MinConns:        1,
		ApplicationName: "explorepe-backfill-slugs",
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	store := postgres.NewClient(pool)
	defer store.Close()

	// Never populated here; repository writes only invalidate it
	directory := cache.NewDirectoryCache(func(ctx context.Context) ([]*models.Profile, error) {
		return store.ListActiveProfiles(ctx, models.UserTypeGuide)
	}, cfg.Cache.DirectoryTTLSeconds)

	profileRepo := repository.NewProfileRepository(store, directory)
	backfiller := services.NewSlugBackfiller(profileRepo, services.NewSlugResolver(profileRepo, cfg.Profiles.SlugMaxAttempts))

	result, err := backfiller.Run(ctx)
	if err != nil {
		logger.Error("Backfill aborted", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("processed=%d slugs_assigned=%d images_normalized=%d failed=%d\n",
		result.Processed, result.SlugsAssigned, result.ImagesNormalized, len(result.Failed))
	if len(result.Failed) > 0 {
		os.Exit(2)
	}
}
