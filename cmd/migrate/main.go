package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/pkg/db"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "roll back N migrations instead of applying pending ones")
	showVersion := flag.Bool("version", false, "print the current schema version and exit")
	path := flag.String("path", "file://migrations", "migrations source URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: "explorepe-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	database := zap.String("database", maskDatabaseURL(cfg.Database.URL))

	switch {
	case *showVersion:
		version, dirty, err := db.MigrationVersion(cfg.Database.URL, *path)
		if err != nil {
			logger.Error("Failed to read migration version", database, zap.Error(err))
			os.Exit(1)
		}
		logger.Info("Current schema version", database, zap.Uint("version", version), zap.Bool("dirty", dirty))

	case *down > 0:
		logger.Info("Rolling back migrations", database, zap.Int("steps", *down))
		if err := db.RollbackMigrations(cfg.Database.URL, *path, *down); err != nil {
			logger.Error("Failed to roll back migrations", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("Rollback completed")

	default:
		logger.Info("Starting database migrations", database)
		if err := db.RunMigrations(cfg.Database.URL, *path); err != nil {
			logger.Error("Failed to run migrations", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("Database migrations completed successfully")
	}
}

// maskDatabaseURL hides the password in the connection string
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
