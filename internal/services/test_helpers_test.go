package services_test

import (
	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://explore.pe"
	cfg.Session.JWTSecret = "test-secret-with-enough-length-123"
	cfg.Session.JWTIssuer = "explorepe-test"
	cfg.Session.SessionTTLHours = 24
	cfg.SMTP.SendTimeoutSeconds = 1
	cfg.Profiles.SlugMaxAttempts = 10
	cfg.Profiles.MaxGuideImages = 3
	cfg.Profiles.MaxExplorerImages = 2
	cfg.Profiles.BcryptCost = bcrypt.MinCost
	return cfg
}
