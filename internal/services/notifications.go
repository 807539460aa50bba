package services

import (
	"context"
	"errors"
	"time"

	"github.com/explorepe/explorepe-api/pkg/geocoding"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/mailer"
	"go.uber.org/zap"
)

const defaultEmailTimeout = 10 * time.Second

func emailTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultEmailTimeout
	}
	return time.Duration(seconds) * time.Second
}

// sendEmail delivers msg within timeout. Failures are logged and swallowed:
// email never rolls back a committed write.
func sendEmail(ctx context.Context, sender mailer.Sender, msg mailer.Message, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := sender.Send(ctx, msg); err != nil {
		logger.Error("Failed to send email",
			zap.String("template", msg.Template),
			zap.Error(err))
	}
}

// sendEmailAsync is sendEmail detached from the request lifetime
func sendEmailAsync(sender mailer.Sender, msg mailer.Message, timeout time.Duration) {
	go sendEmail(context.Background(), sender, msg, timeout)
}

// geocodeLocation resolves location to coordinates, best effort.
// Returns nils when geocoding is disabled or fails.
func geocodeLocation(ctx context.Context, geocoder Geocoder, location string) (lat, lng *float64) {
	if geocoder == nil || !geocoder.Enabled() || location == "" {
		return nil, nil
	}

	loc, err := geocoder.Geocode(ctx, location)
	if err != nil {
		if !errors.Is(err, geocoding.ErrNoResults) {
			logger.Warn("Geocoding failed", zap.String("location", location), zap.Error(err))
		}
		return nil, nil
	}
	return &loc.Lat, &loc.Lng
}
