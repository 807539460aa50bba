package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"go.uber.org/zap"
)

// AdminService implements profile moderation. Callers must already hold an admin session.
type AdminService struct {
	profileRepo repository.ProfileRepositoryInterface
	storage     ImageStorage
	backfiller  *SlugBackfiller
}

// NewAdminService creates a new admin service instance. storage may be nil.
func NewAdminService(profileRepo repository.ProfileRepositoryInterface, storage ImageStorage, backfiller *SlugBackfiller) *AdminService {
	return &AdminService{profileRepo: profileRepo, storage: storage, backfiller: backfiller}
}

// ListProfiles returns every profile newest first
func (s *AdminService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// ToggleActive flips a profile's public visibility
func (s *AdminService) ToggleActive(ctx context.Context, id string) (*models.ToggleActiveResponse, error) {
	profile, err := s.load(ctx, id)
	if err != nil {
		metrics.AdminActions.WithLabelValues("toggle_active", "not_found").Inc()
		return nil, err
	}

	active := !profile.Active
	if err := s.profileRepo.SetActive(ctx, id, active); err != nil {
		metrics.AdminActions.WithLabelValues("toggle_active", "error").Inc()
		return nil, fmt.Errorf("failed to toggle profile: %w", err)
	}

	metrics.AdminActions.WithLabelValues("toggle_active", "success").Inc()
	logger.Info("Profile visibility changed", zap.String("profile_id", id), zap.Bool("active", active))
	return &models.ToggleActiveResponse{Success: true, ID: id, Active: active}, nil
}

// DeleteProfile hard-deletes a non-admin profile together with its reviews and images
func (s *AdminService) DeleteProfile(ctx context.Context, id string) error {
	profile, err := s.load(ctx, id)
	if err != nil {
		metrics.AdminActions.WithLabelValues("delete", "not_found").Inc()
		return err
	}

	if profile.IsAdmin() {
		metrics.AdminActions.WithLabelValues("delete", "forbidden").Inc()
		return apperrors.WithUserMessage(apperrors.InvalidInputError("id", "admin profiles cannot be deleted"), msgCannotDeleteAdmin)
	}

	if err := s.profileRepo.Delete(ctx, id); err != nil {
		metrics.AdminActions.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	if s.storage != nil {
		for _, img := range profile.Images {
			if err := s.storage.DeleteImage(ctx, img.URL); err != nil {
				logger.Warn("Failed to delete image of removed profile", zap.String("url", img.URL), zap.Error(err))
			}
		}
	}

	metrics.AdminActions.WithLabelValues("delete", "success").Inc()
	logger.Info("Profile deleted", zap.String("profile_id", id), zap.String("slug", profile.Slug))
	return nil
}

// BackfillSlugs assigns slugs to legacy profiles
func (s *AdminService) BackfillSlugs(ctx context.Context) (*models.BackfillResult, error) {
	result, err := s.backfiller.Run(ctx)
	if err != nil {
		metrics.AdminActions.WithLabelValues("backfill_slugs", "error").Inc()
		return nil, fmt.Errorf("failed to backfill slugs: %w", err)
	}
	metrics.AdminActions.WithLabelValues("backfill_slugs", "success").Inc()
	return result, nil
}

func (s *AdminService) load(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.WithUserMessage(err, msgProfileNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}
