package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/metrics"
)

// DirectoryService serves the public guide and explorer pages
type DirectoryService struct {
	profileRepo repository.ProfileRepositoryInterface
	reviewRepo  repository.ReviewRepositoryInterface
}

// NewDirectoryService creates a new directory service instance
func NewDirectoryService(profileRepo repository.ProfileRepositoryInterface, reviewRepo repository.ReviewRepositoryInterface) *DirectoryService {
	return &DirectoryService{profileRepo: profileRepo, reviewRepo: reviewRepo}
}

// ListGuides returns active guides matching filter
func (s *DirectoryService) ListGuides(ctx context.Context, filter models.GuideFilter) ([]models.PublicProfile, error) {
	guides, err := s.profileRepo.ListActiveGuides(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list guides: %w", err)
	}

	out := make([]models.PublicProfile, 0, len(guides))
	for _, g := range guides {
		out = append(out, g.ToPublicResponse())
	}
	return out, nil
}

// GetGuide returns an active guide with its most recent reviews
func (s *DirectoryService) GetGuide(ctx context.Context, slug string) (*models.GuideDetailResponse, error) {
	guide, err := s.publicProfile(ctx, slug, models.UserTypeGuide, msgGuideNotFound)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByGuide(ctx, guide.ID, models.RecentReviewsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	metrics.ProfileViews.WithLabelValues(string(models.UserTypeGuide)).Inc()
	return &models.GuideDetailResponse{Guide: guide.ToPublicResponse(), Reviews: reviews}, nil
}

// GetExplorer returns an active explorer profile
func (s *DirectoryService) GetExplorer(ctx context.Context, slug string) (*models.PublicProfile, error) {
	explorer, err := s.publicProfile(ctx, slug, models.UserTypeExplorer, msgProfileNotFound)
	if err != nil {
		return nil, err
	}

	metrics.ProfileViews.WithLabelValues(string(models.UserTypeExplorer)).Inc()
	pub := explorer.ToPublicResponse()
	return &pub, nil
}

// publicProfile loads slug and hides inactive profiles and profiles of the other type
func (s *DirectoryService) publicProfile(ctx context.Context, slug string, userType models.UserType, notFoundMsg string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.WithUserMessage(err, notFoundMsg)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.Active || profile.UserType != userType {
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError(string(userType)), notFoundMsg)
	}
	return profile, nil
}
