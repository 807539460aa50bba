package repository

import (
	"context"

	"github.com/explorepe/explorepe-api/internal/cache"
	"github.com/explorepe/explorepe-api/internal/models"
)

// ReviewRepositoryInterface defines the interface for review data access operations.
type ReviewRepositoryInterface interface {
	FindByGuideAndExplorer(ctx context.Context, guideID, explorerID string) (*models.Review, error)
	ListByGuide(ctx context.Context, guideID string, limit int) ([]*models.Review, error)
	CreateAndAggregate(ctx context.Context, review *models.Review) (models.Rating, error)
}

// ReviewRepository handles review data access
type ReviewRepository struct {
	store     ReviewStore
	directory cache.DirectoryCacheInterface
}

var _ ReviewRepositoryInterface = (*ReviewRepository)(nil)

// NewReviewRepository creates a new review repository
func NewReviewRepository(store ReviewStore, directory cache.DirectoryCacheInterface) *ReviewRepository {
	return &ReviewRepository{store: store, directory: directory}
}

func (r *ReviewRepository) FindByGuideAndExplorer(ctx context.Context, guideID, explorerID string) (*models.Review, error) {
	return r.store.GetReviewByGuideAndExplorer(ctx, guideID, explorerID)
}

func (r *ReviewRepository) ListByGuide(ctx context.Context, guideID string, limit int) ([]*models.Review, error) {
	return r.store.ListReviewsByGuide(ctx, guideID, limit)
}

// CreateAndAggregate stores the review and the guide's new rating, then drops
// the cached directory so listings show the new stars
func (r *ReviewRepository) CreateAndAggregate(ctx context.Context, review *models.Review) (models.Rating, error) {
	rating, err := r.store.CreateReviewAndAggregate(ctx, review)
	if err != nil {
		return models.Rating{}, err
	}
	r.directory.Invalidate()
	return rating, nil
}
