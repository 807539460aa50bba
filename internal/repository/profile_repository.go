package repository

import (
	"context"
	"time"

	"github.com/explorepe/explorepe-api/internal/cache"
	"github.com/explorepe/explorepe-api/internal/database/postgres"
	"github.com/explorepe/explorepe-api/internal/models"
)

// ProfileRepositoryInterface defines the interface for profile data access operations.
type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetBySlug(ctx context.Context, slug string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.Profile, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
	ListActiveGuides(ctx context.Context, filter models.GuideFilter) ([]*models.Profile, error)
	ListBackfillCandidates(ctx context.Context) ([]*postgres.BackfillCandidate, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, p *models.Profile) error
	UpdateSlug(ctx context.Context, id, slug string) error
	UpdateImages(ctx context.Context, id string, images []models.Image) error
	SetActive(ctx context.Context, id string, active bool) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	InvalidateCache()
}

// ProfileRepository handles profile data access and keeps the directory cache coherent
type ProfileRepository struct {
	store     ProfileStore
	directory cache.DirectoryCacheInterface
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store ProfileStore, directory cache.DirectoryCacheInterface) *ProfileRepository {
	return &ProfileRepository{store: store, directory: directory}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.store.GetProfileByID(ctx, id)
}

func (r *ProfileRepository) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	return r.store.GetProfileBySlug(ctx, slug)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.store.GetProfileByEmail(ctx, email)
}

func (r *ProfileRepository) GetByVerificationToken(ctx context.Context, token string) (*models.Profile, error) {
	return r.store.GetProfileByVerificationToken(ctx, token)
}

func (r *ProfileRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Profile, error) {
	return r.store.GetProfileByResetTokenHash(ctx, tokenHash, now)
}

func (r *ProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	return r.store.ListProfiles(ctx)
}

// ListActiveGuides serves the public listing from the directory cache and applies filter
func (r *ProfileRepository) ListActiveGuides(ctx context.Context, filter models.GuideFilter) ([]*models.Profile, error) {
	guides, err := r.directory.Guides(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Profile, 0, len(guides))
	for _, g := range guides {
		if filter.Matches(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

func (r *ProfileRepository) ListBackfillCandidates(ctx context.Context) ([]*postgres.BackfillCandidate, error) {
	return r.store.ListBackfillCandidates(ctx)
}

func (r *ProfileRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return r.store.SlugExists(ctx, slug, excludeID)
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	return r.invalidateAfter(r.store.CreateProfile(ctx, p))
}

func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	return r.invalidateAfter(r.store.UpdateProfile(ctx, p))
}

func (r *ProfileRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	return r.invalidateAfter(r.store.UpdateSlug(ctx, id, slug))
}

func (r *ProfileRepository) UpdateImages(ctx context.Context, id string, images []models.Image) error {
	return r.invalidateAfter(r.store.UpdateImages(ctx, id, images))
}

func (r *ProfileRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.invalidateAfter(r.store.SetActive(ctx, id, active))
}

func (r *ProfileRepository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.store.MarkEmailVerified(ctx, id)
}

func (r *ProfileRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	return r.store.SetResetToken(ctx, id, tokenHash, expires)
}

func (r *ProfileRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.store.UpdatePassword(ctx, id, passwordHash)
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	return r.invalidateAfter(r.store.DeleteProfile(ctx, id))
}

// InvalidateCache drops the cached directory
func (r *ProfileRepository) InvalidateCache() {
	r.directory.Invalidate()
}

func (r *ProfileRepository) invalidateAfter(err error) error {
	if err == nil {
		r.directory.Invalidate()
	}
	return err
}
