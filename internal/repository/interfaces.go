package repository

import (
	"context"
	"time"

	"github.com/explorepe/explorepe-api/internal/database/postgres"
	"github.com/explorepe/explorepe-api/internal/models"
)

// ProfileStore defines profile persistence.
// Implemented by postgres.Client; tests use in-memory fakes.
type ProfileStore interface {
	GetProfileByID(ctx context.Context, id string) (*models.Profile, error)
	GetProfileBySlug(ctx context.Context, slug string) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByVerificationToken(ctx context.Context, token string) (*models.Profile, error)
	GetProfileByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Profile, error)
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	ListActiveProfiles(ctx context.Context, userType models.UserType) ([]*models.Profile, error)
	ListBackfillCandidates(ctx context.Context) ([]*postgres.BackfillCandidate, error)

	// SlugExists reports whether a profile other than excludeID holds slug
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)

	CreateProfile(ctx context.Context, p *models.Profile) error
	UpdateProfile(ctx context.Context, p *models.Profile) error
	UpdateSlug(ctx context.Context, id, slug string) error
	UpdateImages(ctx context.Context, id string, images []models.Image) error
	SetActive(ctx context.Context, id string, active bool) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	DeleteProfile(ctx context.Context, id string) error
}

// ReviewStore defines review persistence
type ReviewStore interface {
	GetReviewByGuideAndExplorer(ctx context.Context, guideID, explorerID string) (*models.Review, error)
	ListReviewsByGuide(ctx context.Context, guideID string, limit int) ([]*models.Review, error)

	// CreateReviewAndAggregate inserts the review and rewrites the guide's
	// rating atomically, returning the new aggregate
	CreateReviewAndAggregate(ctx context.Context, review *models.Review) (models.Rating, error)
}

var (
	_ ProfileStore = (*postgres.Client)(nil)
	_ ReviewStore  = (*postgres.Client)(nil)
)
