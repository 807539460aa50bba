package services

import (
	"context"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"go.uber.org/zap"
)

// SlugBackfiller gives legacy profiles a slug and rewrites bare-string
// image entries in the {url, caption} form
type SlugBackfiller struct {
	profileRepo repository.ProfileRepositoryInterface
	slugs       *SlugResolver
}

// NewSlugBackfiller creates a backfiller
func NewSlugBackfiller(profileRepo repository.ProfileRepositoryInterface, slugs *SlugResolver) *SlugBackfiller {
	return &SlugBackfiller{profileRepo: profileRepo, slugs: slugs}
}

// Run processes every candidate. A failing profile is recorded and skipped.
func (b *SlugBackfiller) Run(ctx context.Context) (*models.BackfillResult, error) {
	candidates, err := b.profileRepo.ListBackfillCandidates(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.BackfillResult{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		p := c.Profile
		result.Processed++

		if p.Slug == "" {
			slugReq := SlugRequest{
				Name:      p.Name,
				Country:   p.Country(),
				UserType:  p.UserType,
				ExcludeID: p.ID,
			}
			assigned, err := b.slugs.Assign(ctx, slugReq, func(ctx context.Context, candidate string) error {
				return b.profileRepo.UpdateSlug(ctx, p.ID, candidate)
			})
			if err != nil {
				logger.Warn("Slug backfill failed", zap.String("profile_id", p.ID), zap.Error(err))
				result.Failed = append(result.Failed, p.ID)
				continue
			}
			p.Slug = assigned
			result.SlugsAssigned++
		}

		// Images were normalized on read; writing them back persists the object form
		if c.LegacyImages {
			if err := b.profileRepo.UpdateImages(ctx, p.ID, p.Images); err != nil {
				logger.Warn("Image normalization failed", zap.String("profile_id", p.ID), zap.Error(err))
				result.Failed = append(result.Failed, p.ID)
				continue
			}
			result.ImagesNormalized++
		}
	}

	logger.Info("Backfill finished",
		zap.Int("processed", result.Processed),
		zap.Int("slugs_assigned", result.SlugsAssigned),
		zap.Int("images_normalized", result.ImagesNormalized),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}
