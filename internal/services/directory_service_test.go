package services_test

import (
	"context"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDirectoryService_ListGuides(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	service := services.NewDirectoryService(profileRepo, new(MockReviewRepository))
	ctx := context.Background()

	filter := models.GuideFilter{Location: "cusco"}
	profileRepo.On("ListActiveGuides", ctx, filter).Return([]*models.Profile{guideProfile()}, nil).Once()

	guides, err := service.ListGuides(ctx, filter)

	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, "luis", guides[0].Slug)
}

func TestDirectoryService_GetGuide(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	reviewRepo := new(MockReviewRepository)
	service := services.NewDirectoryService(profileRepo, reviewRepo)
	ctx := context.Background()

	profileRepo.On("GetBySlug", ctx, "luis").Return(guideProfile(), nil).Once()
	reviewRepo.On("ListByGuide", ctx, testGuideID, models.RecentReviewsLimit).
		Return([]*models.Review{{ID: "r1", Rating: 4}}, nil).Once()

	resp, err := service.GetGuide(ctx, "luis")

	require.NoError(t, err)
	assert.Equal(t, testGuideID, resp.Guide.ID)
	assert.Len(t, resp.Reviews, 1)
}

func TestDirectoryService_GetGuide_HidesInactiveAndExplorers(t *testing.T) {
	ctx := context.Background()

	inactive := guideProfile()
	inactive.Active = false
	explorer := explorerProfile()
	explorer.Slug = "luis"

	for name, profile := range map[string]*models.Profile{"inactive": inactive, "explorer": explorer} {
		t.Run(name, func(t *testing.T) {
			profileRepo := new(MockProfileRepository)
			reviewRepo := new(MockReviewRepository)
			service := services.NewDirectoryService(profileRepo, reviewRepo)
			profileRepo.On("GetBySlug", ctx, "luis").Return(profile, nil)

			_, err := service.GetGuide(ctx, "luis")

			requireUserMessage(t, err, "Guía no encontrado")
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
			reviewRepo.AssertNotCalled(t, "ListByGuide", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDirectoryService_GetExplorer(t *testing.T) {
	profileRepo := new(MockProfileRepository)
	service := services.NewDirectoryService(profileRepo, new(MockReviewRepository))
	ctx := context.Background()

	explorer := explorerProfile()
	explorer.Slug = "ana-brasil"
	profileRepo.On("GetBySlug", ctx, "ana-brasil").Return(explorer, nil).Once()
	profileRepo.On("GetBySlug", ctx, "nadie").Return(nil, apperrors.NotFoundError("profile")).Once()

	pub, err := service.GetExplorer(ctx, "ana-brasil")
	require.NoError(t, err)
	assert.Equal(t, "Brasil", pub.Explorer.Country)

	_, err = service.GetExplorer(ctx, "nadie")
	requireUserMessage(t, err, "Perfil no encontrado")
}
