package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	service  *services.ProfileService
	repo     *MockProfileRepository
	storage  *MockImageStorage
	geocoder *MockGeocoder
}

func newProfileFixture() *profileFixture {
	f := &profileFixture{
		repo:     new(MockProfileRepository),
		storage:  new(MockImageStorage),
		geocoder: new(MockGeocoder),
	}
	cfg := testConfig()
	slugs := services.NewSlugResolver(f.repo, cfg.Profiles.SlugMaxAttempts)
	f.service = services.NewProfileService(f.repo, slugs, f.geocoder, f.storage, cfg)
	return f
}

func guideSession() *models.Session {
	return &models.Session{ProfileID: testGuideID, UserType: models.UserTypeGuide, Role: models.RoleGuide}
}

func guideUpdate(name string) *models.UpdateProfileRequest {
	return &models.UpdateProfileRequest{
		Name:     name,
		Location: "Cusco",
		Phone:    "+51 999 999 999",
		Services: "Caminatas",
	}
}

func TestProfileService_GetOwnProfile_NoSession(t *testing.T) {
	f := newProfileFixture()

	_, err := f.service.GetOwnProfile(context.Background(), nil)

	requireUserMessage(t, err, "No autorizado")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestProfileService_UpdateProfile_SameNameKeepsSlug(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Location = "Cusco"
	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.repo.On("Update", ctx, mock.AnythingOfType("*models.Profile")).Return(nil).Once()

	updated, err := f.service.UpdateProfile(ctx, guideSession(), guideUpdate("Luis"))

	require.NoError(t, err)
	assert.Equal(t, "luis", updated.Slug)
	assert.Equal(t, "Caminatas", updated.Guide.Services)
	f.repo.AssertNotCalled(t, "SlugExists", mock.Anything, mock.Anything, mock.Anything)
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestProfileService_UpdateProfile_RenameReassignsSlug(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Location = "Cusco"
	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.repo.On("SlugExists", ctx, "luis-alberto", testGuideID).Return(true, nil).Once()
	f.repo.On("SlugExists", ctx, "luis-alberto-1", testGuideID).Return(false, nil).Once()
	f.repo.On("Update", ctx, mock.AnythingOfType("*models.Profile")).Return(nil).Once()

	updated, err := f.service.UpdateProfile(ctx, guideSession(), guideUpdate("Luis Alberto"))

	require.NoError(t, err)
	assert.Equal(t, "luis-alberto-1", updated.Slug)
	f.repo.AssertExpectations(t)
}

func TestProfileService_UpdateProfile_LocationChangeGeocodes(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Location = "Lima"
	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.geocoder.On("Enabled").Return(true)
	f.geocoder.On("Geocode", ctx, "Cusco").Return(nil, errors.New("quota exceeded")).Once()
	f.repo.On("Update", ctx, mock.Anything).Return(nil).Once()

	updated, err := f.service.UpdateProfile(ctx, guideSession(), guideUpdate("Luis"))

	require.NoError(t, err)
	assert.Equal(t, "Cusco", updated.Location)
	assert.Nil(t, updated.Lat)
}

func TestProfileService_UpdateProfile_GuideNeedsPhone(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, testGuideID).Return(guideProfile(), nil).Once()
	req := guideUpdate("Luis")
	req.Phone = ""

	_, err := f.service.UpdateProfile(ctx, guideSession(), req)

	requireUserMessage(t, err, "El teléfono es requerido para guías")
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProfileService_UploadImage(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Images = []models.Image{{URL: "https://cdn/a.jpg"}}
	data := []byte("jpeg-bytes")
	upload := &models.ImageUpload{Data: data, FileName: "b.jpg", ContentType: "image/jpeg", Caption: " Machu Picchu "}

	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.storage.On("ValidateImageType", "image/jpeg").Return(nil)
	f.storage.On("ValidateImageSize", int64(len(data))).Return(nil)
	f.storage.On("GenerateKey", testGuideID, "b.jpg", "image/jpeg").Return("profiles/key.jpg")
	f.storage.On("UploadImage", ctx, data, "profiles/key.jpg", "image/jpeg").Return("https://cdn/b.jpg", nil).Once()
	f.repo.On("UpdateImages", ctx, testGuideID, []models.Image{
		{URL: "https://cdn/a.jpg"},
		{URL: "https://cdn/b.jpg", Caption: "Machu Picchu"},
	}).Return(nil).Once()

	image, images, err := f.service.UploadImage(ctx, guideSession(), upload)

	require.NoError(t, err)
	assert.Equal(t, "Machu Picchu", image.Caption)
	assert.Len(t, images, 2)
	f.storage.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestProfileService_UploadImage_LimitReached(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	explorer := explorerProfile()
	explorer.Images = []models.Image{{URL: "1"}, {URL: "2"}}
	f.repo.On("GetByID", ctx, testExplorerID).Return(explorer, nil).Once()

	_, _, err := f.service.UploadImage(ctx, explorerSession(), &models.ImageUpload{ContentType: "image/png"})

	requireUserMessage(t, err, "Máximo 2 imágenes permitidas")
	f.storage.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileService_UploadImage_InvalidType(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, testGuideID).Return(guideProfile(), nil).Once()
	f.storage.On("ValidateImageType", "image/gif").Return(errors.New("unsupported")).Once()

	_, _, err := f.service.UploadImage(ctx, guideSession(), &models.ImageUpload{ContentType: "image/gif"})

	requireUserMessage(t, err, "Tipo de archivo no válido. Use JPG, PNG o WebP")
}

func TestProfileService_UploadImage_DeletesOrphanWhenSaveFails(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	data := []byte("png")
	f.repo.On("GetByID", ctx, testGuideID).Return(guideProfile(), nil).Once()
	f.storage.On("ValidateImageType", "image/png").Return(nil)
	f.storage.On("ValidateImageSize", int64(3)).Return(nil)
	f.storage.On("GenerateKey", testGuideID, "c.png", "image/png").Return("k")
	f.storage.On("UploadImage", ctx, data, "k", "image/png").Return("https://cdn/c.png", nil)
	f.repo.On("UpdateImages", ctx, testGuideID, mock.Anything).Return(errors.New("db down")).Once()
	f.storage.On("DeleteImage", ctx, "https://cdn/c.png").Return(nil).Once()

	_, _, err := f.service.UploadImage(ctx, guideSession(), &models.ImageUpload{Data: data, FileName: "c.png", ContentType: "image/png"})

	require.Error(t, err)
	f.storage.AssertExpectations(t)
}

func TestProfileService_RemoveImage(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Images = []models.Image{{URL: "a"}, {URL: "b", Caption: "x"}}
	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.repo.On("UpdateImages", ctx, testGuideID, []models.Image{{URL: "b", Caption: "x"}}).Return(nil).Once()
	f.storage.On("DeleteImage", ctx, "a").Return(nil).Once()

	images, err := f.service.RemoveImage(ctx, guideSession(), "a")

	require.NoError(t, err)
	assert.Len(t, images, 1)
	f.storage.AssertExpectations(t)
}

func TestProfileService_RemoveImage_NotFound(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, testGuideID).Return(guideProfile(), nil).Once()

	_, err := f.service.RemoveImage(ctx, guideSession(), "missing")

	requireUserMessage(t, err, "Imagen no encontrada")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileService_UpdateCaption(t *testing.T) {
	f := newProfileFixture()
	ctx := context.Background()

	guide := guideProfile()
	guide.Images = []models.Image{{URL: "a"}, {URL: "b"}}
	f.repo.On("GetByID", ctx, testGuideID).Return(guide, nil).Once()
	f.repo.On("UpdateImages", ctx, testGuideID, []models.Image{{URL: "a"}, {URL: "b", Caption: "Lago Titicaca"}}).Return(nil).Once()

	images, err := f.service.UpdateCaption(ctx, guideSession(), &models.UpdateCaptionRequest{URL: "b", Caption: " Lago Titicaca "})

	require.NoError(t, err)
	assert.Equal(t, "Lago Titicaca", images[1].Caption)
	// The loaded profile is not mutated in place
	assert.Empty(t, guide.Images[1].Caption)
}
