package handlers

import (
	"context"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/explorepe/explorepe-api/pkg/jwt"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)

	if err := logger.Initialize(logger.Config{Level: "debug", Environment: "development"}); err != nil {
		panic(err)
	}
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type mockRegistrationService struct{ mock.Mock }

func (m *mockRegistrationService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RegisterResponse), args.Error(1)
}

type mockAuthService struct {
	mock.Mock
	tokens *jwt.TokenManager
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.Session), args.String(1), args.Error(2)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, token, password string) error {
	return m.Called(ctx, token, password).Error(0)
}

func (m *mockAuthService) GetSessionTTL() int                 { return 3600 }
func (m *mockAuthService) GetCookieDomain() string            { return "" }
func (m *mockAuthService) GetCookieSecure() bool              { return false }
func (m *mockAuthService) GetTokenManager() *jwt.TokenManager { return m.tokens }

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) GetOwnProfile(ctx context.Context, session *models.Session) (*models.Profile, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, session *models.Session, req *models.UpdateProfileRequest) (*models.Profile, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileService) UploadImage(ctx context.Context, session *models.Session, upload *models.ImageUpload) (*models.Image, []models.Image, error) {
	args := m.Called(ctx, session, upload)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Image), args.Get(1).([]models.Image), args.Error(2)
}

func (m *mockProfileService) RemoveImage(ctx context.Context, session *models.Session, imageURL string) ([]models.Image, error) {
	args := m.Called(ctx, session, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Image), args.Error(1)
}

func (m *mockProfileService) UpdateCaption(ctx context.Context, session *models.Session, req *models.UpdateCaptionRequest) ([]models.Image, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Image), args.Error(1)
}

type mockDirectoryService struct{ mock.Mock }

func (m *mockDirectoryService) ListGuides(ctx context.Context, filter models.GuideFilter) ([]models.PublicProfile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PublicProfile), args.Error(1)
}

func (m *mockDirectoryService) GetGuide(ctx context.Context, slug string) (*models.GuideDetailResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuideDetailResponse), args.Error(1)
}

func (m *mockDirectoryService) GetExplorer(ctx context.Context, slug string) (*models.PublicProfile, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicProfile), args.Error(1)
}

type mockReviewService struct{ mock.Mock }

func (m *mockReviewService) SubmitReview(ctx context.Context, session *models.Session, req *models.SubmitReviewRequest) (*models.SubmitReviewResponse, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubmitReviewResponse), args.Error(1)
}

func (m *mockReviewService) ListGuideReviews(ctx context.Context, slug string) (*models.GuideReviewsResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuideReviewsResponse), args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *mockAdminService) ToggleActive(ctx context.Context, id string) (*models.ToggleActiveResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ToggleActiveResponse), args.Error(1)
}

func (m *mockAdminService) DeleteProfile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdminService) BackfillSlugs(ctx context.Context) (*models.BackfillResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackfillResult), args.Error(1)
}

var (
	_ services.RegistrationServiceInterface = (*mockRegistrationService)(nil)
	_ services.AuthServiceInterface         = (*mockAuthService)(nil)
	_ services.ProfileServiceInterface      = (*mockProfileService)(nil)
	_ services.DirectoryServiceInterface    = (*mockDirectoryService)(nil)
	_ services.ReviewServiceInterface       = (*mockReviewService)(nil)
	_ services.AdminServiceInterface        = (*mockAdminService)(nil)
)
