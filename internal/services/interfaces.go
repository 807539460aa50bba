package services

import (
	"context"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/pkg/geocoding"
	"github.com/explorepe/explorepe-api/pkg/jwt"
)

// RegistrationServiceInterface defines the interface for registration service operations
type RegistrationServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
}

// AuthServiceInterface defines the interface for password authentication and recovery
type AuthServiceInterface interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, string, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// ProfileServiceInterface defines the interface for own-profile operations
type ProfileServiceInterface interface {
	GetOwnProfile(ctx context.Context, session *models.Session) (*models.Profile, error)
	UpdateProfile(ctx context.Context, session *models.Session, req *models.UpdateProfileRequest) (*models.Profile, error)
	UploadImage(ctx context.Context, session *models.Session, upload *models.ImageUpload) (*models.Image, []models.Image, error)
	RemoveImage(ctx context.Context, session *models.Session, imageURL string) ([]models.Image, error)
	UpdateCaption(ctx context.Context, session *models.Session, req *models.UpdateCaptionRequest) ([]models.Image, error)
}

// DirectoryServiceInterface defines the interface for the public directory
type DirectoryServiceInterface interface {
	ListGuides(ctx context.Context, filter models.GuideFilter) ([]models.PublicProfile, error)
	GetGuide(ctx context.Context, slug string) (*models.GuideDetailResponse, error)
	GetExplorer(ctx context.Context, slug string) (*models.PublicProfile, error)
}

// ReviewServiceInterface defines the interface for review service operations
type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, session *models.Session, req *models.SubmitReviewRequest) (*models.SubmitReviewResponse, error)
	ListGuideReviews(ctx context.Context, slug string) (*models.GuideReviewsResponse, error)
}

// AdminServiceInterface defines admin moderation operations
type AdminServiceInterface interface {
	ListProfiles(ctx context.Context) ([]*models.Profile, error)
	ToggleActive(ctx context.Context, id string) (*models.ToggleActiveResponse, error)
	DeleteProfile(ctx context.Context, id string) error
	BackfillSlugs(ctx context.Context) (*models.BackfillResult, error)
}

// Geocoder resolves a free-text location into coordinates
type Geocoder interface {
	Enabled() bool
	Geocode(ctx context.Context, address string) (*geocoding.Location, error)
}

// ImageStorage stores gallery images
type ImageStorage interface {
	UploadImage(ctx context.Context, data []byte, key, contentType string) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
	ValidateImageType(contentType string) error
	ValidateImageSize(size int64) error
	GenerateKey(profileID, fileName, contentType string) string
}

// CaptchaVerifier checks a reCAPTCHA token
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) error
}

// Ensure services implement their interfaces
var _ RegistrationServiceInterface = (*RegistrationService)(nil)
var _ AuthServiceInterface = (*AuthService)(nil)
var _ ProfileServiceInterface = (*ProfileService)(nil)
var _ DirectoryServiceInterface = (*DirectoryService)(nil)
var _ ReviewServiceInterface = (*ReviewService)(nil)
var _ AdminServiceInterface = (*AdminService)(nil)
