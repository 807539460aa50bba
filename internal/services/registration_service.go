package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/mailer"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/trigger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegistrationService handles guide and explorer sign-up
type RegistrationService struct {
	profileRepo repository.ProfileRepositoryInterface
	slugs       *SlugResolver
	geocoder    Geocoder
	captcha     CaptchaVerifier
	mailer      mailer.Sender
	config      *config.Config
	httpClient  httpclient.Client
	now         func() time.Time
}

// NewRegistrationService creates a new registration service instance
func NewRegistrationService(
	profileRepo repository.ProfileRepositoryInterface,
	slugs *SlugResolver,
	geocoder Geocoder,
	captcha CaptchaVerifier,
	sender mailer.Sender,
	cfg *config.Config,
	httpClient httpclient.Client,
) *RegistrationService {
	return &RegistrationService{
		profileRepo: profileRepo,
		slugs:       slugs,
		geocoder:    geocoder,
		captcha:     captcha,
		mailer:      sender,
		config:      cfg,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// Register creates an unverified profile with a unique slug and sends the
// verification email
func (s *RegistrationService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	userType := string(req.UserType)

	// 1. Verify ReCAPTCHA
	if err := s.captcha.Verify(ctx, req.RecaptchaToken); err != nil {
		metrics.ProfileRegistrations.WithLabelValues(userType, "captcha_failed").Inc()
		logger.Warn("ReCAPTCHA verification failed", zap.Error(err))
		return s.fail(apperrors.WithUserMessage(apperrors.InvalidInputError("recaptchaToken", err.Error()), msgCaptchaFailed))
	}

	// 2. Reject known emails early. The unique index still guards the insert.
	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		metrics.ProfileRegistrations.WithLabelValues(userType, "error").Inc()
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		metrics.ProfileRegistrations.WithLabelValues(userType, "email_taken").Inc()
		return s.fail(apperrors.WithUserMessage(apperrors.ErrEmailTaken, msgEmailTaken))
	}

	// 3. Build the profile
	profile, err := s.buildProfile(ctx, req, email)
	if err != nil {
		metrics.ProfileRegistrations.WithLabelValues(userType, "invalid").Inc()
		return s.fail(err)
	}

	// 4. Persist with a unique slug
	slugReq := SlugRequest{Name: profile.Name, Country: profile.Country(), UserType: profile.UserType}
	_, err = s.slugs.Assign(ctx, slugReq, func(ctx context.Context, candidate string) error {
		profile.Slug = candidate
		return s.profileRepo.Create(ctx, profile)
	})
	if err != nil {
		metrics.ProfileRegistrations.WithLabelValues(userType, "store_failed").Inc()
		if uerr := slugAssignUserError(err); uerr != nil {
			return s.fail(uerr)
		}
		logger.Error("Failed to create profile", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	logger.Info("Profile registered",
		zap.String("profile_id", profile.ID),
		zap.String("slug", profile.Slug),
		zap.String("user_type", userType))

	// 5. Side effects never undo the registration
	msg, err := mailer.VerificationEmail(s.config.Server.BaseURL, profile.Email, profile.Name, profile.VerificationToken)
	if err != nil {
		logger.Error("Failed to render verification email", zap.Error(err))
	} else {
		sendEmailAsync(s.mailer, msg, emailTimeout(s.config.SMTP.SendTimeoutSeconds))
	}

	trigger.CallAsync(s.config.EventTriggers.ProfileCreatedTriggerURL, trigger.Event{
		Type:     "profile.created",
		RecordID: profile.ID,
		Data:     map[string]any{"slug": profile.Slug, "user_type": userType},
	}, s.httpClient)

	metrics.ProfileRegistrations.WithLabelValues(userType, "success").Inc()

	return &models.RegisterResponse{
		Success: true,
		Message: MsgRegistered,
		Slug:    profile.Slug,
	}, nil
}

func (s *RegistrationService) buildProfile(ctx context.Context, req *models.RegisterRequest, email string) (*models.Profile, error) {
	if !req.UserType.IsValid() {
		return nil, apperrors.InvalidInputError("userType", "must be guide or explorer")
	}

	now := s.now().UTC()
	profile := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Location:     strings.TrimSpace(req.Location),
		Lat:          req.Lat,
		Lng:          req.Lng,
		Category:     strings.TrimSpace(req.Category),
		Price:        req.Price,
		YouTubeEmbed: strings.TrimSpace(req.YouTubeEmbed),
		Role:         models.RoleGuide,
		UserType:     req.UserType,
		Images:       []models.Image{},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.UserType == models.UserTypeGuide {
		if profile.Category == "" {
			profile.Category = models.DefaultCategory
		}
		profile.Guide = &models.GuideDetails{
			Phone:             strings.TrimSpace(req.Phone),
			WhatsApp:          strings.TrimSpace(req.WhatsApp),
			CertificateNumber: strings.TrimSpace(req.CertificateNumber),
			Services:          strings.TrimSpace(req.Services),
			Instagram:         strings.TrimSpace(req.Instagram),
			Facebook:          strings.TrimSpace(req.Facebook),
		}
	} else {
		profile.Explorer = &models.ExplorerDetails{Country: strings.TrimSpace(req.Country)}
	}

	if err := profile.Validate(); err != nil {
		if profile.IsGuide() && profile.Guide.Phone == "" {
			return nil, apperrors.WithUserMessage(apperrors.InvalidInputError("phone", "required for guides"), msgPhoneRequired)
		}
		return nil, apperrors.InvalidInputError("profile", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost(s.config))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return nil, err
	}

	profile.PasswordHash = string(hash)
	profile.VerificationToken = token

	if profile.Lat == nil || profile.Lng == nil {
		profile.Lat, profile.Lng = geocodeLocation(ctx, s.geocoder, profile.Location)
	}

	return profile, nil
}

func bcryptCost(cfg *config.Config) int {
	if cfg.Profiles.BcryptCost > 0 {
		return cfg.Profiles.BcryptCost
	}
	return bcrypt.DefaultCost
}

func (s *RegistrationService) fail(err error) (*models.RegisterResponse, error) {
	msg, _ := apperrors.UserMessage(err)
	return &models.RegisterResponse{Success: false, Error: msg}, err
}

// slugAssignUserError attaches the user message to expected slug assignment
// failures. Unexpected errors return nil.
func slugAssignUserError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrEmailTaken):
		return apperrors.WithUserMessage(err, msgEmailTaken)
	case errors.Is(err, apperrors.ErrInvalidInput):
		return apperrors.WithUserMessage(err, msgInvalidName)
	case errors.Is(err, apperrors.ErrConflict):
		return apperrors.WithUserMessage(err, msgSlugUnavailable)
	default:
		return nil
	}
}
