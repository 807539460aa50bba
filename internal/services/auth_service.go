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
	"github.com/explorepe/explorepe-api/pkg/jwt"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/mailer"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 6
)

// AuthService handles password login, email verification and password recovery
type AuthService struct {
	profileRepo  repository.ProfileRepositoryInterface
	mailer       mailer.Sender
	config       *config.Config
	tokenManager *jwt.TokenManager
	now          func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(profileRepo repository.ProfileRepositoryInterface, sender mailer.Sender, cfg *config.Config) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		mailer:      sender,
		config:      cfg,
		tokenManager: jwt.NewTokenManager(
			cfg.Session.JWTSecret,
			cfg.Session.JWTIssuer,
			cfg.Session.SessionTTLHours,
		),
		now: time.Now,
	}
}

// Login checks credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, string, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			metrics.LoginAttempts.WithLabelValues("unknown_email").Inc()
			return nil, "", apperrors.WithUserMessage(apperrors.ErrUnauthorized, msgInvalidCredentials)
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("failed to load profile: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		metrics.LoginAttempts.WithLabelValues("wrong_password").Inc()
		logger.Warn("Login with wrong password", zap.String("profile_id", profile.ID))
		return nil, "", apperrors.WithUserMessage(apperrors.ErrUnauthorized, msgInvalidCredentials)
	}

	if !profile.EmailVerified {
		metrics.LoginAttempts.WithLabelValues("unverified").Inc()
		return nil, "", apperrors.WithUserMessage(apperrors.AccessDeniedError("email not verified"), msgEmailNotVerified)
	}

	token, err := s.tokenManager.GenerateToken(jwt.SessionSubject{
		ProfileID: profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		Role:      string(profile.Role),
		UserType:  string(profile.UserType),
	})
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.now()
	session := &models.Session{
		ProfileID: profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		Role:      profile.Role,
		UserType:  profile.UserType,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.tokenManager.GetExpirationTime()).Unix(),
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	logger.Info("Profile logged in",
		zap.String("profile_id", profile.ID),
		zap.String("user_type", string(profile.UserType)))

	return session, token, nil
}

// VerifyEmail marks the profile holding token as verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	profile, err := s.profileRepo.GetByVerificationToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.WithUserMessage(apperrors.InvalidInputError("token", "unknown verification token"), msgInvalidVerification)
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if err := s.profileRepo.MarkEmailVerified(ctx, profile.ID); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	logger.Info("Email verified", zap.String("profile_id", profile.ID))
	return nil
}

// ForgotPassword emails a reset link. Unknown emails succeed silently so the
// response never reveals whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	token, err := randomToken()
	if err != nil {
		return err
	}

	expires := s.now().Add(resetTokenTTL)
	if err := s.profileRepo.SetResetToken(ctx, profile.ID, hashToken(token), expires); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	msg, err := mailer.PasswordResetEmail(s.config.Server.BaseURL, profile.Email, profile.Name, token)
	if err != nil {
		logger.Error("Failed to render password reset email", zap.Error(err))
		return nil
	}
	sendEmail(ctx, s.mailer, msg, emailTimeout(s.config.SMTP.SendTimeoutSeconds))

	logger.Info("Password reset requested", zap.String("profile_id", profile.ID))
	return nil
}

// ResetPassword sets a new password for the holder of a valid reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLength {
		return apperrors.WithUserMessage(apperrors.InvalidInputError("password", "too short"), msgPasswordTooShort)
	}

	profile, err := s.profileRepo.GetByResetTokenHash(ctx, hashToken(strings.TrimSpace(token)), s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.WithUserMessage(apperrors.InvalidInputError("token", "invalid or expired"), msgInvalidResetToken)
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost(s.config))
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profileRepo.UpdatePassword(ctx, profile.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logger.Info("Password reset", zap.String("profile_id", profile.ID))
	return nil
}

// GetSessionTTL returns the session TTL in seconds
func (s *AuthService) GetSessionTTL() int {
	return s.config.Session.SessionTTLHours * 3600
}

// GetCookieDomain returns the cookie domain
func (s *AuthService) GetCookieDomain() string {
	return s.config.Session.CookieDomain
}

// GetCookieSecure returns whether cookies should be secure
func (s *AuthService) GetCookieSecure() bool {
	return s.config.Session.CookieSecure
}

// GetTokenManager returns the JWT token manager
func (s *AuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
