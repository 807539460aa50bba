package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"go.uber.org/zap"
)

// ProfileService handles a signed-in profile editing itself
type ProfileService struct {
	profileRepo repository.ProfileRepositoryInterface
	slugs       *SlugResolver
	geocoder    Geocoder
	storage     ImageStorage
	config      *config.Config
}

// NewProfileService creates a new profile service instance. storage may be nil
// when object storage is not configured; uploads then fail.
func NewProfileService(
	profileRepo repository.ProfileRepositoryInterface,
	slugs *SlugResolver,
	geocoder Geocoder,
	storage ImageStorage,
	cfg *config.Config,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		slugs:       slugs,
		geocoder:    geocoder,
		storage:     storage,
		config:      cfg,
	}
}

// GetOwnProfile returns the caller's full profile
func (s *ProfileService) GetOwnProfile(ctx context.Context, session *models.Session) (*models.Profile, error) {
	if session == nil || session.ProfileID == "" {
		return nil, apperrors.WithUserMessage(apperrors.ErrUnauthorized, msgUnauthorized)
	}

	profile, err := s.profileRepo.GetByID(ctx, session.ProfileID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.WithUserMessage(err, msgProfileNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// UpdateProfile applies req to the caller's profile. The slug is reassigned
// only when the name changes.
func (s *ProfileService) UpdateProfile(ctx context.Context, session *models.Session, req *models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetOwnProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	newName := strings.TrimSpace(req.Name)
	nameChanged := newName != profile.Name
	locationChanged := strings.TrimSpace(req.Location) != profile.Location

	applyUpdate(profile, req)

	if err := profile.Validate(); err != nil {
		metrics.ProfileUpdates.WithLabelValues("invalid").Inc()
		if profile.IsGuide() && profile.Guide.Phone == "" {
			return nil, apperrors.WithUserMessage(apperrors.InvalidInputError("phone", "required for guides"), msgPhoneRequired)
		}
		return nil, apperrors.InvalidInputError("profile", err.Error())
	}

	if req.Lat == nil || req.Lng == nil {
		if locationChanged {
			if lat, lng := geocodeLocation(ctx, s.geocoder, profile.Location); lat != nil {
				profile.Lat, profile.Lng = lat, lng
			}
		}
	}

	if nameChanged {
		slugReq := SlugRequest{
			Name:      profile.Name,
			Country:   profile.Country(),
			UserType:  profile.UserType,
			ExcludeID: profile.ID,
		}
		_, err = s.slugs.Assign(ctx, slugReq, func(ctx context.Context, candidate string) error {
			profile.Slug = candidate
			return s.profileRepo.Update(ctx, profile)
		})
	} else {
		err = s.profileRepo.Update(ctx, profile)
	}

	if err != nil {
		metrics.ProfileUpdates.WithLabelValues("error").Inc()
		if uerr := slugAssignUserError(err); uerr != nil {
			return nil, uerr
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.WithUserMessage(err, msgProfileNotFound)
		}
		logger.Error("Failed to update profile", zap.String("profile_id", profile.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	metrics.ProfileUpdates.WithLabelValues("success").Inc()
	logger.Info("Profile updated",
		zap.String("profile_id", profile.ID),
		zap.String("slug", profile.Slug),
		zap.Bool("slug_reassigned", nameChanged))

	return profile, nil
}

func applyUpdate(p *models.Profile, req *models.UpdateProfileRequest) {
	p.Name = strings.TrimSpace(req.Name)
	p.Location = strings.TrimSpace(req.Location)
	if req.Lat != nil && req.Lng != nil {
		p.Lat, p.Lng = req.Lat, req.Lng
	}
	if c := strings.TrimSpace(req.Category); c != "" {
		p.Category = c
	}
	p.Price = req.Price
	p.YouTubeEmbed = strings.TrimSpace(req.YouTubeEmbed)

	switch p.UserType {
	case models.UserTypeGuide:
		p.Guide = &models.GuideDetails{
			Phone:             strings.TrimSpace(req.Phone),
			WhatsApp:          strings.TrimSpace(req.WhatsApp),
			CertificateNumber: strings.TrimSpace(req.CertificateNumber),
			Services:          strings.TrimSpace(req.Services),
			Instagram:         strings.TrimSpace(req.Instagram),
			Facebook:          strings.TrimSpace(req.Facebook),
		}
	case models.UserTypeExplorer:
		p.Explorer = &models.ExplorerDetails{
			Country:            strings.TrimSpace(req.Country),
			SecondaryLocations: trimAll(req.SecondaryLocations),
			VisitedPlaces:      trimAll(req.VisitedPlaces),
		}
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *ProfileService) maxImages(p *models.Profile) int {
	if p.IsExplorer() {
		return s.config.Profiles.MaxExplorerImages
	}
	return s.config.Profiles.MaxGuideImages
}

// UploadImage stores an image and appends it to the caller's gallery
func (s *ProfileService) UploadImage(ctx context.Context, session *models.Session, upload *models.ImageUpload) (*models.Image, []models.Image, error) {
	profile, err := s.GetOwnProfile(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	if limit := s.maxImages(profile); len(profile.Images) >= limit {
		metrics.ImageUploads.WithLabelValues("limit_reached").Inc()
		return nil, nil, apperrors.WithUserMessage(
			apperrors.InvalidInputError("images", fmt.Sprintf("limit of %d reached", limit)),
			fmt.Sprintf(msgTooManyImages, limit))
	}

	if s.storage == nil {
		metrics.ImageUploads.WithLabelValues("storage_disabled").Inc()
		return nil, nil, apperrors.InternalError("object storage is not configured")
	}
	if err := s.storage.ValidateImageType(upload.ContentType); err != nil {
		metrics.ImageUploads.WithLabelValues("invalid_type").Inc()
		return nil, nil, apperrors.WithUserMessage(apperrors.InvalidInputError("image", err.Error()), msgInvalidFileType)
	}
	if err := s.storage.ValidateImageSize(int64(len(upload.Data))); err != nil {
		metrics.ImageUploads.WithLabelValues("too_large").Inc()
		return nil, nil, apperrors.WithUserMessage(apperrors.InvalidInputError("image", err.Error()), msgFileTooLarge)
	}

	key := s.storage.GenerateKey(profile.ID, upload.FileName, upload.ContentType)
	url, err := s.storage.UploadImage(ctx, upload.Data, key, upload.ContentType)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("upload_failed").Inc()
		return nil, nil, fmt.Errorf("failed to upload image: %w", err)
	}

	image := models.Image{URL: url, Caption: strings.TrimSpace(upload.Caption)}
	images := append(append(make([]models.Image, 0, len(profile.Images)+1), profile.Images...), image)

	if err := s.profileRepo.UpdateImages(ctx, profile.ID, images); err != nil {
		metrics.ImageUploads.WithLabelValues("store_failed").Inc()
		// The object is orphaned if this fails too; it is only logged
		if delErr := s.storage.DeleteImage(ctx, url); delErr != nil {
			logger.Warn("Failed to delete orphaned image", zap.String("url", url), zap.Error(delErr))
		}
		return nil, nil, fmt.Errorf("failed to save image: %w", err)
	}

	metrics.ImageUploads.WithLabelValues("success").Inc()
	logger.Info("Image uploaded",
		zap.String("profile_id", profile.ID),
		zap.Int("image_count", len(images)))

	return &image, images, nil
}

// RemoveImage drops imageURL from the caller's gallery and deletes the object
func (s *ProfileService) RemoveImage(ctx context.Context, session *models.Session, imageURL string) ([]models.Image, error) {
	profile, err := s.GetOwnProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, 0, len(profile.Images))
	found := false
	for _, img := range profile.Images {
		if img.URL == imageURL && !found {
			found = true
			continue
		}
		images = append(images, img)
	}
	if !found {
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError("image"), msgImageNotFound)
	}

	if err := s.profileRepo.UpdateImages(ctx, profile.ID, images); err != nil {
		return nil, fmt.Errorf("failed to remove image: %w", err)
	}

	if s.storage != nil {
		if err := s.storage.DeleteImage(ctx, imageURL); err != nil {
			logger.Warn("Failed to delete image object", zap.String("url", imageURL), zap.Error(err))
		}
	}

	return images, nil
}

// UpdateCaption sets the caption of one image in the caller's gallery
func (s *ProfileService) UpdateCaption(ctx context.Context, session *models.Session, req *models.UpdateCaptionRequest) ([]models.Image, error) {
	profile, err := s.GetOwnProfile(ctx, session)
	if err != nil {
		return nil, err
	}

	images := make([]models.Image, len(profile.Images))
	copy(images, profile.Images)

	found := false
	for i := range images {
		if images[i].URL == req.URL {
			images[i].Caption = strings.TrimSpace(req.Caption)
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError("image"), msgImageNotFound)
	}

	if err := s.profileRepo.UpdateImages(ctx, profile.ID, images); err != nil {
		return nil, fmt.Errorf("failed to update caption: %w", err)
	}
	return images, nil
}
