package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/explorepe/explorepe-api/config"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/repository"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/httpclient"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/trigger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService accepts explorer reviews and keeps guide ratings current
type ReviewService struct {
	reviewRepo  repository.ReviewRepositoryInterface
	profileRepo repository.ProfileRepositoryInterface
	config      *config.Config
	httpClient  httpclient.Client
	now         func() time.Time
}

// NewReviewService creates a new review service instance
func NewReviewService(
	reviewRepo repository.ReviewRepositoryInterface,
	profileRepo repository.ProfileRepositoryInterface,
	cfg *config.Config,
	httpClient httpclient.Client,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		profileRepo: profileRepo,
		config:      cfg,
		httpClient:  httpClient,
		now:         time.Now,
	}
}

// SubmitReview validates and stores a review, then returns the guide's new rating.
// Every precondition is checked before anything is written.
func (s *ReviewService) SubmitReview(ctx context.Context, session *models.Session, req *models.SubmitReviewRequest) (*models.SubmitReviewResponse, error) {
	start := time.Now()
	defer func() {
		metrics.ReviewDuration.Observe(metrics.MeasureDuration(start))
	}()

	review, err := s.prepareReview(ctx, session, req)
	if err != nil {
		msg, _ := apperrors.UserMessage(err)
		return &models.SubmitReviewResponse{Success: false, Error: msg}, err
	}

	rating, err := s.reviewRepo.CreateAndAggregate(ctx, review)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateReview) {
			metrics.ReviewSubmissions.WithLabelValues("duplicate").Inc()
			err = apperrors.WithUserMessage(err, msgAlreadyReviewed)
		} else if errors.Is(err, apperrors.ErrNotFound) {
			metrics.ReviewSubmissions.WithLabelValues("guide_not_found").Inc()
			err = apperrors.WithUserMessage(err, msgGuideNotFound)
		} else {
			metrics.ReviewSubmissions.WithLabelValues("error").Inc()
			logger.Error("Failed to store review",
				zap.String("guide_id", review.GuideID),
				zap.String("explorer_id", review.ExplorerID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to submit review: %w", err)
		}
		msg, _ := apperrors.UserMessage(err)
		return &models.SubmitReviewResponse{Success: false, Error: msg}, err
	}

	metrics.ReviewSubmissions.WithLabelValues("success").Inc()
	logger.Info("Review submitted",
		zap.String("guide_id", review.GuideID),
		zap.String("explorer_id", review.ExplorerID),
		zap.Int("rating", review.Rating),
		zap.Float64("stars", rating.Stars),
		zap.Int("count", rating.Count))

	trigger.CallAsync(s.config.EventTriggers.ReviewCreatedTriggerURL, trigger.Event{
		Type:     "review.created",
		RecordID: review.ID,
		Data:     map[string]any{"guide_id": review.GuideID, "rating": rating},
	}, s.httpClient)

	return &models.SubmitReviewResponse{Success: true, Review: review, Rating: &rating}, nil
}

func (s *ReviewService) prepareReview(ctx context.Context, session *models.Session, req *models.SubmitReviewRequest) (*models.Review, error) {
	if session == nil || session.ProfileID == "" {
		metrics.ReviewSubmissions.WithLabelValues("unauthorized").Inc()
		return nil, apperrors.WithUserMessage(apperrors.ErrUnauthorized, msgUnauthorized)
	}

	// The stored profile is authoritative for the user type and display name
	explorer, err := s.profileRepo.GetByID(ctx, session.ProfileID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load reviewer: %w", err)
	}
	if explorer == nil || !explorer.IsExplorer() {
		metrics.ReviewSubmissions.WithLabelValues("not_explorer").Inc()
		return nil, apperrors.WithUserMessage(apperrors.AccessDeniedError("reviewer is not an explorer"), msgExplorersOnly)
	}

	if err := validateReviewInput(req); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}
	guideID := strings.TrimSpace(req.GuideID)

	if _, err := uuid.Parse(guideID); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("guide_not_found").Inc()
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError("guide"), msgGuideNotFound)
	}
	guide, err := s.profileRepo.GetByID(ctx, guideID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load guide: %w", err)
	}
	if guide == nil || !guide.IsGuide() {
		metrics.ReviewSubmissions.WithLabelValues("guide_not_found").Inc()
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError("guide"), msgGuideNotFound)
	}

	existing, err := s.reviewRepo.FindByGuideAndExplorer(ctx, guide.ID, explorer.ID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		metrics.ReviewSubmissions.WithLabelValues("duplicate").Inc()
		return nil, apperrors.WithUserMessage(apperrors.ErrDuplicateReview, msgAlreadyReviewed)
	}

	return &models.Review{
		ID:           uuid.NewString(),
		GuideID:      guide.ID,
		ExplorerID:   explorer.ID,
		ExplorerName: explorer.Name,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    s.now().UTC(),
	}, nil
}

// validateReviewInput checks fields in the order the web client reports them
func validateReviewInput(req *models.SubmitReviewRequest) error {
	comment := strings.TrimSpace(req.Comment)

	if strings.TrimSpace(req.GuideID) == "" || req.Rating == 0 || comment == "" {
		return apperrors.WithUserMessage(apperrors.InvalidInputError("review", "missing fields"), msgAllFieldsRequired)
	}
	if req.Rating < models.MinRating || req.Rating > models.MaxRating {
		return apperrors.WithUserMessage(apperrors.InvalidInputError("rating", "out of range"), msgRatingRange)
	}

	length := utf8.RuneCountInString(comment)
	if length < models.MinCommentLength {
		return apperrors.WithUserMessage(apperrors.InvalidInputError("comment", "too short"), msgCommentTooShort)
	}
	if length > models.MaxCommentLength {
		return apperrors.WithUserMessage(apperrors.InvalidInputError("comment", "too long"), msgCommentTooLong)
	}
	return nil
}

// ListGuideReviews returns every review of an active guide, newest first
func (s *ReviewService) ListGuideReviews(ctx context.Context, slug string) (*models.GuideReviewsResponse, error) {
	guide, err := s.profileRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.WithUserMessage(err, msgGuideNotFound)
		}
		return nil, fmt.Errorf("failed to load guide: %w", err)
	}
	if !guide.IsGuide() || !guide.Active {
		return nil, apperrors.WithUserMessage(apperrors.NotFoundError("guide"), msgGuideNotFound)
	}

	reviews, err := s.reviewRepo.ListByGuide(ctx, guide.ID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	return &models.GuideReviewsResponse{Reviews: reviews, Rating: guide.Rating}, nil
}
