package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/explorepe/explorepe-api/internal/database/postgres"
	"github.com/explorepe/explorepe-api/internal/models"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/geocoding"
	"github.com/explorepe/explorepe-api/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock implementation of ProfileRepositoryInterface
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetBySlug(ctx context.Context, slug string) (*models.Profile, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByVerificationToken(ctx context.Context, token string) (*models.Profile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*models.Profile, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context) ([]*models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListActiveGuides(ctx context.Context, filter models.GuideFilter) ([]*models.Profile, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListBackfillCandidates(ctx context.Context) ([]*postgres.BackfillCandidate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*postgres.BackfillCandidate), args.Error(1)
}

func (m *MockProfileRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateSlug(ctx context.Context, id, slug string) error {
	args := m.Called(ctx, id, slug)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateImages(ctx context.Context, id string, images []models.Image) error {
	args := m.Called(ctx, id, images)
	return args.Error(0)
}

func (m *MockProfileRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockProfileRepository) MarkEmailVerified(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error {
	args := m.Called(ctx, id, tokenHash, expires)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockProfileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProfileRepository) InvalidateCache() {
	m.Called()
}

// MockReviewRepository is a mock implementation of ReviewRepositoryInterface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FindByGuideAndExplorer(ctx context.Context, guideID, explorerID string) (*models.Review, error) {
	args := m.Called(ctx, guideID, explorerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByGuide(ctx context.Context, guideID string, limit int) ([]*models.Review, error) {
	args := m.Called(ctx, guideID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}

func (m *MockReviewRepository) CreateAndAggregate(ctx context.Context, review *models.Review) (models.Rating, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(models.Rating), args.Error(1)
}

// MockImageStorage is a mock implementation of ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) UploadImage(ctx context.Context, data []byte, key, contentType string) (string, error) {
	args := m.Called(ctx, data, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) DeleteImage(ctx context.Context, imageURL string) error {
	args := m.Called(ctx, imageURL)
	return args.Error(0)
}

func (m *MockImageStorage) ValidateImageType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *MockImageStorage) ValidateImageSize(size int64) error {
	args := m.Called(size)
	return args.Error(0)
}

func (m *MockImageStorage) GenerateKey(profileID, fileName, contentType string) string {
	args := m.Called(profileID, fileName, contentType)
	return args.String(0)
}

// MockCaptcha is a mock implementation of CaptchaVerifier
type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Verify(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockGeocoder is a mock implementation of Geocoder
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*geocoding.Location, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geocoding.Location), args.Error(1)
}

// recordingSender collects sent messages. Sends may happen on another goroutine.
type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

// memSlugStore is an in-memory slug index keyed by slug, valued by owner id
type memSlugStore struct {
	mu    sync.Mutex
	slugs map[string]string
}

func newMemSlugStore(taken ...string) *memSlugStore {
	s := &memSlugStore{slugs: make(map[string]string)}
	for _, slug := range taken {
		s.slugs[slug] = "existing-" + slug
	}
	return s
}

func (s *memSlugStore) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.slugs[slug]
	return ok && owner != excludeID, nil
}

func (s *memSlugStore) claim(slug, owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.slugs[slug]; ok && existing != owner {
		return false
	}
	s.slugs[slug] = owner
	return true
}

func floatPtr(f float64) *float64 { return &f }

// memReviewStore recomputes the aggregate on every insert like the postgres transaction does
type memReviewStore struct {
	mu      sync.Mutex
	reviews []*models.Review
	ratings map[string]models.Rating
}

func newMemReviewStore() *memReviewStore {
	return &memReviewStore{ratings: make(map[string]models.Rating)}
}

func (s *memReviewStore) FindByGuideAndExplorer(_ context.Context, guideID, explorerID string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.GuideID == guideID && r.ExplorerID == explorerID {
			return r, nil
		}
	}
	return nil, apperrors.NotFoundError("review")
}

func (s *memReviewStore) ListByGuide(_ context.Context, guideID string, limit int) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Review, 0)
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].GuideID == guideID {
			out = append(out, s.reviews[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memReviewStore) CreateAndAggregate(_ context.Context, review *models.Review) (models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ratings []int
	for _, r := range s.reviews {
		if r.GuideID != review.GuideID {
			continue
		}
		if r.ExplorerID == review.ExplorerID {
			return models.Rating{}, apperrors.ErrDuplicateReview
		}
		ratings = append(ratings, r.Rating)
	}
	s.reviews = append(s.reviews, review)
	rating := models.AggregateRating(append(ratings, review.Rating))
	s.ratings[review.GuideID] = rating
	return rating, nil
}
