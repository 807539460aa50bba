package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/explorepe/explorepe-api/internal/models"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/slug"
	"go.uber.org/zap"
)

// DefaultSlugMaxAttempts bounds the collision counter when none is configured
const DefaultSlugMaxAttempts = 100

// SlugStore answers the advisory existence check
type SlugStore interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// SlugWriter persists a candidate slug. It must return an error matching
// apperrors.ErrSlugTaken when the unique index rejects the candidate.
type SlugWriter func(ctx context.Context, candidate string) error

// SlugRequest describes the profile being named
type SlugRequest struct {
	Name string
	// Country is appended for explorers only
	Country  string
	UserType models.UserType
	// ExcludeID is the profile being updated, so it doesn't collide with itself
	ExcludeID string
}

// SlugResolver assigns unique, URL-safe slugs. The existence check only
// skips known collisions; the unique index on write is authoritative.
type SlugResolver struct {
	store       SlugStore
	maxAttempts int
}

// NewSlugResolver creates a resolver. maxAttempts <= 0 uses DefaultSlugMaxAttempts.
func NewSlugResolver(store SlugStore, maxAttempts int) *SlugResolver {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSlugMaxAttempts
	}
	return &SlugResolver{store: store, maxAttempts: maxAttempts}
}

// BaseSlug normalizes name, rejecting names that produce no slug
func BaseSlug(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", apperrors.InvalidInputError("name", "must not be empty")
	}
	base := slug.Normalize(name)
	if base == "" {
		return "", apperrors.InvalidInputError("name", "must contain letters or digits")
	}
	return base, nil
}

// Candidate builds the slug for a given collision counter: base, base-1, base-2...
// followed by the country suffix for explorers
func (req SlugRequest) Candidate(base string, counter int) string {
	candidate := slug.WithCounter(base, counter)
	if req.UserType == models.UserTypeExplorer {
		candidate = slug.WithSuffix(candidate, req.Country)
	}
	return candidate
}

// Assign finds a free slug for req and persists it through write. A counter
// is skipped while either the bare base-counter form or the suffixed
// candidate is taken; the suffixed candidate is what gets persisted.
func (r *SlugResolver) Assign(ctx context.Context, req SlugRequest, write SlugWriter) (string, error) {
	base, err := BaseSlug(req.Name)
	if err != nil {
		metrics.SlugAssignments.WithLabelValues("invalid").Inc()
		return "", err
	}

	for counter := 0; counter < r.maxAttempts; counter++ {
		bare := slug.WithCounter(base, counter)
		candidate := req.Candidate(base, counter)

		taken, err := r.anyTaken(ctx, req.ExcludeID, bare, candidate)
		if err != nil {
			metrics.SlugAssignments.WithLabelValues("error").Inc()
			return "", err
		}
		if taken {
			metrics.SlugCollisions.Inc()
			continue
		}

		err = write(ctx, candidate)
		if errors.Is(err, apperrors.ErrSlugTaken) {
			// Lost a race with a concurrent write
			metrics.SlugCollisions.Inc()
			logger.Debug("Slug taken on write, trying next candidate", zap.String("slug", candidate))
			continue
		}
		if err != nil {
			metrics.SlugAssignments.WithLabelValues("error").Inc()
			return "", err
		}

		metrics.SlugAssignments.WithLabelValues("success").Inc()
		return candidate, nil
	}

	metrics.SlugAssignments.WithLabelValues("exhausted").Inc()
	logger.Warn("Slug attempts exhausted",
		zap.String("base", base),
		zap.Int("max_attempts", r.maxAttempts))
	return "", apperrors.ConflictError(fmt.Sprintf("no free slug for %q after %d attempts", base, r.maxAttempts))
}

// anyTaken reports whether any of the given slugs is held by another profile
func (r *SlugResolver) anyTaken(ctx context.Context, excludeID string, slugs ...string) (bool, error) {
	seen := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}

		exists, err := r.store.SlugExists(ctx, s, excludeID)
		if err != nil {
			return false, fmt.Errorf("failed to check slug %q: %w", s, err)
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}
