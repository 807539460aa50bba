package postgres

import (
	"errors"
	"fmt"

	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Unique constraints from migrations/000001_initial_schema.up.sql
const (
	constraintProfileSlug   = "profiles_slug_key"
	constraintProfileEmail  = "profiles_email_key"
	constraintReviewOnePair = "reviews_guide_id_explorer_id_key"
)

// mapWriteError turns unique violations into the matching conflict sentinel.
// Application errors pass through, others are wrapped with the operation description.
func mapWriteError(err error, what string) error {
	if err == nil || isAppError(err) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case constraintProfileSlug:
			return apperrors.ErrSlugTaken
		case constraintProfileEmail:
			return apperrors.ErrEmailTaken
		case constraintReviewOnePair:
			return apperrors.ErrDuplicateReview
		default:
			return apperrors.ConflictError(pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("failed to %s: %w", what, err)
}

func isAppError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict)
}
