package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/explorepe/explorepe-api/internal/models"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const reviewColumns = `r.id, r.guide_id, r.explorer_id, r.explorer_name, r.rating, r.comment, r.created_at`

func scanReview(row pgx.Row) (*models.Review, error) {
	var r models.Review
	if err := row.Scan(&r.ID, &r.GuideID, &r.ExplorerID, &r.ExplorerName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReviewByGuideAndExplorer fetches the single review explorerID left on guideID
func (c *Client) GetReviewByGuideAndExplorer(ctx context.Context, guideID, explorerID string) (*models.Review, error) {
	start := time.Now()

	query := fmt.Sprintf(`SELECT %s FROM reviews r WHERE r.guide_id = $1 AND r.explorer_id = $2`, reviewColumns)

	review, err := scanReview(c.pool.QueryRow(ctx, query, guideID, explorerID))
	err = notFound(err, "review")
	observe(ctx, "getReviewByGuideAndExplorer", start, err)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviewsByGuide returns a guide's reviews newest first. limit <= 0 returns all of them.
func (c *Client) ListReviewsByGuide(ctx context.Context, guideID string, limit int) ([]*models.Review, error) {
	start := time.Now()
	operation := "listReviewsByGuide"

	query := fmt.Sprintf(`SELECT %s FROM reviews r WHERE r.guide_id = $1 ORDER BY r.created_at DESC`, reviewColumns)
	args := []any{guideID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*models.Review, 0)
	for rows.Next() {
		review, scanErr := scanReview(rows)
		if scanErr != nil {
			observe(ctx, operation, start, scanErr)
			return nil, fmt.Errorf("failed to scan review row: %w", scanErr)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		observe(ctx, operation, start, err)
		return nil, fmt.Errorf("error iterating review rows: %w", err)
	}

	observe(ctx, operation, start, nil, zap.Int("count", len(reviews)))
	return reviews, nil
}

// CreateReviewAndAggregate inserts a review and recomputes the guide's rating in
// one transaction. The guide row is locked first, so concurrent reviews of the
// same guide are applied one at a time. Any failure rolls the review back.
func (c *Client) CreateReviewAndAggregate(ctx context.Context, review *models.Review) (models.Rating, error) {
	start := time.Now()
	operation := "createReviewAndAggregate"

	rating, err := c.createReviewAndAggregate(ctx, review)
	observe(ctx, operation, start, err,
		zap.String("guide_id", review.GuideID),
		zap.Int("rating_count", rating.Count),
	)
	return rating, err
}

func (c *Client) createReviewAndAggregate(ctx context.Context, review *models.Review) (rating models.Rating, err error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return models.Rating{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	var userType string
	err = tx.QueryRow(ctx, `SELECT user_type FROM profiles WHERE id = $1 FOR UPDATE`, review.GuideID).Scan(&userType)
	if err != nil {
		return models.Rating{}, notFound(err, "guide")
	}
	if models.UserType(userType) != models.UserTypeGuide {
		return models.Rating{}, apperrors.NotFoundError("guide")
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO reviews (id, guide_id, explorer_id, explorer_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		review.ID, review.GuideID, review.ExplorerID, review.ExplorerName, review.Rating, review.Comment, review.CreatedAt,
	).Scan(&review.CreatedAt)
	if err != nil {
		return models.Rating{}, mapWriteError(err, "insert review")
	}

	rating, err = refreshRating(ctx, tx, review.GuideID)
	if err != nil {
		return models.Rating{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Rating{}, fmt.Errorf("failed to commit review: %w", err)
	}
	return rating, nil
}

// ratingQuerier is the part of pgx.Tx that rating recomputation uses
type ratingQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const updateRatingQuery = `UPDATE profiles SET rating_stars = $2, rating_count = $3, updated_at = NOW() WHERE id = $1`

// refreshRating recomputes a guide's aggregate from its stored reviews and writes it back.
// Callers hold the guide row lock.
func refreshRating(ctx context.Context, q ratingQuerier, guideID string) (models.Rating, error) {
	ratings, err := guideRatings(ctx, q, guideID)
	if err != nil {
		return models.Rating{}, err
	}
	rating := models.AggregateRating(ratings)

	if _, err := q.Exec(ctx, updateRatingQuery, guideID, rating.Stars, rating.Count); err != nil {
		return models.Rating{}, fmt.Errorf("failed to update rating: %w", err)
	}
	return rating, nil
}

func guideRatings(ctx context.Context, q ratingQuerier, guideID string) ([]int, error) {
	rows, err := q.Query(ctx, `SELECT rating FROM reviews WHERE guide_id = $1`, guideID)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings: %w", err)
	}
	return ratings, nil
}
