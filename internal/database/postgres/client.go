package postgres

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Client wraps a pgx connection pool with observability
type Client struct {
	pool *pgxpool.Pool
}

// NewClient wraps an already connected pool (see pkg/db.NewPool)
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Close closes the connection pool
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
		logger.Info("PostgreSQL connection pool closed")
	}
}

// Pool returns the underlying connection pool for advanced usage
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Ping checks if the database connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Stats returns connection pool statistics
func (c *Client) Stats() *pgxpool.Stat {
	return c.pool.Stat()
}

// observe records metrics and the API call log for one store operation.
// Missing rows and unique violations are expected outcomes and are not logged as errors.
func observe(ctx context.Context, operation string, start time.Time, err error, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)

	switch {
	case err == nil:
		recordMetrics(operation, "success", duration)
		logger.LogAPICall(ctx, "postgres", operation, "success", duration, fields...)
	case errors.Is(err, apperrors.ErrNotFound):
		recordMetrics(operation, "not_found", duration)
	case errors.Is(err, apperrors.ErrConflict):
		recordMetrics(operation, "conflict", duration)
		logger.LogAPICall(ctx, "postgres", operation, "conflict", duration, append(fields, zap.Error(err))...)
	default:
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "postgres", operation, "error", duration, append(fields, zap.Error(err))...)
	}
}

// notFound converts pgx.ErrNoRows to a NotFoundError for resource
func notFound(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundError(resource)
	}
	return err
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.DBClientRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBClientRequestTotal.WithLabelValues(operation, status).Inc()
}
