package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrOpen is returned while the breaker rejects calls
var ErrOpen = gobreaker.ErrOpenState

const (
	minRequestsToTrip = 3
	tripFailureRatio  = 0.6
)

// Option adjusts the breaker settings built by New
type Option func(*gobreaker.Settings)

// WithTimeout sets how long the breaker stays open before probing again
func WithTimeout(d time.Duration) Option {
	return func(s *gobreaker.Settings) { s.Timeout = d }
}

// WithSuccessPredicate marks errors that are valid answers and must not count as failures
func WithSuccessPredicate(ok func(err error) bool) Option {
	return func(s *gobreaker.Settings) {
		s.IsSuccessful = func(err error) bool {
			return ok(err) || callerGaveUp(err)
		}
	}
}

// New creates a breaker that trips after 60% failures over at least 3 requests
// in a 60s window and reports its state on the circuit_breaker_state gauge.
func New(name string, opts ...Option) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequestsToTrip {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= tripFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || callerGaveUp(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))
	return gobreaker.NewCircuitBreaker(settings)
}

// Execute runs fn through the breaker and keeps its result type
func Execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return zero, wrapRejection(cb.Name(), err)
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker %q returned unexpected type %T", cb.Name(), result)
	}
	return typed, nil
}

// IsCircuitOpen checks if the circuit breaker is in open state
func IsCircuitOpen(cb *gobreaker.CircuitBreaker) bool {
	return cb.State() == gobreaker.StateOpen
}

// A cancelled request says nothing about upstream health
func callerGaveUp(err error) bool {
	return errors.Is(err, context.Canceled)
}

func wrapRejection(name string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return fmt.Errorf("circuit breaker %q is open: %w", name, err)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("circuit breaker %q has too many requests: %w", name, err)
	default:
		return err
	}
}
