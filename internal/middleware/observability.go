package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const redacted = "[redacted]"

// Query parameters whose values never reach the logs (verification and reset links carry tokens)
var sensitiveQueryParams = map[string]bool{
	"token": true, "password": true, "secret": true, "key": true,
	"code": true, "api_key": true, "apikey": true,
}

// ObservabilityMiddleware records request metrics and writes one log line per request
func ObservabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		metrics.ActiveRequests.WithLabelValues(method).Inc()
		defer metrics.ActiveRequests.WithLabelValues(method).Dec()

		c.Next()

		// Route template keeps label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		duration := metrics.MeasureDuration(start)
		status := c.Writer.Status()
		statusLabel := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(method, route, statusLabel).Observe(duration)
		metrics.HTTPRequestTotal.WithLabelValues(method, route, statusLabel).Inc()

		fields := []zap.Field{
			zap.String("route", route),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("response_size", c.Writer.Size()),
		}
		if session, err := GetSession(c); err == nil {
			fields = append(fields,
				zap.String("profile_id", session.ProfileID),
				zap.String("user_type", string(session.UserType)))
		}
		if status >= 400 {
			fields = append(fields, failureFields(c)...)
		}

		logger.LogHTTPRequest(c.Request.Context(), method, c.Request.URL.Path, status, duration, fields...)
	}
}

// failureFields adds route params, sanitized query and attached errors to failed request logs
func failureFields(c *gin.Context) []zap.Field {
	var fields []zap.Field

	if len(c.Params) > 0 {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}
		fields = append(fields, zap.Any("route_params", params))
	}

	if query := sanitizeQuery(c); len(query) > 0 {
		fields = append(fields, zap.Any("query_params", query))
	}

	if len(c.Errors) > 0 {
		fields = append(fields, zap.String("error", c.Errors.String()))
	}

	return fields
}

func sanitizeQuery(c *gin.Context) map[string]string {
	query := c.Request.URL.Query()
	if len(query) == 0 {
		return nil
	}

	sanitized := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) == 0 {
			continue
		}
		if sensitiveQueryParams[strings.ToLower(k)] {
			sanitized[k] = redacted
			continue
		}
		sanitized[k] = v[0]
	}
	return sanitized
}
