package middleware

import (
	"github.com/gin-gonic/gin"
)

var baseSecurityHeaders = [][2]string{
	{"X-Frame-Options", "DENY"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	// Geolocation stays allowed for the map page served from the same origin
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=(self), interest-cohort=()"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
}

// SecurityHeadersMiddleware adds security headers to all HTTP responses.
// hsts enables Strict-Transport-Security and should only be set behind TLS.
func SecurityHeadersMiddleware(hsts bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range baseSecurityHeaders {
			h.Set(kv[0], kv[1])
		}
		if hsts {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		// Responses to signed-in requests carry account data and must never be cached
		if _, err := c.Cookie(SessionCookieName); err == nil {
			h.Set("Cache-Control", "no-store, private")
			h.Set("Pragma", "no-cache")
		}

		c.Next()
	}
}
