package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "explorepe_session"

	// SessionContextKey is the key used to store session in context
	SessionContextKey = "session"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// SessionMiddleware validates the JWT session cookie and adds the session to context.
// Requests without a valid session are rejected.
func SessionMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie == "" {
			_ = c.Error(fmt.Errorf("missing session cookie")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			c.Abort()
			return
		}

		session, err := sessionFromToken(tokenManager, cookie)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid session token: %w", err)) //nolint:errcheck

			// Clear invalid cookie
			ClearSessionCookie(c, cookieDomain, cookieSecure)

			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión expirada"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			}
			c.Abort()
			return
		}

		c.Set(SessionContextKey, session)
		c.Next()
	}
}

// OptionalSessionMiddleware adds the session to context when a valid cookie is
// present and lets every request through
func OptionalSessionMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
			if session, err := sessionFromToken(tokenManager, cookie); err == nil {
				c.Set(SessionContextKey, session)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects sessions without the admin role. Must run after SessionMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := GetSession(c)
		if err != nil {
			_ = c.Error(err) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado"})
			c.Abort()
			return
		}
		if !session.IsAdmin() {
			_ = c.Error(fmt.Errorf("profile %s is not an admin", session.ProfileID)) //nolint:errcheck
			c.JSON(http.StatusForbidden, gin.H{"error": "Acceso denegado"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func sessionFromToken(tokenManager *jwt.TokenManager, token string) (*models.Session, error) {
	claims, err := tokenManager.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ProfileID: claims.ProfileID,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      models.Role(claims.Role),
		UserType:  models.UserType(claims.UserType),
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Unix()
	}
	return session, nil
}

// GetSession extracts session from context
func GetSession(c *gin.Context) (*models.Session, error) {
	val, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	session, ok := val.(*models.Session)
	if !ok {
		return nil, ErrInvalidSession
	}

	return session, nil
}

// SetSessionCookie sets the session cookie
func SetSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		ttlSeconds,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}
