package handlers

import (
	"net/http"

	"github.com/explorepe/explorepe-api/internal/middleware"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles sign-up, login and password recovery endpoints
type AuthHandler struct {
	registration services.RegistrationServiceInterface
	auth         services.AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(registration services.RegistrationServiceInterface, auth services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		auth:         auth,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.registration.Register(c.Request.Context(), &req)
	if err != nil {
		if resp != nil {
			attachError(c, err)
			c.JSON(statusForError(err), resp)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
// Checks credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, token, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		msg, _ := apperrors.UserMessage(err)
		if msg == "" {
			respondServiceError(c, err)
			return
		}
		attachError(c, err)
		c.JSON(statusForError(err), models.LoginResponse{Success: false, Error: msg})
		return
	}

	middleware.SetSessionCookie(
		c,
		token,
		h.auth.GetSessionTTL(),
		h.auth.GetCookieDomain(),
		h.auth.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.LoginResponse{
		Success: true,
		Session: session,
	})
}

// Logout handles POST /api/v1/auth/logout
// Clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearSessionCookie(
		c,
		h.auth.GetCookieDomain(),
		h.auth.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.LogoutResponse{
		Success: true,
	})
}

// GetSession handles GET /api/v1/auth/session
// Returns the current session, if any
func (h *AuthHandler) GetSession(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		c.JSON(http.StatusOK, models.SessionResponse{Authenticated: false})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		Authenticated: true,
		Session:       session,
	})
}

// VerifyEmail handles POST /api/v1/auth/verify
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Token de verificación inválido o expirado", err)
		return
	}

	if err := h.auth.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: services.MsgEmailVerified})
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
// Always answers with the same message so accounts cannot be enumerated
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: services.MsgResetRequested})
}

// ResetPassword handles POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := ParseValidationErrors(err); len(details) > 0 && details[0].Field == "Password" {
			respondError(c, http.StatusBadRequest, "La contraseña debe tener al menos 6 caracteres", err)
			return
		}
		respondError(c, http.StatusBadRequest, "Token inválido o expirado", err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: services.MsgPasswordReset})
}
