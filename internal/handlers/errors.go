package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/explorepe/explorepe-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps a service error to its HTTP status. The body carries
// the error's user message, or a generic one; internal details never leave the server.
func respondServiceError(c *gin.Context, err error) {
	message, status := userMessageOrDefault(err)
	respondError(c, status, message, err)
}

// userMessageOrDefault returns the message to show for err and its status
func userMessageOrDefault(err error) (string, int) {
	status := statusForError(err)
	if message, ok := apperrors.UserMessage(err); ok {
		return message, status
	}
	return defaultMessages[status], status
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var defaultMessages = map[int]string{
	http.StatusBadRequest:          "Solicitud inválida",
	http.StatusUnauthorized:        "No autorizado",
	http.StatusForbidden:           "Acceso denegado",
	http.StatusNotFound:            "No encontrado",
	http.StatusConflict:            "Conflicto con el estado actual",
	http.StatusInternalServerError: "Error interno del servidor",
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	if details := ParseValidationErrors(err); len(details) > 0 {
		respondErrorWithDetails(c, http.StatusBadRequest, "Error de validación", details, err)
		return
	}
	respondError(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido", err)
}
