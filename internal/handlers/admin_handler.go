package handlers

import (
	"net/http"

	"github.com/explorepe/explorepe-api/internal/middleware"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler handles moderation endpoints. Routes are guarded by RequireAdmin.
type AdminHandler struct {
	service services.AdminServiceInterface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service services.AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ListProfiles handles GET /api/v1/admin/profiles
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// ToggleActive handles POST /api/v1/admin/profiles/:id/toggle-active
func (h *AdminHandler) ToggleActive(c *gin.Context) {
	resp, err := h.service.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.audit(c, "toggle_active", c.Param("id"))
	c.JSON(http.StatusOK, resp)
}

// DeleteProfile handles DELETE /api/v1/admin/profiles/:id
func (h *AdminHandler) DeleteProfile(c *gin.Context) {
	if err := h.service.DeleteProfile(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	h.audit(c, "delete", c.Param("id"))
	c.JSON(http.StatusOK, models.DeleteProfileResponse{Success: true, Message: "Perfil eliminado"})
}

// BackfillSlugs handles POST /api/v1/admin/slugs/backfill
func (h *AdminHandler) BackfillSlugs(c *gin.Context) {
	result, err := h.service.BackfillSlugs(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.audit(c, "backfill_slugs", "")
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *AdminHandler) audit(c *gin.Context, action, targetID string) {
	fields := []zap.Field{zap.String("action", action)}
	if targetID != "" {
		fields = append(fields, zap.String("target_id", targetID))
	}
	if session, err := middleware.GetSession(c); err == nil {
		fields = append(fields, zap.String("admin_id", session.ProfileID))
	}
	logger.Info("Admin action", fields...)
}
