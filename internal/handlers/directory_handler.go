package handlers

import (
	"net/http"

	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// DirectoryHandler serves the public guide and explorer pages
type DirectoryHandler struct {
	directory services.DirectoryServiceInterface
	reviews   services.ReviewServiceInterface
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(directory services.DirectoryServiceInterface, reviews services.ReviewServiceInterface) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, reviews: reviews}
}

// ListGuides handles GET /api/v1/guides?category=&location=
func (h *DirectoryHandler) ListGuides(c *gin.Context) {
	var filter models.GuideFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}

	guides, err := h.directory.ListGuides(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"guides": guides})
}

// GetGuide handles GET /api/v1/guides/:slug
func (h *DirectoryHandler) GetGuide(c *gin.Context) {
	resp, err := h.directory.GetGuide(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetGuideReviews handles GET /api/v1/guides/:slug/reviews
func (h *DirectoryHandler) GetGuideReviews(c *gin.Context) {
	resp, err := h.reviews.ListGuideReviews(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetExplorer handles GET /api/v1/explorers/:slug
func (h *DirectoryHandler) GetExplorer(c *gin.Context) {
	explorer, err := h.directory.GetExplorer(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"explorer": explorer})
}
