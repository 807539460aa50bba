package handlers

import (
	"net/http"

	"github.com/explorepe/explorepe-api/internal/middleware"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	service services.ReviewServiceInterface
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service services.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// SubmitReview handles POST /api/v1/reviews
// The route allows anonymous requests so the service reports the missing session
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req models.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	// A missing session is passed through as nil
	session, _ := middleware.GetSession(c)

	resp, err := h.service.SubmitReview(c.Request.Context(), session, &req)
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
