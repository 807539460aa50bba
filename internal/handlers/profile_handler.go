package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/explorepe/explorepe-api/internal/middleware"
	"github.com/explorepe/explorepe-api/internal/models"
	"github.com/explorepe/explorepe-api/internal/services"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImageFormBytes bounds how much of an uploaded file is read; storage
// enforces the real size limit
const maxImageFormBytes = 6 << 20

// ProfileHandler handles session-authenticated own-profile endpoints
type ProfileHandler struct {
	service services.ProfileServiceInterface
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/me
// Returns the signed-in profile including account fields
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "No autorizado", err)
		return
	}

	profile, err := h.service.GetOwnProfile(c.Request.Context(), session)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile handles PUT /api/v1/me
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "No autorizado", err)
		return
	}

	var req models.UpdateProfileRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), session, &req)
	if err != nil {
		resp := models.UpdateProfileResponse{Success: false}
		resp.Error, _ = userMessageOrDefault(err)
		attachError(c, err)
		c.JSON(statusForError(err), resp)
		return
	}

	c.JSON(http.StatusOK, models.UpdateProfileResponse{Success: true, Profile: profile})
}

// UploadImage handles POST /api/v1/me/images
// Expects multipart/form-data with an "image" file and an optional "caption"
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "No autorizado", err)
		return
	}

	upload, err := readImageUpload(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "No se recibió ninguna imagen", err)
		return
	}

	image, images, err := h.service.UploadImage(c.Request.Context(), session, upload)
	if err != nil {
		h.respondImagesError(c, err)
		return
	}

	logger.Info("Image uploaded via session",
		zap.String("profile_id", session.ProfileID),
		zap.String("image_url", image.URL))

	c.JSON(http.StatusOK, models.ImagesResponse{Success: true, Image: image, Images: images})
}

// RemoveImage handles DELETE /api/v1/me/images?url=
func (h *ProfileHandler) RemoveImage(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "No autorizado", err)
		return
	}

	imageURL := strings.TrimSpace(c.Query("url"))
	if imageURL == "" {
		respondError(c, http.StatusBadRequest, "URL de imagen requerida", nil)
		return
	}

	images, err := h.service.RemoveImage(c.Request.Context(), session, imageURL)
	if err != nil {
		h.respondImagesError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ImagesResponse{Success: true, Images: images})
}

// UpdateCaption handles PUT /api/v1/me/images/caption
func (h *ProfileHandler) UpdateCaption(c *gin.Context) {
	session, err := middleware.GetSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "No autorizado", err)
		return
	}

	var req models.UpdateCaptionRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		respondBindError(c, bindErr)
		return
	}

	images, err := h.service.UpdateCaption(c.Request.Context(), session, &req)
	if err != nil {
		h.respondImagesError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ImagesResponse{Success: true, Images: images})
}

func (h *ProfileHandler) respondImagesError(c *gin.Context, err error) {
	msg, _ := userMessageOrDefault(err)
	attachError(c, err)
	c.JSON(statusForError(err), models.ImagesResponse{Success: false, Error: msg})
}

func readImageUpload(c *gin.Context) (*models.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageFormBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &models.ImageUpload{
		Data:        data,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Caption:     c.PostForm("caption"),
	}, nil
}
