package models

// UpdateProfileRequest represents an update of the caller's own profile.
// Guide-only and explorer-only fields are ignored for the other type.
//
//nolint:govet // Field alignment optimization would reduce readability
type UpdateProfileRequest struct {
	Name         string   `json:"name" binding:"required,max=100,slugname"`
	Location     string   `json:"location" binding:"required,max=200"`
	Lat          *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng          *float64 `json:"lng" binding:"omitempty,longitude"`
	Category     string   `json:"category" binding:"max=100"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	YouTubeEmbed string   `json:"youtubeEmbed" binding:"omitempty,max=500"`

	Phone             string `json:"phone" binding:"max=30"`
	WhatsApp          string `json:"whatsapp" binding:"max=30"`
	CertificateNumber string `json:"certificateNumber" binding:"max=100"`
	Services          string `json:"services" binding:"max=5000"`
	Instagram         string `json:"instagram" binding:"omitempty,max=300"`
	Facebook          string `json:"facebook" binding:"omitempty,max=300"`

	Country            string   `json:"country" binding:"max=100"`
	SecondaryLocations []string `json:"secondaryLocations" binding:"max=20,dive,max=200"`
	VisitedPlaces      []string `json:"visitedPlaces" binding:"max=100,dive,max=200"`
}

// UpdateProfileResponse represents the response after updating a profile
type UpdateProfileResponse struct {
	Success bool     `json:"success"`
	Profile *Profile `json:"profile,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ImageUpload is a validated image file ready for storage
type ImageUpload struct {
	Data        []byte
	FileName    string
	ContentType string
	Caption     string
}

// UpdateCaptionRequest sets the caption of an existing image
type UpdateCaptionRequest struct {
	URL     string `json:"url" binding:"required,max=1000"`
	Caption string `json:"caption" binding:"max=200"`
}

// ImagesResponse returns the gallery after an image change
type ImagesResponse struct {
	Success bool    `json:"success"`
	Image   *Image  `json:"image,omitempty"`
	Images  []Image `json:"images"`
	Error   string  `json:"error,omitempty"`
}

// GuideDetailResponse is a public guide page with its latest reviews
type GuideDetailResponse struct {
	Guide   PublicProfile `json:"guide"`
	Reviews []*Review     `json:"reviews"`
}
