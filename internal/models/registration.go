package models

// RegisterRequest represents a guide or explorer sign-up
//
//nolint:govet // Field alignment optimization would reduce readability
type RegisterRequest struct {
	// Account
	Name     string   `json:"name" binding:"required,max=100,slugname"`
	Email    string   `json:"email" binding:"required,email,max=255"`
	Password string   `json:"password" binding:"required,min=6,max=128"`
	UserType UserType `json:"userType" binding:"required,oneof=guide explorer"`

	// Display
	Location     string   `json:"location" binding:"required,max=200"`
	Lat          *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng          *float64 `json:"lng" binding:"omitempty,longitude"`
	Category     string   `json:"category" binding:"max=100"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	YouTubeEmbed string   `json:"youtubeEmbed" binding:"omitempty,max=500"`

	// Guide only
	Phone             string `json:"phone" binding:"required_if=UserType guide,max=30"`
	WhatsApp          string `json:"whatsapp" binding:"max=30"`
	CertificateNumber string `json:"certificateNumber" binding:"max=100"`
	Services          string `json:"services" binding:"max=5000"`
	Instagram         string `json:"instagram" binding:"omitempty,max=300"`
	Facebook          string `json:"facebook" binding:"omitempty,max=300"`

	// Explorer only
	Country string `json:"country" binding:"max=100"`

	// Security
	RecaptchaToken string `json:"recaptchaToken" binding:"max=2048"`
}

// RegisterResponse represents the response after registration
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Error   string `json:"error,omitempty"`
}
