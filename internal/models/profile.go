package models

import (
	"fmt"
	"strings"
	"time"
)

// UserType distinguishes guide profiles from explorer profiles
type UserType string

const (
	UserTypeGuide    UserType = "guide"
	UserTypeExplorer UserType = "explorer"
)

func (t UserType) IsValid() bool {
	return t == UserTypeGuide || t == UserTypeExplorer
}

// Role is the access level of a profile
type Role string

const (
	RoleGuide Role = "guide"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleGuide || r == RoleAdmin
}

// DefaultCategory is assigned to guides that don't pick one
const DefaultCategory = "Guía turística"

// GuideDetails holds fields only guides have
type GuideDetails struct {
	Phone             string `json:"phone"`
	WhatsApp          string `json:"whatsapp,omitempty"`
	CertificateNumber string `json:"certificateNumber,omitempty"`
	Services          string `json:"services,omitempty"`
	Instagram         string `json:"instagram,omitempty"`
	Facebook          string `json:"facebook,omitempty"`
}

// ExplorerDetails holds fields only explorers have
type ExplorerDetails struct {
	Country            string   `json:"country,omitempty"`
	SecondaryLocations []string `json:"secondaryLocations,omitempty"`
	VisitedPlaces      []string `json:"visitedPlaces,omitempty"`
}

// Profile is a guide or explorer account. Exactly one of Guide and Explorer
// is set, matching UserType.
//
//nolint:govet // Field alignment optimization would reduce readability
type Profile struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	Category     string   `json:"category"`
	Price        *float64 `json:"price,omitempty"`
	YouTubeEmbed string   `json:"youtubeEmbed,omitempty"`
	Role         Role     `json:"role"`
	UserType     UserType `json:"userType"`

	Guide    *GuideDetails    `json:"guide,omitempty"`
	Explorer *ExplorerDetails `json:"explorer,omitempty"`

	Images        []Image `json:"images"`
	Active        bool    `json:"active"`
	EmailVerified bool    `json:"emailVerified"`
	Rating        Rating  `json:"rating"`

	// Credentials never leave the server
	PasswordHash      string     `json:"-"`
	VerificationToken string     `json:"-"`
	ResetTokenHash    string     `json:"-"`
	ResetExpires      *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Profile) IsGuide() bool    { return p.UserType == UserTypeGuide }
func (p *Profile) IsExplorer() bool { return p.UserType == UserTypeExplorer }
func (p *Profile) IsAdmin() bool    { return p.Role == RoleAdmin }

// Country returns the explorer's country, or "" for guides
func (p *Profile) Country() string {
	if p.Explorer == nil {
		return ""
	}
	return strings.TrimSpace(p.Explorer.Country)
}

// Validate checks that the details variant matches the user type
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !p.Role.IsValid() {
		return fmt.Errorf("invalid role %q", p.Role)
	}

	switch p.UserType {
	case UserTypeGuide:
		if p.Guide == nil || p.Explorer != nil {
			return fmt.Errorf("guide profile must carry guide details only")
		}
		if strings.TrimSpace(p.Guide.Phone) == "" {
			return fmt.Errorf("phone is required for guides")
		}
	case UserTypeExplorer:
		if p.Explorer == nil || p.Guide != nil {
			return fmt.Errorf("explorer profile must carry explorer details only")
		}
	default:
		return fmt.Errorf("invalid user type %q", p.UserType)
	}
	return nil
}

// PublicProfile is the directory view of a profile
//
//nolint:govet // Field alignment optimization would reduce readability
type PublicProfile struct {
	ID           string           `json:"id"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	Lat          *float64         `json:"lat,omitempty"`
	Lng          *float64         `json:"lng,omitempty"`
	Category     string           `json:"category"`
	Price        *float64         `json:"price,omitempty"`
	YouTubeEmbed string           `json:"youtubeEmbed,omitempty"`
	UserType     UserType         `json:"userType"`
	Guide        *GuideDetails    `json:"guide,omitempty"`
	Explorer     *ExplorerDetails `json:"explorer,omitempty"`
	Images       []Image          `json:"images"`
	Rating       Rating           `json:"rating"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// ToPublicResponse drops account fields (email, role, moderation flags)
func (p *Profile) ToPublicResponse() PublicProfile {
	images := p.Images
	if images == nil {
		images = []Image{}
	}
	return PublicProfile{
		ID:           p.ID,
		Slug:         p.Slug,
		Name:         p.Name,
		Location:     p.Location,
		Lat:          p.Lat,
		Lng:          p.Lng,
		Category:     p.Category,
		Price:        p.Price,
		YouTubeEmbed: p.YouTubeEmbed,
		UserType:     p.UserType,
		Guide:        p.Guide,
		Explorer:     p.Explorer,
		Images:       images,
		Rating:       p.Rating,
		CreatedAt:    p.CreatedAt,
	}
}

// GuideFilter narrows the public guide listing
type GuideFilter struct {
	Category string `form:"category" binding:"max=100"`
	Location string `form:"location" binding:"max=200"`
}

// Matches applies the filter: exact category, case-insensitive location substring
func (f GuideFilter) Matches(p *Profile) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		if !strings.Contains(strings.ToLower(p.Location), strings.ToLower(loc)) {
			return false
		}
	}
	return true
}
