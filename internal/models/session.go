package models

// Session represents an authenticated profile session carried in the JWT cookie
type Session struct {
	ProfileID string   `json:"profileId"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	UserType  UserType `json:"userType"`
	ExpiresAt int64    `json:"exp"`
	IssuedAt  int64    `json:"iat"`
}

func (s *Session) IsAdmin() bool    { return s.Role == RoleAdmin }
func (s *Session) IsExplorer() bool { return s.UserType == UserTypeExplorer }

// LoginRequest is the payload for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SessionResponse is returned by the session endpoint
type SessionResponse struct {
	Authenticated bool     `json:"authenticated"`
	Session       *Session `json:"session,omitempty"`
}

// VerifyEmailRequest carries the token from the verification link
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required,min=20,max=128"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required,min=20,max=128"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// MessageResponse is a generic success response with a user-facing message
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LogoutResponse is returned after logout
type LogoutResponse struct {
	Success bool `json:"success"`
}
