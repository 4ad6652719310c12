package dto

import "github.com/spec-kit/console-client/internal/domain"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Username   string  `json:"username"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	InviteCode *string `json:"invite_code,omitempty"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is returned by endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse standard response for the login endpoint.
type LoginResponse struct {
	Message string       `json:"message,omitempty"`
	Token   string       `json:"token"`
	User    *UserProfile `json:"user"`
}

// UserProfile mirrors the backend user response.
type UserProfile struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	UserLevel   string `json:"user_level,omitempty"`
	Status      string `json:"status,omitempty"`
	DomainQuota int    `json:"domain_quota,omitempty"`
	InviteCode  string `json:"invite_code,omitempty"`
}

// NewUserRegisterRequest converts a domain registration into its wire form.
func NewUserRegisterRequest(r domain.Registration) UserRegisterRequest {
	req := UserRegisterRequest{Username: r.Username, Email: r.Email, Password: r.Password}
	if r.InviteCode != "" {
		code := r.InviteCode
		req.InviteCode = &code
	}
	return req
}

// ToDomain converts the wire profile to the domain snapshot.
func (p *UserProfile) ToDomain() *domain.UserProfile {
	if p == nil {
		return nil
	}
	return &domain.UserProfile{
		ID:          p.ID,
		DisplayName: p.Username,
		Email:       p.Email,
		IsAdmin:     p.IsAdmin,
		Level:       domain.UserLevel(p.UserLevel),
		Status:      domain.UserStatus(p.Status),
		DomainQuota: p.DomainQuota,
		InviteCode:  p.InviteCode,
	}
}

// NewUserProfile converts a domain profile into its wire form.
func NewUserProfile(p domain.UserProfile) UserProfile {
	return UserProfile{
		ID:          p.ID,
		Username:    p.DisplayName,
		Email:       p.Email,
		IsAdmin:     p.IsAdmin,
		UserLevel:   string(p.Level),
		Status:      string(p.Status),
		DomainQuota: p.DomainQuota,
		InviteCode:  p.InviteCode,
	}
}

// UserListResponse is returned by the admin user listing.
type UserListResponse struct {
	Users []UserProfile `json:"users"`
}
