package controllers

import (
	"time"

	"user-api/models"
)

// UserResponse is the public user shape. The password hash never appears in
// any response type.
type UserResponse struct {
	ID         uint       `json:"id"`
	Email      string     `json:"email"`
	Username   *string    `json:"username,omitempty"`
	FullName   string     `json:"full_name,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	LoginCount int        `json:"login_count"`
}

// UserDetail is the richer shape for the owner and for admins.
type UserDetail struct {
	UserResponse
	IsSuperuser bool   `json:"is_superuser"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FullName:   u.FullName,
		Bio:        u.Bio,
		Phone:      u.Phone,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		LastLogin:  u.LastLogin,
		LoginCount: u.LoginCount,
	}
}

func toUserDetail(u *models.User) UserDetail {
	return UserDetail{
		UserResponse: toUserResponse(u),
		IsSuperuser:  u.IsSuperuser,
		AvatarURL:    u.AvatarURL,
	}
}

// TokenResponse is the login/refresh payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// UserListResponse is the paginated admin listing.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// MessageResponse is the generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}
