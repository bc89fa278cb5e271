// Package validators holds the request schemas and their validation rules.
// Handlers bind through the Validate*Request helpers and get back either a
// populated request or an apperrors value ready for the wire.
package validators

import (
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"user-api/apperrors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

type RegisterRequest struct {
	Email           string  `json:"email" binding:"required,email" validate:"required,email"`
	Username        *string `json:"username" binding:"omitempty,min=3,max=50" validate:"omitempty,min=3,max=50"`
	Password        string  `json:"password" binding:"required,min=8,max=100" validate:"required,min=8,max=100"`
	ConfirmPassword string  `json:"confirm_password" binding:"required" validate:"required"`
	FullName        string  `json:"full_name" binding:"omitempty,max=100" validate:"omitempty,max=100"`
	Bio             string  `json:"bio" binding:"omitempty,max=500" validate:"omitempty,max=500"`
	Phone           string  `json:"phone" binding:"omitempty,max=20" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// UserUpdateRequest carries a partial update; nil fields are left untouched.
type UserUpdateRequest struct {
	Email    *string `json:"email" binding:"omitempty,email" validate:"omitempty,email"`
	Username *string `json:"username" binding:"omitempty,min=3,max=50" validate:"omitempty,min=3,max=50"`
	FullName *string `json:"full_name" binding:"omitempty,max=100" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500" validate:"omitempty,max=500"`
	Phone    *string `json:"phone" binding:"omitempty,max=20" validate:"omitempty,max=20"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,max=500" validate:"omitempty,max=500"`
	IsActive  *bool   `json:"is_active"`
}

type PasswordChangeRequest struct {
	CurrentPassword    string `json:"current_password" binding:"required" validate:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8,max=100" validate:"required,min=8,max=100"`
	ConfirmNewPassword string `json:"confirm_new_password" binding:"required" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required" validate:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=100" validate:"required,min=8,max=100"`
}

// ValidatePasswordStrength enforces the password policy: at least 8
// characters with one uppercase, one lowercase and one digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return apperrors.Validation("Password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasUpper {
		return apperrors.Validation("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return apperrors.Validation("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return apperrors.Validation("Password must contain at least one digit")
	}
	return nil
}

// validateUsername allows alphanumerics plus underscores.
func validateUsername(username string) error {
	for _, c := range username {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' {
			return apperrors.Validation("Username must be alphanumeric")
		}
	}
	return nil
}

func bindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return apperrors.Validation("Invalid value for field " + strings.ToLower(e.Field()))
		}
		return apperrors.Validation("Invalid request payload")
	}
	return nil
}

func ValidateRegisterRequest(c *gin.Context) (*RegisterRequest, error) {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperrors.Validation("Passwords do not match")
	}
	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

func ValidateLoginRequest(c *gin.Context) (*LoginRequest, error) {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func ValidateUserUpdateRequest(c *gin.Context) (*UserUpdateRequest, error) {
	var req UserUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

func ValidatePasswordChangeRequest(c *gin.Context) (*PasswordChangeRequest, error) {
	var req PasswordChangeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(req.NewPassword); err != nil {
		return nil, err
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return nil, apperrors.Validation("New passwords do not match")
	}
	return &req, nil
}

func ValidateForgotPasswordRequest(c *gin.Context) (*ForgotPasswordRequest, error) {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func ValidateResetPasswordRequest(c *gin.Context) (*ResetPasswordRequest, error) {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(req.NewPassword); err != nil {
		return nil, err
	}
	return &req, nil
}
