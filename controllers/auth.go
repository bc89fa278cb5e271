package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api/apperrors"
	"user-api/middleware"
	"user-api/services"
	"user-api/utils"
	"user-api/validators"
)

// AuthController handles the /auth routes: registration, login, the current
// user's profile, password rotation and reset.
type AuthController struct {
	service *services.UserService
	logger  *zap.Logger
}

func NewAuthController(service *services.UserService, logger *zap.Logger) *AuthController {
	return &AuthController{service: service, logger: logger}
}

func (ac *AuthController) tokenResponse(c *gin.Context, userID uint, email string) {
	token, err := ac.service.Tokens().Generate(userID, email)
	if err != nil {
		utils.Error(c, ac.logger, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(ac.service.Tokens().TTL().Seconds()),
	})
}

// Register creates a new account.
func (ac *AuthController) Register(c *gin.Context) {
	req, err := validators.ValidateRegisterRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	user, err := ac.service.CreateUser(req)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login verifies credentials and issues an access token.
func (ac *AuthController) Login(c *gin.Context) {
	req, err := validators.ValidateLoginRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	ac.tokenResponse(c, user.ID, user.Email)
}

// Me returns the authenticated user's own profile.
func (ac *AuthController) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, ac.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}
	c.JSON(http.StatusOK, toUserDetail(user))
}

// UpdateMe applies a partial update to the authenticated user's own profile.
func (ac *AuthController) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, ac.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	req, err := validators.ValidateUserUpdateRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	updated, err := ac.service.UpdateUser(user, user.ID, req)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserDetail(updated))
}

// ChangePassword rotates the authenticated user's password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, ac.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	req, err := validators.ValidatePasswordChangeRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	if err := ac.service.ChangePassword(user, req.CurrentPassword, req.NewPassword); err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

// Refresh reissues an access token for the authenticated user.
func (ac *AuthController) Refresh(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, ac.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}
	ac.tokenResponse(c, user.ID, user.Email)
}

// Logout is a client-side no-op: tokens are stateless and there is no
// revocation list. When a valid token rides along we log who logged out.
func (ac *AuthController) Logout(c *gin.Context) {
	if user, ok := middleware.CurrentUser(c); ok {
		ac.logger.Info("user logged out", zap.Uint("user_id", user.ID))
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// ForgotPassword issues a password-reset token. The answer is the same
// whether or not the account exists.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	req, err := validators.ValidateForgotPasswordRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	if err := ac.service.ForgotPassword(req.Email); err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "If the account exists, a reset token has been issued"})
}

// ResetPassword redeems a reset token.
func (ac *AuthController) ResetPassword(c *gin.Context) {
	req, err := validators.ValidateResetPasswordRequest(c)
	if err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	if err := ac.service.ResetPassword(req.Token, req.NewPassword); err != nil {
		utils.Error(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}
