package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api/apperrors"
	"user-api/middleware"
	"user-api/services"
	"user-api/utils"
	"user-api/validators"
)

// UserController handles the superuser-facing /users routes.
type UserController struct {
	service         *services.UserService
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewUserController(service *services.UserService, logger *zap.Logger, defaultPageSize, maxPageSize int) *UserController {
	return &UserController{
		service:         service,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid user id")
	}
	return uint(id), nil
}

// List returns a filtered, paginated user listing.
func (uc *UserController) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(uc.defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = uc.defaultPageSize
	}
	if pageSize > uc.maxPageSize {
		pageSize = uc.maxPageSize
	}

	search := c.Query("search")

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.Error(c, uc.logger, apperrors.Validation("Invalid value for is_active"))
			return
		}
		isActive = &v
	}

	skip := (page - 1) * pageSize
	users, total, err := uc.service.ListUsers(skip, pageSize, search, isActive)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	resp := UserListResponse{
		Users:      make([]UserResponse, 0, len(users)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// Create lets a superuser provision an account directly.
func (uc *UserController) Create(c *gin.Context) {
	req, err := validators.ValidateRegisterRequest(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	user, err := uc.service.CreateUser(req)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get returns a profile; owners see themselves, superusers see anyone.
func (uc *UserController) Get(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, uc.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	user, err := uc.service.GetUser(actor, id)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserDetail(user))
}

// Update applies a partial update; owners or superusers only.
func (uc *UserController) Update(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, uc.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	req, err := validators.ValidateUserUpdateRequest(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	user, err := uc.service.UpdateUser(actor, id, req)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserDetail(user))
}

// Delete soft deletes a user.
func (uc *UserController) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, uc.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	if err := uc.service.DeleteUser(actor, id); err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// Activate marks a user active and verified.
func (uc *UserController) Activate(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	if err := uc.service.ActivateUser(id); err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User activated successfully"})
}

// Deactivate marks a user inactive.
func (uc *UserController) Deactivate(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Error(c, uc.logger, apperrors.Unauthorized("Not authenticated"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	if err := uc.service.DeactivateUser(actor, id); err != nil {
		utils.Error(c, uc.logger, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User deactivated successfully"})
}

// Stats returns the aggregate overview.
func (uc *UserController) Stats(c *gin.Context) {
	stats, err := uc.service.Stats()
	if err != nil {
		utils.Error(c, uc.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
