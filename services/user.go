// Package services implements the business rules on top of the store, the
// password hasher and the token manager. All taxonomy translation happens
// here: the layers below only ever return sentinel values.
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-api/apperrors"
	"user-api/models"
	"user-api/security"
	"user-api/store"
	"user-api/validators"
)

// LoginLimiter throttles password guessing per email. The redis client in
// the database package is the production implementation.
type LoginLimiter interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type UserService struct {
	store   *store.UserStore
	tokens  *security.TokenManager
	limiter LoginLimiter
	logger  *zap.Logger
}

func NewUserService(userStore *store.UserStore, tokens *security.TokenManager, limiter LoginLimiter, logger *zap.Logger) *UserService {
	return &UserService{
		store:   userStore,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
	}
}

// Tokens exposes the token manager for handlers that issue tokens directly
// (login response, refresh).
func (s *UserService) Tokens() *security.TokenManager {
	return s.tokens
}

// CreateUser registers a new account. New users are active, unverified and
// never superusers. Uniqueness is pre-checked for clear messages; the unique
// indexes remain the last line against concurrent registrations.
func (s *UserService) CreateUser(req *validators.RegisterRequest) (*models.User, error) {
	if _, err := s.store.GetByEmail(req.Email); err == nil {
		return nil, apperrors.Duplicate("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Internal(err)
	}

	if req.Username != nil {
		if _, err := s.store.GetByUsername(*req.Username); err == nil {
			return nil, apperrors.Duplicate("Username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(err)
		}
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Email:          req.Email,
		Username:       req.Username,
		FullName:       req.FullName,
		Bio:            req.Bio,
		Phone:          req.Phone,
		HashedPassword: hashed,
		IsActive:       true,
		IsVerified:     false,
	}

	if err := s.store.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicate("Email or username already registered")
		}
		return nil, apperrors.Internal(err)
	}

	return user, nil
}

// Authenticate verifies credentials, applies the login cooldown and records
// the successful login. Missing user, inactive account and wrong password all
// answer with the same unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	badCredentials := apperrors.Unauthorized("Incorrect email or password")

	blocked, err := s.limiter.TooManyFailures(ctx, email)
	if err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	} else if blocked {
		return nil, apperrors.TooManyRequests("Too many failed attempts. Please try again later.")
	}

	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		return nil, badCredentials
	}

	if !security.CheckPassword(password, user.HashedPassword) {
		if err := s.limiter.RecordFailure(ctx, email); err != nil {
			s.logger.Warn("login limiter unavailable", zap.Error(err))
		}
		return nil, badCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn("login limiter unavailable", zap.Error(err))
	}

	now := time.Now()
	if err := s.store.RecordLogin(user.ID, now); err != nil {
		return nil, apperrors.Internal(err)
	}
	user.LastLogin = &now
	user.LoginCount++

	return user, nil
}

// GetUser fetches a profile. Only the owner or a superuser may look.
func (s *UserService) GetUser(actor *models.User, targetID uint) (*models.User, error) {
	if !actor.IsSuperuser && actor.ID != targetID {
		return nil, apperrors.Forbidden("Not enough permissions")
	}

	user, err := s.store.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// ListUsers returns a page plus the filtered total. Superuser-only; the route
// guard enforces that before the service is reached.
func (s *UserService) ListUsers(skip, limit int, search string, isActive *bool) ([]models.User, int64, error) {
	users, total, err := s.store.List(skip, limit, search, isActive)
	if err != nil {
		return nil, 0, apperrors.Internal(err)
	}
	return users, total, nil
}

// UpdateUser applies a partial update. Owners may update themselves,
// superusers anyone. Changed email/username re-check uniqueness.
func (s *UserService) UpdateUser(actor *models.User, targetID uint, req *validators.UserUpdateRequest) (*models.User, error) {
	if !actor.IsSuperuser && actor.ID != targetID {
		return nil, apperrors.Forbidden("Not enough permissions")
	}

	target, err := s.store.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err)
	}

	changes := map[string]interface{}{}

	if req.Email != nil && *req.Email != target.Email {
		if _, err := s.store.GetByEmail(*req.Email); err == nil {
			return nil, apperrors.Duplicate("Email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(err)
		}
		changes["email"] = *req.Email
	}

	if req.Username != nil && (target.Username == nil || *req.Username != *target.Username) {
		if _, err := s.store.GetByUsername(*req.Username); err == nil {
			return nil, apperrors.Duplicate("Username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(err)
		}
		changes["username"] = *req.Username
	}

	if req.FullName != nil {
		changes["full_name"] = *req.FullName
	}
	if req.Bio != nil {
		changes["bio"] = *req.Bio
	}
	if req.Phone != nil {
		changes["phone"] = *req.Phone
	}
	if req.AvatarURL != nil {
		changes["avatar_url"] = *req.AvatarURL
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}

	updated, err := s.store.Update(targetID, changes)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Duplicate("Email or username already registered")
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err)
	}
	return updated, nil
}

// ChangePassword rotates the password after verifying the current one.
func (s *UserService) ChangePassword(actor *models.User, currentPassword, newPassword string) error {
	if !security.CheckPassword(currentPassword, actor.HashedPassword) {
		return apperrors.BadRequest("Current password is incorrect")
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	if _, err := s.store.Update(actor.ID, map[string]interface{}{"hashed_password": hashed}); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// DeleteUser soft deletes the target. Superuser-only, and never yourself.
func (s *UserService) DeleteUser(actor *models.User, targetID uint) error {
	if actor.ID == targetID {
		return apperrors.BadRequest("Cannot delete your own account")
	}

	deleted, err := s.store.SoftDelete(targetID)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !deleted {
		return apperrors.NotFound("User not found")
	}
	return nil
}

// ActivateUser marks the target active and verified.
func (s *UserService) ActivateUser(targetID uint) error {
	verified := true
	if err := s.store.SetActive(targetID, true, &verified); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// DeactivateUser marks the target inactive. Superusers cannot lock themselves
// out.
func (s *UserService) DeactivateUser(actor *models.User, targetID uint) error {
	if actor.ID == targetID {
		return apperrors.BadRequest("Cannot deactivate your own account")
	}

	if err := s.store.SetActive(targetID, false, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("User not found")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// Stats returns the admin overview.
func (s *UserService) Stats() (*store.UserStats, error) {
	stats, err := s.store.Stats()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

// ForgotPassword issues a reset token for a live, active account. The result
// is intentionally identical whether or not the email exists; without a
// mailer the token goes to the server log.
func (s *UserService) ForgotPassword(email string) error {
	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.tokens.GenerateResetToken(user.Email)
	if err != nil {
		return apperrors.Internal(err)
	}

	// TODO: deliver via email once a mailer exists.
	s.logger.Info("password reset token issued",
		zap.Uint("user_id", user.ID),
		zap.String("token", token),
	)
	return nil
}

// ResetPassword redeems a reset token and stores the new hash.
func (s *UserService) ResetPassword(token, newPassword string) error {
	email, err := s.tokens.ParseResetToken(token)
	if err != nil {
		return apperrors.BadRequest("Invalid or expired reset token")
	}

	user, err := s.store.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.BadRequest("Invalid or expired reset token")
		}
		return apperrors.Internal(err)
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	if _, err := s.store.Update(user.ID, map[string]interface{}{"hashed_password": hashed}); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// GetByID resolves a live user for the auth middleware.
func (s *UserService) GetByID(id uint) (*models.User, error) {
	return s.store.GetByID(id)
}
