package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-api/apperrors"
	"user-api/models"
	"user-api/security"
	"user-api/store"
	"user-api/utils"
)

// currentUserKey is where RequireAuth/OptionalAuth park the resolved user.
const currentUserKey = "currentUser"

// CurrentUser returns the user resolved by the auth middleware, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// resolveUser walks the identity chain: token → claims → live user → active.
// Each failure maps to a distinct unauthorized error.
func resolveUser(c *gin.Context, tokens *security.TokenManager, users *store.UserStore) (*models.User, error) {
	tokenStr := bearerToken(c)
	if tokenStr == "" {
		return nil, apperrors.Unauthorized("Not authenticated")
	}

	claims, err := tokens.Parse(tokenStr)
	if err != nil {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}

	user, err := users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthorized("Could not validate credentials")
		}
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("Inactive user")
	}

	return user, nil
}

// RequireAuth resolves the bearer token to an active user or aborts with 401.
func RequireAuth(tokens *security.TokenManager, users *store.UserStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveUser(c, tokens, users)
		if err != nil {
			utils.AbortError(c, logger, err)
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid credential is present and
// degrades to "no identity" on any failure. It never aborts.
func OptionalAuth(tokens *security.TokenManager, users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := resolveUser(c, tokens, users); err == nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// RequireSuperuser gates admin operations. Must run after RequireAuth.
func RequireSuperuser(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.AbortError(c, logger, apperrors.Unauthorized("Not authenticated"))
			return
		}
		if !user.IsSuperuser {
			utils.AbortError(c, logger, apperrors.Forbidden("Not enough permissions"))
			return
		}
		c.Next()
	}
}

// RequireVerified gates operations limited to verified accounts. Must run
// after RequireAuth.
func RequireVerified(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.AbortError(c, logger, apperrors.Unauthorized("Not authenticated"))
			return
		}
		if !user.IsVerified {
			utils.AbortError(c, logger, apperrors.Forbidden("Email verification required"))
			return
		}
		c.Next()
	}
}
