package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api/controllers"
	"user-api/middleware"
	"user-api/security"
	"user-api/store"
)

// SetupRoutes wires middleware and the full route table onto the engine.
func SetupRoutes(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	tokens *security.TokenManager,
	users *store.UserStore,
	logger *zap.Logger,
	corsOrigins []string,
) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = corsOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	requireAuth := middleware.RequireAuth(tokens, users, logger)
	requireSuperuser := middleware.RequireSuperuser(logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", middleware.OptionalAuth(tokens, users), authController.Logout)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)

		auth.GET("/me", requireAuth, authController.Me)
		auth.PUT("/me", requireAuth, authController.UpdateMe)
		auth.POST("/change-password", requireAuth, authController.ChangePassword)
		auth.POST("/refresh", requireAuth, authController.Refresh)
	}

	usersGroup := router.Group("/users", requireAuth)
	{
		usersGroup.GET("", requireSuperuser, userController.List)
		usersGroup.POST("", requireSuperuser, userController.Create)
		usersGroup.GET("/stats/overview", requireSuperuser, userController.Stats)

		usersGroup.GET("/:id", userController.Get)
		usersGroup.PUT("/:id", userController.Update)
		usersGroup.DELETE("/:id", requireSuperuser, userController.Delete)
		usersGroup.POST("/:id/activate", requireSuperuser, userController.Activate)
		usersGroup.POST("/:id/deactivate", requireSuperuser, userController.Deactivate)
	}
}
