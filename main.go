package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api/config"
	"user-api/controllers"
	"user-api/database"
	"user-api/routes"
	"user-api/security"
	"user-api/services"
	"user-api/store"
	"user-api/utils"
)

func main() {
	env, err := config.LoadEnv()
	if err != nil {
		panic("Error loading config: " + err.Error())
	}

	logger := newLogger(env.Debug)
	defer logger.Sync()

	utils.SetDebug(env.Debug)
	if !env.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	pgClient, err := database.NewPostgresClient(env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort)
	if err != nil {
		logger.Fatal("Error connecting to database", zap.Error(err))
	}

	if err := database.AutoMigrate(pgClient); err != nil {
		logger.Fatal("Error migrating database", zap.Error(err))
	}

	redisClient, err := database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
	if err != nil {
		logger.Fatal("Error connecting to redis", zap.Error(err))
	}

	userStore := store.NewUserStore(pgClient)
	tokens := security.NewTokenManager(env.JWTSecret, env.AccessTokenTTL)
	userService := services.NewUserService(userStore, tokens, redisClient, logger)

	authController := controllers.NewAuthController(userService, logger)
	userController := controllers.NewUserController(userService, logger, env.DefaultPageSize, env.MaxPageSize)

	r := gin.New()
	routes.SetupRoutes(r, authController, userController, tokens, userStore, logger, env.CORSOrigins)

	logger.Info("server listening", zap.String("port", env.Port))
	if err := r.Run(":" + env.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
