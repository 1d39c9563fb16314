package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushikchopra/urlShortener-server/internal/cache"
	"github.com/kaushikchopra/urlShortener-server/internal/config"
	"github.com/kaushikchopra/urlShortener-server/internal/controllers"
	"github.com/kaushikchopra/urlShortener-server/internal/database"
	"github.com/kaushikchopra/urlShortener-server/internal/mailer"
	"github.com/kaushikchopra/urlShortener-server/internal/middleware"
	"github.com/kaushikchopra/urlShortener-server/internal/repository"
	"github.com/kaushikchopra/urlShortener-server/internal/service"
	"github.com/kaushikchopra/urlShortener-server/internal/token"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx := context.Background()
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Redis is optional: the redirect path works against the database alone.
	var redirectCache cache.Cache
	if cfg.RedisURL != "" {
		redirectCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			redirectCache = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	urlRepo := repository.NewURLRepository(db)

	tokens := service.AuthTokens{
		Activation: token.NewService(cfg.ActivationTokenSecret, token.ActivationTokenTTL),
		Access:     token.NewService(cfg.AccessTokenSecret, token.AccessTokenTTL),
		Refresh:    token.NewService(cfg.RefreshTokenSecret, token.RefreshTokenTTL),
		Reset:      token.NewService(cfg.ResetPasswordSecret, token.ResetTokenTTL),
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword, cfg.ClientURL)

	authService := service.NewAuthService(userRepo, smtpMailer, tokens)
	urlService := service.NewURLService(urlRepo, userRepo, redirectCache, cfg.BaseURL, service.URLLimits{
		Daily:   cfg.DailyLimit,
		Monthly: cfg.MonthlyLimit,
	})

	authController := controllers.NewAuthController(authService, logger)
	urlController := controllers.NewURLController(urlService, logger)
	qrController := controllers.NewQRCodeController(urlService, logger)

	router := setupRouter(cfg, logger, tokens, authController, urlController, qrController)

	logger.Info("Server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func setupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tokens service.AuthTokens,
	authController *controllers.AuthController,
	urlController *controllers.URLController,
	qrController *controllers.QRCodeController,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Registered before the rate limiter so probes are never throttled.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())

	requireAuth := middleware.Auth(tokens.Access)

	// Login and signup share a stricter bucket than the rest of the API.
	auth := router.Group("/api/auth")
	auth.Use(middleware.NewRateLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst).Middleware())
	{
		auth.POST("/signup", authController.Signup)
		auth.PATCH("/activation/:token", authController.Activate)
		auth.GET("/resend-activation/:email", authController.ResendActivation)
		auth.POST("/login", authController.Login)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.PATCH("/reset-password/:token", authController.ResetPassword)
		auth.GET("/refresh", authController.Refresh)
		auth.GET("/logout", authController.Logout)
		auth.GET("/user", requireAuth, authController.GetUser)
	}

	url := router.Group("/api/url")
	{
		url.POST("/short-url", requireAuth, urlController.Shorten)
		url.GET("/dashboard", requireAuth, urlController.Dashboard)
		url.GET("/created-url", requireAuth, urlController.CreatedURLs)
		url.GET("/qrcode/:id", qrController.Generate)
		url.GET("/:id", urlController.Redirect)
	}

	router.GET("/:id", urlController.Redirect)

	return router
}
