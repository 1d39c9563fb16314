package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushikchopra/urlShortener-server/internal/models"
	"github.com/kaushikchopra/urlShortener-server/internal/service"
	"github.com/kaushikchopra/urlShortener-server/internal/token"
)

const refreshCookieName = "refreshToken"

type AuthController struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthController(authService service.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Signup handles POST /api/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	response, err := ac.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"error": "Email already in use"})
		default:
			ac.logger.Error("Signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// Activate handles PATCH /api/auth/activation/:token
func (ac *AuthController) Activate(c *gin.Context) {
	err := ac.authService.Activate(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		case errors.Is(err, service.ErrAlreadyActivated):
			c.JSON(http.StatusBadRequest, gin.H{"error": "User is already activated"})
		default:
			ac.logger.Error("Activation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account activated successfully"})
}

// ResendActivation handles GET /api/auth/resend-activation/:email
func (ac *AuthController) ResendActivation(c *gin.Context) {
	response, err := ac.authService.ResendActivation(c.Request.Context(), c.Param("email"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found. Please sign up."})
		default:
			ac.logger.Error("Resend activation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}

// Login handles POST /api/auth/login. The refresh token travels in an
// HTTP-only, secure, cross-site cookie; only the access token is in the body.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required."})
		return
	}

	result, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, service.ErrNotActivated):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please activate your account before login"})
		default:
			ac.logger.Error("Login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	setRefreshCookie(c, result.RefreshToken, int(token.RefreshTokenTTL.Seconds()))

	c.JSON(http.StatusOK, models.LoginResponse{
		Status:      "User logged in successfully!",
		AccessToken: result.AccessToken,
	})
}

// Refresh handles GET /api/auth/refresh - mints a new access token from the
// refresh cookie
func (ac *AuthController) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.Status(http.StatusUnauthorized)
		return
	}

	accessToken, err := ac.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			c.Status(http.StatusForbidden)
			return
		}
		ac.logger.Error("Refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// GetUser handles GET /api/auth/user (requires a Bearer access token)
func (ac *AuthController) GetUser(c *gin.Context) {
	profile, err := ac.authService.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		ac.logger.Error("Get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Logout handles GET /api/auth/logout. Always clears the cookie; answers
// 204 even when there is no session to tear down.
func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.Status(http.StatusNoContent)
		return
	}

	if err := ac.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		ac.logger.Error("Logout failed", zap.Error(err))
		setRefreshCookie(c, "", -1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setRefreshCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

// ForgotPassword handles POST /api/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := ac.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email ID does not exist"})
			return
		}
		ac.logger.Error("Forgot password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Password reset email sent"})
}

// ResetPassword handles PATCH /api/auth/reset-password/:token
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := ac.authService.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword)
	if err != nil {
		if errors.Is(err, token.ErrInvalidOrExpiredToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired Token"})
			return
		}
		ac.logger.Error("Reset password failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Password reset successfully"})
}

// setRefreshCookie writes the refresh-token cookie with the attributes the
// frontend needs for cross-site requests (HttpOnly, Secure, SameSite=None).
func setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", true, true)
}
