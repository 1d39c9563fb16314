package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kaushikchopra/urlShortener-server/internal/models"
	"github.com/kaushikchopra/urlShortener-server/internal/service"
)

type URLController struct {
	urlService service.URLService
	logger     *zap.Logger
}

func NewURLController(urlService service.URLService, logger *zap.Logger) *URLController {
	return &URLController{
		urlService: urlService,
		logger:     logger,
	}
}

// Shorten handles POST /api/url/short-url. Answers 201 for a freshly
// allocated short URL and 200 when the user already shortened this one.
func (uc *URLController) Shorten(c *gin.Context) {
	var req models.ShortenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origUrl is required"})
		return
	}

	shortURL, created, err := uc.urlService.Shorten(c.Request.Context(), c.GetString("userID"), req.OrigURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Original URL"})
		case errors.Is(err, service.ErrDailyLimitExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have exceeded the daily limit of URL shortening"})
		case errors.Is(err, service.ErrMonthlyLimitExceeded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You have exceeded the monthly limit of URL shortening"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			uc.logger.Error("Shorten failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, shortURL)
}

// Redirect handles GET /:id and sends the visitor to the original URL
func (uc *URLController) Redirect(c *gin.Context) {
	origURL, err := uc.urlService.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		uc.logger.Error("Redirect failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Redirect(http.StatusFound, origURL)
}

// Dashboard handles GET /api/url/dashboard
func (uc *URLController) Dashboard(c *gin.Context) {
	profile, err := uc.urlService.Dashboard(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		uc.logger.Error("Dashboard failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CreatedURLs handles GET /api/url/created-url and lists the caller's URLs
func (uc *URLController) CreatedURLs(c *gin.Context) {
	urls, err := uc.urlService.ListUserURLs(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		uc.logger.Error("Created URLs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"urlData": urls})
}
