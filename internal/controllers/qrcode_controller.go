package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/kaushikchopra/urlShortener-server/internal/service"
)

type QRCodeController struct {
	urlService service.URLService
	logger     *zap.Logger
}

func NewQRCodeController(urlService service.URLService, logger *zap.Logger) *QRCodeController {
	return &QRCodeController{
		urlService: urlService,
		logger:     logger,
	}
}

// Generate handles GET /api/url/qrcode/:id and returns a PNG QR code that
// encodes the short URL for the given code. Scanning it does not count a
// visit; only following the link does.
func (qc *QRCodeController) Generate(c *gin.Context) {
	shortURL, err := qc.urlService.ShortURLFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrURLNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "URL not found"})
			return
		}
		qc.logger.Error("QR code lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	png, err := qrcode.Encode(shortURL, qrcode.Medium, 256)
	if err != nil {
		qc.logger.Error("QR code generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
