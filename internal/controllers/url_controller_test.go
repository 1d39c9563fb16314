package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kaushikchopra/urlShortener-server/internal/entities"
	"github.com/kaushikchopra/urlShortener-server/internal/middleware"
	"github.com/kaushikchopra/urlShortener-server/internal/service"
	"github.com/kaushikchopra/urlShortener-server/internal/service/mocks"
	"github.com/kaushikchopra/urlShortener-server/internal/token"
)

type urlFixture struct {
	router      *gin.Engine
	accessToken string
	user        *entities.User
}

func newURLRouter(t *testing.T) *urlFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	urlRepo := mocks.NewMockURLRepository()

	user := &entities.User{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		Username:    "ada@example.com",
		IsActivated: true,
	}
	require.NoError(t, userRepo.Create(context.Background(), user))

	accessTokens := token.NewService("access-secret", 15*time.Minute)
	accessToken, err := accessTokens.Issue(user.ID)
	require.NoError(t, err)

	urlService := service.NewURLService(urlRepo, userRepo, mocks.NewMockCache(),
		"http://localhost:8070", service.URLLimits{Daily: 5, Monthly: 50})

	uc := NewURLController(urlService, zap.NewNop())
	qc := NewQRCodeController(urlService, zap.NewNop())
	requireAuth := middleware.Auth(accessTokens)

	router := gin.New()
	router.POST("/api/url/short-url", requireAuth, uc.Shorten)
	router.GET("/api/url/dashboard", requireAuth, uc.Dashboard)
	router.GET("/api/url/created-url", requireAuth, uc.CreatedURLs)
	router.GET("/api/url/qrcode/:id", qc.Generate)
	router.GET("/:id", uc.Redirect)

	return &urlFixture{router: router, accessToken: accessToken, user: user}
}

func (f *urlFixture) do(method, path string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+f.accessToken)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *urlFixture) shorten(t *testing.T, origURL string) *entities.ShortURL {
	t.Helper()

	w := f.do(http.MethodPost, "/api/url/short-url", gin.H{"origUrl": origURL}, true)
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, w.Code, w.Body.String())

	var shortURL entities.ShortURL
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shortURL))
	return &shortURL
}

func TestShortenEndpointCreates(t *testing.T) {
	f := newURLRouter(t)

	w := f.do(http.MethodPost, "/api/url/short-url", gin.H{"origUrl": "https://example.com/page"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var shortURL entities.ShortURL
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shortURL))
	assert.Len(t, shortURL.ShortCode, 8)
	assert.Equal(t, "https://example.com/page", shortURL.OrigURL)
}

func TestShortenEndpointIdempotentReturns200(t *testing.T) {
	f := newURLRouter(t)
	first := f.shorten(t, "https://example.com/page")

	w := f.do(http.MethodPost, "/api/url/short-url", gin.H{"origUrl": "https://example.com/page"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var second entities.ShortURL
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ShortCode, second.ShortCode)
}

func TestShortenEndpointRequiresAuth(t *testing.T) {
	f := newURLRouter(t)

	w := f.do(http.MethodPost, "/api/url/short-url", gin.H{"origUrl": "https://example.com"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortenEndpointInvalidURL(t *testing.T) {
	f := newURLRouter(t)

	w := f.do(http.MethodPost, "/api/url/short-url", gin.H{"origUrl": "not a url"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRedirectEndpoint(t *testing.T) {
	f := newURLRouter(t)
	shortURL := f.shorten(t, "https://example.com/page")

	w := f.do(http.MethodGet, "/"+shortURL.ShortCode, nil, false)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/page", w.Header().Get("Location"))
}

func TestRedirectEndpointUnknownCode(t *testing.T) {
	f := newURLRouter(t)

	w := f.do(http.MethodGet, "/nope1234", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	f := newURLRouter(t)
	f.shorten(t, "https://example.com/page")

	w := f.do(http.MethodGet, "/api/url/dashboard", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "dailyUrlCounts")
	assert.Contains(t, w.Body.String(), "ada@example.com")
}

func TestCreatedURLsEndpoint(t *testing.T) {
	f := newURLRouter(t)
	f.shorten(t, "https://example.com/a")
	f.shorten(t, "https://example.com/b")

	w := f.do(http.MethodGet, "/api/url/created-url", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		URLData []struct {
			OrigURL  string `json:"origUrl"`
			ShortURL string `json:"shortUrl"`
			Count    int    `json:"count"`
		} `json:"urlData"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.URLData, 2)
}

func TestQRCodeEndpoint(t *testing.T) {
	f := newURLRouter(t)
	shortURL := f.shorten(t, "https://example.com/page")

	w := f.do(http.MethodGet, "/api/url/qrcode/"+shortURL.ShortCode, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestQRCodeEndpointUnknownCode(t *testing.T) {
	f := newURLRouter(t)

	w := f.do(http.MethodGet, "/api/url/qrcode/nope1234", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
