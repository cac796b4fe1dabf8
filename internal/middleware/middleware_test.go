package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r *gin.Engine, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) { seen = c.GetString(RequestIDKey) })

	w := serve(r, http.MethodGet, "/", map[string]string{RequestIDKey: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDKey))
	assert.Equal(t, "abc-123", seen)

	w = serve(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Header().Get(RequestIDKey), 36)

	w = serve(r, http.MethodGet, "/", map[string]string{RequestIDKey: strings.Repeat("x", 65)})
	assert.Len(t, w.Header().Get(RequestIDKey), 36, "oversized ids are replaced")
}

func TestRateLimiter_Bloquea(t *testing.T) {
	r := gin.New()
	r.Use(SubmitRateLimiter(2, time.Minute))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/", nil).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/", nil).Code)

	w := serve(r, http.MethodPost, "/", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Demasiados tickets")
}

func TestRateLimiter_LimitadoresIndependientes(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(1, time.Minute))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	other := gin.New()
	other.Use(RateLimiter(1, time.Minute))
	other.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(other, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/", nil).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/silencioso", func(c *gin.Context) { _ = c.Error(errors.New("db password=secret")) })
	r.GET("/escrito", func(c *gin.Context) {
		_ = c.Error(errors.New("upstream"))
		c.JSON(http.StatusBadGateway, gin.H{"detail": "x"})
	})

	w := serve(r, http.MethodGet, "/silencioso", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")

	w = serve(r, http.MethodGet, "/escrito", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.POST("/v1/tickets", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := serve(r, http.MethodOptions, "/v1/tickets", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestCORS_ListaDeOrigenes(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://sucursales.novogar.test/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", map[string]string{"Origin": "https://sucursales.novogar.test"})
	assert.Equal(t, "https://sucursales.novogar.test", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = serve(r, http.MethodGet, "/", map[string]string{"Origin": "https://otro.test"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}
