package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTConfig("middleware-secret", time.Hour)
}

func sessionRouter(role models.Role) *gin.Engine {
	m := NewSessionMiddleware()
	r := gin.New()
	r.Use(m.Handle())
	r.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"authenticated": GetSession(c).IsAuthenticated()})
	})
	g := r.Group("/private", m.Require(role))
	g.GET("", func(c *gin.Context) {
		c.String(http.StatusOK, GetSession(c).Name)
	})
	return r
}

func TestSession_AnonymousIsNotAnError(t *testing.T) {
	r := sessionRouter(models.RoleShopkeeper)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestSession_RequireRedirectsToLogin(t *testing.T) {
	r := sessionRouter(models.RoleDealer)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/dealer/login", w.Header().Get("X-Login-Path"))
	assert.Contains(t, w.Body.String(), "LOGIN_REQUIRED")
}

func TestSession_RequireRole(t *testing.T) {
	r := sessionRouter(models.RoleShopkeeper)

	token, err := utils.GenerateJWT(uuid.New(), models.RoleShopkeeper, "Sari")
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sari", w.Body.String())

	dealerToken, err := utils.GenerateJWT(uuid.New(), models.RoleDealer, "Budi")
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+dealerToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/shopkeeper/login", w.Header().Get("X-Login-Path"))
}

func TestCORS_AllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"app.example.com", "localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://APP.example.com:443")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://APP.example.com:443", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFailedLoginLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewFailedLoginLimiter(ctx)
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < failedLoginLimit; i++ {
		assert.False(t, rl.Blocked("10.0.0.1"))
		rl.Fail("10.0.0.1")
	}
	assert.True(t, rl.Blocked("10.0.0.1"))
	assert.False(t, rl.Blocked("10.0.0.2"))

	now = now.Add(failedLoginWindow + time.Second)
	assert.False(t, rl.Blocked("10.0.0.1"))

	rl.Fail("10.0.0.1")
	rl.Reset("10.0.0.1")
	assert.False(t, rl.Blocked("10.0.0.1"))
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/x", func(c *gin.Context) {
		utils.Success(c, http.StatusOK, "ok", nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Regexp(t, `"requestId":"[0-9a-f]{8}"`, w.Body.String())
}
