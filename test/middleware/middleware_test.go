package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ria-board/src/config"
	"ria-board/src/logger"
	"ria-board/src/middleware"
	"ria-board/src/service"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	require.NoError(t, logger.InitLogger("error", t.TempDir()))

	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func perform(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	// バースト2、補充はほぼゼロ
	router := newRouter(t, middleware.RateLimitMiddleware(0.0001, 2))

	assert.Equal(t, http.StatusOK, perform(router, nil).Code)
	assert.Equal(t, http.StatusOK, perform(router, nil).Code)

	w := perform(router, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too Many Requests")
}

func TestRateLimitMiddleware_AllowsWithinBurst(t *testing.T) {
	router := newRouter(t, middleware.RateLimitMiddleware(100, 50))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, perform(router, nil).Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	router := newRouter(t, middleware.CORSMiddleware())

	w := perform(router, map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func newAuthService(t *testing.T) service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	return service.NewAuthService(&config.Config{
		Auth: config.AuthConfig{
			JWTSecret:    "mw-test-secret",
			JWTExpiresIn: time.Hour,
			Username:     "david",
			PasswordHash: string(hash),
		},
	})
}

func TestAuthMiddleware(t *testing.T) {
	auth := newAuthService(t)
	router := newRouter(t, middleware.AuthMiddleware(auth))

	token, err := auth.Login("david", "pw")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "有効なトークン", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "ヘッダーなし", header: "", wantStatus: http.StatusUnauthorized},
		{name: "Bearer形式でない", header: token, wantStatus: http.StatusUnauthorized},
		{name: "空のトークン", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "改ざんされたトークン", header: "Bearer " + token + "x", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := perform(router, headers)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	router := newRouter(t, middleware.LoggerMiddleware())

	w := perform(router, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestLoggerMiddlewareRecordsAuthenticatedUser(t *testing.T) {
	require.NoError(t, logger.InitLogger("info", t.TempDir()))
	hook := logtest.NewLocal(logger.Log)

	r := gin.New()
	r.Use(middleware.LoggerMiddleware())
	// 認証middlewareと同様にユーザー名をコンテキストへ設定する
	r.Use(func(c *gin.Context) {
		c.Set("username", "david")
		c.Next()
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var found bool
	for _, entry := range hook.AllEntries() {
		if user, ok := entry.Data["user"]; ok {
			found = true
			assert.Equal(t, "david", user)
		}
	}
	assert.True(t, found)
}
