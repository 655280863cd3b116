package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citysafe/inspection-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(m *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(), JWTAuth(m))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "username": GetUsername(c)})
	})
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	m := jwt.NewManager("test-secret", 3600, 7200)
	token, err := m.GenerateAccessToken(42, "inspector01", "张检查")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(m).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"username":"inspector01"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestJWTAuth_Rejects(t *testing.T) {
	m := jwt.NewManager("test-secret", 3600, 7200)
	other, err := jwt.NewManager("other-secret", 3600, 7200).GenerateAccessToken(1, "", "")
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Token abc",
		"wrong secret": "Bearer " + other,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			newAuthRouter(m).ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuth_QueryTokenOnlyForUpgrade(t *testing.T) {
	m := jwt.NewManager("test-secret", 3600, 7200)
	token, err := m.GenerateAccessToken(3, "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me?token="+token, nil)
	newAuthRouter(m).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/me?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	newAuthRouter(m).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(), RateLimit(nil, DefaultRateLimitConfig()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestInputSanitizer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(InputSanitizer())
	r.GET("/search", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/search?q=%3Cscript%3Ealert(1)", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
