package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dserve-api/logger"
	"dserve-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(a *Auth) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/me", a.Required(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "username": GetUsername(c), "role": GetRole(c)})
	})
	r.GET("/owner", a.Required(), RoleRequired(models.RoleOwner, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRoundTrip(t *testing.T) {
	a := NewAuth("secret", time.Hour)
	r := newRouter(a)
	token, err := a.GenerateToken(&models.User{ID: "u1", Username: "cashier", Role: models.RoleCashier})
	require.NoError(t, err)

	rec := do(r, "/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1","username":"cashier","role":"cashier"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	assert.Equal(t, http.StatusForbidden, do(r, "/owner", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "garbage").Code)

	other, err := NewAuth("other", time.Hour).GenerateToken(&models.User{ID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", other).Code)
}

func TestAuthExpiry(t *testing.T) {
	a := NewAuth("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	a.now = func() time.Time { return issued }
	token, err := a.GenerateToken(&models.User{ID: "u1", Role: models.RoleOwner})
	require.NoError(t, err)

	a.now = time.Now
	assert.Equal(t, http.StatusUnauthorized, do(newRouter(a), "/me", token).Code)
}

func TestRequestLoggerAndCORS(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(CORS(), RequestID(), RequestLogger(logger.NewWithWriter(&buf, "test", "debug"), nil))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"route":"/ping"`)

	pre := httptest.NewRecorder()
	r.ServeHTTP(pre, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, pre.Code)
}
