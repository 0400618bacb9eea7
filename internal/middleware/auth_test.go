package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(secret))
	r.GET("/members", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin"))
	})
	return r
}

func doGet(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tok, exp, err := IssueToken(secret, "root", 15*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	w := doGet(newRouter(), "Bearer "+tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root", w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r := newRouter()

	expired, _, err := IssueToken(secret, "root", -time.Hour)
	require.NoError(t, err)
	foreign, _, err := IssueToken([]byte("other"), "root", time.Hour)
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Username: "root"}).SignedString(secret)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"no bearer":    "Token abc",
		"empty bearer": "Bearer  ",
		"garbage":      "Bearer not.a.jwt",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + foreign,
		"no expiry":    "Bearer " + noExp,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, doGet(r, header).Code)
		})
	}
}
