package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type stubVerifier map[string]error

func (s stubVerifier) Verify(token string) (uint, error) {
	if err, ok := s[token]; ok {
		return 0, err
	}
	return 7, nil
}

func newEngine(v TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", JWTAuthMiddleware(v), func(c *gin.Context) {
		id, ok := UserID(c)
		c.String(http.StatusOK, fmt.Sprintf("%d %t", id, ok))
	})
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r := newEngine(stubVerifier{
		"old": utils.ErrTokenExpired,
		"bad": utils.ErrTokenBadSignature,
	})

	w := serve(r, "bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7 true", w.Body.String())

	cases := map[string]struct {
		header string
		msg    string
	}{
		"missing":   {"", "Missing or invalid Authorization header"},
		"no token":  {"Bearer ", "Missing or invalid Authorization header"},
		"basic":     {"Basic dXNlcjpwYXNz", "Missing or invalid Authorization header"},
		"expired":   {"Bearer old", "Token expired"},
		"signature": {"Bearer bad", "Invalid token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(r, tc.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tc.msg)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestUserIDWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := UserID(c)
	assert.False(t, ok)

	c.Set(UserIDKey, "7")
	_, ok = UserID(c)
	assert.False(t, ok)
}

func TestRequestLoggerEchoesID(t *testing.T) {
	r := newEngine(stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(r, "")
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
