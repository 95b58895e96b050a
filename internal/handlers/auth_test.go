package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/config"
)

func newAuthHandler() (*AuthHandler, auth.JWT) {
	j := auth.JWT{Secret: []byte("test-secret-at-least-32-characters"), TokenTTL: time.Hour}
	cfg := &config.AuthConfig{
		JWTSecret:     string(j.Secret),
		AdminUser:     "admin",
		AdminPassword: "hunter2-but-long",
	}
	return NewAuthHandler(j, cfg, common.NewSilentLogger()), j
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", auth.SessionCookie)
	return nil
}

func TestLogin(t *testing.T) {
	h, j := newAuthHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"username": "admin", "password": "hunter2-but-long"}`))
	h.LoginHandler(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)

	claims, err := j.Verify(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	h, _ := newAuthHandler()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"username": "admin", "password": "wrong"}`))
	h.LoginHandler(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_Unconfigured(t *testing.T) {
	h, _ := newAuthHandler()
	h.cfg.AdminPassword = ""

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"username": "admin", "password": "x"}`))
	h.LoginHandler(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogin_BadBody(t *testing.T) {
	h, _ := newAuthHandler()

	w := httptest.NewRecorder()
	h.LoginHandler(w, httptest.NewRequest("POST", "/api/auth/login", strings.NewReader("{nope")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.LoginHandler(w, httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"username": "admin", "password": "x", "extra": true}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code, "unknown fields rejected")
}

func TestLogout_ClearsCookie(t *testing.T) {
	h, _ := newAuthHandler()

	w := httptest.NewRecorder()
	h.LogoutHandler(w, httptest.NewRequest("POST", "/api/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestMe(t *testing.T) {
	h, j := newAuthHandler()

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.MeHandler(w, httptest.NewRequest("GET", "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		token, _, err := j.Sign("admin", auth.RoleAdmin)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/api/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})

		w := httptest.NewRecorder()
		h.MeHandler(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeJSON(t, w)
		assert.Equal(t, "admin", body["user"])
		assert.Equal(t, auth.RoleAdmin, body["role"])
	})
}
