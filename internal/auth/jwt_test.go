package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() JWT {
	return JWT{Secret: []byte("test-secret-at-least-32-characters"), TokenTTL: time.Hour}
}

func TestJWT_SignVerifyRoundtrip(t *testing.T) {
	j := newTestJWT()

	token, expiresAt, err := j.Sign("admin", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "vire-research", claims.Issuer)
}

func TestJWT_WrongSecret(t *testing.T) {
	j := newTestJWT()
	token, _, err := j.Sign("admin", RoleAdmin)
	require.NoError(t, err)

	other := JWT{Secret: []byte("a-completely-different-secret-key"), TokenTTL: time.Hour}
	_, err = other.Verify(token)
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := JWT{Secret: []byte("test-secret-at-least-32-characters"), TokenTTL: -time.Hour}
	token, _, err := j.Sign("admin", RoleAdmin)
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := newTestJWT().Verify("not.a.token")
	assert.Error(t, err)
}

func sessionRequest(t *testing.T, j JWT, subject, role string) *http.Request {
	t.Helper()
	token, _, err := j.Sign(subject, role)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/backtests", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	return r
}

func TestFromRequest(t *testing.T) {
	j := newTestJWT()

	claims, ok := FromRequest(sessionRequest(t, j, "admin", RoleAdmin), j)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, ok = FromRequest(httptest.NewRequest("GET", "/", nil), j)
	assert.False(t, ok)
}

func writeTestError(w http.ResponseWriter, statusCode int, message string) error {
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(message))
	return err
}

func TestRequireRole(t *testing.T) {
	j := newTestJWT()
	var gotClaims Claims
	handler := RequireRole(j, writeTestError, RoleAdmin)(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/api/backtests", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, sessionRequest(t, j, "bob", RoleMember))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin passes with claims in context", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, sessionRequest(t, j, "admin", RoleAdmin))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", gotClaims.Subject)
		assert.Equal(t, RoleAdmin, gotClaims.Role)
	})
}
