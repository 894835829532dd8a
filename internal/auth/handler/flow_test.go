package handler

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ginContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestStateRoundTrip(t *testing.T) {
	c, w := ginContext(t, httptest.NewRequest(http.MethodGet, "/oauth/login/github", nil))

	state := generateState(c)
	require.NotEmpty(t, state)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// Callback carrying the matching state and cookie validates.
	cb := httptest.NewRequest(http.MethodGet, "/oauth/callback/github?state="+state, nil)
	cb.AddCookie(cookies[0])
	c2, _ := ginContext(t, cb)
	assert.True(t, validateState(c2))

	// Mismatched or missing state does not.
	cb = httptest.NewRequest(http.MethodGet, "/oauth/callback/github?state=other", nil)
	cb.AddCookie(cookies[0])
	c3, _ := ginContext(t, cb)
	assert.False(t, validateState(c3))

	cb = httptest.NewRequest(http.MethodGet, "/oauth/callback/github", nil)
	c4, _ := ginContext(t, cb)
	assert.False(t, validateState(c4))
}

func TestPKCERoundTrip(t *testing.T) {
	c, w := ginContext(t, httptest.NewRequest(http.MethodGet, "/oauth/login/github", nil))

	verifier, challenge := generatePKCE(c)
	require.NotEmpty(t, verifier)

	hash := sha256.Sum256([]byte(verifier))
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(hash[:]), challenge)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, pkceCookieName, cookies[0].Name)

	cb := httptest.NewRequest(http.MethodGet, "/oauth/callback/github", nil)
	cb.AddCookie(cookies[0])
	c2, _ := ginContext(t, cb)
	assert.Equal(t, verifier, getPKCEVerifier(c2))

	c3, _ := ginContext(t, httptest.NewRequest(http.MethodGet, "/oauth/callback/github", nil))
	assert.Empty(t, getPKCEVerifier(c3))
}
