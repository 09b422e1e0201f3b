package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"salonq/internal/config"

	"github.com/stretchr/testify/assert"
)

type stubAuthorizer struct {
	code  string
	calls int
}

func (s *stubAuthorizer) Authorize(_ context.Context, code string) bool {
	s.calls++
	return code == s.code
}

func TestHeaderCodeAuth(t *testing.T) {
	store := &stubAuthorizer{code: "1234"}
	auth := HeaderCodeAuth("x-admin-code", store)

	req := httptest.NewRequest(http.MethodGet, "/queue", nil)
	assert.False(t, auth(req))
	assert.Zero(t, store.calls, "missing header must not reach the store")

	req.Header.Set("X-Admin-Code", "1234")
	assert.True(t, auth(req))

	req.Header.Set("X-Admin-Code", "4321")
	assert.False(t, auth(req))
	assert.Equal(t, 2, store.calls)
}

func TestRequireAdmin(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	}

	deny := RequireAdmin(func(*http.Request) bool { return false }, next)
	rec := httptest.NewRecorder()
	deny(rec, httptest.NewRequest(http.MethodPost, "/next", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.False(t, called)

	allow := RequireAdmin(func(*http.Request) bool { return true }, next)
	rec = httptest.NewRecorder()
	allow(rec, httptest.NewRequest(http.MethodPost, "/next", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, called)
}

func TestRateLimiter(t *testing.T) {
	l := newRateLimiter(config.AdminConfig{LoginRPS: 0.001, LoginBurst: 1})

	first := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	other := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	other.RemoteAddr = "10.0.0.2:5000"

	assert.True(t, l.Allow(first))
	assert.False(t, l.Allow(first))
	assert.True(t, l.Allow(other))

	unlimited := newRateLimiter(config.AdminConfig{})
	for i := 0; i < 10; i++ {
		assert.True(t, unlimited.Allow(first))
	}
}
