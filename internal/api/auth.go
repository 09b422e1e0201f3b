package api

import (
	"context"
	"net/http"
	"strings"
)

// AdminAuth reports whether a request carries admin rights.
type AdminAuth func(r *http.Request) bool

type codeAuthorizer interface {
	Authorize(ctx context.Context, code string) bool
}

// HeaderCodeAuth checks the admin code sent in header against the store.
// A missing header is rejected without touching the store.
func HeaderCodeAuth(header string, settings codeAuthorizer) AdminAuth {
	return func(r *http.Request) bool {
		code := strings.TrimSpace(r.Header.Get(header))
		if code == "" {
			return false
		}
		return settings.Authorize(r.Context(), code)
	}
}

// RequireAdmin wraps next so it only runs for authorised requests.
func RequireAdmin(auth AdminAuth, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !auth(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}
