package authz

import (
	"log/slog"
	"net/http"
)

// Middleware wires authorization guards for HTTP handlers. Decisions run
// against the session-scoped Context attached upstream; no store access
// happens per request.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current actor holds at least one of the required
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ac := FromContext(r.Context())
			if ac == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if ac.HasAnyPermission(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.log(r, "deny any", perms)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAll ensures the current actor holds all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			ac := FromContext(r.Context())
			if ac == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if ac.HasAllPermissions(perms...) {
				next.ServeHTTP(w, r)
				return
			}
			m.log(r, "deny all", perms)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireMenu gates a route on menu-feature visibility.
func (m Middleware) RequireMenu(featureID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac := FromContext(r.Context())
			if ac == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			if ac.CanAccessMenu(featureID) {
				next.ServeHTTP(w, r)
				return
			}
			m.log(r, "deny menu", []string{featureID})
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// RequireAuthenticated only checks that an authorization context exists.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()) == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) log(r *http.Request, outcome string, subject []string) {
	if m.Logger == nil {
		return
	}
	m.Logger.Info("authz", slog.String("outcome", outcome), slog.Any("subject", subject), slog.String("path", r.URL.Path))
}
