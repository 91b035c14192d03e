package middleware

import (
	"net/http"

	"github.com/taskboardhq/taskboard/pkg/authz"
)

// RequirePermission creates middleware that rejects requests whose auth
// context lacks the named permission. Must run after AuthMiddleware.
func RequirePermission(enforcer *authz.Enforcer, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if err := enforcer.RequirePermission(r.Context(), authCtx, permission, r.Method+" "+r.URL.Path); err != nil {
				authz.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission creates middleware that rejects requests whose auth
// context holds none of the named permissions
func RequireAnyPermission(enforcer *authz.Enforcer, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if err := enforcer.RequireAnyPermission(r.Context(), authCtx, r.Method+" "+r.URL.Path, permissions...); err != nil {
				authz.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware for admin-only routes
func RequireAdmin(enforcer *authz.Enforcer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if err := enforcer.RequireAdmin(r.Context(), authCtx); err != nil {
				authz.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
