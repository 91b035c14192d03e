package middleware

import (
	"context"
	"net/http"

	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/contextkeys"
)

// AuthMiddleware resolves the request credential into an auth context and
// attaches it to the request. With optional=true, unauthenticated requests
// pass through without a context; otherwise they are rejected with 401.
type AuthMiddleware struct {
	resolver *auth.Resolver
	optional bool
}

// NewAuthMiddleware creates authentication middleware
func NewAuthMiddleware(resolver *auth.Resolver, optional bool) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, optional: optional}
}

// Handler wraps an HTTP handler with authentication
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := m.resolver.Resolve(r.Context(), r)
		if authCtx == nil {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			authz.WriteError(w, authz.ErrAuthRequired())
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		ctx = contextkeys.WithUserID(ctx, authCtx.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthContext extracts the resolved auth context from a request, or nil
func GetAuthContext(r *http.Request) *auth.Context {
	return AuthFromContext(r.Context())
}

// AuthFromContext extracts the resolved auth context from a context, or nil
func AuthFromContext(ctx context.Context) *auth.Context {
	v := ctx.Value(contextkeys.AuthKey)
	if v == nil {
		return nil
	}
	authCtx, ok := v.(*auth.Context)
	if !ok {
		return nil
	}
	return authCtx
}
