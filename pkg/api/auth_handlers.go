package api

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/middleware"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// login exchanges email and password for a token pair
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err == store.ErrNotFound {
		s.failLogin(ctx, w, "", req.Email, "unknown email")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("login user lookup failed")
		httputil.WriteInternalError(w, err)
		return
	}
	if user.Status != store.UserStatusActive {
		s.failLogin(ctx, w, user.ID, req.Email, "inactive user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.failLogin(ctx, w, user.ID, req.Email, "wrong password")
		return
	}

	pair, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.WithError(err).Error("token issue failed")
		httputil.WriteInternalError(w, err)
		return
	}

	if err := s.audit.LogAuthentication(ctx, audit.EventTypeAuthLogin, user.ID, user.Email,
		audit.EventStatusSuccess, "login"); err != nil {
		s.logger.WithError(err).Warn("failed to audit login")
	}
	httputil.WriteSuccess(w, pair)
}

// failLogin audits a failed attempt and writes a non-specific 401
func (s *Server) failLogin(ctx context.Context, w http.ResponseWriter, userID, email, reason string) {
	if err := s.audit.LogAuthentication(ctx, audit.EventTypeAuthLoginFailed, userID, email,
		audit.EventStatusFailure, reason); err != nil {
		s.logger.WithError(err).Warn("failed to audit login failure")
	}
	// The reason stays server-side; credentials probes learn nothing.
	httputil.WriteCodedError(w, http.StatusUnauthorized, string(authz.CodeAuthRequired), "invalid credentials")
}

// refresh exchanges a refresh token for a new pair
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	claims, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		httputil.WriteCodedError(w, http.StatusUnauthorized, string(authz.CodeAuthRequired), "invalid refresh token")
		return
	}
	if s.blacklist.Contains(ctx, req.RefreshToken) {
		httputil.WriteCodedError(w, http.StatusUnauthorized, string(authz.CodeAuthRequired), "refresh token revoked")
		return
	}

	user, err := s.store.GetUser(ctx, claims.Subject)
	if err == store.ErrNotFound {
		httputil.WriteCodedError(w, http.StatusUnauthorized, string(authz.CodeInvalidSession), "user no longer exists")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if user.Status != store.UserStatusActive {
		httputil.WriteCodedError(w, http.StatusUnauthorized, string(authz.CodeInvalidSession), "user is inactive")
		return
	}

	// Rotate: the spent refresh token is revoked for its remaining life.
	s.blacklist.Add(ctx, req.RefreshToken, claims.ExpiresAt.Time)

	pair, err := s.tokens.Issue(user)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if err := s.audit.LogAuthentication(ctx, audit.EventTypeAuthRefresh, user.ID, user.Email,
		audit.EventStatusSuccess, "token refresh"); err != nil {
		s.logger.WithError(err).Warn("failed to audit refresh")
	}
	httputil.WriteSuccess(w, pair)
}

// logout revokes the presented access token, and the refresh token when the
// client includes it
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx := middleware.GetAuthContext(r)

	if token := bearerFromHeader(r); token != "" {
		if claims, err := s.tokens.VerifyAccess(token); err == nil {
			s.blacklist.Add(ctx, token, claims.ExpiresAt.Time)
		}
	}

	var req logoutRequest
	if err := httputil.ParseJSON(r, &req); err == nil && req.RefreshToken != "" {
		if claims, err := s.tokens.VerifyRefresh(req.RefreshToken); err == nil {
			s.blacklist.Add(ctx, req.RefreshToken, claims.ExpiresAt.Time)
		}
	}

	s.resolver.InvalidateUser(ctx, authCtx.UserID)
	if err := s.audit.LogAuthentication(ctx, audit.EventTypeAuthLogout, authCtx.UserID, authCtx.UserEmail,
		audit.EventStatusSuccess, "logout"); err != nil {
		s.logger.WithError(err).Warn("failed to audit logout")
	}
	httputil.WriteNoContent(w)
}

// me returns the resolved auth context
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, middleware.GetAuthContext(r))
}

// capabilities returns the permission view the frontend uses to show or
// hide UI affordances
func (s *Server) capabilities(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	httputil.WriteSuccess(w, map[string]interface{}{
		"permissions": authCtx.Permissions,
		"categories":  authCtx.PermissionCategories,
		"teams":       authCtx.Teams,
		"is_admin":    authCtx.HasPermission(authz.AdminPermission),
	})
}

func bearerFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
