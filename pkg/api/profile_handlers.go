package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/middleware"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type profileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

type grantRequest struct {
	Permission string `json:"permission"`
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, profiles)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req profileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	profile := &store.Profile{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminProfileCreate, profile.ID, "profile created")
	httputil.WriteCreated(w, profile)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	profile, err := s.store.GetProfile(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "profile not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, profile)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req profileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	profile := &store.Profile{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if err := s.store.UpdateProfile(ctx, profile); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminProfileUpdate, id, "profile updated")
	s.afterPermissionGraphChange(ctx, id)
	httputil.WriteSuccess(w, profile)
}

func (s *Server) deleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteProfile(ctx, id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminProfileDelete, id, "profile deleted")
	s.afterPermissionGraphChange(ctx, id)
	httputil.WriteNoContent(w)
}

func (s *Server) getProfilePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	perms, err := s.store.GetProfilePermissions(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, perms)
}

func (s *Server) grantPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req grantRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	canonical := s.registry.Canonical(req.Permission)
	if !s.registry.IsValidPermission(canonical) {
		httputil.WriteBadRequest(w, "unknown permission name")
		return
	}

	if err := s.store.GrantPermission(ctx, id, canonical); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	actor := middleware.GetAuthContext(r)
	if err := s.audit.LogAuthorization(ctx, audit.EventTypeAuthzPermissionGrant, actor.UserID,
		audit.ResourceTypeProfile, id, audit.EventStatusSuccess, "granted "+canonical); err != nil {
		s.logger.WithError(err).Warn("failed to audit permission grant")
	}
	s.afterPermissionGraphChange(ctx, id)
	httputil.WriteNoContent(w)
}

func (s *Server) revokePermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	permission, ok := httputil.ParsePathStringOrError(w, r, "permission")
	if !ok {
		return
	}

	canonical := s.registry.Canonical(permission)
	if err := s.store.RevokePermission(ctx, id, canonical); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	actor := middleware.GetAuthContext(r)
	if err := s.audit.LogAuthorization(ctx, audit.EventTypeAuthzPermissionRevoke, actor.UserID,
		audit.ResourceTypeProfile, id, audit.EventStatusSuccess, "revoked "+canonical); err != nil {
		s.logger.WithError(err).Warn("failed to audit permission revocation")
	}
	s.afterPermissionGraphChange(ctx, id)
	httputil.WriteNoContent(w)
}

// afterPermissionGraphChange runs the write-then-invalidate discipline for
// mutations whose affected user set is unknown: every cached auth context is
// dropped and a profile.changed event is published.
func (s *Server) afterPermissionGraphChange(ctx context.Context, profileID string) {
	s.resolver.InvalidateAll(ctx)
	s.bus.Publish(events.Event{
		Type:     events.TypeProfileChanged,
		EntityID: profileID,
	})
}

func (s *Server) auditAdmin(ctx context.Context, r *http.Request, eventType audit.EventType, targetID, message string) {
	actor := middleware.GetAuthContext(r)
	userID := ""
	if actor != nil {
		userID = actor.UserID
	}
	if err := s.audit.LogAdminAction(ctx, eventType, userID, targetID, message); err != nil {
		s.logger.WithError(err).Warn("failed to audit admin action")
	}
}
