package api

import (
	"net/http"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/httputil"
)

// listPermissions returns the permission catalog. Any authenticated user may
// read it; the catalog is not sensitive and the frontend needs it to render
// profile editors.
func (s *Server) listPermissions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.registry.Catalog())
}

// syncPermissions reconciles the persisted permission rows with the catalog
func (s *Server) syncPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.syncer == nil {
		httputil.WriteErrorMessage(w, http.StatusServiceUnavailable, "registry sync is not configured")
		return
	}

	if err := s.syncer.Sync(ctx); err != nil {
		s.logger.WithError(err).Error("registry sync failed")
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminRegistrySync, "", "permission registry synced")
	httputil.WriteSuccess(w, map[string]int{"permissions": len(s.registry.AllPermissions())})
}
