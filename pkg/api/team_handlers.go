package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
}

type teamProfileRequest struct {
	ProfileID string `json:"profile_id"`
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.store.ListTeams(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, teams)
}

func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req teamRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "name is required")
		return
	}

	team := &store.Team{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminTeamCreate, team.ID, "team created")
	httputil.WriteCreated(w, team)
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	team, err := s.store.GetTeam(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "team not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, team)
}

func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req teamRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	team := &store.Team{ID: id, Name: req.Name, Description: req.Description}
	if err := s.store.UpdateTeam(ctx, team); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminTeamUpdate, id, "team updated")
	s.bus.Publish(events.Event{Type: events.TypeTeamChanged, EntityID: id})
	httputil.WriteSuccess(w, team)
}

func (s *Server) deleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteTeam(ctx, id); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// Team deletion severs team-profile grants for every member.
	s.resolver.InvalidateAll(ctx)
	s.auditAdmin(ctx, r, audit.EventTypeAdminTeamDelete, id, "team deleted")
	s.bus.Publish(events.Event{Type: events.TypeTeamChanged, EntityID: id})
	httputil.WriteNoContent(w)
}

func (s *Server) listTeamMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	members, err := s.store.ListTeamMembers(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, members)
}

func (s *Server) addTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req memberRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.UserID == "" {
		httputil.WriteBadRequest(w, "user_id is required")
		return
	}

	if err := s.store.AddTeamMember(ctx, id, req.UserID, req.Role); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.resolver.InvalidateUser(ctx, req.UserID)
	s.auditAdmin(ctx, r, audit.EventTypeAdminMemberAdd, req.UserID, "added to team "+id)
	s.bus.Publish(events.Event{Type: events.TypeMembershipChanged, EntityID: id, UserID: req.UserID})
	httputil.WriteNoContent(w)
}

func (s *Server) removeTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	userID, ok := httputil.ParsePathStringOrError(w, r, "userId")
	if !ok {
		return
	}

	if err := s.store.RemoveTeamMember(ctx, id, userID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.resolver.InvalidateUser(ctx, userID)
	s.auditAdmin(ctx, r, audit.EventTypeAdminMemberRemove, userID, "removed from team "+id)
	s.bus.Publish(events.Event{Type: events.TypeMembershipChanged, EntityID: id, UserID: userID})
	httputil.WriteNoContent(w)
}

func (s *Server) listTeamProfiles(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	profiles, err := s.store.GetTeamProfiles(r.Context(), id)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, profiles)
}

func (s *Server) assignTeamProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req teamProfileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.ProfileID == "" {
		httputil.WriteBadRequest(w, "profile_id is required")
		return
	}

	if err := s.store.AssignTeamProfile(ctx, id, req.ProfileID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// Every member of the team gains the profile's permissions.
	s.resolver.InvalidateAll(ctx)
	s.auditAdmin(ctx, r, audit.EventTypeAuthzProfileAssign, id, "profile "+req.ProfileID+" assigned to team")
	s.bus.Publish(events.Event{Type: events.TypeTeamChanged, EntityID: id})
	httputil.WriteNoContent(w)
}

func (s *Server) unassignTeamProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	profileID, ok := httputil.ParsePathStringOrError(w, r, "profileId")
	if !ok {
		return
	}

	if err := s.store.UnassignTeamProfile(ctx, id, profileID); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.resolver.InvalidateAll(ctx)
	s.auditAdmin(ctx, r, audit.EventTypeAuthzProfileAssign, id, "profile "+profileID+" unassigned from team")
	s.bus.Publish(events.Event{Type: events.TypeTeamChanged, EntityID: id})
	httputil.WriteNoContent(w)
}
