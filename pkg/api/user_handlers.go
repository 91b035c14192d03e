package api

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type createUserRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	ProfileID *string `json:"profile_id,omitempty"`
}

type updateUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status,omitempty"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type assignProfileRequest struct {
	ProfileID *string `json:"profile_id"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, users)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "name, email, and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		ProfileID:    req.ProfileID,
		Status:       store.UserStatusActive,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminUserCreate, user.ID, "user created")
	httputil.WriteCreated(w, user)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.store.GetUser(ctx, id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Status != "" {
		user.Status = store.UserStatus(req.Status)
	}
	if err := s.store.UpdateUser(ctx, user); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// Status changes take effect on the next resolution.
	s.resolver.InvalidateUser(ctx, id)
	s.auditAdmin(ctx, r, audit.EventTypeAdminUserUpdate, id, "user updated")
	s.bus.Publish(events.Event{Type: events.TypeUserChanged, EntityID: id, UserID: id})
	httputil.WriteSuccess(w, user)
}

func (s *Server) setUserPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req passwordRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "password is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if err := s.store.SetUserPassword(ctx, id, string(hash)); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.auditAdmin(ctx, r, audit.EventTypeAdminUserUpdate, id, "password changed")
	httputil.WriteNoContent(w)
}

func (s *Server) assignUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}
	var req assignProfileRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := s.store.GetUser(ctx, id)
	if err == store.ErrNotFound {
		httputil.WriteNotFoundError(w, "user not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	user.ProfileID = req.ProfileID
	if err := s.store.UpdateUser(ctx, user); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.resolver.InvalidateUser(ctx, id)
	s.auditAdmin(ctx, r, audit.EventTypeAuthzProfileAssign, id, "user profile assignment changed")
	s.bus.Publish(events.Event{Type: events.TypeUserChanged, EntityID: id, UserID: id})
	httputil.WriteSuccess(w, user)
}
