package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/boards"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/middleware"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/readmodel"
	"github.com/taskboardhq/taskboard/pkg/registry"
	"github.com/taskboardhq/taskboard/pkg/store"
)

// Deps carries everything the API server needs
type Deps struct {
	Store     *store.Store
	Registry  *registry.Registry
	Tokens    *auth.TokenManager
	Resolver  *auth.Resolver
	Blacklist *auth.Blacklist
	Enforcer  *authz.Enforcer
	Boards    *boards.Service
	Projector *readmodel.Projector
	Syncer    *registry.Syncer
	Bus       *events.Bus
	Audit     audit.Logger
	Logger    *observability.Logger
	Metrics   *observability.Metrics
}

// Server is the HTTP API
type Server struct {
	router *mux.Router

	store     *store.Store
	registry  *registry.Registry
	tokens    *auth.TokenManager
	resolver  *auth.Resolver
	blacklist *auth.Blacklist
	enforcer  *authz.Enforcer
	boards    *boards.Service
	projector *readmodel.Projector
	syncer    *registry.Syncer
	bus       *events.Bus
	audit     audit.Logger
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewServer creates the API server and wires its routes
func NewServer(deps Deps) *Server {
	a := deps.Audit
	if a == nil {
		a = audit.NopLogger{}
	}
	s := &Server{
		router:    mux.NewRouter(),
		store:     deps.Store,
		registry:  deps.Registry,
		tokens:    deps.Tokens,
		resolver:  deps.Resolver,
		blacklist: deps.Blacklist,
		enforcer:  deps.Enforcer,
		boards:    deps.Boards,
		projector: deps.Projector,
		syncer:    deps.Syncer,
		bus:       deps.Bus,
		audit:     a,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recovery(s.logger))

	// Public routes
	s.router.HandleFunc("/api/v1/auth/login", s.login).Methods("POST")
	s.router.HandleFunc("/api/v1/auth/refresh", s.refresh).Methods("POST")

	// Everything else requires a resolved auth context
	authMW := middleware.NewAuthMiddleware(s.resolver, false)
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Handler)

	api.HandleFunc("/auth/logout", s.logout).Methods("POST")
	api.HandleFunc("/auth/me", s.me).Methods("GET")
	api.HandleFunc("/auth/capabilities", s.capabilities).Methods("GET")

	// Permission registry
	api.HandleFunc("/permissions", s.listPermissions).Methods("GET")
	api.Handle("/permissions/sync", s.adminOnly(s.syncPermissions)).Methods("POST")

	// Profiles
	api.Handle("/profiles", s.guard("List Profiles", s.listProfiles)).Methods("GET")
	api.Handle("/profiles", s.guard("Create Profiles", s.createProfile)).Methods("POST")
	api.Handle("/profiles/{id}", s.guard("View Profiles", s.getProfile)).Methods("GET")
	api.Handle("/profiles/{id}", s.guard("Edit Profiles", s.updateProfile)).Methods("PUT")
	api.Handle("/profiles/{id}", s.guard("Delete Profiles", s.deleteProfile)).Methods("DELETE")
	api.Handle("/profiles/{id}/permissions", s.guard("View Profiles", s.getProfilePermissions)).Methods("GET")
	api.Handle("/profiles/{id}/permissions", s.guard("Edit Profiles", s.grantPermission)).Methods("POST")
	api.Handle("/profiles/{id}/permissions/{permission}", s.guard("Edit Profiles", s.revokePermission)).Methods("DELETE")

	// Teams
	api.Handle("/teams", s.guard("List Teams", s.listTeams)).Methods("GET")
	api.Handle("/teams", s.guard("Create Teams", s.createTeam)).Methods("POST")
	api.Handle("/teams/{id}", s.guard("View Teams", s.getTeam)).Methods("GET")
	api.Handle("/teams/{id}", s.guard("Edit Teams", s.updateTeam)).Methods("PUT")
	api.Handle("/teams/{id}", s.guard("Delete Teams", s.deleteTeam)).Methods("DELETE")
	api.Handle("/teams/{id}/members", s.guard("View Teams", s.listTeamMembers)).Methods("GET")
	api.Handle("/teams/{id}/members", s.guardAny(s.addTeamMember, "Manage Teams", "Edit Teams")).Methods("POST")
	api.Handle("/teams/{id}/members/{userId}", s.guardAny(s.removeTeamMember, "Manage Teams", "Edit Teams")).Methods("DELETE")
	api.Handle("/teams/{id}/profiles", s.guard("View Teams", s.listTeamProfiles)).Methods("GET")
	api.Handle("/teams/{id}/profiles", s.guard("Assign Profiles", s.assignTeamProfile)).Methods("POST")
	api.Handle("/teams/{id}/profiles/{profileId}", s.guard("Assign Profiles", s.unassignTeamProfile)).Methods("DELETE")

	// Users
	api.Handle("/users", s.guard("List Users", s.listUsers)).Methods("GET")
	api.Handle("/users", s.guard("Create Users", s.createUser)).Methods("POST")
	api.Handle("/users/{id}", s.guard("View Users", s.getUser)).Methods("GET")
	api.Handle("/users/{id}", s.guard("Edit Users", s.updateUser)).Methods("PUT")
	api.Handle("/users/{id}/password", s.guard("Edit Users", s.setUserPassword)).Methods("PUT")
	api.Handle("/users/{id}/profile", s.guard("Assign Profiles", s.assignUserProfile)).Methods("PUT")

	// Boards, columns, tasks
	api.Handle("/boards", s.guard("List Boards", s.listBoards)).Methods("GET")
	api.Handle("/boards", s.guard("Create Boards", s.createBoard)).Methods("POST")
	api.HandleFunc("/boards/{id}", s.getBoard).Methods("GET")
	api.HandleFunc("/boards/{id}", s.updateBoard).Methods("PUT")
	api.HandleFunc("/boards/{id}", s.deleteBoard).Methods("DELETE")
	api.HandleFunc("/boards/{id}/summary", s.getBoardSummary).Methods("GET")
	api.HandleFunc("/boards/{id}/columns", s.createColumn).Methods("POST")
	api.HandleFunc("/boards/{id}/columns/{columnId}", s.updateColumn).Methods("PUT")
	api.HandleFunc("/boards/{id}/columns/{columnId}", s.deleteColumn).Methods("DELETE")
	api.HandleFunc("/boards/{id}/tasks", s.listTasks).Methods("GET")
	api.HandleFunc("/boards/{id}/tasks", s.createTask).Methods("POST")
	api.HandleFunc("/boards/{id}/tasks/{taskId}", s.updateTask).Methods("PUT")
	api.HandleFunc("/boards/{id}/tasks/{taskId}", s.deleteTask).Methods("DELETE")

	// Board shares
	api.HandleFunc("/boards/{id}/shares", s.listShares).Methods("GET")
	api.HandleFunc("/boards/{id}/shares", s.createShare).Methods("POST")
	api.HandleFunc("/boards/{id}/shares/{shareId}", s.deleteShare).Methods("DELETE")
}

// guard wraps a handler with a registry-validated permission requirement
func (s *Server) guard(permission string, h http.HandlerFunc) http.Handler {
	return middleware.RequirePermission(s.enforcer, permission)(h)
}

// guardAny wraps a handler so that holding any one of the permissions grants
// access
func (s *Server) guardAny(h http.HandlerFunc, permissions ...string) http.Handler {
	return middleware.RequireAnyPermission(s.enforcer, permissions...)(h)
}

func (s *Server) adminOnly(h http.HandlerFunc) http.Handler {
	return middleware.RequireAdmin(s.enforcer)(h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.InstrumentHandler("api", s.router).ServeHTTP(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router for tests
func (s *Server) Router() *mux.Router {
	return s.router
}
