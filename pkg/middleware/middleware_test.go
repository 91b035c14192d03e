package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/config"
	"github.com/taskboardhq/taskboard/pkg/contextkeys"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/registry"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type authFixture struct {
	resolver *auth.Resolver
	tokens   *auth.TokenManager
	mock     sqlmock.Sqlmock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenManager(config.AuthConfig{
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		Issuer:          "taskboard-test",
		Audience:        "taskboard",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)

	mem := cache.NewMemory(0, nil)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	resolver := auth.NewResolver(
		store.NewStore(db),
		registry.New(nil),
		tokens,
		auth.NewBlacklist(mem),
		mem,
		time.Minute,
		nil,
		logger,
		nil,
	)
	return &authFixture{resolver: resolver, tokens: tokens, mock: mock}
}

func (f *authFixture) expectActiveUser(userID string) {
	now := time.Now()
	f.mock.ExpectQuery(`FROM users`).WithArgs(userID).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "profile_id", "status", "created_at", "updated_at"}).
			AddRow(userID, "Ana", "ana@example.com", "hash", nil, "active", now, now))
	f.mock.ExpectQuery(`WHERE ut\.user_id`).WithArgs(userID).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "category", "description"}).
			AddRow("p1", "Create Boards", "Boards", ""))
	f.mock.ExpectQuery(`FROM user_teams ut`).WithArgs(userID).WillReturnRows(
		sqlmock.NewRows([]string{"user_id", "team_id", "name", "role", "created_at"}))
}

func newTestEnforcer() *authz.Enforcer {
	return authz.NewEnforcer(
		registry.New(nil),
		nil,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
	)
}

func bearerRequest(t *testing.T, f *authFixture, userID string) *http.Request {
	t.Helper()
	pair, err := f.tokens.Issue(&store.User{ID: userID, Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/v1/boards", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	return req
}

func TestAuthMiddlewareRejectsUnauthenticated(t *testing.T) {
	f := newAuthFixture(t)
	handler := NewAuthMiddleware(f.resolver, false).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/boards", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_REQUIRED")
}

func TestAuthMiddlewareAttachesContext(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	var got *auth.Context
	handler := NewAuthMiddleware(f.resolver, false).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetAuthContext(r)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, bearerRequest(t, f, "u1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, []string{"Create Boards"}, got.Permissions)
}

func TestAuthMiddlewareOptionalPassesThrough(t *testing.T) {
	f := newAuthFixture(t)

	var ran bool
	handler := NewAuthMiddleware(f.resolver, true).Handler(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ran = true
			assert.Nil(t, GetAuthContext(r))
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/boards", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ran)
}

func TestRequirePermissionMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	chain := NewAuthMiddleware(f.resolver, false).Handler(
		RequirePermission(newTestEnforcer(), "Create Boards")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			})))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, f, "u1"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequirePermissionMiddlewareDenies(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	chain := NewAuthMiddleware(f.resolver, false).Handler(
		RequirePermission(newTestEnforcer(), "Delete Boards")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, f, "u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_PERMISSIONS")
	assert.Contains(t, rec.Body.String(), "Delete Boards")
}

func TestRequireAnyPermissionMiddleware(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	// "Create Boards" is the only held permission; any-of with it passes.
	chain := NewAuthMiddleware(f.resolver, false).Handler(
		RequireAnyPermission(newTestEnforcer(), "Manage Boards", "Create Boards")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, f, "u1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAnyPermissionMiddlewareDenies(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	chain := NewAuthMiddleware(f.resolver, false).Handler(
		RequireAnyPermission(newTestEnforcer(), "Manage Boards", "Delete Boards")(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, f, "u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestRequireAdminMiddlewareDenies(t *testing.T) {
	f := newAuthFixture(t)
	f.expectActiveUser("u1")

	chain := NewAuthMiddleware(f.resolver, false).Handler(
		RequireAdmin(newTestEnforcer())(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler must not run")
			})))

	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, bearerRequest(t, f, "u1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "ADMIN_REQUIRED")
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = contextkeys.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	echoed := rec.Header().Get("X-Request-ID")
	assert.Equal(t, seen, echoed)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}$`), echoed)
}

func TestRequestIDAdoptsCallerID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
