package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/registry"
	"github.com/taskboardhq/taskboard/pkg/store"
)

type resolverFixture struct {
	resolver *Resolver
	tokens   *TokenManager
	mock     sqlmock.Sqlmock
	cache    *cache.Memory
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := NewTokenManager(testAuthConfig())
	require.NoError(t, err)

	mem := cache.NewMemory(0, nil)
	resolver := NewResolver(
		store.NewStore(db),
		registry.New(nil),
		tokens,
		NewBlacklist(mem),
		mem,
		5*time.Minute,
		nil,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
	)
	return &resolverFixture{resolver: resolver, tokens: tokens, mock: mock, cache: mem}
}

func userRows(id, name, email string, profileID *string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "profile_id", "status", "created_at", "updated_at"})
	now := time.Now()
	if profileID != nil {
		rows.AddRow(id, name, email, "hash", *profileID, "active", now, now)
	} else {
		rows.AddRow(id, name, email, "hash", nil, "active", now, now)
	}
	return rows
}

func permissionRows(names ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "category", "description"})
	for i, name := range names {
		rows.AddRow(string(rune('a'+i)), name, "Boards", name)
	}
	return rows
}

func membershipRows(userID string, teams ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"user_id", "team_id", "name", "role", "created_at"})
	for i, team := range teams {
		rows.AddRow(userID, team, "team-"+team, "member", time.Now().Add(time.Duration(i)*time.Minute))
	}
	return rows
}

// expectResolution queues the store round-trip for one full recomputation
func (f *resolverFixture) expectResolution(userID string, profileID *string, profilePerms, teamPerms []string, teams ...string) {
	f.mock.ExpectQuery(`FROM users`).
		WithArgs(userID).
		WillReturnRows(userRows(userID, "Ana", "ana@example.com", profileID))
	if profileID != nil {
		f.mock.ExpectQuery(`WHERE pp\.profile_id`).
			WithArgs(*profileID).
			WillReturnRows(permissionRows(profilePerms...))
	}
	f.mock.ExpectQuery(`WHERE ut\.user_id`).
		WithArgs(userID).
		WillReturnRows(permissionRows(teamPerms...))
	f.mock.ExpectQuery(`FROM user_teams ut`).
		WithArgs(userID).
		WillReturnRows(membershipRows(userID, teams...))
}

func TestResolveUnionOfProfileAndTeamPermissions(t *testing.T) {
	f := newResolverFixture(t)
	profileID := "p1"

	// Overlapping sets: the union must deduplicate "Edit Tasks".
	f.expectResolution("u1", &profileID,
		[]string{"Create Boards", "Edit Tasks"},
		[]string{"Edit Tasks", "Delete Tasks"},
		"team-a")

	ac := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, ac)
	assert.Equal(t, []string{"Create Boards", "Delete Tasks", "Edit Tasks"}, ac.Permissions)
	assert.Equal(t, "u1", ac.UserID)
	require.Len(t, ac.Teams, 1)
	assert.Equal(t, "team-a", ac.Teams[0].ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestResolveIdempotentWithinTTL(t *testing.T) {
	f := newResolverFixture(t)
	profileID := "p1"

	// Exactly one store round-trip is queued; the second resolve must be
	// served from cache or the unmet expectation check fails.
	f.expectResolution("u1", &profileID, []string{"Create Boards"}, nil)

	first := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, first)
	second := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, second)

	assert.Equal(t, first, second)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestResolveReflectsGrantAfterInvalidation(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	profileID := "p1"

	f.expectResolution("u1", &profileID, []string{"Create Boards"}, nil)
	before := f.resolver.ResolveUser(ctx, "u1")
	require.NotNil(t, before)
	assert.NotContains(t, before.Permissions, "Delete Boards")

	f.resolver.InvalidateUser(ctx, "u1")

	f.expectResolution("u1", &profileID, []string{"Create Boards", "Delete Boards"}, nil)
	after := f.resolver.ResolveUser(ctx, "u1")
	require.NotNil(t, after)
	assert.Contains(t, after.Permissions, "Delete Boards")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestResolveRevocation(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()
	profileID := "developer"

	f.expectResolution("u1", &profileID, []string{"Create Tasks", "Edit Tasks"}, nil)
	before := f.resolver.ResolveUser(ctx, "u1")
	require.NotNil(t, before)
	assert.Contains(t, before.Permissions, "Edit Tasks")

	f.resolver.InvalidateUser(ctx, "u1")

	f.expectResolution("u1", &profileID, []string{"Create Tasks"}, nil)
	after := f.resolver.ResolveUser(ctx, "u1")
	require.NotNil(t, after)
	assert.NotContains(t, after.Permissions, "Edit Tasks")
}

func TestResolveEmptyPermissionSetIsNotAnError(t *testing.T) {
	f := newResolverFixture(t)

	// No profile, no teams: empty set, valid context.
	f.expectResolution("u1", nil, nil, nil)

	ac := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, ac)
	assert.Empty(t, ac.Permissions)
	assert.Empty(t, ac.Teams)
	assert.False(t, ac.HasPermission("Create Boards"))
}

func TestResolveAdminBundle(t *testing.T) {
	f := newResolverFixture(t)
	profileID := "administrator"

	f.expectResolution("u1", &profileID,
		[]string{"Create Boards", "Delete Boards", "Manage Teams"}, nil)

	ac := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, ac)
	assert.Equal(t, []string{"Create Boards", "Delete Boards", "Manage Teams"}, ac.Permissions)
}

func TestResolveTeamInheritedPermissions(t *testing.T) {
	f := newResolverFixture(t)

	// No direct profile; everything arrives through the team profile.
	f.expectResolution("u1", nil, nil, []string{"Create Tasks", "Edit Tasks"}, "eng")

	ac := f.resolver.ResolveUser(context.Background(), "u1")
	require.NotNil(t, ac)
	assert.Equal(t, []string{"Create Tasks", "Edit Tasks"}, ac.Permissions)
}

func TestResolveUnknownUserFailsClosed(t *testing.T) {
	f := newResolverFixture(t)

	f.mock.ExpectQuery(`FROM users`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "profile_id", "status", "created_at", "updated_at"}))

	assert.Nil(t, f.resolver.ResolveUser(context.Background(), "ghost"))
}

func TestResolveInactiveUserFailsClosed(t *testing.T) {
	f := newResolverFixture(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "profile_id", "status", "created_at", "updated_at"}).
		AddRow("u1", "Ana", "ana@example.com", "hash", nil, "inactive", now, now)
	f.mock.ExpectQuery(`FROM users`).WithArgs("u1").WillReturnRows(rows)

	assert.Nil(t, f.resolver.ResolveUser(context.Background(), "u1"))
}

func TestResolveStoreFailureFailsClosed(t *testing.T) {
	f := newResolverFixture(t)

	f.mock.ExpectQuery(`FROM users`).
		WithArgs("u1").
		WillReturnError(assert.AnError)

	assert.Nil(t, f.resolver.ResolveUser(context.Background(), "u1"))
}

func TestResolveRequestWithoutCredential(t *testing.T) {
	f := newResolverFixture(t)

	req := httptest.NewRequest("GET", "/api/v1/boards", nil)
	assert.Nil(t, f.resolver.Resolve(context.Background(), req))
}

func TestResolveRequestWithValidBearer(t *testing.T) {
	f := newResolverFixture(t)
	profileID := "p1"

	pair, err := f.tokens.Issue(&store.User{ID: "u1", Name: "Ana", Email: "ana@example.com", ProfileID: &profileID})
	require.NoError(t, err)

	f.expectResolution("u1", &profileID, []string{"Create Boards"}, nil)

	req := httptest.NewRequest("GET", "/api/v1/boards", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	ac := f.resolver.Resolve(context.Background(), req)
	require.NotNil(t, ac)
	assert.Equal(t, "u1", ac.UserID)
	assert.NotZero(t, ac.TokenIssuedAt)
}

func TestResolveRequestWithBlacklistedToken(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	pair, err := f.tokens.Issue(&store.User{ID: "u1", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	NewBlacklist(f.cache).Add(ctx, pair.AccessToken, pair.AccessExpiresAt)

	req := httptest.NewRequest("GET", "/api/v1/boards", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	assert.Nil(t, f.resolver.Resolve(ctx, req))
}

func TestResolveRequestWithMalformedHeader(t *testing.T) {
	f := newResolverFixture(t)

	for _, header := range []string{"Basic abc", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		assert.Nil(t, f.resolver.Resolve(context.Background(), req), "header %q", header)
	}
}
