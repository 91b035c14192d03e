package authz

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/httputil"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/registry"
)

func newTestEnforcer() *Enforcer {
	return NewEnforcer(
		registry.New(nil),
		nil,
		observability.NewLogger(observability.ErrorLevel, io.Discard),
		nil,
	)
}

func memberContext(perms ...string) *auth.Context {
	return &auth.Context{
		UserID:      "u1",
		UserName:    "Ana",
		Permissions: perms,
	}
}

func TestRequirePermissionGranted(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Create Boards", "Delete Teams")

	assert.NoError(t, e.RequirePermission(context.Background(), ac, "Delete Teams", ""))
}

func TestRequirePermissionDenied(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Create Boards")

	err := e.RequirePermission(context.Background(), ac, "Delete Teams", "DELETE /teams/t1")
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeInsufficientPermissions, authzErr.Code)
	assert.Equal(t, []string{"Delete Teams"}, authzErr.Required)
	assert.Equal(t, []string{"Create Boards"}, authzErr.Current)
	assert.Equal(t, http.StatusForbidden, authzErr.Status())
}

func TestRequirePermissionAcceptsAlias(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Edit Tasks")

	assert.NoError(t, e.RequirePermission(context.Background(), ac, "Editar Tarefas", ""))
}

func TestRequirePermissionNilContext(t *testing.T) {
	e := newTestEnforcer()

	err := e.RequirePermission(context.Background(), nil, "Create Boards", "")
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeAuthRequired, authzErr.Code)
	assert.Equal(t, http.StatusUnauthorized, authzErr.Status())
}

func TestRequirePermissionUnknownName(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Create Boards")

	err := e.RequirePermission(context.Background(), ac, "Launch Missiles", "")
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeInvalidPermission, authzErr.Code)
	assert.Equal(t, http.StatusForbidden, authzErr.Status())
}

func TestRequireAnyPermission(t *testing.T) {
	e := newTestEnforcer()
	ctx := context.Background()
	ac := memberContext("Edit Tasks")

	assert.NoError(t, e.RequireAnyPermission(ctx, ac, "", "Delete Tasks", "Edit Tasks"))

	err := e.RequireAnyPermission(ctx, ac, "", "Delete Tasks", "Create Tasks")
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeInsufficientPermissions, authzErr.Code)
	assert.ElementsMatch(t, []string{"Delete Tasks", "Create Tasks"}, authzErr.Required)
}

func TestRequireAnyPermissionSkipsUnknownNames(t *testing.T) {
	e := newTestEnforcer()
	ctx := context.Background()
	ac := memberContext("Edit Tasks")

	// The unknown name is skipped, the known one matches.
	assert.NoError(t, e.RequireAnyPermission(ctx, ac, "", "Launch Missiles", "Edit Tasks"))

	// All names unknown is a guard bug, denied as INVALID_PERMISSION.
	err := e.RequireAnyPermission(ctx, ac, "", "Launch Missiles")
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeInvalidPermission, authzErr.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := newTestEnforcer()
	ctx := context.Background()

	assert.NoError(t, e.RequireAdmin(ctx, memberContext(AdminPermission)))

	err := e.RequireAdmin(ctx, memberContext("Create Boards"))
	authzErr := AsError(err)
	require.NotNil(t, authzErr)
	assert.Equal(t, CodeAdminRequired, authzErr.Code)
	assert.Equal(t, http.StatusForbidden, authzErr.Status())

	err = e.RequireAdmin(ctx, nil)
	require.NotNil(t, AsError(err))
	assert.Equal(t, CodeAuthRequired, AsError(err).Code)
}

func TestHasPermissionHelpers(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Create Boards", "Edit Tasks")

	assert.True(t, e.HasPermission(ac, "Create Boards"))
	assert.True(t, e.HasPermission(ac, "Criar Quadros"))
	assert.False(t, e.HasPermission(ac, "Delete Boards"))
	assert.False(t, e.HasPermission(nil, "Create Boards"))

	assert.True(t, e.HasAllPermissions(ac, "Create Boards", "Edit Tasks"))
	assert.False(t, e.HasAllPermissions(ac, "Create Boards", "Delete Boards"))
	assert.True(t, e.HasAnyPermission(ac, "Delete Boards", "Edit Tasks"))
	assert.False(t, e.HasAnyPermission(ac, "Delete Boards", "Delete Tasks"))
}

func TestCanAccessResource(t *testing.T) {
	e := newTestEnforcer()
	ac := memberContext("Edit Tasks")

	assert.True(t, e.CanAccessResource(ac, registry.ResourceTasks, registry.ActionEdit))
	assert.False(t, e.CanAccessResource(ac, registry.ResourceTasks, registry.ActionDelete))
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{ErrAuthRequired(), http.StatusUnauthorized},
		{ErrInvalidSession(), http.StatusUnauthorized},
		{ErrInsufficientPermissions(nil, nil), http.StatusForbidden},
		{ErrAdminRequired(), http.StatusForbidden},
		{errInvalidPermission("x"), http.StatusForbidden},
		{ErrAuthError(), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status(), string(tc.err.Code))
	}
}

func TestWriteErrorDiscloses403Lists(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrInsufficientPermissions([]string{"Delete Teams"}, []string{"Create Boards"}))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body.Code)
	assert.Equal(t, []string{"Delete Teams"}, body.Required)
	assert.Equal(t, []string{"Create Boards"}, body.Current)
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AUTH_ERROR", body.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())

	// Lists stay hidden for INVALID_PERMISSION responses.
	rec = httptest.NewRecorder()
	WriteError(rec, errInvalidPermission("Launch Missiles"))
	assert.NotContains(t, rec.Body.String(), "Launch Missiles")
}
