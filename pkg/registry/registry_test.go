package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryValidPermissions(t *testing.T) {
	r := New(nil)

	assert.True(t, r.IsValidPermission("Create Boards"))
	assert.True(t, r.IsValidPermission("Delete Teams"))
	assert.True(t, r.IsValidPermission("Assign Tasks"))

	assert.False(t, r.IsValidPermission("create boards"))
	assert.False(t, r.IsValidPermission("Destroy Boards"))
	assert.False(t, r.IsValidPermission(""))
	assert.False(t, r.IsValidPermission("Boards"))
}

func TestRegistryAliases(t *testing.T) {
	r := New(nil)

	// Localized names resolve to their canonical entries.
	assert.True(t, r.IsValidPermission("Editar Tarefas"))
	assert.Equal(t, "Edit Tasks", r.Canonical("Editar Tarefas"))
	assert.Equal(t, "Create Boards", r.Canonical("Criar Quadros"))

	// Canonical names pass through unchanged.
	assert.Equal(t, "Edit Tasks", r.Canonical("Edit Tasks"))

	// Unknown names pass through so validity checks still fail on them.
	assert.Equal(t, "Not A Permission", r.Canonical("Not A Permission"))
}

func TestRegistryNamingPattern(t *testing.T) {
	r := New(nil)

	for _, name := range r.AllPermissions() {
		assert.Regexp(t, `^(List|Create|Edit|Delete|View|Manage|Assign)\s+[A-Z]`, name)
	}
}

func TestRegistryAllPermissionsSorted(t *testing.T) {
	r := New(nil)

	perms := r.AllPermissions()
	require.NotEmpty(t, perms)
	for i := 1; i < len(perms); i++ {
		assert.Less(t, perms[i-1], perms[i], "permission list must be sorted and unique")
	}

	// The returned slice is a copy.
	perms[0] = "mutated"
	assert.NotEqual(t, "mutated", r.AllPermissions()[0])
}

func TestBuildPermission(t *testing.T) {
	assert.Equal(t, "Create Boards", BuildPermission(ActionCreate, ResourceBoards))
	assert.Equal(t, "Manage Users", BuildPermission(ActionManage, ResourceUsers))
}

func TestCategoryOf(t *testing.T) {
	r := New(nil)

	assert.Equal(t, "Boards", r.CategoryOf("Create Boards"))
	assert.Equal(t, "Tasks", r.CategoryOf("Editar Tarefas"))
	assert.Equal(t, "", r.CategoryOf("Not A Permission"))
}

func TestCatalogMatchesNameIndex(t *testing.T) {
	r := New(nil)

	catalog := r.Catalog()
	require.Len(t, catalog, len(r.AllPermissions()))
	for _, p := range catalog {
		assert.True(t, r.IsValidPermission(p.Name))
		assert.Equal(t, p.Category, r.CategoryOf(p.Name))
	}
}
