package registry

import (
	"regexp"
	"sort"

	"github.com/taskboardhq/taskboard/pkg/observability"
)

// Action is a verb from the closed permission vocabulary
type Action string

const (
	ActionList   Action = "List"
	ActionCreate Action = "Create"
	ActionEdit   Action = "Edit"
	ActionDelete Action = "Delete"
	ActionView   Action = "View"
	ActionManage Action = "Manage"
	ActionAssign Action = "Assign"
)

// Resource is a noun from the closed permission vocabulary
type Resource string

const (
	ResourceBoards        Resource = "Boards"
	ResourceColumns       Resource = "Columns"
	ResourceTasks         Resource = "Tasks"
	ResourceTeams         Resource = "Teams"
	ResourceUsers         Resource = "Users"
	ResourceProfiles      Resource = "Profiles"
	ResourceReports       Resource = "Reports"
	ResourceNotifications Resource = "Notifications"
)

// Permission is an immutable catalog entry
type Permission struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// namePattern is the shape every catalog entry must satisfy
var namePattern = regexp.MustCompile(`^(List|Create|Edit|Delete|View|Manage|Assign)\s+[A-Z]`)

// Registry is the closed catalog of permission names. It is constructed once
// per process and injected into consumers; there is no package-level instance.
type Registry struct {
	byName  map[string]Permission
	aliases map[string]string
	sorted  []string
	logger  *observability.Logger
}

// New builds the registry from the static catalog. Entries violating the
// naming pattern are logged and skipped; this is a startup validation error
// but not fatal.
func New(logger *observability.Logger) *Registry {
	r := &Registry{
		byName:  make(map[string]Permission),
		aliases: make(map[string]string),
		logger:  logger,
	}

	for _, p := range catalog() {
		if !namePattern.MatchString(p.Name) {
			if logger != nil {
				logger.WithField("permission", p.Name).Error("registry entry violates naming pattern, skipping")
			}
			continue
		}
		r.byName[p.Name] = p
	}

	// Alias table resolved once at load time. Localized permission names
	// accepted historically map onto their canonical entries.
	for alias, canonical := range localizedAliases() {
		if _, ok := r.byName[canonical]; !ok {
			if logger != nil {
				logger.WithField("alias", alias).Warn("alias targets unknown permission, skipping")
			}
			continue
		}
		r.aliases[alias] = canonical
	}

	r.sorted = make([]string, 0, len(r.byName))
	for name := range r.byName {
		r.sorted = append(r.sorted, name)
	}
	sort.Strings(r.sorted)

	return r
}

// IsValidPermission reports whether name is a known permission, either
// canonical or via the alias table.
func (r *Registry) IsValidPermission(name string) bool {
	if _, ok := r.byName[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Canonical resolves an alias to its canonical permission name. Canonical
// names are returned unchanged; unknown names are returned unchanged so the
// caller's validity check still fails on them.
func (r *Registry) Canonical(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// AllPermissions returns all canonical permission names, sorted and unique
func (r *Registry) AllPermissions() []string {
	out := make([]string, len(r.sorted))
	copy(out, r.sorted)
	return out
}

// Catalog returns every permission entry for persistence sync
func (r *Registry) Catalog() []Permission {
	out := make([]Permission, 0, len(r.sorted))
	for _, name := range r.sorted {
		out = append(out, r.byName[name])
	}
	return out
}

// BuildPermission constructs a permission name from the fixed vocabulary
func BuildPermission(action Action, resource Resource) string {
	return string(action) + " " + string(resource)
}

// CategoryOf returns the category of a permission name, or "" if unknown
func (r *Registry) CategoryOf(name string) string {
	if p, ok := r.byName[r.Canonical(name)]; ok {
		return p.Category
	}
	return ""
}

// catalog returns the static permission set, grouped by resource
func catalog() []Permission {
	perms := []Permission{}

	type group struct {
		resource Resource
		actions  []Action
		desc     map[Action]string
	}

	groups := []group{
		{
			resource: ResourceBoards,
			actions:  []Action{ActionList, ActionCreate, ActionEdit, ActionDelete, ActionView, ActionManage},
		},
		{
			resource: ResourceColumns,
			actions:  []Action{ActionCreate, ActionEdit, ActionDelete},
		},
		{
			resource: ResourceTasks,
			actions:  []Action{ActionList, ActionCreate, ActionEdit, ActionDelete, ActionView, ActionAssign},
		},
		{
			resource: ResourceTeams,
			actions:  []Action{ActionList, ActionCreate, ActionEdit, ActionDelete, ActionView, ActionManage},
		},
		{
			resource: ResourceUsers,
			actions:  []Action{ActionList, ActionCreate, ActionEdit, ActionDelete, ActionView, ActionManage},
		},
		{
			resource: ResourceProfiles,
			actions:  []Action{ActionList, ActionCreate, ActionEdit, ActionDelete, ActionView, ActionAssign},
		},
		{
			resource: ResourceReports,
			actions:  []Action{ActionList, ActionView},
		},
		{
			resource: ResourceNotifications,
			actions:  []Action{ActionList, ActionView, ActionManage},
		},
	}

	for _, g := range groups {
		for _, a := range g.actions {
			perms = append(perms, Permission{
				Name:        BuildPermission(a, g.resource),
				Category:    string(g.resource),
				Description: string(a) + " " + string(g.resource),
			})
		}
	}

	return perms
}
