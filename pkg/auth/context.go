package auth

import "sort"

// TeamRef is a team membership entry on a resolved auth context
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Context is the resolved, per-request view of a user's identity and
// effective permission set. It is derived, never persisted: Permissions is
// the union of the user's direct profile permissions and the permissions of
// every profile assigned to every team the user belongs to.
//
// The struct round-trips through the cache as JSON, so membership checks use
// the sorted slice directly.
type Context struct {
	UserID    string  `json:"user_id"`
	UserName  string  `json:"user_name"`
	UserEmail string  `json:"user_email"`
	ProfileID *string `json:"profile_id,omitempty"`

	// Permissions holds canonical permission names, sorted and unique
	Permissions []string `json:"permissions"`

	// PermissionCategories holds the distinct categories among Permissions
	PermissionCategories []string `json:"permission_categories"`

	Teams []TeamRef `json:"teams"`

	// TokenIssuedAt is the unix issued-at of the credential this context
	// was resolved from; it scopes the cache entry so a fresh login never
	// reads a context resolved for an older token.
	TokenIssuedAt int64 `json:"token_issued_at"`
}

// HasPermission reports whether the context carries the given canonical
// permission name
func (c *Context) HasPermission(name string) bool {
	i := sort.SearchStrings(c.Permissions, name)
	return i < len(c.Permissions) && c.Permissions[i] == name
}

// TeamIDs returns the IDs of every team the user belongs to
func (c *Context) TeamIDs() []string {
	ids := make([]string, 0, len(c.Teams))
	for _, t := range c.Teams {
		ids = append(ids, t.ID)
	}
	return ids
}
