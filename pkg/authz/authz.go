package authz

import (
	"context"
	"fmt"

	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/registry"
)

// AdminPermission gates admin-only routes. Holding it implies access to the
// narrower ADMIN_REQUIRED surface (user and profile administration).
const AdminPermission = "Manage Users"

// Enforcer evaluates permission requirements against a resolved auth
// context. Denials are audited but auditing never blocks or alters the
// decision.
type Enforcer struct {
	registry *registry.Registry
	audit    audit.Logger
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewEnforcer creates an Enforcer. auditLogger and metrics may be nil.
func NewEnforcer(reg *registry.Registry, auditLogger audit.Logger, logger *observability.Logger, metrics *observability.Metrics) *Enforcer {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	return &Enforcer{
		registry: reg,
		audit:    auditLogger,
		logger:   logger,
		metrics:  metrics,
	}
}

// HasPermission reports whether the context holds the named permission.
// The name is canonicalized first so localized aliases match.
func (e *Enforcer) HasPermission(ac *auth.Context, name string) bool {
	if ac == nil {
		return false
	}
	return ac.HasPermission(e.registry.Canonical(name))
}

// HasAllPermissions reports whether the context holds every named permission
func (e *Enforcer) HasAllPermissions(ac *auth.Context, names ...string) bool {
	for _, name := range names {
		if !e.HasPermission(ac, name) {
			return false
		}
	}
	return true
}

// HasAnyPermission reports whether the context holds at least one of the
// named permissions
func (e *Enforcer) HasAnyPermission(ac *auth.Context, names ...string) bool {
	for _, name := range names {
		if e.HasPermission(ac, name) {
			return true
		}
	}
	return false
}

// CanAccessResource builds the permission name from the registry naming
// convention and checks it.
func (e *Enforcer) CanAccessResource(ac *auth.Context, resource registry.Resource, action registry.Action) bool {
	return e.HasPermission(ac, registry.BuildPermission(action, resource))
}

// RequirePermission returns nil when the context holds the named permission.
// A nil context, an unknown permission name, or a missing permission each
// return a classified *Error. actionLabel names the attempted operation in
// the audit trail; "" falls back to the permission name.
func (e *Enforcer) RequirePermission(ctx context.Context, ac *auth.Context, name, actionLabel string) error {
	if actionLabel == "" {
		actionLabel = name
	}
	if ac == nil {
		return e.deny(ctx, "", actionLabel, ErrAuthRequired())
	}

	canonical := e.registry.Canonical(name)
	if !e.registry.IsValidPermission(canonical) {
		// Unknown name means a bad guard definition, not a bad user.
		// It still denies.
		e.logger.WithFields(map[string]interface{}{
			"permission": name,
			"user_id":    ac.UserID,
		}).Warn("permission check against unknown permission name")
		return e.deny(ctx, ac.UserID, actionLabel, errInvalidPermission(name))
	}

	if !ac.HasPermission(canonical) {
		return e.deny(ctx, ac.UserID, actionLabel,
			ErrInsufficientPermissions([]string{canonical}, ac.Permissions))
	}
	return nil
}

// RequireAnyPermission returns nil when the context holds at least one of
// the named permissions. Unknown names are skipped after a warning; if every
// name is unknown the check denies as INVALID_PERMISSION.
func (e *Enforcer) RequireAnyPermission(ctx context.Context, ac *auth.Context, actionLabel string, names ...string) error {
	if actionLabel == "" && len(names) > 0 {
		actionLabel = names[0]
	}
	if ac == nil {
		return e.deny(ctx, "", actionLabel, ErrAuthRequired())
	}

	known := make([]string, 0, len(names))
	for _, name := range names {
		canonical := e.registry.Canonical(name)
		if !e.registry.IsValidPermission(canonical) {
			e.logger.WithFields(map[string]interface{}{
				"permission": name,
				"user_id":    ac.UserID,
			}).Warn("permission check against unknown permission name")
			continue
		}
		known = append(known, canonical)
		if ac.HasPermission(canonical) {
			return nil
		}
	}

	if len(known) == 0 {
		return e.deny(ctx, ac.UserID, actionLabel, errInvalidPermission(fmt.Sprintf("%v", names)))
	}
	return e.deny(ctx, ac.UserID, actionLabel,
		ErrInsufficientPermissions(known, ac.Permissions))
}

// RequireAdmin gates admin-only routes behind the admin permission,
// reporting ADMIN_REQUIRED rather than the generic denial.
func (e *Enforcer) RequireAdmin(ctx context.Context, ac *auth.Context) error {
	if ac == nil {
		return e.deny(ctx, "", "admin access", ErrAuthRequired())
	}
	if !ac.HasPermission(AdminPermission) {
		return e.deny(ctx, ac.UserID, "admin access", ErrAdminRequired())
	}
	return nil
}

// deny audits and counts a denial, then returns the error unchanged. Audit
// failures are logged and ignored.
func (e *Enforcer) deny(ctx context.Context, userID, actionLabel string, authzErr *Error) error {
	if e.metrics != nil {
		e.metrics.AuthDenialsTotal.WithLabelValues(string(authzErr.Code)).Inc()
	}

	message := fmt.Sprintf("%s denied: %s", actionLabel, authzErr.Code)
	if err := e.audit.LogAuthorization(ctx, audit.EventTypeAuthzAccessDenied, userID,
		audit.ResourceTypePermission, actionLabel, audit.EventStatusDenied, message); err != nil {
		e.logger.WithError(err).Warn("failed to audit authorization denial")
	}

	e.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"action":  actionLabel,
		"code":    string(authzErr.Code),
	}).Info("authorization denied")

	return authzErr
}
