package auth

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/registry"
	"github.com/taskboardhq/taskboard/pkg/store"
)

const contextKeyPrefix = "auth:ctx:"

// SessionReader is the legacy fallback for requests without a bearer token.
// Implementations read a server-side session and return the stored user id,
// or "" when no session is present.
type SessionReader interface {
	UserID(r *http.Request) string
}

// Resolver turns an inbound request into an auth Context. Every failure
// mode resolves to nil ("unauthenticated"), never an error surfaced to the
// caller; middleware maps nil to 401.
//
// Resolution is side-effect free except for cache writes, so two concurrent
// requests for the same user may both recompute and both cache - the second
// write is harmless.
type Resolver struct {
	store     *store.Store
	registry  *registry.Registry
	tokens    *TokenManager
	blacklist *Blacklist
	cache     cache.Cache
	ttl       time.Duration
	sessions  SessionReader
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewResolver creates an auth context resolver. sessions and metrics may be
// nil; a nil sessions disables the legacy fallback.
func NewResolver(
	st *store.Store,
	reg *registry.Registry,
	tokens *TokenManager,
	blacklist *Blacklist,
	c cache.Cache,
	ttl time.Duration,
	sessions SessionReader,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Resolver {
	return &Resolver{
		store:     st,
		registry:  reg,
		tokens:    tokens,
		blacklist: blacklist,
		cache:     c,
		ttl:       ttl,
		sessions:  sessions,
		logger:    logger,
		metrics:   metrics,
	}
}

// Resolve extracts the credential from the request and resolves the auth
// context. Returns nil when the request is unauthenticated for any reason.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) *Context {
	token := bearerToken(req)
	if token == "" {
		if r.sessions != nil {
			if userID := r.sessions.UserID(req); userID != "" {
				// Session-resolved contexts share one cache slot per
				// user (issued-at zero).
				return r.resolveUser(ctx, userID, 0)
			}
		}
		return nil
	}

	claims, err := r.tokens.VerifyAccess(token)
	if err != nil {
		r.recordResolution("rejected")
		return nil
	}
	if r.blacklist != nil && r.blacklist.Contains(ctx, token) {
		r.recordResolution("rejected")
		return nil
	}

	return r.resolveUser(ctx, claims.Subject, claims.IssuedAt.Unix())
}

// ResolveUser resolves the auth context for a known user id, bypassing
// credential checks. The cache is still consulted and populated.
func (r *Resolver) ResolveUser(ctx context.Context, userID string) *Context {
	return r.resolveUser(ctx, userID, 0)
}

// InvalidateUser drops every cached context for a user. Called after any
// mutation of the user's profile assignment, the profile's permissions, or
// the user's team memberships.
func (r *Resolver) InvalidateUser(ctx context.Context, userID string) {
	r.cache.InvalidatePattern(ctx, contextKeyPrefix+userID+":*")
}

// InvalidateAll drops every cached auth context. Used for mutations whose
// affected user set is unknown, e.g. changing a profile's permissions.
func (r *Resolver) InvalidateAll(ctx context.Context) {
	r.cache.InvalidatePattern(ctx, contextKeyPrefix+"*")
}

func (r *Resolver) resolveUser(ctx context.Context, userID string, issuedAt int64) *Context {
	key := fmt.Sprintf("%s%s:%d", contextKeyPrefix, userID, issuedAt)

	var cached Context
	if cache.GetJSON(ctx, r.cache, key, &cached) {
		r.recordResolution("hit")
		return &cached
	}

	resolved, err := r.compute(ctx, userID)
	if err != nil {
		// Store failures resolve to unauthenticated (fail closed); the
		// cause is logged for operators but never reaches the client.
		r.logger.WithError(err).WithField("user_id", userID).Warn("auth context resolution failed")
		r.recordResolution("rejected")
		return nil
	}
	if resolved == nil {
		r.recordResolution("rejected")
		return nil
	}

	resolved.TokenIssuedAt = issuedAt
	cache.SetJSON(ctx, r.cache, key, resolved, r.ttl)
	r.recordResolution("miss")
	return resolved
}

// compute performs the full resolution chain against the relational store:
// user -> direct profile permissions, plus teams -> team profiles ->
// permissions, deduplicated by canonical name.
func (r *Resolver) compute(ctx context.Context, userID string) (*Context, error) {
	user, err := r.store.GetUser(ctx, userID)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user.Status != store.UserStatusActive {
		return nil, nil
	}

	permSet := make(map[string]struct{})
	categorySet := make(map[string]struct{})

	addPerms := func(perms []store.Permission) {
		for _, p := range perms {
			name := r.registry.Canonical(p.Name)
			if !r.registry.IsValidPermission(name) {
				continue
			}
			permSet[name] = struct{}{}
			if cat := r.registry.CategoryOf(name); cat != "" {
				categorySet[cat] = struct{}{}
			}
		}
	}

	if user.ProfileID != nil {
		perms, err := r.store.GetProfilePermissions(ctx, *user.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("load profile permissions: %w", err)
		}
		addPerms(perms)
	}

	teamPerms, err := r.store.GetUserTeamPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load team permissions: %w", err)
	}
	addPerms(teamPerms)

	memberships, err := r.store.GetUserTeams(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load team memberships: %w", err)
	}

	resolved := &Context{
		UserID:               user.ID,
		UserName:             user.Name,
		UserEmail:            user.Email,
		ProfileID:            user.ProfileID,
		Permissions:          sortedKeys(permSet),
		PermissionCategories: sortedKeys(categorySet),
		Teams:                make([]TeamRef, 0, len(memberships)),
	}
	for _, m := range memberships {
		resolved.Teams = append(resolved.Teams, TeamRef{
			ID:   m.TeamID,
			Name: m.TeamName,
			Role: m.Role,
		})
	}

	return resolved, nil
}

func (r *Resolver) recordResolution(outcome string) {
	if r.metrics != nil {
		r.metrics.AuthResolutionsTotal.WithLabelValues(outcome).Inc()
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
