// Package auth implements credential verification and auth context
// resolution.
//
// A request's bearer token is verified (HS256, issuer/audience checked,
// revocation list consulted) and then resolved into a Context: the user's
// identity plus the union of permissions from their directly assigned
// profile and from every profile assigned to their teams. Resolved contexts
// are cached per (user, token-issued-at) with a short TTL, so permission
// changes converge within the TTL without waiting for re-login.
//
// Resolution fails closed: any verification or store failure yields a nil
// Context, never a partially resolved one.
package auth
