// Package authz enforces permission requirements on route handlers.
//
// Guards validate the requested permission name against the registry before
// checking it, so a typo in a route definition denies access instead of
// silently passing. Every denial is classified by a stable code
// (AUTH_REQUIRED, INVALID_SESSION, INSUFFICIENT_PERMISSIONS, ADMIN_REQUIRED,
// INVALID_PERMISSION, AUTH_ERROR), counted, and written to the audit trail;
// audit failures never change the decision.
package authz
