package authz

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error classification returned to clients
type Code string

const (
	// CodeAuthRequired means no credential, or one that failed verification
	CodeAuthRequired Code = "AUTH_REQUIRED"
	// CodeInvalidSession means the credential parses but the referenced
	// user no longer exists or is inactive
	CodeInvalidSession Code = "INVALID_SESSION"
	// CodeInsufficientPermissions means the user lacks a required permission
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"
	// CodeAdminRequired means an admin-only gate rejected the user
	CodeAdminRequired Code = "ADMIN_REQUIRED"
	// CodeAuthError means resolution failed unexpectedly, e.g. the store
	// was unreachable
	CodeAuthError Code = "AUTH_ERROR"
	// CodeInvalidPermission means a guard asked for a permission name the
	// registry does not know. This is a programming error; the check is
	// treated as denied.
	CodeInvalidPermission Code = "INVALID_PERMISSION"
)

// Error is a classified authorization failure. Required and Current carry
// the permission lists included in 403 responses so clients can explain the
// denial; this disclosure is deliberate.
type Error struct {
	Code     Code
	Message  string
	Required []string
	Current  []string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status maps the error code to the HTTP status of its response
func (e *Error) Status() int {
	switch e.Code {
	case CodeAuthRequired, CodeInvalidSession:
		return http.StatusUnauthorized
	case CodeInsufficientPermissions, CodeAdminRequired, CodeInvalidPermission:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// AsError unwraps an authz *Error from err, or returns nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// ErrAuthRequired creates an AUTH_REQUIRED error
func ErrAuthRequired() *Error {
	return &Error{Code: CodeAuthRequired, Message: "authentication required"}
}

// ErrInvalidSession creates an INVALID_SESSION error
func ErrInvalidSession() *Error {
	return &Error{Code: CodeInvalidSession, Message: "session is no longer valid"}
}

// ErrInsufficientPermissions creates an INSUFFICIENT_PERMISSIONS error
// carrying the required and currently held permission lists
func ErrInsufficientPermissions(required, current []string) *Error {
	return &Error{
		Code:     CodeInsufficientPermissions,
		Message:  "insufficient permissions",
		Required: required,
		Current:  current,
	}
}

// ErrAdminRequired creates an ADMIN_REQUIRED error
func ErrAdminRequired() *Error {
	return &Error{Code: CodeAdminRequired, Message: "administrator access required"}
}

// ErrAuthError creates an AUTH_ERROR error. The cause stays server-side.
func ErrAuthError() *Error {
	return &Error{Code: CodeAuthError, Message: "authorization check failed"}
}

func errInvalidPermission(name string) *Error {
	return &Error{
		Code:     CodeInvalidPermission,
		Message:  "unknown permission requested",
		Required: []string{name},
	}
}
