package authz

import (
	"net/http"

	"github.com/taskboardhq/taskboard/pkg/httputil"
)

// WriteError maps an enforcement failure to its HTTP response. Non-authz
// errors become an opaque AUTH_ERROR 500; the cause is never sent to the
// client.
func WriteError(w http.ResponseWriter, err error) {
	authzErr := AsError(err)
	if authzErr == nil {
		authzErr = ErrAuthError()
	}

	body := httputil.ErrorBody{
		Code:  string(authzErr.Code),
		Error: authzErr.Message,
	}
	// Permission lists are exposed on 403 for client UX; INVALID_PERMISSION
	// is an internal misconfiguration and discloses nothing.
	if authzErr.Code == CodeInsufficientPermissions {
		body.Required = authzErr.Required
		body.Current = authzErr.Current
	}
	httputil.WriteJSON(w, authzErr.Status(), body)
}
