// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, structured
// error responses with machine-readable codes, and path/query parameter parsing.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteCreated(w, resource)
//	httputil.WriteNoContent(w)
//
// Error responses:
//
//	httputil.WriteBadRequest(w, "invalid input")
//	httputil.WriteNotFoundError(w, "board not found")
//	httputil.WriteCodedError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required")
//	httputil.WriteInternalError(w, err)  // cause never reaches the body
//
// # Request Parsing
//
// JSON parsing:
//
//	var req createBoardRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
// Path and query parameters:
//
//	id, ok := httputil.ParsePathStringOrError(w, r, "id")
//	limit := httputil.ParseQueryInt(r, "limit", 20)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
//   - pkg/authz: Classified authorization error responses
package httputil
