package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/taskboardhq/taskboard/pkg/contextkeys"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns each request a UUID (or adopts the caller-supplied
// X-Request-ID) and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := contextkeys.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
