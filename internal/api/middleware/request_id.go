package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wonny/marketlens/internal/pkg/reqctx"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds client-supplied ids
const maxRequestIDLen = 128

// RequestID adds a unique request ID to each request.
// A client-supplied X-Request-ID is kept; otherwise a UUID is generated.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestID(r.Context(), requestID)))
	})
}

// GetRequestID retrieves the request ID from the request context
func GetRequestID(r *http.Request) string {
	return reqctx.RequestID(r.Context())
}
