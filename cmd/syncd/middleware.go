package main

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid/v5"
)

const requestIDHeader = "X-Request-Id"

type contextKey string

const correlationKey contextKey = "correlation_id"

// correlationMiddleware tags each request with the caller's request id, or a
// fresh one, and echoes it back.
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.Must(uuid.NewV4()).String()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), correlationKey, reqID)))
	})
}

func correlationIDFromContext(ctx context.Context) string {
	if value, ok := ctx.Value(correlationKey).(string); ok {
		return value
	}
	return ""
}
