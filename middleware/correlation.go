package middleware

import (
	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"net/http"

	"github.com/google/uuid"
)

const correlationHeader = "Correlation-Id"

// SetCorrelationIDHeader tags the request context with the caller's
// Correlation-Id, generating one when absent, and echoes it back.
func SetCorrelationIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationHeader)
		ctx := c.SetContextWithValue(r.Context(), c.ContextKeyCorrelationID, correlationID)
		if len(correlationID) == 0 {
			correlationID = uuid.New().String()
			ctx = c.SetContextWithValue(ctx, c.ContextKeyCorrelationID, correlationID)
			r.Header.Set(correlationHeader, correlationID)
			logger.Debugf(ctx, "No correlation id provided. Generated %s", correlationID)
		}
		w.Header().Set(correlationHeader, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
