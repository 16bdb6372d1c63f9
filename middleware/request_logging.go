package middleware

import (
	"eventers-ticketing/logger"
	"net/http"
)

func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debugf(r.Context(), "Request - %s %s, Headers: %+v", r.Method, r.URL, redacted(r.Header))
		next.ServeHTTP(w, r)
	})
}

func redacted(h http.Header) http.Header {
	if h.Get(authorizationHeader) == "" {
		return h
	}
	out := h.Clone()
	out.Set(authorizationHeader, "[redacted]")
	return out
}
