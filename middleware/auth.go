package middleware

import (
	c "eventers-ticketing/context"
	"eventers-ticketing/response"
	"net/http"
	"strings"
)

const authorizationHeader = "Authorization"

// Verifier resolves a bearer token to the caller it was issued to.
type Verifier interface {
	Verify(token string) (c.Caller, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified caller in the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get(authorizationHeader))
			if !ok {
				response.Unauthorized().Send(r.Context(), w)
				return
			}

			caller, err := v.Verify(token)
			if err != nil {
				response.Unauthorized().Send(r.Context(), w)
				return
			}
			next.ServeHTTP(w, r.WithContext(c.SetCaller(r.Context(), caller)))
		})
	}
}

// RestrictTo lets through only authenticated callers holding role.
func RestrictTo(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := c.GetCaller(r.Context())
			if !ok {
				response.Unauthorized().Send(r.Context(), w)
				return
			}
			if caller.Role != role {
				response.Forbidden().Send(r.Context(), w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
