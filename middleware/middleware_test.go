package middleware

import (
	"errors"
	c "eventers-ticketing/context"
	"eventers-ticketing/model"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]c.Caller

func (s stubVerifier) Verify(token string) (c.Caller, error) {
	caller, ok := s[token]
	if !ok {
		return c.Caller{}, errors.New("unknown token")
	}
	return caller, nil
}

var verifier = stubVerifier{
	"buyer-token":     {UserID: 42, Role: model.RoleBuyer},
	"organizer-token": {UserID: 7, Role: model.RoleOrganizer},
}

func echoCaller(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := c.GetCaller(r.Context())
		require.True(t, ok)
		w.Header().Set("X-Role", caller.Role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/events/1/purchase", nil)
	if authorization != "" {
		r.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(verifier)(echoCaller(t))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic YWxhZGRpbjpvcGVuc2VzYW1l", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", http.StatusUnauthorized},
		{"valid", "Bearer buyer-token", http.StatusNoContent},
		{"lowercase scheme", "bearer buyer-token", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(h, tt.header)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRestrictTo(t *testing.T) {
	h := Authenticate(verifier)(RestrictTo(model.RoleBuyer)(echoCaller(t)))

	w := serve(h, "Bearer buyer-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, model.RoleBuyer, w.Header().Get("X-Role"))

	w = serve(h, "Bearer organizer-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRestrictToWithoutAuthenticate(t *testing.T) {
	w := serve(RestrictTo(model.RoleBuyer)(echoCaller(t)), "Bearer buyer-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetCorrelationIDHeader(t *testing.T) {
	var seen string
	h := SetCorrelationIDHeader(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = c.GetContextValue(r.Context(), c.ContextKeyCorrelationID)
	}))

	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	r.Header.Set("Correlation-Id", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("Correlation-Id"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc-123", seen)
	assert.Equal(t, seen, w.Header().Get("Correlation-Id"))
}

func TestPanicHandler(t *testing.T) {
	h := PanicHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SOMETHING_WRONG")
}

func TestRedactedHidesToken(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")

	assert.Equal(t, "[redacted]", redacted(h).Get("Authorization"))
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
}
