package healthcheck

import (
	"errors"
	"eventers-ticketing/store/storetest"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelf(t *testing.T) {
	mem := storetest.NewMemory()

	w := httptest.NewRecorder()
	Self(mem).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())

	mem.Fail("Ping", errors.New("dial tcp: connection refused"))
	w = httptest.NewRecorder()
	Self(mem).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
