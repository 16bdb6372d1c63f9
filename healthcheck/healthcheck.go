// Package healthcheck reports whether the service can reach its database.
package healthcheck

import (
	"context"
	"eventers-ticketing/logger"
	"eventers-ticketing/response"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Self answers 200 while the database responds to a ping and 503 otherwise.
func Self(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warnf(ctx, "healthcheck: database unreachable: %+v", err)
			response.SuccessResponse{
				Body:       status{Status: "unavailable", Database: "down"},
				StatusCode: http.StatusServiceUnavailable,
			}.Send(w)
			return
		}

		response.SuccessResponse{
			Body:       status{Status: "ok", Database: "up"},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}
