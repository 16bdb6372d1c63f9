package handler

import (
	"context"
	"encoding/json"
	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/response"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

const purchaseMessage = "purchase successful"

type Purchaser interface {
	Purchase(ctx context.Context, caller c.Caller, eventID int64, quantity int) (model.Purchase, error)
}

type purchaseRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

type purchaseResponse struct {
	model.Purchase
	Message string `json:"message"`
}

// Purchase handles POST /events/{eventId}/purchase.
func Purchase(service Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := callerFrom(r)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		eventID, err := eventIDFrom(r)
		if err != nil {
			response.InvalidData(err.Error()).Send(ctx, w)
			return
		}

		var req purchaseRequest
		if err := decode(w, r, &req); err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("purchase: error unmarshalling request body: %v", err)).Send(ctx, w)
			return
		}

		quantity, err := strconv.Atoi(string(req.Quantity))
		if err != nil {
			response.InvalidData("quantity must be a positive integer").Send(ctx, w)
			return
		}

		p, err := service.Purchase(ctx, caller, eventID, quantity)
		if err != nil {
			logger.Infof(ctx, "purchase: user %d, event %d, quantity %d rejected: %+v", caller.UserID, eventID, quantity, err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Body:       purchaseResponse{Purchase: p, Message: purchaseMessage},
			StatusCode: http.StatusCreated,
		}.Send(w)
	}
}

func eventIDFrom(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["eventId"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id: %q", raw)
	}
	return id, nil
}
