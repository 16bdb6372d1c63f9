package handler

import (
	"context"
	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/response"
	"fmt"
	"net/http"
)

type AccountService interface {
	Signup(ctx context.Context, req model.SignupRequest) (model.Auth, error)
	Login(ctx context.Context, req model.LoginRequest) (model.Auth, error)
	Tickets(ctx context.Context, caller c.Caller) ([]model.Ticket, error)
}

func Signup(service AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.SignupRequest
		if err := decode(w, r, &req); err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("signup: error unmarshalling request body: %v", err)).Send(ctx, w)
			return
		}
		if err := validateStruct(ctx, req); err != nil {
			response.InvalidData(err.Error()).Send(ctx, w)
			return
		}

		a, err := service.Signup(ctx, req)
		if err != nil {
			logger.Infof(ctx, "signup: unable to create user: %+v", err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: a, StatusCode: http.StatusCreated}.Send(w)
	}
}

func Login(service AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.LoginRequest
		if err := decode(w, r, &req); err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("login: error unmarshalling request body: %v", err)).Send(ctx, w)
			return
		}
		if err := validateStruct(ctx, req); err != nil {
			response.InvalidData(err.Error()).Send(ctx, w)
			return
		}

		a, err := service.Login(ctx, req)
		if err != nil {
			logger.Infof(ctx, "login: rejected: %+v", err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: a, StatusCode: http.StatusOK}.Send(w)
	}
}

func MyTickets(service AccountService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := callerFrom(r)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		tickets, err := service.Tickets(ctx, caller)
		if err != nil {
			logger.Errorf(ctx, "myTickets: unable to list tickets of %d: %+v", caller.UserID, err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: tickets, StatusCode: http.StatusOK}.Send(w)
	}
}
