package response

import (
	"context"
	"encoding/json"
	"errors"
	"eventers-ticketing/failure"
	"eventers-ticketing/logger"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	Remaining   *int   `json:"remaining,omitempty"`
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Success: %t, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Success, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	if r.StatusCode >= http.StatusInternalServerError {
		logger.Errorf(ctx, "%s", r.Error())
	} else {
		logger.Infof(ctx, "%s", r.Error())
	}
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}

// FromError maps a service error onto the response for its failure kind.
// Only invalid-request reasons are echoed back to the client.
func FromError(err error) ErrorResponse {
	var er ErrorResponse
	if errors.As(err, &er) {
		return er
	}

	switch failure.Kind(err) {
	case failure.ErrInvalidRequest:
		return InvalidData(err.Error())
	case failure.ErrUnauthorized:
		return Unauthorized()
	case failure.ErrForbidden:
		return Forbidden()
	case failure.ErrNotFound:
		return NotFound()
	case failure.ErrInsufficientAvailability:
		remaining, _ := failure.Remaining(err)
		return InsufficientAvailability(remaining)
	case failure.ErrConflict:
		return Conflict()
	case failure.ErrBusy:
		return Busy()
	}
	return SomethingWrong()
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     message,
		Status:      "BAD REQUEST",
		Description: description,
	}
}

func ResourceNotFound(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusNotFound,
		Success:     false,
		Message:     message,
		Status:      "NOT FOUND",
		Description: description,
	}
}

func MethodNotAllowed(method, path string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusMethodNotAllowed,
		Success:     false,
		Message:     "Method not allowed",
		Status:      "METHOD_NOT_ALLOWED",
		Description: fmt.Sprintf("%s is not supported on %s", method, path),
	}
}

func Unauthorized() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "No valid Auth Token",
		Status:     "UNAUTHORISED",
	}
}

func CanNotLogin() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "Wrong Username or Password",
		Status:     "CANT_LOGIN",
	}
}

func Forbidden() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusForbidden,
		Success:    false,
		Message:    "You are not allowed to perform this action",
		Status:     "FORBIDDEN",
	}
}

func NotFound() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    "Requested Resource Not Found",
		Status:     "NOT_FOUND",
	}
}

func InvalidData(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Invalid data passed",
		Status:      "INVALID_DATA",
		Description: description,
	}
}

func InsufficientAvailability(remaining int) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "Not enough tickets available",
		Status:     "INSUFFICIENT_AVAILABILITY",
		Remaining:  &remaining,
	}
}

func Conflict() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "The request conflicts with the current state of the resource",
		Status:     "CONFLICT",
	}
}

func Busy() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusServiceUnavailable,
		Success:    false,
		Message:    "The service is busy, please retry",
		Status:     "BUSY",
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}
