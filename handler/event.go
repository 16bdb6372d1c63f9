package handler

import (
	"context"
	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/response"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	eventCreatedMessage = "event created"
	eventDeletedMessage = "event deleted"
	dateLayout          = "2006-01-02"
)

type EventService interface {
	Create(ctx context.Context, caller c.Caller, in model.EventInput) (int64, error)
	Update(ctx context.Context, caller c.Caller, eventID int64, in model.EventInput) (model.PublicEvent, error)
	Delete(ctx context.Context, caller c.Caller, eventID int64) error
	Get(ctx context.Context, eventID int64) (model.PublicEvent, error)
	List(ctx context.Context, f model.EventFilter) ([]model.PublicEvent, error)
	ListByOrganizer(ctx context.Context, caller c.Caller) ([]model.PublicEvent, error)
}

type createEventResponse struct {
	EventID int64  `json:"eventId"`
	Message string `json:"message"`
}

func CreateEvent(service EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := callerFrom(r)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		in, ok := decodeEventInput(w, r)
		if !ok {
			return
		}

		id, err := service.Create(ctx, caller, in)
		if err != nil {
			logger.Errorf(ctx, "createEvent: unable to create event: %+v", err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Body:       createEventResponse{EventID: id, Message: eventCreatedMessage},
			StatusCode: http.StatusCreated,
		}.Send(w)
	}
}

func UpdateEvent(service EventService) http.HandlerFunc {
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

		in, ok := decodeEventInput(w, r)
		if !ok {
			return
		}

		updated, err := service.Update(ctx, caller, eventID, in)
		if err != nil {
			logger.Errorf(ctx, "updateEvent: unable to update event %d: %+v", eventID, err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: updated, StatusCode: http.StatusOK}.Send(w)
	}
}

func DeleteEvent(service EventService) http.HandlerFunc {
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

		if err := service.Delete(ctx, caller, eventID); err != nil {
			logger.Errorf(ctx, "deleteEvent: unable to delete event %d: %+v", eventID, err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Body:       response.Message{Message: eventDeletedMessage},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func GetEvent(service EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		eventID, err := eventIDFrom(r)
		if err != nil {
			response.InvalidData(err.Error()).Send(ctx, w)
			return
		}

		e, err := service.Get(ctx, eventID)
		if err != nil {
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: e, StatusCode: http.StatusOK}.Send(w)
	}
}

// ListEvents handles GET /events with optional type, date, location,
// minPrice and maxPrice filters.
func ListEvents(service EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		f, err := parseFilter(r.URL.Query())
		if err != nil {
			response.InvalidData(err.Error()).Send(ctx, w)
			return
		}

		events, err := service.List(ctx, f)
		if err != nil {
			logger.Errorf(ctx, "listEvents: unable to list events: %+v", err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: events, StatusCode: http.StatusOK}.Send(w)
	}
}

func MyEvents(service EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		caller, ok := callerFrom(r)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		events, err := service.ListByOrganizer(ctx, caller)
		if err != nil {
			logger.Errorf(ctx, "myEvents: unable to list events of %d: %+v", caller.UserID, err)
			response.FromError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{Body: events, StatusCode: http.StatusOK}.Send(w)
	}
}

func decodeEventInput(w http.ResponseWriter, r *http.Request) (model.EventInput, bool) {
	ctx := r.Context()

	var in model.EventInput
	if err := decode(w, r, &in); err != nil {
		response.BadRequest("invalid request body", fmt.Sprintf("event: error unmarshalling request body: %v", err)).Send(ctx, w)
		return model.EventInput{}, false
	}
	if err := validateStruct(ctx, in); err != nil {
		response.InvalidData(err.Error()).Send(ctx, w)
		return model.EventInput{}, false
	}
	return in, true
}

func parseFilter(q url.Values) (model.EventFilter, error) {
	f := model.EventFilter{
		Type:     strings.TrimSpace(q.Get("type")),
		Location: strings.TrimSpace(q.Get("location")),
	}

	if raw := q.Get("date"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return model.EventFilter{}, fmt.Errorf("date must be formatted as %s", dateLayout)
		}
		f.Date = &d
	}

	var err error
	if f.MinPrice, err = optionalInt(q, "minPrice"); err != nil {
		return model.EventFilter{}, err
	}
	if f.MaxPrice, err = optionalInt(q, "maxPrice"); err != nil {
		return model.EventFilter{}, err
	}
	return f, nil
}

func optionalInt(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return &v, nil
}
