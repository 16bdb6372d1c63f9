// Package event manages organizer events and serves the public listing.
package event

import (
	"context"
	"eventers-ticketing/clock"
	c "eventers-ticketing/context"
	"eventers-ticketing/failure"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"fmt"
	"strings"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID int64) (model.Event, error)
	GetEvent(ctx context.Context, eventID int64) (model.Event, error)
	CreateEvent(ctx context.Context, e model.Event) (int64, error)
	UpdateEvent(ctx context.Context, e model.Event) error
	DeleteEvent(ctx context.Context, eventID int64) error
	ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]model.Event, error)
}

// ListingCache holds public listings keyed by filter. It is never
// consulted for purchases. Get reports the cache generation it read, and
// Set must be given that generation so a listing read before an
// invalidation cannot be stored after it.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]model.PublicEvent, int64, bool, error)
	Set(ctx context.Context, key string, gen int64, events []model.PublicEvent) error
	Invalidate(ctx context.Context) error
}

func NewEvent(repo Repository, clk clock.Clock, cache ListingCache) *Event {
	return &Event{repo: repo, clock: clk, cache: cache}
}

type Event struct {
	repo  Repository
	clock clock.Clock
	cache ListingCache
}

// Create stores a new event owned by caller with nothing sold.
func (s *Event) Create(ctx context.Context, caller c.Caller, in model.EventInput) (int64, error) {
	if err := requireOrganizer(caller, "create"); err != nil {
		return 0, err
	}
	if err := checkInput(in); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	e := apply(model.Event{OrganizerID: caller.UserID, CreatedAt: s.clock.Now()}, in)
	id, err := s.repo.CreateEvent(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create: unable to create event: %w", err)
	}

	logger.Infof(ctx, "create: organizer %d created event %d with capacity %d", caller.UserID, id, e.Capacity)
	s.invalidate(ctx)
	return id, nil
}

// Update rewrites the editable fields of an event under its row lock, so it
// serializes with purchases of the same event. Capacity may not drop below
// the tickets already sold.
func (s *Event) Update(ctx context.Context, caller c.Caller, eventID int64, in model.EventInput) (model.PublicEvent, error) {
	if err := requireOrganizer(caller, "update"); err != nil {
		return model.PublicEvent{}, err
	}
	if err := checkInput(in); err != nil {
		return model.PublicEvent{}, fmt.Errorf("update: %w", err)
	}

	var updated model.Event
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.lockOwned(txCtx, caller, eventID)
		if err != nil {
			return err
		}
		if in.Capacity < cur.Sold {
			return failure.Invalid("capacity %d is below the %d tickets already sold", in.Capacity, cur.Sold)
		}

		updated = apply(cur, in)
		return s.repo.UpdateEvent(txCtx, updated)
	})
	if err != nil {
		return model.PublicEvent{}, fmt.Errorf("update: event %d: %w", eventID, err)
	}

	logger.Infof(ctx, "update: organizer %d updated event %d", caller.UserID, eventID)
	s.invalidate(ctx)
	return model.NewPublicEvent(updated), nil
}

// Delete removes an event that has no tickets issued.
func (s *Event) Delete(ctx context.Context, caller c.Caller, eventID int64) error {
	if err := requireOrganizer(caller, "delete"); err != nil {
		return err
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.lockOwned(txCtx, caller, eventID)
		if err != nil {
			return err
		}
		if cur.Sold > 0 {
			return fmt.Errorf("%d tickets already issued: %w", cur.Sold, failure.ErrConflict)
		}
		return s.repo.DeleteEvent(txCtx, eventID)
	})
	if err != nil {
		return fmt.Errorf("delete: event %d: %w", eventID, err)
	}

	logger.Infof(ctx, "delete: organizer %d deleted event %d", caller.UserID, eventID)
	s.invalidate(ctx)
	return nil
}

func (s *Event) Get(ctx context.Context, eventID int64) (model.PublicEvent, error) {
	if eventID <= 0 {
		return model.PublicEvent{}, fmt.Errorf("get: event %d: %w", eventID, failure.ErrNotFound)
	}
	e, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return model.PublicEvent{}, fmt.Errorf("get: %w", err)
	}
	return model.NewPublicEvent(e), nil
}

// List returns the public listing for f. Availability in the result is
// informational.
func (s *Event) List(ctx context.Context, f model.EventFilter) ([]model.PublicEvent, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return nil, failure.Invalid("list: minPrice %d is above maxPrice %d", *f.MinPrice, *f.MaxPrice)
	}

	key := f.Key()
	cacheable := false
	var gen int64
	if s.cache != nil {
		cached, g, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logger.Warnf(ctx, "list: listing cache unavailable, reading store: %+v", err)
		} else if ok {
			return cached, nil
		} else {
			cacheable, gen = true, g
		}
	}

	events, err := s.repo.ListEvents(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	listing := publicEvents(events)

	if cacheable {
		if err := s.cache.Set(ctx, key, gen, listing); err != nil {
			logger.Warnf(ctx, "list: unable to cache listing: %+v", err)
		}
	}
	return listing, nil
}

// ListByOrganizer returns the caller's own events, read from the store.
func (s *Event) ListByOrganizer(ctx context.Context, caller c.Caller) ([]model.PublicEvent, error) {
	if err := requireOrganizer(caller, "listByOrganizer"); err != nil {
		return nil, err
	}
	events, err := s.repo.ListEventsByOrganizer(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("listByOrganizer: %w", err)
	}
	return publicEvents(events), nil
}

func (s *Event) lockOwned(ctx context.Context, caller c.Caller, eventID int64) (model.Event, error) {
	if eventID <= 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", eventID, failure.ErrNotFound)
	}
	cur, err := s.repo.GetEventForUpdate(ctx, eventID)
	if err != nil {
		return model.Event{}, err
	}
	if cur.OrganizerID != caller.UserID {
		return model.Event{}, fmt.Errorf("organizer %d does not own event %d: %w", caller.UserID, eventID, failure.ErrForbidden)
	}
	return cur, nil
}

func (s *Event) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warnf(ctx, "invalidate: unable to drop cached listings: %+v", err)
	}
}

func requireOrganizer(caller c.Caller, op string) error {
	if caller.UserID <= 0 {
		return fmt.Errorf("%s: no caller identity: %w", op, failure.ErrUnauthorized)
	}
	if caller.Role != model.RoleOrganizer {
		return fmt.Errorf("%s: role %q may not manage events: %w", op, caller.Role, failure.ErrForbidden)
	}
	return nil
}

func checkInput(in model.EventInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return failure.Invalid("title is required")
	case strings.TrimSpace(in.Type) == "":
		return failure.Invalid("type is required")
	case in.EventDate.IsZero():
		return failure.Invalid("event_date is required")
	case strings.TrimSpace(in.Location) == "":
		return failure.Invalid("location is required")
	case in.Price == nil || *in.Price < 0:
		return failure.Invalid("price must be a non-negative integer")
	case in.Capacity <= 0:
		return failure.Invalid("capacity must be a positive integer, got %d", in.Capacity)
	}
	return nil
}

// apply copies the editable fields of in onto e. Sold is left untouched.
func apply(e model.Event, in model.EventInput) model.Event {
	e.Title = strings.TrimSpace(in.Title)
	e.Type = strings.TrimSpace(in.Type)
	e.EventDate = in.EventDate.UTC()
	e.Location = strings.TrimSpace(in.Location)
	e.Venue = strings.TrimSpace(in.Venue)
	e.Price = *in.Price
	e.Capacity = in.Capacity
	return e
}

func publicEvents(events []model.Event) []model.PublicEvent {
	out := make([]model.PublicEvent, 0, len(events))
	for _, e := range events {
		out = append(out, model.NewPublicEvent(e))
	}
	return out
}
