// Package reservation issues tickets against event capacity. It is the only
// writer of an event's sold counter: every purchase locks the event row,
// re-checks availability, inserts the tickets and bumps sold in one
// transaction.
package reservation

import (
	"context"
	"eventers-ticketing/clock"
	c "eventers-ticketing/context"
	"eventers-ticketing/failure"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"fmt"

	"github.com/google/uuid"
)

// maxBusyRetries bounds automatic retries of a purchase that failed with
// failure.ErrBusy before anything was committed.
const maxBusyRetries = 1

// Repository is the transactional store the service runs against.
// GetEventForUpdate must hold an exclusive lock on the event row until the
// transaction opened by WithTx ends.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEventForUpdate(ctx context.Context, eventID int64) (model.Event, error)
	CreateTickets(ctx context.Context, tickets []model.Ticket) error
	IncrementSold(ctx context.Context, eventID int64, quantity int) error
}

// Invalidator is told about committed purchases so derived views, such as
// cached listings, can be dropped.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Option func(*Service)

func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

type Service struct {
	repo        Repository
	clock       clock.Clock
	newID       func() string
	invalidator Invalidator
}

func NewService(repo Repository, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		clock: clk,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase issues quantity tickets for eventID to caller. On any error no
// ticket exists and sold is unchanged.
func (s *Service) Purchase(ctx context.Context, caller c.Caller, eventID int64, quantity int) (model.Purchase, error) {
	if quantity <= 0 {
		return model.Purchase{}, failure.Invalid("purchase: quantity must be a positive integer, got %d", quantity)
	}
	if caller.UserID <= 0 {
		return model.Purchase{}, fmt.Errorf("purchase: no caller identity: %w", failure.ErrUnauthorized)
	}
	if caller.Role != model.RoleBuyer {
		return model.Purchase{}, fmt.Errorf("purchase: role %q may not buy tickets: %w", caller.Role, failure.ErrForbidden)
	}
	if eventID <= 0 {
		return model.Purchase{}, fmt.Errorf("purchase: event %d: %w", eventID, failure.ErrNotFound)
	}

	var p model.Purchase
	var err error
	for attempt := 0; ; attempt++ {
		p, err = s.purchase(ctx, caller.UserID, eventID, quantity)
		if err == nil || !failure.Retryable(err) || attempt >= maxBusyRetries {
			break
		}
		logger.Warnf(ctx, "purchase: event %d: transient store failure, retrying: %+v", eventID, err)
	}
	if err != nil {
		return model.Purchase{}, err
	}

	logger.Infof(ctx, "purchase: user %d bought %d tickets for event %d, total %d", caller.UserID, p.TicketCount, eventID, p.TotalCost)

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx); err != nil {
			logger.Warnf(ctx, "purchase: unable to invalidate listings after event %d: %+v", eventID, err)
		}
	}
	return p, nil
}

// purchase is one attempt at the unit of work. Nothing read here survives
// into a retry.
func (s *Service) purchase(ctx context.Context, userID, eventID int64, quantity int) (model.Purchase, error) {
	var result model.Purchase

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.repo.GetEventForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		remaining := event.Availability()
		if remaining < quantity {
			if remaining < 0 {
				remaining = 0
			}
			return &failure.InsufficientError{EventID: eventID, Requested: quantity, Remaining: remaining}
		}

		now := s.clock.Now()
		tickets := make([]model.Ticket, quantity)
		ids := make([]string, quantity)
		for i := range tickets {
			ids[i] = s.newID()
			tickets[i] = model.Ticket{
				TicketID:  ids[i],
				UserID:    userID,
				EventID:   eventID,
				CreatedAt: now,
			}
		}

		if err := s.repo.CreateTickets(txCtx, tickets); err != nil {
			return err
		}
		if err := s.repo.IncrementSold(txCtx, eventID, quantity); err != nil {
			return err
		}

		result = model.Purchase{
			EventID:     eventID,
			TicketIDs:   ids,
			TicketCount: quantity,
			UnitPrice:   event.Price,
			TotalCost:   event.Price * int64(quantity),
		}
		return nil
	})
	if err != nil {
		return model.Purchase{}, fmt.Errorf("purchase: event %d: %w", eventID, err)
	}
	return result, nil
}
