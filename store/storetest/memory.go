// Package storetest provides an in-memory repository that behaves like the
// MySQL store where the services care: event rows are locked exclusively
// until the transaction ends, writes made inside a transaction become
// visible only on commit, and any error rolls every staged write back.
package storetest

import (
	"context"
	"errors"
	"eventers-ticketing/failure"
	"eventers-ticketing/model"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultLockWait mirrors a short innodb_lock_wait_timeout.
const DefaultLockWait = 2 * time.Second

type txKey struct{}

type memTx struct {
	locked map[int64]bool
	staged []func()
	sold   map[int64]int
}

// Memory is safe for concurrent use.
type Memory struct {
	LockWait time.Duration

	mu      sync.Mutex
	events  map[int64]model.Event
	tickets map[string]model.Ticket
	users   map[int64]model.User
	nextID  int64
	rowLock map[int64]chan struct{}
	faults  map[string][]error
	calls   map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		LockWait: DefaultLockWait,
		events:   map[int64]model.Event{},
		tickets:  map[string]model.Ticket{},
		users:    map[int64]model.User{},
		rowLock:  map[int64]chan struct{}{},
		faults:   map[string][]error{},
		calls:    map[string]int{},
	}
}

// Fail queues errs to be returned, in order, by the next calls to op (a
// repository method name such as "CreateTickets").
func (m *Memory) Fail(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[op] = append(m.faults[op], errs...)
}

// Calls reports how many times op has been invoked.
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *Memory) enter(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if q := m.faults[op]; len(q) > 0 {
		m.faults[op] = q[1:]
		return q[0]
	}
	return nil
}

// SeedEvent stores e as committed state and returns its id.
func (m *Memory) SeedEvent(e model.Event) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.EventID == 0 {
		m.nextID++
		e.EventID = m.nextID
	} else if e.EventID > m.nextID {
		m.nextID = e.EventID
	}
	m.events[e.EventID] = e
	return e.EventID
}

// Event returns the committed state of an event.
func (m *Memory) Event(eventID int64) (model.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	return e, ok
}

// TicketCount returns the number of committed tickets for an event.
func (m *Memory) TicketCount(eventID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n
}

func (m *Memory) Ping(ctx context.Context) error {
	return m.enter("Ping")
}

func (m *Memory) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := m.enter("WithTx"); err != nil {
		return err
	}

	tx := &memTx{locked: map[int64]bool{}, sold: map[int64]int{}}
	defer m.release(tx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("withTx: %w", err)
	}
	if err := m.enter("Commit"); err != nil {
		return err
	}

	m.mu.Lock()
	for _, apply := range tx.staged {
		apply()
	}
	m.mu.Unlock()
	return nil
}

func txFrom(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey{}).(*memTx)
	return tx
}

func (m *Memory) lockFor(eventID int64) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.rowLock[eventID]
	if !ok {
		l = make(chan struct{}, 1)
		m.rowLock[eventID] = l
	}
	return l
}

func (m *Memory) acquire(ctx context.Context, tx *memTx, eventID int64) error {
	if tx.locked[eventID] {
		return nil
	}

	timer := time.NewTimer(m.LockWait)
	defer timer.Stop()

	select {
	case m.lockFor(eventID) <- struct{}{}:
		tx.locked[eventID] = true
		return nil
	case <-timer.C:
		return fmt.Errorf("lock wait timeout on event %d: %w", eventID, failure.ErrBusy)
	case <-ctx.Done():
		return fmt.Errorf("lock event %d: %v: %w", eventID, ctx.Err(), failure.ErrStoreFailure)
	}
}

func (m *Memory) release(tx *memTx) {
	for id := range tx.locked {
		<-m.lockFor(id)
	}
}

func (m *Memory) GetEventForUpdate(ctx context.Context, eventID int64) (model.Event, error) {
	tx := txFrom(ctx)
	if tx == nil {
		return model.Event{}, errors.New("getEventForUpdate: must run inside a transaction")
	}
	if err := m.enter("GetEventForUpdate"); err != nil {
		return model.Event{}, err
	}
	if err := m.acquire(ctx, tx, eventID); err != nil {
		return model.Event{}, err
	}

	e, ok := m.Event(eventID)
	if !ok {
		return model.Event{}, fmt.Errorf("getEventForUpdate: event %d: %w", eventID, failure.ErrNotFound)
	}
	e.Sold += tx.sold[eventID]
	return e, nil
}

func (m *Memory) GetEvent(ctx context.Context, eventID int64) (model.Event, error) {
	if err := m.enter("GetEvent"); err != nil {
		return model.Event{}, err
	}
	e, ok := m.Event(eventID)
	if !ok {
		return model.Event{}, fmt.Errorf("getEvent: event %d: %w", eventID, failure.ErrNotFound)
	}
	return e, nil
}

func (m *Memory) CreateTickets(ctx context.Context, tickets []model.Ticket) error {
	tx := txFrom(ctx)
	if tx == nil {
		return errors.New("createTickets: must run inside a transaction")
	}
	if err := m.enter("CreateTickets"); err != nil {
		return err
	}

	copied := append([]model.Ticket(nil), tickets...)
	tx.staged = append(tx.staged, func() {
		for _, t := range copied {
			m.tickets[t.TicketID] = t
		}
	})
	return nil
}

func (m *Memory) IncrementSold(ctx context.Context, eventID int64, quantity int) error {
	tx := txFrom(ctx)
	if tx == nil || !tx.locked[eventID] {
		return errors.New("incrementSold: event row is not locked by this transaction")
	}
	if err := m.enter("IncrementSold"); err != nil {
		return err
	}

	e, ok := m.Event(eventID)
	if !ok {
		return fmt.Errorf("incrementSold: event %d: %w", eventID, failure.ErrStoreFailure)
	}
	if e.Sold+tx.sold[eventID]+quantity > e.Capacity {
		return fmt.Errorf("incrementSold: event %d would exceed capacity: %w", eventID, failure.ErrStoreFailure)
	}

	tx.sold[eventID] += quantity
	tx.staged = append(tx.staged, func() {
		e := m.events[eventID]
		e.Sold += quantity
		m.events[eventID] = e
	})
	return nil
}

func (m *Memory) CreateEvent(ctx context.Context, e model.Event) (int64, error) {
	if err := m.enter("CreateEvent"); err != nil {
		return 0, err
	}
	e.Sold = 0
	e.EventID = 0
	return m.SeedEvent(e), nil
}

func (m *Memory) UpdateEvent(ctx context.Context, e model.Event) error {
	if err := m.enter("UpdateEvent"); err != nil {
		return err
	}
	apply := func() {
		cur, ok := m.events[e.EventID]
		if !ok {
			return
		}
		cur.Title, cur.Type, cur.EventDate = e.Title, e.Type, e.EventDate
		cur.Location, cur.Venue = e.Location, e.Venue
		cur.Price, cur.Capacity = e.Price, e.Capacity
		m.events[e.EventID] = cur
	}
	m.stageOrApply(ctx, apply)
	return nil
}

func (m *Memory) DeleteEvent(ctx context.Context, eventID int64) error {
	if err := m.enter("DeleteEvent"); err != nil {
		return err
	}
	if _, ok := m.Event(eventID); !ok {
		return fmt.Errorf("deleteEvent: event %d: %w", eventID, failure.ErrNotFound)
	}
	m.stageOrApply(ctx, func() {
		delete(m.events, eventID)
	})
	return nil
}

func (m *Memory) stageOrApply(ctx context.Context, apply func()) {
	if tx := txFrom(ctx); tx != nil {
		tx.staged = append(tx.staged, apply)
		return
	}
	m.mu.Lock()
	apply()
	m.mu.Unlock()
}

func (m *Memory) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	if err := m.enter("ListEvents"); err != nil {
		return nil, err
	}
	return m.filter(func(e model.Event) bool {
		if f.Type != "" && e.Type != f.Type {
			return false
		}
		if f.Date != nil && e.EventDate.Format("2006-01-02") != f.Date.Format("2006-01-02") {
			return false
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(f.Location)) {
			return false
		}
		if f.MinPrice != nil && e.Price < *f.MinPrice {
			return false
		}
		if f.MaxPrice != nil && e.Price > *f.MaxPrice {
			return false
		}
		return true
	}), nil
}

func (m *Memory) ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]model.Event, error) {
	if err := m.enter("ListEventsByOrganizer"); err != nil {
		return nil, err
	}
	return m.filter(func(e model.Event) bool { return e.OrganizerID == organizerID }), nil
}

func (m *Memory) filter(keep func(model.Event) bool) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Event{}
	for _, e := range m.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

func (m *Memory) CreateUser(ctx context.Context, u model.User) (int64, error) {
	if err := m.enter("CreateUser"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return 0, fmt.Errorf("createUser: duplicate email: %w", failure.ErrConflict)
		}
	}
	m.nextID++
	u.UserID = m.nextID
	m.users[u.UserID] = u
	return u.UserID, nil
}

func (m *Memory) UserByEmail(ctx context.Context, email string) (model.User, error) {
	if err := m.enter("UserByEmail"); err != nil {
		return model.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("userByEmail: %w", failure.ErrNotFound)
}

func (m *Memory) TicketsByUser(ctx context.Context, userID int64) ([]model.Ticket, error) {
	if err := m.enter("TicketsByUser"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Ticket{}
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketID < out[j].TicketID })
	return out, nil
}
