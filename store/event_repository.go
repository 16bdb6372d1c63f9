package store

import (
	"context"
	"database/sql"
	"eventers-ticketing/failure"
	"eventers-ticketing/model"
	"fmt"
	"strings"
)

const eventTable = "events"

const eventSelect = `SELECT id, organizer_id, title, type, event_date, location, venue, price, capacity, sold, created_at FROM events`

var eventCols = []string{"organizer_id", "title", "type", "event_date", "location", "venue", "price", "capacity", "sold", "created_at"}

// Organizer-editable columns. sold is deliberately absent.
var eventEditableCols = []string{"title", "type", "event_date", "location", "venue", "price", "capacity"}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.EventID,
		&e.OrganizerID,
		&e.Title,
		&e.Type,
		&e.EventDate,
		&e.Location,
		&e.Venue,
		&e.Price,
		&e.Capacity,
		&e.Sold,
		&e.CreatedAt,
	)
	return e, err
}

// GetEventForUpdate reads the event row and holds an exclusive lock on it
// until the surrounding transaction ends.
func (s *Store) GetEventForUpdate(ctx context.Context, eventID int64) (model.Event, error) {
	tx, err := mustTx(ctx, "getEventForUpdate")
	if err != nil {
		return model.Event{}, err
	}

	e, err := scanEvent(tx.QueryRowContext(ctx, eventSelect+` WHERE id = ? FOR UPDATE`, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, fmt.Errorf("getEventForUpdate: event %d: %w", eventID, failure.ErrNotFound)
		}
		return model.Event{}, fmt.Errorf("getEventForUpdate: error locking event %d: %w", eventID, classify(err))
	}
	return e, nil
}

func (s *Store) GetEvent(ctx context.Context, eventID int64) (model.Event, error) {
	e, err := scanEvent(s.conn(ctx).QueryRowContext(ctx, eventSelect+` WHERE id = ?`, eventID))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Event{}, fmt.Errorf("getEvent: event %d: %w", eventID, failure.ErrNotFound)
		}
		return model.Event{}, fmt.Errorf("getEvent: error fetching event %d: %w", eventID, classify(err))
	}
	return e, nil
}

// IncrementSold adds quantity to the event's sold counter. It must run in
// the transaction that locked the row, and refuses to push sold past
// capacity even if the caller's check was wrong.
func (s *Store) IncrementSold(ctx context.Context, eventID int64, quantity int) error {
	tx, err := mustTx(ctx, "incrementSold")
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE events SET sold = sold + ? WHERE id = ? AND sold + ? <= capacity`,
		quantity, eventID, quantity,
	)
	if err != nil {
		return fmt.Errorf("incrementSold: error updating event %d: %w", eventID, classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("incrementSold: unable to get rows affected: %w", classify(err))
	}
	if affected != 1 {
		return fmt.Errorf("incrementSold: event %d: %d rows updated: %w", eventID, affected, wrap(failure.ErrStoreFailure, errShortWrite))
	}
	return nil
}

func (s *Store) CreateEvent(ctx context.Context, e model.Event) (int64, error) {
	values := []interface{}{
		e.OrganizerID,
		e.Title,
		e.Type,
		e.EventDate,
		e.Location,
		e.Venue,
		e.Price,
		e.Capacity,
		0,
		e.CreatedAt,
	}

	id, err := insert(ctx, s.conn(ctx), eventTable, eventCols, [][]interface{}{values})
	if err != nil {
		return 0, fmt.Errorf("createEvent: error inserting event by: %d: %w", e.OrganizerID, err)
	}
	return id, nil
}

// UpdateEvent writes the organizer-editable fields. Callers are expected to
// hold the row lock.
func (s *Store) UpdateEvent(ctx context.Context, e model.Event) error {
	values := []interface{}{
		e.Title,
		e.Type,
		e.EventDate,
		e.Location,
		e.Venue,
		e.Price,
		e.Capacity,
	}

	_, err := update(ctx, s.conn(ctx), eventTable, eventEditableCols, values, []string{"id"}, []interface{}{e.EventID})
	if err != nil {
		return fmt.Errorf("updateEvent: error updating event %d: %w", e.EventID, err)
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, eventID int64) error {
	result, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID)
	if err != nil {
		return fmt.Errorf("deleteEvent: error deleting event %d: %w", eventID, classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleteEvent: unable to get rows affected: %w", classify(err))
	}
	if affected == 0 {
		return fmt.Errorf("deleteEvent: event %d: %w", eventID, failure.ErrNotFound)
	}
	return nil
}

// ListEvents returns events matching f, soonest first.
func (s *Store) ListEvents(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var conds []string
	var args []interface{}

	if f.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Type)
	}
	if f.Date != nil {
		conds = append(conds, "DATE(event_date) = ?")
		args = append(args, f.Date.Format("2006-01-02"))
	}
	if f.Location != "" {
		conds = append(conds, "location LIKE ?")
		args = append(args, "%"+escapeLike(f.Location)+"%")
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}

	q := eventSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY event_date, id"

	events, err := s.queryEvents(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listEvents: %w", err)
	}
	return events, nil
}

func (s *Store) ListEventsByOrganizer(ctx context.Context, organizerID int64) ([]model.Event, error) {
	events, err := s.queryEvents(ctx, eventSelect+` WHERE organizer_id = ? ORDER BY event_date, id`, organizerID)
	if err != nil {
		return nil, fmt.Errorf("listEventsByOrganizer: %d: %w", organizerID, err)
	}
	return events, nil
}

func (s *Store) queryEvents(ctx context.Context, q string, args ...interface{}) ([]model.Event, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("queryEvents: error querying db: %w", classify(err))
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("queryEvents: error scanning event: %w", classify(err))
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queryEvents: error iterating rows: %w", classify(err))
	}
	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
