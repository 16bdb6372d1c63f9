package store

import (
	"context"
	"eventers-ticketing/model"
	"fmt"
)

const ticketTable = "tickets"

var ticketCols = []string{"id", "user_id", "event_id", "created_at"}

// CreateTickets inserts all tickets in one multi-row statement.
func (s *Store) CreateTickets(ctx context.Context, tickets []model.Ticket) error {
	tx, err := mustTx(ctx, "createTickets")
	if err != nil {
		return err
	}

	rows := make([][]interface{}, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []interface{}{t.TicketID, t.UserID, t.EventID, t.CreatedAt})
	}

	if _, err := insert(ctx, tx, ticketTable, ticketCols, rows); err != nil {
		return fmt.Errorf("createTickets: error inserting %d tickets: %w", len(tickets), err)
	}
	return nil
}

func (s *Store) TicketsByUser(ctx context.Context, userID int64) ([]model.Ticket, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, event_id, created_at FROM tickets WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ticketsByUser: error querying tickets of %d: %w", userID, classify(err))
	}
	defer rows.Close()

	tickets := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.TicketID, &t.UserID, &t.EventID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("ticketsByUser: error scanning ticket: %w", classify(err))
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ticketsByUser: error iterating rows: %w", classify(err))
	}
	return tickets, nil
}
