package model

import "time"

// Ticket is one admission; an order of N tickets is N rows.
type Ticket struct {
	TicketID  string    `json:"id"`
	UserID    int64     `json:"user_id"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase is the outcome of a committed reservation.
type Purchase struct {
	EventID     int64    `json:"eventId"`
	TicketIDs   []string `json:"ticketIds"`
	TicketCount int      `json:"ticketCount"`
	UnitPrice   int64    `json:"unitPrice"`
	TotalCost   int64    `json:"totalCost"`
}
