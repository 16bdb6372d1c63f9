package model

import (
	"fmt"
	"time"
)

// Event is a ticketed event. Sold is written only by the reservation
// service while holding the event's row lock.
type Event struct {
	EventID     int64     `json:"id"`
	OrganizerID int64     `json:"organizer_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	EventDate   time.Time `json:"event_date"`
	Location    string    `json:"location"`
	Venue       string    `json:"venue,omitempty"`
	Price       int64     `json:"price"`
	Capacity    int       `json:"capacity"`
	Sold        int       `json:"sold"`
	CreatedAt   time.Time `json:"created_at"`
}

// Availability is the number of tickets still purchasable.
func (e Event) Availability() int {
	return e.Capacity - e.Sold
}

// PublicEvent is the listing view of an event.
type PublicEvent struct {
	Event
	Available int `json:"availability"`
}

func NewPublicEvent(e Event) PublicEvent {
	return PublicEvent{Event: e, Available: e.Availability()}
}

// EventInput carries the organizer-editable fields of an event.
type EventInput struct {
	Title     string    `json:"title" validate:"required,max=255"`
	Type      string    `json:"type" validate:"required,max=64"`
	EventDate time.Time `json:"event_date" validate:"required"`
	Location  string    `json:"location" validate:"required,max=255"`
	Venue     string    `json:"venue" validate:"max=255"`
	Price     *int64    `json:"price" validate:"required,min=0"`
	Capacity  int       `json:"capacity" validate:"required,min=1"`
}

// EventFilter narrows the public listing. Zero values are ignored.
type EventFilter struct {
	Type     string
	Date     *time.Time
	Location string
	MinPrice *int64
	MaxPrice *int64
}

// Key is a stable string form of f, used to address cached listings.
func (f EventFilter) Key() string {
	date := ""
	if f.Date != nil {
		date = f.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("type=%s|date=%s|location=%s|min=%s|max=%s", f.Type, date, f.Location, optInt(f.MinPrice), optInt(f.MaxPrice))
}

func optInt(v *int64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}
