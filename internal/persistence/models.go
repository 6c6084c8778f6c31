package persistence

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies who a booking is for.
type Category string

const (
	// CategoryInternal marks a booking held for an internal meeting.
	CategoryInternal Category = "internal"
	// CategoryClient marks a booking held on behalf of a client.
	CategoryClient Category = "client"
)

// ParseCategory converts user input into a Category.
func ParseCategory(text string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "internal":
		return CategoryInternal, nil
	case "client":
		return CategoryClient, nil
	default:
		return "", fmt.Errorf("unknown category %q, expected internal or client", strings.TrimSpace(text))
	}
}

// Booking represents a stored room reservation.
type Booking struct {
	ID              int64
	RoomID          string
	Start           time.Time
	DurationMinutes int
	EventDetails    string
	Category        Category
	ContactName     string
	OwnerID         string
	CreatedAt       time.Time
}

// End returns the exclusive end instant of the booking.
func (b Booking) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
