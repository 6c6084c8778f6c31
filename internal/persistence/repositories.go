package persistence

import (
	"context"
	"time"
)

// BookingFilter narrows booking queries. Zero-value fields do not filter.
type BookingFilter struct {
	// RoomID restricts results to a single room.
	RoomID string
	// Date restricts results to bookings starting on that calendar day,
	// evaluated in the Date's location.
	Date *time.Time
	// OwnerID restricts results to bookings created by one user.
	OwnerID string
}

// BookingRepository stores room reservations.
type BookingRepository interface {
	// AddBooking persists a booking and returns its assigned identifier.
	// The supplied booking's ID field is ignored.
	AddBooking(ctx context.Context, booking Booking) (int64, error)
	// RemoveBooking deletes a booking by identifier. It returns ErrNotFound
	// when no such booking exists.
	RemoveBooking(ctx context.Context, id int64) error
	// ListBookings returns bookings matching the filter, ordered by start
	// time then identifier.
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	// Close releases any resources held by the store.
	Close() error
}

// MatchesDate reports whether a booking starts on the given calendar day.
// The comparison happens in the day's location so stores backed by UTC
// timestamps still group bookings by local day.
func MatchesDate(booking Booking, day time.Time) bool {
	start := booking.Start.In(day.Location())
	y1, m1, d1 := start.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Matches reports whether a booking satisfies every set field of the filter.
func (f BookingFilter) Matches(booking Booking) bool {
	if f.RoomID != "" && booking.RoomID != f.RoomID {
		return false
	}
	if f.OwnerID != "" && booking.OwnerID != f.OwnerID {
		return false
	}
	if f.Date != nil && !MatchesDate(booking, *f.Date) {
		return false
	}
	return true
}
