package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

// BookingStore is an in-memory persistence.BookingRepository for tests.
// Setting FailWith makes every call return that error.
type BookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings []persistence.Booking

	FailWith error
}

// NewBookingStore returns an empty in-memory store.
func NewBookingStore() *BookingStore {
	return &BookingStore{nextID: 1}
}

// AddBooking assigns the next identifier and stores the booking.
func (s *BookingStore) AddBooking(_ context.Context, booking persistence.Booking) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return 0, s.FailWith
	}
	booking.ID = s.nextID
	s.nextID++
	s.bookings = append(s.bookings, booking)
	return booking.ID, nil
}

// RemoveBooking deletes a booking by identifier.
func (s *BookingStore) RemoveBooking(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

// ListBookings returns bookings matching the filter, ordered by start then id.
func (s *BookingStore) ListBookings(_ context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []persistence.Booking
	for _, b := range s.bookings {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// Close implements the repository interface.
func (s *BookingStore) Close() error { return nil }

// Len reports the number of stored bookings.
func (s *BookingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}
