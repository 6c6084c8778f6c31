// Package jsonfile provides a booking repository backed by a single JSON
// file, suitable for small deployments where a database is overkill.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

type snapshot struct {
	NextID   int64           `json:"next_id"`
	Bookings []bookingRecord `json:"bookings"`
}

type bookingRecord struct {
	ID              int64     `json:"id"`
	RoomID          string    `json:"room_id"`
	Start           time.Time `json:"start"`
	DurationMinutes int       `json:"duration_minutes"`
	EventDetails    string    `json:"event_details"`
	Category        string    `json:"category"`
	ContactName     string    `json:"contact_name"`
	OwnerID         string    `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store is a BookingRepository persisted to a JSON file. Every mutation is
// written through atomically via a temporary file and rename.
type Store struct {
	path string

	mu       sync.RWMutex
	nextID   int64
	bookings []persistence.Booking
}

// Open loads the store at path, creating an empty one when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, nextID: 1}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("jsonfile: parse %s: %w", path, err)
	}

	s.bookings = make([]persistence.Booking, 0, len(snap.Bookings))
	for _, rec := range snap.Bookings {
		s.bookings = append(s.bookings, fromRecord(rec))
	}
	s.nextID = snap.NextID
	for _, b := range s.bookings {
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
	}
	return s, nil
}

// AddBooking assigns the next identifier, persists, and returns the ID.
func (s *Store) AddBooking(ctx context.Context, booking persistence.Booking) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ID = s.nextID
	s.nextID++
	s.bookings = append(s.bookings, booking)
	if err := s.flushLocked(); err != nil {
		s.bookings = s.bookings[:len(s.bookings)-1]
		s.nextID--
		return 0, err
	}
	return booking.ID, nil
}

// RemoveBooking deletes a booking by identifier.
func (s *Store) RemoveBooking(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.bookings {
		if b.ID != id {
			continue
		}
		removed := b
		s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
		if err := s.flushLocked(); err != nil {
			s.bookings = append(s.bookings, removed)
			return err
		}
		return nil
	}
	return persistence.ErrNotFound
}

// ListBookings returns bookings matching the filter, ordered by start time
// then identifier.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

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

// Close is a no-op; the file is rewritten on every mutation.
func (s *Store) Close() error { return nil }

func (s *Store) flushLocked() error {
	snap := snapshot{NextID: s.nextID, Bookings: make([]bookingRecord, 0, len(s.bookings))}
	for _, b := range s.bookings {
		snap.Bookings = append(snap.Bookings, toRecord(b))
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: replace %s: %w", s.path, err)
	}
	return nil
}

func toRecord(b persistence.Booking) bookingRecord {
	return bookingRecord{
		ID:              b.ID,
		RoomID:          b.RoomID,
		Start:           b.Start,
		DurationMinutes: b.DurationMinutes,
		EventDetails:    b.EventDetails,
		Category:        string(b.Category),
		ContactName:     b.ContactName,
		OwnerID:         b.OwnerID,
		CreatedAt:       b.CreatedAt,
	}
}

func fromRecord(rec bookingRecord) persistence.Booking {
	return persistence.Booking{
		ID:              rec.ID,
		RoomID:          rec.RoomID,
		Start:           rec.Start,
		DurationMinutes: rec.DurationMinutes,
		EventDetails:    rec.EventDetails,
		Category:        persistence.Category(rec.Category),
		ContactName:     rec.ContactName,
		OwnerID:         rec.OwnerID,
		CreatedAt:       rec.CreatedAt,
	}
}
