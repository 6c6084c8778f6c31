package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id          TEXT    NOT NULL,
	start            TEXT    NOT NULL,
	duration_minutes INTEGER NOT NULL,
	event_details    TEXT    NOT NULL,
	category         TEXT    NOT NULL,
	contact_name     TEXT    NOT NULL,
	owner_id         TEXT    NOT NULL,
	created_at       TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_room_start ON bookings (room_id, start);
CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings (owner_id);
`

// Store implements persistence.BookingRepository using SQLite. Start instants
// are stored as RFC 3339 strings in UTC so range queries compare correctly;
// loaded instants are converted back into loc so wall-clock rendering matches
// what was booked.
type Store struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	loc    *time.Location
}

// Open connects to the database at dsn and creates the schema if needed.
// Instants read back from the store are expressed in loc; a nil loc means UTC.
func Open(dsn string, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.DB().Exec(schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return &Store{pool: pool, mapper: NewErrorMapper(), loc: loc}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// AddBooking inserts a booking and returns its assigned identifier.
func (s *Store) AddBooking(ctx context.Context, booking persistence.Booking) (int64, error) {
	query := `
		INSERT INTO bookings (room_id, start, duration_minutes, event_details, category, contact_name, owner_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var id int64
	err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			booking.RoomID,
			booking.Start.UTC().Format(time.RFC3339),
			booking.DurationMinutes,
			booking.EventDetails,
			string(booking.Category),
			booking.ContactName,
			booking.OwnerID,
			booking.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return s.mapper.MapError(err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read inserted id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveBooking deletes a booking by identifier.
func (s *Store) RemoveBooking(ctx context.Context, id int64) error {
	result, err := s.pool.DB().ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return s.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ListBookings returns bookings matching the filter, ordered by start time
// then identifier.
func (s *Store) ListBookings(ctx context.Context, filter persistence.BookingFilter) ([]persistence.Booking, error) {
	query := `
		SELECT id, room_id, start, duration_minutes, event_details, category, contact_name, owner_id, created_at
		FROM bookings
		WHERE 1 = 1
	`
	var args []any

	if filter.RoomID != "" {
		query += " AND room_id = ?"
		args = append(args, filter.RoomID)
	}
	if filter.OwnerID != "" {
		query += " AND owner_id = ?"
		args = append(args, filter.OwnerID)
	}
	if filter.Date != nil {
		day := *filter.Date
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		dayEnd := dayStart.AddDate(0, 0, 1)
		query += " AND start >= ? AND start < ?"
		args = append(args,
			dayStart.UTC().Format(time.RFC3339),
			dayEnd.UTC().Format(time.RFC3339),
		)
	}

	query += " ORDER BY start, id"

	rows, err := s.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		booking, err := s.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return bookings, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) scanBooking(rows *sql.Rows) (persistence.Booking, error) {
	var (
		booking      persistence.Booking
		startStr     string
		category     string
		createdAtStr string
	)
	if err := rows.Scan(
		&booking.ID,
		&booking.RoomID,
		&startStr,
		&booking.DurationMinutes,
		&booking.EventDetails,
		&category,
		&booking.ContactName,
		&booking.OwnerID,
		&createdAtStr,
	); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to scan booking: %w", err)
	}

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("invalid start %q: %w", startStr, err)
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("invalid created_at %q: %w", createdAtStr, err)
	}

	booking.Start = start.In(s.loc)
	booking.Category = persistence.Category(category)
	booking.CreatedAt = createdAt.In(s.loc)
	return booking, nil
}
