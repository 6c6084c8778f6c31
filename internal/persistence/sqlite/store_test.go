package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	return openTestStoreIn(t, time.UTC)
}

func openTestStoreIn(t *testing.T, loc *time.Location) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "bookings.db"), loc)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBooking(room string, start time.Time, owner string) persistence.Booking {
	return persistence.Booking{
		RoomID:          room,
		Start:           start,
		DurationMinutes: 30,
		EventDetails:    "Design review",
		Category:        persistence.CategoryClient,
		ContactName:     "Ada",
		OwnerID:         owner,
		CreatedAt:       start.Add(-time.Hour),
	}
}

func TestAddAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, time.November, 21, 10, 0, 0, 0, time.UTC)

	id, err := store.AddBooking(ctx, testBooking("nest", start, "U1"))
	if err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}

	bookings, err := store.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	got := bookings[0]
	if got.RoomID != "nest" || !got.Start.Equal(start) || got.DurationMinutes != 30 {
		t.Fatalf("unexpected booking %+v", got)
	}
	if got.Category != persistence.CategoryClient || got.ContactName != "Ada" || got.OwnerID != "U1" {
		t.Fatalf("unexpected booking %+v", got)
	}
}

func TestRemoveBooking(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, time.November, 21, 10, 0, 0, 0, time.UTC)

	id, err := store.AddBooking(ctx, testBooking("nest", start, "U1"))
	if err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}

	if err := store.RemoveBooking(ctx, id); err != nil {
		t.Fatalf("RemoveBooking returned error: %v", err)
	}
	if err := store.RemoveBooking(ctx, id); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	day1 := time.Date(2024, time.November, 21, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, time.November, 22, 10, 0, 0, 0, time.UTC)

	seed := []persistence.Booking{
		testBooking("nest", day1, "U1"),
		testBooking("raven", day1, "U2"),
		testBooking("nest", day2, "U1"),
	}
	for _, b := range seed {
		if _, err := store.AddBooking(ctx, b); err != nil {
			t.Fatalf("AddBooking returned error: %v", err)
		}
	}

	t.Run("by room", func(t *testing.T) {
		got, err := store.ListBookings(ctx, persistence.BookingFilter{RoomID: "nest"})
		if err != nil {
			t.Fatalf("ListBookings returned error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 bookings, got %d", len(got))
		}
	})

	t.Run("by owner", func(t *testing.T) {
		got, err := store.ListBookings(ctx, persistence.BookingFilter{OwnerID: "U2"})
		if err != nil {
			t.Fatalf("ListBookings returned error: %v", err)
		}
		if len(got) != 1 || got[0].RoomID != "raven" {
			t.Fatalf("unexpected result %+v", got)
		}
	})

	t.Run("by date", func(t *testing.T) {
		got, err := store.ListBookings(ctx, persistence.BookingFilter{Date: &day1})
		if err != nil {
			t.Fatalf("ListBookings returned error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 bookings on day 1, got %d", len(got))
		}
	})

	t.Run("date in non-UTC location", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*3600)
		late := time.Date(2024, time.November, 23, 8, 0, 0, 0, loc)
		// 23 Nov 08:00 +10:00 is 22 Nov 22:00 UTC, so it belongs to the
		// local 23rd, not the UTC 22nd.
		if _, err := store.AddBooking(ctx, testBooking("raven", late, "U3")); err != nil {
			t.Fatalf("AddBooking returned error: %v", err)
		}
		localDay := time.Date(2024, time.November, 23, 0, 0, 0, 0, loc)
		got, err := store.ListBookings(ctx, persistence.BookingFilter{Date: &localDay})
		if err != nil {
			t.Fatalf("ListBookings returned error: %v", err)
		}
		if len(got) != 1 || got[0].OwnerID != "U3" {
			t.Fatalf("unexpected result %+v", got)
		}
	})
}

func TestOrderingAndPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.db")
	ctx := context.Background()

	store, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	later := time.Date(2024, time.November, 21, 15, 0, 0, 0, time.UTC)
	earlier := time.Date(2024, time.November, 21, 9, 0, 0, 0, time.UTC)
	if _, err := store.AddBooking(ctx, testBooking("nest", later, "U1")); err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}
	if _, err := store.AddBooking(ctx, testBooking("nest", earlier, "U1")); err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := Open(path, time.UTC)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bookings after reopen, got %d", len(got))
	}
	if !got[0].Start.Equal(earlier) {
		t.Fatalf("expected earliest first, got %+v", got[0])
	}
}

func TestPing(t *testing.T) {
	store := openTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestWallClockSurvivesRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	store := openTestStoreIn(t, loc)
	ctx := context.Background()
	start := time.Date(2024, time.November, 21, 14, 0, 0, 0, loc)

	if _, err := store.AddBooking(ctx, testBooking("nest", start, "U1")); err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}
	got, err := store.ListBookings(ctx, persistence.BookingFilter{})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(got))
	}
	if !got[0].Start.Equal(start) {
		t.Fatalf("start instant changed: %v", got[0].Start)
	}
	// A 2pm booking must still read as 2pm, not as its UTC equivalent.
	if got[0].Start.Hour() != 14 {
		t.Fatalf("expected wall clock 14:00, got %v", got[0].Start)
	}
}

func TestDateFilterOnShortDSTDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("LoadLocation returned error: %v", err)
	}
	store := openTestStoreIn(t, loc)
	ctx := context.Background()

	// 30 March 2025 is a 23-hour day in London. A booking just after the
	// following midnight must not leak into the 30th's listing.
	onDay := time.Date(2025, time.March, 30, 22, 0, 0, 0, loc)
	nextDay := time.Date(2025, time.March, 31, 0, 30, 0, 0, loc)
	if _, err := store.AddBooking(ctx, testBooking("nest", onDay, "U1")); err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}
	if _, err := store.AddBooking(ctx, testBooking("nest", nextDay, "U2")); err != nil {
		t.Fatalf("AddBooking returned error: %v", err)
	}

	day := time.Date(2025, time.March, 30, 0, 0, 0, 0, loc)
	got, err := store.ListBookings(ctx, persistence.BookingFilter{Date: &day})
	if err != nil {
		t.Fatalf("ListBookings returned error: %v", err)
	}
	if len(got) != 1 || got[0].OwnerID != "U1" {
		t.Fatalf("unexpected result %+v", got)
	}
}
