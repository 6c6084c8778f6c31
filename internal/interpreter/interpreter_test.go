package interpreter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJEvans3/roombookingslackbot/internal/application"
	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/testfixtures"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *testfixtures.BookingStore, *testfixtures.Clock) {
	t.Helper()
	store := testfixtures.NewBookingStore()
	clock := testfixtures.NewClock(time.Time{})
	svc := application.NewBookingService(application.BookingServiceParams{
		Rooms:    catalog.Default(),
		Bookings: store,
		Now:      clock.NowFunc(),
	})
	return New(svc, clock.NowFunc(), nil), store, clock
}

func TestHandleDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown text yields help", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "make me a sandwich")
		assert.Contains(t, reply, "Here's what I can do")
	})

	t.Run("mention prefix is stripped", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "<@U0BOT> list rooms")
		assert.Contains(t, reply, "The Nest")
	})

	t.Run("book a room shows usage", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book a room")
		assert.Contains(t, reply, "seven comma-separated fields")
	})

	t.Run("bare book shows usage", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book")
		assert.Contains(t, reply, "seven comma-separated fields")
	})
}

func TestHandleBook(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		interp, store, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, tomorrow, 2pm, 1 hour, Quarterly review, internal, Priya")
		assert.Contains(t, reply, "The Nest")
		assert.Contains(t, reply, "November 22, 2024")
		assert.Contains(t, reply, "2:00 PM")
		assert.Contains(t, reply, "3:00 PM")
		assert.Equal(t, 1, store.Len())
	})

	t.Run("wrong field count", func(t *testing.T) {
		interp, store, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, tomorrow, 2pm")
		assert.Contains(t, reply, "expected 7 comma-separated fields but got 3")
		assert.Equal(t, 0, store.Len())
	})

	t.Run("unreadable date", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, whenever, 2pm, 1 hour, Review, internal, Priya")
		assert.Contains(t, reply, `couldn't read the date "whenever"`)
	})

	t.Run("ambiguous date", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, march, 2pm, 1 hour, Review, internal, Priya")
		assert.Contains(t, reply, "ambiguous")
	})

	t.Run("unreadable time", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, tomorrow, 2:30, 1 hour, Review, internal, Priya")
		assert.Contains(t, reply, `couldn't read the time "2:30"`)
	})

	t.Run("unreadable duration", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, tomorrow, 2pm, a while, Review, internal, Priya")
		assert.Contains(t, reply, `couldn't read the duration "a while"`)
	})

	t.Run("unknown category", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book nest, tomorrow, 2pm, 1 hour, Review, external, Priya")
		assert.Contains(t, reply, "internal")
		assert.Contains(t, reply, "client")
	})

	t.Run("unknown room lists the catalog", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book boardroom, tomorrow, 2pm, 1 hour, Review, internal, Priya")
		assert.Contains(t, reply, "don't know that room")
		assert.Contains(t, reply, "Hummingbird")
	})

	t.Run("conflict offers alternatives", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		first := interp.Handle(ctx, "U1", "book nest, tomorrow, 2pm, 2 hours, Offsite planning, internal, Priya")
		require.Contains(t, first, "Done!")

		second := interp.Handle(ctx, "U2", "book nest, tomorrow, 3pm, 1 hour, Client call, client, Noor")
		assert.Contains(t, second, "already taken")
		assert.Contains(t, second, "Offsite planning")
		assert.Contains(t, second, "How about one of these")
	})
}

func TestHandleBookRecurring(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		interp, store, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1",
			"book recurring raven, 2/12, 16/12, weekly, 10am, 30 minutes, Standup, internal, Noor")
		assert.Contains(t, reply, "3 of 3 dates booked")
		assert.Equal(t, 3, store.Len())
	})

	t.Run("wrong field count", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "book recurring raven, 2/12, weekly")
		assert.Contains(t, reply, "expected 9 comma-separated fields but got 3")
	})

	t.Run("unknown frequency", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1",
			"book recurring raven, 2/12, 16/12, hourly, 10am, 30 minutes, Standup, internal, Noor")
		assert.Contains(t, reply, "daily, weekly, biweekly, or monthly")
	})

	t.Run("end before start", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1",
			"book recurring raven, 16/12, 2/12, weekly, 10am, 30 minutes, Standup, internal, Noor")
		assert.Contains(t, reply, "end date must not be before the start date")
	})

	t.Run("conflicting occurrence reported inline", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		blocked := interp.Handle(ctx, "U2", "book raven, 9/12, 10am, 30 minutes, One-off, internal, Priya")
		require.Contains(t, blocked, "Done!")

		reply := interp.Handle(ctx, "U1",
			"book recurring raven, 2/12, 16/12, weekly, 10am, 30 minutes, Standup, internal, Noor")
		assert.Contains(t, reply, "2 of 3 dates booked")
		assert.Contains(t, reply, "conflict")
	})
}

func TestHandleListing(t *testing.T) {
	ctx := context.Background()

	t.Run("list rooms", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "list rooms")
		for _, name := range []string{"The Nest", "The Treehouse", "The Lighthouse", "Raven", "Hummingbird"} {
			assert.Contains(t, reply, name)
		}
		assert.Contains(t, reply, "seats 30")
	})

	t.Run("list available whole day", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")

		reply := interp.Handle(ctx, "U1", "list available tomorrow")
		assert.Contains(t, reply, "Availability for November 22, 2024")
		assert.Contains(t, reply, "10:00 AM")
	})

	t.Run("list available at a time", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")

		reply := interp.Handle(ctx, "U1", "list available tomorrow, 10am, 1 hour")
		assert.Contains(t, reply, "Rooms free at 10:00 AM")
		assert.NotContains(t, reply, "The Nest")
		assert.Contains(t, reply, "Raven")
	})

	t.Run("calendar shows free rooms", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book raven, tomorrow, 11am, 1 hour, Interview, client, Sam")

		reply := interp.Handle(ctx, "U1", "calendar tomorrow")
		assert.Contains(t, reply, "Calendar for November 22, 2024")
		assert.Contains(t, reply, "Interview")
		assert.Contains(t, reply, "free all day")
	})

	t.Run("my bookings empty", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "my bookings")
		assert.Contains(t, reply, "no upcoming bookings")
	})

	t.Run("my bookings numbered", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")
		interp.Handle(ctx, "U1", "book raven, tomorrow, 11am, 1 hour, Interview, client, Sam")

		reply := interp.Handle(ctx, "U1", "my bookings")
		assert.Contains(t, reply, "1. November 22, 2024")
		assert.Contains(t, reply, "2. November 22, 2024")
		assert.Contains(t, reply, "Raven")
	})
}

func TestHandleCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("by number after listing", func(t *testing.T) {
		interp, store, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")
		interp.Handle(ctx, "U1", "book raven, tomorrow, 11am, 1 hour, Interview, client, Sam")
		interp.Handle(ctx, "U1", "my bookings")

		reply := interp.Handle(ctx, "U1", "cancel 2")
		assert.Contains(t, reply, "Cancelled Interview")
		assert.Equal(t, 1, store.Len())
	})

	t.Run("without listing", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "cancel 1")
		assert.Contains(t, reply, "Run `my bookings` first")
	})

	t.Run("bare cancel prompts", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "cancel")
		assert.Contains(t, reply, "cancel 2")
	})

	t.Run("non-numeric index", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "cancel that one")
		assert.Contains(t, reply, "isn't a booking number")
	})

	t.Run("cancel all", func(t *testing.T) {
		interp, store, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")
		interp.Handle(ctx, "U1", "book raven, tomorrow, 11am, 1 hour, Interview, client, Sam")

		reply := interp.Handle(ctx, "U1", "cancel all")
		assert.Contains(t, reply, "Cancelled Review")
		assert.Contains(t, reply, "Cancelled Interview")
		assert.Equal(t, 0, store.Len())
	})

	t.Run("cancel all with nothing booked", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		reply := interp.Handle(ctx, "U1", "cancel all")
		assert.Contains(t, reply, "no bookings to cancel")
	})

	t.Run("out of range number", func(t *testing.T) {
		interp, _, _ := newTestInterpreter(t)
		interp.Handle(ctx, "U1", "book nest, tomorrow, 10am, 1 hour, Review, internal, Priya")
		interp.Handle(ctx, "U1", "my bookings")

		reply := interp.Handle(ctx, "U1", "cancel 5")
		assert.Contains(t, reply, "Couldn't cancel number 5")
	})
}
