package interpreter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/application"
	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
)

const (
	dateLayout = "January 2, 2006"
	timeLayout = "3:04 PM"
)

const helpMessage = "Here's what I can do:\n" +
	"• `book <room>, <date>, <time>, <duration>, <event details>, <internal|client>, <contact name>`\n" +
	"• `book recurring <room>, <start date>, <end date>, <frequency>, <time>, <duration>, <event details>, <internal|client>, <contact name>`\n" +
	"• `list rooms`\n" +
	"• `list available [date][, time][, duration]`\n" +
	"• `calendar [date]`\n" +
	"• `my bookings`\n" +
	"• `cancel <number>[, <number>...]` or `cancel all`"

const bookUsage = "To book a room, give me seven comma-separated fields:\n" +
	"`book <room>, <date>, <time>, <duration>, <event details>, <internal|client>, <contact name>`\n" +
	"For example: `book nest, tomorrow, 2pm, 1 hour, Quarterly review, internal, Priya`"

const recurringUsage = "To book a recurring series, give me nine comma-separated fields:\n" +
	"`book recurring <room>, <start date>, <end date>, <frequency>, <time>, <duration>, <event details>, <internal|client>, <contact name>`\n" +
	"For example: `book recurring raven, 2/12, 20/12, weekly, 10am, 30 minutes, Standup, internal, Noor`"

const availableUsage = "Try `list available`, `list available tomorrow`, or `list available tomorrow, 2pm, 1 hour`."

func formatRooms(rooms []catalog.Room) string {
	var b strings.Builder
	b.WriteString("These are the rooms I know about:\n")
	for _, room := range rooms {
		fmt.Fprintf(&b, "• *%s* (seats %d)\n", room.Name, room.Capacity)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRoomNames(rooms []catalog.Room) string {
	names := make([]string, 0, len(rooms))
	for _, room := range rooms {
		names = append(names, room.Name)
	}
	sort.Strings(names)
	return "The rooms are: " + strings.Join(names, ", ") + "."
}

func formatBooked(result application.BookResult) string {
	b := result.Booking
	return fmt.Sprintf("Done! *%s* is booked for *%s* on %s from %s to %s (%s, contact %s).",
		result.Room.Name,
		b.EventDetails,
		b.Start.Format(dateLayout),
		b.Start.Format(timeLayout),
		b.End().Format(timeLayout),
		b.Category,
		b.ContactName,
	)
}

func formatConflict(room catalog.Room, conflict *application.ConflictInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sorry, *%s* is already taken then:\n", room.Name)
	for _, existing := range conflict.Existing {
		fmt.Fprintf(&b, "• %s to %s: %s\n",
			existing.Start.Format(timeLayout),
			existing.End().Format(timeLayout),
			existing.EventDetails,
		)
	}
	if len(conflict.Suggestions) == 0 {
		b.WriteString("I couldn't find a free alternative that day.")
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString("How about one of these instead?\n")
	for _, s := range conflict.Suggestions {
		fmt.Fprintf(&b, "• *%s* from %s to %s\n",
			s.Room.Name,
			s.Start.Format(timeLayout),
			s.End.Format(timeLayout),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRecurring(result application.RecurringResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recurring booking for *%s*: %d of %d dates booked.\n",
		result.Room.Name, result.Booked, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		day := outcome.Start.Format(dateLayout)
		if outcome.Booking != nil {
			fmt.Fprintf(&b, "• %s at %s: booked\n", day, outcome.Start.Format(timeLayout))
			continue
		}
		fmt.Fprintf(&b, "• %s at %s: conflict", day, outcome.Start.Format(timeLayout))
		if len(outcome.Conflict.Suggestions) > 0 {
			s := outcome.Conflict.Suggestions[0]
			fmt.Fprintf(&b, ", try *%s* at %s", s.Room.Name, s.Start.Format(timeLayout))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAvailability(params application.AvailabilityParams, availability []application.RoomAvailability) string {
	day := params.Date.Format(dateLayout)
	if params.At != nil {
		if len(availability) == 0 {
			return fmt.Sprintf("No rooms are free at %s on %s.", params.At.On(params.Date).Format(timeLayout), day)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Rooms free at %s on %s:\n", params.At.On(params.Date).Format(timeLayout), day)
		for _, avail := range availability {
			fmt.Fprintf(&b, "• *%s* (seats %d)\n", avail.Room.Name, avail.Room.Capacity)
		}
		return strings.TrimRight(b.String(), "\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Availability for %s:\n", day)
	for _, avail := range availability {
		if len(avail.Windows) == 0 {
			fmt.Fprintf(&b, "• *%s*: fully booked\n", avail.Room.Name)
			continue
		}
		spans := make([]string, 0, len(avail.Windows))
		for _, w := range avail.Windows {
			spans = append(spans, fmt.Sprintf("%s to %s", w.Start.Format(timeLayout), w.End.Format(timeLayout)))
		}
		fmt.Fprintf(&b, "• *%s*: %s\n", avail.Room.Name, strings.Join(spans, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMyBookings(bookings []persistence.Booking, roomName func(string) string) string {
	if len(bookings) == 0 {
		return "You have no upcoming bookings."
	}
	var b strings.Builder
	b.WriteString("Your upcoming bookings:\n")
	for i, booking := range bookings {
		fmt.Fprintf(&b, "%d. %s from %s to %s in %s: %s\n",
			i+1,
			booking.Start.Format(dateLayout),
			booking.Start.Format(timeLayout),
			booking.End().Format(timeLayout),
			roomName(booking.RoomID),
			booking.EventDetails,
		)
	}
	b.WriteString("Cancel one with `cancel <number>`, or `cancel all`.")
	return b.String()
}

func formatCancelled(result application.CancelResult, roomName func(string) string) string {
	if len(result.Outcomes) == 0 {
		return "You had no bookings to cancel."
	}
	var b strings.Builder
	for _, outcome := range result.Outcomes {
		switch {
		case outcome.Booking != nil:
			fmt.Fprintf(&b, "• Cancelled %s on %s at %s in %s\n",
				outcome.Booking.EventDetails,
				outcome.Booking.Start.Format(dateLayout),
				outcome.Booking.Start.Format(timeLayout),
				roomName(outcome.Booking.RoomID),
			)
		case outcome.Err != nil:
			fmt.Fprintf(&b, "• Couldn't cancel number %d: it isn't on your list\n", outcome.Index)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCalendar(date time.Time, view []application.RoomSchedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Calendar for %s:\n", date.Format(dateLayout))
	for _, schedule := range view {
		if len(schedule.Bookings) == 0 {
			fmt.Fprintf(&b, "*%s*: free all day\n", schedule.Room.Name)
			continue
		}
		fmt.Fprintf(&b, "*%s*:\n", schedule.Room.Name)
		for _, booking := range schedule.Bookings {
			fmt.Fprintf(&b, "• %s to %s: %s (%s)\n",
				booking.Start.Format(timeLayout),
				booking.End().Format(timeLayout),
				booking.EventDetails,
				booking.Category,
			)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatValidation(vErr *application.ValidationError) string {
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var b strings.Builder
	b.WriteString("A few fields need fixing:\n")
	for _, field := range fields {
		fmt.Fprintf(&b, "• %s: %s\n", field, vErr.FieldErrors[field])
	}
	return strings.TrimRight(b.String(), "\n")
}
