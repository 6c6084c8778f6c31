// Package interpreter turns mention text into booking operations and
// user-facing replies. Every parse or domain failure is recovered here into
// actionable text; nothing escapes as an error.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/application"
	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/dateparse"
	"github.com/MJEvans3/roombookingslackbot/internal/logging"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
	"github.com/MJEvans3/roombookingslackbot/internal/recurrence"
)

var mentionRe = regexp.MustCompile(`<@[A-Z0-9]+>\s*`)

// Interpreter routes command text to the booking service.
type Interpreter struct {
	service *application.BookingService
	now     func() time.Time
	logger  *slog.Logger
}

// New constructs an interpreter. The now function anchors relative dates
// like "tomorrow".
func New(service *application.BookingService, now func() time.Time, logger *slog.Logger) *Interpreter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{service: service, now: now, logger: logger}
}

// Handle interprets one message from a user and returns the reply text.
func (i *Interpreter) Handle(ctx context.Context, userID, text string) string {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = i.logger
	}

	cleaned := strings.TrimSpace(mentionRe.ReplaceAllString(text, ""))
	verb, rest := splitVerb(cleaned)
	logger.InfoContext(ctx, "handling command", "user_id", userID, "verb", verb)

	switch verb {
	case "book recurring":
		return i.bookRecurring(ctx, userID, rest)
	case "book a room", "book":
		if strings.TrimSpace(rest) == "" {
			return bookUsage
		}
		return i.book(ctx, userID, rest)
	case "list rooms":
		return formatRooms(i.service.ListRooms())
	case "list available":
		return i.listAvailable(ctx, rest)
	case "my bookings":
		return i.myBookings(ctx, userID)
	case "cancel all":
		return i.cancel(ctx, userID, application.CancelParams{OwnerID: userID, All: true})
	case "cancel":
		return i.cancelIndices(ctx, userID, rest)
	case "calendar":
		return i.calendar(ctx, rest)
	default:
		return helpMessage
	}
}

// splitVerb peels the longest known command prefix off the text.
func splitVerb(text string) (string, string) {
	lower := strings.ToLower(text)
	prefixes := []string{
		"book recurring",
		"book a room",
		"list rooms",
		"list available",
		"my bookings",
		"cancel all",
		"cancel",
		"calendar",
		"book",
	}
	for _, prefix := range prefixes {
		if lower == prefix {
			return prefix, ""
		}
		if strings.HasPrefix(lower, prefix+" ") || strings.HasPrefix(lower, prefix+",") {
			return prefix, strings.TrimLeft(text[len(prefix):], " ,")
		}
	}
	return "", text
}

func (i *Interpreter) book(ctx context.Context, userID, rest string) string {
	fields := splitFields(rest)
	if len(fields) != 7 {
		return fmt.Sprintf("I couldn't make sense of that booking: I expected 7 comma-separated fields but got %d.\n%s", len(fields), bookUsage)
	}

	reference := i.now()

	date, err := dateparse.ParseDate(fields[1], reference)
	if err != nil {
		return dateProblem("date", fields[1], err)
	}
	clock, err := dateparse.ParseTime(fields[2])
	if err != nil {
		return timeProblem(fields[2])
	}
	minutes, err := dateparse.ParseDuration(fields[3])
	if err != nil {
		return durationProblem(fields[3])
	}
	category, err := persistence.ParseCategory(fields[5])
	if err != nil {
		return categoryProblem(fields[5])
	}

	result, err := i.service.Book(ctx, application.BookParams{
		OwnerID:         userID,
		Room:            fields[0],
		Start:           clock.On(date),
		DurationMinutes: minutes,
		EventDetails:    fields[4],
		Category:        category,
		ContactName:     fields[6],
	})
	if err != nil {
		return i.explain(err)
	}
	if !result.Booked() {
		return formatConflict(result.Room, result.Conflict)
	}
	return formatBooked(result)
}

func (i *Interpreter) bookRecurring(ctx context.Context, userID, rest string) string {
	fields := splitFields(rest)
	if len(fields) != 9 {
		return fmt.Sprintf("I couldn't make sense of that recurring booking: I expected 9 comma-separated fields but got %d.\n%s", len(fields), recurringUsage)
	}

	reference := i.now()

	startDate, err := dateparse.ParseDate(fields[1], reference)
	if err != nil {
		return dateProblem("start date", fields[1], err)
	}
	endDate, err := dateparse.ParseDate(fields[2], reference)
	if err != nil {
		return dateProblem("end date", fields[2], err)
	}
	frequency, err := recurrence.ParseFrequency(fields[3])
	if err != nil {
		return fmt.Sprintf("I don't recognise %q as a frequency. Try daily, weekly, biweekly, or monthly.", fields[3])
	}
	clock, err := dateparse.ParseTime(fields[4])
	if err != nil {
		return timeProblem(fields[4])
	}
	minutes, err := dateparse.ParseDuration(fields[5])
	if err != nil {
		return durationProblem(fields[5])
	}
	category, err := persistence.ParseCategory(fields[7])
	if err != nil {
		return categoryProblem(fields[7])
	}

	result, err := i.service.BookRecurring(ctx, application.RecurringParams{
		OwnerID:         userID,
		Room:            fields[0],
		Dates:           recurrence.Spec{Start: startDate, End: endDate, Frequency: frequency},
		TimeOfDay:       clock,
		DurationMinutes: minutes,
		EventDetails:    fields[6],
		Category:        category,
		ContactName:     fields[8],
	})
	if err != nil {
		return i.explain(err)
	}
	return formatRecurring(result)
}

func (i *Interpreter) listAvailable(ctx context.Context, rest string) string {
	reference := i.now()
	params := application.AvailabilityParams{Date: reference}

	fields := splitFields(rest)
	if len(fields) > 0 && fields[0] != "" {
		date, err := dateparse.ParseDate(fields[0], reference)
		if err != nil {
			return dateProblem("date", fields[0], err)
		}
		params.Date = date
	}
	if len(fields) > 1 {
		clock, err := dateparse.ParseTime(fields[1])
		if err != nil {
			return timeProblem(fields[1])
		}
		params.At = &clock
	}
	if len(fields) > 2 {
		minutes, err := dateparse.ParseDuration(fields[2])
		if err != nil {
			return durationProblem(fields[2])
		}
		params.DurationMinutes = minutes
	}
	if len(fields) > 3 {
		return "I couldn't make sense of that availability query.\n" + availableUsage
	}

	availability, err := i.service.ListAvailable(ctx, params)
	if err != nil {
		return i.explain(err)
	}
	return formatAvailability(params, availability)
}

func (i *Interpreter) myBookings(ctx context.Context, userID string) string {
	bookings, err := i.service.MyBookings(ctx, userID)
	if err != nil {
		return i.explain(err)
	}
	return formatMyBookings(bookings, i.roomName)
}

func (i *Interpreter) cancelIndices(ctx context.Context, userID, rest string) string {
	fields := splitFields(rest)
	if len(fields) == 0 || fields[0] == "" {
		return "Tell me which bookings to cancel, like `cancel 2` or `cancel 1, 3`. Use `my bookings` first to see the numbers, or `cancel all`."
	}

	var indices []int
	for _, field := range fields {
		index, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Sprintf("%q isn't a booking number. Use `my bookings` to see the numbered list, then try `cancel 2`.", field)
		}
		indices = append(indices, index)
	}

	return i.cancel(ctx, userID, application.CancelParams{OwnerID: userID, Indices: indices})
}

func (i *Interpreter) cancel(ctx context.Context, userID string, params application.CancelParams) string {
	result, err := i.service.Cancel(ctx, params)
	if err != nil {
		return i.explain(err)
	}
	return formatCancelled(result, i.roomName)
}

// roomName resolves a room identifier to its display name, falling back to
// the identifier for rooms that have left the catalog.
func (i *Interpreter) roomName(roomID string) string {
	if room, err := i.service.Rooms().Lookup(roomID); err == nil {
		return "*" + room.Name + "*"
	}
	return roomID
}

func (i *Interpreter) calendar(ctx context.Context, rest string) string {
	reference := i.now()
	date := reference
	if trimmed := strings.TrimSpace(rest); trimmed != "" {
		parsed, err := dateparse.ParseDate(trimmed, reference)
		if err != nil {
			return dateProblem("date", trimmed, err)
		}
		date = parsed
	}

	view, err := i.service.CalendarView(ctx, date)
	if err != nil {
		return i.explain(err)
	}
	return formatCalendar(date, view)
}

// explain converts service errors into user-facing replies.
func (i *Interpreter) explain(err error) string {
	var vErr *application.ValidationError
	switch {
	case errors.Is(err, catalog.ErrUnknownRoom):
		return fmt.Sprintf("I don't know that room. %s", formatRoomNames(i.service.ListRooms()))
	case errors.Is(err, application.ErrNoActiveListing):
		return "I don't have a recent bookings list for you, so I can't match those numbers. Run `my bookings` first, then cancel by number."
	case errors.Is(err, recurrence.ErrInvalidRange):
		return "That date range doesn't work: the end date must not be before the start date, and the series can't run longer than a year."
	case errors.Is(err, recurrence.ErrUnknownFrequency):
		return "I don't recognise that frequency. Try daily, weekly, biweekly, or monthly."
	case errors.As(err, &vErr):
		return formatValidation(vErr)
	default:
		return "Something went wrong handling that request. Please try again."
	}
}

func splitFields(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

func dateProblem(field, value string, err error) string {
	if errors.Is(err, dateparse.ErrAmbiguousDate) {
		return fmt.Sprintf("The %s %q is ambiguous. Give me a full date such as `19/12` or `3rd of March`.", field, value)
	}
	return fmt.Sprintf("I couldn't read the %s %q. Try `tomorrow`, `19/12`, or `3rd of March`.", field, value)
}

func timeProblem(value string) string {
	return fmt.Sprintf("I couldn't read the time %q. Try `2pm`, `2:30pm`, or `14:00`.", value)
}

func durationProblem(value string) string {
	return fmt.Sprintf("I couldn't read the duration %q. Try `1 hour`, `45 minutes`, or `2h 30m`.", value)
}

func categoryProblem(value string) string {
	return fmt.Sprintf("The category %q isn't one I know. Use `internal` or `client`.", value)
}
