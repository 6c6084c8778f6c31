package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
	"github.com/MJEvans3/roombookingslackbot/internal/recurrence"
	"github.com/MJEvans3/roombookingslackbot/internal/scheduler"
)

// BookingServiceParams bundles the dependencies of a BookingService.
type BookingServiceParams struct {
	Rooms    *catalog.Catalog
	Bookings persistence.BookingRepository
	Now      func() time.Time
	Logger   *slog.Logger
	// DayStartHour and DayEndHour bound the business day used for
	// availability and suggestions. Zero values default to 9 and 17.
	DayStartHour int
	DayEndHour   int
	// MaxSuggestions caps conflict alternatives; zero means 3.
	MaxSuggestions int
	// ListingTTL bounds how long a bookings listing stays valid for
	// cancel-by-index; zero means 5 minutes.
	ListingTTL time.Duration
}

// BookingService orchestrates validation, conflict checking, and persistence
// for room bookings.
type BookingService struct {
	rooms          *catalog.Catalog
	bookings       persistence.BookingRepository
	now            func() time.Time
	logger         *slog.Logger
	dayStartHour   int
	dayEndHour     int
	maxSuggestions int
	listings       *listingCache

	// mu serialises the conflict check against the commit so two requests
	// for the same slot cannot both pass the check.
	mu sync.Mutex
}

// NewBookingService constructs a booking service with the provided dependencies.
func NewBookingService(params BookingServiceParams) *BookingService {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	dayStart := params.DayStartHour
	dayEnd := params.DayEndHour
	if dayStart == 0 && dayEnd == 0 {
		dayStart, dayEnd = 9, 17
	}
	return &BookingService{
		rooms:          params.Rooms,
		bookings:       params.Bookings,
		now:            now,
		logger:         defaultLogger(params.Logger),
		dayStartHour:   dayStart,
		dayEndHour:     dayEnd,
		maxSuggestions: params.MaxSuggestions,
		listings:       newListingCache(params.ListingTTL, now),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, operation, attrs...)
}

// Book validates a request, checks it against existing bookings, and commits
// it when the slot is free. A conflict is reported in the result together
// with ranked alternatives, not as an error.
func (s *BookingService) Book(ctx context.Context, params BookParams) (result BookResult, err error) {
	logger := s.loggerWith(ctx, "Book",
		"owner_id", params.OwnerID,
		"room", params.Room,
	)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to book room", "error", err, "error_kind", ErrorKind(err))
		case result.Conflict != nil:
			logger.InfoContext(ctx, "booking conflicts", "conflicts", len(result.Conflict.Existing))
		default:
			logger.With("booking_id", result.Booking.ID).InfoContext(ctx, "room booked")
		}
	}()

	if vErr := validateBookParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	room, err := s.rooms.Lookup(params.Room)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err = s.bookLocked(ctx, room, params)
	if err == nil && result.Booked() {
		s.listings.Invalidate()
	}
	return
}

// bookLocked runs the read-check-commit sequence. Callers must hold s.mu.
func (s *BookingService) bookLocked(ctx context.Context, room catalog.Room, params BookParams) (BookResult, error) {
	sameDay, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{Date: &params.Start})
	if err != nil {
		return BookResult{}, fmt.Errorf("list bookings: %w", err)
	}

	duration := time.Duration(params.DurationMinutes) * time.Minute
	candidate := scheduler.Booking{
		RoomID: room.ID,
		Start:  params.Start,
		End:    params.Start.Add(duration),
	}

	existing := toSchedulerBookings(sameDay)
	conflicts := scheduler.DetectConflicts(existing, candidate)
	if len(conflicts) > 0 {
		info := &ConflictInfo{Existing: bookingsByConflict(sameDay, conflicts)}
		dayStart, dayEnd := s.businessDay(params.Start)
		alternatives := scheduler.SuggestAlternatives(
			scheduler.Request{RoomID: room.ID, Start: params.Start, Duration: duration},
			toSchedulerRooms(s.rooms.Rooms()),
			existing,
			scheduler.SuggestOptions{DayStart: dayStart, DayEnd: dayEnd, MaxSuggestions: s.maxSuggestions},
		)
		for _, alt := range alternatives {
			info.Suggestions = append(info.Suggestions, Suggestion{
				Room:     catalog.Room{ID: alt.Room.ID, Name: alt.Room.Name, Capacity: alt.Room.Capacity},
				Start:    alt.Start,
				End:      alt.End,
				SameRoom: alt.SameRoom,
			})
		}
		return BookResult{Room: room, Conflict: info}, nil
	}

	booking := persistence.Booking{
		RoomID:          room.ID,
		Start:           params.Start,
		DurationMinutes: params.DurationMinutes,
		EventDetails:    strings.TrimSpace(params.EventDetails),
		Category:        params.Category,
		ContactName:     strings.TrimSpace(params.ContactName),
		OwnerID:         params.OwnerID,
		CreatedAt:       s.now(),
	}
	id, err := s.bookings.AddBooking(ctx, booking)
	if err != nil {
		return BookResult{}, fmt.Errorf("add booking: %w", err)
	}
	booking.ID = id
	return BookResult{Room: room, Booking: booking}, nil
}

// BookRecurring expands a recurring request and books each occurrence
// independently. Conflicting occurrences are skipped and reported; the batch
// never aborts.
func (s *BookingService) BookRecurring(ctx context.Context, params RecurringParams) (result RecurringResult, err error) {
	logger := s.loggerWith(ctx, "BookRecurring",
		"owner_id", params.OwnerID,
		"room", params.Room,
		"frequency", params.Dates.Frequency.String(),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to book recurring series", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "recurring series processed",
			"occurrences", len(result.Outcomes), "booked", result.Booked)
	}()

	base := params
	if vErr := validateBookParams(BookParams{
		OwnerID:         base.OwnerID,
		Room:            base.Room,
		Start:           base.Dates.Start,
		DurationMinutes: base.DurationMinutes,
		EventDetails:    base.EventDetails,
		Category:        base.Category,
		ContactName:     base.ContactName,
	}); vErr.HasErrors() {
		err = vErr
		return
	}

	room, err := s.rooms.Lookup(params.Room)
	if err != nil {
		return
	}

	dates, err := recurrence.Expand(params.Dates)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result.Room = room
	for _, date := range dates {
		start := params.TimeOfDay.On(date)
		occurrence, bookErr := s.bookLocked(ctx, room, BookParams{
			OwnerID:         params.OwnerID,
			Room:            params.Room,
			Start:           start,
			DurationMinutes: params.DurationMinutes,
			EventDetails:    params.EventDetails,
			Category:        params.Category,
			ContactName:     params.ContactName,
		})
		if bookErr != nil {
			err = bookErr
			return
		}
		outcome := OccurrenceOutcome{Start: start}
		if occurrence.Booked() {
			booked := occurrence.Booking
			outcome.Booking = &booked
			result.Booked++
		} else {
			outcome.Conflict = occurrence.Conflict
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if result.Booked > 0 {
		s.listings.Invalidate()
	}
	return
}

// Rooms exposes the room catalog.
func (s *BookingService) Rooms() *catalog.Catalog {
	return s.rooms
}

// ListRooms returns the room catalog sorted by name.
func (s *BookingService) ListRooms() []catalog.Room {
	return s.rooms.Rooms()
}

// ListAvailable reports free time per room on a date. Without a clock the
// whole business day's free windows are returned for every room; with a
// clock only rooms free for the requested interval appear, each with that
// interval as its single window.
func (s *BookingService) ListAvailable(ctx context.Context, params AvailabilityParams) ([]RoomAvailability, error) {
	sameDay, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{Date: &params.Date})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	byRoom := make(map[string][]scheduler.Booking)
	for _, b := range toSchedulerBookings(sameDay) {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	var out []RoomAvailability
	if params.At == nil {
		dayStart, dayEnd := s.businessDay(params.Date)
		for _, room := range s.rooms.Rooms() {
			windows := scheduler.FreeWindows(byRoom[room.ID], dayStart, dayEnd)
			out = append(out, RoomAvailability{Room: room, Windows: windows})
		}
		return out, nil
	}

	duration := time.Duration(params.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = time.Hour
	}
	start := params.At.On(params.Date)
	end := start.Add(duration)
	for _, room := range s.rooms.Rooms() {
		candidate := scheduler.Booking{RoomID: room.ID, Start: start, End: end}
		if len(scheduler.DetectConflicts(byRoom[room.ID], candidate)) > 0 {
			continue
		}
		out = append(out, RoomAvailability{
			Room:    room,
			Windows: []scheduler.Window{{Start: start, End: end}},
		})
	}
	return out, nil
}

// CalendarView returns every room's bookings on a date, including rooms with
// none.
func (s *BookingService) CalendarView(ctx context.Context, date time.Time) ([]RoomSchedule, error) {
	sameDay, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{Date: &date})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	byRoom := make(map[string][]persistence.Booking)
	for _, b := range sameDay {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	var out []RoomSchedule
	for _, room := range s.rooms.Rooms() {
		out = append(out, RoomSchedule{Room: room, Bookings: byRoom[room.ID]})
	}
	return out, nil
}

// MyBookings returns the owner's upcoming bookings sorted by start time and
// records the listing so a subsequent cancel-by-index resolves against it.
func (s *BookingService) MyBookings(ctx context.Context, ownerID string) ([]persistence.Booking, error) {
	all, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	now := s.now()
	var upcoming []persistence.Booking
	for _, b := range all {
		if b.End().After(now) {
			upcoming = append(upcoming, b)
		}
	}

	s.listings.Store(ownerID, upcoming)
	return upcoming, nil
}

// Cancel removes bookings for the owner. With All set every upcoming booking
// goes; otherwise the 1-based indices refer to the owner's most recent
// listing. Only the owner's bookings are ever touched.
func (s *BookingService) Cancel(ctx context.Context, params CancelParams) (result CancelResult, err error) {
	logger := s.loggerWith(ctx, "Cancel",
		"owner_id", params.OwnerID,
		"all", params.All,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "bookings cancelled", "removed", result.Removed)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var listing []persistence.Booking
	if params.All {
		listing, err = s.upcomingLocked(ctx, params.OwnerID)
		if err != nil {
			return
		}
		params.Indices = params.Indices[:0]
		for i := range listing {
			params.Indices = append(params.Indices, i+1)
		}
	} else {
		var ok bool
		listing, ok = s.listings.Get(params.OwnerID)
		if !ok {
			err = ErrNoActiveListing
			return
		}
	}

	removed := false
	for _, index := range params.Indices {
		outcome := CancelOutcome{Index: index}
		if index < 1 || index > len(listing) {
			outcome.Err = fmt.Errorf("%w: %d", ErrInvalidIndex, index)
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}
		booking := listing[index-1]
		if removeErr := s.bookings.RemoveBooking(ctx, booking.ID); removeErr != nil {
			if errors.Is(removeErr, persistence.ErrNotFound) {
				outcome.Err = fmt.Errorf("%w: booking %d", ErrNotFound, booking.ID)
			} else {
				err = fmt.Errorf("remove booking %d: %w", booking.ID, removeErr)
				return
			}
		} else {
			outcome.Booking = &booking
			result.Removed++
			removed = true
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if removed || params.All {
		s.listings.Invalidate()
	}
	return
}

// upcomingLocked lists the owner's upcoming bookings without touching the
// listing cache. Callers must hold s.mu.
func (s *BookingService) upcomingLocked(ctx context.Context, ownerID string) ([]persistence.Booking, error) {
	all, err := s.bookings.ListBookings(ctx, persistence.BookingFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	now := s.now()
	var upcoming []persistence.Booking
	for _, b := range all {
		if b.End().After(now) {
			upcoming = append(upcoming, b)
		}
	}
	return upcoming, nil
}

func (s *BookingService) businessDay(date time.Time) (time.Time, time.Time) {
	loc := date.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), s.dayStartHour, 0, 0, 0, loc)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), s.dayEndHour, 0, 0, 0, loc)
	return dayStart, dayEnd
}

func validateBookParams(params BookParams) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(params.OwnerID) == "" {
		vErr.add("owner", "owner is required")
	}
	if strings.TrimSpace(params.Room) == "" {
		vErr.add("room", "room is required")
	}
	if params.Start.IsZero() {
		vErr.add("start", "start time is required")
	}
	if params.DurationMinutes <= 0 {
		vErr.add("duration", "duration must be positive")
	}
	if strings.TrimSpace(params.EventDetails) == "" {
		vErr.add("event_details", "event details are required")
	}
	if params.Category != persistence.CategoryInternal && params.Category != persistence.CategoryClient {
		vErr.add("category", "category must be internal or client")
	}
	if strings.TrimSpace(params.ContactName) == "" {
		vErr.add("contact", "contact name is required")
	}
	return vErr
}

func toSchedulerBookings(bookings []persistence.Booking) []scheduler.Booking {
	out := make([]scheduler.Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, scheduler.Booking{ID: b.ID, RoomID: b.RoomID, Start: b.Start, End: b.End()})
	}
	return out
}

func toSchedulerRooms(rooms []catalog.Room) []scheduler.Room {
	out := make([]scheduler.Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, scheduler.Room{ID: r.ID, Name: r.Name, Capacity: r.Capacity})
	}
	return out
}

func bookingsByConflict(sameDay []persistence.Booking, conflicts []scheduler.Conflict) []persistence.Booking {
	byID := make(map[int64]persistence.Booking, len(sameDay))
	for _, b := range sameDay {
		byID[b.ID] = b
	}
	out := make([]persistence.Booking, 0, len(conflicts))
	for _, c := range conflicts {
		if b, ok := byID[c.WithBookingID]; ok {
			out = append(out, b)
		}
	}
	return out
}
