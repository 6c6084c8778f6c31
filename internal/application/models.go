package application

import (
	"time"

	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/dateparse"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
	"github.com/MJEvans3/roombookingslackbot/internal/recurrence"
	"github.com/MJEvans3/roombookingslackbot/internal/scheduler"
)

// BookParams describes a single booking request.
type BookParams struct {
	OwnerID         string
	Room            string
	Start           time.Time
	DurationMinutes int
	EventDetails    string
	Category        persistence.Category
	ContactName     string
}

// Suggestion is an alternative offered when a request conflicts.
type Suggestion struct {
	Room     catalog.Room
	Start    time.Time
	End      time.Time
	SameRoom bool
}

// ConflictInfo carries the bookings a request collided with and ranked
// alternatives.
type ConflictInfo struct {
	Existing    []persistence.Booking
	Suggestions []Suggestion
}

// BookResult reports the outcome of a booking attempt. Exactly one of
// Booking and Conflict is meaningful: a conflict is a normal outcome, not an
// error.
type BookResult struct {
	Room     catalog.Room
	Booking  persistence.Booking
	Conflict *ConflictInfo
}

// Booked reports whether the request was committed.
func (r BookResult) Booked() bool {
	return r.Conflict == nil
}

// RecurringParams describes a recurring booking request. Dates carries the
// date range and frequency; TimeOfDay positions each occurrence within its
// day.
type RecurringParams struct {
	OwnerID         string
	Room            string
	Dates           recurrence.Spec
	TimeOfDay       dateparse.Clock
	DurationMinutes int
	EventDetails    string
	Category        persistence.Category
	ContactName     string
}

// OccurrenceOutcome is the result of one date in a recurring series.
type OccurrenceOutcome struct {
	Start    time.Time
	Booking  *persistence.Booking
	Conflict *ConflictInfo
}

// RecurringResult reports per-occurrence outcomes of a recurring request.
type RecurringResult struct {
	Room     catalog.Room
	Outcomes []OccurrenceOutcome
	Booked   int
}

// AvailabilityParams narrows an availability query. When At is nil the whole
// business day is reported; otherwise rooms free for the interval starting at
// At are returned.
type AvailabilityParams struct {
	Date            time.Time
	At              *dateparse.Clock
	DurationMinutes int
}

// RoomAvailability is the free time of one room on one date.
type RoomAvailability struct {
	Room    catalog.Room
	Windows []scheduler.Window
}

// RoomSchedule is the booked time of one room on one date.
type RoomSchedule struct {
	Room     catalog.Room
	Bookings []persistence.Booking
}

// CancelParams selects bookings to cancel. Indices are 1-based positions in
// the owner's most recent listing; All cancels every upcoming booking.
type CancelParams struct {
	OwnerID string
	Indices []int
	All     bool
}

// CancelOutcome reports the fate of one requested index.
type CancelOutcome struct {
	Index   int
	Booking *persistence.Booking
	Err     error
}

// CancelResult reports per-index outcomes of a cancel request.
type CancelResult struct {
	Outcomes []CancelOutcome
	Removed  int
}
