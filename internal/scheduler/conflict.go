// Package scheduler holds the pure conflict-detection and suggestion logic.
// It operates on plain slices supplied by the caller and performs no I/O.
package scheduler

import (
	"sort"
	"time"
)

// Booking is the slice of a stored booking the conflict logic needs.
type Booking struct {
	ID     int64
	RoomID string
	Start  time.Time
	End    time.Time
}

// Room describes a bookable room.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// Conflict identifies an existing booking that overlaps a candidate interval.
type Conflict struct {
	WithBookingID int64
	RoomID        string
	Start         time.Time
	End           time.Time
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies bookings in the candidate's room that overlap
// the candidate interval. Results are ordered by existing start time.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict
	for _, b := range existing {
		if b.RoomID != candidate.RoomID || b.ID == candidate.ID {
			continue
		}
		if Overlaps(candidate.Start, candidate.End, b.Start, b.End) {
			conflicts = append(conflicts, Conflict{
				WithBookingID: b.ID,
				RoomID:        b.RoomID,
				Start:         b.Start,
				End:           b.End,
			})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Start.Equal(conflicts[j].Start) {
			return conflicts[i].WithBookingID < conflicts[j].WithBookingID
		}
		return conflicts[i].Start.Before(conflicts[j].Start)
	})
	return conflicts
}

// Window is a free span between bookings.
type Window struct {
	Start time.Time
	End   time.Time
}

// FreeWindows returns the gaps within [windowStart, windowEnd) left open by
// the supplied bookings. Overlapping busy intervals are merged first; the
// caller is expected to pass the bookings of a single room.
func FreeWindows(bookings []Booking, windowStart, windowEnd time.Time) []Window {
	busy := make([]Window, 0, len(bookings))
	for _, b := range bookings {
		if !Overlaps(b.Start, b.End, windowStart, windowEnd) {
			continue
		}
		busy = append(busy, Window{Start: b.Start, End: b.End})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := busy[:0]
	for _, interval := range busy {
		if n := len(merged); n > 0 && !interval.Start.After(merged[n-1].End) {
			if interval.End.After(merged[n-1].End) {
				merged[n-1].End = interval.End
			}
			continue
		}
		merged = append(merged, interval)
	}

	var free []Window
	cursor := windowStart
	for _, blk := range merged {
		if blk.Start.After(cursor) {
			end := blk.Start
			if end.After(windowEnd) {
				end = windowEnd
			}
			if end.After(cursor) {
				free = append(free, Window{Start: cursor, End: end})
			}
		}
		if blk.End.After(cursor) {
			cursor = blk.End
		}
	}
	if cursor.Before(windowEnd) {
		free = append(free, Window{Start: cursor, End: windowEnd})
	}
	return free
}

// Request describes the interval a user asked for.
type Request struct {
	RoomID      string
	Start       time.Time
	Duration    time.Duration
	MinCapacity int
}

// Suggestion is a non-conflicting alternative room and interval.
type Suggestion struct {
	Room     Room
	Start    time.Time
	End      time.Time
	SameRoom bool
}

// SuggestOptions bounds the suggestion search.
type SuggestOptions struct {
	// DayStart and DayEnd clamp same-room alternatives to business hours on
	// the requested date.
	DayStart time.Time
	DayEnd   time.Time
	// MaxSuggestions caps the result; zero means the default of 3.
	MaxSuggestions int
}

const defaultMaxSuggestions = 3

// SuggestAlternatives proposes substitutes for a conflicting request: the
// nearest free slots of equal duration in the same room, and other rooms of
// sufficient capacity that are free for the exact requested interval. Results
// are ranked by time distance from the requested start, then by capacity
// ascending so the smallest sufficient room comes first.
func SuggestAlternatives(req Request, rooms []Room, existing []Booking, opts SuggestOptions) []Suggestion {
	maxSuggestions := opts.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = defaultMaxSuggestions
	}

	byRoom := make(map[string][]Booking, len(rooms))
	for _, b := range existing {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	roomsByID := make(map[string]Room, len(rooms))
	for _, r := range rooms {
		roomsByID[r.ID] = r
	}

	var suggestions []Suggestion

	// Same room, nearest free slot of equal duration before or after the
	// requested time.
	if room, ok := roomsByID[req.RoomID]; ok && opts.DayEnd.After(opts.DayStart) {
		seen := make(map[time.Time]struct{})
		for _, window := range FreeWindows(byRoom[req.RoomID], opts.DayStart, opts.DayEnd) {
			if window.End.Sub(window.Start) < req.Duration {
				continue
			}
			start := nearestStart(req.Start, window, req.Duration)
			if _, dup := seen[start]; dup {
				continue
			}
			seen[start] = struct{}{}
			suggestions = append(suggestions, Suggestion{
				Room:     room,
				Start:    start,
				End:      start.Add(req.Duration),
				SameRoom: true,
			})
		}
	}

	// Other rooms free for the exact requested interval.
	reqEnd := req.Start.Add(req.Duration)
	for _, room := range rooms {
		if room.ID == req.RoomID {
			continue
		}
		if req.MinCapacity > 0 && room.Capacity < req.MinCapacity {
			continue
		}
		candidate := Booking{RoomID: room.ID, Start: req.Start, End: reqEnd}
		if len(DetectConflicts(byRoom[room.ID], candidate)) > 0 {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Room:  room,
			Start: req.Start,
			End:   reqEnd,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		di := timeDistance(suggestions[i].Start, req.Start)
		dj := timeDistance(suggestions[j].Start, req.Start)
		if di != dj {
			return di < dj
		}
		if suggestions[i].Room.Capacity != suggestions[j].Room.Capacity {
			return suggestions[i].Room.Capacity < suggestions[j].Room.Capacity
		}
		return suggestions[i].Room.Name < suggestions[j].Room.Name
	})

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// nearestStart picks the start within the window closest to the requested
// start such that the full duration still fits.
func nearestStart(requested time.Time, window Window, duration time.Duration) time.Time {
	latest := window.End.Add(-duration)
	switch {
	case requested.Before(window.Start):
		return window.Start
	case requested.After(latest):
		return latest
	default:
		return requested
	}
}

func timeDistance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
