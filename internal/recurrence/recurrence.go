// Package recurrence expands a recurring booking request into the ordered
// sequence of calendar dates it applies to.
package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Frequency represents supported recurrence intervals.
type Frequency int

const (
	// FrequencyUnspecified indicates the frequency is not set.
	FrequencyUnspecified Frequency = iota
	// FrequencyDaily advances one day per occurrence.
	FrequencyDaily
	// FrequencyWeekly advances seven days per occurrence.
	FrequencyWeekly
	// FrequencyBiweekly advances fourteen days per occurrence.
	FrequencyBiweekly
	// FrequencyMonthly advances one calendar month, clamped to the last valid
	// day when the target month is shorter than the anchor day.
	FrequencyMonthly
)

// String returns the keyword form of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyBiweekly:
		return "biweekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return "unspecified"
	}
}

var (
	// ErrUnknownFrequency indicates the frequency keyword is not supported.
	ErrUnknownFrequency = errors.New("recurrence: unknown frequency")
	// ErrInvalidRange indicates the end date precedes the start date, or the
	// range would generate an unreasonable number of occurrences.
	ErrInvalidRange = errors.New("recurrence: invalid date range")
)

// maxOccurrences bounds expansion so a typo in the end date cannot produce an
// effectively unbounded batch of bookings.
const maxOccurrences = 366

// ParseFrequency maps a frequency keyword to its Frequency value.
func ParseFrequency(text string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "biweekly", "fortnightly":
		return FrequencyBiweekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	default:
		return FrequencyUnspecified, fmt.Errorf("%w: %q", ErrUnknownFrequency, text)
	}
}

// Spec describes a recurring booking range. Start and End are calendar dates;
// time-of-day components are ignored.
type Spec struct {
	Start     time.Time
	End       time.Time
	Frequency Frequency
}

// Expand produces the ordered occurrence dates for the spec, inclusive of
// both Start and End. Monthly expansion is anchored to Start's day-of-month:
// 31 Jan steps to 29 Feb in a leap year, then back to 31 Mar.
func Expand(spec Spec) ([]time.Time, error) {
	if spec.Frequency == FrequencyUnspecified {
		return nil, ErrUnknownFrequency
	}

	loc := spec.Start.Location()
	start := midnight(spec.Start, loc)
	end := midnight(spec.End, loc)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s precedes start %s",
			ErrInvalidRange, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	var step func(i int) time.Time
	switch spec.Frequency {
	case FrequencyDaily:
		step = func(i int) time.Time { return start.AddDate(0, 0, i) }
	case FrequencyWeekly:
		step = func(i int) time.Time { return start.AddDate(0, 0, 7*i) }
	case FrequencyBiweekly:
		step = func(i int) time.Time { return start.AddDate(0, 0, 14*i) }
	case FrequencyMonthly:
		anchorDay := start.Day()
		step = func(i int) time.Time {
			return monthAnchored(start.Year(), start.Month(), anchorDay, i, loc)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFrequency, spec.Frequency)
	}

	dates := make([]time.Time, 0, 8)
	for i := 0; ; i++ {
		current := step(i)
		if current.After(end) {
			break
		}
		if len(dates) >= maxOccurrences {
			return nil, fmt.Errorf("%w: more than %d occurrences", ErrInvalidRange, maxOccurrences)
		}
		dates = append(dates, current)
	}

	return dates, nil
}

// monthAnchored returns the anchor day i months after the starting month,
// clamped to the target month's last day. Using time.AddDate here would
// normalize 31 Feb into early March instead of clamping.
func monthAnchored(year int, month time.Month, day, i int, loc *time.Location) time.Time {
	firstOfTarget := time.Date(year, month+time.Month(i), 1, 0, 0, 0, 0, loc)
	last := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month())
	if day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
