// Package dateparse turns the free-text date, time and duration expressions
// accepted in booking commands into concrete calendar values. Every parser is
// a pure function of its input plus an explicit reference instant; nothing in
// this package reads the wall clock.
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnrecognizedFormat indicates the text matched none of the accepted forms.
	ErrUnrecognizedFormat = errors.New("dateparse: unrecognized format")
	// ErrAmbiguousDate indicates the text is a partial date that could resolve
	// to more than one calendar day.
	ErrAmbiguousDate = errors.New("dateparse: ambiguous date")
)

// DateKind tags which pattern rule produced a date match. Rule precedence is
// fixed: Relative, then OrdinalMonth, then NumericDMY, then NumericDM.
type DateKind int

const (
	// KindRelative covers "today" and "tomorrow".
	KindRelative DateKind = iota
	// KindOrdinalMonth covers "28th Nov", "22nd of November", "28 november".
	KindOrdinalMonth
	// KindNumericDMY covers "19/12/2024".
	KindNumericDMY
	// KindNumericDM covers "19/12", resolved against the reference year.
	KindNumericDM
)

// DateMatch reports the resolved date together with the rule that matched.
type DateMatch struct {
	Kind DateKind
	Date time.Time
}

var (
	ordinalMonthRe = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)$`)
	numericDMYRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	numericDMRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	bareDayRe      = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?$`)
)

var monthsByName = buildMonthIndex()

func buildMonthIndex() map[string]time.Month {
	index := make(map[string]time.Month, 24)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		index[name] = m
		index[name[:3]] = m
	}
	// Common four-letter shortening that the three-letter cut misses.
	index["sept"] = time.September
	return index
}

// ParseDate resolves free-text date expressions against the reference instant.
// The result is midnight in the reference's location. Day/month inputs without
// an explicit year that fall before the reference date roll forward to the
// next year; explicit years never roll.
func ParseDate(text string, reference time.Time) (time.Time, error) {
	match, err := MatchDate(text, reference)
	if err != nil {
		return time.Time{}, err
	}
	return match.Date, nil
}

// MatchDate is ParseDate plus the rule tag, letting callers (and tests)
// observe which pattern won.
func MatchDate(text string, reference time.Time) (DateMatch, error) {
	normalized := normalize(text)
	if normalized == "" {
		return DateMatch{}, fmt.Errorf("empty date: %w", ErrUnrecognizedFormat)
	}

	loc := reference.Location()
	today := midnight(reference, loc)

	switch normalized {
	case "today":
		return DateMatch{Kind: KindRelative, Date: today}, nil
	case "tomorrow":
		return DateMatch{Kind: KindRelative, Date: today.AddDate(0, 0, 1)}, nil
	}

	if m := ordinalMonthRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthsByName[m[2]]
		if !ok {
			return DateMatch{}, fmt.Errorf("unknown month %q: %w", m[2], ErrUnrecognizedFormat)
		}
		date, err := resolveDayMonth(day, month, today, loc)
		if err != nil {
			return DateMatch{}, err
		}
		return DateMatch{Kind: KindOrdinalMonth, Date: date}, nil
	}

	if m := numericDMYRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		monthNum, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if monthNum < 1 || monthNum > 12 {
			return DateMatch{}, fmt.Errorf("month %d out of range: %w", monthNum, ErrUnrecognizedFormat)
		}
		date, ok := civilDate(year, time.Month(monthNum), day, loc)
		if !ok {
			return DateMatch{}, fmt.Errorf("day %d invalid for %s %d: %w", day, time.Month(monthNum), year, ErrUnrecognizedFormat)
		}
		return DateMatch{Kind: KindNumericDMY, Date: date}, nil
	}

	if m := numericDMRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		monthNum, _ := strconv.Atoi(m[2])
		if monthNum < 1 || monthNum > 12 {
			return DateMatch{}, fmt.Errorf("month %d out of range: %w", monthNum, ErrUnrecognizedFormat)
		}
		date, err := resolveDayMonth(day, time.Month(monthNum), today, loc)
		if err != nil {
			return DateMatch{}, err
		}
		return DateMatch{Kind: KindNumericDM, Date: date}, nil
	}

	// Partial dates are rejected as ambiguous rather than guessed at.
	if _, ok := monthsByName[normalized]; ok {
		return DateMatch{}, fmt.Errorf("month without a day: %w", ErrAmbiguousDate)
	}
	if bareDayRe.MatchString(normalized) {
		return DateMatch{}, fmt.Errorf("day without a month: %w", ErrAmbiguousDate)
	}

	return DateMatch{}, fmt.Errorf("date %q: %w", text, ErrUnrecognizedFormat)
}

// resolveDayMonth places a year-less day/month against the reference year,
// rolling to the next year when the date has already passed.
func resolveDayMonth(day int, month time.Month, today time.Time, loc *time.Location) (time.Time, error) {
	date, ok := civilDate(today.Year(), month, day, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("day %d invalid for %s: %w", day, month, ErrUnrecognizedFormat)
	}
	if date.Before(today) {
		rolled, ok := civilDate(today.Year()+1, month, day, loc)
		if !ok {
			return time.Time{}, fmt.Errorf("day %d invalid for %s: %w", day, month, ErrUnrecognizedFormat)
		}
		return rolled, nil
	}
	return date, nil
}

// civilDate builds midnight on the given day, reporting false when the day
// does not exist in that month (time.Date would silently normalize it).
func civilDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if date.Month() != month || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Clock is a parsed time of day.
type Clock struct {
	Hour   int
	Minute int
}

// On combines the clock with a calendar date in the date's location.
func (c Clock) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}

var (
	meridiemRe   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?(am|pm)$`)
	twentyFourRe = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
	bareClockRe  = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseTime accepts "2pm", "2:30pm" and 24-hour "14:00". Colon forms with a
// single-digit hour and no am/pm marker are rejected: "2:30" could mean
// either half of the day.
func ParseTime(text string) (Clock, error) {
	normalized := normalize(text)
	if normalized == "" {
		return Clock{}, fmt.Errorf("empty time: %w", ErrUnrecognizedFormat)
	}

	if m := meridiemRe.FindStringSubmatch(normalized); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return Clock{}, fmt.Errorf("time %q out of range: %w", text, ErrUnrecognizedFormat)
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return Clock{Hour: hour, Minute: minute}, nil
	}

	if m := twentyFourRe.FindStringSubmatch(normalized); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return Clock{}, fmt.Errorf("time %q out of range: %w", text, ErrUnrecognizedFormat)
		}
		return Clock{Hour: hour, Minute: minute}, nil
	}

	if bareClockRe.MatchString(normalized) {
		return Clock{}, fmt.Errorf("time %q needs am/pm or a two-digit 24-hour form: %w", text, ErrUnrecognizedFormat)
	}

	return Clock{}, fmt.Errorf("time %q: %w", text, ErrUnrecognizedFormat)
}

var (
	combinedDurationRe = regexp.MustCompile(`^(\d+)\s*(?:h|hr|hrs|hour|hours)\s+(\d+)\s*(?:m|min|mins|minute|minutes)$`)
	hoursDurationRe    = regexp.MustCompile(`^(\d+)\s*(?:h|hr|hrs|hour|hours)$`)
	minutesDurationRe  = regexp.MustCompile(`^(\d+)\s*(?:m|min|mins|minute|minutes)$`)
)

// ParseDuration accepts hour-only ("3h", "3 hours"), minute-only ("45m",
// "45 minutes") and combined ("2h 30m", "2 hours 30 minutes") forms, hours
// strictly before minutes, and returns the total in minutes.
func ParseDuration(text string) (int, error) {
	normalized := normalize(text)
	if normalized == "" {
		return 0, fmt.Errorf("empty duration: %w", ErrUnrecognizedFormat)
	}

	var minutes int
	switch {
	case combinedDurationRe.MatchString(normalized):
		m := combinedDurationRe.FindStringSubmatch(normalized)
		hours, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		minutes = hours*60 + mins
	case hoursDurationRe.MatchString(normalized):
		m := hoursDurationRe.FindStringSubmatch(normalized)
		hours, _ := strconv.Atoi(m[1])
		minutes = hours * 60
	case minutesDurationRe.MatchString(normalized):
		m := minutesDurationRe.FindStringSubmatch(normalized)
		minutes, _ = strconv.Atoi(m[1])
	default:
		return 0, fmt.Errorf("duration %q: %w", text, ErrUnrecognizedFormat)
	}

	if minutes <= 0 {
		return 0, fmt.Errorf("duration must be positive: %w", ErrUnrecognizedFormat)
	}
	return minutes, nil
}

var spacesRe = regexp.MustCompile(`\s+`)

func normalize(text string) string {
	return spacesRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}
