package tippool

import (
	"fmt"
	"time"
)

// =============================================================================
// WEEK KEY - Canonical Monday date identifying a week
// =============================================================================

// WeekKey is the ISO date ("2006-01-02") of the Monday that starts a week.
// It is the temporal half of every record key. Because the format is
// zero-padded ISO, lexical order equals chronological order, which the
// store adapters rely on for range queries.
type WeekKey string

const weekKeyLayout = "2006-01-02"

// WeekKeyOf normalizes any date to the Monday of its week.
func WeekKeyOf(t time.Time) WeekKey {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday is Sunday-based; shift so Monday is day 0.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return WeekKey(monday.Format(weekKeyLayout))
}

// ParseWeekKey parses and validates a week key. The date must be a Monday:
// a key pointing mid-week would silently split a week's records in two.
func ParseWeekKey(s string) (WeekKey, error) {
	t, err := time.Parse(weekKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid week key %q: %w", s, err)
	}
	if t.Weekday() != time.Monday {
		return "", fmt.Errorf("week key %q: %w", s, ErrNotMonday)
	}
	return WeekKey(s), nil
}

// Time returns the Monday midnight UTC the key identifies.
func (w WeekKey) Time() time.Time {
	t, _ := time.Parse(weekKeyLayout, string(w))
	return t
}

func (w WeekKey) Next() WeekKey {
	return WeekKey(w.Time().AddDate(0, 0, 7).Format(weekKeyLayout))
}

func (w WeekKey) Before(other WeekKey) bool { return w < other }
func (w WeekKey) After(other WeekKey) bool  { return w > other }

// Label renders the human week range, e.g. "Mar 3 - Mar 9, 2025".
func (w WeekKey) Label() string {
	start := w.Time()
	end := start.AddDate(0, 0, 6)
	if start.Year() == end.Year() {
		return fmt.Sprintf("%s - %s, %d", start.Format("Jan 2"), end.Format("Jan 2"), start.Year())
	}
	return fmt.Sprintf("%s - %s", start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006"))
}

// WeeksBetween enumerates the inclusive week-key range [from, to].
// Returns nil if to precedes from.
func WeeksBetween(from, to WeekKey) []WeekKey {
	var weeks []WeekKey
	for w := from; !w.After(to); w = w.Next() {
		weeks = append(weeks, w)
	}
	return weeks
}

// =============================================================================
// WEEKDAY - Explicit positions for the seven-entry sequences
// =============================================================================

// Weekday names the positions of the per-day tip sequences. The week key is
// a Monday, so position 0 is Monday; making this an enumeration keeps the
// week boundary from drifting if Sunday-start display is ever wanted.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	// DaysInWeek is the fixed length of every per-day sequence.
	DaysInWeek = 7
)

var weekdayNames = [DaysInWeek]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func (d Weekday) String() string {
	if d < 0 || d >= DaysInWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Date returns the calendar date of this weekday within the given week.
func (d Weekday) Date(week WeekKey) time.Time {
	return week.Time().AddDate(0, 0, int(d))
}
