package scheduler

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-day representation used across the scheduler.
const DateLayout = "2006-01-02"

// Interval is a clock-time range within a single day, expressed in minutes
// since midnight. The range is half-open: [Start, End).
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals share any minute. Ranges
// that merely touch (a.End == b.Start) do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// Duration returns the interval length in minutes.
func (i Interval) Duration() int {
	return i.End - i.Start
}

// Valid reports whether the interval is well-formed within one day.
func (i Interval) Valid() bool {
	return i.Start >= 0 && i.End <= 24*60 && i.Start < i.End
}

// String renders the interval as "HH:MM-HH:MM".
func (i Interval) String() string {
	return FormatClock(i.Start) + "-" + FormatClock(i.End)
}

// ParseClock converts an "HH:MM" clock string to minutes since midnight.
func ParseClock(value string) (int, error) {
	var hours, minutes int
	if _, err := fmt.Sscanf(value, "%d:%d", &hours, &minutes); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q", value)
	}
	return hours*60 + minutes, nil
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a calendar day in DateLayout form.
func ParseDate(value string) (time.Time, error) {
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return day, nil
}

// Weekday returns the short weekday name ("Mon".."Sun") for a DateLayout day.
func Weekday(date string) (string, error) {
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return day.Weekday().String()[:3], nil
}
