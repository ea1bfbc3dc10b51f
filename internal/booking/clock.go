package booking

import (
	"fmt"
	"strings"
	"time"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// accepted request layouts, most specific first
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalize parses a requested date and truncates it to the start of its UTC
// hour. Inputs without an offset are read as UTC.
func Normalize(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", ErrInvalidArgument)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return StartOfHour(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a valid date", ErrInvalidArgument, raw)
}

// StartOfHour truncates the instant itself, so half-hour zones such as +05:30
// land on the same slot as the UTC hour they fall in.
func StartOfHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// IsPast reports whether t is strictly before ref.
func IsPast(t, ref time.Time) bool {
	return t.Before(ref)
}

// FormatSlot renders a slot for notices, e.g. "June 22, at 08:00h".
func FormatSlot(t time.Time) string {
	return t.UTC().Format("January 02, at 15:04h")
}
