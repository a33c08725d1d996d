package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DateKeyLayout is the canonical calendar-day representation used across the API
const DateKeyLayout = "2006-01-02"

// DefaultMaxRecurrence caps how many candidate dates a recurrence rule may produce
const DefaultMaxRecurrence = 100

// Accepted input layouts, tried in order. Layouts carrying a time of day keep the
// calendar day exactly as written; no timezone conversion happens.
var dateLayouts = []string{
	DateKeyLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"20060102",
}

var (
	// ErrEmptyDate is returned when normalizing blank input
	ErrEmptyDate = errors.New("date cannot be empty")
	// ErrInvalidDate is returned when the input is not a recognised calendar date
	ErrInvalidDate = errors.New("invalid date format")
)

// DateError carries the input that failed to normalize
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	return e.Err.Error()
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// NormalizeDate collapses an ISO 8601 style date or date-time into a YYYY-MM-DD key
func NormalizeDate(input string) (string, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return "", ErrEmptyDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateKeyLayout), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidDate, input)
}

// NormalizeDates normalizes every input and drops duplicates, keeping first occurrence order.
// The first invalid input is reported as a *DateError.
func NormalizeDates(inputs []string) ([]string, error) {
	keys := make([]string, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for _, input := range inputs {
		key, err := NormalizeDate(input)
		if err != nil {
			return nil, &DateError{Input: input, Err: err}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys, nil
}

// DateKeysEqual reports whether two date inputs denote the same calendar day
func DateKeysEqual(a, b string) bool {
	ka, errA := NormalizeDate(a)
	kb, errB := NormalizeDate(b)
	if errA != nil || errB != nil {
		return false
	}
	return ka == kb
}

// ParseDateKey converts a normalized key to midnight UTC, the form stored in DATE columns
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return t, nil
}

// FormatDate masks a stored timestamp down to its calendar-day key
func FormatDate(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ExpandRecurrence expands an RFC 5545 recurrence (DTSTART plus RRULE/RDATE/EXDATE lines)
// into date keys. Rules producing more than limit occurrences are rejected, which also
// covers unbounded rules without COUNT or UNTIL.
func ExpandRecurrence(rule string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultMaxRecurrence
	}

	set, err := rrule.StrToRRuleSet(strings.ReplaceAll(strings.TrimSpace(rule), `\n`, "\n"))
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence rule: %w", err)
	}
	if set.GetDTStart().IsZero() {
		return nil, errors.New("recurrence rule requires DTSTART")
	}

	next := set.Iterator()
	keys := make([]string, 0)
	for {
		occurrence, ok := next()
		if !ok {
			break
		}
		if len(keys) == limit {
			return nil, fmt.Errorf("recurrence rule produces more than %d dates", limit)
		}
		keys = append(keys, occurrence.Format(DateKeyLayout))
	}

	return keys, nil
}
