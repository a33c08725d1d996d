package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{
			name:     "calendar date",
			input:    "2014-01-01",
			expected: "2014-01-01",
		},
		{
			name:     "surrounding whitespace",
			input:    "  2014-01-05 ",
			expected: "2014-01-05",
		},
		{
			name:     "UTC timestamp",
			input:    "2014-01-12T00:00:00.000Z",
			expected: "2014-01-12",
		},
		{
			name:     "offset timestamp keeps the written day",
			input:    "2014-01-01T01:30:00+02:00",
			expected: "2014-01-01",
		},
		{
			name:     "local timestamp",
			input:    "2014-01-01T18:45:00",
			expected: "2014-01-01",
		},
		{
			name:     "timestamp without seconds",
			input:    "2014-01-01T18:45",
			expected: "2014-01-01",
		},
		{
			name:     "space separated timestamp",
			input:    "2014-01-01 18:45:00",
			expected: "2014-01-01",
		},
		{
			name:     "compact form",
			input:    "20140101",
			expected: "2014-01-01",
		},
		{
			name:        "empty",
			input:       "",
			shouldError: true,
		},
		{
			name:        "blank",
			input:       "   ",
			shouldError: true,
		},
		{
			name:        "not a date",
			input:       "next friday",
			shouldError: true,
		},
		{
			name:        "impossible day",
			input:       "2014-02-30",
			shouldError: true,
		},
		{
			name:        "day first",
			input:       "01-01-2014",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.shouldError {
				assert.Error(t, err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeDate_ErrorKinds(t *testing.T) {
	_, err := NormalizeDate("")
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, err = NormalizeDate("2014-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNormalizeDates_DeduplicatesInDeclaredOrder(t *testing.T) {
	got, err := NormalizeDates([]string{
		"2014-01-12",
		"2014-01-01",
		"2014-01-12T10:00:00Z",
		"2014-01-05",
		"20140101",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2014-01-12", "2014-01-01", "2014-01-05"}, got)
}

func TestNormalizeDates_FailsOnFirstInvalidEntry(t *testing.T) {
	got, err := NormalizeDates([]string{"2014-01-01", "bogus", "2014-01-05"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Nil(t, got)

	var dateErr *DateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "bogus", dateErr.Input)
}

func TestDateKeysEqual(t *testing.T) {
	assert.True(t, DateKeysEqual("2014-01-01", "2014-01-01T12:00:00Z"))
	assert.True(t, DateKeysEqual("20140101", "2014-01-01"))
	assert.False(t, DateKeysEqual("2014-01-01", "2014-01-02"))
	assert.False(t, DateKeysEqual("2014-01-01", "garbage"))
}

func TestParseDateKeyAndFormatDate(t *testing.T) {
	parsed, err := ParseDateKey("2014-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2014, time.January, 5, 0, 0, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2014-01-05", FormatDate(parsed))

	_, err = ParseDateKey("2014-01-05T00:00:00Z")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExpandRecurrence(t *testing.T) {
	tests := []struct {
		name        string
		rule        string
		limit       int
		expected    []string
		errContains string
	}{
		{
			name:     "weekly with count",
			rule:     "DTSTART:20140101T000000Z\nRRULE:FREQ=WEEKLY;COUNT=3",
			expected: []string{"2014-01-01", "2014-01-08", "2014-01-15"},
		},
		{
			name:     "escaped newline from JSON clients",
			rule:     `DTSTART:20140103T180000Z\nRRULE:FREQ=WEEKLY;UNTIL=20140117T235959Z`,
			expected: []string{"2014-01-03", "2014-01-10", "2014-01-17"},
		},
		{
			name:     "exdate removes an occurrence",
			rule:     "DTSTART:20140101T000000Z\nRRULE:FREQ=DAILY;COUNT=3\nEXDATE:20140102T000000Z",
			expected: []string{"2014-01-01", "2014-01-03"},
		},
		{
			name:        "unbounded rule",
			rule:        "DTSTART:20140101T000000Z\nRRULE:FREQ=DAILY",
			limit:       10,
			errContains: "more than 10 dates",
		},
		{
			name:        "missing dtstart",
			rule:        "RRULE:FREQ=DAILY;COUNT=2",
			errContains: "requires DTSTART",
		},
		{
			name:        "garbage",
			rule:        "not a rule",
			errContains: "invalid recurrence rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRecurrence(tt.rule, tt.limit)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
