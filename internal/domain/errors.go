package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidVoteDate is matched by every InvalidVoteDateError
	ErrInvalidVoteDate = errors.New("invalid vote date")
	// ErrEmptyName is returned for blank event or participant names
	ErrEmptyName = errors.New("name cannot be empty")
	// ErrNoDates is returned when an event would have no candidate dates
	ErrNoDates = errors.New("at least one date is required")
	// ErrInvalidRecurrence is returned when a recurrence rule cannot be expanded
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

// InvalidVoteDateError reports a submitted date that is not a candidate date of the event
type InvalidVoteDateError struct {
	EventID int64
	Date    string
}

func (e *InvalidVoteDateError) Error() string {
	return fmt.Sprintf("invalid vote date %q for event %d", e.Date, e.EventID)
}

// Is makes errors.Is(err, ErrInvalidVoteDate) succeed
func (e *InvalidVoteDateError) Is(target error) bool {
	return target == ErrInvalidVoteDate
}

// InvalidDateError reports a candidate date that could not be parsed at event creation
type InvalidDateError struct {
	Date string
	Err  error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.Date, e.Err)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}
