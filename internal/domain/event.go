package domain

import (
	"time"

	"eventshuffle/pkg/utils"
)

// Event is a scheduling poll: a name, the candidate dates proposed by the organizer
// and everyone who has voted so far
type Event struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Dates        []string  `json:"dates"`
	Participants []string  `json:"people"`
	Votes        []Vote    `json:"votes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// EventHeader is the part of an event that never changes after creation
type EventHeader struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Dates []string `json:"dates"`
}

// HasDate reports whether date falls on one of the candidate dates
func (h *EventHeader) HasDate(date string) bool {
	for _, d := range h.Dates {
		if utils.DateKeysEqual(d, date) {
			return true
		}
	}
	return false
}

// EventSummary is a list entry
type EventSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	Name       string   `json:"name" validate:"required"`
	Dates      []string `json:"dates" validate:"required_without=Recurrence,dive,required"`
	Recurrence string   `json:"recurrence,omitempty"`
}

// CreateEventResponse represents the response after creating an event
type CreateEventResponse struct {
	ID int64 `json:"id"`
}

// ListEventsResponse represents the event listing
type ListEventsResponse struct {
	Events []EventSummary `json:"events"`
}

// EventView is the public representation of an event with its aggregated votes
type EventView struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Dates []string    `json:"dates"`
	Votes []DateVotes `json:"votes"`
}

// ResultsView lists the dates every participant can attend
type ResultsView struct {
	ID            int64       `json:"id"`
	Name          string      `json:"name"`
	SuitableDates []DateVotes `json:"suitableDates"`
}
