package service

import (
	"context"

	"eventshuffle/internal/domain"
)

// EventManager defines the event scheduling operations exposed over HTTP.
// Lookups by id return (nil, nil) when the event does not exist.
type EventManager interface {
	// CreateEvent stores a new event from explicit dates and an optional recurrence rule
	CreateEvent(ctx context.Context, name string, dates []string, recurrence string) (*domain.CreateEventResponse, error)

	// ListEvents returns every event in creation order
	ListEvents(ctx context.Context) (*domain.ListEventsResponse, error)

	// GetEvent returns the event with its aggregated votes
	GetEvent(ctx context.Context, id int64) (*domain.EventView, error)

	// SubmitVote replaces the participant's votes and returns the updated event
	SubmitVote(ctx context.Context, id int64, participant string, dates []string) (*domain.EventView, error)

	// GetResults returns the dates every participant can attend
	GetResults(ctx context.Context, id int64) (*domain.ResultsView, error)

	// ExportResultsCalendar renders the results as an iCalendar document
	ExportResultsCalendar(ctx context.Context, id int64) ([]byte, error)
}

// HealthChecker reports the state of a dependency
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Services aggregates all service interfaces
type Services struct {
	Events EventManager
	Cache  *CacheService
	Store  HealthChecker
}
