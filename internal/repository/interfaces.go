package repository

import (
	"context"

	"eventshuffle/internal/domain"
)

// EventRepository is the durable event store. Implementations return (nil, nil)
// from GetEvent when the id does not resolve.
type EventRepository interface {
	// CreateEvent stores a new event with already-normalized dates and returns its id
	CreateEvent(ctx context.Context, name string, dates []string) (int64, error)

	// ListEvents returns every event in creation order
	ListEvents(ctx context.Context) ([]domain.EventSummary, error)

	// GetEvent loads an event with its participants, and its votes in insertion order when includeVotes is set
	GetEvent(ctx context.Context, id int64, includeVotes bool) (*domain.Event, error)

	// GetEventHeader loads only the immutable id, name and dates
	GetEventHeader(ctx context.Context, id int64) (*domain.EventHeader, error)

	// RunInTx executes fn in a single transaction, committing only if fn returns nil
	RunInTx(ctx context.Context, fn func(tx EventTx) error) error

	// Health checks the connection to the store
	Health(ctx context.Context) error
}

// EventTx holds the mutating primitives available inside RunInTx
type EventTx interface {
	// AddParticipant registers name on the event; registering an existing name is a no-op
	AddParticipant(ctx context.Context, eventID int64, name string) error

	// DeleteVotes removes every vote of name on the event
	DeleteVotes(ctx context.Context, eventID int64, name string) (int64, error)

	// InsertVotes adds one vote per date in order, skipping duplicates
	InsertVotes(ctx context.Context, eventID int64, name string, dates []string) (int64, error)
}
