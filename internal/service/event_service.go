package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventshuffle/internal/domain"
	"eventshuffle/internal/repository"
	"eventshuffle/pkg/utils"

	"go.uber.org/zap"
)

type EventService struct {
	repo          repository.EventRepository
	cacheService  *CacheService
	logger        *zap.Logger
	maxRecurrence int
	now           func() time.Time
}

func NewEventService(repo repository.EventRepository, cacheService *CacheService, logger *zap.Logger, maxRecurrence int) *EventService {
	if maxRecurrence <= 0 {
		maxRecurrence = utils.DefaultMaxRecurrence
	}
	return &EventService{
		repo:          repo,
		cacheService:  cacheService,
		logger:        logger,
		maxRecurrence: maxRecurrence,
		now:           time.Now,
	}
}

// CreateEvent validates the name, expands the recurrence and stores the normalized dates
func (s *EventService) CreateEvent(ctx context.Context, name string, dates []string, recurrence string) (*domain.CreateEventResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}

	inputs := append([]string(nil), dates...)
	if strings.TrimSpace(recurrence) != "" {
		occurrences, err := utils.ExpandRecurrence(recurrence, s.maxRecurrence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRecurrence, err)
		}
		inputs = append(inputs, occurrences...)
	}

	keys, err := utils.NormalizeDates(inputs)
	if err != nil {
		var dateErr *utils.DateError
		if errors.As(err, &dateErr) {
			return nil, &domain.InvalidDateError{Date: dateErr.Input, Err: dateErr.Err}
		}
		return nil, err
	}
	if len(keys) == 0 {
		return nil, domain.ErrNoDates
	}

	id, err := s.repo.CreateEvent(ctx, name, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.cacheService.CacheEventHeader(ctx, &domain.EventHeader{ID: id, Name: name, Dates: keys})

	s.logger.Info("Event created",
		zap.Int64("event_id", id),
		zap.Int("dates", len(keys)))

	return &domain.CreateEventResponse{ID: id}, nil
}

// ListEvents returns id and name of every event
func (s *EventService) ListEvents(ctx context.Context) (*domain.ListEventsResponse, error) {
	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &domain.ListEventsResponse{Events: events}, nil
}

// GetEvent returns the event with its votes grouped by date
func (s *EventService) GetEvent(ctx context.Context, id int64) (*domain.EventView, error) {
	event, err := s.repo.GetEvent(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, nil
	}
	return buildEventView(event), nil
}

// SubmitVote replaces the participant's vote set. Every date is checked against
// the candidate dates before anything is written, so a rejected submission leaves
// earlier votes untouched.
func (s *EventService) SubmitVote(ctx context.Context, id int64, participant string, dates []string) (*domain.EventView, error) {
	participant = strings.TrimSpace(participant)
	if participant == "" {
		return nil, domain.ErrEmptyName
	}

	// Candidate dates never change, so the cached header is enough for validation
	header, err := s.cacheService.GetEventHeaderWithCache(ctx, id, s.repo.GetEventHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	if header == nil {
		return nil, nil
	}

	keys := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, raw := range dates {
		key, err := utils.NormalizeDate(raw)
		if err != nil || !header.HasDate(key) {
			s.logger.Debug("Vote rejected",
				zap.Int64("event_id", id),
				zap.String("date", raw))
			return nil, &domain.InvalidVoteDateError{EventID: id, Date: raw}
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var replaced, inserted int64
	err = s.repo.RunInTx(ctx, func(tx repository.EventTx) error {
		if err := tx.AddParticipant(ctx, id, participant); err != nil {
			return err
		}
		n, err := tx.DeleteVotes(ctx, id, participant)
		if err != nil {
			return err
		}
		replaced = n
		n, err = tx.InsertVotes(ctx, id, participant, keys)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to record votes",
			zap.Int64("event_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record votes: %w", err)
	}

	s.logger.Info("Votes recorded",
		zap.Int64("event_id", id),
		zap.Int64("replaced", replaced),
		zap.Int64("inserted", inserted))

	return s.GetEvent(ctx, id)
}

// GetResults returns the dates suitable for every participant
func (s *EventService) GetResults(ctx context.Context, id int64) (*domain.ResultsView, error) {
	event, err := s.repo.GetEvent(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, nil
	}

	return &domain.ResultsView{
		ID:            event.ID,
		Name:          event.Name,
		SuitableDates: SuitableDates(event, AggregateVotes(event.Votes)),
	}, nil
}

// ExportResultsCalendar renders the suitable dates as an iCalendar document
func (s *EventService) ExportResultsCalendar(ctx context.Context, id int64) ([]byte, error) {
	results, err := s.GetResults(ctx, id)
	if err != nil || results == nil {
		return nil, err
	}
	return RenderResultsCalendar(results, s.now())
}

// HealthCheck pings the event store
func (s *EventService) HealthCheck(ctx context.Context) error {
	return s.repo.Health(ctx)
}

func buildEventView(event *domain.Event) *domain.EventView {
	return &domain.EventView{
		ID:    event.ID,
		Name:  event.Name,
		Dates: event.Dates,
		Votes: AggregateVotes(event.Votes),
	}
}
