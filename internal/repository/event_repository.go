package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventshuffle/internal/domain"
	"eventshuffle/pkg/database"
	"eventshuffle/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// pgQuerier is satisfied by both the pool and a transaction
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type eventRepository struct {
	db *database.PostgresDB
}

// NewEventRepository creates a PostgreSQL backed event repository
func NewEventRepository(db *database.PostgresDB) EventRepository {
	return &eventRepository{db: db}
}

// CreateEvent inserts a new event row
func (r *eventRepository) CreateEvent(ctx context.Context, name string, dates []string) (int64, error) {
	days, err := toDays(dates)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO events (name, dates) VALUES ($1, $2) RETURNING id`,
		name, days,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}

	return id, nil
}

// ListEvents returns id and name of every event
func (r *eventRepository) ListEvents(ctx context.Context) ([]domain.EventSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.EventSummary, 0)
	for rows.Next() {
		var event domain.EventSummary
		if err := rows.Scan(&event.ID, &event.Name); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// GetEvent reads the event, its participants and optionally its votes from one snapshot
func (r *eventRepository) GetEvent(ctx context.Context, id int64, includeVotes bool) (*domain.Event, error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	event := &domain.Event{}
	var days []time.Time
	err = tx.QueryRow(ctx,
		`SELECT id, name, dates, created_at FROM events WHERE id = $1`, id,
	).Scan(&event.ID, &event.Name, &days, &event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.Dates = fromDays(days)

	event.Participants, err = r.participants(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if includeVotes {
		event.Votes, err = r.votes(ctx, tx, id)
		if err != nil {
			return nil, err
		}
	}

	return event, nil
}

// GetEventHeader reads only the immutable columns
func (r *eventRepository) GetEventHeader(ctx context.Context, id int64) (*domain.EventHeader, error) {
	header := &domain.EventHeader{}
	var days []time.Time
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, dates FROM events WHERE id = $1`, id,
	).Scan(&header.ID, &header.Name, &days)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event header: %w", err)
	}
	header.Dates = fromDays(days)

	return header, nil
}

func (r *eventRepository) participants(ctx context.Context, q pgQuerier, eventID int64) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT name FROM event_participants WHERE event_id = $1 ORDER BY seq`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, name)
	}

	return participants, rows.Err()
}

func (r *eventRepository) votes(ctx context.Context, q pgQuerier, eventID int64) ([]domain.Vote, error) {
	rows, err := q.Query(ctx,
		`SELECT seq, name, date FROM votes WHERE event_id = $1 ORDER BY seq`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	votes := make([]domain.Vote, 0)
	for rows.Next() {
		vote := domain.Vote{EventID: eventID}
		var day time.Time
		if err := rows.Scan(&vote.Seq, &vote.Name, &day); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		vote.Date = utils.FormatDate(day)
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

// RunInTx runs fn inside a read-committed transaction
func (r *eventRepository) RunInTx(ctx context.Context, fn func(tx EventTx) error) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgEventTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Health checks the database connection
func (r *eventRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

type pgEventTx struct {
	tx pgx.Tx
}

// AddParticipant registers name and locks its participant row until the tx ends.
// Later submissions by the same participant wait here, so their delete sees the
// rows this tx inserts.
func (t *pgEventTx) AddParticipant(ctx context.Context, eventID int64, name string) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO event_participants (event_id, name) VALUES ($1, $2)
		 ON CONFLICT (event_id, name) DO UPDATE SET name = EXCLUDED.name`,
		eventID, name)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (t *pgEventTx) DeleteVotes(ctx context.Context, eventID int64, name string) (int64, error) {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM votes WHERE event_id = $1 AND name = $2`, eventID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgEventTx) InsertVotes(ctx context.Context, eventID int64, name string, dates []string) (int64, error) {
	days, err := toDays(dates)
	if err != nil {
		return 0, err
	}

	var inserted int64
	for _, day := range days {
		tag, err := t.tx.Exec(ctx,
			`INSERT INTO votes (event_id, name, date) VALUES ($1, $2, $3)
			 ON CONFLICT (event_id, name, date) DO NOTHING`,
			eventID, name, day)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert vote: %w", err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}

// toDays converts date keys to the midnight UTC values bound to DATE parameters
func toDays(keys []string) ([]time.Time, error) {
	days := make([]time.Time, 0, len(keys))
	for _, key := range keys {
		day, err := utils.ParseDateKey(key)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func fromDays(days []time.Time) []string {
	keys := make([]string, 0, len(days))
	for _, day := range days {
		keys = append(keys, utils.FormatDate(day))
	}
	return keys
}
