package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventshuffle/internal/domain"
	"eventshuffle/pkg/database"
)

// sqlQuerier is satisfied by both *sql.DB and *sql.Tx
type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqliteEventRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteEventRepository creates an SQLite backed event repository.
// Dates are stored as YYYY-MM-DD text, so no conversion is needed on the way out.
func NewSQLiteEventRepository(db *database.SQLiteDB) EventRepository {
	return &sqliteEventRepository{db: db}
}

// CreateEvent inserts the event and its candidate dates in one transaction
func (r *sqliteEventRepository) CreateEvent(ctx context.Context, name string, dates []string) (int64, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO events (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read event id: %w", err)
	}

	for position, date := range dates {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_dates (event_id, position, date) VALUES (?, ?, ?)`,
			id, position, date,
		); err != nil {
			return 0, fmt.Errorf("failed to add event date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit event: %w", err)
	}

	return id, nil
}

// ListEvents returns id and name of every event
func (r *sqliteEventRepository) ListEvents(ctx context.Context) ([]domain.EventSummary, error) {
	rows, err := r.db.DB.QueryContext(ctx, `SELECT id, name FROM events ORDER BY id`)
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
func (r *sqliteEventRepository) GetEvent(ctx context.Context, id int64, includeVotes bool) (*domain.Event, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	event := &domain.Event{}
	var createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM events WHERE id = ?`, id,
	).Scan(&event.ID, &event.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse event created_at: %w", err)
	}

	if event.Dates, err = r.dates(ctx, tx, id); err != nil {
		return nil, err
	}

	event.Participants, err = r.strings(ctx, tx,
		`SELECT name FROM event_participants WHERE event_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	if includeVotes {
		if event.Votes, err = r.votes(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	return event, nil
}

// GetEventHeader reads only the immutable columns
func (r *sqliteEventRepository) GetEventHeader(ctx context.Context, id int64) (*domain.EventHeader, error) {
	header := &domain.EventHeader{}
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT id, name FROM events WHERE id = ?`, id,
	).Scan(&header.ID, &header.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event header: %w", err)
	}

	if header.Dates, err = r.dates(ctx, r.db.DB, id); err != nil {
		return nil, err
	}

	return header, nil
}

func (r *sqliteEventRepository) dates(ctx context.Context, q sqlQuerier, eventID int64) ([]string, error) {
	dates, err := r.strings(ctx, q,
		`SELECT date FROM event_dates WHERE event_id = ? ORDER BY position`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event dates: %w", err)
	}
	return dates, nil
}

func (r *sqliteEventRepository) strings(ctx context.Context, q sqlQuerier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}

	return values, rows.Err()
}

func (r *sqliteEventRepository) votes(ctx context.Context, q sqlQuerier, eventID int64) ([]domain.Vote, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT seq, name, date FROM votes WHERE event_id = ? ORDER BY seq`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	votes := make([]domain.Vote, 0)
	for rows.Next() {
		vote := domain.Vote{EventID: eventID}
		if err := rows.Scan(&vote.Seq, &vote.Name, &vote.Date); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}

	return votes, rows.Err()
}

// RunInTx runs fn inside a transaction
func (r *sqliteEventRepository) RunInTx(ctx context.Context, fn func(tx EventTx) error) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&sqliteEventTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Health checks the database connection
func (r *sqliteEventRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

type sqliteEventTx struct {
	tx *sql.Tx
}

func (t *sqliteEventTx) AddParticipant(ctx context.Context, eventID int64, name string) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO event_participants (event_id, name) VALUES (?, ?)
		 ON CONFLICT (event_id, name) DO NOTHING`,
		eventID, name)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (t *sqliteEventTx) DeleteVotes(ctx context.Context, eventID int64, name string) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM votes WHERE event_id = ? AND name = ?`, eventID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to delete votes: %w", err)
	}
	return res.RowsAffected()
}

func (t *sqliteEventTx) InsertVotes(ctx context.Context, eventID int64, name string, dates []string) (int64, error) {
	var inserted int64
	for _, date := range dates {
		res, err := t.tx.ExecContext(ctx,
			`INSERT INTO votes (event_id, name, date) VALUES (?, ?, ?)
			 ON CONFLICT (event_id, name, date) DO NOTHING`,
			eventID, name, date)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert vote: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to count inserted votes: %w", err)
		}
		inserted += n
	}

	return inserted, nil
}
