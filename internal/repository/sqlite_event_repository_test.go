package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventshuffle/pkg/database"
)

func setupSQLiteRepo(t *testing.T) EventRepository {
	t.Helper()

	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, database.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.RunMigrations(ctx)
	require.NoError(t, err)

	return NewSQLiteEventRepository(db)
}

func TestSQLiteEventRepository_CreateAndGet(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	dates := []string{"2014-01-05", "2014-01-01", "2014-01-12"}
	id, err := repo.CreateEvent(ctx, "Jake's secret party", dates)
	require.NoError(t, err)
	assert.Positive(t, id)

	event, err := repo.GetEvent(ctx, id, true)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, id, event.ID)
	assert.Equal(t, "Jake's secret party", event.Name)
	assert.Equal(t, dates, event.Dates, "dates keep creation order")
	assert.Empty(t, event.Participants)
	assert.Empty(t, event.Votes)
	assert.False(t, event.CreatedAt.IsZero())

	header, err := repo.GetEventHeader(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, dates, header.Dates)
}

func TestSQLiteEventRepository_MissingEvent(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	event, err := repo.GetEvent(ctx, 999, true)
	assert.NoError(t, err)
	assert.Nil(t, event)

	header, err := repo.GetEventHeader(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, header)
}

func TestSQLiteEventRepository_ListEvents(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	events, err := repo.ListEvents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	first, err := repo.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01"})
	require.NoError(t, err)
	second, err := repo.CreateEvent(ctx, "Bowling night", []string{"2014-02-01"})
	require.NoError(t, err)

	events, err = repo.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first, events[0].ID)
	assert.Equal(t, "Jake's secret party", events[0].Name)
	assert.Equal(t, second, events[1].ID)
}

func TestSQLiteEventRepository_VotesKeepInsertionOrder(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01", "2014-01-05", "2014-01-12"})
	require.NoError(t, err)

	submit := func(name string, dates ...string) {
		err := repo.RunInTx(ctx, func(tx EventTx) error {
			if err := tx.AddParticipant(ctx, id, name); err != nil {
				return err
			}
			if _, err := tx.DeleteVotes(ctx, id, name); err != nil {
				return err
			}
			_, err := tx.InsertVotes(ctx, id, name, dates)
			return err
		})
		require.NoError(t, err)
	}

	submit("John", "2014-01-01", "2014-01-05")
	submit("Julia", "2014-01-05")
	submit("John", "2014-01-12")

	event, err := repo.GetEvent(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"John", "Julia"}, event.Participants)
	require.Len(t, event.Votes, 2)
	assert.Equal(t, "Julia", event.Votes[0].Name)
	assert.Equal(t, "2014-01-05", event.Votes[0].Date)
	assert.Equal(t, "John", event.Votes[1].Name)
	assert.Equal(t, "2014-01-12", event.Votes[1].Date)
	assert.Less(t, event.Votes[0].Seq, event.Votes[1].Seq)

	withoutVotes, err := repo.GetEvent(ctx, id, false)
	require.NoError(t, err)
	assert.Nil(t, withoutVotes.Votes)
	assert.Equal(t, event.Participants, withoutVotes.Participants)
}

func TestSQLiteEventRepository_TxPrimitives(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01", "2014-01-05"})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, func(tx EventTx) error {
		require.NoError(t, tx.AddParticipant(ctx, id, "Paul"))
		require.NoError(t, tx.AddParticipant(ctx, id, "Paul"))

		inserted, err := tx.InsertVotes(ctx, id, "Paul", []string{"2014-01-01", "2014-01-01", "2014-01-05"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted, "duplicate dates are skipped")

		deleted, err := tx.DeleteVotes(ctx, id, "Paul")
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		deleted, err = tx.DeleteVotes(ctx, id, "Nobody")
		require.NoError(t, err)
		assert.Zero(t, deleted)
		return nil
	})
	require.NoError(t, err)

	event, err := repo.GetEvent(ctx, id, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Paul"}, event.Participants)
	assert.Empty(t, event.Votes)
}

func TestSQLiteEventRepository_RunInTxRollsBack(t *testing.T) {
	repo := setupSQLiteRepo(t)
	ctx := context.Background()

	id, err := repo.CreateEvent(ctx, "Jake's secret party", []string{"2014-01-01"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.RunInTx(ctx, func(tx EventTx) error {
		if err := tx.AddParticipant(ctx, id, "Dick"); err != nil {
			return err
		}
		if _, err := tx.InsertVotes(ctx, id, "Dick", []string{"2014-01-01"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	event, err := repo.GetEvent(ctx, id, true)
	require.NoError(t, err)
	assert.Empty(t, event.Participants)
	assert.Empty(t, event.Votes)
}

func TestSQLiteEventRepository_Health(t *testing.T) {
	repo := setupSQLiteRepo(t)
	assert.NoError(t, repo.Health(context.Background()))
}
