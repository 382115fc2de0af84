package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecords(t *testing.T) storage.RecordRepository {
	t.Helper()
	records, themes, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		themes.Close()
		records.Close()
		backend.Close()
	})
	return records
}

func TestRecordBasics(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, &core.Record{Title: "Hello, world!", Tags: []string{"greeting"}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	retrieved, err := repo.GetRecord(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", retrieved.Title)
	assert.Equal(t, []string{"greeting"}, retrieved.Tags)

	_, err = repo.GetRecord(ctx, core.ID(999999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.EqualError(t, err, "not found: record 999999")
}

func TestAddRecords_UpsertByURL(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()
	url := "https://example.com/scaling-netflix"

	first, err := repo.AddRecords(ctx, &core.Record{Title: "Draft", URL: url})
	require.NoError(t, err)
	assert.Equal(t, core.IDFromContent(url), first[0].Id)
	inserted := first[0].InsertedAt

	second, err := repo.AddRecords(ctx, &core.Record{Title: "Final", URL: url})
	require.NoError(t, err)
	assert.Equal(t, first[0].Id, second[0].Id)
	assert.True(t, inserted.Truncate(time.Microsecond).Equal(second[0].InsertedAt))

	stored, err := repo.GetRecord(ctx, first[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Final", stored.Title)

	recent, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestGetRecords(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, &core.Record{Title: "a"}, &core.Record{Title: "b"})
	require.NoError(t, err)

	found, err := repo.GetRecords(ctx, added[0].Id, core.ID(424242), added[1].Id)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].Title)
	assert.Equal(t, "b", found[1].Title)
}

func TestGetRecordsByPublishedRange(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := repo.AddRecords(ctx,
		&core.Record{Title: "Post 1", PublishedAt: now.Add(-2 * time.Hour)},
		&core.Record{Title: "Post 2", PublishedAt: now.Add(-1 * time.Hour)},
		&core.Record{Title: "Post 3", PublishedAt: now},
	)
	require.NoError(t, err)

	results, err := repo.GetRecordsByPublishedRange(ctx, now.Add(-90*time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Post 2", results[0].Title)
	assert.Equal(t, "Post 3", results[1].Title)

	t.Run("end is exclusive", func(t *testing.T) {
		results, err := repo.GetRecordsByPublishedRange(ctx, now.Add(-3*time.Hour), now)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("single instant", func(t *testing.T) {
		results, err := repo.GetRecordsByPublishedRange(ctx, now, now)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Post 3", results[0].Title)
	})
}

func TestGetRecentRecords(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := repo.AddRecords(ctx,
		&core.Record{Title: "Post 1", PublishedAt: now.Add(-4 * time.Hour)},
		&core.Record{Title: "Post 2", PublishedAt: now.Add(-3 * time.Hour)},
		&core.Record{Title: "Post 3", PublishedAt: now.Add(-2 * time.Hour)},
		&core.Record{Title: "Post 4", PublishedAt: now.Add(-1 * time.Hour)},
		&core.Record{Title: "Post 5", PublishedAt: now},
	)
	require.NoError(t, err)

	results, err := repo.GetRecentRecords(ctx, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Post 5", results[0].Title)
	assert.Equal(t, "Post 4", results[1].Title)
	assert.Equal(t, "Post 3", results[2].Title)

	all, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.GetRecentRecords(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty := newTestRecords(t)
	results, err = empty.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUpdateRecords(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	added, err := repo.AddRecords(ctx, &core.Record{Title: "Original", PublishedAt: now.Add(-time.Hour)})
	require.NoError(t, err)

	record := added[0]
	record.Title = "Updated"
	record.PublishedAt = now
	record.Vector = []float32{0.6, 0.8}
	_, err = repo.UpdateRecords(ctx, record)
	require.NoError(t, err)

	stored, err := repo.GetRecord(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, "Updated", stored.Title)
	assert.Equal(t, []float32{0.6, 0.8}, stored.Vector)

	old, err := repo.GetRecordsByPublishedRange(ctx, now.Add(-2*time.Hour), now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Empty(t, old, "stale date index entry should be gone")

	_, err = repo.UpdateRecords(ctx, &core.Record{Id: 777, Title: "ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteRecords(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	added, err := repo.AddRecords(ctx, &core.Record{Title: "Doomed", PublishedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRecords(ctx, added[0].Id))

	_, err = repo.GetRecord(ctx, added[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	recent, err := repo.GetRecentRecords(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	assert.ErrorIs(t, repo.DeleteRecords(ctx, added[0].Id), storage.ErrNotFound)
}

func TestFindLexical(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	_, err := repo.AddRecords(ctx,
		&core.Record{Title: "Netflix microservices", Description: "How the backend scales", Tags: []string{"backend"}},
		&core.Record{Title: "React hooks", Description: "Frontend state"},
		&core.Record{Title: "Backend basics", Description: "Getting started"},
	)
	require.NoError(t, err)

	hits, err := repo.FindLexical(ctx, []string{"Netflix", "backend", "BACKEND", " "}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Netflix microservices", hits[0].Record.Title)
	assert.Equal(t, 2, hits[0].Score)
	assert.Equal(t, "Backend basics", hits[1].Record.Title)
	assert.Equal(t, 1, hits[1].Score)

	t.Run("limit", func(t *testing.T) {
		hits, err := repo.FindLexical(ctx, []string{"backend"}, 1)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("no terms", func(t *testing.T) {
		hits, err := repo.FindLexical(ctx, nil, 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := repo.FindLexical(canceled, []string{"backend"}, 5)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestForEachRecord(t *testing.T) {
	repo := newTestRecords(t)
	ctx := context.Background()

	batch := make([]*core.Record, 7)
	for i := range batch {
		batch[i] = &core.Record{Title: "Post"}
	}
	_, err := repo.AddRecords(ctx, batch...)
	require.NoError(t, err)

	var sizes []int
	seen := map[core.ID]bool{}
	err = repo.ForEachRecord(ctx, 3, func(records []*core.Record) error {
		sizes = append(sizes, len(records))
		for _, r := range records {
			seen[r.Id] = true
			r.Vector = []float32{1}
		}
		_, err := repo.UpdateRecords(ctx, records...)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Len(t, seen, 7)

	t.Run("callback error stops", func(t *testing.T) {
		calls := 0
		stop := errors.New("stop")
		err := repo.ForEachRecord(ctx, 2, func(records []*core.Record) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("invalid batch size", func(t *testing.T) {
		err := repo.ForEachRecord(ctx, 0, func([]*core.Record) error { return nil })
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}
