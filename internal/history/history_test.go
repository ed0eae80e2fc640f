package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/ways"
	"github.com/db47h/ways/internal/history"
)

func TestRecordAndRecent(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	id := uuid.New()
	run := ways.RunInfo{
		ID:           id,
		StartedAt:    time.Now().UTC().Truncate(time.Second),
		SourceDigest: "deadbeef",
		StateCount:   1,
		ClassCount:   3,
		OK:           true,
	}
	require.NoError(t, store.Record(ctx, run))

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "deadbeef", got[0].SourceDigest)
	assert.True(t, got[0].OK)
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	older := ways.RunInfo{ID: uuid.New(), StartedAt: time.Now().Add(-time.Hour).UTC(), SourceDigest: "old", OK: true}
	newer := ways.RunInfo{ID: uuid.New(), StartedAt: time.Now().UTC(), SourceDigest: "new", OK: true}
	require.NoError(t, store.Record(ctx, older))
	require.NoError(t, store.Record(ctx, newer))

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].SourceDigest)
	assert.Equal(t, "old", got[1].SourceDigest)
}
