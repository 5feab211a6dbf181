package persist

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbanforge/buildsim/internal/config"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

func TestMigrationsAreEmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{
		"migrations/00001_prefab_history.sql",
		"migrations/00002_demolitions.sql",
	}, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"), name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestNewDB_Disabled(t *testing.T) {
	db, err := NewDB(context.Background(), config.DatabaseConfig{}, zap.NewNop())
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNewDB_BadDSN(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{
		Enabled: true,
		DSN:     "::not a dsn::",
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}

func TestHistoryBatch_QueuesOneStatementPerEntry(t *testing.T) {
	runID := uuid.New()
	entries := []world.HistoryEntry{
		{Entity: ecs.NewEntityID(3, 0), Previous: "house_l1"},
		{Entity: ecs.NewEntityID(7, 1), Previous: "shop_l2"},
	}
	batch := historyBatch(runID, entries)
	require.Equal(t, 2, batch.Len())

	q := batch.QueuedQueries[1]
	assert.Equal(t, insertHistory, q.SQL)
	assert.Equal(t, []any{runID, int64(ecs.NewEntityID(7, 1)), "shop_l2"}, q.Arguments)
}

func TestRecordEmptyBatchesSkipTheDatabase(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, NewUpgradeRepo(nil, uuid.New()).RecordPrevious(ctx, nil))
	assert.NoError(t, NewDemolitionRepo(nil, uuid.New()).RecordBatch(ctx, nil))
}
