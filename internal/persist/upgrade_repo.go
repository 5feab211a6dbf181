package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/urbanforge/buildsim/internal/world"
)

// UpgradeRepo stores the prefab a building had before its construction
// completed. Rows are write-once per (run, entity).
type UpgradeRepo struct {
	db    *DB
	runID uuid.UUID
}

func NewUpgradeRepo(db *DB, runID uuid.UUID) *UpgradeRepo {
	return &UpgradeRepo{db: db, runID: runID}
}

const insertHistory = `INSERT INTO prefab_history (run_id, entity_id, previous)
	VALUES ($1, $2, $3)
	ON CONFLICT (run_id, entity_id) DO NOTHING`

// RecordPrevious writes entries in one batch round trip. Entries that already
// exist are left untouched.
func (r *UpgradeRepo) RecordPrevious(ctx context.Context, entries []world.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := historyBatch(r.runID, entries)
	results := r.db.Pool.SendBatch(ctx, batch)
	for range entries {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert prefab history: %w", err)
		}
	}
	return results.Close()
}

func historyBatch(runID uuid.UUID, entries []world.HistoryEntry) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertHistory, runID, int64(e.Entity), string(e.Previous))
	}
	return batch
}
