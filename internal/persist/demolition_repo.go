package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urbanforge/buildsim/internal/core/event"
)

type DemolitionRepo struct {
	db    *DB
	runID uuid.UUID
}

func NewDemolitionRepo(db *DB, runID uuid.UUID) *DemolitionRepo {
	return &DemolitionRepo{db: db, runID: runID}
}

// RecordBatch writes a batch of demolitions in a single transaction. Either
// every row lands or none does.
func (r *DemolitionRepo) RecordBatch(ctx context.Context, events []event.Demolished) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("demolition begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ev := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO demolitions (run_id, entity_id, event_id, prefab, collapse, frame)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			r.runID, int64(ev.Entity), int64(ev.Event), string(ev.Prefab), ev.Collapse, int64(ev.Frame),
		); err != nil {
			return fmt.Errorf("demolition insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
