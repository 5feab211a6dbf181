package system

import (
	"context"
	"time"

	"github.com/urbanforge/buildsim/internal/core/event"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

// UpgradeSink receives previous-prefab entries. Implemented by
// persist.UpgradeRepo.
type UpgradeSink interface {
	RecordPrevious(ctx context.Context, entries []world.HistoryEntry) error
}

// DemolitionSink receives demolished entities. Implemented by
// persist.DemolitionRepo.
type DemolitionSink interface {
	RecordBatch(ctx context.Context, events []event.Demolished) error
}

// PersistenceSystem periodically publishes the previous-prefab map and the
// demolition ledger. Phase 4 (Persist). Failed batches stay queued and are
// retried on the next interval.
type PersistenceSystem struct {
	state       *world.State
	upgrades    UpgradeSink
	demolitions DemolitionSink
	log         *zap.Logger
	interval    int
	timeout     time.Duration
	tickCount   int

	pending []event.Demolished
}

func NewPersistenceSystem(ws *world.State, bus *event.Bus, upgrades UpgradeSink, demolitions DemolitionSink, log *zap.Logger, intervalTicks int, timeout time.Duration) *PersistenceSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &PersistenceSystem{
		state:       ws,
		upgrades:    upgrades,
		demolitions: demolitions,
		log:         log,
		interval:    intervalTicks,
		timeout:     timeout,
	}
	event.Subscribe(bus, func(ev event.Demolished) {
		s.pending = append(s.pending, ev)
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

// PendingDemolitions returns the number of demolitions not yet published.
func (s *PersistenceSystem) PendingDemolitions() int { return len(s.pending) }

func (s *PersistenceSystem) Update(_ coresys.Tick) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.publish()
}

// Flush publishes everything immediately. Called on shutdown.
func (s *PersistenceSystem) Flush() {
	s.publish()
}

func (s *PersistenceSystem) publish() {
	if s.upgrades != nil {
		if entries := s.state.History.TakePending(); len(entries) > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			err := s.upgrades.RecordPrevious(ctx, entries)
			cancel()
			if err != nil {
				s.state.History.Requeue(entries)
				s.log.Warn("publish prefab history failed", zap.Int("entries", len(entries)), zap.Error(err))
			} else {
				s.log.Debug("published prefab history", zap.Int("entries", len(entries)))
			}
		}
	}

	if s.demolitions != nil && len(s.pending) > 0 {
		batch := s.pending
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.demolitions.RecordBatch(ctx, batch)
		cancel()
		if err != nil {
			s.log.Warn("publish demolitions failed", zap.Int("events", len(batch)), zap.Error(err))
			return
		}
		s.pending = s.pending[len(batch):]
		s.log.Debug("published demolitions", zap.Int("events", len(batch)))
	}
}
