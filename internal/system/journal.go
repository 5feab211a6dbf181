package system

import (
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/core/rng"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/journal"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

// RecordWriter stores one journal record. Implemented by journal.Writer.
type RecordWriter interface {
	Write(rec journal.Record) error
}

// JournalSources are the systems whose per-tick stats end up in the journal.
// Any of them may be nil.
type JournalSources struct {
	Construction *BuildingConstructionSystem
	Barrier      *BarrierSystem
	Spawn        *SpawnSystem
	Cleanup      *CleanupSystem
}

// JournalSystem drains the utility edge queues and writes one record per
// tick. Phase 4 (Persist). Completions and demolitions are picked up from the
// bus, so they appear in the record of the tick after they happened; Removed
// counts the previous tick's cleanup.
type JournalSystem struct {
	state   *world.State
	seeds   *rng.SeedSource
	sources JournalSources
	writer  RecordWriter
	runID   string
	log     *zap.Logger

	tick       uint64
	completed  []uint64
	demolished []uint64
	last       journal.Record
}

func NewJournalSystem(ws *world.State, bus *event.Bus, seeds *rng.SeedSource, sources JournalSources, writer RecordWriter, runID string, log *zap.Logger) *JournalSystem {
	s := &JournalSystem{
		state:   ws,
		seeds:   seeds,
		sources: sources,
		writer:  writer,
		runID:   runID,
		log:     log,
	}
	event.Subscribe(bus, func(ev event.BuildingCompleted) {
		s.completed = append(s.completed, uint64(ev.Entity))
	})
	event.Subscribe(bus, func(ev event.Demolished) {
		s.demolished = append(s.demolished, uint64(ev.Entity))
	})
	return s
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

// Last returns the record built by the most recent Update.
func (s *JournalSystem) Last() journal.Record { return s.last }

func (s *JournalSystem) Update(t coresys.Tick) {
	seed, _ := s.seeds.Last()
	rec := journal.Record{
		RunID:       s.runID,
		Tick:        s.tick,
		Frame:       t.Frame,
		Seed:        uint32(seed),
		Completed:   s.completed,
		Demolished:  s.demolished,
		Electricity: edgeIDs(s.state.ElectricityQueue.Drain()),
		Water:       edgeIDs(s.state.WaterQueue.Drain()),
	}
	s.completed, s.demolished = nil, nil
	s.tick++

	if b := s.sources.Barrier; b != nil {
		stats := b.LastStats()
		if len(stats.ByKind) > 0 {
			rec.Commands = make(map[string]int, len(stats.ByKind))
			for kind, n := range stats.ByKind {
				rec.Commands[kind.String()] = n
			}
		}
	}
	if sp := s.sources.Spawn; sp != nil {
		rec.Spawned = sp.LastStats().Total()
	}
	if c := s.sources.Cleanup; c != nil {
		rec.Removed = c.LastRemoved()
	}
	if c := s.sources.Construction; c != nil {
		rec.Advanced = c.LastStats().Advanced
	}
	s.last = rec

	if s.writer == nil {
		return
	}
	if err := s.writer.Write(rec); err != nil {
		s.log.Warn("journal write failed", zap.Uint64("tick", rec.Tick), zap.Error(err))
	}
}

func edgeIDs(ids []ecs.EntityID) []uint64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	for i, id := range ids {
		out[i] = uint64(id)
	}
	return out
}
