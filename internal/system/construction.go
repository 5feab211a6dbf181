package system

import (
	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/core/rng"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minConstructionSpeed = 39
	maxConstructionSpeed = 89 // exclusive
	craneUpdateChance    = 10 // one in N ticks
)

// ConstructionConfig holds the tunables of BuildingConstructionSystem.
type ConstructionConfig struct {
	Workers         int
	BatchSize       int
	FastSpawn       bool
	LeftHandTraffic bool
}

// ConstructionStats summarizes one tick of construction.
type ConstructionStats struct {
	Scanned      int
	Advanced     int
	Completed    int
	CraneUpdates int
}

func (s *ConstructionStats) add(o ConstructionStats) {
	s.Scanned += o.Scanned
	s.Advanced += o.Advanced
	s.Completed += o.Completed
	s.CraneUpdates += o.CraneUpdates
}

// BuildingConstructionSystem advances every building under construction and
// swaps completed ones into their final prefab. Phase 2 (Update).
//
// Entities are split into batches that run on a bounded worker pool. Each
// batch owns its random stream and command buffer; buffers are handed to the
// barrier in batch order once all batches finished.
type BuildingConstructionSystem struct {
	state   *world.State
	catalog *prefab.Catalog
	barrier *world.Barrier
	bus     *event.Bus
	seeds   *rng.SeedSource
	cfg     ConstructionConfig
	log     *zap.Logger
	query   ecs.Query
	last    ConstructionStats
}

func NewBuildingConstructionSystem(ws *world.State, catalog *prefab.Catalog, barrier *world.Barrier, bus *event.Bus, seeds *rng.SeedSource, cfg ConstructionConfig, log *zap.Logger) *BuildingConstructionSystem {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &BuildingConstructionSystem{
		state:   ws,
		catalog: catalog,
		barrier: barrier,
		bus:     bus,
		seeds:   seeds,
		cfg:     cfg,
		log:     log,
		query: ecs.Query{
			With:    []ecs.Presence{ws.Buildings},
			Without: []ecs.Presence{ws.Destroyed, ws.Deleted, ws.Temp},
		},
	}
}

func (s *BuildingConstructionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

// LastStats returns the summary of the most recent Update.
func (s *BuildingConstructionSystem) LastStats() ConstructionStats { return s.last }

// constructionBatch is the per-goroutine working set.
type constructionBatch struct {
	random    rng.Random
	commands  *world.CommandBuffer
	cache     prefab.VariantCache
	stats     ConstructionStats
	completed []event.BuildingCompleted
}

func (s *BuildingConstructionSystem) Update(t coresys.Tick) {
	ids := s.query.Filter(s.state.Construction.IDs())
	s.last = ConstructionStats{}
	if len(ids) == 0 {
		return
	}
	chunks := ecs.Chunk(ids, s.cfg.BatchSize)
	seed := s.seeds.Next()

	batches := make([]*constructionBatch, len(chunks))
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, chunk := range chunks {
		b := &constructionBatch{
			random:   seed.Random(i),
			commands: world.NewCommandBuffer(s.state),
		}
		batches[i] = b
		g.Go(func() error {
			for _, id := range chunk {
				s.process(id, t.Frame, b)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, b := range batches {
		s.barrier.Submit(b.commands)
		s.last.add(b.stats)
		for _, ev := range b.completed {
			event.Emit(s.bus, ev)
		}
	}
	if s.last.Completed > 0 || s.last.Advanced > 0 {
		s.log.Debug("construction tick",
			zap.Uint32("frame", t.Frame),
			zap.Int("scanned", s.last.Scanned),
			zap.Int("advanced", s.last.Advanced),
			zap.Int("completed", s.last.Completed),
			zap.Int("crane_updates", s.last.CraneUpdates))
	}
}

// process handles one entity. UnderConstruction is mutated in place; the
// entity belongs to exactly one batch so no other goroutine touches it.
func (s *BuildingConstructionSystem) process(id ecs.EntityID, frame uint32, b *constructionBatch) {
	uc, ok := s.state.Construction.Get(id)
	if !ok {
		return
	}
	b.stats.Scanned++

	if uc.Progress < component.ConstructionComplete {
		b.stats.Advanced++
		if uc.Speed == 0 {
			uc.Speed = uint8(b.random.NextIntRange(minConstructionSpeed, maxConstructionSpeed))
		}
		if s.cfg.FastSpawn {
			uc.Progress = component.ConstructionComplete
			return
		}
		if uc.Progress == 0 {
			uc.Progress = 1
			s.updateCranes(id, &b.random)
			b.stats.CraneUpdates++
			return
		}
		uc.Progress = AdvanceProgress(uc.Progress, uc.Speed, frame)
		if b.random.NextIntN(craneUpdateChance) == 0 {
			s.updateCranes(id, &b.random)
			b.stats.CraneUpdates++
		}
		return
	}

	ref, ok := s.state.Prefabs.Value(id)
	if !ok {
		return
	}
	if uc.NewPrefab.IsNull() {
		uc.NewPrefab = ref.Prefab
	}
	if b.cache == nil {
		b.cache = prefab.VariantCache{}
	}
	s.applyTransition(id, uc.NewPrefab, b)
	world.Remove(b.commands, s.state.Construction, id)
	s.state.History.TryAdd(id, ref.Prefab)

	b.stats.Completed++
	b.completed = append(b.completed, event.BuildingCompleted{
		Entity:   id,
		Previous: ref.Prefab,
		Prefab:   uc.NewPrefab,
		Frame:    frame,
	})
	s.log.Debug("building completed",
		zap.Stringer("entity", id),
		zap.String("from", string(ref.Prefab)),
		zap.String("to", string(uc.NewPrefab)))
}

// AdvanceProgress applies one tick of the eased progress curve. The step is
// the difference of floor((a+1)*speed/128) and floor(a*speed/128) with
// a = frame/64 + speed, saturating at 255.
func AdvanceProgress(progress, speed uint8, frame uint32) uint8 {
	a := uint64(frame>>6) + uint64(speed)
	lo := a * uint64(speed) >> 7
	hi := (a + 1) * uint64(speed) >> 7
	return uint8(min(255, uint64(progress)+hi-lo))
}
