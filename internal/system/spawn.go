package system

import (
	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

// SpawnStats summarizes one tick of spawning.
type SpawnStats struct {
	Areas    int
	Edges    int
	Nodes    int
	Orphaned int
}

// Total returns the number of definitions consumed.
func (s SpawnStats) Total() int { return s.Areas + s.Edges + s.Orphaned }

// SpawnSystem turns creation definitions staged by a prefab transition into
// live areas and net segments and links them to their owner. Phase 3
// (Apply), after BarrierSystem.
type SpawnSystem struct {
	state   *world.State
	catalog *prefab.Catalog
	log     *zap.Logger
	last    SpawnStats
}

func NewSpawnSystem(ws *world.State, catalog *prefab.Catalog, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{state: ws, catalog: catalog, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhaseApply }

func (s *SpawnSystem) LastStats() SpawnStats { return s.last }

func (s *SpawnSystem) Update(t coresys.Tick) {
	s.last = SpawnStats{}
	ids := s.state.Definitions.IDs()
	if len(ids) == 0 {
		return
	}
	ecs.SortIDs(ids)

	for _, id := range ids {
		def, ok := s.state.Definitions.Value(id)
		if !ok {
			continue
		}
		s.state.Definitions.Remove(id)

		if !s.state.Alive(def.Owner) || s.state.Deleted.Has(def.Owner) {
			s.state.Courses.Remove(id)
			s.state.Deleted.Add(id)
			s.last.Orphaned++
			continue
		}
		s.state.Prefabs.Put(id, component.PrefabRef{Prefab: def.Prefab})

		if course, ok := s.state.Courses.Value(id); ok {
			s.state.Courses.Remove(id)
			s.spawnEdge(id, def, course)
			continue
		}
		s.spawnArea(id, def)
	}

	s.log.Debug("spawned definitions",
		zap.Uint32("frame", t.Frame),
		zap.Int("areas", s.last.Areas),
		zap.Int("edges", s.last.Edges),
		zap.Int("nodes", s.last.Nodes),
		zap.Int("orphaned", s.last.Orphaned))
}

func (s *SpawnSystem) spawnArea(id ecs.EntityID, def component.CreationDefinition) {
	st := s.state
	area := component.Area{}
	if data, ok := s.catalog.Area(def.Prefab); ok {
		area.Type = data.Type
		if data.Clip {
			st.Clip.Add(id)
		}
		if data.Type == prefab.AreaSpace {
			st.Space.Add(id)
		}
	}
	st.Areas.Put(id, area)
	world.Attach(st, st.SubAreas, def.Owner, id)
	s.last.Areas++
}

// spawnEdge makes id an edge between two nodes. Nodes of the same owner at
// the same position are shared so sub-nets built together stay connected.
func (s *SpawnSystem) spawnEdge(id ecs.EntityID, def component.CreationDefinition, course component.NetCourse) {
	st := s.state
	start := s.node(def, course.StartPosition)
	end := s.node(def, course.EndPosition)

	st.Edges.Put(id, component.Edge{Start: start, End: end})
	world.Attach(st, st.SubNets, def.Owner, id)
	for _, n := range []ecs.EntityID{start, end} {
		if list, ok := st.ConnectedEdges.Get(n); ok {
			*list = append(*list, id)
		} else {
			st.ConnectedEdges.Put(n, component.ConnectedEdges{id})
		}
		if start == end {
			break
		}
	}
	s.last.Edges++
}

func (s *SpawnSystem) node(def component.CreationDefinition, pos component.CoursePos) ecs.EntityID {
	st := s.state
	if n, ok := s.findNode(def.Owner, pos.Position); ok {
		return n
	}
	n := st.CreateEntity()
	st.Transforms.Put(n, vmath.Transform{Position: pos.Position, Rotation: pos.Rotation})
	st.Prefabs.Put(n, component.PrefabRef{Prefab: def.Prefab})
	st.Updated.Add(n)
	world.Attach(st, st.SubNets, def.Owner, n)
	s.last.Nodes++
	return n
}

func (s *SpawnSystem) findNode(owner ecs.EntityID, p vmath.Vec3) (ecs.EntityID, bool) {
	st := s.state
	nets, ok := st.SubNets.Value(owner)
	if !ok {
		return ecs.Null, false
	}
	for _, n := range nets {
		if st.Edges.Has(n) || st.Deleted.Has(n) {
			continue
		}
		if tr, ok := st.Transforms.Value(n); ok && tr.Position.Equal(p) {
			return n, true
		}
	}
	return ecs.Null, false
}
