package system

import (
	"github.com/urbanforge/buildsim/internal/core/ecs"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/world"
)

// CleanupSystem destroys entities tagged Deleted, unlinks them from their
// owner and from connected nodes, and clears the Updated markers at tick end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	state   *world.State
	removed int
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{state: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// LastRemoved returns how many entities the most recent Update destroyed.
func (s *CleanupSystem) LastRemoved() int { return s.removed }

func (s *CleanupSystem) Update(_ coresys.Tick) {
	st := s.state
	ids := st.Deleted.IDs()
	ecs.SortIDs(ids)
	for _, id := range ids {
		if o, ok := st.Owners.Value(id); ok {
			world.Detach(st.SubObjects, o.Owner, id)
			world.Detach(st.SubAreas, o.Owner, id)
			world.Detach(st.SubNets, o.Owner, id)
		}
		if edge, ok := st.Edges.Value(id); ok {
			s.disconnect(edge.Start, id)
			s.disconnect(edge.End, id)
		}
		st.MarkForDestruction(id)
	}
	s.removed = st.Flush()
	st.Updated.Clear()
}

func (s *CleanupSystem) disconnect(node, edge ecs.EntityID) {
	world.Detach(s.state.ConnectedEdges, node, edge)
	if list, ok := s.state.ConnectedEdges.Value(node); ok && len(list) == 0 {
		s.state.ConnectedEdges.Remove(node)
	}
}
