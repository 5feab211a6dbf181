package world

import (
	"sync"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
)

// POIStore holds crane targets. Construction batches write it concurrently;
// the last writer wins.
type POIStore struct {
	mu   sync.RWMutex
	data map[ecs.EntityID]component.PointOfInterest
}

func NewPOIStore() *POIStore {
	return &POIStore{data: make(map[ecs.EntityID]component.PointOfInterest)}
}

func (s *POIStore) Set(id ecs.EntityID, poi component.PointOfInterest) {
	s.mu.Lock()
	s.data[id] = poi
	s.mu.Unlock()
}

func (s *POIStore) Get(id ecs.EntityID) (component.PointOfInterest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poi, ok := s.data[id]
	return poi, ok
}

func (s *POIStore) Remove(id ecs.EntityID) {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
}

func (s *POIStore) Has(id ecs.EntityID) bool {
	_, ok := s.Get(id)
	return ok
}

func (s *POIStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
