package ecs

// Store is a generic typed map store for ECS components. Values are held by
// pointer so systems can mutate a component in place after a Get.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

// Put stores a copy of c.
func (s *Store[T]) Put(id EntityID, c T) {
	s.data[id] = &c
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

// Value returns a copy of the component, or the zero value when absent.
func (s *Store[T]) Value(id EntityID) (T, bool) {
	if c, ok := s.data[id]; ok {
		return *c, true
	}
	var zero T
	return zero, false
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// IDs returns every entity holding this component in ascending order.
func (s *Store[T]) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.IDs() {
		fn(id, s.data[id])
	}
}

// TagStore records zero-sized marker components.
type TagStore struct {
	data map[EntityID]struct{}
}

func NewTagStore() *TagStore {
	return &TagStore{data: make(map[EntityID]struct{}, 64)}
}

func (s *TagStore) Add(id EntityID)      { s.data[id] = struct{}{} }
func (s *TagStore) Remove(id EntityID)   { delete(s.data, id) }
func (s *TagStore) Len() int             { return len(s.data) }
func (s *TagStore) Has(id EntityID) bool { _, ok := s.data[id]; return ok }

func (s *TagStore) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// Clear drops every tag.
func (s *TagStore) Clear() {
	clear(s.data)
}
