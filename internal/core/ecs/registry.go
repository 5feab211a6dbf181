package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Has(id EntityID) bool
}

type namedStore struct {
	name  string
	store Removable
}

// Registry tracks every component store under a name. Flushing an entity
// clears it from all of them; Components lists where an entity has data.
type Registry struct {
	stores []namedStore
}

func NewRegistry() *Registry {
	return &Registry{stores: make([]namedStore, 0, 32)}
}

// Register adds a component store. Names are reported in registration order.
func (r *Registry) Register(name string, store Removable) {
	r.stores = append(r.stores, namedStore{name: name, store: store})
}

// RemoveAll clears id from every registered store and returns how many of
// them held it.
func (r *Registry) RemoveAll(id EntityID) int {
	n := 0
	for _, s := range r.stores {
		if s.store.Has(id) {
			s.store.Remove(id)
			n++
		}
	}
	return n
}

// Components returns the names of the stores holding data for id.
func (r *Registry) Components(id EntityID) []string {
	var out []string
	for _, s := range r.stores {
		if s.store.Has(id) {
			out = append(out, s.name)
		}
	}
	return out
}

// Len returns the number of registered stores.
func (r *Registry) Len() int { return len(r.stores) }
