package world

import (
	"cmp"
	"slices"
	"sync"

	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
)

// HistoryEntry records the prefab an entity had before its construction
// completed.
type HistoryEntry struct {
	Entity   ecs.EntityID
	Previous prefab.ID
}

// PrefabHistory is the write-once map entity -> previous prefab consumed by
// the terrain system. The first write for an entity wins.
type PrefabHistory struct {
	mu      sync.Mutex
	entries map[ecs.EntityID]prefab.ID
	pending []HistoryEntry
}

func NewPrefabHistory() *PrefabHistory {
	return &PrefabHistory{entries: make(map[ecs.EntityID]prefab.ID)}
}

// TryAdd records previous for e unless e already has an entry.
func (h *PrefabHistory) TryAdd(e ecs.EntityID, previous prefab.ID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.entries[e]; ok {
		return false
	}
	h.entries[e] = previous
	h.pending = append(h.pending, HistoryEntry{Entity: e, Previous: previous})
	return true
}

func (h *PrefabHistory) Get(e ecs.EntityID) (prefab.ID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.entries[e]
	return id, ok
}

func (h *PrefabHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// TakePending returns the entries added since the last call, ordered by
// entity id.
func (h *PrefabHistory) TakePending() []HistoryEntry {
	h.mu.Lock()
	out := h.pending
	h.pending = nil
	h.mu.Unlock()
	sortEntries(out)
	return out
}

// Requeue puts entries back for the next TakePending, used when publishing
// failed.
func (h *PrefabHistory) Requeue(entries []HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	h.mu.Lock()
	h.pending = append(entries, h.pending...)
	h.mu.Unlock()
}

func sortEntries(es []HistoryEntry) {
	slices.SortFunc(es, func(a, b HistoryEntry) int { return cmp.Compare(a.Entity, b.Entity) })
}
