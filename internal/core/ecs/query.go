package ecs

// Presence is satisfied by component and tag stores.
type Presence interface {
	Has(id EntityID) bool
}

// Query selects entities from a primary id list that have every store in
// With and none of the stores in Without.
type Query struct {
	With    []Presence
	Without []Presence
}

// Filter returns the ids that match the query, preserving input order.
func (q Query) Filter(ids []EntityID) []EntityID {
	out := ids[:0:0]
	for _, id := range ids {
		if q.Matches(id) {
			out = append(out, id)
		}
	}
	return out
}

func (q Query) Matches(id EntityID) bool {
	for _, s := range q.With {
		if !s.Has(id) {
			return false
		}
	}
	for _, s := range q.Without {
		if s.Has(id) {
			return false
		}
	}
	return true
}

// Chunk splits ids into consecutive batches of at most size entries.
func Chunk(ids []EntityID, size int) [][]EntityID {
	if size <= 0 {
		size = len(ids)
	}
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]EntityID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
