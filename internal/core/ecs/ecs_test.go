package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }

func TestEntityPool_ReusesIndexWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.False(t, a.IsZero())
	assert.Equal(t, uint32(1), a.Index())

	p.Destroy(a)
	assert.False(t, p.Alive(a))
	p.Destroy(a) // stale, no-op

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(Null))
	assert.Equal(t, 1, p.Count())
}

func TestStore_TryGet(t *testing.T) {
	s := NewStore[position]()
	id := NewEntityID(5, 0)

	_, ok := s.Get(id)
	assert.False(t, ok)

	s.Put(id, position{X: 1})
	p, ok := s.Get(id)
	require.True(t, ok)
	p.Y = 2
	v, _ := s.Value(id)
	assert.Equal(t, position{X: 1, Y: 2}, v)

	s.Remove(id)
	assert.False(t, s.Has(id))
	assert.Zero(t, s.Len())
}

func TestStore_IDsAreSorted(t *testing.T) {
	s := NewStore[position]()
	for _, i := range []uint32{9, 2, 5} {
		s.Put(NewEntityID(i, 0), position{})
	}
	assert.Equal(t, []EntityID{NewEntityID(2, 0), NewEntityID(5, 0), NewEntityID(9, 0)}, s.IDs())
}

func TestQuery_WithWithout(t *testing.T) {
	pos := NewStore[position]()
	dead := NewTagStore()
	a, b, c := NewEntityID(1, 0), NewEntityID(2, 0), NewEntityID(3, 0)
	pos.Put(a, position{})
	pos.Put(b, position{})
	dead.Add(b)

	q := Query{With: []Presence{pos}, Without: []Presence{dead}}
	assert.Equal(t, []EntityID{a}, q.Filter([]EntityID{a, b, c}))
	assert.Empty(t, q.Filter(nil))
}

func TestChunk(t *testing.T) {
	ids := []EntityID{1, 2, 3, 4, 5}
	chunks := Chunk(ids, 2)
	assert.Equal(t, [][]EntityID{{1, 2}, {3, 4}, {5}}, chunks)
	assert.Equal(t, [][]EntityID{{1, 2, 3, 4, 5}}, Chunk(ids, 0))
	assert.Nil(t, Chunk(nil, 3))
}

func TestWorld_FlushRemovesComponents(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position]()
	tag := NewTagStore()
	w.Registry().Register("position", pos)
	w.Registry().Register("tag", tag)

	e := w.CreateEntity()
	pos.Put(e, position{X: 3})
	tag.Add(e)
	w.MarkForDestruction(e)
	w.MarkForDestruction(e)
	assert.Equal(t, 2, w.Pending())

	assert.Equal(t, 1, w.FlushDestroyQueue())
	assert.False(t, w.Alive(e))
	assert.False(t, pos.Has(e))
	assert.False(t, tag.Has(e))
	assert.Zero(t, w.Pending())
}

func TestRegistry_NamesAndRemovesHolders(t *testing.T) {
	r := NewRegistry()
	pos := NewStore[position]()
	tag := NewTagStore()
	other := NewTagStore()
	r.Register("position", pos)
	r.Register("tag", tag)
	r.Register("other", other)

	e := NewEntityID(4, 0)
	tag.Add(e)
	pos.Put(e, position{X: 1})

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"position", "tag"}, r.Components(e))
	assert.Equal(t, 2, r.RemoveAll(e))
	assert.Empty(t, r.Components(e))
	assert.Zero(t, r.RemoveAll(e))
}
