package world

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
)

func TestCommandBuffer_StagesUntilPlayback(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	cb := NewCommandBuffer(s)

	Set(cb, s.Prefabs, e, component.PrefabRef{Prefab: "office"})
	cb.Tag(s.Updated, e)

	assert.False(t, s.Prefabs.Has(e))
	assert.False(t, s.Updated.Has(e))

	stats := cb.Playback()

	ref, ok := s.Prefabs.Value(e)
	require.True(t, ok)
	assert.Equal(t, prefab.ID("office"), ref.Prefab)
	assert.True(t, s.Updated.Has(e))
	assert.Equal(t, 1, stats.ByKind[CmdSet])
	assert.Equal(t, 1, stats.ByKind[CmdTag])
	assert.Equal(t, 0, cb.Len())
}

func TestCommandBuffer_PlaceholdersResolve(t *testing.T) {
	s := NewState()
	owner := s.CreateEntity()
	cb := NewCommandBuffer(s)

	child := cb.CreateEntity()
	assert.True(t, IsPlaceholder(child))
	Set(cb, s.Owners, child, component.Owner{Owner: owner})
	Append(cb, s.SubAreas, owner, child)

	stats := cb.Playback()
	require.Len(t, stats.Created, 1)
	id := stats.Created[0]

	assert.True(t, s.Alive(id))
	o, ok := s.Owners.Value(id)
	require.True(t, ok)
	assert.Equal(t, owner, o.Owner)
	list, ok := s.SubAreas.Value(owner)
	require.True(t, ok)
	assert.Equal(t, component.SubAreas{id}, list)
}

func TestCommandBuffer_SkipsDeadTargets(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	cb := NewCommandBuffer(s)
	cb.Tag(s.Updated, e)

	s.MarkForDestruction(e)
	require.Equal(t, 1, s.Flush())

	stats := cb.Playback()
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, s.Updated.Len())
}

func TestCommandBuffer_RemoveAndUntag(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	s.Construction.Put(e, component.UnderConstruction{Progress: 100})
	s.Crane.Add(e)

	cb := NewCommandBuffer(s)
	Remove(cb, s.Construction, e)
	cb.Untag(s.Crane, e)
	assert.Equal(t, "UnderConstruction", cb.Commands()[0].Component)
	cb.Playback()

	assert.False(t, s.Construction.Has(e))
	assert.False(t, s.Crane.Has(e))
}

func TestBarrier_ReplaysInSubmissionOrder(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	b := NewBarrier()

	first := NewCommandBuffer(s)
	Set(first, s.Prefabs, e, component.PrefabRef{Prefab: "a"})
	second := NewCommandBuffer(s)
	Set(second, s.Prefabs, e, component.PrefabRef{Prefab: "b"})

	b.Submit(first)
	b.Submit(second)
	b.Submit(NewCommandBuffer(s))
	assert.Equal(t, 2, b.Pending())

	stats := b.Playback()
	assert.Equal(t, 2, stats.Total())
	ref, _ := s.Prefabs.Value(e)
	assert.Equal(t, prefab.ID("b"), ref.Prefab)
	assert.Equal(t, 0, b.Pending())
}

func TestFlush_RemovesAllComponents(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	s.Prefabs.Put(e, component.PrefabRef{Prefab: "x"})
	s.Deleted.Add(e)
	s.POI.Set(e, component.PointOfInterest{IsValid: true})

	s.MarkForDestruction(e)
	s.Flush()

	assert.False(t, s.Alive(e))
	assert.False(t, s.Prefabs.Has(e))
	assert.False(t, s.Deleted.Has(e))
	_, ok := s.POI.Get(e)
	assert.False(t, ok)
}

func TestAttach_CreatesAndExtendsList(t *testing.T) {
	s := NewState()
	owner := s.CreateEntity()
	a, b := s.CreateEntity(), s.CreateEntity()

	Attach(s, s.SubObjects, owner, a)
	Attach(s, s.SubObjects, owner, b)

	list, ok := s.SubObjects.Value(owner)
	require.True(t, ok)
	assert.Equal(t, component.SubObjects{a, b}, list)
	o, _ := s.Owners.Value(b)
	assert.Equal(t, owner, o.Owner)
}

func TestDetach_RemovesOnlyChild(t *testing.T) {
	s := NewState()
	owner := s.CreateEntity()
	a, b := s.CreateEntity(), s.CreateEntity()
	Attach(s, s.SubAreas, owner, a)
	Attach(s, s.SubAreas, owner, b)

	assert.True(t, Detach(s.SubAreas, owner, a))
	assert.False(t, Detach(s.SubAreas, owner, a))
	assert.False(t, Detach(s.SubNets, owner, b))

	list, _ := s.SubAreas.Value(owner)
	assert.Equal(t, component.SubAreas{b}, list)
}

func TestPrefabHistory_WriteOnce(t *testing.T) {
	h := NewPrefabHistory()
	e := ecs.NewEntityID(3, 0)

	assert.True(t, h.TryAdd(e, "site"))
	assert.False(t, h.TryAdd(e, "other"))

	got, ok := h.Get(e)
	require.True(t, ok)
	assert.Equal(t, prefab.ID("site"), got)

	pending := h.TakePending()
	require.Len(t, pending, 1)
	assert.Empty(t, h.TakePending())

	h.Requeue(pending)
	assert.Len(t, h.TakePending(), 1)
	assert.Equal(t, 1, h.Len())
}

func TestPrefabHistory_ConcurrentWriters(t *testing.T) {
	h := NewPrefabHistory()
	e := ecs.NewEntityID(1, 0)
	var wg sync.WaitGroup
	wins := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- h.TryAdd(e, "p")
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for w := range wins {
		if w {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestEdgeQueue_DrainEmpties(t *testing.T) {
	q := NewEdgeQueue()
	q.Enqueue(ecs.NewEntityID(7, 0))
	q.Enqueue(ecs.NewEntityID(8, 0))
	assert.Equal(t, 2, q.Len())

	got := q.Drain()
	assert.Equal(t, []ecs.EntityID{ecs.NewEntityID(7, 0), ecs.NewEntityID(8, 0)}, got)
	assert.Equal(t, 0, q.Len())
}

func TestState_ComponentsNamesStores(t *testing.T) {
	s := NewState()
	e := s.CreateEntity()
	s.Prefabs.Put(e, component.PrefabRef{Prefab: "kiosk"})
	s.Crane.Add(e)
	s.POI.Set(e, component.PointOfInterest{IsValid: true})

	assert.Equal(t, []string{"PrefabRef", "Crane", "PointOfInterest"}, s.Components(e))

	s.MarkForDestruction(e)
	require.Equal(t, 1, s.Flush())
	assert.Empty(t, s.Components(e))
}
