package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
)

const testCatalog = `
prefabs:
  - id: site
  - id: house
  - id: road
  - id: crane
  - id: plaza
    area: {type: space}
  - id: decal
    area: {type: surface, clip: true}
`

const testScenario = `
name: corner
seed: 5
ticks: 40
entities:
  - name: tower
    prefab: site
    position: {x: 10, z: 4}
    building: true
    road_edge: main
    services: [electricity, water]
    construction: {new_prefab: house}
    areas:
      - prefab: plaza
        elevated: true
        size: 3
      - prefab: decal
  - name: tower-crane
    prefab: crane
    owner: tower
    crane: true
  - name: main
    prefab: road
destroy:
  - tick: 30
    object: tower
  - tick: 12
    object: tower-crane
    cause: main
`

func catalog(t *testing.T) *prefab.Catalog {
	t.Helper()
	c, err := prefab.Parse([]byte(testCatalog))
	require.NoError(t, err)
	return c
}

func TestParse_SortsDestroyByTick(t *testing.T) {
	s, err := Parse([]byte(testScenario))
	require.NoError(t, err)
	assert.Equal(t, "corner", s.Name)
	require.NotNil(t, s.Seed)
	assert.Equal(t, uint32(5), *s.Seed)
	assert.Equal(t, 12, s.Destroy[0].Tick)
	assert.Equal(t, 30, s.LastTick())
}

func TestParse_RejectsUnknownRefs(t *testing.T) {
	cases := map[string]string{
		"owner":   "entities:\n  - {name: a, prefab: site, owner: ghost}\n",
		"road":    "entities:\n  - {name: a, prefab: site, road_edge: ghost}\n",
		"destroy": "entities:\n  - {name: a, prefab: site}\ndestroy:\n  - {tick: 1, object: ghost}\n",
		"cause":   "entities:\n  - {name: a, prefab: site}\ndestroy:\n  - {tick: 1, object: a, cause: ghost}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrUnknownRef)
		})
	}
}

func TestParse_RejectsDuplicatesAndUnknownServices(t *testing.T) {
	_, err := Parse([]byte("entities:\n  - {name: a, prefab: site}\n  - {name: a, prefab: site}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")

	_, err = Parse([]byte("entities:\n  - {name: a, prefab: site, services: [sewage]}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sewage")
}

func TestApply_BuildsEntities(t *testing.T) {
	s, err := Parse([]byte(testScenario))
	require.NoError(t, err)
	ws := world.NewState()

	refs, err := s.Apply(ws, catalog(t))
	require.NoError(t, err)
	require.Len(t, refs, 3)

	tower, crane, road := refs["tower"], refs["tower-crane"], refs["main"]
	b, ok := ws.Buildings.Value(tower)
	require.True(t, ok)
	assert.Equal(t, road, b.RoadEdge)
	assert.True(t, ws.Electricity.Has(tower))
	assert.True(t, ws.Water.Has(tower))
	assert.False(t, ws.Garbage.Has(tower))
	uc, _ := ws.Construction.Value(tower)
	assert.Equal(t, prefab.ID("house"), uc.NewPrefab)

	subs, _ := ws.SubObjects.Value(tower)
	assert.Equal(t, component.SubObjects{crane}, subs)
	assert.True(t, ws.Crane.Has(crane))

	areas, _ := ws.SubAreas.Value(tower)
	require.Len(t, areas, 2)
	plaza, decal := areas[0], areas[1]
	assert.True(t, ws.Space.Has(plaza))
	assert.True(t, ws.Clip.Has(decal))
	plazaNodes, _ := ws.AreaNodes.Value(plaza)
	assert.False(t, plazaNodes.AnyOnGround())
	assert.Equal(t, vmath.V3(7, 0, 1), plazaNodes[0].Position)
	decalNodes, _ := ws.AreaNodes.Value(decal)
	assert.True(t, decalNodes.AnyOnGround())
}

func TestApply_RejectsUnknownPrefab(t *testing.T) {
	s, err := Parse([]byte("entities:\n  - {name: a, prefab: castle}\n"))
	require.NoError(t, err)

	_, err = s.Apply(world.NewState(), catalog(t))
	require.ErrorIs(t, err, prefab.ErrUnknownPrefab)
}

func TestRequests(t *testing.T) {
	s, err := Parse([]byte(testScenario))
	require.NoError(t, err)
	refs, err := s.Apply(world.NewState(), catalog(t))
	require.NoError(t, err)

	assert.Empty(t, s.Requests(0, refs))
	assert.Equal(t, []event.Destroy{{Object: refs["tower-crane"], Event: refs["main"]}}, s.Requests(12, refs))
	assert.Equal(t, []event.Destroy{{Object: refs["tower"]}}, s.Requests(30, refs))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenario), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Entities, 3)

	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}
