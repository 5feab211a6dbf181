package system

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/core/rng"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
)

const fixtureCatalog = `
configuration:
  collapsed_surface: collapsed-surface
prefabs:
  - id: site
    geometry:
      size: {x: 16, y: 12, z: 16}
      bounds: {min: {x: -8, y: 0, z: -8}, max: {x: 8, y: 12, z: 8}}
      physical: true
  - id: house
    geometry:
      size: {x: 10, y: 19.62, z: 10}
      bounds: {min: {x: -5, y: 0, z: -5}, max: {x: 5, y: 19.62, z: 5}}
      physical: true
      has_lot: true
    sub_meshes:
      - mesh: house-mesh
        position: {x: 0, y: 0, z: 0}
      - mesh: house-mesh
        position: {x: 0, y: 0, z: 8}
        rotation_y: 90
    sub_area_nodes:
      - position: {x: 4, z: 4}
      - position: {x: -4, z: -4}
      - position: {x: 4, z: -4}
      - position: {x: -4, z: 4}
    sub_areas:
      - prefab: yard
        nodes: [0, 4]
    sub_nets:
      - prefab: path
        curve: [{x: 0, z: -6}, {x: 1, z: -6}, {x: 2, z: -6}, {x: 3, z: -6}]
        node_index: [0, 1]
      - prefab: path
        curve: [{x: 3, z: -6}, {x: 3, z: -7}, {x: 3, z: -8}, {x: 3, z: -9}]
        node_index: [1, 2]
  - id: house-mesh
    mesh:
      bounds: {min: {x: -4, y: 0, z: -4}, max: {x: 4, y: 10, z: 4}}
      color_variations: 2
  - id: yard
    area: {type: space}
  - id: path
    net: {}
  - id: crane
    crane: {min_distance: 5, max_distance: 20}
  - id: shed
    geometry:
      size: {x: 4, y: 3, z: 4}
      bounds: {min: {x: -2, y: 0, z: -2}, max: {x: 2, y: 3, z: 2}}
      physical: true
  - id: tree
  - id: decal
    area: {type: surface, clip: true}
  - id: collapsed-surface
    area: {type: surface}
`

type fixture struct {
	t       *testing.T
	state   *world.State
	catalog *prefab.Catalog
	barrier *world.Barrier
	bus     *event.Bus
	seeds   *rng.SeedSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := prefab.Parse([]byte(fixtureCatalog))
	require.NoError(t, err)
	return &fixture{
		t:       t,
		state:   world.NewState(),
		catalog: cat,
		barrier: world.NewBarrier(),
		bus:     event.NewBus(),
		seeds:   rng.NewSeedSource(7),
	}
}

func (f *fixture) construction(cfg ConstructionConfig) *BuildingConstructionSystem {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 4
	}
	if cfg.Workers == 0 {
		cfg.Workers = 3
	}
	return NewBuildingConstructionSystem(f.state, f.catalog, f.barrier, f.bus, f.seeds, cfg, zap.NewNop())
}

func (f *fixture) destroyer(collapse float64) *DestroySystem {
	curve := CollapseFunc(func(float64) float64 { return collapse })
	return NewDestroySystem(f.state, f.catalog, f.barrier, f.bus, f.seeds, curve, zap.NewNop())
}

// entity creates a live entity with a prefab and a transform at pos.
func (f *fixture) entity(id prefab.ID, pos vmath.Vec3) ecs.EntityID {
	e := f.state.CreateEntity()
	f.state.Prefabs.Put(e, component.PrefabRef{Prefab: id})
	f.state.Transforms.Put(e, vmath.NewTransform(pos, vmath.Identity))
	return e
}

// site creates a building under construction that will become house.
func (f *fixture) site(progress uint8) ecs.EntityID {
	e := f.entity("site", vmath.V3(100, 0, 50))
	f.state.Buildings.Put(e, component.Building{})
	f.state.Construction.Put(e, component.UnderConstruction{NewPrefab: "house", Progress: progress})
	return e
}

// crane attaches a crane sub-object to owner.
func (f *fixture) crane(owner ecs.EntityID, pos vmath.Vec3) ecs.EntityID {
	c := f.entity("crane", pos)
	f.state.Crane.Add(c)
	world.Attach(f.state, f.state.SubObjects, owner, c)
	return c
}

func (f *fixture) apply() world.PlaybackStats {
	return f.barrier.Playback()
}

func tick(frame uint32) coresys.Tick {
	return coresys.Tick{Frame: frame}
}
