package system

import (
	"math"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/rng"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
)

// RingPoints is the vertex count of a rubble outline.
const RingPoints = 32

const (
	ringNoise   = 0.025
	ringMinFreq = 3
	ringMaxFreq = 10 // exclusive
)

// CollapseBasis is the world-space frame a rubble ring is laid out in.
// Right and Forward span the half extents of the sub-mesh footprint.
type CollapseBasis struct {
	Center  vmath.Vec3
	Right   vmath.Vec3
	Forward vmath.Vec3
}

// NewCollapseBasis derives the frame from a mesh's bounds, the sub-mesh
// placement and the owner transform.
func NewCollapseBasis(bounds vmath.Bounds3, sm prefab.SubMesh, owner vmath.Transform) CollapseBasis {
	c := bounds.Center()
	e := bounds.Extents()
	right := sm.Rotation.Rotate(vmath.V3(e.X, 0, 0))
	forward := sm.Rotation.Rotate(vmath.V3(0, 0, e.Z))
	center := sm.Position.Add(sm.Rotation.Rotate(vmath.V3(c.X, 0, c.Z)))
	return CollapseBasis{
		Center:  owner.LocalToWorld(center),
		Right:   owner.Rotation.Rotate(right),
		Forward: owner.Rotation.Rotate(forward),
	}
}

// CollapseRing draws the unit-scale rubble outline: 32 directions pulled
// toward a rounded square by a signed square root and roughened by four
// sine harmonics sharing one phase.
func CollapseRing(r *rng.Random) [RingPoints]vmath.Vec2 {
	var freq [4]float64
	for k := range freq {
		freq[k] = float64(r.NextIntRange(ringMinFreq, ringMaxFreq))
	}
	phase := r.NextFloatRange(-math.Pi, math.Pi)

	var ring [RingPoints]vmath.Vec2
	step := -2 * math.Pi / RingPoints
	for j := range ring {
		theta := float64(j) * step
		d := vmath.V2(math.Cos(theta), math.Sin(theta)).SignSqrt()
		noise := 0.0
		for _, f := range freq {
			noise += math.Sin(theta*f + phase)
		}
		ring[j] = d.Scale(1 + ringNoise*noise)
	}
	return ring
}

// Place maps ring points into world-space area nodes with no fixed
// elevation.
func (b CollapseBasis) Place(ring [RingPoints]vmath.Vec2) component.AreaNodes {
	nodes := make(component.AreaNodes, RingPoints)
	for j, d := range ring {
		nodes[j] = component.AreaNode{
			Position:  b.Center.Add(b.Right.Scale(d.X)).Add(b.Forward.Scale(d.Y)),
			Elevation: component.NoElevation,
		}
	}
	return nodes
}

// synthesizeRubble stages one collapsed-surface area per renderable sub-mesh
// of the demolished entity and returns the staged ids.
func (c *cascade) synthesizeRubble(e ecs.EntityID, id prefab.ID) []ecs.EntityID {
	st := c.sys.state
	cat := c.sys.catalog
	cb := c.commands

	surface := cat.Configuration().CollapsedSurface
	if surface.IsNull() {
		return nil
	}
	owner, ok := st.Transforms.Value(e)
	if !ok {
		return nil
	}
	native := st.Native.Has(e)

	var created []ecs.EntityID
	for _, sm := range cat.SubMeshes(id) {
		mesh, ok := cat.Mesh(sm.Mesh)
		if !ok {
			continue
		}
		basis := NewCollapseBasis(mesh.Bounds, sm, owner)

		resolved := surface
		if len(cat.Variants(surface)) > 0 {
			sel, _, ok := cat.SelectAreaPrefab(surface, nil, &c.random)
			if !ok {
				continue
			}
			resolved = sel
		}
		area, ok := cat.Area(resolved)
		if !ok {
			continue
		}

		rubble := cb.CreateEntity()
		world.Set(cb, st.Prefabs, rubble, component.PrefabRef{Prefab: resolved})
		world.Set(cb, st.Owners, rubble, component.Owner{Owner: e})
		if native {
			cb.Tag(st.Native, rubble)
		}
		world.Set(cb, st.AreaNodes, rubble, basis.Place(CollapseRing(&c.random)))
		world.Set(cb, st.Areas, rubble, component.Area{Type: area.Type, Flags: component.AreaComplete})
		created = append(created, rubble)
	}
	return created
}
