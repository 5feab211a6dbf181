package system

import (
	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/rng"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
)

// updateCranes picks a new hook target for every crane the building owns.
// Missing geometry, transforms or sub-object lists skip silently.
func (s *BuildingConstructionSystem) updateCranes(owner ecs.EntityID, r *rng.Random) {
	ref, ok := s.state.Prefabs.Value(owner)
	if !ok {
		return
	}
	geo, ok := s.catalog.Geometry(ref.Prefab)
	if !ok {
		return
	}
	ownerTransform, ok := s.state.Transforms.Value(owner)
	if !ok {
		return
	}
	subs, ok := s.state.SubObjects.Value(owner)
	if !ok {
		return
	}
	for _, sub := range subs {
		if !s.state.Crane.Has(sub) {
			continue
		}
		craneTransform, ok := s.state.Transforms.Value(sub)
		if !ok {
			continue
		}
		craneRef, ok := s.state.Prefabs.Value(sub)
		if !ok {
			continue
		}
		var limits *prefab.CraneData
		if cd, ok := s.catalog.Crane(craneRef.Prefab); ok {
			limits = &cd
		}
		target := CraneTarget(geo.Bounds, ownerTransform, craneTransform, limits, r)
		s.state.POI.Set(sub, component.PointOfInterest{Position: target, IsValid: true})
	}
}

// CraneTarget draws a point inside bounds, placed by owner, and when limits
// are given pulls it into the crane's operating annulus measured in the
// crane's local XZ plane.
func CraneTarget(bounds vmath.Bounds3, owner, crane vmath.Transform, limits *prefab.CraneData, r *rng.Random) vmath.Vec3 {
	local := vmath.V3(
		r.NextFloatRange(bounds.Min.X, bounds.Max.X),
		r.NextFloatRange(bounds.Min.Y, bounds.Max.Y),
		r.NextFloatRange(bounds.Min.Z, bounds.Max.Z),
	)
	pos := owner.LocalToWorld(local)
	if limits == nil {
		return pos
	}
	inCrane := crane.WorldToLocal(pos)
	xz := inCrane.XZ()
	dist := clamp(xz.Length(), limits.DistanceRange.Min, limits.DistanceRange.Max)
	inCrane = inCrane.WithXZ(xz.NormalizeSafe(vmath.V2(0, 1)).Scale(dist))
	return crane.LocalToWorld(inCrane)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
