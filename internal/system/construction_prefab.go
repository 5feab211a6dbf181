package system

import (
	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/rng"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
)

// applyTransition stages the swap of id into newPrefab: prefab reference,
// render slots, colour buffer, child refresh and regeneration of sub-areas
// and sub-nets. Every missing optional list is a no-op.
func (s *BuildingConstructionSystem) applyTransition(id ecs.EntityID, newPrefab prefab.ID, b *constructionBatch) {
	st := s.state
	cb := b.commands

	world.Set(cb, st.Prefabs, id, component.PrefabRef{Prefab: newPrefab})
	cb.Tag(st.Updated, id)

	if batches, ok := st.MeshBatches.Value(id); ok {
		reset := make(component.MeshBatches, len(batches))
		for i := range reset {
			reset[i] = component.MeshBatch{
				MeshGroup: component.UnknownBatch,
				MeshIndex: component.UnknownBatch,
				TileIndex: component.UnknownBatch,
			}
		}
		world.Set(cb, st.MeshBatches, id, reset)
	}

	hasColors := s.catalog.HasColorVariations(newPrefab)
	switch {
	case hasColors && !st.MeshColors.Has(id):
		world.Set(cb, st.MeshColors, id, component.MeshColors{})
	case !hasColors && st.MeshColors.Has(id):
		world.Remove(cb, st.MeshColors, id)
	}

	if subs, ok := st.SubObjects.Value(id); ok {
		for _, sub := range subs {
			cb.Tag(st.Updated, sub)
		}
	}

	transform, hasTransform := st.Transforms.Value(id)

	if areas, ok := st.SubAreas.Value(id); ok {
		for _, a := range areas {
			cb.Tag(st.Deleted, a)
		}
	}
	if subAreas := s.catalog.SubAreas(newPrefab); len(subAreas) > 0 {
		if !st.SubAreas.Has(id) {
			world.Set(cb, st.SubAreas, id, component.SubAreas{})
		}
		b.cache.Clear()
		if hasTransform {
			s.createAreas(id, transform, subAreas, s.catalog.SubAreaNodes(newPrefab), b)
		}
	} else if st.SubAreas.Has(id) {
		world.Remove(cb, st.SubAreas, id)
	}

	if nets, ok := st.SubNets.Value(id); ok {
		s.releaseSubNets(id, nets, cb)
	}
	if subNets := s.catalog.SubNets(newPrefab); len(subNets) > 0 {
		world.Set(cb, st.SubNets, id, component.SubNets{})
		if hasTransform {
			s.createNets(id, transform, subNets, &b.random, cb)
		}
	} else if st.SubNets.Has(id) {
		world.Remove(cb, st.SubNets, id)
	}
}

// releaseSubNets decides the fate of the owner's current sub-nets. A sub-net
// that an outside edge still ends on is detached and kept; any other is
// deleted. Outside edges that survive are refreshed together with their live
// end nodes.
func (s *BuildingConstructionSystem) releaseSubNets(owner ecs.EntityID, nets component.SubNets, cb *world.CommandBuffer) {
	st := s.state
	for _, net := range nets {
		keep := false
		if connected, ok := st.ConnectedEdges.Value(net); ok {
			for _, edgeID := range connected {
				if !s.survivingEdge(owner, edgeID) {
					continue
				}
				edge, ok := st.Edges.Value(edgeID)
				if !ok {
					continue
				}
				if edge.Start == net || edge.End == net {
					keep = true
				}
				cb.Tag(st.Updated, edgeID)
				if !st.Deleted.Has(edge.Start) {
					cb.Tag(st.Updated, edge.Start)
				}
				if !st.Deleted.Has(edge.End) {
					cb.Tag(st.Updated, edge.End)
				}
			}
		}
		if keep {
			world.Remove(cb, st.Owners, net)
			cb.Tag(st.Updated, net)
		} else {
			cb.Tag(st.Deleted, net)
		}
	}
}

// survivingEdge reports whether edge outlives owner's transition: it is not
// deleted and is either unowned or owned by another live entity.
func (s *BuildingConstructionSystem) survivingEdge(owner, edge ecs.EntityID) bool {
	if s.state.Deleted.Has(edge) {
		return false
	}
	o, ok := s.state.Owners.Value(edge)
	if !ok {
		return true
	}
	return o.Owner != owner && !s.state.Deleted.Has(o.Owner)
}

// createAreas stages one creation definition per sub-area placeholder with
// its polygon walked circularly from the range's canonical first node.
func (s *BuildingConstructionSystem) createAreas(owner ecs.EntityID, transform vmath.Transform, subAreas []prefab.SubArea, nodes []prefab.SubAreaNode, b *constructionBatch) {
	st := s.state
	cb := b.commands
	for _, sa := range subAreas {
		areaPrefab := sa.Prefab
		var seed int32
		if len(s.catalog.Variants(sa.Prefab)) > 0 {
			selected, sd, ok := s.catalog.SelectAreaPrefab(sa.Prefab, b.cache, &b.random)
			if !ok {
				continue
			}
			areaPrefab, seed = selected, sd
		} else {
			seed = b.random.NextInt()
		}

		e := cb.CreateEntity()
		world.Set(cb, st.Definitions, e, component.CreationDefinition{
			Prefab:     areaPrefab,
			Owner:      owner,
			RandomSeed: seed,
			Flags:      component.CreationPermanent,
		})
		cb.Tag(st.Updated, e)

		ring := make(component.AreaNodes, 0, sa.NodeRange.Len())
		k := prefab.FirstNodeIndex(nodes, sa.NodeRange)
		for range sa.NodeRange.Len() {
			n := nodes[k]
			elevation := component.NoElevation
			if n.ParentMesh >= 0 {
				elevation = n.Position.Y
			}
			ring = append(ring, component.AreaNode{
				Position:  transform.LocalToWorld(n.Position),
				Elevation: elevation,
			})
			if k++; k == sa.NodeRange.End {
				k = sa.NodeRange.Start
			}
		}
		world.Set(cb, st.AreaNodes, e, ring)
	}
}

// createNets stages one net course per sub-net. Ends that share a node index
// are placed at the average of all curve ends naming that index.
func (s *BuildingConstructionSystem) createNets(owner ecs.EntityID, transform vmath.Transform, subNets []prefab.SubNet, r *rng.Random, cb *world.CommandBuffer) {
	shared := SharedNodePositions(subNets)
	for k := range subNets {
		sn := s.catalog.SubNetAt(subNets, k, s.cfg.LeftHandTraffic)
		s.createSubNet(owner, transform, sn, shared, r, cb)
	}
}

// SharedNodePositions averages the curve end points per shared node index.
func SharedNodePositions(subNets []prefab.SubNet) []vmath.Vec3 {
	var sums []vmath.Vec3
	var weights []float64
	add := func(idx int, p vmath.Vec3) {
		if idx < 0 {
			return
		}
		for len(sums) <= idx {
			sums = append(sums, vmath.Vec3{})
			weights = append(weights, 0)
		}
		sums[idx] = sums[idx].Add(p)
		weights[idx]++
	}
	for _, sn := range subNets {
		add(sn.NodeIndex[0], sn.Curve.A)
		add(sn.NodeIndex[1], sn.Curve.D)
	}
	for i := range sums {
		sums[i] = sums[i].Scale(1 / max(1, weights[i]))
	}
	return sums
}

func (s *BuildingConstructionSystem) createSubNet(owner ecs.EntityID, transform vmath.Transform, sn prefab.SubNet, shared []vmath.Vec3, r *rng.Random, cb *world.CommandBuffer) {
	st := s.state
	e := cb.CreateEntity()
	world.Set(cb, st.Definitions, e, component.CreationDefinition{
		Prefab:     sn.Prefab,
		Owner:      owner,
		RandomSeed: r.NextInt(),
		Flags:      component.CreationPermanent,
	})
	cb.Tag(st.Updated, e)

	world.Set(cb, st.Courses, e, BuildCourse(transform, sn, shared))
	if !sn.Upgrades.IsZero() {
		world.Set(cb, st.Upgrades, e, component.Upgraded{Flags: sn.Upgrades})
	}
}

// BuildCourse places a sub-net curve in the world and fills both course
// ends.
func BuildCourse(transform vmath.Transform, sn prefab.SubNet, shared []vmath.Vec3) component.NetCourse {
	curve := sn.Curve.Transform(transform)
	course := component.NetCourse{
		Curve: curve,
		StartPosition: component.CoursePos{
			Position:    curve.A,
			Rotation:    NodeRotation(curve.StartTangent(), transform.Rotation),
			CourseDelta: 0,
			Elevation:   sn.Curve.A.Y,
			ParentMesh:  sn.ParentMesh[0],
			Flags:       component.CourseIsFirst | component.CourseDisableMerge,
		},
		EndPosition: component.CoursePos{
			Position:    curve.D,
			Rotation:    NodeRotation(curve.EndTangent(), transform.Rotation),
			CourseDelta: 1,
			Elevation:   sn.Curve.D.Y,
			ParentMesh:  sn.ParentMesh[1],
			Flags:       component.CourseIsLast | component.CourseDisableMerge,
		},
		Length:     curve.Length(),
		FixedIndex: -1,
	}
	if i := sn.NodeIndex[0]; i >= 0 && i < len(shared) {
		course.StartPosition.Position = transform.LocalToWorld(shared[i])
	}
	if i := sn.NodeIndex[1]; i >= 0 && i < len(shared) {
		course.EndPosition.Position = transform.LocalToWorld(shared[i])
	}
	if course.StartPosition.Position.Equal(course.EndPosition.Position) {
		course.StartPosition.Flags |= component.CourseIsLast
		course.EndPosition.Flags |= component.CourseIsFirst
	}
	return course
}

// NodeRotation faces a node along the horizontal part of tangent, keeping
// fallback when the tangent is vertical or degenerate.
func NodeRotation(tangent vmath.Vec3, fallback vmath.Quat) vmath.Quat {
	tangent.Y = 0
	return vmath.LookRotationSafe(tangent, vmath.V3(0, 1, 0), fallback)
}
