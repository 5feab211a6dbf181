package component

import (
	"math"

	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
)

// NoElevation marks an area node that has no fixed height; terrain conforms
// underneath it and the node counts as being on the ground.
const NoElevation = -math.MaxFloat32

// Transform places an object in the world.
type Transform = vmath.Transform

// InterpolatedTransform is a render-side snapshot that settles toward the
// simulation transform over time.
type InterpolatedTransform struct {
	Position vmath.Vec3
	Rotation vmath.Quat
}

// PrefabRef links an entity to the catalog entry it was built from.
type PrefabRef struct {
	Prefab prefab.ID
}

// Owner is the back-reference from a child to the entity that created it.
type Owner struct {
	Owner ecs.EntityID
}

// SubObjects, SubAreas and SubNets are the owner-side child lists.
type (
	SubObjects []ecs.EntityID
	SubAreas   []ecs.EntityID
	SubNets    []ecs.EntityID
)

// PointOfInterest is the animation target of a crane.
type PointOfInterest struct {
	Position vmath.Vec3
	IsValid  bool
}

// MeshBatch tells the renderer which batch slot an entity occupies. 255 in
// every field means "recompute".
type MeshBatch struct {
	MeshGroup uint8
	MeshIndex uint8
	TileIndex uint8
}

// UnknownBatch is the sentinel slot value.
const UnknownBatch uint8 = 255

type MeshBatches []MeshBatch

// MeshColor carries a per-sub-mesh colour variation index.
type MeshColor struct {
	Variation uint8
}

type MeshColors []MeshColor
