package component

import (
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
)

// Edge is a net segment between two node entities.
type Edge struct {
	Start ecs.EntityID
	End   ecs.EntityID
}

// ConnectedEdges lists the edges attached to a node.
type ConnectedEdges []ecs.EntityID

type CreationFlags uint32

const (
	CreationPermanent CreationFlags = 1 << iota
)

// CreationDefinition asks the object spawner to build an entity from a
// prefab.
type CreationDefinition struct {
	Prefab     prefab.ID
	Owner      ecs.EntityID
	RandomSeed int32
	Flags      CreationFlags
}

type CoursePosFlags uint32

const (
	CourseIsFirst CoursePosFlags = 1 << iota
	CourseIsLast
	CourseDisableMerge
)

// CoursePos is one end of a net course.
type CoursePos struct {
	Position    vmath.Vec3
	Rotation    vmath.Quat
	CourseDelta float64
	Elevation   float64
	ParentMesh  int
	Flags       CoursePosFlags
}

// NetCourse describes a net segment to be built.
type NetCourse struct {
	Curve         vmath.Bezier4x3
	StartPosition CoursePos
	EndPosition   CoursePos
	Length        float64
	FixedIndex    int
}

// Upgraded carries the upgrades applied to a net segment.
type Upgraded struct {
	Flags prefab.CompositionFlags
}
