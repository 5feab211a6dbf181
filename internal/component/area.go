package component

import (
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
)

type AreaFlags uint8

const (
	AreaComplete AreaFlags = 1 << iota
)

// Area is a ground polygon entity.
type Area struct {
	Type  prefab.AreaType
	Flags AreaFlags
}

// AreaNode is one polygon vertex in world space.
type AreaNode struct {
	Position  vmath.Vec3
	Elevation float64
}

// OnGround reports whether the node has no fixed elevation.
func (n AreaNode) OnGround() bool { return n.Elevation == NoElevation }

type AreaNodes []AreaNode

// AnyOnGround reports whether at least one node sits on the terrain.
func (ns AreaNodes) AnyOnGround() bool {
	for _, n := range ns {
		if n.OnGround() {
			return true
		}
	}
	return false
}
