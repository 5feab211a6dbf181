// Package prefab is the read-only catalog of templates that entities are
// instantiated from: bounding geometry, crane limits, mesh layout, sub-area
// placeholders, sub-nets, placeholder variants and area data.
package prefab

import "github.com/urbanforge/buildsim/internal/vmath"

// ID names a prefab in the catalog. The empty ID means "no prefab".
type ID string

// IsNull reports whether id refers to nothing.
func (id ID) IsNull() bool { return id == "" }

// GeometryFlags classify an object's footprint.
type GeometryFlags uint32

const (
	Physical GeometryFlags = 1 << iota
	HasLot
)

// Has reports whether every bit of want is set.
func (f GeometryFlags) Has(want GeometryFlags) bool { return f&want == want }

// ObjectGeometry is the bounding geometry of an object prefab.
type ObjectGeometry struct {
	Size   vmath.Vec3
	Bounds vmath.Bounds3
	Flags  GeometryFlags
}

// Range is a closed float interval.
type Range struct {
	Min float64
	Max float64
}

// CraneData limits where a crane may swing its hook, measured as horizontal
// distance from the crane origin.
type CraneData struct {
	DistanceRange Range
}

// SubMesh places a mesh prefab inside its owner.
type SubMesh struct {
	Mesh     ID
	Position vmath.Vec3
	Rotation vmath.Quat
}

// MeshData is the renderable part of a mesh prefab.
type MeshData struct {
	Bounds          vmath.Bounds3
	ColorVariations int
}

// NodeRange indexes a half-open slice [Start, End) of a prefab's sub-area nodes.
type NodeRange struct {
	Start int
	End   int
}

// Len returns the number of nodes in the range.
func (r NodeRange) Len() int { return r.End - r.Start }

// SubArea is a placeholder for an area the owner spawns when it is built.
type SubArea struct {
	Prefab    ID
	NodeRange NodeRange
}

// SubAreaNode is one polygon vertex in the owner's local frame. ParentMesh is
// the index of the sub-mesh the node sits on, or -1 for terrain.
type SubAreaNode struct {
	Position   vmath.Vec3
	ParentMesh int
}

// SubNet is a net segment the owner spawns when it is built. NodeIndex
// entries >= 0 name nodes shared between segments of the same owner.
type SubNet struct {
	Prefab     ID
	Curve      vmath.Bezier4x3
	NodeIndex  [2]int
	ParentMesh [2]int
	Upgrades   CompositionFlags
}

// NetData describes a net prefab.
type NetData struct {
	// Asymmetric nets are mirrored when traffic drives on the left.
	Asymmetric bool
}

// AreaType is the kind of polygon an area prefab produces.
type AreaType uint8

const (
	AreaLot AreaType = iota + 1
	AreaSurface
	AreaSpace
	AreaDistrict
)

var areaTypeNames = map[string]AreaType{
	"lot":      AreaLot,
	"surface":  AreaSurface,
	"space":    AreaSpace,
	"district": AreaDistrict,
}

func (t AreaType) String() string {
	for name, v := range areaTypeNames {
		if v == t {
			return name
		}
	}
	return "unknown"
}

// AreaData marks a prefab as an area template.
type AreaData struct {
	Type AreaType
	// Clip areas cut holes into surfaces below them.
	Clip bool
}

// Variant is one weighted alternative of a placeholder prefab.
type Variant struct {
	Object      ID
	Probability int
}

// Prefab is one catalog entry. Optional parts are nil when the prefab does
// not carry them.
type Prefab struct {
	ID       ID
	Geometry *ObjectGeometry
	Crane    *CraneData
	Mesh     *MeshData
	Area     *AreaData
	Net      *NetData

	SubMeshes    []SubMesh
	SubAreas     []SubArea
	SubAreaNodes []SubAreaNode
	SubNets      []SubNet

	Variants []Variant
	// RandomizationGroup links placeholders that must resolve to the same
	// variant index within one transition. Zero means independent.
	RandomizationGroup int
}

// BuildingConfiguration holds the catalog-wide settings consumed by demolition.
type BuildingConfiguration struct {
	CollapsedSurface ID
	CollapseSound    ID
	CollapseVFX      ID
}
