package prefab

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/urbanforge/buildsim/internal/vmath"
)

// ErrUnknownPrefab is returned when a catalog reference names no entry.
var ErrUnknownPrefab = errors.New("unknown prefab")

// Catalog is the loaded prefab table. It is immutable after Load and safe
// for concurrent readers.
type Catalog struct {
	prefabs map[ID]*Prefab
	config  BuildingConfiguration
}

type vec3Def struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v vec3Def) vec() vmath.Vec3 { return vmath.V3(v.X, v.Y, v.Z) }

type boundsDef struct {
	Min vec3Def `yaml:"min"`
	Max vec3Def `yaml:"max"`
}

func (b boundsDef) bounds() vmath.Bounds3 {
	return vmath.Bounds3{Min: b.Min.vec(), Max: b.Max.vec()}
}

type geometryDef struct {
	Size     vec3Def   `yaml:"size"`
	Bounds   boundsDef `yaml:"bounds"`
	Physical bool      `yaml:"physical"`
	HasLot   bool      `yaml:"has_lot"`
}

type craneDef struct {
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
}

type subMeshDef struct {
	Mesh      ID      `yaml:"mesh"`
	Position  vec3Def `yaml:"position"`
	RotationY float64 `yaml:"rotation_y"` // degrees
}

type meshDef struct {
	Bounds          boundsDef `yaml:"bounds"`
	ColorVariations int       `yaml:"color_variations"`
}

type subAreaDef struct {
	Prefab ID     `yaml:"prefab"`
	Nodes  [2]int `yaml:"nodes"`
}

type subAreaNodeDef struct {
	Position   vec3Def `yaml:"position"`
	ParentMesh *int    `yaml:"parent_mesh"`
}

type upgradesDef struct {
	General []string `yaml:"general"`
	Left    []string `yaml:"left"`
	Right   []string `yaml:"right"`
}

type subNetDef struct {
	Prefab     ID          `yaml:"prefab"`
	Curve      [4]vec3Def  `yaml:"curve"`
	NodeIndex  *[2]int     `yaml:"node_index"`
	ParentMesh *[2]int     `yaml:"parent_mesh"`
	Upgrades   upgradesDef `yaml:"upgrades"`
}

type variantDef struct {
	Prefab      ID  `yaml:"prefab"`
	Probability int `yaml:"probability"`
}

type areaDef struct {
	Type string `yaml:"type"`
	Clip bool   `yaml:"clip"`
}

type netDef struct {
	Asymmetric bool `yaml:"asymmetric"`
}

type prefabDef struct {
	ID                 ID               `yaml:"id"`
	Geometry           *geometryDef     `yaml:"geometry"`
	Crane              *craneDef        `yaml:"crane"`
	Mesh               *meshDef         `yaml:"mesh"`
	Area               *areaDef         `yaml:"area"`
	Net                *netDef          `yaml:"net"`
	SubMeshes          []subMeshDef     `yaml:"sub_meshes"`
	SubAreas           []subAreaDef     `yaml:"sub_areas"`
	SubAreaNodes       []subAreaNodeDef `yaml:"sub_area_nodes"`
	SubNets            []subNetDef      `yaml:"sub_nets"`
	Variants           []variantDef     `yaml:"variants"`
	RandomizationGroup int              `yaml:"randomization_group"`
}

type configurationDef struct {
	CollapsedSurface ID `yaml:"collapsed_surface"`
	CollapseSound    ID `yaml:"collapse_sound"`
	CollapseVFX      ID `yaml:"collapse_vfx"`
}

type catalogDef struct {
	Configuration configurationDef `yaml:"configuration"`
	Prefabs       []prefabDef      `yaml:"prefabs"`
}

// Load reads, schema-validates and indexes a catalog YAML file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefab catalog: %w", err)
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML bytes.
func Parse(raw []byte) (*Catalog, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var def catalogDef
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse prefab catalog: %w", err)
	}
	c := &Catalog{
		prefabs: make(map[ID]*Prefab, len(def.Prefabs)),
		config: BuildingConfiguration{
			CollapsedSurface: def.Configuration.CollapsedSurface,
			CollapseSound:    def.Configuration.CollapseSound,
			CollapseVFX:      def.Configuration.CollapseVFX,
		},
	}
	for i := range def.Prefabs {
		p, err := def.Prefabs[i].build()
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", def.Prefabs[i].ID, err)
		}
		if _, dup := c.prefabs[p.ID]; dup {
			return nil, fmt.Errorf("prefab %q: duplicate id", p.ID)
		}
		c.prefabs[p.ID] = p
	}
	if err := c.checkReferences(); err != nil {
		return nil, err
	}
	return c, nil
}

func (d *prefabDef) build() (*Prefab, error) {
	p := &Prefab{ID: d.ID, RandomizationGroup: d.RandomizationGroup}
	if g := d.Geometry; g != nil {
		geo := &ObjectGeometry{Size: g.Size.vec(), Bounds: g.Bounds.bounds()}
		if g.Physical {
			geo.Flags |= Physical
		}
		if g.HasLot {
			geo.Flags |= HasLot
		}
		p.Geometry = geo
	}
	if cr := d.Crane; cr != nil {
		if cr.MinDistance > cr.MaxDistance {
			return nil, fmt.Errorf("crane min_distance %.2f exceeds max_distance %.2f", cr.MinDistance, cr.MaxDistance)
		}
		p.Crane = &CraneData{DistanceRange: Range{Min: cr.MinDistance, Max: cr.MaxDistance}}
	}
	if m := d.Mesh; m != nil {
		p.Mesh = &MeshData{Bounds: m.Bounds.bounds(), ColorVariations: m.ColorVariations}
	}
	if a := d.Area; a != nil {
		t, ok := areaTypeNames[a.Type]
		if !ok {
			return nil, fmt.Errorf("unknown area type %q", a.Type)
		}
		p.Area = &AreaData{Type: t, Clip: a.Clip}
	}
	if n := d.Net; n != nil {
		p.Net = &NetData{Asymmetric: n.Asymmetric}
	}
	for _, sm := range d.SubMeshes {
		p.SubMeshes = append(p.SubMeshes, SubMesh{
			Mesh:     sm.Mesh,
			Position: sm.Position.vec(),
			Rotation: vmath.RotateY(sm.RotationY * math.Pi / 180),
		})
	}
	for _, n := range d.SubAreaNodes {
		parent := -1
		if n.ParentMesh != nil {
			parent = *n.ParentMesh
		}
		p.SubAreaNodes = append(p.SubAreaNodes, SubAreaNode{Position: n.Position.vec(), ParentMesh: parent})
	}
	for _, sa := range d.SubAreas {
		r := NodeRange{Start: sa.Nodes[0], End: sa.Nodes[1]}
		if r.Start < 0 || r.End > len(p.SubAreaNodes) || r.Len() < 1 {
			return nil, fmt.Errorf("sub-area %q: node range [%d,%d) outside %d nodes", sa.Prefab, r.Start, r.End, len(p.SubAreaNodes))
		}
		p.SubAreas = append(p.SubAreas, SubArea{Prefab: sa.Prefab, NodeRange: r})
	}
	for _, sn := range d.SubNets {
		net, err := sn.build()
		if err != nil {
			return nil, fmt.Errorf("sub-net %q: %w", sn.Prefab, err)
		}
		p.SubNets = append(p.SubNets, net)
	}
	for _, v := range d.Variants {
		p.Variants = append(p.Variants, Variant{Object: v.Prefab, Probability: v.Probability})
	}
	return p, nil
}

func (d *subNetDef) build() (SubNet, error) {
	sn := SubNet{
		Prefab: d.Prefab,
		Curve: vmath.Bezier4x3{
			A: d.Curve[0].vec(),
			B: d.Curve[1].vec(),
			C: d.Curve[2].vec(),
			D: d.Curve[3].vec(),
		},
		NodeIndex:  [2]int{-1, -1},
		ParentMesh: [2]int{-1, -1},
	}
	if d.NodeIndex != nil {
		sn.NodeIndex = *d.NodeIndex
	}
	if d.ParentMesh != nil {
		sn.ParentMesh = *d.ParentMesh
	}
	var err error
	if sn.Upgrades.General, err = parseUpgrades(d.Upgrades.General); err != nil {
		return sn, err
	}
	if sn.Upgrades.Left, err = parseUpgrades(d.Upgrades.Left); err != nil {
		return sn, err
	}
	if sn.Upgrades.Right, err = parseUpgrades(d.Upgrades.Right); err != nil {
		return sn, err
	}
	return sn, nil
}

// checkReferences verifies that every prefab named inside another entry
// exists.
func (c *Catalog) checkReferences() error {
	ref := func(owner ID, what string, id ID) error {
		if id.IsNull() {
			return nil
		}
		if _, ok := c.prefabs[id]; !ok {
			return fmt.Errorf("prefab %q: %s %q: %w", owner, what, id, ErrUnknownPrefab)
		}
		return nil
	}
	for _, id := range c.IDs() {
		p := c.prefabs[id]
		for _, sm := range p.SubMeshes {
			if err := ref(id, "sub-mesh", sm.Mesh); err != nil {
				return err
			}
		}
		for _, sa := range p.SubAreas {
			if err := ref(id, "sub-area", sa.Prefab); err != nil {
				return err
			}
		}
		for _, sn := range p.SubNets {
			if err := ref(id, "sub-net", sn.Prefab); err != nil {
				return err
			}
		}
		for _, v := range p.Variants {
			if err := ref(id, "variant", v.Object); err != nil {
				return err
			}
		}
	}
	if err := ref("configuration", "collapsed surface", c.config.CollapsedSurface); err != nil {
		return err
	}
	return nil
}

// Get returns the prefab with the given id.
func (c *Catalog) Get(id ID) (*Prefab, bool) {
	p, ok := c.prefabs[id]
	return p, ok
}

// Count returns the number of prefabs loaded.
func (c *Catalog) Count() int {
	return len(c.prefabs)
}

// IDs returns every prefab id in sorted order.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, 0, len(c.prefabs))
	for id := range c.prefabs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Configuration returns the building configuration singleton.
func (c *Catalog) Configuration() BuildingConfiguration {
	return c.config
}
