// Package scenario loads YAML descriptions of a starting city block and the
// demolition requests to issue while it runs.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/vmath"
	"github.com/urbanforge/buildsim/internal/world"
)

// ErrUnknownRef is returned when a scenario names an entity it never
// declares.
var ErrUnknownRef = errors.New("unknown entity reference")

type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) vec() vmath.Vec3 { return vmath.V3(v.X, v.Y, v.Z) }

type ConstructionDef struct {
	NewPrefab prefab.ID `yaml:"new_prefab"`
	Progress  uint8     `yaml:"progress"`
	Speed     uint8     `yaml:"speed"`
}

// AreaDef is a pre-existing sub-area of an entity. Elevated areas get a fixed
// elevation on every node; the rest lie on the ground.
type AreaDef struct {
	Prefab   prefab.ID `yaml:"prefab"`
	Elevated bool      `yaml:"elevated"`
	Size     float64   `yaml:"size"`
}

type EntityDef struct {
	Name         string           `yaml:"name"`
	Prefab       prefab.ID        `yaml:"prefab"`
	Position     Vec3             `yaml:"position"`
	RotationY    float64          `yaml:"rotation_y"` // degrees
	Owner        string           `yaml:"owner"`
	Building     bool             `yaml:"building"`
	RoadEdge     string           `yaml:"road_edge"`
	Crane        bool             `yaml:"crane"`
	Native       bool             `yaml:"native"`
	Services     []string         `yaml:"services"`
	Construction *ConstructionDef `yaml:"construction"`
	Areas        []AreaDef        `yaml:"areas"`
}

type DestroyDef struct {
	Tick   int    `yaml:"tick"`
	Object string `yaml:"object"`
	Cause  string `yaml:"cause"`
}

type Scenario struct {
	Name     string       `yaml:"name"`
	Seed     *uint32      `yaml:"seed"`
	Ticks    int          `yaml:"ticks"`
	Entities []EntityDef  `yaml:"entities"`
	Destroy  []DestroyDef `yaml:"destroy"`
}

// Refs maps scenario names to the entities created for them.
type Refs map[string]ecs.EntityID

// Load reads and checks a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	sort.SliceStable(s.Destroy, func(i, j int) bool { return s.Destroy[i].Tick < s.Destroy[j].Tick })
	return &s, nil
}

func (s *Scenario) check() error {
	if s.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative")
	}
	names := make(map[string]struct{}, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity with prefab %q has no name", e.Prefab)
		}
		if _, dup := names[e.Name]; dup {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		names[e.Name] = struct{}{}
		for _, svc := range e.Services {
			if _, ok := services[svc]; !ok {
				return fmt.Errorf("entity %q: unknown service %q", e.Name, svc)
			}
		}
	}
	// owners may be declared after their children
	ref := func(owner, name string) error {
		if name == "" {
			return nil
		}
		if _, ok := names[name]; !ok {
			return fmt.Errorf("%s: %w %q", owner, ErrUnknownRef, name)
		}
		return nil
	}
	for _, e := range s.Entities {
		if err := ref(e.Name, e.Owner); err != nil {
			return err
		}
		if err := ref(e.Name, e.RoadEdge); err != nil {
			return err
		}
	}
	for _, d := range s.Destroy {
		if d.Object == "" {
			return fmt.Errorf("destroy at tick %d: %w %q", d.Tick, ErrUnknownRef, d.Object)
		}
		if err := ref(fmt.Sprintf("destroy at tick %d", d.Tick), d.Object); err != nil {
			return err
		}
		if err := ref(fmt.Sprintf("destroy at tick %d", d.Tick), d.Cause); err != nil {
			return err
		}
	}
	return nil
}

var services = map[string]func(*world.State, ecs.EntityID){
	"electricity": func(ws *world.State, e ecs.EntityID) {
		ws.Electricity.Put(e, component.ElectricityConsumer{})
	},
	"water":   func(ws *world.State, e ecs.EntityID) { ws.Water.Put(e, component.WaterConsumer{}) },
	"garbage": func(ws *world.State, e ecs.EntityID) { ws.Garbage.Put(e, component.GarbageProducer{}) },
	"mail":    func(ws *world.State, e ecs.EntityID) { ws.Mail.Put(e, component.MailProducer{}) },
}

// Apply creates the scenario's entities in ws. Every prefab must exist in
// cat.
func (s *Scenario) Apply(ws *world.State, cat *prefab.Catalog) (Refs, error) {
	for _, e := range s.Entities {
		if err := known(cat, e.Name, e.Prefab); err != nil {
			return nil, err
		}
		if e.Construction != nil && !e.Construction.NewPrefab.IsNull() {
			if err := known(cat, e.Name, e.Construction.NewPrefab); err != nil {
				return nil, err
			}
		}
		for _, a := range e.Areas {
			if err := known(cat, e.Name, a.Prefab); err != nil {
				return nil, err
			}
		}
	}

	refs := make(Refs, len(s.Entities))
	for _, e := range s.Entities {
		refs[e.Name] = ws.CreateEntity()
	}
	for _, def := range s.Entities {
		id := refs[def.Name]
		tr := vmath.NewTransform(def.Position.vec(), vmath.RotateY(def.RotationY*math.Pi/180))
		ws.Transforms.Put(id, tr)
		ws.Prefabs.Put(id, component.PrefabRef{Prefab: def.Prefab})
		if def.Owner != "" {
			world.Attach(ws, ws.SubObjects, refs[def.Owner], id)
		}
		if def.Building {
			ws.Buildings.Put(id, component.Building{RoadEdge: refs[def.RoadEdge]})
		}
		if def.Crane {
			ws.Crane.Add(id)
		}
		if def.Native {
			ws.Native.Add(id)
		}
		for _, svc := range def.Services {
			services[svc](ws, id)
		}
		if c := def.Construction; c != nil {
			ws.Construction.Put(id, component.UnderConstruction{
				NewPrefab: c.NewPrefab,
				Progress:  c.Progress,
				Speed:     c.Speed,
			})
		}
		for _, a := range def.Areas {
			applyArea(ws, cat, id, tr, a)
		}
	}
	return refs, nil
}

func applyArea(ws *world.State, cat *prefab.Catalog, owner ecs.EntityID, tr vmath.Transform, def AreaDef) {
	id := ws.CreateEntity()
	ws.Prefabs.Put(id, component.PrefabRef{Prefab: def.Prefab})
	size := def.Size
	if size <= 0 {
		size = 1
	}
	elevation := component.NoElevation
	if def.Elevated {
		elevation = tr.Position.Y
	}
	corners := []vmath.Vec3{
		vmath.V3(-size, 0, -size), vmath.V3(size, 0, -size),
		vmath.V3(size, 0, size), vmath.V3(-size, 0, size),
	}
	nodes := make(component.AreaNodes, len(corners))
	for i, c := range corners {
		nodes[i] = component.AreaNode{Position: tr.LocalToWorld(c), Elevation: elevation}
	}
	ws.AreaNodes.Put(id, nodes)

	area := component.Area{Flags: component.AreaComplete}
	if data, ok := cat.Area(def.Prefab); ok {
		area.Type = data.Type
		if data.Clip {
			ws.Clip.Add(id)
		}
		if data.Type == prefab.AreaSpace {
			ws.Space.Add(id)
		}
	}
	ws.Areas.Put(id, area)
	world.Attach(ws, ws.SubAreas, owner, id)
}

func known(cat *prefab.Catalog, entity string, id prefab.ID) error {
	if _, ok := cat.Get(id); !ok {
		return fmt.Errorf("entity %q: %w %q", entity, prefab.ErrUnknownPrefab, id)
	}
	return nil
}

// Requests returns the destroy requests scheduled for tick.
func (s *Scenario) Requests(tick int, refs Refs) []event.Destroy {
	var out []event.Destroy
	for _, d := range s.Destroy {
		if d.Tick != tick {
			continue
		}
		out = append(out, event.Destroy{Object: refs[d.Object], Event: refs[d.Cause]})
	}
	return out
}

// LastTick returns the tick of the final scheduled request, or -1.
func (s *Scenario) LastTick() int {
	if len(s.Destroy) == 0 {
		return -1
	}
	return s.Destroy[len(s.Destroy)-1].Tick
}
