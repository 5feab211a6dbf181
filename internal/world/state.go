package world

import (
	"slices"

	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
)

// State holds every component store of the simulation plus the outputs
// handed to downstream collaborators.
//
// Stores are written from the tick goroutine only, except during the
// construction map phase where each batch touches a disjoint set of
// UnderConstruction values in place. Everything structural goes through a
// CommandBuffer. POI, History and the edge queues are safe for concurrent
// writers.
type State struct {
	ecs *ecs.World

	Transforms     *ecs.Store[component.Transform]
	Interpolated   *ecs.Store[component.InterpolatedTransform]
	Prefabs        *ecs.Store[component.PrefabRef]
	Owners         *ecs.Store[component.Owner]
	SubObjects     *ecs.Store[component.SubObjects]
	SubAreas       *ecs.Store[component.SubAreas]
	SubNets        *ecs.Store[component.SubNets]
	Buildings      *ecs.Store[component.Building]
	Construction   *ecs.Store[component.UnderConstruction]
	Destroyed      *ecs.Store[component.Destroyed]
	Electricity    *ecs.Store[component.ElectricityConsumer]
	Water          *ecs.Store[component.WaterConsumer]
	Garbage        *ecs.Store[component.GarbageProducer]
	Mail           *ecs.Store[component.MailProducer]
	MeshBatches    *ecs.Store[component.MeshBatches]
	MeshColors     *ecs.Store[component.MeshColors]
	Areas          *ecs.Store[component.Area]
	AreaNodes      *ecs.Store[component.AreaNodes]
	Edges          *ecs.Store[component.Edge]
	ConnectedEdges *ecs.Store[component.ConnectedEdges]
	Definitions    *ecs.Store[component.CreationDefinition]
	Courses        *ecs.Store[component.NetCourse]
	Upgrades       *ecs.Store[component.Upgraded]

	Crane   *ecs.TagStore
	Native  *ecs.TagStore
	Updated *ecs.TagStore
	Deleted *ecs.TagStore
	Temp    *ecs.TagStore
	Clip    *ecs.TagStore
	Space   *ecs.TagStore

	POI              *POIStore
	History          *PrefabHistory
	ElectricityQueue *EdgeQueue
	WaterQueue       *EdgeQueue
}

func NewState() *State {
	s := &State{
		ecs:              ecs.NewWorld(),
		Transforms:       ecs.NewStore[component.Transform](),
		Interpolated:     ecs.NewStore[component.InterpolatedTransform](),
		Prefabs:          ecs.NewStore[component.PrefabRef](),
		Owners:           ecs.NewStore[component.Owner](),
		SubObjects:       ecs.NewStore[component.SubObjects](),
		SubAreas:         ecs.NewStore[component.SubAreas](),
		SubNets:          ecs.NewStore[component.SubNets](),
		Buildings:        ecs.NewStore[component.Building](),
		Construction:     ecs.NewStore[component.UnderConstruction](),
		Destroyed:        ecs.NewStore[component.Destroyed](),
		Electricity:      ecs.NewStore[component.ElectricityConsumer](),
		Water:            ecs.NewStore[component.WaterConsumer](),
		Garbage:          ecs.NewStore[component.GarbageProducer](),
		Mail:             ecs.NewStore[component.MailProducer](),
		MeshBatches:      ecs.NewStore[component.MeshBatches](),
		MeshColors:       ecs.NewStore[component.MeshColors](),
		Areas:            ecs.NewStore[component.Area](),
		AreaNodes:        ecs.NewStore[component.AreaNodes](),
		Edges:            ecs.NewStore[component.Edge](),
		ConnectedEdges:   ecs.NewStore[component.ConnectedEdges](),
		Definitions:      ecs.NewStore[component.CreationDefinition](),
		Courses:          ecs.NewStore[component.NetCourse](),
		Upgrades:         ecs.NewStore[component.Upgraded](),
		Crane:            ecs.NewTagStore(),
		Native:           ecs.NewTagStore(),
		Updated:          ecs.NewTagStore(),
		Deleted:          ecs.NewTagStore(),
		Temp:             ecs.NewTagStore(),
		Clip:             ecs.NewTagStore(),
		Space:            ecs.NewTagStore(),
		POI:              NewPOIStore(),
		History:          NewPrefabHistory(),
		ElectricityQueue: NewEdgeQueue(),
		WaterQueue:       NewEdgeQueue(),
	}
	reg := s.ecs.Registry()
	for _, r := range []struct {
		name  string
		store ecs.Removable
	}{
		{"Transform", s.Transforms}, {"InterpolatedTransform", s.Interpolated},
		{"PrefabRef", s.Prefabs}, {"Owner", s.Owners},
		{"SubObjects", s.SubObjects}, {"SubAreas", s.SubAreas}, {"SubNets", s.SubNets},
		{"Building", s.Buildings}, {"UnderConstruction", s.Construction},
		{"Destroyed", s.Destroyed}, {"ElectricityConsumer", s.Electricity},
		{"WaterConsumer", s.Water}, {"GarbageProducer", s.Garbage}, {"MailProducer", s.Mail},
		{"MeshBatches", s.MeshBatches}, {"MeshColors", s.MeshColors},
		{"Area", s.Areas}, {"AreaNodes", s.AreaNodes}, {"Edge", s.Edges},
		{"ConnectedEdges", s.ConnectedEdges}, {"CreationDefinition", s.Definitions},
		{"NetCourse", s.Courses}, {"Upgraded", s.Upgrades},
		{"Crane", s.Crane}, {"Native", s.Native}, {"Updated", s.Updated},
		{"Deleted", s.Deleted}, {"Temp", s.Temp}, {"Clip", s.Clip}, {"Space", s.Space},
		{"PointOfInterest", s.POI},
	} {
		reg.Register(r.name, r.store)
	}
	return s
}

// CreateEntity allocates an entity with no components.
func (s *State) CreateEntity() ecs.EntityID {
	return s.ecs.CreateEntity()
}

func (s *State) Alive(id ecs.EntityID) bool {
	return s.ecs.Alive(id)
}

// EntityCount returns the number of live entities.
func (s *State) EntityCount() int {
	return s.ecs.Pool().Count()
}

// Components names the component stores holding data for id.
func (s *State) Components(id ecs.EntityID) []string {
	return s.ecs.Registry().Components(id)
}

// MarkForDestruction queues id for removal at the next Flush.
func (s *State) MarkForDestruction(id ecs.EntityID) {
	s.ecs.MarkForDestruction(id)
}

// Flush destroys every queued entity and drops all of its components.
func (s *State) Flush() int {
	return s.ecs.FlushDestroyQueue()
}

// Attach links child to owner through the Owner back-reference and the
// owner's list selected by lists.
func Attach[L ~[]ecs.EntityID](s *State, lists *ecs.Store[L], owner, child ecs.EntityID) {
	s.Owners.Put(child, component.Owner{Owner: owner})
	if l, ok := lists.Get(owner); ok {
		*l = append(*l, child)
		return
	}
	lists.Put(owner, L{child})
}

// Detach removes child from owner's list selected by lists. The Owner
// back-reference on child is left alone.
func Detach[L ~[]ecs.EntityID](lists *ecs.Store[L], owner, child ecs.EntityID) bool {
	l, ok := lists.Get(owner)
	if !ok {
		return false
	}
	n := len(*l)
	*l = slices.DeleteFunc(*l, func(id ecs.EntityID) bool { return id == child })
	return len(*l) != n
}
