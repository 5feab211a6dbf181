package event

import (
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
)

// Destroy requests demolition of Object. Event is the entity that caused it
// (a tool action, disaster or similar) and ends up in Destroyed.Event.
type Destroy struct {
	Object ecs.EntityID
	Event  ecs.EntityID
}

// BuildingCompleted is emitted after a building swaps into its final prefab.
type BuildingCompleted struct {
	Entity   ecs.EntityID
	Previous prefab.ID
	Prefab   prefab.ID
	Frame    uint32
}

// Demolished is emitted once per entity a demolition cascade destroyed.
type Demolished struct {
	Entity   ecs.EntityID
	Event    ecs.EntityID
	Prefab   prefab.ID
	Collapse float64
	Frame    uint32
}
