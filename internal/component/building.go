package component

import (
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/prefab"
)

// Building marks a lot-bearing structure. RoadEdge is the edge it is
// connected to, or ecs.Null.
type Building struct {
	RoadEdge ecs.EntityID
}

// UnderConstruction drives the construction animation. Progress of 100 or
// more means complete; Speed 0 means not yet assigned.
type UnderConstruction struct {
	NewPrefab prefab.ID
	Progress  uint8
	Speed     uint8
}

// ConstructionComplete is the progress value at which a building swaps to
// its final prefab.
const ConstructionComplete = 100

// Destroyed is attached once by demolition. Cleared is zero unless the
// building collapsed.
type Destroyed struct {
	Event   ecs.EntityID
	Cleared float64
}

type ElectricityConsumer struct {
	WantedConsumption    int32
	FulfilledConsumption int32
}

type WaterConsumer struct {
	WantedConsumption int32
	FulfilledFresh    int32
	FulfilledSewage   int32
}

type GarbageProducer struct {
	Garbage int32
}

type MailProducer struct {
	SendingMail   uint16
	ReceivingMail uint16
}
