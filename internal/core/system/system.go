package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: swap event buffers, dispatch requests
	PhasePreUpdate               // 1: destroy cascades
	PhaseUpdate                  // 2: construction progress
	PhaseApply                   // 3: replay staged command buffers
	PhasePersist                 // 4: publish outputs, journal
	PhaseCleanup                 // 5: destroy deleted entities, clear markers
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhaseApply:
		return "apply"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// Tick is the clock handed to every system. Frame is the simulation frame
// counter and only ever increases.
type Tick struct {
	Frame uint32
	Delta time.Duration
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(t Tick)
}
