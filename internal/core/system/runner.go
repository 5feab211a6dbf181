package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and owns the frame counter.
type Runner struct {
	systems       []System
	sorted        bool
	frame         uint32
	framesPerTick uint32
}

// NewRunner creates a runner that advances the frame counter by framesPerTick
// after every tick. Values below 1 are treated as 1.
func NewRunner(framesPerTick uint32) *Runner {
	if framesPerTick == 0 {
		framesPerTick = 1
	}
	return &Runner{
		systems:       make([]System, 0, 16),
		framesPerTick: framesPerTick,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Frame returns the frame the next tick will run at.
func (r *Runner) Frame() uint32 { return r.frame }

// SetFrame moves the frame counter, used when resuming a scenario.
func (r *Runner) SetFrame(f uint32) { r.frame = f }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	t := Tick{Frame: r.frame, Delta: dt}
	for _, s := range r.systems {
		s.Update(t)
	}
	r.frame += r.framesPerTick
}

// TickPhase runs only the systems of one phase at the current frame without
// advancing the counter.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	t := Tick{Frame: r.frame, Delta: dt}
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(t)
		}
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
