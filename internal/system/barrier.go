package system

import (
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

// BarrierSystem replays every command buffer staged this tick. Phase 3
// (Apply). It must be registered before SpawnSystem.
type BarrierSystem struct {
	barrier *world.Barrier
	log     *zap.Logger
	last    world.PlaybackStats
}

func NewBarrierSystem(barrier *world.Barrier, log *zap.Logger) *BarrierSystem {
	return &BarrierSystem{barrier: barrier, log: log}
}

func (s *BarrierSystem) Phase() coresys.Phase { return coresys.PhaseApply }

func (s *BarrierSystem) LastStats() world.PlaybackStats { return s.last }

func (s *BarrierSystem) Update(t coresys.Tick) {
	s.last = s.barrier.Playback()
	if s.last.Skipped > 0 {
		s.log.Debug("skipped commands on dead entities",
			zap.Uint32("frame", t.Frame),
			zap.Int("skipped", s.last.Skipped))
	}
}
