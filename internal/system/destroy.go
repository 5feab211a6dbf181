package system

import (
	"github.com/urbanforge/buildsim/internal/component"
	"github.com/urbanforge/buildsim/internal/core/ecs"
	"github.com/urbanforge/buildsim/internal/core/event"
	"github.com/urbanforge/buildsim/internal/core/rng"
	coresys "github.com/urbanforge/buildsim/internal/core/system"
	"github.com/urbanforge/buildsim/internal/prefab"
	"github.com/urbanforge/buildsim/internal/world"
	"go.uber.org/zap"
)

// CollapseCurve maps a building height to its collapse duration in seconds.
type CollapseCurve interface {
	CollapseTime(height float64) float64
}

// CollapseFunc adapts a plain function to CollapseCurve.
type CollapseFunc func(height float64) float64

func (f CollapseFunc) CollapseTime(height float64) float64 { return f(height) }

// DestroyStats summarizes one tick of demolition.
type DestroyStats struct {
	Requests  int
	Destroyed int
	Collapsed int
	Rubble    int
}

// DestroySystem runs queued demolition cascades. Phase 1 (PreUpdate).
//
// All requests of a tick are handled on one goroutine with one processed-set
// and one command buffer, so overlapping ownership graphs are visited once.
type DestroySystem struct {
	state   *world.State
	catalog *prefab.Catalog
	barrier *world.Barrier
	bus     *event.Bus
	seeds   *rng.SeedSource
	curve   CollapseCurve
	log     *zap.Logger

	queue []event.Destroy
	last  DestroyStats
}

// NewDestroySystem creates the system and subscribes it to destroy requests
// on the bus.
func NewDestroySystem(ws *world.State, catalog *prefab.Catalog, barrier *world.Barrier, bus *event.Bus, seeds *rng.SeedSource, curve CollapseCurve, log *zap.Logger) *DestroySystem {
	s := &DestroySystem{
		state:   ws,
		catalog: catalog,
		barrier: barrier,
		bus:     bus,
		seeds:   seeds,
		curve:   curve,
		log:     log,
	}
	event.Subscribe(bus, s.Enqueue)
	return s
}

func (s *DestroySystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

// Enqueue adds a request for the next Update.
func (s *DestroySystem) Enqueue(req event.Destroy) {
	s.queue = append(s.queue, req)
}

// Queued returns the number of requests waiting.
func (s *DestroySystem) Queued() int { return len(s.queue) }

func (s *DestroySystem) LastStats() DestroyStats { return s.last }

func (s *DestroySystem) Update(t coresys.Tick) {
	s.last = DestroyStats{}
	if len(s.queue) == 0 {
		return
	}
	requests := s.queue
	s.queue = nil

	c := &cascade{
		sys:       s,
		random:    s.seeds.Next().Random(0),
		commands:  world.NewCommandBuffer(s.state),
		processed: make(map[ecs.EntityID]struct{}, len(requests)*4),
		frame:     t.Frame,
	}
	for _, req := range requests {
		c.run(req.Object, req.Event)
	}
	s.barrier.Submit(c.commands)
	for _, ev := range c.demolished {
		event.Emit(s.bus, ev)
	}

	s.last = c.stats
	s.last.Requests = len(requests)
	s.log.Debug("demolition tick",
		zap.Uint32("frame", t.Frame),
		zap.Int("requests", s.last.Requests),
		zap.Int("destroyed", s.last.Destroyed),
		zap.Int("collapsed", s.last.Collapsed),
		zap.Int("rubble", s.last.Rubble))
}

// cascade is the working set of one Update.
type cascade struct {
	sys        *DestroySystem
	random     rng.Random
	commands   *world.CommandBuffer
	processed  map[ecs.EntityID]struct{}
	frame      uint32
	stats      DestroyStats
	demolished []event.Demolished
}

// run destroys root and every non-building sub-object below it. The explicit
// stack visits entities in the same order a depth-first recursion would.
func (c *cascade) run(root, cause ecs.EntityID) {
	stack := []ecs.EntityID{root}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		children := c.destroy(e, cause)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// destroy stages the demolition of a single entity and returns the
// sub-objects to visit next. Entities already destroyed, already processed
// or without a prefab are skipped.
func (c *cascade) destroy(e, cause ecs.EntityID) []ecs.EntityID {
	st := c.sys.state
	cb := c.commands
	if st.Destroyed.Has(e) {
		return nil
	}
	if _, seen := c.processed[e]; seen {
		return nil
	}
	ref, ok := st.Prefabs.Value(e)
	if !ok {
		return nil
	}
	c.processed[e] = struct{}{}

	collapse := 0.0
	if geo, ok := c.sys.catalog.Geometry(ref.Prefab); ok && geo.Flags.Has(prefab.Physical|prefab.HasLot) {
		collapse = c.sys.curve.CollapseTime(geo.Size.Y)
		rubble := c.synthesizeRubble(e, ref.Prefab)

		areas, hasAreas := st.SubAreas.Value(e)
		for _, a := range areas {
			if st.Clip.Has(a) || (st.Space.Has(a) && !c.onGround(a)) {
				cb.Tag(st.Deleted, a)
			}
		}
		if !hasAreas && len(rubble) > 0 {
			world.Set(cb, st.SubAreas, e, component.SubAreas{})
		}
		for _, r := range rubble {
			world.Append(cb, st.SubAreas, e, r)
		}
		c.stats.Rubble += len(rubble)
	}

	destroyed := component.Destroyed{Event: cause}
	if collapse != 0 {
		destroyed.Cleared = 0.5 - max(1, collapse)
		c.stats.Collapsed++
	}
	world.Set(cb, st.Destroyed, e, destroyed)
	if collapse != 0 {
		if tr, ok := st.Transforms.Value(e); ok {
			world.Set(cb, st.Interpolated, e, component.InterpolatedTransform{
				Position: tr.Position,
				Rotation: tr.Rotation,
			})
		}
	}
	cb.Tag(st.Updated, e)

	if b, ok := st.Buildings.Value(e); ok {
		c.releaseServices(e, b)
	}

	c.stats.Destroyed++
	if ce := c.sys.log.Check(zap.DebugLevel, "entity demolished"); ce != nil {
		ce.Write(zap.Stringer("entity", e),
			zap.String("prefab", string(ref.Prefab)),
			zap.Float64("collapse", collapse),
			zap.Strings("components", st.Components(e)))
	}
	c.demolished = append(c.demolished, event.Demolished{
		Entity:   e,
		Event:    cause,
		Prefab:   ref.Prefab,
		Collapse: collapse,
		Frame:    c.frame,
	})

	subs, ok := st.SubObjects.Value(e)
	if !ok {
		return nil
	}
	children := make([]ecs.EntityID, 0, len(subs))
	for _, sub := range subs {
		if !st.Buildings.Has(sub) {
			children = append(children, sub)
		}
	}
	return children
}

// releaseServices strips the utility components of a demolished building and
// queues its road edge for every utility graph it drew from.
func (c *cascade) releaseServices(e ecs.EntityID, b component.Building) {
	st := c.sys.state
	cb := c.commands
	electricity := st.Electricity.Has(e)
	water := st.Water.Has(e)
	if electricity {
		world.Remove(cb, st.Electricity, e)
	}
	if water {
		world.Remove(cb, st.Water, e)
	}
	if st.Garbage.Has(e) {
		world.Remove(cb, st.Garbage, e)
	}
	if st.Mail.Has(e) {
		world.Remove(cb, st.Mail, e)
	}
	if b.RoadEdge.IsZero() {
		return
	}
	if electricity {
		st.ElectricityQueue.Enqueue(b.RoadEdge)
	}
	if water {
		st.WaterQueue.Enqueue(b.RoadEdge)
	}
}

func (c *cascade) onGround(area ecs.EntityID) bool {
	nodes, ok := c.sys.state.AreaNodes.Value(area)
	return ok && nodes.AnyOnGround()
}
