package world

import (
	"reflect"

	"github.com/urbanforge/buildsim/internal/core/ecs"
)

// CommandKind classifies a staged mutation.
type CommandKind uint8

const (
	CmdCreate CommandKind = iota
	CmdSet
	CmdRemove
	CmdTag
	CmdUntag
	CmdAppend
)

var commandKindNames = [...]string{
	CmdCreate: "create",
	CmdSet:    "set",
	CmdRemove: "remove",
	CmdTag:    "tag",
	CmdUntag:  "untag",
	CmdAppend: "append",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "unknown"
}

// placeholderGeneration marks ids handed out by CommandBuffer.CreateEntity
// before playback allocates the real entity.
const placeholderGeneration = ^uint32(0)

// IsPlaceholder reports whether id was staged by a CommandBuffer and has not
// been allocated yet.
func IsPlaceholder(id ecs.EntityID) bool {
	return id.Generation() == placeholderGeneration
}

// Resolver maps staged placeholder ids to the entities allocated for them.
type Resolver func(ecs.EntityID) ecs.EntityID

// Command is one staged mutation.
type Command struct {
	Kind      CommandKind
	Entity    ecs.EntityID
	Component string
	apply     func(target ecs.EntityID, resolve Resolver)
}

// CommandBuffer is an append-only log of structural mutations recorded during
// a parallel phase and replayed later in order. A buffer is owned by a single
// goroutine while it is being recorded.
type CommandBuffer struct {
	state    *State
	commands []Command
	created  uint32
}

// NewCommandBuffer returns an empty buffer that will replay into s.
func NewCommandBuffer(s *State) *CommandBuffer {
	return &CommandBuffer{state: s, commands: make([]Command, 0, 32)}
}

func (cb *CommandBuffer) Len() int { return len(cb.commands) }

// Commands exposes the staged log, mainly for tests and journaling.
func (cb *CommandBuffer) Commands() []Command { return cb.commands }

func (cb *CommandBuffer) push(kind CommandKind, e ecs.EntityID, component string, fn func(ecs.EntityID, Resolver)) {
	cb.commands = append(cb.commands, Command{Kind: kind, Entity: e, Component: component, apply: fn})
}

// CreateEntity stages a new entity and returns a placeholder id that later
// commands in this buffer may target.
func (cb *CommandBuffer) CreateEntity() ecs.EntityID {
	id := ecs.NewEntityID(cb.created, placeholderGeneration)
	cb.created++
	cb.push(CmdCreate, id, "", nil)
	return id
}

// Tag stages adding a marker component.
func (cb *CommandBuffer) Tag(tags *ecs.TagStore, e ecs.EntityID) {
	cb.push(CmdTag, e, "", func(target ecs.EntityID, _ Resolver) { tags.Add(target) })
}

// Untag stages removing a marker component.
func (cb *CommandBuffer) Untag(tags *ecs.TagStore, e ecs.EntityID) {
	cb.push(CmdUntag, e, "", func(target ecs.EntityID, _ Resolver) { tags.Remove(target) })
}

// Set stages adding or replacing a component value.
func Set[T any](cb *CommandBuffer, store *ecs.Store[T], e ecs.EntityID, v T) {
	cb.push(CmdSet, e, typeName[T](), func(target ecs.EntityID, _ Resolver) { store.Put(target, v) })
}

// Remove stages removing a component.
func Remove[T any](cb *CommandBuffer, store *ecs.Store[T], e ecs.EntityID) {
	cb.push(CmdRemove, e, typeName[T](), func(target ecs.EntityID, _ Resolver) { store.Remove(target) })
}

// Append stages adding child to the owner's list in lists, creating the list
// when it is missing. child may be a placeholder from the same buffer.
func Append[L ~[]ecs.EntityID](cb *CommandBuffer, lists *ecs.Store[L], owner, child ecs.EntityID) {
	cb.push(CmdAppend, owner, typeName[L](), func(target ecs.EntityID, resolve Resolver) {
		c := resolve(child)
		if l, ok := lists.Get(target); ok {
			*l = append(*l, c)
			return
		}
		lists.Put(target, L{c})
	})
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

// PlaybackStats summarizes one replay.
type PlaybackStats struct {
	ByKind  map[CommandKind]int
	Skipped int
	Created []ecs.EntityID
}

func (p *PlaybackStats) add(o PlaybackStats) {
	if p.ByKind == nil {
		p.ByKind = make(map[CommandKind]int)
	}
	for k, n := range o.ByKind {
		p.ByKind[k] += n
	}
	p.Skipped += o.Skipped
	p.Created = append(p.Created, o.Created...)
}

// Total returns the number of applied commands.
func (p PlaybackStats) Total() int {
	n := 0
	for _, c := range p.ByKind {
		n += c
	}
	return n
}

// Playback applies every staged command in record order and empties the
// buffer. Commands aimed at entities that died since recording are skipped.
func (cb *CommandBuffer) Playback() PlaybackStats {
	stats := PlaybackStats{ByKind: make(map[CommandKind]int)}
	allocated := make(map[ecs.EntityID]ecs.EntityID, cb.created)
	resolve := func(id ecs.EntityID) ecs.EntityID {
		if IsPlaceholder(id) {
			return allocated[id]
		}
		return id
	}
	for _, c := range cb.commands {
		if c.Kind == CmdCreate {
			id := cb.state.CreateEntity()
			allocated[c.Entity] = id
			stats.Created = append(stats.Created, id)
			stats.ByKind[CmdCreate]++
			continue
		}
		target := resolve(c.Entity)
		if target.IsZero() || !cb.state.Alive(target) {
			stats.Skipped++
			continue
		}
		c.apply(target, resolve)
		stats.ByKind[c.Kind]++
	}
	cb.commands = cb.commands[:0]
	cb.created = 0
	return stats
}
