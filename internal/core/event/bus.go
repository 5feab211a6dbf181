package event

import (
	"reflect"
	"slices"
	"sync"
)

// topic holds the queues and handlers of one event type.
type topic struct {
	back     []any // emitted this tick
	front    []any // delivered by the next DispatchAll
	handlers []func(any)
}

// Bus is a double-buffered event bus. Events emitted in tick N are delivered
// in tick N+1, after EventDispatchSystem swaps the buffers.
//
// Topics dispatch in the order their type was first seen, and events of one
// type in emission order, so a replayed run delivers the same sequence.
type Bus struct {
	mu     sync.Mutex // guards topic creation, back buffers and handlers
	topics map[reflect.Type]*topic
	order  []*topic
}

func NewBus() *Bus {
	return &Bus{topics: make(map[reflect.Type]*topic)}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// lookup returns the topic for t, creating it. Caller holds b.mu.
func (b *Bus) lookup(t reflect.Type) *topic {
	tp, ok := b.topics[t]
	if !ok {
		tp = &topic{}
		b.topics[t] = tp
		b.order = append(b.order, tp)
	}
	return tp
}

// Emit queues an event for the next tick. Safe to call from worker goroutines.
func Emit[T any](b *Bus, event T) {
	b.mu.Lock()
	tp := b.lookup(typeOf[T]())
	tp.back = append(tp.back, event)
	b.mu.Unlock()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tp := b.lookup(typeOf[T]())
	tp.handlers = append(tp.handlers, func(ev any) { fn(ev.(T)) })
}

// Pending returns the number of events of type T emitted since the last swap.
func Pending[T any](b *Bus) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tp, ok := b.topics[typeOf[T]()]; ok {
		return len(tp.back)
	}
	return 0
}

// SwapBuffers makes this tick's emissions deliverable and starts an empty
// back buffer. Called once at tick start.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tp := range b.order {
		tp.front, tp.back = tp.back, tp.front[:0]
	}
}

// DispatchAll delivers the front buffers to their handlers. Handlers may Emit;
// those events land in the back buffer for the following tick.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	topics := slices.Clone(b.order)
	b.mu.Unlock()

	for _, tp := range topics {
		b.mu.Lock()
		handlers := slices.Clone(tp.handlers)
		events := tp.front
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}
