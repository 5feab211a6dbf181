package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ N int }
type pong struct{ N int }

func TestBus_DeliversNextTickInOrder(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	assert.Equal(t, 2, Pending[ping](b))

	b.DispatchAll()
	assert.Empty(t, got, "nothing is visible before the swap")

	b.SwapBuffers()
	assert.Zero(t, Pending[ping](b))
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)
}

func TestBus_RoutesByType(t *testing.T) {
	b := NewBus()
	var pings, pongs int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, ping{})
	Emit(b, pong{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, pings)
	assert.Equal(t, 2, pongs)
}

func TestBus_EmitDuringDispatchLandsInBack(t *testing.T) {
	b := NewBus()
	Subscribe(b, func(p ping) { Emit(b, pong{p.N}) })

	Emit(b, ping{7})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, Pending[pong](b))
}

func TestBus_TopicsDispatchInFirstSeenOrder(t *testing.T) {
	b := NewBus()
	var seen []string
	Subscribe(b, func(pong) { seen = append(seen, "pong") })
	Subscribe(b, func(ping) { seen = append(seen, "ping") })

	for i := 0; i < 3; i++ {
		Emit(b, ping{i})
		Emit(b, pong{i})
	}
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"pong", "pong", "pong", "ping", "ping", "ping"}, seen)
}

func TestBus_SubscribeDuringDispatchWaitsForNextTick(t *testing.T) {
	b := NewBus()
	var late int
	subscribed := false
	Subscribe(b, func(ping) {
		if !subscribed {
			subscribed = true
			Subscribe(b, func(ping) { late++ })
		}
	})

	Emit(b, ping{1})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Zero(t, late)

	Emit(b, ping{2})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, late)
}
