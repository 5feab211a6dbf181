// Package rng provides the deterministic random streams used by simulation
// systems. A stream is a value type; every draw is a pure step of its state.
package rng

import (
	"encoding/binary"
	"math"

	"golang.org/x/crypto/blake2b"
)

const fallbackState = 0x6E624EB7

// Step advances an xorshift32 state and returns the drawn value together with
// the next state. It never returns a zero state for a non-zero input.
func Step(state uint32) (value, next uint32) {
	value = state
	state ^= state << 13
	state ^= state >> 17
	state ^= state << 5
	return value, state
}

// Random is a small copyable xorshift32 stream. It must not be shared between
// goroutines; derive one per batch instead.
type Random struct {
	state uint32
}

// New returns a stream seeded with seed. A zero seed is replaced with a fixed
// non-zero constant because xorshift never leaves the zero state.
func New(seed uint32) Random {
	if seed == 0 {
		seed = fallbackState
	}
	r := Random{state: seed}
	r.NextUint32()
	return r
}

// State exposes the current state, mostly for tests and journaling.
func (r *Random) State() uint32 { return r.state }

func (r *Random) NextUint32() uint32 {
	v, next := Step(r.state)
	r.state = next
	return v
}

// NextInt returns a non-negative int32 drawn from the whole range.
func (r *Random) NextInt() int32 {
	return int32(r.NextUint32() >> 1)
}

// NextIntN returns a value in [0, n). n <= 0 yields 0.
func (r *Random) NextIntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int((uint64(r.NextUint32()) * uint64(n)) >> 32)
}

// NextIntRange returns a value in [lo, hi). When hi <= lo it returns lo.
func (r *Random) NextIntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.NextIntN(hi-lo)
}

// NextFloat returns a value in [0, 1).
func (r *Random) NextFloat() float64 {
	return float64(r.NextUint32()>>8) * (1.0 / (1 << 24))
}

// NextFloatRange returns a value in [lo, hi).
func (r *Random) NextFloatRange(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	v := lo + r.NextFloat()*(hi-lo)
	return math.Min(v, math.Nextafter(hi, lo))
}

// Seed is a per-tick random seed. Batches derive independent streams from it.
type Seed uint32

// Random derives the stream for one batch. The derivation hashes the tick seed
// with the batch index so neighbouring batches do not get correlated states.
func (s Seed) Random(index int) Random {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(s))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(index))
	sum := blake2b.Sum256(buf[:])
	return New(binary.LittleEndian.Uint32(sum[:4]))
}

// SeedSource hands out one Seed per tick from a master stream, so a run seeded
// with the same value replays the same sequence of tick seeds.
type SeedSource struct {
	master Random
	last   Seed
	issued int
}

func NewSeedSource(seed uint32) *SeedSource {
	return &SeedSource{master: New(seed)}
}

func (s *SeedSource) Next() Seed {
	s.last = Seed(s.master.NextUint32())
	s.issued++
	return s.last
}

// Last returns the most recently issued seed and how many were issued in
// total.
func (s *SeedSource) Last() (Seed, int) {
	return s.last, s.issued
}
