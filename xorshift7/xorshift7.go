// Package xorshift7 implements the XorShift7 generator together with GF(2)
// jump-ahead, so that any number of parallel threads can draw disjoint
// subsequences of one stream defined by a single start state.
package xorshift7

// StateWords is the number of 32-bit words of generator state.
const StateWords = 8

// XorShift7 is a 256-bit xorshift generator over a ring of eight words.
// The zero value is the all-zero state, which only ever produces zeros.
type XorShift7 struct {
	states [StateWords]uint32
	index  uint8
}

// StartState expands a 32-bit seed into a full generator state. The
// expansion never yields the all-zero state.
func StartState(seed uint32) [StateWords]uint32 {
	var s [StateWords]uint32
	s[0] = seed
	for i := 1; i < StateWords; i++ {
		s[i] = 1812433253*(s[i-1]^(s[i-1]>>30)) + uint32(i)
	}
	return s
}

// New returns a generator seeded from seed.
func New(seed uint32) XorShift7 {
	return FromState(StartState(seed))
}

// FromState returns a generator whose ring, read from its current index,
// is state.
func FromState(state [StateWords]uint32) XorShift7 {
	return XorShift7{states: state}
}

// Next advances the generator by one step and returns the new word. The
// recurrence is Panneton and L'Ecuyer's xorshift7, period 2^256-1.
func (g *XorShift7) Next() uint32 {
	s := &g.states
	i := g.index

	t := s[(i+7)&7]
	t ^= t << 13
	r := t ^ (t << 9)
	t = s[(i+4)&7]
	r ^= t ^ (t << 7)
	t = s[(i+3)&7]
	r ^= t ^ (t >> 3)
	t = s[(i+1)&7]
	r ^= t ^ (t >> 10)
	t = s[i]
	t ^= t >> 7
	r ^= t ^ (t << 24)

	s[i] = r
	g.index = (i + 1) & 7
	return r
}

// State returns the ring in generation order, oldest word first. Passing
// it to FromState yields a generator producing the same continuation.
func (g XorShift7) State() [StateWords]uint32 {
	var out [StateWords]uint32
	for k := range out {
		out[k] = g.states[(int(g.index)+k)&7]
	}
	return out
}

// IsZero reports whether state is the degenerate all-zero state.
func IsZero(state [StateWords]uint32) bool {
	for _, w := range state {
		if w != 0 {
			return false
		}
	}
	return true
}

// step advances an ordered state by one generator step.
func step(state [StateWords]uint32) [StateWords]uint32 {
	g := FromState(state)
	g.Next()
	return g.State()
}
