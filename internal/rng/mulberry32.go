// Package rng provides the seeded pseudo-random stream shared by every client.
//
// The stream must be reproducible forever from a stored seed: lobbies persist
// only {width, height, seed, type} and each client regenerates the map
// locally, so any change to the recurrence below changes every stored map.
package rng

// Mulberry32 is a 32-bit state generator producing floats in [0,1).
type Mulberry32 struct {
	seed  uint32
	state uint32
}

// New creates a generator for the given seed.
func New(seed uint32) *Mulberry32 {
	return &Mulberry32{seed: seed, state: seed}
}

// Seed returns the seed the generator was created with.
func (m *Mulberry32) Seed() uint32 {
	return m.seed
}

// Reset rewinds the stream to its first value.
func (m *Mulberry32) Reset() {
	m.state = m.seed
}

// Next returns the next float in [0,1).
func (m *Mulberry32) Next() float64 {
	m.state += 0x6D2B79F5
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296.0
}

// Intn returns an int in [0,n). Returns 0 when n <= 0.
func (m *Mulberry32) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(m.Next() * float64(n))
}

// Range returns an int in [lo,hi] inclusive.
func (m *Mulberry32) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + m.Intn(hi-lo+1)
}

// Chance returns true with probability p.
func (m *Mulberry32) Chance(p float64) bool {
	return m.Next() < p
}
