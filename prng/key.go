// Package prng provides splittable random keys for stochastic trajectory
// sampling. A Key is an opaque 128-bit seed: one key accounts for exactly one
// trajectory's randomness, and splitting a key into children is a pure
// function of the parent key, so an ensemble is reproducible from its root
// key alone.
package prng

import (
	"fmt"
	"math/rand/v2"
)

// Key is an opaque splittable seed.
type Key struct {
	hi, lo uint64
}

// NewKey derives a key from a single integer seed.
func NewKey(seed uint64) Key {
	s := seed
	return Key{hi: splitmix64(&s), lo: splitmix64(&s)}
}

// Split derives n child keys from k. The children are a deterministic
// function of k and their index; the parent key is not consumed.
func (k Key) Split(n int) []Key {
	keys := make([]Key, n)
	for i := range keys {
		keys[i] = k.child(uint64(i))
	}
	return keys
}

func (k Key) child(i uint64) Key {
	s := k.hi ^ (k.lo + 0x9e3779b97f4a7c15*(i+1))
	return Key{hi: splitmix64(&s), lo: splitmix64(&s)}
}

func (k Key) String() string {
	return fmt.Sprintf("%016x%016x", k.hi, k.lo)
}

// Stream is the uniform variate source owned by a single trajectory. Draws
// are consumed sequentially; two streams built from the same key produce
// identical sequences.
type Stream struct {
	rng *rand.Rand
}

// Stream creates the variate stream seeded by k.
func (k Key) Stream() *Stream {
	return &Stream{rng: rand.New(rand.NewPCG(k.hi, k.lo))}
}

// Uniform draws the next variate in [0, 1).
func (s *Stream) Uniform() float64 {
	return s.rng.Float64()
}

// splitmix64 advances *s and returns the next value of the splitmix64
// sequence. Used only for key derivation, never for variate draws.
func splitmix64(s *uint64) uint64 {
	*s += 0x9e3779b97f4a7c15
	z := *s
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
