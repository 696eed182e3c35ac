package testutil

import (
	"math/rand"
	"strconv"
	"sync"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes. The output does not compress, which
// makes it a stand-in for firmware blobs.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	r.rand.Read(b) //nolint:errcheck // never fails per math/rand docs
	return b
}

// CompressibleBytes returns n bytes of repetitive text-like content, a
// stand-in for config files and logs that compress well.
func (r *RNG) CompressibleBytes(n int) []byte {
	words := []string{"Backlight", "Units", "metric", "true", "false", "0x1F", "calibration"}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, 0, n+16)
	for len(b) < n {
		b = append(b, words[r.rand.Intn(len(words))]...)
		b = append(b, ':', ' ')
		b = append(b, strconv.Itoa(r.rand.Intn(100))...)
		b = append(b, '\n')
	}
	return b[:n]
}
