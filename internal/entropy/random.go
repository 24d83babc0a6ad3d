// Package entropy provides the injectable random source for stochastic
// simulation events. Production runs use a seeded source so a run is fully
// replayable from its seed; tests inject fixed sequences.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields floats in [0, 1). Implementations must be safe for use from
// the single simulation goroutine; Seeded additionally locks so the HTTP
// layer could sample without racing.
type Source interface {
	Float() float64
}

// Seeded is a deterministic, replayable source.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a replayable source from a seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// Float returns the next float64 in [0, 1).
func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Crypto draws from crypto/rand; used when no seed is supplied and replay
// does not matter.
type Crypto struct{}

// Float returns a uniform float64 in [0, 1).
func (Crypto) Float() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 is a safe neutral default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Fixed replays a canned sequence, cycling when exhausted. Test helper.
type Fixed struct {
	Values []float64
	idx    int
}

// Float returns the next canned value.
func (f *Fixed) Float() float64 {
	if len(f.Values) == 0 {
		return 0.5
	}
	v := f.Values[f.idx%len(f.Values)]
	f.idx++
	return v
}
