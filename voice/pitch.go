package voice

import (
	"math"
	"math/rand"
	"sync"
)

// MaxTotalShiftSemitones bounds the combined shift (base + intonation +
// random draw) before conversion to a playback rate. Two octaves either way
// is already at the edge of intelligible gibberish; beyond that the output
// is inaudible rumble or aliased chirping.
const MaxTotalShiftSemitones = 24.0

// RateForSemitones converts a semitone offset to a playback-rate multiplier
// using the equal-tempered relation rate = 2^(semitones/12).
func RateForSemitones(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

// Rand is the source of randomness for pitch variation. Tests supply a fixed
// sequence; production uses a seeded math/rand source.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// lockedRand wraps a rand.Rand so concurrent letter playback can share one
// source. rand.NewSource is not safe for concurrent use on its own.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

// Sampler produces per-letter pitch shifts: a base shift plus one independent
// uniform draw in [-variation, +variation] semitones. Letters are not
// pitch-correlated with each other except through the shared base.
type Sampler struct {
	rng Rand
}

// NewSampler creates a sampler using the given randomness source. A nil
// source gets an internally seeded one.
func NewSampler(rng Rand) *Sampler {
	if rng == nil {
		rng = &lockedRand{rng: rand.New(rand.NewSource(rand.Int63()))}
	}
	return &Sampler{rng: rng}
}

// Shift returns base plus one random draw scaled by variation, clamped to
// ±MaxTotalShiftSemitones. A variation of zero performs no draw, so the
// result is fully deterministic and the RNG state does not advance.
func (s *Sampler) Shift(base, variation float64) float64 {
	shift := base
	if variation > 0 {
		shift += (s.rng.Float64()*2 - 1) * variation
	}
	if shift > MaxTotalShiftSemitones {
		shift = MaxTotalShiftSemitones
	}
	if shift < -MaxTotalShiftSemitones {
		shift = -MaxTotalShiftSemitones
	}
	return shift
}

// Rate returns the effective playback-rate multiplier for one letter.
func (s *Sampler) Rate(base, variation float64) float64 {
	return RateForSemitones(s.Shift(base, variation))
}
