// Package random provides the single pseudo-random stream used by a run.
// All stochastic components (nucleus construction, impact-parameter draws,
// pair-interaction tests) share one injected *Stream so that a fixed seed
// reproduces an identical event sequence.
package random

import (
	"math"
	"math/rand"
	"time"
)

// Stream is a seeded pseudo-random source with the deviate helpers the
// sampling code needs. It is not safe for concurrent use; a run owns
// exactly one Stream and draws from it in a fixed order.
type Stream struct {
	rng  *rand.Rand
	seed int64
}

// New creates a Stream from the given seed. A non-positive seed selects a
// time-based seed instead, matching minimum-bias production runs where
// reproducibility is not needed.
func New(seed int64) *Stream {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &Stream{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the effective seed, useful for logging time-seeded runs.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Float64 returns a uniform deviate in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns a uniform int in [0, n).
func (s *Stream) Intn(n int) int {
	return s.rng.Intn(n)
}

// Normal returns a normal deviate with the given mean and standard
// deviation.
func (s *Stream) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// Gamma returns a gamma deviate with shape k and scale theta using the
// Marsaglia-Tsang squeeze method. Requires k > 0.
func (s *Stream) Gamma(k, theta float64) float64 {
	if k < 1 {
		// Boost a shape below one via the standard u^(1/k) trick.
		u := s.Float64()
		return s.Gamma(k+1, theta) * math.Pow(u, 1/k)
	}

	d := k - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v * theta
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v * theta
		}
	}
}
