// Package nucleon defines individual nucleons and the shared configuration
// that decides whether two of them interact in a given event.
package nucleon

import (
	"fmt"
	"math"

	"github.com/MaximVirta/trento/internal/random"
)

// Nucleon is a single sampled nucleon. Positions are in fm; the x axis is
// the impact-parameter axis. A nucleon belongs to exactly one nucleus and
// is overwritten in place every event.
type Nucleon struct {
	X, Y, Z float64

	// Fluct scales this nucleon's thickness contribution. Redrawn each
	// event when gamma fluctuations are enabled, otherwise 1.
	Fluct float64

	participant bool
}

// IsParticipant reports whether this nucleon took part in at least one
// interacting pair in the current event.
func (n *Nucleon) IsParticipant() bool {
	return n.participant
}

// SetPosition places the nucleon and clears its per-event state. The
// fluctuation weight resets to 1; the profile stage overwrites it for
// participants when fluctuations are enabled.
func (n *Nucleon) SetPosition(x, y, z float64) {
	n.X = x
	n.Y = y
	n.Z = z
	n.Fluct = 1
	n.participant = false
}

// Params bundles the run-level nucleon options before derivation.
type Params struct {
	Width        float64 // Gaussian nucleon width w (fm)
	CrossSection float64 // inelastic nucleon-nucleon cross section (fm^2)
	FluctShape   float64 // gamma fluctuation shape k (<= 0 disables)
	MinDist      float64 // minimum inter-nucleon distance (fm)
}

// The interaction probability is negligible beyond this many widths, so
// pair tests outside it short-circuit without a random draw.
const maxImpactWidths = 6.0

// Common is the immutable per-run interaction configuration shared by
// every pair test. Built once from run parameters; never mutated after
// construction. The partonic cross section is derived numerically so that
// the integrated pair-interaction probability reproduces CrossSection.
type Common struct {
	width         float64
	widthSq       float64
	maxImpactSq   float64
	sigmaPartonic float64
	fluctShape    float64
	minDist       float64
	rng           *random.Stream
}

// NewCommon derives the shared interaction configuration. It fails with a
// configuration error when the requested cross section cannot be reached
// for the given nucleon width.
func NewCommon(p Params, rng *random.Stream) (*Common, error) {
	if p.Width <= 0 {
		return nil, fmt.Errorf("nucleon: width must be positive, got %g", p.Width)
	}
	if p.CrossSection <= 0 {
		return nil, fmt.Errorf("nucleon: cross section must be positive, got %g", p.CrossSection)
	}

	c := &Common{
		width:       p.Width,
		widthSq:     p.Width * p.Width,
		maxImpactSq: maxImpactWidths * maxImpactWidths * p.Width * p.Width,
		fluctShape:  p.FluctShape,
		minDist:     p.MinDist,
		rng:         rng,
	}

	sigma, err := solvePartonicCrossSection(p.CrossSection, c)
	if err != nil {
		return nil, err
	}
	c.sigmaPartonic = sigma
	return c, nil
}

// Width returns the Gaussian nucleon width w.
func (c *Common) Width() float64 {
	return c.width
}

// MinDist returns the configured minimum inter-nucleon distance.
func (c *Common) MinDist() float64 {
	return c.minDist
}

// MaxImpact returns the upper bound on the pairwise interaction range,
// used when deriving the default impact-parameter maximum.
func (c *Common) MaxImpact() float64 {
	return maxImpactWidths * c.width
}

// tpp is the normalized overlap of two Gaussian nucleons separated by
// sqrt(bsq) in the transverse plane.
func (c *Common) tpp(bsq float64) float64 {
	return math.Exp(-bsq/(4*c.widthSq)) / (4 * math.Pi * c.widthSq)
}

// Participate tests whether nucleons a and b interact. The test is
// order-independent: it depends only on the transverse separation and a
// single uniform draw from the run stream. On success both nucleons are
// marked as participants. Outside the interaction range it returns false
// without consuming randomness.
func (c *Common) Participate(a, b *Nucleon) bool {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dsq := dx*dx + dy*dy

	if dsq > c.maxImpactSq {
		return false
	}

	prob := 1 - math.Exp(-c.sigmaPartonic*c.tpp(dsq))
	if c.rng.Float64() < prob {
		a.participant = true
		b.participant = true
		return true
	}
	return false
}

// SampleFluct draws a thickness fluctuation with mean one, or returns 1
// when fluctuations are disabled.
func (c *Common) SampleFluct() float64 {
	if c.fluctShape <= 0 {
		return 1
	}
	return c.rng.Gamma(c.fluctShape, 1/c.fluctShape)
}

// integratedCrossSection evaluates the geometric cross section
// 2*pi * int b db [1 - exp(-sigma * Tpp(b^2))] for a trial partonic
// cross section, by Simpson's rule in b^2.
func integratedCrossSection(sigma float64, c *Common) float64 {
	const steps = 2000 // even
	upper := c.maxImpactSq
	h := upper / steps

	f := func(bsq float64) float64 {
		return 1 - math.Exp(-sigma*c.tpp(bsq))
	}

	sum := f(0) + f(upper)
	for i := 1; i < steps; i++ {
		x := float64(i) * h
		if i%2 == 1 {
			sum += 4 * f(x)
		} else {
			sum += 2 * f(x)
		}
	}
	return math.Pi * sum * h / 3
}

// solvePartonicCrossSection inverts integratedCrossSection by bisection.
func solvePartonicCrossSection(target float64, c *Common) (float64, error) {
	// The geometric cross section saturates at pi*maxImpact^2; beyond
	// that no partonic cross section can reproduce the request.
	if target >= math.Pi*c.maxImpactSq {
		return 0, fmt.Errorf(
			"nucleon: cross section %g fm^2 unreachable for width %g fm", target, c.width)
	}

	lo, hi := 0.0, 1.0
	for integratedCrossSection(hi, c) < target {
		hi *= 2
		if hi > 1e12 {
			return 0, fmt.Errorf(
				"nucleon: cross section %g fm^2 unreachable for width %g fm", target, c.width)
		}
	}

	for i := 0; i < 200; i++ {
		mid := 0.5 * (lo + hi)
		if integratedCrossSection(mid, c) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
