// Package collider implements the collision-sampling engine: it draws
// impact parameters, positions the two nuclei, tests every nucleon pair
// for participation, and repeats until a configuration with at least one
// interacting pair is found. The accepted nuclei are then handed to the
// profile stage and the results to the output sinks.
package collider

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"

	"github.com/MaximVirta/trento/internal/event"
	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/nucleus"
	"github.com/MaximVirta/trento/internal/random"
)

// Result holds one accepted event's sampling observables.
type Result struct {
	// B is the sampled impact parameter (fm).
	B float64
	// Ncoll counts interacting nucleon pairs; 0 when counting is
	// disabled.
	Ncoll int
	// NToCollide counts rejection-loop attempts for the accepted event;
	// 0 when counting is disabled.
	NToCollide int
}

// Profiler computes per-event observables from the post-scan nuclei.
type Profiler interface {
	Compute(a, b *nucleus.Nucleus, nc *nucleon.Common) *event.Event
}

// Sink receives each finished event. A sink error is fatal for the run.
type Sink interface {
	Write(n int, res Result, ev *event.Event) error
}

// Both radii below this threshold means proton-like projectiles with no
// meaningful size ratio, so the impact parameter is split evenly.
const symmetricRadiusSum = 0.1

// Config collects everything the engine needs, already resolved to
// numeric parameters and constructed collaborators.
type Config struct {
	NucleusA *nucleus.Nucleus
	NucleusB *nucleus.Nucleus
	Common   *nucleon.Common
	RNG      *random.Stream

	NEvents int
	BMin    float64
	// BMax < 0 selects the minimum-bias default
	// radius(A) + radius(B) + MaxImpact().
	BMax float64

	CalcNcoll  bool
	CalcToColl bool
	// SoftAttemptCap logs a warning when one event needs more than this
	// many attempts; 0 disables the diagnostic. Never affects results.
	SoftAttemptCap int

	Profiler Profiler
	Sinks    []Sink
	Logger   *log.Logger
}

// Collider runs the rejection-sampling loop over impact parameters.
type Collider struct {
	nucA, nucB *nucleus.Nucleus
	common     *nucleon.Common
	rng        *random.Stream

	nevents    int
	bmin, bmax float64
	asymmetry  float64

	calcNcoll  bool
	calcToColl bool
	softCap    int

	profiler Profiler
	sinks    []Sink
	logger   *log.Logger
}

// New validates the impact-parameter bounds, derives the default bmax and
// the asymmetry split, and returns a ready engine. Errors here are
// configuration errors: the run must not start.
func New(cfg Config) (*Collider, error) {
	if cfg.NucleusA == nil || cfg.NucleusB == nil || cfg.Common == nil || cfg.RNG == nil {
		return nil, fmt.Errorf("collider: nuclei, nucleon config, and random stream are required")
	}

	bmax := cfg.BMax
	if bmax < 0 {
		bmax = cfg.NucleusA.Radius() + cfg.NucleusB.Radius() + cfg.Common.MaxImpact()
	}
	if cfg.BMin < 0 {
		return nil, fmt.Errorf("collider: b-min must be non-negative, got %g", cfg.BMin)
	}
	if bmax < cfg.BMin {
		return nil, fmt.Errorf("collider: b-max %g below b-min %g", bmax, cfg.BMin)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	return &Collider{
		nucA:       cfg.NucleusA,
		nucB:       cfg.NucleusB,
		common:     cfg.Common,
		rng:        cfg.RNG,
		nevents:    cfg.NEvents,
		bmin:       cfg.BMin,
		bmax:       bmax,
		asymmetry:  determineAsymmetry(cfg.NucleusA, cfg.NucleusB),
		calcNcoll:  cfg.CalcNcoll,
		calcToColl: cfg.CalcToColl,
		softCap:    cfg.SoftAttemptCap,
		profiler:   cfg.Profiler,
		sinks:      cfg.Sinks,
		logger:     logger,
	}, nil
}

// determineAsymmetry splits the impact parameter in proportion to the two
// radii, falling back to an even split for proton-like pairs.
func determineAsymmetry(a, b *nucleus.Nucleus) float64 {
	rA := a.Radius()
	rB := b.Radius()
	sum := rA + rB
	if sum < symmetricRadiusSum {
		return 0.5
	}
	return rA / sum
}

// BMax returns the effective maximum impact parameter after defaulting.
func (c *Collider) BMax() float64 {
	return c.bmax
}

// Asymmetry returns the fraction of the impact parameter assigned to
// nucleus A.
func (c *Collider) Asymmetry() float64 {
	return c.asymmetry
}

// SampleCollision repeats impact-parameter draws until at least one
// nucleon pair participates, then returns the accepted attributes. The
// loop is unbounded; with valid bounds it terminates with probability 1.
// On return both nuclei hold the accepted post-scan configuration.
func (c *Collider) SampleCollision() Result {
	var res Result
	collision := false
	attempts := 0

	for !collision {
		// P(b) db is proportional to b db: uniform in the annular area.
		u := c.rng.Float64()
		res.B = math.Sqrt(c.bmin*c.bmin + (c.bmax*c.bmax-c.bmin*c.bmin)*u)

		// Center the two nucleon distributions so their separation along
		// the impact axis equals b, split by the asymmetry parameter.
		c.nucA.SampleNucleons(c.asymmetry * res.B)
		c.nucB.SampleNucleons((c.asymmetry - 1) * res.B)

		// The scan stays exhaustive after the first hit: later pairs may
		// also interact and must be counted.
		nucleonsA := c.nucA.Nucleons()
		nucleonsB := c.nucB.Nucleons()
		for i := range nucleonsA {
			for j := range nucleonsB {
				if c.common.Participate(&nucleonsA[i], &nucleonsB[j]) {
					collision = true
					if c.calcNcoll {
						res.Ncoll++
					}
				}
			}
		}

		attempts++
		if c.softCap > 0 && attempts == c.softCap {
			c.logger.Warn("event needs unusually many attempts",
				"attempts", attempts, "b-max", c.bmax)
		}
		if c.calcToColl {
			res.NToCollide = attempts
		}
	}

	return res
}

// RunEvents drives the full event loop: sample, compute the profile on
// the prepared nuclei, and emit to every sink. A sink error aborts the
// run; no partial-event retry is attempted.
func (c *Collider) RunEvents() error {
	for n := 0; n < c.nevents; n++ {
		res := c.SampleCollision()

		var ev *event.Event
		if c.profiler != nil {
			ev = c.profiler.Compute(c.nucA, c.nucB, c.common)
		}

		for _, sink := range c.sinks {
			if err := sink.Write(n, res, ev); err != nil {
				return fmt.Errorf("collider: writing event %d: %w", n, err)
			}
		}
	}
	return nil
}
