// Package nucleus constructs colliding nuclei and samples their nucleon
// positions event by event. Heavy species use a (possibly deformed)
// Woods-Saxon distribution, the deuteron a Hulthen wavefunction, and the
// proton is point-like.
package nucleus

import (
	"fmt"
	"math"

	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/random"
)

// Hulthen wavefunction parameters for the deuteron (fm^-1), and the cutoff
// beyond which the density is negligible.
const (
	hulthenA    = 0.228
	hulthenB    = 1.18
	hulthenRMax = 20.0
)

// Maximum real spherical harmonic magnitudes, used to bound the deformed
// Woods-Saxon envelope radius.
const (
	maxY20 = 0.6308
	maxY22 = 0.5462
	maxY30 = 0.7464
	maxY40 = 0.8463
)

// Resampling gives up after this many tries when the minimum-distance
// constraint cannot be met; the last draw is kept so sampling always
// terminates.
const maxPlacementTries = 1000

// Nucleus holds one colliding side's nucleon buffer. The buffer is
// allocated once at construction and overwritten in place every event by
// SampleNucleons; iteration order is stable within an event.
type Nucleus struct {
	name     string
	nucleons []nucleon.Nucleon
	radius   float64
	minDist  float64

	wsR, wsA float64
	beta2    float64
	beta3    float64
	beta4    float64
	gamma    float64
	deformed bool

	pointLike bool
	hulthen   bool
	rmax      float64
	hulthenPk float64

	rng *random.Stream
}

// Create builds a nucleus for the named species. The deformation
// parameters beta2..beta4 and the triaxiality angle gamma are taken as
// given (the caller samples them from the configured distributions).
// Returns a configuration error for an unknown species.
func Create(name string, minDist, beta2, beta3, beta4, gamma float64, rng *random.Stream) (*Nucleus, error) {
	def, ok := species[name]
	if !ok {
		return nil, fmt.Errorf("nucleus: unknown species %q", name)
	}

	n := &Nucleus{
		name:      name,
		nucleons:  make([]nucleon.Nucleon, def.a),
		minDist:   minDist,
		wsR:       def.wsR,
		wsA:       def.wsA,
		beta2:     beta2,
		beta3:     beta3,
		beta4:     beta4,
		gamma:     gamma,
		pointLike: def.pointLike,
		hulthen:   def.hulthen,
		rng:       rng,
	}

	switch {
	case def.pointLike:
		n.radius = 0
	case def.hulthen:
		// Half the RMS nucleon separation of the Hulthen ground state.
		n.radius = 2.14
		n.hulthenPk = hulthenPeak()
	default:
		n.deformed = beta2 != 0 || beta3 != 0 || beta4 != 0
		n.radius = def.wsR + 3*def.wsA
		envelope := 1 + math.Abs(beta2)*(maxY20+maxY22) +
			math.Abs(beta3)*maxY30 + math.Abs(beta4)*maxY40
		n.rmax = def.wsR*envelope + 10*def.wsA
	}

	return n, nil
}

// Name returns the species name.
func (n *Nucleus) Name() string {
	return n.name
}

// Radius returns the fixed geometric extent used for impact-parameter
// bounds: zero for the proton, R + 3a for Woods-Saxon species.
func (n *Nucleus) Radius() float64 {
	return n.radius
}

// Nucleons exposes the backing nucleon buffer. Callers index it by
// reference for pairwise testing; the slice itself is never reallocated.
func (n *Nucleus) Nucleons() []nucleon.Nucleon {
	return n.nucleons
}

// SampleNucleons redraws every nucleon position for the current event and
// shifts all of them by offset along the impact-parameter axis. Previous
// participation flags are cleared.
func (n *Nucleus) SampleNucleons(offset float64) {
	switch {
	case n.pointLike:
		n.nucleons[0].SetPosition(offset, 0, 0)
	case n.hulthen:
		n.sampleHulthen(offset)
	default:
		n.sampleWoodsSaxon(offset)
	}
}

// sampleHulthen places the two deuteron nucleons back to back along a
// random direction, with the separation drawn from the Hulthen density.
func (n *Nucleus) sampleHulthen(offset float64) {
	var r float64
	for {
		r = n.rng.Float64() * hulthenRMax
		if n.rng.Float64()*n.hulthenPk < hulthenDensity(r) {
			break
		}
	}

	cosT := 2*n.rng.Float64() - 1
	sinT := math.Sqrt(1 - cosT*cosT)
	phi := 2 * math.Pi * n.rng.Float64()

	x := 0.5 * r * sinT * math.Cos(phi)
	y := 0.5 * r * sinT * math.Sin(phi)
	z := 0.5 * r * cosT

	n.nucleons[0].SetPosition(offset+x, y, z)
	n.nucleons[1].SetPosition(offset-x, -y, -z)
}

// sampleWoodsSaxon fills the buffer by rejection sampling, enforcing the
// minimum inter-nucleon distance, and applies a random orientation for
// deformed species before the offset shift.
func (n *Nucleus) sampleWoodsSaxon(offset float64) {
	rot := identityRotation()
	if n.deformed {
		rot = n.randomRotation()
	}

	for i := range n.nucleons {
		var x, y, z float64
		for try := 0; try < maxPlacementTries; try++ {
			x, y, z = n.samplePoint()
			if n.farEnough(x, y, z, i) {
				break
			}
		}
		n.nucleons[i].SetPosition(x, y, z)
	}

	if n.deformed {
		for i := range n.nucleons {
			nuc := &n.nucleons[i]
			x, y, z := rot.apply(nuc.X, nuc.Y, nuc.Z)
			nuc.SetPosition(x, y, z)
		}
	}

	for i := range n.nucleons {
		n.nucleons[i].X += offset
	}
}

// samplePoint draws one body-frame position: uniform in the bounding
// sphere, accepted against the (possibly angle-dependent) Fermi density.
func (n *Nucleus) samplePoint() (x, y, z float64) {
	for {
		r := n.rmax * math.Cbrt(n.rng.Float64())
		cosT := 2*n.rng.Float64() - 1
		sinT := math.Sqrt(1 - cosT*cosT)
		phi := 2 * math.Pi * n.rng.Float64()

		reff := n.wsR
		if n.deformed {
			reff = n.deformedRadius(cosT, phi)
		}

		if n.rng.Float64() < 1/(1+math.Exp((r-reff)/n.wsA)) {
			return r * sinT * math.Cos(phi), r * sinT * math.Sin(phi), r * cosT
		}
	}
}

// deformedRadius evaluates the angle-dependent half-density radius with
// quadrupole (triaxial via gamma), octupole, and hexadecapole terms.
func (n *Nucleus) deformedRadius(cosT, phi float64) float64 {
	c2 := cosT * cosT
	s2 := 1 - c2

	y20 := 0.25 * math.Sqrt(5/math.Pi) * (3*c2 - 1)
	y22 := 0.25 * math.Sqrt(15/math.Pi) * s2 * math.Cos(2*phi)
	y30 := 0.25 * math.Sqrt(7/math.Pi) * cosT * (5*c2 - 3)
	y40 := 3.0 / 16.0 * math.Sqrt(1/math.Pi) * (35*c2*c2 - 30*c2 + 3)

	quad := n.beta2 * (math.Cos(n.gamma)*y20 + math.Sin(n.gamma)*y22)
	return n.wsR * (1 + quad + n.beta3*y30 + n.beta4*y40)
}

// farEnough checks the 3D minimum-distance constraint against all
// previously placed nucleons.
func (n *Nucleus) farEnough(x, y, z float64, placed int) bool {
	if n.minDist <= 0 {
		return true
	}
	dsq := n.minDist * n.minDist
	for j := 0; j < placed; j++ {
		dx := x - n.nucleons[j].X
		dy := y - n.nucleons[j].Y
		dz := z - n.nucleons[j].Z
		if dx*dx+dy*dy+dz*dz < dsq {
			return false
		}
	}
	return true
}

// rotation is a 3x3 rotation matrix in row-major order.
type rotation [9]float64

func identityRotation() rotation {
	return rotation{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (m rotation) apply(x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// randomRotation draws a uniform orientation as z-y-z Euler rotations.
func (n *Nucleus) randomRotation() rotation {
	alpha := 2 * math.Pi * n.rng.Float64()
	cosBeta := 2*n.rng.Float64() - 1
	psi := 2 * math.Pi * n.rng.Float64()

	sinBeta := math.Sqrt(1 - cosBeta*cosBeta)
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	cp, sp := math.Cos(psi), math.Sin(psi)
	cb, sb := cosBeta, sinBeta

	return rotation{
		ca*cb*cp - sa*sp, -ca*cb*sp - sa*cp, ca * sb,
		sa*cb*cp + ca*sp, -sa*cb*sp + ca*cp, sa * sb,
		-sb * cp, sb * sp, cb,
	}
}

// hulthenDensity is the radial probability density (up to normalization)
// of the deuteron nucleon separation.
func hulthenDensity(r float64) float64 {
	u := math.Exp(-hulthenA*r) - math.Exp(-hulthenB*r)
	return u * u
}

// hulthenPeak finds the density maximum once, for rejection sampling.
func hulthenPeak() float64 {
	peak := 0.0
	for r := 0.0; r <= hulthenRMax; r += 0.01 {
		if d := hulthenDensity(r); d > peak {
			peak = d
		}
	}
	return peak
}
