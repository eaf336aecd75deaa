package event

import (
	"math"
	"testing"

	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/nucleus"
	"github.com/MaximVirta/trento/internal/random"
)

// protonPair builds two point-like nuclei at +-sep/2 along x with both
// nucleons marked as participants.
func protonPair(t *testing.T, sep float64) (*nucleus.Nucleus, *nucleus.Nucleus, *nucleon.Common) {
	t.Helper()
	rng := random.New(5)

	nc, err := nucleon.NewCommon(nucleon.Params{Width: 0.5, CrossSection: 6.4}, rng)
	if err != nil {
		t.Fatalf("NewCommon failed: %v", err)
	}

	a, err := nucleus.Create("p", 0, 0, 0, 0, 0, rng)
	if err != nil {
		t.Fatalf("Create(p) failed: %v", err)
	}
	b, err := nucleus.Create("p", 0, 0, 0, 0, 0, rng)
	if err != nil {
		t.Fatalf("Create(p) failed: %v", err)
	}

	a.SampleNucleons(sep / 2)
	b.SampleNucleons(-sep / 2)

	na := &a.Nucleons()[0]
	nb := &b.Nucleons()[0]
	for i := 0; i < 1000 && !na.IsParticipant(); i++ {
		nc.Participate(na, nb)
	}
	if !na.IsParticipant() || !nb.IsParticipant() {
		t.Fatal("proton pair never interacted")
	}
	return a, b, nc
}

func TestNewComputerErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"zero grid max", Options{GridMax: 0, GridStep: 0.2}},
		{"zero grid step", Options{GridMax: 10, GridStep: 0}},
		{"step exceeds max", Options{GridMax: 1, GridStep: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewComputer(tc.opts); err == nil {
				t.Error("NewComputer() accepted invalid grid options")
			}
		})
	}
}

func TestNpartCountsParticipantsOnly(t *testing.T) {
	a, b, nc := protonPair(t, 0)
	c, err := NewComputer(Options{GridMax: 10, GridStep: 0.2})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	ev := c.Compute(a, b, nc)
	if ev.Npart != 2 {
		t.Errorf("Npart = %d, want 2", ev.Npart)
	}

	// Resampling clears the flags; a spectator event yields nothing.
	a.SampleNucleons(50)
	b.SampleNucleons(-50)
	ev = c.Compute(a, b, nc)
	if ev.Npart != 0 {
		t.Errorf("Npart = %d after resample, want 0", ev.Npart)
	}
	if ev.Mult != 0 {
		t.Errorf("Mult = %g for spectator event, want 0", ev.Mult)
	}
	for n := 2; n <= 5; n++ {
		if ev.Ecc[n] != 0 {
			t.Errorf("Ecc[%d] = %g for spectator event, want 0", n, ev.Ecc[n])
		}
	}
}

func TestCentralEventIsRound(t *testing.T) {
	a, b, nc := protonPair(t, 0)
	c, err := NewComputer(Options{GridMax: 10, GridStep: 0.2})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	ev := c.Compute(a, b, nc)
	if math.Abs(ev.MeanX) > 1e-9 || math.Abs(ev.MeanY) > 1e-9 {
		t.Errorf("center of mass at (%g, %g), want origin", ev.MeanX, ev.MeanY)
	}
	for n := 2; n <= 5; n++ {
		if ev.Ecc[n] > 1e-9 {
			t.Errorf("Ecc[%d] = %g for azimuthally symmetric event, want 0", n, ev.Ecc[n])
		}
	}
}

func TestDisplacedEventIsEccentric(t *testing.T) {
	a, b, nc := protonPair(t, 2.0)
	c, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	ev := c.Compute(a, b, nc)
	if ev.Ecc[2] < 0.2 {
		t.Errorf("Ecc[2] = %g for well-separated sources, want > 0.2", ev.Ecc[2])
	}
	// The pair straddles the origin symmetrically.
	if math.Abs(ev.MeanX) > 1e-9 {
		t.Errorf("MeanX = %g, want 0", ev.MeanX)
	}
}

func TestMultiplicityClosure(t *testing.T) {
	// With p = 1 and unit normalization the reduced thickness is the
	// arithmetic mean of two unit-integral Gaussians, so the integrated
	// multiplicity is 1 up to grid truncation.
	a, b, nc := protonPair(t, 0)
	c, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1, Norm: 1})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	ev := c.Compute(a, b, nc)
	if math.Abs(ev.Mult-1) > 0.01 {
		t.Errorf("Mult = %g, want 1 +- 0.01", ev.Mult)
	}
}

func TestGridIntegralMatchesMultiplicity(t *testing.T) {
	// The reported multiplicity is the cell-area-weighted sum of the
	// exposed reduced-thickness grid.
	a, b, nc := protonPair(t, 0)
	c, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	ev := c.Compute(a, b, nc)
	var sum float64
	for _, row := range ev.Grid() {
		for _, tr := range row {
			if tr < 0 {
				t.Fatal("negative reduced thickness on the grid")
			}
			sum += tr
		}
	}

	if got := 0.2 * 0.2 * sum; math.Abs(got-ev.Mult) > 1e-9 {
		t.Errorf("grid integral = %g, Mult = %g", got, ev.Mult)
	}
}

func TestNormScalesMultiplicity(t *testing.T) {
	a, b, nc := protonPair(t, 0)

	base, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1, Norm: 1})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}
	scaled, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1, Norm: 2.5})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	m1 := base.Compute(a, b, nc).Mult
	m2 := scaled.Compute(a, b, nc).Mult
	if math.Abs(m2-2.5*m1) > 1e-9 {
		t.Errorf("Mult with norm 2.5 = %g, want %g", m2, 2.5*m1)
	}
}

func TestGeometricMeanVanishesOneSided(t *testing.T) {
	// p = 0 suppresses regions covered by only one nucleus: with the two
	// sources far apart (but interacting via a forced flag at closer
	// range first), the geometric-mean multiplicity is far below the
	// arithmetic one.
	a, b, nc := protonPair(t, 2.0)

	geo, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 0})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}
	arith, err := NewComputer(Options{GridMax: 10, GridStep: 0.2, P: 1})
	if err != nil {
		t.Fatalf("NewComputer failed: %v", err)
	}

	mGeo := geo.Compute(a, b, nc).Mult
	mArith := arith.Compute(a, b, nc).Mult
	if mGeo <= 0 {
		t.Fatalf("geometric-mean Mult = %g, want > 0", mGeo)
	}
	if mGeo >= mArith {
		t.Errorf("geometric Mult %g not below arithmetic Mult %g", mGeo, mArith)
	}
}
