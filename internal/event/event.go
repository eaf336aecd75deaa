// Package event computes per-event observables from an accepted nucleon
// configuration: participant thickness profiles on a transverse grid, the
// reduced thickness, multiplicity, and eccentricity harmonics.
package event

import (
	"fmt"
	"math"

	"github.com/MaximVirta/trento/internal/nucleon"
	"github.com/MaximVirta/trento/internal/nucleus"
)

// Event is the per-event result handed to the output sinks. The grid
// fields are reused across events; consumers must not retain them.
type Event struct {
	Npart int
	Mult  float64

	// Ecc[n] and Psi[n] hold the eccentricity magnitude and participant-
	// plane angle for harmonics n = 2..5.
	Ecc map[int]float64
	Psi map[int]float64

	// MeanX, MeanY locate the energy-weighted center of mass.
	MeanX, MeanY float64

	grid [][]float64
}

// Grid exposes the reduced-thickness grid of the most recent event.
func (e *Event) Grid() [][]float64 {
	return e.grid
}

// Options configures the profile computation.
type Options struct {
	GridMax  float64 // grid half-width (fm)
	GridStep float64 // cell size (fm)
	P        float64 // generalized-mean parameter
	Norm     float64 // overall normalization of the reduced thickness
}

// Computer evaluates profiles for one run. The thickness grids are
// allocated once and overwritten every event.
type Computer struct {
	opts  Options
	nx    int
	ta    [][]float64
	tb    [][]float64
	event Event
}

// NewComputer validates the grid options and allocates the working grids.
func NewComputer(opts Options) (*Computer, error) {
	if opts.GridMax <= 0 || opts.GridStep <= 0 {
		return nil, fmt.Errorf("event: grid max and step must be positive, got %g, %g",
			opts.GridMax, opts.GridStep)
	}
	if opts.GridStep > opts.GridMax {
		return nil, fmt.Errorf("event: grid step %g exceeds grid max %g",
			opts.GridStep, opts.GridMax)
	}
	if opts.Norm <= 0 {
		opts.Norm = 1
	}

	nx := int(math.Ceil(2 * opts.GridMax / opts.GridStep))
	c := &Computer{opts: opts, nx: nx}
	c.ta = newGrid(nx)
	c.tb = newGrid(nx)
	c.event.grid = newGrid(nx)
	c.event.Ecc = make(map[int]float64, 4)
	c.event.Psi = make(map[int]float64, 4)
	return c, nil
}

func newGrid(nx int) [][]float64 {
	g := make([][]float64, nx)
	for i := range g {
		g[i] = make([]float64, nx)
	}
	return g
}

// Compute evaluates the event observables from the post-scan nuclei. Only
// participant nucleons contribute; their fluctuation weights are drawn
// here when fluctuations are enabled.
func (c *Computer) Compute(a, b *nucleus.Nucleus, nc *nucleon.Common) *Event {
	ev := &c.event
	ev.Npart = 0
	for i := range ev.Ecc {
		delete(ev.Ecc, i)
		delete(ev.Psi, i)
	}

	ev.Npart += c.fillThickness(c.ta, a, nc)
	ev.Npart += c.fillThickness(c.tb, b, nc)
	c.reduce()
	c.observables()
	return ev
}

// fillThickness deposits each participant's Gaussian thickness on the
// grid and returns the participant count.
func (c *Computer) fillThickness(t [][]float64, nuc *nucleus.Nucleus, nc *nucleon.Common) int {
	for i := range t {
		for j := range t[i] {
			t[i][j] = 0
		}
	}

	w := nc.Width()
	norm := 1 / (2 * math.Pi * w * w)
	npart := 0

	nucleons := nuc.Nucleons()
	for i := range nucleons {
		n := &nucleons[i]
		if !n.IsParticipant() {
			continue
		}
		npart++
		n.Fluct = nc.SampleFluct()

		for ix := 0; ix < c.nx; ix++ {
			x := c.cellCenter(ix)
			dxsq := (x - n.X) * (x - n.X)
			for iy := 0; iy < c.nx; iy++ {
				y := c.cellCenter(iy)
				dsq := dxsq + (y-n.Y)*(y-n.Y)
				t[ix][iy] += n.Fluct * norm * math.Exp(-dsq/(2*w*w))
			}
		}
	}
	return npart
}

func (c *Computer) cellCenter(i int) float64 {
	return -c.opts.GridMax + (float64(i)+0.5)*c.opts.GridStep
}

// reduce combines the two thickness grids with the generalized mean of
// order p: geometric for p = 0, arithmetic for p = 1, harmonic for p = -1.
func (c *Computer) reduce() {
	p := c.opts.P
	for ix := 0; ix < c.nx; ix++ {
		for iy := 0; iy < c.nx; iy++ {
			ta := c.ta[ix][iy]
			tb := c.tb[ix][iy]

			var tr float64
			switch {
			case p == 0:
				tr = math.Sqrt(ta * tb)
			case p > 0:
				tr = math.Pow(0.5*(math.Pow(ta, p)+math.Pow(tb, p)), 1/p)
			default:
				// Negative orders vanish when either side vanishes.
				if ta <= 0 || tb <= 0 {
					tr = 0
				} else {
					tr = math.Pow(0.5*(math.Pow(ta, p)+math.Pow(tb, p)), 1/p)
				}
			}
			c.event.grid[ix][iy] = c.opts.Norm * tr
		}
	}
}

// observables integrates the reduced-thickness grid: multiplicity,
// center of mass, and eccentricity harmonics 2..5 about that center.
func (c *Computer) observables() {
	ev := &c.event
	cell := c.opts.GridStep * c.opts.GridStep

	var sum, sumX, sumY float64
	for ix := 0; ix < c.nx; ix++ {
		x := c.cellCenter(ix)
		for iy := 0; iy < c.nx; iy++ {
			tr := ev.grid[ix][iy]
			sum += tr
			sumX += tr * x
			sumY += tr * c.cellCenter(iy)
		}
	}

	ev.Mult = cell * sum
	if sum <= 0 {
		ev.MeanX, ev.MeanY = 0, 0
		for n := 2; n <= 5; n++ {
			ev.Ecc[n], ev.Psi[n] = 0, 0
		}
		return
	}
	ev.MeanX = sumX / sum
	ev.MeanY = sumY / sum

	for n := 2; n <= 5; n++ {
		var re, im, wsum float64
		for ix := 0; ix < c.nx; ix++ {
			x := c.cellCenter(ix) - ev.MeanX
			for iy := 0; iy < c.nx; iy++ {
				tr := ev.grid[ix][iy]
				if tr <= 0 {
					continue
				}
				y := c.cellCenter(iy) - ev.MeanY
				r := math.Hypot(x, y)
				phi := math.Atan2(y, x)
				rn := math.Pow(r, float64(n))
				re += tr * rn * math.Cos(float64(n)*phi)
				im += tr * rn * math.Sin(float64(n)*phi)
				wsum += tr * rn
			}
		}
		if wsum <= 0 {
			ev.Ecc[n], ev.Psi[n] = 0, 0
			continue
		}
		ev.Ecc[n] = math.Hypot(re, im) / wsum
		ev.Psi[n] = math.Atan2(im, re)/float64(n) + math.Pi/float64(n)
	}
}
