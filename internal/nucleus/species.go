package nucleus

import "sort"

// speciesDef holds the built-in parameters for one species: mass number,
// Woods-Saxon radius and diffuseness (fm), and default deformation
// parameters where the ground state is deformed.
type speciesDef struct {
	a         int
	wsR, wsA  float64
	beta2     float64
	beta3     float64
	beta4     float64
	pointLike bool
	hulthen   bool
}

// Built-in species. Woods-Saxon parameters follow the standard two-
// parameter Fermi fits used by the original generator.
var species = map[string]speciesDef{
	"p":  {a: 1, pointLike: true},
	"d":  {a: 2, hulthen: true},
	"O":  {a: 16, wsR: 2.608, wsA: 0.513},
	"Cu": {a: 63, wsR: 4.20, wsA: 0.596},
	"Xe": {a: 129, wsR: 5.36, wsA: 0.590, beta2: 0.162},
	"Au": {a: 197, wsR: 6.38, wsA: 0.535, beta2: -0.130},
	"Pb": {a: 208, wsR: 6.62, wsA: 0.546},
	"U":  {a: 238, wsR: 6.81, wsA: 0.600, beta2: 0.280, beta4: 0.093},
}

// Info describes one built-in species for display.
type Info struct {
	Name         string
	MassNumber   int
	WSRadius     float64
	WSDiffusive  float64
	DefaultBeta2 float64
	DefaultBeta3 float64
	DefaultBeta4 float64
}

// Exists checks whether a species name is recognized.
func Exists(name string) bool {
	_, ok := species[name]
	return ok
}

// List returns all built-in species, sorted by name.
func List() []Info {
	result := make([]Info, 0, len(species))
	for name, def := range species {
		result = append(result, Info{
			Name:         name,
			MassNumber:   def.a,
			WSRadius:     def.wsR,
			WSDiffusive:  def.wsA,
			DefaultBeta2: def.beta2,
			DefaultBeta3: def.beta3,
			DefaultBeta4: def.beta4,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// DefaultDeformation returns the built-in deformation parameters for a
// species, or zeros if the species is unknown or spherical.
func DefaultDeformation(name string) (beta2, beta3, beta4 float64) {
	def, ok := species[name]
	if !ok {
		return 0, 0, 0
	}
	return def.beta2, def.beta3, def.beta4
}
