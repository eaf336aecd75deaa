package config

import (
	_ "embed"
)

//go:embed defaults/run.yaml
var defaultRunYAML []byte

// DefaultRunSpec returns the default run configuration: minimum-bias
// Pb+Pb with geometric reduced thickness.
func DefaultRunSpec() RunSpec {
	return RunSpec{
		Projectiles: []string{"Pb", "Pb"},
		NEvents:     1000,
		Seed:        -1,
		Impact: ImpactConfig{
			BMin: 0,
			BMax: -1,
		},
		Nucleon: NucleonConfig{
			Width:        0.5,
			CrossSection: 6.4,
			FluctShape:   1.0,
			MinDist:      0.4,
		},
		Grid: GridConfig{
			Max:  10.0,
			Step: 0.2,
		},
		Thickness: ThicknessConfig{
			P:    0,
			Norm: 1,
		},
	}
}
