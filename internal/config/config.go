// Package config provides YAML-based run configuration loading and
// validation for the event generator.
package config

import "fmt"

// RunSpec contains every run-level option, resolved from the config file
// and command-line flags before any physics object is constructed.
type RunSpec struct {
	Projectiles []string        `yaml:"projectiles"`
	NEvents     int             `yaml:"number-events"`
	Seed        int64           `yaml:"random-seed"` // <= 0 means entropy-based
	Impact      ImpactConfig    `yaml:"impact"`
	Nucleon     NucleonConfig   `yaml:"nucleon"`
	Deformation DeformConfig    `yaml:"deformation"`
	Grid        GridConfig      `yaml:"grid"`
	Thickness   ThicknessConfig `yaml:"reduced-thickness"`
	Counters    CounterConfig   `yaml:"counters"`
}

// ImpactConfig bounds the impact-parameter sampling.
type ImpactConfig struct {
	BMin float64 `yaml:"b-min"`
	// BMax < 0 selects the minimum-bias default derived from the nuclear
	// radii and the interaction range.
	BMax float64 `yaml:"b-max"`
}

// NucleonConfig defines the nucleon shape and interaction strength.
type NucleonConfig struct {
	Width        float64 `yaml:"width"`         // Gaussian width w (fm)
	CrossSection float64 `yaml:"cross-section"` // sigma_NN (fm^2)
	FluctShape   float64 `yaml:"fluctuation"`   // gamma shape k, <= 0 off
	MinDist      float64 `yaml:"min-dist"`      // minimum separation (fm)
}

// DeformConfig describes the deformation-parameter distributions. Beta2
// and gamma are drawn once per nucleus at construction; beta3 and beta4
// are fixed values.
type DeformConfig struct {
	Beta2Mean float64 `yaml:"beta2-mean"`
	Beta2Std  float64 `yaml:"beta2-std"`
	Beta3     float64 `yaml:"beta3"`
	Beta4     float64 `yaml:"beta4"`
	GammaMean float64 `yaml:"gamma-mean"`
	GammaStd  float64 `yaml:"gamma-std"`
}

// GridConfig defines the transverse profile grid.
type GridConfig struct {
	Max  float64 `yaml:"max"`  // half-width (fm)
	Step float64 `yaml:"step"` // cell size (fm)
}

// ThicknessConfig selects the reduced-thickness combination.
type ThicknessConfig struct {
	P    float64 `yaml:"p"`    // generalized-mean order
	Norm float64 `yaml:"norm"` // overall normalization
}

// CounterConfig toggles the optional per-event counters. These are cost
// toggles only; disabling one leaves the value at its zero sentinel.
type CounterConfig struct {
	Ncoll     bool `yaml:"ncoll"`
	ToCollide bool `yaml:"to-collide"`
	SoftCap   int  `yaml:"soft-attempt-cap"`
}

// Validate checks parameter combinations that must fail before a run
// starts. Unknown species are reported at nucleus construction instead,
// where the species table lives.
func (s *RunSpec) Validate() error {
	if len(s.Projectiles) != 2 {
		return fmt.Errorf("config: exactly two projectiles required, got %d", len(s.Projectiles))
	}
	if s.NEvents <= 0 {
		return fmt.Errorf("config: number-events must be positive, got %d", s.NEvents)
	}
	if s.Impact.BMin < 0 {
		return fmt.Errorf("config: b-min must be non-negative, got %g", s.Impact.BMin)
	}
	if s.Impact.BMax >= 0 && s.Impact.BMax < s.Impact.BMin {
		return fmt.Errorf("config: b-max %g below b-min %g", s.Impact.BMax, s.Impact.BMin)
	}
	if s.Nucleon.Width <= 0 {
		return fmt.Errorf("config: nucleon width must be positive, got %g", s.Nucleon.Width)
	}
	if s.Nucleon.CrossSection <= 0 {
		return fmt.Errorf("config: cross-section must be positive, got %g", s.Nucleon.CrossSection)
	}
	if s.Nucleon.MinDist < 0 {
		return fmt.Errorf("config: min-dist must be non-negative, got %g", s.Nucleon.MinDist)
	}
	if s.Grid.Max <= 0 || s.Grid.Step <= 0 {
		return fmt.Errorf("config: grid max and step must be positive, got %g, %g",
			s.Grid.Max, s.Grid.Step)
	}
	return nil
}
