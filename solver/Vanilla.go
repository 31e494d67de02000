package solver

import G "gorgonia.org/gorgonia"

// VanillaConfig describes a configuration of vanilla stochastic
// gradient descent
type VanillaConfig struct {
	Hyper
}

// Type returns Vanilla
func (v VanillaConfig) Type() Type {
	return Vanilla
}

// Validate returns an error if the step size or batch size is illegal
func (v VanillaConfig) Validate() error {
	return v.Hyper.validate()
}

// Create returns a Gorgonia Vanilla Solver as described by the
// VanillaConfig
func (v VanillaConfig) Create() G.Solver {
	return G.NewVanillaSolver(v.options()...)
}

// WithRate returns a copy of the configuration with a new step size
func (v VanillaConfig) WithRate(stepSize float64) Config {
	v.StepSize = stepSize
	return v
}
