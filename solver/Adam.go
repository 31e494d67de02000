package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// AdamConfig describes a configuration of the Adam solver
type AdamConfig struct {
	Hyper
	Epsilon float64 // Smoothing factor
	Beta1   float64
	Beta2   float64
}

// Type returns Adam
func (a AdamConfig) Type() Type {
	return Adam
}

// Validate returns an error if any hyperparameter is illegal
func (a AdamConfig) Validate() error {
	if err := a.Hyper.validate(); err != nil {
		return err
	}
	if a.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, have(%v)", a.Epsilon)
	}
	if err := unit("beta1", a.Beta1); err != nil {
		return err
	}
	return unit("beta2", a.Beta2)
}

// Create returns a new Gorgonia Adam Solver as described by the
// AdamConfig
func (a AdamConfig) Create() G.Solver {
	opts := append(a.options(),
		G.WithEps(a.Epsilon),
		G.WithBeta1(a.Beta1),
		G.WithBeta2(a.Beta2),
	)
	return G.NewAdamSolver(opts...)
}

// WithRate returns a copy of the configuration with a new step size
func (a AdamConfig) WithRate(stepSize float64) Config {
	a.StepSize = stepSize
	return a
}
