package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// RMSPropConfig describes a configuration of the RMSProp solver. The
// batch size of the Hyper is recorded but not used by Gorgonia's
// RMSProp.
type RMSPropConfig struct {
	Hyper
	Epsilon float64
	Rho     float64 // Decay of the running mean of squared gradients
}

// Type returns RMSProp
func (r RMSPropConfig) Type() Type {
	return RMSProp
}

// Validate returns an error if any hyperparameter is illegal
func (r RMSPropConfig) Validate() error {
	if err := r.Hyper.validate(); err != nil {
		return err
	}
	if r.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, have(%v)", r.Epsilon)
	}
	return unit("rho", r.Rho)
}

// Create returns a new Gorgonia RMSProp Solver as described by the
// RMSPropConfig
func (r RMSPropConfig) Create() G.Solver {
	opts := append(r.options(), G.WithEps(r.Epsilon), G.WithRho(r.Rho))
	return G.NewRMSPropSolver(opts...)
}

// WithRate returns a copy of the configuration with a new step size
func (r RMSPropConfig) WithRate(stepSize float64) Config {
	r.StepSize = stepSize
	return r
}
