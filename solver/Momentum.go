package solver

import G "gorgonia.org/gorgonia"

// MomentumConfig describes a configuration of stochastic gradient
// descent with momentum
type MomentumConfig struct {
	Hyper
	Momentum float64
}

// Type returns Momentum
func (m MomentumConfig) Type() Type {
	return Momentum
}

// Validate returns an error if any hyperparameter is illegal
func (m MomentumConfig) Validate() error {
	if err := m.Hyper.validate(); err != nil {
		return err
	}
	return unit("momentum", m.Momentum)
}

// Create returns a new Gorgonia Momentum Solver as described by the
// MomentumConfig
func (m MomentumConfig) Create() G.Solver {
	opts := append(m.options(), G.WithMomentum(m.Momentum))
	return G.NewMomentum(opts...)
}

// WithRate returns a copy of the configuration with a new step size
func (m MomentumConfig) WithRate(stepSize float64) Config {
	m.StepSize = stepSize
	return m
}
