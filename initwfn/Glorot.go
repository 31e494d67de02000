package initwfn

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// GlorotConfig configures Glorot initialization. Weights are drawn
// from a normal distribution if Normal is set and from a uniform
// distribution otherwise, scaled by Gain.
type GlorotConfig struct {
	Gain   float64
	Normal bool
}

// NewGlorot returns a new Glorot weight initializer with the given
// gain, which must be positive.
func NewGlorot(gain float64, normal bool) (*InitWFn, error) {
	return newInitWFn(GlorotConfig{Gain: gain, Normal: normal})
}

// Type returns GlorotN for normal and GlorotU for uniform
// initialization
func (g GlorotConfig) Type() Type {
	if g.Normal {
		return GlorotN
	}
	return GlorotU
}

// Validate returns an error if the gain is not positive
func (g GlorotConfig) Validate() error {
	if g.Gain <= 0 {
		return fmt.Errorf("validate: %v gain must be positive, have(%v)",
			g.Type(), g.Gain)
	}
	return nil
}

// Create returns the Gorgonia InitWFn described by the configuration
func (g GlorotConfig) Create() G.InitWFn {
	if g.Normal {
		return G.GlorotN(g.Gain)
	}
	return G.GlorotU(g.Gain)
}
