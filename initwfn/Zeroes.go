package initwfn

import G "gorgonia.org/gorgonia"

// ZeroesConfig implements a configuration of zero initialization
type ZeroesConfig struct{}

// NewZeroes returns a new InitWFn which initializes all weights to zero
func NewZeroes() (*InitWFn, error) {
	return newInitWFn(ZeroesConfig{})
}

// Type returns Zeroes
func (z ZeroesConfig) Type() Type {
	return Zeroes
}

// Validate always returns nil
func (z ZeroesConfig) Validate() error {
	return nil
}

// Create returns the weight initialization algorithm as a Gorgonia
// InitWFn
func (z ZeroesConfig) Create() G.InitWFn {
	return G.Zeroes()
}
