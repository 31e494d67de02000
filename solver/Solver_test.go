package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDictRoundTrip(t *testing.T) {
	for _, typ := range []Type{Adam, Vanilla, RMSProp, Momentum} {
		s, err := New(typ, Hyper{StepSize: 0.01, Batch: 32, Clip: 5})
		require.NoError(t, err)
		assert.Equal(t, typ, s.Type)

		state, err := s.StateDict()
		require.NoError(t, err)

		// Load into a solver of a different type
		loaded, err := New(Vanilla, Hyper{StepSize: 1, Batch: 1})
		require.NoError(t, err)
		require.NoError(t, loaded.LoadStateDict(state))

		assert.Equal(t, s.Type, loaded.Type)
		assert.Equal(t, s.Config, loaded.Config)
		assert.NotNil(t, loaded.Solver)
	}
}

func TestNewDefaults(t *testing.T) {
	h := Hyper{StepSize: 0.001, Batch: 16}

	adam, err := New(Adam, h)
	require.NoError(t, err)
	assert.Equal(t, AdamConfig{Hyper: h, Epsilon: 1e-8, Beta1: 0.9,
		Beta2: 0.999}, adam.Config)

	rmsprop, err := New(RMSProp, h)
	require.NoError(t, err)
	assert.Equal(t, RMSPropConfig{Hyper: h, Epsilon: 1e-8, Rho: 0.999},
		rmsprop.Config)

	_, err = New("SGD", h)
	assert.Error(t, err)
}

func TestLoadStateDictInvalid(t *testing.T) {
	s, err := New(Vanilla, Hyper{StepSize: 0.1, Batch: 1})
	require.NoError(t, err)

	assert.Error(t, s.LoadStateDict([]byte("not json")))
	assert.Error(t, s.LoadStateDict([]byte(`{"Type":"SGD","Config":{}}`)))
	assert.Error(t, s.LoadStateDict([]byte(`{"Config":{}}`)))
	assert.Error(t, s.LoadStateDict([]byte(`{"Type":"Vanilla","Config":{}}`)))

	// Failed loads leave the solver untouched
	assert.Equal(t, Vanilla, s.Type)
	assert.Equal(t, 0.1, s.StepSize())
}

func TestSetStepSize(t *testing.T) {
	s, err := New(Adam, Hyper{StepSize: 0.01, Batch: 32})
	require.NoError(t, err)

	s.SetStepSize(0.5)
	assert.Equal(t, 0.5, s.StepSize())
	assert.Equal(t, 0.5, s.Config.(AdamConfig).StepSize)

	state, err := s.StateDict()
	require.NoError(t, err)
	loaded, err := New(Adam, Hyper{StepSize: 0.01, Batch: 32})
	require.NoError(t, err)
	require.NoError(t, loaded.LoadStateDict(state))
	assert.Equal(t, 0.5, loaded.StepSize())
}

func TestInvalidConfig(t *testing.T) {
	h := Hyper{StepSize: 0.1, Batch: 1}
	for _, c := range []Config{
		VanillaConfig{Hyper: Hyper{StepSize: 0, Batch: 1}},
		VanillaConfig{Hyper: Hyper{StepSize: 0.1, Batch: 0}},
		AdamConfig{Hyper: h, Epsilon: 0, Beta1: 0.9, Beta2: 0.999},
		AdamConfig{Hyper: h, Epsilon: 1e-8, Beta1: 1, Beta2: 0.999},
		RMSPropConfig{Hyper: h, Epsilon: 1e-8, Rho: -0.1},
		MomentumConfig{Hyper: h, Momentum: 1.5},
	} {
		_, err := FromConfig(c)
		assert.Error(t, err, "config %+v", c)
	}
}
