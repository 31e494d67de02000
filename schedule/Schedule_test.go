package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steps(s Schedule, n int) []float64 {
	rates := make([]float64, n)
	for i := range rates {
		rates[i] = s.Step()
	}
	return rates
}

func TestStepDecay(t *testing.T) {
	s, err := NewStepDecay(1.0, 0.5, 2)
	require.NoError(t, err)

	assert.Equal(t, 1.0, s.Rate())
	assert.Equal(t, []float64{1, 0.5, 0.5, 0.25}, steps(s, 4))
	assert.Equal(t, 4, s.Iter())

	_, err = NewStepDecay(1.0, 0.5, 0)
	assert.Error(t, err)
}

func TestExponential(t *testing.T) {
	e := NewExponential(2.0, 0.5)
	assert.Equal(t, []float64{1, 0.5, 0.25}, steps(e, 3))
}

func TestCosine(t *testing.T) {
	c, err := NewCosine(1.0, 0.0, 4)
	require.NoError(t, err)

	assert.Equal(t, 1.0, c.Rate())
	rates := steps(c, 6)
	assert.InDelta(t, 0.5, rates[1], 1e-12)
	assert.InDelta(t, 0.0, rates[3], 1e-12)
	assert.InDelta(t, 0.0, rates[5], 1e-12)
	for i := 1; i < 4; i++ {
		assert.Less(t, rates[i], rates[i-1])
	}

	_, err = NewCosine(1.0, 0.0, -1)
	assert.Error(t, err)
}

func TestStateDictResumes(t *testing.T) {
	decay, err := NewStepDecay(1.0, 0.1, 3)
	require.NoError(t, err)
	cosine, err := NewCosine(0.1, 0.001, 10)
	require.NoError(t, err)

	fresh := func(s Schedule) Schedule {
		switch s.(type) {
		case *StepDecay:
			return &StepDecay{}
		case *Exponential:
			return &Exponential{}
		default:
			return &Cosine{}
		}
	}

	for _, s := range []Schedule{decay, NewExponential(1.0, 0.9), cosine} {
		steps(s, 5)
		state, err := s.StateDict()
		require.NoError(t, err)

		loaded := fresh(s)
		require.NoError(t, loaded.LoadStateDict(state))
		assert.Equal(t, s.Iter(), loaded.Iter())
		assert.Equal(t, s.Rate(), loaded.Rate())
		assert.Equal(t, s.Step(), loaded.Step())
	}
}

func TestLoadStateDictInvalid(t *testing.T) {
	s, err := NewStepDecay(1.0, 0.5, 2)
	require.NoError(t, err)

	assert.Error(t, s.LoadStateDict([]byte("{")))
	assert.Error(t, s.LoadStateDict([]byte(`{"Every":0}`)))
	assert.Equal(t, 2, s.Every)
}
