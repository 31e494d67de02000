package network

import (
	"testing"

	"github.com/samuelfneumann/exputils/experiment/checkpointer"
	"github.com/samuelfneumann/exputils/initwfn"
	"github.com/samuelfneumann/exputils/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var _ checkpointer.Stater = &Regressor{}

const (
	features = 2
	batch    = 4
)

// linearData returns a batch of inputs and targets with y = x0 - 2 x1
func linearData() (x, y []float64) {
	x = []float64{0, 1, 1, 0, 0.5, 0.5, -1, 0.25}
	y = make([]float64, batch)
	for i := range y {
		y[i] = x[2*i] - 2*x[2*i+1]
	}
	return
}

func newRegressor(t *testing.T, init *initwfn.InitWFn) *Regressor {
	s, err := solver.New(solver.Vanilla,
		solver.Hyper{StepSize: 0.05, Batch: batch})
	require.NoError(t, err)

	r, err := NewRegressor(features, 1, batch, []int{8}, []*Activation{TanH()},
		init, s)
	require.NoError(t, err)
	return r
}

func glorot(t *testing.T) *initwfn.InitWFn {
	init, err := initwfn.NewGlorot(1.0, false)
	require.NoError(t, err)
	return init
}

func TestNewRegressorInvalid(t *testing.T) {
	s, err := solver.New(solver.Vanilla,
		solver.Hyper{StepSize: 0.05, Batch: batch})
	require.NoError(t, err)

	_, err = NewRegressor(features, 1, batch, []int{8, 8},
		[]*Activation{ReLU()}, glorot(t), s)
	assert.Error(t, err)

	_, err = NewRegressor(0, 1, batch, nil, nil, glorot(t), s)
	assert.Error(t, err)

	_, err = NewRegressor(features, 1, batch, nil, nil, glorot(t), nil)
	assert.Error(t, err)
}

func TestTrainReducesLoss(t *testing.T) {
	r := newRegressor(t, glorot(t))
	x, y := linearData()

	initial, err := r.Loss(x, y)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		_, err := r.Train(x, y)
		require.NoError(t, err)
	}

	final, err := r.Loss(x, y)
	require.NoError(t, err)
	assert.Less(t, final, initial)
}

func TestShapes(t *testing.T) {
	r := newRegressor(t, glorot(t))
	x, _ := linearData()

	pred, err := r.Predict(x)
	require.NoError(t, err)
	rows, cols := pred.Dims()
	assert.Equal(t, []int{batch, 1}, []int{rows, cols})

	hidden, err := r.Embed(x)
	require.NoError(t, err)
	rows, cols = hidden.Dims()
	assert.Equal(t, []int{batch, 8}, []int{rows, cols})

	w, err := r.Weights(0)
	require.NoError(t, err)
	rows, cols = w.Dims()
	assert.Equal(t, []int{features, 8}, []int{rows, cols})

	_, err = r.Weights(r.Layers())
	assert.Error(t, err)

	_, err = r.Predict(x[:3])
	assert.Error(t, err)
}

func TestStateDictRoundTrip(t *testing.T) {
	trained := newRegressor(t, glorot(t))
	x, y := linearData()
	for i := 0; i < 10; i++ {
		_, err := trained.Train(x, y)
		require.NoError(t, err)
	}

	zeroes, err := initwfn.NewZeroes()
	require.NoError(t, err)
	loaded := newRegressor(t, zeroes)

	state, err := trained.StateDict()
	require.NoError(t, err)
	require.NoError(t, loaded.LoadStateDict(state))

	want, err := trained.Predict(x)
	require.NoError(t, err)
	got, err := loaded.Predict(x)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))

	// Loaded weights keep training
	_, err = loaded.Train(x, y)
	assert.NoError(t, err)
}

func TestLoadStateDictArchitectureMismatch(t *testing.T) {
	r := newRegressor(t, glorot(t))
	state, err := r.StateDict()
	require.NoError(t, err)

	s, err := solver.New(solver.Vanilla,
		solver.Hyper{StepSize: 0.05, Batch: batch})
	require.NoError(t, err)
	wide, err := NewRegressor(features, 1, batch, []int{16},
		[]*Activation{TanH()}, glorot(t), s)
	require.NoError(t, err)
	assert.Error(t, wide.LoadStateDict(state))

	deep, err := NewRegressor(features, 1, batch, []int{8, 8},
		[]*Activation{TanH(), TanH()}, glorot(t), s)
	require.NoError(t, err)
	assert.Error(t, deep.LoadStateDict(state))

	assert.Error(t, r.LoadStateDict([]byte("garbage")))
}

func TestActivationByName(t *testing.T) {
	for _, name := range []string{"relu", "TanH", "identity", "sigmoid"} {
		act, err := ActivationByName(name)
		require.NoError(t, err)

		var decoded Activation
		text, err := act.MarshalText()
		require.NoError(t, err)
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, act.String(), decoded.String())
	}

	_, err := ActivationByName("softplus")
	assert.Error(t, err)
}
