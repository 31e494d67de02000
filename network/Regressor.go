package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/exputils/initwfn"
	"github.com/samuelfneumann/exputils/solver"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var _ NeuralNet = &Regressor{}

// Regressor is a multi-layered perceptron trained to minimize the mean
// squared error between its predictions and a batch of targets.
//
// A Regressor holds a single computational graph with a fixed batch
// size; inputs to Train, Predict, and Embed must hold exactly
// BatchSize() samples.
type Regressor struct {
	g          *G.ExprGraph
	layers     []*fcLayer
	input      *G.Node
	target     *G.Node
	hidden     *G.Node
	prediction *G.Node
	loss       *G.Node

	numInputs  int
	numOutputs int
	batchSize  int

	learnables G.Nodes
	model      []G.ValueGrad

	predVal   G.Value
	hiddenVal G.Value
	lossVal   G.Value

	vm     G.VM
	solver *solver.Solver
}

// NewRegressor creates and returns a new Regressor.
//
// The Regressor has len(hiddenSizes) + 1 fully connected layers. For
// index i, hiddenSizes[i] is the number of nodes in hidden layer i and
// activations[i] is the activation function of hidden layer i. A final
// linear layer producing outputs predictions is always added. The
// parameter init determines the weight initialization scheme and s
// the solver used by Train.
func NewRegressor(features, outputs, batch int, hiddenSizes []int,
	activations []*Activation, init *initwfn.InitWFn,
	s *solver.Solver) (*Regressor, error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newRegressor: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if features <= 0 || outputs <= 0 || batch <= 0 {
		return nil, fmt.Errorf("newRegressor: features, outputs, and batch "+
			"must be positive, have (%v, %v, %v)", features, outputs, batch)
	}
	if s == nil {
		return nil, fmt.Errorf("newRegressor: solver must not be nil")
	}

	g := G.NewGraph()
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))
	target := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, outputs),
		G.WithName("target"), G.WithInit(G.Zeroes()))

	layers := make([]*fcLayer, 0, len(hiddenSizes)+1)
	in := features
	for i, size := range hiddenSizes {
		layers = append(layers, newfcLayer(g, in, size, activations[i],
			init.InitWFn(), fmt.Sprintf("L%d", i)))
		in = size
	}
	layers = append(layers, newfcLayer(g, in, outputs, Identity(),
		init.InitWFn(), fmt.Sprintf("L%d", len(hiddenSizes))))

	r := &Regressor{
		g:          g,
		layers:     layers,
		input:      input,
		target:     target,
		numInputs:  features,
		numOutputs: outputs,
		batchSize:  batch,
		solver:     s,
	}

	if err := r.fwd(); err != nil {
		return nil, fmt.Errorf("newRegressor: could not compute forward "+
			"pass: %v", err)
	}

	// Mean squared error
	loss := G.Must(G.Sub(r.prediction, target))
	loss = G.Must(G.Square(loss))
	r.loss = G.Must(G.Mean(loss))
	G.Read(r.loss, &r.lossVal)

	if _, err := G.Grad(r.loss, r.Learnables()...); err != nil {
		return nil, fmt.Errorf("newRegressor: could not compute gradient: %v",
			err)
	}
	r.vm = G.NewTapeMachine(g, G.BindDualValues(r.Learnables()...))

	return r, nil
}

// fwd adds the forward pass of all layers to the graph
func (r *Regressor) fwd() error {
	pred := r.input
	r.hidden = r.input

	var err error
	for i, l := range r.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return fmt.Errorf(msg, i, err)
		}
		if i == len(r.layers)-2 {
			r.hidden = pred
		}
	}
	r.prediction = pred

	G.Read(r.prediction, &r.predVal)
	G.Read(r.hidden, &r.hiddenVal)
	return nil
}

// Graph returns the computational graph of the Regressor
func (r *Regressor) Graph() *G.ExprGraph {
	return r.g
}

// BatchSize returns the number of samples in a batch of inputs
func (r *Regressor) BatchSize() int {
	return r.batchSize
}

// Features returns the number of features in a single input sample
func (r *Regressor) Features() int {
	return r.numInputs
}

// Outputs returns the number of predictions made per sample
func (r *Regressor) Outputs() int {
	return r.numOutputs
}

// Layers returns the number of fully connected layers
func (r *Regressor) Layers() int {
	return len(r.layers)
}

// Solver returns the solver used by Train
func (r *Regressor) Solver() *solver.Solver {
	return r.solver
}

// SetInput sets the value of the input node before running the forward
// pass.
func (r *Regressor) SetInput(input []float64) error {
	return r.let(r.input, input, r.numInputs)
}

// SetTarget sets the value of the target node before running the
// forward pass.
func (r *Regressor) SetTarget(target []float64) error {
	return r.let(r.target, target, r.numOutputs)
}

func (r *Regressor) let(node *G.Node, data []float64, cols int) error {
	if len(data) != cols*r.batchSize {
		return fmt.Errorf("let: invalid number of values for node %v"+
			"\n\twant(%v)\n\thave(%v)", node.Name(), cols*r.batchSize,
			len(data))
	}
	t := tensor.New(
		tensor.WithBacking(append([]float64(nil), data...)),
		tensor.WithShape(node.Shape()...),
	)
	return G.Let(node, t)
}

// Learnables returns the learnable nodes of the Regressor
func (r *Regressor) Learnables() G.Nodes {
	if r.learnables == nil {
		learnables := make([]*G.Node, 0, 2*len(r.layers))
		for _, l := range r.layers {
			learnables = append(learnables, l.Weights(), l.Bias())
		}
		r.learnables = G.Nodes(learnables)
	}
	return r.learnables
}

// Model returns the learnable nodes with their gradients
func (r *Regressor) Model() []G.ValueGrad {
	if r.model == nil {
		r.model = G.NodesToValueGrads(r.Learnables())
	}
	return r.model
}

// Prediction returns the node of the computational graph that stores
// the output of the Regressor
func (r *Regressor) Prediction() *G.Node {
	return r.prediction
}

// Output returns the most recently computed output of the Regressor
func (r *Regressor) Output() G.Value {
	return r.predVal
}

// run runs the graph on the given inputs and targets
func (r *Regressor) run(input, target []float64) error {
	if err := r.SetInput(input); err != nil {
		return err
	}
	if target != nil {
		if err := r.SetTarget(target); err != nil {
			return err
		}
	}

	err := r.vm.RunAll()
	r.vm.Reset()
	return err
}

// Train takes a single solver step on a batch of inputs and targets,
// each stored in row-major order, and returns the mean squared error
// before the step.
func (r *Regressor) Train(input, target []float64) (float64, error) {
	if err := r.run(input, target); err != nil {
		return 0, fmt.Errorf("train: %v", err)
	}
	if err := r.solver.Step(r.Model()); err != nil {
		return 0, fmt.Errorf("train: could not step solver: %v", err)
	}
	return r.lossVal.Data().(float64), nil
}

// Loss returns the mean squared error on a batch of inputs and targets
// without changing any weights
func (r *Regressor) Loss(input, target []float64) (float64, error) {
	if err := r.run(input, target); err != nil {
		return 0, fmt.Errorf("loss: %v", err)
	}
	return r.lossVal.Data().(float64), nil
}

// Predict returns the predictions on a batch of inputs as a
// BatchSize() x Outputs() matrix
func (r *Regressor) Predict(input []float64) (*mat.Dense, error) {
	if err := r.run(input, nil); err != nil {
		return nil, fmt.Errorf("predict: %v", err)
	}
	return toMat(r.predVal), nil
}

// Embed returns the output of the final hidden layer on a batch of
// inputs, one row per sample. If the Regressor has no hidden layers,
// the inputs are returned.
func (r *Regressor) Embed(input []float64) (*mat.Dense, error) {
	if err := r.run(input, nil); err != nil {
		return nil, fmt.Errorf("embed: %v", err)
	}
	return toMat(r.hiddenVal), nil
}

// Weights returns a copy of the weight matrix of layer i
func (r *Regressor) Weights(i int) (*mat.Dense, error) {
	if i < 0 || i >= len(r.layers) {
		return nil, fmt.Errorf("weights: layer %v out of range [0, %v)", i,
			len(r.layers))
	}
	return toMat(r.layers[i].Weights().Value()), nil
}

// toMat copies a matrix Value into a *mat.Dense
func toMat(v G.Value) *mat.Dense {
	shape := v.Shape()
	data := append([]float64(nil), v.Data().([]float64)...)
	return mat.NewDense(shape[0], shape[1], data)
}

// param is the serialized value of a single learnable node
type param struct {
	Name  string
	Shape []int
	Data  []float64
}

// StateDict returns the gob encoded values of all learnable nodes
func (r *Regressor) StateDict() ([]byte, error) {
	params := make([]param, len(r.Learnables()))
	for i, node := range r.Learnables() {
		params[i] = param{
			Name:  node.Name(),
			Shape: append([]int(nil), node.Shape()...),
			Data:  append([]float64(nil), node.Value().Data().([]float64)...),
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(params); err != nil {
		return nil, fmt.Errorf("stateDict: could not encode weights: %v", err)
	}
	return buf.Bytes(), nil
}

// LoadStateDict sets the values of all learnable nodes from a state
// dictionary returned by StateDict. The architectures must match.
func (r *Regressor) LoadStateDict(state []byte) error {
	var params []param
	if err := gob.NewDecoder(bytes.NewReader(state)).Decode(&params); err != nil {
		return fmt.Errorf("loadStateDict: could not decode weights: %v", err)
	}

	nodes := r.Learnables()
	if len(params) != len(nodes) {
		return fmt.Errorf("loadStateDict: invalid number of weights"+
			"\n\twant(%v)\n\thave(%v)", len(nodes), len(params))
	}

	for i, node := range nodes {
		if !node.Shape().Eq(tensor.Shape(params[i].Shape)) {
			return fmt.Errorf("loadStateDict: invalid shape for %v"+
				"\n\twant(%v)\n\thave(%v)", node.Name(), node.Shape(),
				params[i].Shape)
		}
	}

	// Copy in place so that values stay bound to their gradients
	for i, node := range nodes {
		copy(node.Value().Data().([]float64), params[i].Data)
	}
	return nil
}
