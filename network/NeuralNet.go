// Package network implements feed forward neural networks on Gorgonia
// computational graphs, together with state dictionaries so that their
// weights can be checkpointed.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a neural network on a Gorgonia computational graph
type NeuralNet interface {
	Graph() *G.ExprGraph
	BatchSize() int
	Features() int
	Outputs() int
	SetInput([]float64) error
	Learnables() G.Nodes
	Model() []G.ValueGrad
	Prediction() *G.Node
	Output() G.Value
}
