// Package analysis implements numerical helpers for analysing learned
// representations: converting log-sigmoid outputs back to logits,
// building label masks, and measuring the connectivity and sparsity of
// graphs stored as matrices.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// minExpm1 bounds expm1(-x) below when recovering large logits, so
// that log probabilities of exactly 0 give a large finite logit
const minExpm1 = math.SmallestNonzeroFloat64

// LogSigmoid returns log(1 / (1 + exp(-x))) computed without overflow
func LogSigmoid(x float64) float64 {
	if x >= 0 {
		return -math.Log1p(math.Exp(-x))
	}
	return x - math.Log1p(math.Exp(x))
}

// LogitFromLogSigmoid inverts LogSigmoid. Given logp = log(sigmoid(x)),
// it returns x. Inputs above -ln 2 and below -ln 2 are handled by
// separate formulas so that both tails stay numerically stable.
func LogitFromLogSigmoid(logp float64) float64 {
	pos := math.Max(logp, -math.Ln2)
	neg := math.Min(logp, -math.Ln2)

	negVal := neg - math.Log(1-math.Exp(neg))
	posVal := -math.Log(math.Max(math.Expm1(-pos), minExpm1))
	return posVal + negVal
}

// LogitsFromLogSigmoid applies LogitFromLogSigmoid elementwise. An
// empty matrix gives an empty matrix.
func LogitsFromLogSigmoid(logp mat.Matrix) *mat.Dense {
	r, c := logp.Dims()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	logits := mat.NewDense(r, c, nil)
	logits.Apply(func(_, _ int, v float64) float64 {
		return LogitFromLogSigmoid(v)
	}, logp)
	return logits
}
