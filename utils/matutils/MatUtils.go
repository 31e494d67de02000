// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// NormalizeRows returns a copy of a matrix with each row divided by
// its L-norm, where the norm is clamped below at eps so that all-zero
// rows stay zero.
func NormalizeRows(matrix mat.Matrix, norm, eps float64) *mat.Dense {
	r, c := matrix.Dims()
	normalized := mat.NewDense(r, c, nil)
	normalized.Copy(matrix)

	for i := 0; i < r; i++ {
		row := normalized.RawRowView(i)
		floats.Scale(1/math.Max(floats.Norm(row, norm), eps), row)
	}
	return normalized
}

// Float returns a matrix of 1.0 where a boolean matrix is true and 0.0
// where it is false
func Float(b [][]bool) *mat.Dense {
	if len(b) == 0 || len(b[0]) == 0 {
		return &mat.Dense{}
	}

	r, c := len(b), len(b[0])
	data := make([]float64, 0, r*c)
	for i := range b {
		for j := range b[i] {
			if b[i][j] {
				data = append(data, 1.0)
			} else {
				data = append(data, 0.0)
			}
		}
	}
	return mat.NewDense(r, c, data)
}
