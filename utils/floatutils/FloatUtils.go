// Package floatutils provides utilities for working with floats
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// Range returns the interval spanned by values, ignoring NaNs. If
// values holds no numbers, the returned interval is empty with
// Min > Max.
func Range(values []float64) r1.Interval {
	interval := r1.Interval{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		interval.Min = math.Min(interval.Min, v)
		interval.Max = math.Max(interval.Max, v)
	}
	return interval
}

// Rescale maps value from the interval from onto the interval to. A
// degenerate from interval maps to the centre of to.
func Rescale(value float64, from, to r1.Interval) float64 {
	width := from.Max - from.Min
	if width <= 0 {
		return (to.Min + to.Max) / 2
	}
	return to.Min + (value-from.Min)/width*(to.Max-to.Min)
}

// MaxSlice gets the maximum value and indices of the maximum values in
// a slice of float64. An empty slice gives NaN and no indices.
func MaxSlice(values []float64) (max float64, indices []int) {
	if len(values) == 0 {
		return math.NaN(), nil
	}
	max, indices = values[0], []int{0}

	for i, value := range values[1:] {
		if value > max {
			max = value
			indices = []int{i + 1}
		} else if value == max {
			indices = append(indices, i+1)
		}
	}
	return
}
