package main

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// dataset is a regression dataset whose inputs are drawn from
// Gaussian clusters. Each target is a non-linear function of the input
// offset by the cluster label.
type dataset struct {
	x      *mat.Dense
	y      []float64
	labels []int
}

// newClusters returns a dataset of perCluster samples from each of
// clusters Gaussian clusters in features dimensions
func newClusters(src rand.Source, clusters, perCluster,
	features int) *dataset {
	centres := distuv.Normal{Mu: 0, Sigma: 3, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: 0.5, Src: src}

	n := clusters * perCluster
	d := &dataset{
		x:      mat.NewDense(n, features, nil),
		y:      make([]float64, n),
		labels: make([]int, n),
	}

	for c := 0; c < clusters; c++ {
		centre := make([]float64, features)
		for j := range centre {
			centre[j] = centres.Rand()
		}

		for k := 0; k < perCluster; k++ {
			i := c*perCluster + k
			d.labels[i] = c
			target := float64(c)
			for j := range centre {
				v := centre[j] + noise.Rand()
				d.x.Set(i, j, v)
				target += math.Sin(v) / float64(features)
			}
			d.y[i] = target
		}
	}
	return d
}

// split returns every every'th sample as a validation set and the
// remaining samples as a training set
func (d *dataset) split(every int) (train, valid *dataset) {
	train, valid = &dataset{}, &dataset{}
	var trainRows, validRows []float64
	for i := 0; i < d.len(); i++ {
		set, rows := train, &trainRows
		if i%every == 0 {
			set, rows = valid, &validRows
		}
		set.y = append(set.y, d.y[i])
		set.labels = append(set.labels, d.labels[i])
		*rows = append(*rows, d.x.RawRowView(i)...)
	}

	_, features := d.x.Dims()
	train.x = mat.NewDense(train.len(), features, trainRows)
	valid.x = mat.NewDense(valid.len(), features, validRows)
	return train, valid
}

// len returns the number of samples
func (d *dataset) len() int {
	return len(d.y)
}

// batch returns the inputs and targets of the samples [start, start+size)
// in row-major order, wrapping around the end of the dataset
func (d *dataset) batch(start, size int) (x, y []float64) {
	_, features := d.x.Dims()
	x = make([]float64, 0, size*features)
	y = make([]float64, 0, size)
	for k := 0; k < size; k++ {
		i := (start + k) % d.len()
		x = append(x, d.x.RawRowView(i)...)
		y = append(y, d.y[i])
	}
	return x, y
}
