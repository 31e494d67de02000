// Package tsne implements exact t-distributed stochastic neighbour
// embedding (t-SNE) on gonum matrices.
package tsne

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"k8s.io/klog/v2"
)

const (
	minProb        = 1e-12
	minGain        = 0.01
	initStd        = 1e-4
	searchTol      = 1e-5
	searchIters    = 50
	initMomentum   = 0.5
	finalMomentum  = 0.8
	logEveryNIters = 50
)

// Config configures a TSNE
type Config struct {
	// Components is the dimension of the embedding
	Components int

	// Perplexity is the effective number of neighbours of each point
	// and must be smaller than the number of points embedded
	Perplexity float64

	Iterations   int
	LearningRate float64

	// Affinities are multiplied by EarlyExaggeration for the first
	// ExaggerationIters iterations
	EarlyExaggeration float64
	ExaggerationIters int

	Seed uint64
}

// DefaultConfig returns the configuration used for feature analysis
func DefaultConfig() Config {
	return Config{
		Components:        3,
		Perplexity:        40,
		Iterations:        300,
		LearningRate:      200,
		EarlyExaggeration: 12,
		ExaggerationIters: 100,
		Seed:              42,
	}
}

// Validate returns an error if the configuration is invalid
func (c Config) Validate() error {
	if c.Components <= 0 {
		return errors.Errorf("validate: components must be positive, have %v",
			c.Components)
	}
	if c.Perplexity <= 0 {
		return errors.Errorf("validate: perplexity must be positive, have %v",
			c.Perplexity)
	}
	if c.Iterations < 0 {
		return errors.Errorf("validate: iterations must be non-negative, "+
			"have %v", c.Iterations)
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("validate: learning rate must be positive, "+
			"have %v", c.LearningRate)
	}
	return nil
}

// TSNE embeds points into a low dimensional space
type TSNE struct {
	cfg Config
}

// New returns a new TSNE
func New(cfg Config) *TSNE {
	return &TSNE{cfg: cfg}
}

// Embed returns the embedding of the rows of X as a matrix with one row
// per row of X and Components columns. The same configuration and input
// always produce the same embedding.
func (t *TSNE) Embed(X mat.Matrix) (*mat.Dense, error) {
	if err := t.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "embed")
	}
	n, _ := X.Dims()
	if n < 2 {
		return nil, errors.Errorf("embed: need at least 2 points, have %v", n)
	}
	if t.cfg.Perplexity >= float64(n) {
		return nil, errors.Errorf("embed: perplexity (%v) must be less than "+
			"the number of points (%v)", t.cfg.Perplexity, n)
	}

	p := jointProbabilities(squaredDistances(X), t.cfg.Perplexity)

	dims := t.cfg.Components
	normal := distuv.Normal{
		Mu:    0,
		Sigma: initStd,
		Src:   rand.NewSource(t.cfg.Seed),
	}
	y := make([]float64, n*dims)
	for i := range y {
		y[i] = normal.Rand()
	}

	grad := make([]float64, n*dims)
	update := make([]float64, n*dims)
	gains := make([]float64, n*dims)
	for i := range gains {
		gains[i] = 1
	}
	num := make([]float64, n*n)

	for iter := 0; iter < t.cfg.Iterations; iter++ {
		exaggeration, momentum := 1.0, finalMomentum
		if iter < t.cfg.ExaggerationIters {
			exaggeration, momentum = t.cfg.EarlyExaggeration, initMomentum
		}

		kl := gradient(p, y, num, grad, n, dims, exaggeration)
		for i := range y {
			if (grad[i] > 0) != (update[i] > 0) {
				gains[i] += 0.2
			} else {
				gains[i] *= 0.8
			}
			gains[i] = math.Max(gains[i], minGain)

			update[i] = momentum*update[i] - t.cfg.LearningRate*gains[i]*grad[i]
			y[i] += update[i]
		}
		center(y, n, dims)

		if (iter+1)%logEveryNIters == 0 {
			klog.V(1).Infof("t-SNE iteration %v: KL divergence %.4f", iter+1,
				kl)
		}
	}

	return mat.NewDense(n, dims, y), nil
}

// squaredDistances returns the squared Euclidean distances between all
// pairs of rows of X in row-major order
func squaredDistances(X mat.Matrix) []float64 {
	n, _ := X.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}

	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := floats.Distance(rows[i], rows[j], 2)
			d[i*n+j] = dist * dist
			d[j*n+i] = dist * dist
		}
	}
	return d
}

// jointProbabilities returns the symmetric input affinities. The
// Gaussian kernel width of each point is found by binary search so
// that its conditional distribution has the given perplexity.
func jointProbabilities(d []float64, perplexity float64) []float64 {
	n := int(math.Sqrt(float64(len(d))))
	target := math.Log(perplexity)
	cond := make([]float64, n*n)

	for i := 0; i < n; i++ {
		row := cond[i*n : (i+1)*n]
		dist := d[i*n : (i+1)*n]

		beta, lo, hi := 1.0, math.Inf(-1), math.Inf(1)
		for k := 0; k < searchIters; k++ {
			h := conditional(row, dist, i, beta)
			if math.Abs(h-target) < searchTol {
				break
			}
			if h > target {
				lo = beta
				if math.IsInf(hi, 1) {
					beta *= 2
				} else {
					beta = (beta + hi) / 2
				}
			} else {
				hi = beta
				if math.IsInf(lo, -1) {
					beta /= 2
				} else {
					beta = (beta + lo) / 2
				}
			}
		}
	}

	p := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i*n+j] = math.Max((cond[i*n+j]+cond[j*n+i])/float64(2*n), minProb)
		}
	}
	return p
}

// conditional fills row with the conditional probabilities of point i
// for the kernel precision beta and returns their entropy in nats
func conditional(row, dist []float64, i int, beta float64) float64 {
	// Shift by the smallest distance so the largest weight is exp(0)
	minDist := math.Inf(1)
	for j, v := range dist {
		if j != i {
			minDist = math.Min(minDist, v)
		}
	}

	sum := 0.0
	for j, v := range dist {
		if j == i {
			row[j] = 0
			continue
		}
		row[j] = math.Exp(-(v - minDist) * beta)
		sum += row[j]
	}

	h := 0.0
	for j := range row {
		if j == i {
			continue
		}
		row[j] /= sum
		if row[j] > 0 {
			h -= row[j] * math.Log(row[j])
		}
	}
	return h
}

// gradient computes the gradient of the KL divergence between the
// input affinities p and the Student-t affinities of the embedding y,
// storing it in grad. The returned KL divergence excludes
// exaggeration.
func gradient(p, y, num, grad []float64, n, dims int,
	exaggeration float64) float64 {
	sum := 0.0
	for i := 0; i < n; i++ {
		num[i*n+i] = 0
		yi := y[i*dims : (i+1)*dims]
		for j := i + 1; j < n; j++ {
			dist := floats.Distance(yi, y[j*dims:(j+1)*dims], 2)
			v := 1 / (1 + dist*dist)
			num[i*n+j] = v
			num[j*n+i] = v
			sum += 2 * v
		}
	}

	for i := range grad {
		grad[i] = 0
	}

	kl := 0.0
	for i := 0; i < n; i++ {
		gi := grad[i*dims : (i+1)*dims]
		yi := y[i*dims : (i+1)*dims]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			q := math.Max(num[i*n+j]/sum, minProb)
			pij := p[i*n+j]
			kl += pij * math.Log(pij/q)

			mult := 4 * (exaggeration*pij - q) * num[i*n+j]
			yj := y[j*dims : (j+1)*dims]
			for k := range gi {
				gi[k] += mult * (yi[k] - yj[k])
			}
		}
	}
	return kl
}

// center subtracts the mean of each embedding dimension
func center(y []float64, n, dims int) {
	for k := 0; k < dims; k++ {
		mean := 0.0
		for i := 0; i < n; i++ {
			mean += y[i*dims+k]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			y[i*dims+k] -= mean
		}
	}
}
