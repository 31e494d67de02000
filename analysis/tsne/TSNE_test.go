package tsne

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// clusters returns perCluster points around each of two centres far
// apart in 5 dimensions
func clusters(perCluster int) (*mat.Dense, []int) {
	normal := distuv.Normal{Mu: 0, Sigma: 0.1, Src: rand.NewSource(1)}
	x := mat.NewDense(2*perCluster, 5, nil)
	labels := make([]int, 2*perCluster)
	for i := 0; i < 2*perCluster; i++ {
		labels[i] = i / perCluster
		for j := 0; j < 5; j++ {
			x.Set(i, j, 10*float64(labels[i])+normal.Rand())
		}
	}
	return x, labels
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Components = 2
	cfg.Perplexity = 5
	return cfg
}

func TestEmbedSeparatesClusters(t *testing.T) {
	x, labels := clusters(15)
	y, err := New(testConfig()).Embed(x)
	require.NoError(t, err)

	r, c := y.Dims()
	require.Equal(t, []int{30, 2}, []int{r, c})

	var within, between []float64
	for i := 0; i < r; i++ {
		for j := i + 1; j < r; j++ {
			d := floats.Distance(y.RawRowView(i), y.RawRowView(j), 2)
			if labels[i] == labels[j] {
				within = append(within, d)
			} else {
				between = append(between, d)
			}
		}
	}
	assert.Less(t, floats.Sum(within)/float64(len(within)),
		floats.Sum(between)/float64(len(between)))

	for _, v := range y.RawMatrix().Data {
		assert.False(t, math.IsNaN(v))
	}
}

func TestEmbedDeterministic(t *testing.T) {
	x, _ := clusters(10)
	cfg := testConfig()
	cfg.Iterations = 50

	a, err := New(cfg).Embed(x)
	require.NoError(t, err)
	b, err := New(cfg).Embed(x)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))

	cfg.Seed++
	c, err := New(cfg).Embed(x)
	require.NoError(t, err)
	assert.False(t, mat.Equal(a, c))
}

func TestEmbedInvalid(t *testing.T) {
	x, _ := clusters(5)

	// Default perplexity exceeds the number of points
	_, err := New(DefaultConfig()).Embed(x)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Components = 0
	_, err = New(cfg).Embed(x)
	assert.Error(t, err)

	_, err = New(testConfig()).Embed(mat.NewDense(1, 3, nil))
	assert.Error(t, err)
}

func TestJointProbabilities(t *testing.T) {
	x, _ := clusters(5)
	n, _ := x.Dims()
	p := jointProbabilities(squaredDistances(x), 3)

	sum := 0.0
	for i := 0; i < n; i++ {
		assert.Equal(t, 0.0, p[i*n+i])
		for j := 0; j < n; j++ {
			assert.InDelta(t, p[i*n+j], p[j*n+i], 1e-15)
			sum += p[i*n+j]
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func BenchmarkEmbed(b *testing.B) {
	x, _ := clusters(50)
	cfg := DefaultConfig()
	cfg.Iterations = 50
	tsne := New(cfg)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := tsne.Embed(x); err != nil {
			b.Fatal(err)
		}
	}
}
