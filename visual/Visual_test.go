package visual

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/samuelfneumann/exputils/analysis/tsne"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// embedding returns rows of two clusters with their labels
func embedding(perCluster int) (*mat.Dense, []int) {
	x := mat.NewDense(2*perCluster, 4, nil)
	labels := make([]int, 2*perCluster)
	for i := range labels {
		labels[i] = i / perCluster
		for j := 0; j < 4; j++ {
			x.Set(i, j, 5*float64(labels[i])+math.Sin(float64(i*4+j)))
		}
	}
	return x, labels
}

func imageSize(t *testing.T, filename string) (int, int) {
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestPlotSVD(t *testing.T) {
	dir := t.TempDir()
	x, _ := embedding(5)

	p, filename, err := PlotSVD(x, 3, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "svd_eigen_task3.png"), filename)
	assert.Equal(t, "task3", p.Title.Text)
	assert.Equal(t, 1.3, p.Y.Max)

	w, h := imageSize(t, filename)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 500, h)
}

func TestPlotSVDLabels(t *testing.T) {
	x, _ := embedding(5)
	p, _, err := PlotSVD(x, 0, t.TempDir())
	require.NoError(t, err)

	ticks := p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max)
	_, c := x.Dims()
	require.Len(t, ticks, c)
	for i, tick := range ticks {
		assert.Equal(t, float64(i), tick.Value)
		assert.Equal(t, strconv.Itoa(i+1), tick.Label)
	}
}

func TestPlotSVDZero(t *testing.T) {
	_, _, err := PlotSVD(mat.NewDense(3, 3, nil), 0, t.TempDir())
	assert.Error(t, err)
}

func TestFeatureAnalysis(t *testing.T) {
	dir := t.TempDir()
	x, labels := embedding(10)

	cfg := tsne.DefaultConfig()
	cfg.Perplexity = 5
	cfg.Iterations = 100

	filename, err := FeatureAnalysis(x, labels, 1, FeatureOptions{
		Columns: []string{"a", "b", "c"},
		LogDir:  dir,
		TSNE:    cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "TSNE_final_embedding_Task1.png"),
		filename)

	w, h := imageSize(t, filename)
	assert.Equal(t, FeatureWidth, w)
	assert.Equal(t, FeatureHeight, h)
}

func TestFeatureAnalysisInvalid(t *testing.T) {
	x, labels := embedding(5)

	_, err := FeatureAnalysis(x, labels[1:], 0, FeatureOptions{})
	assert.Error(t, err)

	// Default perplexity exceeds the number of rows
	_, err = FeatureAnalysis(x, labels, 0, FeatureOptions{LogDir: t.TempDir()})
	assert.Error(t, err)
}

func TestFeatureOptionsDefaults(t *testing.T) {
	opts := FeatureOptions{}.withDefaults()
	assert.Equal(t, DefaultColumns, opts.Columns)
	assert.Equal(t, DefaultTitle, opts.Title)
	assert.Equal(t, tsne.DefaultConfig(), opts.TSNE)
}

func TestCameraProject(t *testing.T) {
	cam := camera{cx: 100, cy: 50, scale: 10}

	x, y, depth := cam.project(0, 0, 0)
	assert.Equal(t, []float64{100, 50, 0}, []float64{x, y, depth})

	// Without rotation, z points up the screen and y into it
	x, y, depth = cam.project(1, 2, 3)
	assert.InDelta(t, 110, x, 1e-12)
	assert.InDelta(t, 20, y, 1e-12)
	assert.InDelta(t, 2, depth, 1e-12)
}

func TestLabelColours(t *testing.T) {
	colours := labelColours([]int{4})
	assert.Len(t, colours, 1)
	assert.NotNil(t, colours[4])

	colours = labelColours([]int{0, 1, 2})
	assert.NotEqual(t, colours[0], colours[2])
}
