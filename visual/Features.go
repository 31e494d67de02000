package visual

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/exputils/analysis/tsne"
	"github.com/samuelfneumann/exputils/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/plot/palette"
	"k8s.io/klog/v2"
)

// Sizes of the feature plot in pixels
const (
	FeatureWidth  = 1600
	FeatureHeight = 1000
	pointRadius   = 4.0
	legendSpacing = 22.0
)

// Default labels of the feature plot
const (
	DefaultTitle = "TSNE"
)

// DefaultColumns are the default axis names of the feature plot
var DefaultColumns = []string{"x0", "x1", "x2"}

// unitCube is the interval to which each embedding axis is rescaled
var unitCube = r1.Interval{Min: -1, Max: 1}

// FeatureOptions configures FeatureAnalysis
type FeatureOptions struct {
	// Columns names the three axes
	Columns []string
	Title   string

	// LogDir is the directory of the saved plot. The working directory
	// is used if LogDir is empty.
	LogDir string

	// TSNE configures the embedding. The zero value uses
	// tsne.DefaultConfig(). Components is always 3.
	TSNE tsne.Config

	// Azimuth and Elevation orient the camera, in degrees
	Azimuth   float64
	Elevation float64
}

func (o FeatureOptions) withDefaults() FeatureOptions {
	if len(o.Columns) != 3 {
		o.Columns = DefaultColumns
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.TSNE == (tsne.Config{}) {
		o.TSNE = tsne.DefaultConfig()
	}
	o.TSNE.Components = 3
	if o.Azimuth == 0 && o.Elevation == 0 {
		o.Azimuth, o.Elevation = -60, 30
	}
	return o
}

// FeatureFilename returns the filename of the feature plot of a task
func FeatureFilename(taskID int) string {
	return fmt.Sprintf("TSNE_final_embedding_Task%d.png", taskID)
}

// point is a projected embedding point
type point struct {
	x, y, depth float64
	label       int
}

// FeatureAnalysis embeds the rows of embedding in 3 dimensions with
// t-SNE and saves a scatter plot of the embedding, coloured by labels,
// to FeatureFilename(taskID). The path of the saved file is returned.
func FeatureAnalysis(embedding mat.Matrix, labels []int, taskID int,
	opts FeatureOptions) (string, error) {
	n, _ := embedding.Dims()
	if len(labels) != n {
		return "", errors.Errorf("featureAnalysis: have %v labels for %v "+
			"rows", len(labels), n)
	}
	opts = opts.withDefaults()

	y, err := tsne.New(opts.TSNE).Embed(embedding)
	if err != nil {
		return "", errors.Wrap(err, "featureAnalysis")
	}

	cam := camera{
		azimuth:   gg.Radians(opts.Azimuth),
		elevation: gg.Radians(opts.Elevation),
		cx:        FeatureWidth * 0.45,
		cy:        FeatureHeight * 0.55,
		scale:     FeatureHeight * 0.28,
	}

	var ranges [3]r1.Interval
	for k := range ranges {
		ranges[k] = floatutils.Range(mat.Col(nil, k, y))
	}

	points := make([]point, n)
	for i := range points {
		var c [3]float64
		for k := range c {
			c[k] = floatutils.Clip(
				floatutils.Rescale(y.At(i, k), ranges[k], unitCube),
				unitCube.Min, unitCube.Max,
			)
		}
		points[i].x, points[i].y, points[i].depth = cam.project(c[0], c[1], c[2])
		points[i].label = labels[i]
	}

	// Draw far points first
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].depth > points[j].depth
	})

	unique := uniqueLabels(labels)
	colours := labelColours(unique)

	dc := gg.NewContext(FeatureWidth, FeatureHeight)
	dc.SetColor(color.White)
	dc.Clear()

	drawAxes(dc, cam, opts.Columns)

	for _, p := range points {
		dc.DrawCircle(p.x, p.y, pointRadius)
		dc.SetColor(colours[p.label])
		dc.Fill()
	}

	drawLegend(dc, unique, colours)

	dc.SetColor(color.Black)
	dc.DrawStringAnchored(opts.Title, FeatureWidth/2, 30, 0.5, 0.5)

	filename := filepath.Join(opts.LogDir, FeatureFilename(taskID))
	if err := dc.SavePNG(filename); err != nil {
		return "", errors.Wrapf(err, "featureAnalysis: could not save %v",
			filename)
	}
	klog.V(1).Infof("Saved feature plot %v", filename)

	return filename, nil
}

// uniqueLabels returns the sorted unique labels
func uniqueLabels(labels []int) []int {
	seen := make(map[int]bool)
	unique := make([]int, 0)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}
	sort.Ints(unique)
	return unique
}

// labelColours assigns each label a colour of a rainbow palette
func labelColours(unique []int) map[int]color.Color {
	// A rainbow needs at least two colours
	n := len(unique)
	if n < 2 {
		n = 2
	}
	colors := palette.Rainbow(n, palette.Blue, palette.Red, 1, 0.9, 1).Colors()

	colours := make(map[int]color.Color, len(unique))
	for i, l := range unique {
		colours[l] = colors[i]
	}
	return colours
}

// drawAxes draws the three edges of the unit cube which meet at
// (-1, -1, -1), labelled by names
func drawAxes(dc *gg.Context, cam camera, names []string) {
	ox, oy, _ := cam.project(-1, -1, -1)
	ends := [3][3]float64{{1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}

	dc.SetColor(color.Gray{Y: 120})
	dc.SetLineWidth(2)
	for k, end := range ends {
		ex, ey, _ := cam.project(end[0], end[1], end[2])
		dc.DrawLine(ox, oy, ex, ey)
		dc.Stroke()

		lx, ly, _ := cam.project(1.15*end[0], 1.15*end[1], 1.15*end[2])
		dc.DrawStringAnchored(names[k], lx, ly, 0.5, 0.5)
	}
}

// drawLegend draws one entry per label in the top right corner
func drawLegend(dc *gg.Context, unique []int, colours map[int]color.Color) {
	x := float64(FeatureWidth) - 160
	y := 70.0
	for i, l := range unique {
		cy := y + float64(i)*legendSpacing
		dc.DrawCircle(x, cy, pointRadius+1)
		dc.SetColor(colours[l])
		dc.Fill()

		dc.SetColor(color.Black)
		dc.DrawStringAnchored(fmt.Sprintf("label %d", l), x+14, cy, 0, 0.5)
	}
}
