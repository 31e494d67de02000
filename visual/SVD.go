// Package visual renders plots of learned embeddings to image files:
// the singular value spectrum of an embedding, and a 3-D t-SNE scatter
// of embedded features coloured by label.
package visual

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"k8s.io/klog/v2"
)

// DPI is the resolution of saved plots
const DPI = 100

// Sizes of the singular value plot
const (
	svdWidth    = 10 * vg.Inch
	svdHeight   = 5 * vg.Inch
	svdYMax     = 1.3
	svdBarWidth = 12
)

// SVDFilename returns the filename of the singular value plot of a task
func SVDFilename(taskID int) string {
	return fmt.Sprintf("svd_eigen_task%d.png", taskID)
}

// PlotSVD plots the singular values s of embedding as bars of height
// 1 - s / sum(s), labelled from 1 in order of decreasing singular
// value, and saves the plot in logDir, or in the working
// directory if logDir is empty. The plot and the path of the saved file
// are returned.
func PlotSVD(embedding mat.Matrix, taskID int,
	logDir string) (*plot.Plot, string, error) {
	var svd mat.SVD
	if ok := svd.Factorize(embedding, mat.SVDNone); !ok {
		return nil, "", errors.New("plotSVD: could not factorize embedding")
	}
	s := svd.Values(nil)

	total := floats.Sum(s)
	if total == 0 {
		return nil, "", errors.New("plotSVD: embedding has no non-zero " +
			"singular values")
	}
	proportions := make(plotter.Values, len(s))
	names := make([]string, len(s))
	for i, v := range s {
		proportions[i] = 1 - v/total
		names[i] = strconv.Itoa(i + 1)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("task%d", taskID)
	p.Y.Label.Text = "Proportion of Eigenvalue"
	p.Y.Min = 0
	p.Y.Max = svdYMax

	bars, err := plotter.NewBarChart(proportions, vg.Points(svdBarWidth))
	if err != nil {
		return nil, "", errors.Wrap(err, "plotSVD: could not create bar chart")
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)

	filename := filepath.Join(logDir, SVDFilename(taskID))
	if err := savePNG(p, svdWidth, svdHeight, filename); err != nil {
		return nil, "", errors.Wrap(err, "plotSVD")
	}
	klog.V(1).Infof("Saved singular value plot %v", filename)

	return p, filename, nil
}

// savePNG saves a plot as a PNG image of the given size at DPI
func savePNG(p *plot.Plot, w, h vg.Length, filename string) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "could not create %v", filename)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "could not write %v", filename)
	}
	return f.Close()
}
