// Package reporting renders optional run summaries; at the moment that is a
// histogram of neighborhood sizes, a quick way to spot a tag density or
// traversal bound that is wrong for the data.
package reporting

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mhi-bio/mhi/src/minhash"
)

// histogramBins controls the resolution of the size histogram
const histogramBins = 16

// PlotNeighborhoodSizes writes a histogram of the number of k-mers per
// neighborhood to a PNG file
func PlotNeighborhoodSizes(sketches []*minhash.Sketch, fileName string) error {
	if len(sketches) == 0 {
		return fmt.Errorf("no neighborhoods to plot")
	}
	sizes := make(plotter.Values, len(sketches))
	for i, sketch := range sketches {
		sizes[i] = float64(sketch.NumKmers)
	}
	sizePlot, err := plot.New()
	if err != nil {
		return err
	}
	sizePlot.Title.Text = "neighborhood size distribution"
	sizePlot.X.Label.Text = "k-mers per neighborhood"
	sizePlot.Y.Label.Text = "number of neighborhoods"
	hist, err := plotter.NewHist(sizes, histogramBins)
	if err != nil {
		return err
	}
	sizePlot.Add(hist)
	return sizePlot.Save(8*vg.Inch, 8*vg.Inch, fileName)
}
