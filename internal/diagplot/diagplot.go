// Package diagplot renders the Topology Tagger's diagnostic debug surfaces
// (spec §4.2: "level distribution, top-k scores") and the Abstract
// Placer's crossing-count convergence series (spec §4.4, Q5) as PNG charts.
// It is strictly a debug side-output, gated behind Pipeline.Debug, and
// never feeds back into layout. Grounded on the teacher's
// gonum.org/v1/plot dependency.
package diagplot

import (
	"bytes"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// LevelDistribution renders a bar chart of node count per topological
// level.
func LevelDistribution(countsByLevel []int) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "level distribution"
	p.X.Label.Text = "level"
	p.Y.Label.Text = "node count"

	values := make(plotter.Values, len(countsByLevel))
	for i, c := range countsByLevel {
		values[i] = float64(c)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	p.Add(bars)

	return renderPNG(p)
}

// TopKScores renders a bar chart of the top-k accessibility scores, each
// bar labelled by its owning node id.
func TopKScores(ids []string, scores []float64) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "top-k accessibility scores"
	p.Y.Label.Text = "score"

	values := make(plotter.Values, len(scores))
	copy(values, scores)
	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return nil, err
	}
	p.Add(bars)
	p.NominalX(ids...)

	return renderPNG(p)
}

// CrossingConvergence renders the best-crossing-count-so-far series across
// the Abstract Placer's barycenter iterations (monotone non-increasing per
// Q5).
func CrossingConvergence(bestPerIteration []int) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "crossing count convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "best crossings so far"

	pts := make(plotter.XYs, len(bestPerIteration))
	for i, v := range bestPerIteration {
		pts[i].X = float64(i)
		pts[i].Y = float64(v)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line)

	return renderPNG(p)
}

func renderPNG(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(5*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
