// Package chart draws the analysis figures with gonum/plot. Builders never fail
// on empty input: a group with no values is left out and a figure with no
// groups at all is still drawn with its title and axis labels.
package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/noshow-cli/internal/aggregate"
)

// Spec names a figure and labels it.
type Spec struct {
	// Name is the output file stem.
	Name   string
	Title  string
	XLabel string
	YLabel string
	// Label renders group keys for legends and ticks; nil keeps keys as-is.
	Label func(string) string
}

func (s Spec) label(k string) string {
	if s.Label == nil {
		return k
	}
	return s.Label(k)
}

func newPlot(s Spec) *plot.Plot {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Legend.Top = true
	return p
}

// Histogram overlays one histogram per group, each with bins bins.
func Histogram(s Spec, dists []aggregate.Distribution, bins int) (*plot.Plot, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("histogram %s: bins must be > 0, got %d", s.Name, bins)
	}
	p := newPlot(s)
	for i, d := range dists {
		if len(d.Values) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(d.Values), bins)
		if err != nil {
			return nil, fmt.Errorf("histogram %s/%s: %w", s.Name, d.Group, err)
		}
		h.FillColor = translucent(plotutil.Color(i))
		h.LineStyle.Color = plotutil.Color(i)
		p.Add(h)
		p.Legend.Add(s.label(d.Group), h)
	}
	return p, nil
}

// BoxPlot draws one vertical box per (outer, inner) pair, labelled "outer / inner".
func BoxPlot(s Spec, dists []aggregate.Distribution2) (*plot.Plot, error) {
	p := newPlot(s)
	w := vg.Points(20)
	names := make([]string, len(dists))
	for i, d := range dists {
		names[i] = s.label(d.Outer) + " / " + s.label(d.Inner)
		if len(d.Values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(w, float64(i), plotter.Values(d.Values))
		if err != nil {
			return nil, fmt.Errorf("box plot %s/%s: %w", s.Name, names[i], err)
		}
		b.FillColor = translucent(plotutil.Color(i % 2))
		p.Add(b)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}
	return p, nil
}

// Bars draws one bar per count, in the order given.
func Bars(s Spec, counts []aggregate.Count) (*plot.Plot, error) {
	p := newPlot(s)
	if len(counts) == 0 {
		return p, nil
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, c := range counts {
		vals[i] = float64(c.N)
		names[i] = s.label(c.Key)
	}
	bc, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("bars %s: %w", s.Name, err)
	}
	bc.Color = plotutil.Color(0)
	bc.LineStyle.Width = vg.Length(0)
	p.Add(bc)
	p.NominalX(names...)
	return p, nil
}

// GroupedBars puts each flag on the x axis with one bar per group beside it.
func GroupedBars(s Spec, sums []aggregate.FlagSums, flags []string) (*plot.Plot, error) {
	p := newPlot(s)
	if len(flags) == 0 {
		return p, nil
	}
	w := vg.Points(18)
	n := len(sums)
	for i, g := range sums {
		vals := make(plotter.Values, len(flags))
		for j, f := range flags {
			vals[j] = g.Sum(f)
		}
		bc, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return nil, fmt.Errorf("grouped bars %s/%s: %w", s.Name, g.Group, err)
		}
		bc.Color = plotutil.Color(i)
		bc.LineStyle.Width = vg.Length(0)
		bc.Offset = w * vg.Length(float64(i)-float64(n-1)/2)
		p.Add(bc)
		p.Legend.Add(s.label(g.Group), bc)
	}
	p.NominalX(flags...)
	return p, nil
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 140}
}
