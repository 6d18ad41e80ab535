// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"

	"github.com/js-arias/evolbranch/evoltree"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	plotBarColor  = color.RGBA{R: 37, G: 150, B: 190, A: 255}
	plotMarkColor = color.RGBA{R: 238, G: 102, B: 119, A: 255}
)

const (
	plotH = 4 * vg.Inch
	plotW = 6 * vg.Inch
)

// ErrNoOmegas is returned when the tree
// has no dN/dS values to plot.
var ErrNoOmegas = errors.New("no dN/dS values")

// OmegaPlot saves a bar chart
// with the dN/dS value of each branch.
// Marked branches are drawn with a different color.
// The format of the image is defined
// by the file extension
// (e.g. ".png", ".svg", ".pdf").
func OmegaPlot(t *evoltree.Tree, title, name string) error {
	var vals, marked plotter.Values
	var labels []string
	for _, n := range t.Nodes() {
		if n == t.Root() || n.Omega < 0 {
			continue
		}
		lb := n.Name
		if lb == "" {
			lb = strconv.Itoa(n.ID)
		}
		labels = append(labels, lb)
		if n.Mark != "" {
			vals = append(vals, 0)
			marked = append(marked, n.Omega)
			continue
		}
		vals = append(vals, n.Omega)
		marked = append(marked, 0)
	}
	if len(vals) == 0 {
		return ErrNoOmegas
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "branch"
	p.Y.Label.Text = "dN/dS"
	p.Y.Min = 0

	w := vg.Points(12)
	bg, err := plotter.NewBarChart(vals, w)
	if err != nil {
		return err
	}
	bg.Color = plotBarColor
	bg.LineStyle.Width = vg.Length(0)

	fg, err := plotter.NewBarChart(marked, w)
	if err != nil {
		return err
	}
	fg.Color = plotMarkColor
	fg.LineStyle.Width = vg.Length(0)

	neutral := plotter.NewFunction(func(float64) float64 { return 1 })
	neutral.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(bg, fg, neutral)
	p.Legend.Add("background", bg)
	p.Legend.Add("foreground", fg)
	p.Legend.Top = true
	p.NominalX(labels...)

	if err := p.Save(plotW, plotH, name); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
