// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package render draws species trees
// with the results of codon models.
package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/js-arias/evolbranch/evoltree"
)

const (
	yStep   = 20
	xMargin = 10
	yTop    = 30
	legendH = 40
)

// Options are the options for drawing a tree.
type Options struct {
	// Title of the drawing
	Title string

	// Width in pixels of the tree,
	// without terminal names.
	// By default it is 400.
	Width float64

	// If true, the PAML IDs of the nodes are drawn.
	NodeIDs bool

	// Color scale for dN/dS values.
	// By default it is Selection with the Sunset colors.
	Scale Scale
}

type node struct {
	x    float64
	y    int
	topY int
	botY int

	id    int
	tax   string
	mark  string
	omega float64

	anc  *node
	desc []*node
}

type svgTree struct {
	y        int
	x        float64
	taxSz    int
	maxOmega float64
	root     *node
	opts     Options
}

func copyTree(t *evoltree.Tree, opts Options) svgTree {
	if opts.Width <= 0 {
		opts.Width = 400
	}
	if opts.Scale == nil {
		opts.Scale = Selection{Seq: Sunset}
	}
	s := svgTree{opts: opts, maxOmega: 1}

	useLen := true
	for _, n := range t.Nodes() {
		if n != t.Root() && n.Length < 0 {
			useLen = false
		}
	}

	var cp func(src *evoltree.Node, anc *node, depth float64) *node
	maxDepth := 0.0
	cp = func(src *evoltree.Node, anc *node, depth float64) *node {
		n := &node{
			id:    src.ID,
			tax:   src.Name,
			mark:  src.Mark,
			omega: src.Omega,
			anc:   anc,
			x:     depth,
		}
		if len(n.tax) > s.taxSz {
			s.taxSz = len(n.tax)
		}
		if n.omega > s.maxOmega {
			s.maxOmega = n.omega
		}
		if depth > maxDepth {
			maxDepth = depth
		}
		for _, c := range src.Children {
			d := depth + 1
			if useLen {
				d = depth + c.Length
			}
			n.desc = append(n.desc, cp(c, n, d))
		}
		return n
	}
	s.root = cp(t.Root(), nil, 0)

	xStep := opts.Width
	if maxDepth > 0 {
		xStep = opts.Width / maxDepth
	}
	s.prepare(s.root, xStep)
	s.y = s.y*yStep + yTop
	return s
}

func (s *svgTree) prepare(n *node, xStep float64) {
	n.x = n.x*xStep + xMargin
	if s.x < n.x {
		s.x = n.x
	}

	if n.desc == nil {
		n.y = s.y*yStep + yTop
		s.y += 1
		return
	}

	botY := 0
	topY := math.MaxInt
	for _, d := range n.desc {
		s.prepare(d, xStep)
		if d.y < topY {
			topY = d.y
		}
		if d.y > botY {
			botY = d.y
		}
	}
	n.topY = topY
	n.botY = botY
	n.y = topY + (botY-topY)/2
}

func (s *svgTree) color(n *node) string {
	if n.omega < 0 {
		return "black"
	}
	return rgb(s.opts.Scale.Color(n.omega, s.maxOmega))
}

func (s *svgTree) draw(w io.Writer) {
	// assume that each character has 7 pixels wide
	width := int(s.x) + s.taxSz*7 + 60
	height := s.y + legendH

	canvas := svg.New(w)
	canvas.Start(width, height)
	if s.opts.Title != "" {
		canvas.Title(s.opts.Title)
		canvas.Text(xMargin, 15, s.opts.Title, "font-family:Verdana;font-size:12px;font-weight:bold")
	}

	canvas.Gstyle("stroke-linecap:round;font-family:Verdana;font-size:10px")
	s.drawNode(canvas, s.root)
	s.label(canvas, s.root)
	canvas.Gend()

	s.legend(canvas, s.y+10)
	canvas.End()
}

func (s *svgTree) drawNode(canvas *svg.SVG, n *node) {
	style := fmt.Sprintf("stroke:%s;stroke-width:2", s.color(n))
	if n.mark != "" {
		style = fmt.Sprintf("stroke:%s;stroke-width:5", s.color(n))
	}

	// horizontal line
	x1 := int(n.x - 5)
	if n.anc != nil {
		x1 = int(n.anc.x)
	}
	canvas.Line(x1, n.y, int(n.x), n.y, style)

	if n.desc == nil {
		return
	}

	// vertical line
	canvas.Line(int(n.x), n.topY, int(n.x), n.botY, "stroke:black;stroke-width:2")
	for _, d := range n.desc {
		s.drawNode(canvas, d)
	}
}

func (s *svgTree) label(canvas *svg.SVG, n *node) {
	if n.anc != nil {
		mid := int(n.anc.x+n.x) / 2
		var lb string
		if n.omega >= 0 {
			lb = strconv.FormatFloat(n.omega, 'f', 4, 64)
		}
		if n.mark != "" {
			lb = n.mark + " " + lb
		}
		if lb != "" {
			canvas.Text(mid, n.y-4, lb, "font-size:8px;text-anchor:middle;fill:"+s.color(n))
		}
	}
	if n.desc == nil {
		canvas.Text(int(n.x+6), n.y+4, n.tax, "font-style:italic")
	} else if s.opts.NodeIDs {
		canvas.Text(int(n.x+4), n.y+12, strconv.Itoa(n.id), "font-size:8px;fill:gray")
	}
	if n.desc == nil && s.opts.NodeIDs {
		canvas.Text(int(n.x+6)+len(n.tax)*7+4, n.y+4, "["+strconv.Itoa(n.id)+"]", "font-size:8px;fill:gray")
	}

	for _, d := range n.desc {
		s.label(canvas, d)
	}
}

// legend draws the dN/dS color scale.
func (s *svgTree) legend(canvas *svg.SVG, y int) {
	const steps = 20
	const w = 8
	canvas.Text(xMargin, y+8, "dN/dS", "font-family:Verdana;font-size:10px")
	x0 := xMargin + 40
	for i := 0; i < steps; i++ {
		v := s.maxOmega * float64(i) / float64(steps-1)
		canvas.Rect(x0+i*w, y, w, 10, "stroke:none;fill:"+rgb(s.opts.Scale.Color(v, s.maxOmega)))
	}
	canvas.Text(x0, y+22, "0", "font-family:Verdana;font-size:8px")
	if s.maxOmega > 1 {
		x1 := x0 + int(float64(steps*w)/s.maxOmega)
		canvas.Line(x1, y, x1, y+12, "stroke:black;stroke-width:1")
		canvas.Text(x1, y+22, "1", "font-family:Verdana;font-size:8px;text-anchor:middle")
	}
	canvas.Text(x0+steps*w, y+22, strconv.FormatFloat(s.maxOmega, 'f', 2, 64), "font-family:Verdana;font-size:8px;text-anchor:end")
}

// SVG writes a tree as an SVG image.
// Branches are colored by its dN/dS value,
// and marked branches are drawn wider.
func SVG(w io.Writer, t *evoltree.Tree, opts Options) error {
	bw := bufio.NewWriter(w)
	st := copyTree(t, opts)
	st.draw(bw)
	return bw.Flush()
}

// WriteSVG writes a tree as an SVG file.
// The parent directory is created
// if it does not exist.
func WriteSVG(name string, t *evoltree.Tree, opts Options) (err error) {
	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := SVG(f, t, opts); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
