// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package branchtest implements a test
// of different dN/dS ratios for a foreground lineage.
//
// A free-branch model (b_free),
// in which the marked branches have their own dN/dS,
// is compared with a null model (M0)
// using a likelihood-ratio test.
// If the free-branch model is significantly better,
// the tree is drawn as an SVG file.
package branchtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strconv"

	"github.com/js-arias/evolbranch/codeml"
	"github.com/js-arias/evolbranch/codon"
	"github.com/js-arias/evolbranch/evoltree"
	"github.com/js-arias/evolbranch/groups"
	"github.com/js-arias/evolbranch/lrt"
	"github.com/js-arias/evolbranch/project"
	"github.com/js-arias/evolbranch/render"
)

// Models compared in the test.
const (
	AltModel  = "b_free"
	NullModel = "M0"
)

// Messages printed with the p-value.
const (
	SignificantMsg    = "free-branch model most likely"
	NotSignificantMsg = "dN/dS not significantly different between branches"
)

// A Test is a branch test.
type Test struct {
	// Configuration with the path templates
	Project *project.Project

	// Fitter used for the models
	Fitter *codeml.Fitter

	// Output for the results
	Out io.Writer

	// If defined,
	// the node IDs to be marked,
	// instead of the IDs of the species group.
	Marks []string

	// If defined,
	// the smallest clade with these terminals
	// is marked,
	// instead of the species group.
	Clade []string

	// If defined,
	// a template for the file name
	// of a dN/dS bar chart.
	Plot string

	// Color scale used in the SVG file.
	Scale render.Scale

	// Species groups.
	// If nil,
	// the table of the project is used,
	// or the built-in table
	// if the project does not define one.
	Groups *groups.Table
}

// A Result is the result of a branch test.
type Result struct {
	ID string

	// Node IDs marked as foreground
	Marks []string

	Tree *evoltree.Tree

	Alt, Null *codeml.Fit

	PValue      float64
	Significant bool

	// Name of the SVG file,
	// empty if not written.
	SVG string
}

// Run runs a branch test
// for the given run identifier
// and species group label.
func (bt *Test) Run(ctx context.Context, id, species string) (*Result, error) {
	prj := bt.Project
	if prj == nil {
		prj = project.Default()
	}
	ft := bt.Fitter
	if ft == nil {
		ft = &codeml.Fitter{
			Runner: codeml.Exec{Path: prj.Get(project.Codeml)},
		}
	}
	out := bt.Out
	if out == nil {
		out = io.Discard
	}
	tb := bt.Groups
	if tb == nil {
		tb = groups.Builtin()
		if name := prj.Get(project.Groups); name != "" {
			var err error
			tb, err = groups.ReadFile(name)
			if err != nil {
				return nil, err
			}
		}
	}
	alpha, err := prj.AlphaLevel()
	if err != nil {
		return nil, err
	}

	alnFile := prj.Resolve(project.Alignment, id)
	treeFile := prj.Resolve(project.Tree, id)
	fmt.Fprintf(out, "%s\n", alnFile)

	t, err := evoltree.ReadFile(treeFile)
	if err != nil {
		return nil, err
	}
	aln, err := codon.ReadFile(alnFile)
	if err != nil {
		return nil, err
	}
	if err := t.Link(aln); err != nil {
		return nil, fmt.Errorf("linking %q to %q: %w", alnFile, treeFile, err)
	}
	log.Printf("alignment %q: %d sequences, %d codons", alnFile, aln.Len(), aln.Codons())

	marks, err := bt.marks(t, tb, species)
	if err != nil {
		return nil, err
	}
	if err := t.Mark(marks, []string{evoltree.ForegroundMark}); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "%s\n", t.Newick())

	log.Printf("fitting models %s and %s...", AltModel, NullModel)
	fits, err := ft.FitAll(ctx, t, AltModel, NullModel)
	if err != nil {
		return nil, err
	}
	alt, null := fits[AltModel], fits[NullModel]
	log.Printf("%s: lnL=%.6f np=%d", alt.Model, alt.LnL, alt.NP)
	log.Printf("%s: lnL=%.6f np=%d", null.Model, null.LnL, null.NP)

	p, err := lrt.Test(alt, null)
	if errors.Is(err, lrt.ErrModelOrder) || errors.Is(err, lrt.ErrLowerLikelihood) {
		log.Printf("WARNING: %v", err)
	} else if err != nil {
		return nil, err
	}
	t.SetOmegas(alt.Omegas())

	res := &Result{
		ID:          id,
		Marks:       marks,
		Tree:        t,
		Alt:         alt,
		Null:        null,
		PValue:      p,
		Significant: lrt.Significant(p, alpha),
	}

	if res.Significant {
		fmt.Fprintf(out, "%s %s\n", FormatPValue(p), SignificantMsg)
		name := prj.Resolve(project.Output, id)
		opts := render.Options{
			Title:   fmt.Sprintf("%s: %s vs %s p=%s", id, AltModel, NullModel, FormatPValue(p)),
			NodeIDs: true,
			Scale:   bt.Scale,
		}
		if err := render.WriteSVG(name, t, opts); err != nil {
			return nil, err
		}
		res.SVG = name
	} else {
		fmt.Fprintf(out, "%s %s\n", FormatPValue(p), NotSignificantMsg)
	}

	if bt.Plot != "" {
		name := project.Template(bt.Plot, id)
		if err := render.OmegaPlot(t, fmt.Sprintf("%s %s", id, AltModel), name); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// marks returns the node IDs to be marked.
func (bt *Test) marks(t *evoltree.Tree, tb *groups.Table, species string) ([]string, error) {
	if len(bt.Marks) > 0 {
		return slices.Clone(bt.Marks), nil
	}
	if len(bt.Clade) > 0 {
		id, err := t.Clade(bt.Clade)
		if err != nil {
			return nil, err
		}
		return []string{strconv.Itoa(id)}, nil
	}

	marks, ok := tb.Marks(species)
	if !ok {
		log.Printf("WARNING: unknown species group %q: using default marks %v", species, marks)
	}
	return marks, nil
}

// FormatPValue formats a p-value
// using the shortest representation.
func FormatPValue(p float64) string {
	return strconv.FormatFloat(p, 'g', -1, 64)
}
