// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/js-arias/evolbranch/codeml"
	"github.com/js-arias/evolbranch/codon"
	"github.com/js-arias/evolbranch/evoltree"
)

func TestParseOutput(t *testing.T) {
	fit, err := codeml.ReadOutput("testdata/b_free.out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fit.LnL != -812.345678 {
		t.Errorf("lnL: got %f, want %f", fit.LnL, -812.345678)
	}
	if fit.NP != 8 {
		t.Errorf("np: got %d, want %d", fit.NP, 8)
	}
	if fit.NTime != 5 {
		t.Errorf("ntime: got %d, want %d", fit.NTime, 5)
	}
	if fit.Kappa != 2.34568 {
		t.Errorf("kappa: got %f, want %f", fit.Kappa, 2.34568)
	}
	if want := []float64{0.08123, 1.87654}; !reflect.DeepEqual(fit.BranchOmegas, want) {
		t.Errorf("branch omegas: got %v, want %v", fit.BranchOmegas, want)
	}
	if len(fit.Branches) != 5 {
		t.Fatalf("branches: got %d, want %d", len(fit.Branches), 5)
	}

	b := fit.Branches[1]
	want := codeml.Branch{From: 6, To: 1, T: 0.123, N: 280.3, S: 79.7, Omega: 1.8765, DN: 0.0452, DS: 0.0241}
	if b != want {
		t.Errorf("branch 6..1: got %+v, want %+v", b, want)
	}

	om := fit.Omegas()
	if om[1] != 1.8765 || om[6] != 0.0812 {
		t.Errorf("omegas: got %v", om)
	}
}

func TestParseOutputM0(t *testing.T) {
	fit, err := codeml.ReadOutput("testdata/M0.out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.LnL != -815.678901 || fit.NP != 7 {
		t.Errorf("got lnL %f np %d, want lnL %f np %d", fit.LnL, fit.NP, -815.678901, 7)
	}
	if fit.Omega != 0.10234 {
		t.Errorf("omega: got %f, want %f", fit.Omega, 0.10234)
	}
	if len(fit.BranchOmegas) != 0 {
		t.Errorf("branch omegas: got %v, want none", fit.BranchOmegas)
	}
}

func TestParseOutputError(t *testing.T) {
	_, err := codeml.ReadOutput("testdata/failed.out")
	if !errors.Is(err, codeml.ErrNoLikelihood) {
		t.Errorf("got error %v, want %v", err, codeml.ErrNoLikelihood)
	}
}

func TestModelTypes(t *testing.T) {
	tests := map[string]codeml.Type{
		"M0":     codeml.Null,
		"M2":     codeml.Site,
		"fb":     codeml.BranchModel,
		"b_free": codeml.BranchModel,
		"b_neut": codeml.BranchModel,
		"bsA":    codeml.BranchSite,
	}
	for name, want := range tests {
		m, err := codeml.Get(name)
		if err != nil {
			t.Errorf("model %s: unexpected error: %v", name, err)
			continue
		}
		if m.Type != want {
			t.Errorf("model %s: got type %q, want %q", name, m.Type, want)
		}
	}
}

func TestModelControl(t *testing.T) {
	m, err := codeml.Get("b_free")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.AllowMark {
		t.Errorf("b_free should allow marks")
	}

	c := codeml.ModelControl(m)
	params := map[string]string{
		"model":     "2",
		"NSsites":   "0",
		"seqtype":   "1",
		"fix_omega": "0",
		"omega":     "0.7",
		"seqfile":   codeml.SeqFile,
	}
	for k, w := range params {
		if v, _ := c.Get(k); v != w {
			t.Errorf("param %s: got %q, want %q", k, v, w)
		}
	}

	var w bytes.Buffer
	if err := c.Write(&w); err != nil {
		t.Fatalf("unable to write control file: %v", err)
	}
	if !strings.Contains(w.String(), "          model = 2\n") {
		t.Errorf("control file: model not found:\n%s", w.String())
	}

	m0, _ := codeml.Get("M0")
	if m0.AllowMark {
		t.Errorf("M0 should not allow marks")
	}
	if v, _ := codeml.ModelControl(m0).Get("NSsites"); v != "0" {
		t.Errorf("M0: NSsites got %q, want %q", v, "0")
	}

	if _, err := codeml.Get("M99"); !errors.Is(err, codeml.ErrUnknownModel) {
		t.Errorf("unknown model: got error %v", err)
	}
}

// fakeRunner copies a codeml output file
// into the working directory.
type fakeRunner struct {
	mu    sync.Mutex
	out   map[string]string // model -> output file
	trees map[string]string // model -> tree file content
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, dir string) error {
	if f.err != nil {
		return f.err
	}
	ctl, err := os.ReadFile(filepath.Join(dir, codeml.CtlFile))
	if err != nil {
		return err
	}
	tree, err := os.ReadFile(filepath.Join(dir, codeml.TreeFile))
	if err != nil {
		return err
	}
	if _, err := codon.ReadFile(filepath.Join(dir, codeml.SeqFile)); err != nil {
		return err
	}

	model := "M0"
	if strings.Contains(string(ctl), "model = 2") {
		model = "b_free"
	}
	f.mu.Lock()
	f.trees[model] = string(tree)
	f.mu.Unlock()

	data, err := os.ReadFile(f.out[model])
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, codeml.OutFile), data, 0o644)
}

func newTree(t testing.TB) *evoltree.Tree {
	t.Helper()

	tr, err := evoltree.Read(strings.NewReader("((Ana,Bos),(Cav,Dan));"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	aln, err := codon.Read(strings.NewReader(" 4 6\nDan\nATGCAG\nAna\nATGAAA\nBos\nATGAAG\nCav\nATGCAA\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Link(aln); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Mark([]string{"1"}, []string{evoltree.ForegroundMark}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tr
}

func TestFitAll(t *testing.T) {
	tr := newTree(t)
	r := &fakeRunner{
		out: map[string]string{
			"b_free": "testdata/b_free.out",
			"M0":     "testdata/M0.out",
		},
		trees: make(map[string]string),
	}
	work := t.TempDir()
	ft := &codeml.Fitter{
		Runner:  r,
		WorkDir: work,
	}

	fits, err := ft.FitAll(context.Background(), tr, "b_free", "M0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f := fits["b_free"]; f.Model != "b_free" || f.NP != 8 {
		t.Errorf("b_free: got model %q np %d", f.Model, f.NP)
	}
	if f := fits["M0"]; f.Model != "M0" || f.NP != 7 {
		t.Errorf("M0: got model %q np %d", f.Model, f.NP)
	}

	if got, want := r.trees["b_free"], "((Ana #1,Bos),(Cav,Dan));\n"; got != want {
		t.Errorf("b_free tree: got %q, want %q", got, want)
	}
	if got, want := r.trees["M0"], "((Ana,Bos),(Cav,Dan));\n"; got != want {
		t.Errorf("M0 tree: got %q, want %q", got, want)
	}

	ls, err := os.ReadDir(work)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ls) != 0 {
		t.Errorf("working directories not removed: %d entries", len(ls))
	}
}

func TestFitKeep(t *testing.T) {
	tr := newTree(t)
	r := &fakeRunner{
		out:   map[string]string{"M0": "testdata/M0.out"},
		trees: make(map[string]string),
	}
	ft := &codeml.Fitter{
		Runner:  r,
		WorkDir: t.TempDir(),
		Keep:    true,
	}
	fit, err := ft.Fit(context.Background(), tr, "M0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Dir == "" {
		t.Fatalf("working directory not reported")
	}
	aln, err := codon.ReadFile(filepath.Join(fit.Dir, codeml.SeqFile))
	if err != nil {
		t.Fatalf("unable to read alignment: %v", err)
	}
	if want := []string{"Ana", "Bos", "Cav", "Dan"}; !reflect.DeepEqual(aln.Names(), want) {
		t.Errorf("alignment order: got %v, want %v", aln.Names(), want)
	}
}

func TestFitRunError(t *testing.T) {
	tr := newTree(t)
	r := &fakeRunner{err: codeml.ErrRun}
	ft := &codeml.Fitter{
		Runner:  r,
		WorkDir: t.TempDir(),
	}
	if _, err := ft.FitAll(context.Background(), tr, "b_free", "M0"); !errors.Is(err, codeml.ErrRun) {
		t.Errorf("got error %v, want %v", err, codeml.ErrRun)
	}
	if _, err := ft.FitAll(context.Background(), tr, "b_free", "M42"); !errors.Is(err, codeml.ErrUnknownModel) {
		t.Errorf("got error %v, want %v", err, codeml.ErrUnknownModel)
	}
}
