// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/js-arias/evolbranch/evoltree"
	"golang.org/x/sync/errgroup"
)

// A Fitter fits codon models to a tree.
type Fitter struct {
	// Runner used to execute codeml.
	Runner Runner

	// Directory in which the working directories
	// are created.
	// If empty, the system temporary directory is used.
	WorkDir string

	// If Keep is true,
	// the working directories are not removed.
	Keep bool

	// Maximum number of models fitted at the same time.
	// If zero or negative,
	// the number of CPUs is used.
	CPU int
}

// Fit fits a model to a tree.
// The tree must have an alignment linked.
func (ft *Fitter) Fit(ctx context.Context, t *evoltree.Tree, name string) (fit *Fit, err error) {
	m, err := Get(name)
	if err != nil {
		return nil, err
	}
	if t.Alignment() == nil {
		return nil, fmt.Errorf("model %s: tree without alignment", name)
	}

	if ft.WorkDir != "" {
		if err := os.MkdirAll(ft.WorkDir, 0o755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(ft.WorkDir, m.Name+"-")
	if err != nil {
		return nil, err
	}
	defer func() {
		if ft.Keep {
			return
		}
		if e := os.RemoveAll(dir); e != nil && err == nil {
			err = e
		}
		if fit != nil {
			fit.Dir = ""
		}
	}()

	if err := writeInput(dir, t, m); err != nil {
		return nil, fmt.Errorf("model %s: %v", m.Name, err)
	}
	if err := ft.Runner.Run(ctx, dir); err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}

	fit, err = ReadOutput(filepath.Join(dir, OutFile))
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", m.Name, err)
	}
	fit.Model = m.Name
	fit.Dir = dir
	return fit, nil
}

// FitAll fits several models to the same tree.
// The models are fitted concurrently.
func (ft *Fitter) FitAll(ctx context.Context, t *evoltree.Tree, names ...string) (map[string]*Fit, error) {
	for _, n := range names {
		if _, err := Get(n); err != nil {
			return nil, err
		}
	}

	cpu := ft.CPU
	if cpu <= 0 {
		cpu = runtime.NumCPU()
	}

	fits := make([]*Fit, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cpu)
	for i, n := range names {
		i, n := i, n
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := ft.Fit(ctx, t, n)
			if err != nil {
				return err
			}
			fits[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make(map[string]*Fit, len(names))
	for i, n := range names {
		res[n] = fits[i]
	}
	return res, nil
}

func writeInput(dir string, t *evoltree.Tree, m Model) error {
	aln, err := t.Alignment().Sorted(t.Terms())
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, SeqFile), aln.WritePAML); err != nil {
		return err
	}

	nwk := t.Topology()
	if m.AllowMark {
		nwk = t.Newick()
	}
	if err := os.WriteFile(filepath.Join(dir, TreeFile), []byte(nwk+"\n"), 0o644); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, CtlFile), ModelControl(m).Write)
}

func writeFile(name string, write func(io.Writer) error) (err error) {
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

	if err := write(f); err != nil {
		return fmt.Errorf("while writing file %q: %v", name, err)
	}
	return nil
}
