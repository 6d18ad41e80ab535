// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// A Branch is a branch estimate
// from the dN and dS table of codeml.
type Branch struct {
	From, To int     // PAML IDs of the nodes
	T        float64 // branch length
	N, S     float64 // non-synonymous and synonymous sites
	Omega    float64 // dN/dS
	DN, DS   float64
}

// A Fit is the result of fitting a model.
type Fit struct {
	Model string

	// Log-likelihood of the model
	LnL float64

	// Number of parameters
	NP int

	// Number of branch lengths
	NTime int

	// Transition/transversion rate ratio
	Kappa float64

	// dN/dS for all branches,
	// only for models with a single omega.
	Omega float64

	// dN/dS for each branch category
	// in branch models
	// (the background first).
	BranchOmegas []float64

	Branches []Branch

	// Working directory,
	// empty if removed.
	Dir string
}

// Omegas returns the dN/dS of each branch
// indexed by the PAML ID of the node
// at the end of the branch.
func (f *Fit) Omegas() map[int]float64 {
	om := make(map[int]float64, len(f.Branches))
	for _, b := range f.Branches {
		om[b.To] = b.Omega
	}
	return om
}

var (
	lnLRegexp   = regexp.MustCompile(`^lnL\(ntime:\s*(\d+)\s+np:\s*(\d+)\):\s*(-?[0-9.]+(?:[eE][-+]?\d+)?)`)
	kappaRegexp = regexp.MustCompile(`^kappa \(ts/tv\)\s*=\s*(-?[0-9.]+)`)
	omegaRegexp = regexp.MustCompile(`^omega \(dN/dS\)\s*=\s*(-?[0-9.]+)`)
	branRegexp  = regexp.MustCompile(`^w \(dN/dS\) for branches:\s*(.*)$`)
	rowRegexp   = regexp.MustCompile(`^(\d+)\.\.(\d+)$`)
)

// ReadOutput reads a codeml output file.
func ReadOutput(name string) (*Fit, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fit, err := ParseOutput(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return fit, nil
}

// ParseOutput parses the main output file of codeml.
func ParseOutput(r io.Reader) (*Fit, error) {
	fit := &Fit{}
	hasLnL := false
	inTable := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())

		if m := lnLRegexp.FindStringSubmatch(line); m != nil {
			fit.NTime, _ = strconv.Atoi(m[1])
			fit.NP, _ = strconv.Atoi(m[2])
			v, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid likelihood %q: %v", ln, m[3], err)
			}
			fit.LnL = v
			hasLnL = true
			continue
		}
		if m := kappaRegexp.FindStringSubmatch(line); m != nil {
			fit.Kappa, _ = strconv.ParseFloat(m[1], 64)
			continue
		}
		if m := omegaRegexp.FindStringSubmatch(line); m != nil {
			fit.Omega, _ = strconv.ParseFloat(m[1], 64)
			continue
		}
		if m := branRegexp.FindStringSubmatch(line); m != nil {
			fit.BranchOmegas = fit.BranchOmegas[:0]
			for _, v := range strings.Fields(m[1]) {
				w, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid dN/dS value %q: %v", ln, v, err)
				}
				fit.BranchOmegas = append(fit.BranchOmegas, w)
			}
			continue
		}

		if strings.HasPrefix(line, "dN & dS for each branch") {
			inTable = true
			fit.Branches = fit.Branches[:0]
			continue
		}
		if !inTable {
			continue
		}

		f := strings.Fields(line)
		if len(f) == 0 || f[0] == "branch" {
			continue
		}
		m := rowRegexp.FindStringSubmatch(f[0])
		if m == nil {
			if len(fit.Branches) > 0 {
				inTable = false
			}
			continue
		}
		b, err := parseBranch(m, f)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", ln, err)
		}
		fit.Branches = append(fit.Branches, b)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !hasLnL {
		return nil, ErrNoLikelihood
	}
	return fit, nil
}

// parseBranch parses a row of the dN and dS table:
//
//	branch  t  N  S  dN/dS  dN  dS  N*dN  S*dS
func parseBranch(m, f []string) (Branch, error) {
	if len(f) < 7 {
		return Branch{}, fmt.Errorf("branch %s: expecting at least 7 fields, found %d", f[0], len(f))
	}
	var b Branch
	b.From, _ = strconv.Atoi(m[1])
	b.To, _ = strconv.Atoi(m[2])

	vals := make([]float64, 6)
	for i := range vals {
		v, err := strconv.ParseFloat(f[i+1], 64)
		if err != nil {
			return Branch{}, fmt.Errorf("branch %s: invalid value %q: %v", f[0], f[i+1], err)
		}
		vals[i] = v
	}
	b.T = vals[0]
	b.N = vals[1]
	b.S = vals[2]
	b.Omega = vals[3]
	b.DN = vals[4]
	b.DS = vals[5]
	return b, nil
}
