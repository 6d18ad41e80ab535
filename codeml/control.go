// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml

import (
	"bufio"
	"fmt"
	"io"
)

// A Param is a key-value pair
// of a codeml control file.
type Param struct {
	Key   string
	Value string
}

// Names of the files used in a codeml working directory.
const (
	SeqFile  = "algn"
	TreeFile = "tree"
	OutFile  = "out"
	CtlFile  = "tmp.ctl"
)

// A Control is a codeml control file.
type Control struct {
	params []Param
}

// DefaultControl returns a control file
// with the default codeml options.
func DefaultControl() *Control {
	return &Control{
		params: []Param{
			{"seqfile", SeqFile},
			{"treefile", TreeFile},
			{"outfile", OutFile},
			{"noisy", "0"},
			{"verbose", "2"},
			{"runmode", "0"},
			{"seqtype", "1"},
			{"CodonFreq", "2"},
			{"clock", "0"},
			{"aaDist", "0"},
			{"model", "0"},
			{"NSsites", "2"},
			{"icode", "0"},
			{"Mgene", "0"},
			{"fix_kappa", "0"},
			{"kappa", "2"},
			{"fix_omega", "0"},
			{"omega", "0.7"},
			{"fix_alpha", "1"},
			{"alpha", "0."},
			{"Malpha", "0"},
			{"ncatG", "8"},
			{"getSE", "0"},
			{"RateAncestor", "0"},
			{"fix_blength", "0"},
			{"Small_Diff", "1e-6"},
			{"cleandata", "0"},
		},
	}
}

// ModelControl returns the control file
// for a given model.
func ModelControl(m Model) *Control {
	c := DefaultControl()
	for _, p := range m.Changes {
		c.Set(p.Key, p.Value)
	}
	return c
}

// Set sets the value of a parameter.
// New parameters are added at the end of the file.
func (c *Control) Set(key, value string) {
	for i, p := range c.params {
		if p.Key == key {
			c.params[i].Value = value
			return
		}
	}
	c.params = append(c.params, Param{key, value})
}

// Get returns the value of a parameter.
func (c *Control) Get(key string) (string, bool) {
	for _, p := range c.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Write writes a control file.
func (c *Control) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range c.params {
		fmt.Fprintf(bw, "%15s = %s\n", p.Key, p.Value)
	}
	return bw.Flush()
}
