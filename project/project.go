// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of evolbranch configuration files.
//
// A configuration file is a tab-delimited file (TSV)
// used to store the paths and settings
// required to run a branch test.
// Path values are templates:
// every occurrence of "{id}"
// is replaced by the run identifier.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Key is a keyword to identify
// a setting in a configuration file.
type Key string

// Valid configuration keys.
const (
	// Species tree file,
	// in Newick format.
	Tree Key = "tree"

	// Template for the codon alignment file.
	Alignment Key = "alignment"

	// Template for the SVG file
	// written on a significant result.
	Output Key = "output"

	// Path of the codeml executable.
	Codeml Key = "codeml"

	// Directory used to store
	// codeml working directories.
	WorkDir Key = "workdir"

	// Significance level
	// of the likelihood-ratio test.
	Alpha Key = "alpha"

	// Table of species groups,
	// used instead of the built-in groups.
	Groups Key = "groups"
)

// IDTemplate is the placeholder replaced
// by the run identifier in path templates.
const IDTemplate = "{id}"

// Default values.
const (
	DefTree      = "../evoltree/species_tree/SpeciesTree.txt"
	DefAlignment = "../evoltree/codon_aln/sp_name_aln_{id}.paml"
	DefOutput    = "../Results/{id}.svg"
	DefCodeml    = "codeml"
	DefAlpha     = 0.05
)

var validKeys = map[Key]bool{
	Tree:      true,
	Alignment: true,
	Output:    true,
	Codeml:    true,
	WorkDir:   true,
	Alpha:     true,
	Groups:    true,
}

// IsValid returns true if k is a known configuration key.
func IsValid(k Key) bool {
	return validKeys[k]
}

// A Project represents a collection of settings
// for branch tests.
type Project struct {
	name   string
	values map[Key]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{
		name:   "",
		values: make(map[Key]string),
	}
}

// Default returns a project
// with the default settings.
func Default() *Project {
	p := New()
	p.values[Tree] = DefTree
	p.values[Alignment] = DefAlignment
	p.values[Output] = DefOutput
	p.values[Codeml] = DefCodeml
	p.values[Alpha] = strconv.FormatFloat(DefAlpha, 'g', -1, 64)
	return p
}

var header = []string{
	"key",
	"value",
}

// Read reads a configuration file from a TSV file.
// Keys not defined in the file
// keep their default values.
//
// The TSV must contain the following fields:
//
//   - key, for the setting
//   - value, for the value of the setting
//
// Here is an example file:
//
//	# evolbranch configuration
//	key	value
//	tree	data/SpeciesTree.txt
//	alignment	data/aln/sp_name_aln_{id}.paml
//	output	results/{id}.svg
//	codeml	/usr/local/bin/codeml
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	p := Default()
	p.name = name
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "key"
		k := Key(strings.ToLower(strings.TrimSpace(row[fields[f]])))
		if !IsValid(k) {
			return nil, fmt.Errorf("on file %q: on row %d: unknown key %q", name, ln, k)
		}

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		if k == Alpha {
			if _, err := parseAlpha(v); err != nil {
				return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
			}
		}
		p.values[k] = v
	}

	return p, nil
}

// Set sets the value of a key.
// It returns the previous value.
// An empty value removes the key.
func (p *Project) Set(k Key, value string) string {
	prev := p.values[k]
	if value == "" {
		delete(p.values, k)
		return prev
	}

	p.values[k] = value
	return prev
}

// Get returns the raw value of the given key.
func (p *Project) Get(k Key) string {
	return p.values[k]
}

// Resolve returns the value of the given key
// with the run identifier substituted
// in the template.
func (p *Project) Resolve(k Key, id string) string {
	return Template(p.values[k], id)
}

// Template replaces every occurrence of IDTemplate
// in s with the run identifier.
func Template(s, id string) string {
	return strings.ReplaceAll(s, IDTemplate, id)
}

// AlphaLevel returns the significance level
// defined in the project.
func (p *Project) AlphaLevel() (float64, error) {
	v := p.values[Alpha]
	if v == "" {
		return DefAlpha, nil
	}
	return parseAlpha(v)
}

func parseAlpha(v string) (float64, error) {
	a, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid alpha value %q: %v", v, err)
	}
	if a <= 0 || a >= 1 {
		return 0, fmt.Errorf("invalid alpha value %q: must be in (0, 1)", v)
	}
	return a, nil
}

// Keys returns the keys defined on a project.
func (p *Project) Keys() []Key {
	var keys []Key
	for k := range p.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Name returns the file name of the project.
func (p *Project) Name() string {
	return p.name
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into a file.
func (p *Project) Write() (err error) {
	f, err := os.Create(p.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# evolbranch configuration\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", p.name, err)
	}

	for _, k := range p.Keys() {
		row := []string{
			string(k),
			p.values[k],
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", p.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}
