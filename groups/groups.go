// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package groups maps species group labels
// to the PAML node IDs marked as foreground
// in a branch test.
package groups

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
)

// DefaultMarks are the node IDs used
// when a label is not recognized.
var DefaultMarks = []string{"1"}

// A Table is a collection of species group labels.
type Table struct {
	marks map[string][]string
}

var builtin = &Table{
	marks: map[string][]string{
		"a99":  {"1"},
		"mcon": {"5"},
		"cvar": {"3"},
	},
}

// Builtin returns the default table
// of species groups.
func Builtin() *Table {
	return builtin
}

// Marks returns the node IDs for a species group label
// in the default table.
func Marks(label string) ([]string, bool) {
	return builtin.Marks(label)
}

// Labels returns the labels of the default table.
func Labels() []string {
	return builtin.Labels()
}

// Marks returns the node IDs for a species group label.
// The label is compared without regard of case.
// If the label is unknown,
// it returns DefaultMarks and false.
func (tb *Table) Marks(label string) ([]string, bool) {
	m, ok := tb.marks[strings.ToLower(label)]
	if !ok {
		return slices.Clone(DefaultMarks), false
	}
	return slices.Clone(m), true
}

// Labels returns the known species group labels.
func (tb *Table) Labels() []string {
	ls := make([]string, 0, len(tb.marks))
	for l := range tb.marks {
		ls = append(ls, l)
	}
	slices.Sort(ls)
	return ls
}

// ReadFile reads a species group table from a file.
func ReadFile(name string) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tb, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return tb, nil
}

// Read reads a species group table.
//
// A species group table is a tab-delimited file
// with the following required columns:
//
//	-label	the species group label
//	-nodes	the PAML node IDs separated by commas
//
// Any other columns, will be ignored.
// Labels are stored in lower case.
// Here is an example of a table:
//
//	label	nodes	comment
//	a99	1	single terminal
//	mcon	5
//	cvar	3,7	terminal and its sister clade
func Read(r io.Reader) (*Table, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'
	tsv.FieldsPerRecord = -1

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(h))
		fields[h] = i
	}
	for _, h := range []string{"label", "nodes"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	need := max(fields["label"], fields["nodes"]) + 1

	tb := &Table{marks: make(map[string][]string)}
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}
		if len(row) < need {
			return nil, fmt.Errorf("on row %d: found %d fields, want %d", ln, len(row), need)
		}

		f := "label"
		lbl := strings.ToLower(strings.TrimSpace(row[fields[f]]))
		if lbl == "" {
			return nil, fmt.Errorf("on row %d: field %q: empty label", ln, f)
		}
		if _, dup := tb.marks[lbl]; dup {
			return nil, fmt.Errorf("on row %d: field %q: label %q already defined", ln, f, lbl)
		}

		f = "nodes"
		var ids []string
		for _, v := range strings.Split(row[fields[f]], ",") {
			v = strings.TrimSpace(v)
			id, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
			}
			if id < 1 {
				return nil, fmt.Errorf("on row %d: field %q: invalid node ID %d", ln, f, id)
			}
			ids = append(ids, v)
		}
		tb.marks[lbl] = ids
	}
	if len(tb.marks) == 0 {
		return nil, errors.New("empty species group table")
	}
	return tb, nil
}
