// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package evoltree_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/evolbranch/codon"
	"github.com/js-arias/evolbranch/evoltree"
)

func TestReadFile(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		terms []string
		err   error
	}{
		{"basic", "testdata/species.nwk", []string{"Ana", "Bos", "Cav", "Dan"}, nil},
		{"two trees", "testdata/two.nwk", nil, evoltree.ErrInvalidFile},
		{"empty", "testdata/empty.nwk", nil, evoltree.ErrInvalidFile},
		{"duplicated", "testdata/dup.nwk", nil, evoltree.ErrDuplicated},
		{"no semicolon", "testdata/bad.nwk", nil, evoltree.ErrInvalidFile},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr, err := evoltree.ReadFile(test.file)
			if !errors.Is(err, test.err) {
				t.Fatalf("got error %v, want %v", err, test.err)
			}
			if err != nil {
				return
			}
			if got := tr.Terms(); !reflect.DeepEqual(got, test.terms) {
				t.Errorf("terms: got %v, want %v", got, test.terms)
			}
		})
	}
}

func TestPAMLIDs(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// ((Bos,Ana),((Eri,Dan),Cav));
	// terminals: Ana=1 Bos=2 Cav=3 Dan=4 Eri=5
	// root=6 (Bos,Ana)=7 ((Eri,Dan),Cav)=8 (Eri,Dan)=9
	want := map[int][]string{
		1: {"Ana"},
		2: {"Bos"},
		3: {"Cav"},
		4: {"Dan"},
		5: {"Eri"},
		6: {"Ana", "Bos", "Cav", "Dan", "Eri"},
		7: {"Ana", "Bos"},
		8: {"Cav", "Dan", "Eri"},
		9: {"Dan", "Eri"},
	}
	if tr.Len() != len(want) {
		t.Fatalf("nodes: got %d, want %d", tr.Len(), len(want))
	}
	for id, terms := range want {
		n, ok := tr.Node(id)
		if !ok {
			t.Errorf("node %d not found", id)
			continue
		}
		if got := n.Terms(); !reflect.DeepEqual(got, terms) {
			t.Errorf("node %d: got %v, want %v", id, got, terms)
		}
	}
	if tr.Root().ID != 6 {
		t.Errorf("root: got %d, want %d", tr.Root().ID, 6)
	}
	if _, ok := tr.Node(10); ok {
		t.Errorf("node 10 should not exist")
	}
}

func TestBranchLength(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/species.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ := tr.Node(3)
	if n.Name != "Cav" || n.Length != 0.3 {
		t.Errorf("node 3: got %s:%g, want Cav:0.3", n.Name, n.Length)
	}
}

func TestMark(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tr.Mark([]string{"1"}, []string{evoltree.ForegroundMark}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "((Bos,Ana #1),((Eri,Dan),Cav));"
	if got := tr.Newick(); got != want {
		t.Errorf("newick: got %q, want %q", got, want)
	}

	tr, err = evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Mark([]string{"9", "3"}, []string{"#1", "#2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "((Bos,Ana),((Eri,Dan) #1,Cav #2));"
	if got := tr.Newick(); got != want {
		t.Errorf("newick: got %q, want %q", got, want)
	}
	if got := tr.Marked(); !reflect.DeepEqual(got, []int{3, 9}) {
		t.Errorf("marked: got %v, want %v", got, []int{3, 9})
	}
}

func TestMarkErrors(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		ids   []string
		marks []string
		err   error
	}{
		{"unknown id", []string{"10"}, []string{"#1"}, evoltree.ErrUnknownNode},
		{"not a number", []string{"x"}, []string{"#1"}, evoltree.ErrUnknownNode},
		{"root", []string{"6"}, []string{"#1"}, evoltree.ErrInvalidMark},
		{"bad mark", []string{"1"}, []string{"1"}, evoltree.ErrInvalidMark},
		{"decimal mark", []string{"1"}, []string{"#1.5"}, evoltree.ErrInvalidMark},
		{"mark count", []string{"1", "2", "3"}, []string{"#1", "#2"}, evoltree.ErrInvalidMark},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := tr.Mark(test.ids, test.marks); !errors.Is(err, test.err) {
				t.Errorf("got error %v, want %v", err, test.err)
			}
		})
	}
	if m := tr.Marked(); len(m) != 0 {
		t.Errorf("failed marks should not change the tree: marked %v", m)
	}
}

func TestClade(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		taxa []string
		want int
	}{
		{[]string{"Eri"}, 5},
		{[]string{"Dan", "Eri"}, 9},
		{[]string{"Cav", "Eri"}, 8},
		{[]string{"Ana", "Eri"}, 6},
	}
	for _, test := range tests {
		id, err := tr.Clade(test.taxa)
		if err != nil {
			t.Errorf("clade %v: unexpected error: %v", test.taxa, err)
			continue
		}
		if id != test.want {
			t.Errorf("clade %v: got %d, want %d", test.taxa, id, test.want)
		}
	}

	if _, err := tr.Clade([]string{"Homo"}); !errors.Is(err, evoltree.ErrUnknownNode) {
		t.Errorf("unknown taxon: got error %v", err)
	}
}

func TestLink(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/species.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	aln, err := codon.Read(strings.NewReader(" 4 6\nAna\nATGAAA\nBos\nATGAAG\nCav\nATGCAA\nDan\nATGCAG\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Link(aln); err != nil {
		t.Fatalf("link: unexpected error: %v", err)
	}
	if tr.Alignment() != aln {
		t.Errorf("alignment not linked")
	}

	missing, _ := codon.Read(strings.NewReader(" 3 6\nAna\nATGAAA\nBos\nATGAAG\nCav\nATGCAA\n"))
	if err := tr.Link(missing); !errors.Is(err, evoltree.ErrMismatch) {
		t.Errorf("missing sequence: got error %v", err)
	}

	extra, _ := codon.Read(strings.NewReader(" 5 6\nAna\nATGAAA\nBos\nATGAAG\nCav\nATGCAA\nDan\nATGCAG\nEri\nATGCCC\n"))
	if err := tr.Link(extra); !errors.Is(err, evoltree.ErrMismatch) {
		t.Errorf("extra sequence: got error %v", err)
	}
}

func TestSetOmegas(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/species.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.SetOmegas(map[int]float64{1: 0.25, 6: 1.5})

	for _, n := range tr.Nodes() {
		want := float64(evoltree.NoOmega)
		switch n.ID {
		case 1:
			want = 0.25
		case 6:
			want = 1.5
		}
		if n.Omega != want {
			t.Errorf("node %d: omega %g, want %g", n.ID, n.Omega, want)
		}
	}
}

func TestTopology(t *testing.T) {
	tr, err := evoltree.ReadFile("testdata/five.nwk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Mark([]string{"8"}, []string{evoltree.ForegroundMark}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "((Bos,Ana),((Eri,Dan),Cav));"
	if got := tr.Topology(); got != want {
		t.Errorf("topology: got %q, want %q", got, want)
	}
}
