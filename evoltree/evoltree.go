// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package evoltree implements species trees
// prepared for codon model fitting with codeml.
//
// Nodes in a tree are identified
// using the PAML numbering:
// terminals, sorted by name,
// are numbered from 1 to n,
// the root is n+1,
// and the other internal nodes
// are numbered in pre-order.
package evoltree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"
	"github.com/js-arias/evolbranch/codon"
)

var (
	ErrInvalidFile   = errors.New("invalid file")
	ErrInvalidFormat = errors.New("invalid format")
	ErrDuplicated    = errors.New("duplicated terminal name")
	ErrUnknownNode   = errors.New("unknown node ID")
	ErrInvalidMark   = errors.New("invalid mark")
	ErrMismatch      = errors.New("tree and alignment do not match")
)

// ForegroundMark is the mark used for the foreground branches.
const ForegroundMark = "#1"

// NoOmega is the value of Node.Omega
// when no dN/dS value is assigned to the branch.
const NoOmega = -1

// A Node is a node of a species tree.
type Node struct {
	// PAML ID of the node
	ID int

	// Terminal name,
	// empty for internal nodes
	Name string

	// Length of the branch
	// that leads to the node.
	// It is negative if undefined.
	Length float64

	// Mark of the branch
	// that leads to the node
	// (e.g. "#1")
	Mark string

	// dN/dS of the branch
	// that leads to the node.
	Omega float64

	Parent   *Node
	Children []*Node
}

// IsTerm returns true if the node is a terminal.
func (n *Node) IsTerm() bool {
	return len(n.Children) == 0
}

// Terms returns the names of the terminals
// descendant from the node,
// sorted by name.
func (n *Node) Terms() []string {
	var terms []string
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsTerm() {
			terms = append(terms, n.Name)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	slices.Sort(terms)
	return terms
}

// A Tree is a species tree.
type Tree struct {
	root  *Node
	nodes []*Node // indexed by PAML ID
	terms []*Node // sorted by name
	aln   *codon.Alignment
}

// ReadFile reads a tree from a Newick file.
func ReadFile(name string) (*Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return t, nil
}

// Read reads a single tree in Newick format.
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Count(data, []byte{';'}) != 1 {
		return nil, fmt.Errorf("%w, there should be exactly one newick tree", ErrInvalidFile)
	}

	gt, err := newick.NewParser(bytes.NewReader(data)).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w, error parsing newick string: %v", ErrInvalidFormat, err)
	}
	return fromGoTree(gt)
}

func fromGoTree(gt *tree.Tree) (*Tree, error) {
	t := &Tree{}
	nodes := make(map[*tree.Node]*Node)
	var errTerm error
	gt.PreOrder(func(cur, prev *tree.Node, e *tree.Edge) (keep bool) {
		if errTerm != nil {
			return false
		}
		n := &Node{
			Length: -1,
			Omega:  NoOmega,
		}
		if e != nil {
			n.Length = e.Length()
		}
		if prev == nil {
			t.root = n
		} else {
			p := nodes[prev]
			n.Parent = p
			p.Children = append(p.Children, n)
		}
		if cur.Tip() && prev != nil {
			n.Name = strings.TrimSpace(cur.Name())
			if n.Name == "" {
				errTerm = fmt.Errorf("%w, terminal without name", ErrInvalidFormat)
				return false
			}
			t.terms = append(t.terms, n)
		}
		nodes[cur] = n
		return true
	})
	if errTerm != nil {
		return nil, errTerm
	}
	if len(t.terms) < 2 {
		return nil, fmt.Errorf("%w, a tree requires at least two terminals", ErrInvalidFormat)
	}

	slices.SortFunc(t.terms, func(a, b *Node) int {
		return strings.Compare(a.Name, b.Name)
	})
	for i := 1; i < len(t.terms); i++ {
		if t.terms[i].Name == t.terms[i-1].Name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicated, t.terms[i].Name)
		}
	}
	t.setIDs()
	return t, nil
}

// setIDs sets the PAML IDs of the nodes.
func (t *Tree) setIDs() {
	t.nodes = []*Node{nil}
	for _, n := range t.terms {
		n.ID = len(t.nodes)
		t.nodes = append(t.nodes, n)
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsTerm() {
			return
		}
		n.ID = len(t.nodes)
		t.nodes = append(t.nodes, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
}

// Root returns the root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Node returns the node with the given PAML ID.
func (t *Tree) Node(id int) (*Node, bool) {
	if id <= 0 || id >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[id], true
}

// Nodes returns the nodes of the tree
// ordered by its PAML ID.
func (t *Tree) Nodes() []*Node {
	return slices.Clone(t.nodes[1:])
}

// Terms returns the terminal names
// sorted by name.
func (t *Tree) Terms() []string {
	names := make([]string, 0, len(t.terms))
	for _, n := range t.terms {
		names = append(names, n.Name)
	}
	return names
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

var markRegexp = regexp.MustCompile(`^[#$][0-9]+$`)

// Mark sets the marks of the branches
// leading to the nodes with the given IDs.
// If marks has a single element,
// it will be used for all nodes,
// otherwise,
// it must be of the same length as ids.
//
// The root node can not be marked.
func (t *Tree) Mark(ids, marks []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no nodes to mark", ErrUnknownNode)
	}
	if len(marks) != 1 && len(marks) != len(ids) {
		return fmt.Errorf("%w: %d marks for %d nodes", ErrInvalidMark, len(marks), len(ids))
	}
	for _, m := range marks {
		if !markRegexp.MatchString(m) {
			return fmt.Errorf("%w: %q: a mark should be a '#' directly followed by an integer", ErrInvalidMark, m)
		}
	}

	nodes := make([]*Node, 0, len(ids))
	for _, v := range ids {
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownNode, v)
		}
		n, ok := t.Node(id)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownNode, id)
		}
		if n == t.root {
			return fmt.Errorf("%w: %d: root branch can not be marked", ErrInvalidMark, id)
		}
		nodes = append(nodes, n)
	}

	for i, n := range nodes {
		m := marks[0]
		if len(marks) > 1 {
			m = marks[i]
		}
		n.Mark = m
	}
	return nil
}

// Marked returns the IDs of the marked nodes.
func (t *Tree) Marked() []int {
	var ids []int
	for _, n := range t.nodes[1:] {
		if n.Mark != "" {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Clade returns the ID of the smallest clade
// that includes all the indicated terminals.
func (t *Tree) Clade(taxa []string) (int, error) {
	if len(taxa) == 0 {
		return 0, fmt.Errorf("%w: empty taxon list", ErrUnknownNode)
	}
	index := make(map[string]uint, len(t.terms))
	for i, n := range t.terms {
		index[n.Name] = uint(i)
	}

	want := bitset.New(uint(len(t.terms)))
	for _, tx := range taxa {
		i, ok := index[strings.TrimSpace(tx)]
		if !ok {
			return 0, fmt.Errorf("%w: terminal %q not in tree", ErrUnknownNode, tx)
		}
		want.Set(i)
	}

	sets := t.leafSets()
	best := t.root
	for _, n := range t.nodes[1:] {
		s := sets[n.ID]
		if !s.IsSuperSet(want) {
			continue
		}
		if s.Count() < sets[best.ID].Count() {
			best = n
		}
	}
	return best.ID, nil
}

// leafSets returns the terminals
// descendant of each node,
// indexed by PAML ID.
func (t *Tree) leafSets() []*bitset.BitSet {
	sets := make([]*bitset.BitSet, len(t.nodes))
	var walk func(n *Node)
	walk = func(n *Node) {
		s := bitset.New(uint(len(t.terms)))
		if n.IsTerm() {
			s.Set(uint(n.ID - 1))
		}
		for _, c := range n.Children {
			walk(c)
			s.InPlaceUnion(sets[c.ID])
		}
		sets[n.ID] = s
	}
	walk(t.root)
	return sets
}

// Link links an alignment to the tree.
// Each terminal must have a sequence
// in the alignment,
// and each sequence must be assigned
// to a terminal.
func (t *Tree) Link(aln *codon.Alignment) error {
	if err := aln.Validate(); err != nil {
		return err
	}

	var missing []string
	for _, n := range t.terms {
		if _, ok := aln.Sequence(n.Name); !ok {
			missing = append(missing, n.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: terminals without sequence: %s", ErrMismatch, strings.Join(missing, ", "))
	}

	if aln.Len() != len(t.terms) {
		terms := make(map[string]bool, len(t.terms))
		for _, n := range t.terms {
			terms[n.Name] = true
		}
		var extra []string
		for _, s := range aln.Names() {
			if !terms[s] {
				extra = append(extra, s)
			}
		}
		return fmt.Errorf("%w: sequences without terminal: %s", ErrMismatch, strings.Join(extra, ", "))
	}

	t.aln = aln
	return nil
}

// Alignment returns the alignment linked to the tree.
func (t *Tree) Alignment() *codon.Alignment {
	return t.aln
}

// SetOmegas sets the dN/dS values of the branches.
// The values are indexed by the ID of the node
// at the end of the branch.
func (t *Tree) SetOmegas(omegas map[int]float64) {
	for _, n := range t.nodes[1:] {
		n.Omega = NoOmega
		if w, ok := omegas[n.ID]; ok {
			n.Omega = w
		}
	}
}

// Newick returns the tree in Newick format,
// as read by codeml.
// Only terminal names and marks are written.
func (t *Tree) Newick() string {
	var b strings.Builder
	t.root.newick(&b, true)
	b.WriteString(";")
	return b.String()
}

// Topology returns the tree in Newick format
// without marks.
func (t *Tree) Topology() string {
	var b strings.Builder
	t.root.newick(&b, false)
	b.WriteString(";")
	return b.String()
}

func (n *Node) newick(b *strings.Builder, marks bool) {
	if !n.IsTerm() {
		b.WriteString("(")
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(",")
			}
			c.newick(b, marks)
		}
		b.WriteString(")")
	} else {
		b.WriteString(n.Name)
	}
	if marks && n.Mark != "" {
		b.WriteString(" ")
		b.WriteString(n.Mark)
	}
}
