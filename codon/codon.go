// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package codon implements reading and writing
// of codon (nucleotide coding sequence) alignments.
//
// Alignments can be read from PAML/PHYLIP sequential files
// or FASTA files,
// and are written in the sequential format
// expected by codeml.
package codon

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/evolbioinfo/goalign/align"
	"github.com/evolbioinfo/goalign/io/fasta"
)

var (
	ErrInvalidFormat = errors.New("invalid alignment format")
	ErrNotCodon      = errors.New("not a codon alignment")
	ErrDuplicated    = errors.New("duplicated sequence name")
)

// An Alignment is a codon alignment.
type Alignment struct {
	aln   align.Alignment
	names []string
}

// New creates a new empty alignment.
func New() *Alignment {
	return &Alignment{
		aln: align.NewAlign(align.NUCLEOTIDS),
	}
}

// Add adds a sequence to the alignment.
func (a *Alignment) Add(name, seq string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty sequence name", ErrInvalidFormat)
	}
	if _, ok := a.aln.GetSequence(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicated, name)
	}
	if err := a.aln.AddSequence(name, strings.ToUpper(seq), ""); err != nil {
		return fmt.Errorf("sequence %q: %v", name, err)
	}
	a.names = append(a.names, name)
	return nil
}

// Names returns the sequence names
// in the order found in the alignment.
func (a *Alignment) Names() []string {
	ns := make([]string, len(a.names))
	copy(ns, a.names)
	return ns
}

// Sequence returns the sequence of a given name.
func (a *Alignment) Sequence(name string) (string, bool) {
	return a.aln.GetSequence(name)
}

// Len returns the number of sequences.
func (a *Alignment) Len() int {
	return len(a.names)
}

// Sites returns the number of nucleotide sites.
func (a *Alignment) Sites() int {
	if len(a.names) == 0 {
		return 0
	}
	return a.aln.Length()
}

// Codons returns the number of codons.
func (a *Alignment) Codons() int {
	return a.Sites() / 3
}

// Validate checks that the alignment is a valid
// codon alignment.
func (a *Alignment) Validate() error {
	if len(a.names) == 0 {
		return fmt.Errorf("%w: empty alignment", ErrInvalidFormat)
	}
	l := -1
	for _, n := range a.names {
		s, _ := a.aln.GetSequence(n)
		if l < 0 {
			l = len(s)
		}
		if len(s) != l {
			return fmt.Errorf("%w: sequence %q: length %d, want %d", ErrInvalidFormat, n, len(s), l)
		}
	}
	if l == 0 {
		return fmt.Errorf("%w: empty sequences", ErrInvalidFormat)
	}
	if l%3 != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of 3", ErrNotCodon, l)
	}
	return nil
}

// ReadFile reads an alignment from a file.
func ReadFile(name string) (*Alignment, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %w", name, err)
	}
	return a, nil
}

// Read reads a codon alignment.
// If the first non-blank character is '>'
// the alignment is read as FASTA,
// otherwise it is read as a PAML sequential file.
func Read(r io.Reader) (*Alignment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidFormat)
	}

	var a *Alignment
	if data[0] == '>' {
		a, err = readFasta(bytes.NewReader(data))
	} else {
		a, err = readPAML(bytes.NewReader(data))
	}
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func readFasta(r io.Reader) (*Alignment, error) {
	fa, err := fasta.NewParser(r).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	a := New()
	for i := 0; i < fa.NbSequences(); i++ {
		n, _ := fa.GetSequenceNameById(i)
		s, _ := fa.GetSequenceById(i)
		if err := a.Add(n, s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// readPAML reads a PAML sequential file.
// The first line holds the number of sequences
// and the number of sites,
// then each sequence is given by its name,
// followed by the sequence,
// that can span multiple lines.
// A name and the start of a sequence
// can be in the same line
// if separated by two or more spaces,
// or a tab.
func readPAML(r io.Reader) (*Alignment, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	ln := 0
	var nSeq, nSites int
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		f := strings.Fields(line)
		if len(f) < 2 {
			return nil, fmt.Errorf("%w: line %d: expecting number of sequences and sites", ErrInvalidFormat, ln)
		}
		var err error
		nSeq, err = strconv.Atoi(f[0])
		if err != nil || nSeq <= 0 {
			return nil, fmt.Errorf("%w: line %d: invalid number of sequences %q", ErrInvalidFormat, ln, f[0])
		}
		nSites, err = strconv.Atoi(f[1])
		if err != nil || nSites <= 0 {
			return nil, fmt.Errorf("%w: line %d: invalid number of sites %q", ErrInvalidFormat, ln, f[1])
		}
		break
	}
	if nSeq == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidFormat)
	}

	a := New()
	var name string
	var seq strings.Builder
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if name == "" {
			if a.Len() == nSeq {
				return nil, fmt.Errorf("%w: line %d: more than %d sequences", ErrInvalidFormat, ln, nSeq)
			}
			name, line = splitName(line)
			if line == "" {
				continue
			}
		}

		for _, c := range line {
			if c == ' ' || c == '\t' {
				continue
			}
			seq.WriteRune(c)
		}
		if seq.Len() > nSites {
			return nil, fmt.Errorf("%w: line %d: sequence %q: more than %d sites", ErrInvalidFormat, ln, name, nSites)
		}
		if seq.Len() == nSites {
			if err := a.Add(name, seq.String()); err != nil {
				return nil, fmt.Errorf("line %d: %w", ln, err)
			}
			name = ""
			seq.Reset()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		return nil, fmt.Errorf("%w: sequence %q: found %d sites, want %d", ErrInvalidFormat, name, seq.Len(), nSites)
	}
	if a.Len() != nSeq {
		return nil, fmt.Errorf("%w: found %d sequences, want %d", ErrInvalidFormat, a.Len(), nSeq)
	}
	return a, nil
}

func splitName(line string) (name, rest string) {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
	}
	if i := strings.Index(line, "  "); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
	}
	return line, ""
}

// Sorted returns a new alignment
// with the sequences in the indicated order.
// All sequences must be included in names.
func (a *Alignment) Sorted(names []string) (*Alignment, error) {
	if len(names) != a.Len() {
		return nil, fmt.Errorf("expecting %d sequence names, got %d", a.Len(), len(names))
	}
	na := New()
	for _, n := range names {
		s, ok := a.aln.GetSequence(n)
		if !ok {
			return nil, fmt.Errorf("sequence %q not in alignment", n)
		}
		if err := na.Add(n, s); err != nil {
			return nil, err
		}
	}
	return na, nil
}

// WritePAML writes the alignment
// in PAML sequential format.
func (a *Alignment) WritePAML(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, " %d %d\n", a.Len(), a.Sites())
	for _, n := range a.names {
		s, _ := a.aln.GetSequence(n)
		fmt.Fprintf(bw, "%s\n%s\n", n, s)
	}
	return bw.Flush()
}
