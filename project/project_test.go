// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project_test

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/evolbranch/project"
)

type setValue struct {
	key   project.Key
	value string
}

func TestProject(t *testing.T) {
	p := project.New()

	sets := []setValue{
		{project.Tree, "data/tree.nwk"},
		{project.Alignment, "data/aln-{id}.paml"},
		{project.Output, "out/{id}.svg"},
		{project.Codeml, "/opt/paml/bin/codeml"},
		{project.WorkDir, "tmp"},
		{project.Alpha, "0.01"},
	}

	for _, s := range sets {
		p.Set(s.key, s.value)
	}
	testProject(t, p, sets)

	name := filepath.Join(t.TempDir(), "config.tab")
	p.SetName(name)
	if err := p.Write(); err != nil {
		t.Fatalf("error when writing data: %v", err)
	}

	np, err := project.Read(name)
	if err != nil {
		t.Fatalf("error when reading data: %v", err)
	}
	testProject(t, np, sets)

	a, err := np.AlphaLevel()
	if err != nil {
		t.Fatalf("alpha: unexpected error: %v", err)
	}
	if a != 0.01 {
		t.Errorf("alpha: got %g, want %g", a, 0.01)
	}
}

func testProject(t testing.TB, p *project.Project, sets []setValue) {
	t.Helper()

	for _, s := range sets {
		if v := p.Get(s.key); v != s.value {
			t.Errorf("key %s: got value %q, want %q", s.key, v, s.value)
		}
	}
	keys := make([]project.Key, 0, len(sets))
	for _, v := range sets {
		keys = append(keys, v.key)
	}
	slices.Sort(keys)

	if ls := p.Keys(); !reflect.DeepEqual(ls, keys) {
		t.Errorf("keys: got %v, want %v", ls, keys)
	}
}

func TestDefaultPaths(t *testing.T) {
	p := project.Default()

	tests := map[project.Key]string{
		project.Tree:      "../evoltree/species_tree/SpeciesTree.txt",
		project.Alignment: "../evoltree/codon_aln/sp_name_aln_OG0001234.paml",
		project.Output:    "../Results/OG0001234.svg",
	}
	for k, want := range tests {
		if got := p.Resolve(k, "OG0001234"); got != want {
			t.Errorf("%s: got %q, want %q", k, got, want)
		}
	}

	a, err := p.AlphaLevel()
	if err != nil {
		t.Fatalf("alpha: unexpected error: %v", err)
	}
	if a != 0.05 {
		t.Errorf("alpha: got %g, want 0.05", a)
	}
}

func TestResolveSubstitutesEveryPlaceholder(t *testing.T) {
	p := project.New()
	p.Set(project.Output, "{id}/tree-{id}.svg")
	if got, want := p.Resolve(project.Output, "x1"), "x1/tree-x1.svg"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestReadKeepsDefaults(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config.tab")
	data := "# evolbranch configuration\nkey\tvalue\ncodeml\t/usr/bin/codeml\n"
	if err := os.WriteFile(name, []byte(data), 0o644); err != nil {
		t.Fatalf("unable to write config: %v", err)
	}

	p, err := project.Read(name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.Get(project.Codeml); got != "/usr/bin/codeml" {
		t.Errorf("codeml: got %q", got)
	}
	if got := p.Get(project.Tree); got != project.DefTree {
		t.Errorf("tree: got %q, want %q", got, project.DefTree)
	}
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"no header":   "tree\tdata/tree.nwk\n",
		"unknown key": "key\tvalue\ncolor\tred\n",
		"bad alpha":   "key\tvalue\nalpha\t1.5\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			f := filepath.Join(t.TempDir(), "config.tab")
			if err := os.WriteFile(f, []byte(data), 0o644); err != nil {
				t.Fatalf("unable to write config: %v", err)
			}
			if _, err := project.Read(f); err == nil {
				t.Errorf("expecting error")
			}
		})
	}
}
