// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml

import (
	"fmt"
	"slices"
)

// Type is the kind of evolutionary model.
type Type string

// Valid model types.
const (
	Null        Type = "null"
	BranchModel Type = "branch"
	Site        Type = "site"
	BranchSite  Type = "branch-site"
)

// A Model is a codon model
// defined by a set of changes
// to the default codeml control file.
type Model struct {
	// Name of the model
	Name string

	// Short description of the model
	Desc string

	Type Type

	// If AllowMark is true,
	// branch marks are written in the tree file.
	AllowMark bool

	// Changes to the default control file
	Changes []Param
}

var models = map[string]Model{
	"M0": {
		Name:    "M0",
		Desc:    "negative selection: a single dN/dS for all branches and sites",
		Type:    Null,
		Changes: []Param{{"NSsites", "0"}},
	},
	"M1": {
		Name:    "M1",
		Desc:    "relaxation: nearly neutral site model",
		Type:    Null,
		Changes: []Param{{"NSsites", "1"}},
	},
	"M2": {
		Name:    "M2",
		Desc:    "positive selection: site model",
		Type:    Site,
		Changes: []Param{{"NSsites", "2"}},
	},
	"M3": {
		Name:    "M3",
		Desc:    "discrete site model",
		Type:    Site,
		Changes: []Param{{"NSsites", "3"}},
	},
	"M7": {
		Name:    "M7",
		Desc:    "relaxation: beta site model",
		Type:    Null,
		Changes: []Param{{"NSsites", "7"}},
	},
	"M8": {
		Name:    "M8",
		Desc:    "positive selection: beta and omega site model",
		Type:    Site,
		Changes: []Param{{"NSsites", "8"}},
	},
	"M8a": {
		Name:    "M8a",
		Desc:    "relaxation: beta and omega=1 site model",
		Type:    Null,
		Changes: []Param{{"NSsites", "8"}, {"fix_omega", "1"}, {"omega", "1"}},
	},
	"fb": {
		Name:    "fb",
		Desc:    "free-ratios: an independent dN/dS for each branch",
		Type:    BranchModel,
		Changes: []Param{{"model", "1"}, {"NSsites", "0"}},
	},
	"b_free": {
		Name:      "b_free",
		Desc:      "free-ratios: marked branches have an independent dN/dS",
		Type:      BranchModel,
		AllowMark: true,
		Changes:   []Param{{"model", "2"}, {"NSsites", "0"}},
	},
	"b_neut": {
		Name:      "b_neut",
		Desc:      "relaxation: marked branches have dN/dS fixed to 1",
		Type:      BranchModel,
		AllowMark: true,
		Changes:   []Param{{"model", "2"}, {"NSsites", "0"}, {"fix_omega", "1"}, {"omega", "1"}},
	},
	"bsA": {
		Name:      "bsA",
		Desc:      "positive selection: branch-site model A",
		Type:      BranchSite,
		AllowMark: true,
		Changes:   []Param{{"model", "2"}, {"NSsites", "2"}},
	},
	"bsA1": {
		Name:      "bsA1",
		Desc:      "relaxation: branch-site model A with foreground dN/dS fixed to 1",
		Type:      BranchSite,
		AllowMark: true,
		Changes:   []Param{{"model", "2"}, {"NSsites", "2"}, {"fix_omega", "1"}, {"omega", "1"}},
	},
	"bsC": {
		Name:      "bsC",
		Desc:      "different-ratios: branch-site model C",
		Type:      BranchSite,
		AllowMark: true,
		Changes:   []Param{{"model", "3"}, {"NSsites", "2"}},
	},
	"bsD": {
		Name:      "bsD",
		Desc:      "different-ratios: branch-site model D",
		Type:      BranchSite,
		AllowMark: true,
		Changes:   []Param{{"model", "3"}, {"NSsites", "3"}},
	},
}

// Get returns a model by its name.
func Get(name string) (Model, error) {
	m, ok := models[name]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	m.Changes = slices.Clone(m.Changes)
	return m, nil
}

// Models returns the names of the available models.
func Models() []string {
	names := make([]string, 0, len(models))
	for n := range models {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
