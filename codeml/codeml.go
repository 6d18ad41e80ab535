// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package codeml implements the fitting of codon models
// using the codeml program of the PAML package.
//
// For each model a working directory is created
// with the alignment, the tree,
// and the control file,
// then codeml is executed
// and its output is parsed.
package codeml

import "errors"

var (
	ErrUnknownModel = errors.New("unknown model")
	ErrNoLikelihood = errors.New("likelihood not found in codeml output")
	ErrRun          = errors.New("codeml failed")
)
