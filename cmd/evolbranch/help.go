// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(configGuide)
	app.Add(modelsGuide)
}

var configGuide = &command.Command{
	Usage: "config-file",
	Short: "about configuration files",
	Long: `
EvolBranch reads a species tree and a codon alignment, and writes an SVG file
when a test is significant. The location of these files, as well as other
settings, can be stored in a configuration file. If no configuration file is
given, the default settings are used.

A configuration file is a tab-delimited file with the following fields:

	- key    for the setting
	- value  for the value of the setting

Here is an example file:

	# evolbranch configuration
	key	value
	alignment	data/aln/sp_name_aln_{id}.paml
	codeml	/usr/local/bin/codeml
	output	results/{id}.svg
	tree	data/SpeciesTree.txt

The valid keys are:

- "tree": the species tree, in Newick format. By default it is
  "../evoltree/species_tree/SpeciesTree.txt".
- "alignment": the codon alignment, in PAML sequential or FASTA format. By
  default it is "../evoltree/codon_aln/sp_name_aln_{id}.paml".
- "output": the SVG file written when the test is significant. By default it
  is "../Results/{id}.svg".
- "codeml": the path of the codeml program. By default "codeml" is searched
  in the system path.
- "workdir": the directory in which codeml working directories are created.
  By default the system temporary directory is used.
- "alpha": the significance level of the likelihood-ratio test. By default it
  is 0.05.
- "groups": a table of species groups, used instead of the built-in groups.
  It is a tab-delimited file with the columns "label", for the species group
  label, and "nodes", for a comma-separated list of the node IDs to be marked.

In path values, every occurrence of "{id}" is replaced by the run identifier.

The recommended way to edit a configuration file is by using the command
'evolbranch config'.
	`,
}

var modelsGuide = &command.Command{
	Usage: "models-guide",
	Short: "about codeml models",
	Long: `
EvolBranch uses codeml, from the PAML package, to fit codon models to a
species tree. Each model is run in its own working directory, with a control
file, an alignment file ("algn") and a tree file ("tree").

A branch test compares the free-branch model (b_free), in which the marked
branches have a dN/dS ratio different from the background, with the one-ratio
model (M0), in which all branches share the same dN/dS. Both models are
compared using a likelihood-ratio test, with as many degrees of freedom as the
difference in the number of parameters of the models.

Branches are marked using the PAML node IDs. Terminals, sorted by name, are
numbered from 1 to n, the root is n+1, and the other internal nodes are
numbered in pre-order. Use the command 'evolbranch nodes' to see the IDs of a
tree.

Use the command 'evolbranch models' to see the list of available models.
	`,
}
