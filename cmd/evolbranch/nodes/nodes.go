// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nodes implements a command to print
// the PAML node IDs of a species tree.
package nodes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/evoltree"
	"github.com/js-arias/evolbranch/project"
)

var Command = &command.Command{
	Usage: "nodes [--config <file>] [--id <id>] [<tree-file>]",
	Short: "print the node IDs of a tree",
	Long: `
Command nodes reads a species tree in Newick format and prints the PAML ID of
each node, the ID of its parent, the length of the branch that leads to the
node, and the terminals descendant from the node. The IDs can be used to mark
branches with the flag --mark of the command 'evolbranch test'.

The argument of the command is the name of the tree file. If no file is given,
the tree file of the configuration is used. Use the flag --config to define a
configuration file, otherwise the default settings are used. If the tree path
is a template, use the flag --id to set the run identifier.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var configFile string
var idFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().StringVar(&idFlag, "id", "", "")
}

func run(c *command.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		p := project.Default()
		if configFile != "" {
			var err error
			p, err = project.Read(configFile)
			if err != nil {
				return err
			}
		}
		name = p.Resolve(project.Tree, idFlag)
	}

	t, err := evoltree.ReadFile(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Stdout(), "id\tparent\tlength\tterms\n")
	for _, n := range t.Nodes() {
		parent := "-"
		if n.Parent != nil {
			parent = strconv.Itoa(n.Parent.ID)
		}
		length := "-"
		if n.Length >= 0 {
			length = strconv.FormatFloat(n.Length, 'f', 6, 64)
		}
		fmt.Fprintf(c.Stdout(), "%d\t%s\t%s\t%s\n", n.ID, parent, length, strings.Join(n.Terms(), ","))
	}
	return nil
}
