// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package groupcmd implements a command to print
// the species group labels.
package groupcmd

import (
	"fmt"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/groups"
	"github.com/js-arias/evolbranch/project"
)

var Command = &command.Command{
	Usage: "groups [--config <file>]",
	Short: "print the species group labels",
	Long: `
Command groups prints the valid species group labels, and the node IDs marked
for each label. Labels are case insensitive.

By default, the built-in species groups are printed. If the flag --config is
set, and the configuration file defines a table of species groups, the groups
of that table will be printed.

A label not in the list marks the default node IDs.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var configFile string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&configFile, "config", "", "")
}

func run(c *command.Command, args []string) error {
	tb := groups.Builtin()
	if configFile != "" {
		p, err := project.Read(configFile)
		if err != nil {
			return err
		}
		if name := p.Get(project.Groups); name != "" {
			tb, err = groups.ReadFile(name)
			if err != nil {
				return err
			}
		}
	}

	for _, l := range tb.Labels() {
		m, _ := tb.Marks(l)
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", l, strings.Join(m, ","))
	}
	fmt.Fprintf(c.Stdout(), "(default)\t%s\n", strings.Join(groups.DefaultMarks, ","))
	return nil
}
