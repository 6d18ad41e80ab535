// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package models implements a command to print
// the codeml models.
package models

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/codeml"
)

var Command = &command.Command{
	Usage: "models [--ctl <model>]",
	Short: "print the available codeml models",
	Long: `
Command models prints the name, type, and description of the codeml models
known by EvolBranch. Models that use marked branches are indicated with an
asterisk.

If the flag --ctl is set, the control file of the indicated model will be
printed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var ctlFlag string

func setFlags(c *command.Command) {
	c.Flags().StringVar(&ctlFlag, "ctl", "", "")
}

func run(c *command.Command, args []string) error {
	if ctlFlag != "" {
		m, err := codeml.Get(ctlFlag)
		if err != nil {
			return err
		}
		return codeml.ModelControl(m).Write(c.Stdout())
	}

	for _, name := range codeml.Models() {
		m, _ := codeml.Get(name)
		mark := ""
		if m.AllowMark {
			mark = "*"
		}
		fmt.Fprintf(c.Stdout(), "%s%s\t%s\t%s\n", m.Name, mark, m.Type, m.Desc)
	}
	return nil
}
