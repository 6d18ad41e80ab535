// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package testcmd implements a command to test
// if a lineage has a different dN/dS ratio.
package testcmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/branchtest"
	"github.com/js-arias/evolbranch/codeml"
	"github.com/js-arias/evolbranch/project"
	"github.com/js-arias/evolbranch/render"
)

var Command = &command.Command{
	Usage: `test [--config <file>]
	[--mark <ids>] [--clade <taxa>] [--alpha <value>]
	[--plot <file>] [--color <name>]
	[--cpu <number>] [--keep] <id> <species>`,
	Short: "test a lineage specific dN/dS ratio",
	Long: `
Command test reads a species tree and a codon alignment, marks the branches of
a species group, and compares a free-branch model (b_free) with a one-ratio
model (M0) using codeml.

The first argument is the run identifier, used to build the file names from
the path templates. The second argument is the species group label, used to
select the branches to mark. Use the command 'evolbranch groups' to see the
valid labels. If the label is unknown, node 1 is marked.

The alignment file name and the marked tree are printed in the standard
output. If the likelihood-ratio test is significant, the p-value is printed
followed by the message "free-branch model most likely" and the tree is drawn
as an SVG file. Otherwise the p-value is printed followed by the message
"dN/dS not significantly different between branches".

By default, the default settings are used. Use the flag --config to read the
settings from a configuration file. See 'evolbranch help config-file' for
details.

By default, the branches are selected using the species group. Use the flag
--mark to set a comma-separated list of node IDs to be marked, or the flag
--clade to mark the smallest clade that includes a comma-separated list of
terminals. Use the command 'evolbranch nodes' to see the node IDs of a tree.

By default, a result is significant if the p-value is smaller than the alpha
value of the configuration (0.05 by default). Use the flag --alpha to set a
different significance level.

If the flag --plot is defined, a bar chart of the dN/dS of each branch will be
written in the indicated file. The file format is defined by the extension
(for example, .png, .svg, or .pdf). As in the path templates, "{id}" is
replaced by the run identifier.

By default, branches in the SVG file are colored using a diverging scale
("sunset") in which dN/dS values below 1 are blue, a dN/dS of 1 is pale
yellow, and values above 1 are red. Use the flag --color to set a different
scale. Valid values are "sunset", "rainbow", "incandescent", "iridescent", and
"gray". Except for "sunset", the scales go from zero to the largest dN/dS.

By default, all available CPUs will be used to fit the models. Set --cpu flag
to use a different number of CPUs.

By default, codeml working directories are removed after the run. Use the flag
--keep to keep them.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var configFile string
var markFlag string
var cladeFlag string
var alphaFlag float64
var plotFile string
var colorFlag string
var numCPU int
var keepFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&configFile, "config", "", "")
	c.Flags().StringVar(&markFlag, "mark", "", "")
	c.Flags().StringVar(&cladeFlag, "clade", "", "")
	c.Flags().Float64Var(&alphaFlag, "alpha", 0, "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
	c.Flags().StringVar(&colorFlag, "color", "sunset", "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.NumCPU(), "")
	c.Flags().BoolVar(&keepFlag, "keep", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting run identifier")
	}
	if len(args) < 2 {
		return c.UsageError("expecting species group label")
	}
	if markFlag != "" && cladeFlag != "" {
		return c.UsageError("flags --mark and --clade are mutually exclusive")
	}

	p := project.Default()
	if configFile != "" {
		var err error
		p, err = project.Read(configFile)
		if err != nil {
			return err
		}
	}
	if alphaFlag != 0 {
		p.Set(project.Alpha, strconv.FormatFloat(alphaFlag, 'g', -1, 64))
	}

	scale, err := render.ParseScale(colorFlag)
	if err != nil {
		return c.UsageError(err.Error())
	}

	bt := &branchtest.Test{
		Project: p,
		Fitter: &codeml.Fitter{
			Runner:  codeml.Exec{Path: p.Get(project.Codeml)},
			WorkDir: p.Get(project.WorkDir),
			Keep:    keepFlag,
			CPU:     numCPU,
		},
		Out:      c.Stdout(),
		Marks:    splitList(markFlag),
		Clade:    splitList(cladeFlag),
		Plot:     plotFile,
		Scale:    scale,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if _, err := bt.Run(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("run %q: %v", args[0], err)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var ls []string
	for _, v := range strings.Split(s, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		ls = append(ls, v)
	}
	return ls
}
