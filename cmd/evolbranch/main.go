// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// EvolBranch is a tool to test
// different dN/dS ratios in a lineage
// using codeml.
package main

import (
	"log"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/cmd/evolbranch/cfg"
	"github.com/js-arias/evolbranch/cmd/evolbranch/groupcmd"
	"github.com/js-arias/evolbranch/cmd/evolbranch/models"
	"github.com/js-arias/evolbranch/cmd/evolbranch/nodes"
	"github.com/js-arias/evolbranch/cmd/evolbranch/testcmd"
)

var app = &command.Command{
	Usage: "evolbranch <command> [<argument>...]",
	Short: "a tool to test lineage specific dN/dS ratios",
}

func init() {
	app.Add(cfg.Command)
	app.Add(groupcmd.Command)
	app.Add(models.Command)
	app.Add(nodes.Command)
	app.Add(testcmd.Command)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	app.Main()
}
