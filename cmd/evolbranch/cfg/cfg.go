// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cfg implements a command to create,
// edit, and print a configuration file.
package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/js-arias/command"
	"github.com/js-arias/evolbranch/project"
)

var Command = &command.Command{
	Usage: "config [--set <key>=<value>]... [--id <id>] <config-file>",
	Short: "create, edit, or print a configuration file",
	Long: `
Command config reads a configuration file and prints its settings in the
standard output. If the file does not exist, a file with the default settings
will be created.

The flag --set sets the value of a key, in the form <key>=<value>. The flag
can be repeated. An empty value resets the key to its default. See
'evolbranch help config-file' for the valid keys.

If the flag --id is defined, the path templates are printed with the
indicated run identifier.

The argument of the command is the name of the configuration file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

type setList []string

func (s *setList) String() string {
	return strings.Join(*s, " ")
}

func (s *setList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var setFlag setList
var idFlag string

func setFlags(c *command.Command) {
	c.Flags().Var(&setFlag, "set", "")
	c.Flags().StringVar(&idFlag, "id", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting configuration file")
	}

	p, err := project.Read(args[0])
	create := false
	if errors.Is(err, fs.ErrNotExist) {
		p = project.Default()
		p.SetName(args[0])
		create = true
	} else if err != nil {
		return err
	}

	def := project.Default()
	for _, s := range setFlag {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return c.UsageError(fmt.Sprintf("invalid --set value %q: expecting <key>=<value>", s))
		}
		key := project.Key(strings.ToLower(strings.TrimSpace(k)))
		if !project.IsValid(key) {
			return c.UsageError(fmt.Sprintf("unknown key %q", k))
		}
		v = strings.TrimSpace(v)
		if v == "" {
			v = def.Get(key)
		}
		p.Set(key, v)
	}
	if _, err := p.AlphaLevel(); err != nil {
		return err
	}

	if create || len(setFlag) > 0 {
		if err := p.Write(); err != nil {
			return err
		}
	}

	for _, k := range p.Keys() {
		v := p.Get(k)
		if idFlag != "" {
			v = p.Resolve(k, idFlag)
		}
		fmt.Fprintf(c.Stdout(), "%s\t%s\n", k, v)
	}
	return nil
}
