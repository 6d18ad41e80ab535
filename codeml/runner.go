// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package codeml

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// A Runner runs codeml
// in a working directory
// that contains a control file named CtlFile.
type Runner interface {
	Run(ctx context.Context, dir string) error
}

// Exec is a Runner that executes a codeml binary.
type Exec struct {
	// Path of the codeml executable.
	// If empty, "codeml" is searched in the PATH.
	Path string
}

// maxErrOutput is the maximum number of bytes
// of the program output reported in an error.
const maxErrOutput = 2048

// Run executes codeml in the indicated directory.
func (e Exec) Run(ctx context.Context, dir string) error {
	bin := e.Path
	if bin == "" {
		bin = "codeml"
	}

	cmd := exec.CommandContext(ctx, bin, CtlFile)
	cmd.Dir = dir
	// some codeml builds wait for a key press at the end
	cmd.Stdin = strings.NewReader("\n")

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(out.String())
		if len(msg) > maxErrOutput {
			msg = "..." + msg[len(msg)-maxErrOutput:]
		}
		if msg == "" {
			return fmt.Errorf("%w: %s: %v", ErrRun, bin, err)
		}
		return fmt.Errorf("%w: %s: %v:\n%s", ErrRun, bin, err, msg)
	}
	return nil
}
