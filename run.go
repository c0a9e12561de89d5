// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/choria-io/devkit/status"
)

// RunRequest describes a development command to run
type RunRequest struct {
	// Command is a name from the tool table like test or lint
	Command string
	// Dir is the project root the command runs in
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// RunTool runs a command from the tool table in the project directory,
// preferring programs installed in the project virtual environment.
func (d *DevKit) RunTool(ctx context.Context, req RunRequest) error {
	parts, err := d.tools.Command(req.Command)
	if err != nil {
		return err
	}

	dir := req.Dir
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}

	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	program, err := status.LookPath(ctx, dir, parts[0])
	if err != nil {
		return fmt.Errorf("cannot run %s: %w", req.Command, err)
	}

	d.debugf("Running %s command %q in %s", req.Command, append([]string{program}, parts[1:]...), dir)

	cmd := exec.CommandContext(ctx, program, parts[1:]...)
	cmd.Dir = dir
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %w", req.Command, err)
	}

	d.infof("Completed %s in %s", req.Command, dir)

	return nil
}
