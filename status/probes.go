// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/choria-io/devkit/internal/tools"
)

// DefaultTimeout bounds tool resolution and interpreter probes
const DefaultTimeout = 5 * time.Second

var (
	errTimeout  = errors.New("timed out")
	errNotFound = errors.New("not found")
)

// virtual environment directories, searched in order
var venvDirs = []string{".venv", "venv"}

// LookPathFunc resolves a program for a project, returning its path
type LookPathFunc func(ctx context.Context, root string, program string) (string, error)

// RunFunc runs a program and returns its combined output
type RunFunc func(ctx context.Context, program string, args ...string) ([]byte, error)

// Options configures the built in probes
type Options struct {
	// Tools supplies the commands whose programs are looked up, defaults to the built in table
	Tools *tools.Table
	// Timeout bounds each program lookup and interpreter invocation
	Timeout time.Duration
	// LookPath resolves programs, defaults to the project virtual environment then PATH
	LookPath LookPathFunc
	// Run invokes programs, defaults to os/exec
	Run RunFunc
}

// DefaultProbes builds the standard probe list in report order
func DefaultProbes(opts Options) []Probe {
	if opts.Tools == nil {
		opts.Tools = tools.New(nil)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LookPath == nil {
		opts.LookPath = LookPath
	}
	if opts.Run == nil {
		opts.Run = runProgram
	}

	tool := func(label string, command string, severity Severity) Probe {
		return &ToolProbe{Label: label, Command: command, Tools: opts.Tools, Severity: severity, Timeout: opts.Timeout, LookPath: opts.LookPath}
	}

	return []Probe{
		&RootProbe{},
		&FileProbe{Label: "project manifest", Paths: []string{"pyproject.toml", "setup.py", "setup.cfg"}, Severity: SeverityCritical},
		&FileProbe{Label: "dependency lock", Paths: []string{"uv.lock", "poetry.lock", "pdm.lock", "Pipfile.lock", "requirements.txt"}, Severity: SeverityWarning},
		&FileProbe{Label: "readme", Paths: []string{"README.md", "README.rst", "README.txt", "README"}, Severity: SeverityWarning},
		&FileProbe{Label: "gitignore", Paths: []string{".gitignore"}, Severity: SeverityInfo},
		&FileProbe{Label: "source directory", Paths: []string{"src"}, Dir: true, Severity: SeverityWarning},
		&FileProbe{Label: "tests directory", Paths: []string{"tests"}, Dir: true, Severity: SeverityWarning},
		&FileProbe{Label: "virtual environment", Paths: venvDirs, Dir: true, Severity: SeverityInfo},
		&InterpreterProbe{Program: "python3", Severity: SeverityWarning, Timeout: opts.Timeout, LookPath: opts.LookPath, Run: opts.Run},
		tool("formatter", tools.Format, SeverityWarning),
		tool("linter", tools.Lint, SeverityWarning),
		tool("type checker", tools.TypeCheck, SeverityWarning),
		tool("test runner", tools.Test, SeverityCritical),
	}
}

// RootProbe checks the project directory itself exists
type RootProbe struct{}

func (p *RootProbe) Name() string { return "project directory" }

func (p *RootProbe) Check(_ context.Context, root string) Finding {
	st, err := os.Stat(root)
	switch {
	case os.IsNotExist(err):
		return absentFinding(p.Name(), SeverityCritical, fmt.Sprintf("%s does not exist", root))
	case err != nil:
		return errorFinding(p.Name(), err)
	case !st.IsDir():
		return absentFinding(p.Name(), SeverityCritical, fmt.Sprintf("%s is not a directory", root))
	}

	return presentFinding(p.Name(), root)
}

// FileProbe looks for the first of several files or directories in the project
type FileProbe struct {
	Label string
	Paths []string
	// Dir looks for directories rather than files
	Dir bool
	// Severity applies when none of the paths exist
	Severity Severity
}

func (p *FileProbe) Name() string { return p.Label }

func (p *FileProbe) Check(_ context.Context, root string) Finding {
	for _, candidate := range p.Paths {
		st, err := os.Stat(filepath.Join(root, filepath.FromSlash(candidate)))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errorFinding(p.Name(), err)
		}
		if st.IsDir() != p.Dir {
			continue
		}

		return presentFinding(p.Name(), candidate)
	}

	return absentFinding(p.Name(), p.Severity, fmt.Sprintf("none of %s found", strings.Join(p.Paths, ", ")))
}

// ToolProbe checks the program behind a development command can be resolved
type ToolProbe struct {
	Label    string
	Command  string
	Tools    *tools.Table
	Severity Severity
	Timeout  time.Duration
	LookPath LookPathFunc
}

func (p *ToolProbe) Name() string { return p.Label }

func (p *ToolProbe) Check(ctx context.Context, root string) Finding {
	if _, ok := p.Tools.Line(p.Command); !ok {
		return absentFinding(p.Name(), p.Severity, fmt.Sprintf("no %s command configured", p.Command))
	}

	program, err := p.Tools.Executable(p.Command)
	if err != nil {
		return errorFinding(p.Name(), err)
	}

	path, err := bounded(ctx, p.Timeout, func(ctx context.Context) (string, error) {
		return p.LookPath(ctx, root, program)
	})
	switch {
	case errors.Is(err, errTimeout):
		return errorFinding(p.Name(), fmt.Errorf("resolving %s: %w", program, err))
	case err != nil:
		return absentFinding(p.Name(), p.Severity, fmt.Sprintf("%s not found", program))
	}

	return presentFinding(p.Name(), path)
}

// InterpreterProbe reports the version of the interpreter the project would use
type InterpreterProbe struct {
	Program  string
	Severity Severity
	Timeout  time.Duration
	LookPath LookPathFunc
	Run      RunFunc
}

func (p *InterpreterProbe) Name() string { return "python interpreter" }

func (p *InterpreterProbe) Check(ctx context.Context, root string) Finding {
	version, err := bounded(ctx, p.Timeout, func(ctx context.Context) (string, error) {
		path, err := p.LookPath(ctx, root, p.Program)
		if err != nil {
			return "", errNotFound
		}

		out, err := p.Run(ctx, path, "--version")
		if err != nil {
			return "", fmt.Errorf("%s --version failed: %w", path, err)
		}

		return strings.TrimSpace(string(out)), nil
	})
	switch {
	case errors.Is(err, errNotFound):
		return absentFinding(p.Name(), p.Severity, fmt.Sprintf("%s not found", p.Program))
	case err != nil:
		return errorFinding(p.Name(), err)
	}

	return presentFinding(p.Name(), version)
}

// bounded runs f with a deadline, returning errTimeout when it does not finish in time
func bounded(ctx context.Context, timeout time.Duration, f func(context.Context) (string, error)) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val string
		err error
	}

	done := make(chan result, 1)
	go func() {
		val, err := f(ctx)
		done <- result{val, err}
	}()

	select {
	case res := <-done:
		return res.val, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w after %v: %v", errTimeout, timeout, ctx.Err())
	}
}

// LookPath finds program in the project virtual environment, falling back to PATH
func LookPath(_ context.Context, root string, program string) (string, error) {
	bin := "bin"
	candidates := []string{program}
	if runtime.GOOS == "windows" {
		bin = "Scripts"
		candidates = []string{program + ".exe", program}
	}

	for _, venv := range venvDirs {
		for _, c := range candidates {
			path := filepath.Join(root, venv, bin, c)
			st, err := os.Stat(path)
			if err != nil || !st.Mode().IsRegular() {
				continue
			}
			if runtime.GOOS != "windows" && st.Mode().Perm()&0111 == 0 {
				continue
			}

			return path, nil
		}
	}

	return exec.LookPath(program)
}

func runProgram(ctx context.Context, program string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, program, args...).CombinedOutput()
}
