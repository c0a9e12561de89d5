// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package tools holds the development commands the run command dispatches to and
// the status probes look for.
package tools

import (
	"fmt"
	"sort"

	"github.com/kballard/go-shellquote"
)

// Well known command names
const (
	Test      = "test"
	Lint      = "lint"
	Format    = "format"
	TypeCheck = "typecheck"
	Clean     = "clean"
)

var defaultCommands = map[string]string{
	Test:      "pytest",
	Lint:      "black --check src/ tests/",
	Format:    "black src/ tests/",
	TypeCheck: "mypy src/",
	Clean:     "rm -rf __pycache__ .pytest_cache .mypy_cache",
}

// Table maps command names to shell-quoted command lines
type Table struct {
	commands map[string]string
}

// New creates a table from the defaults with overrides applied, an empty override removes the command
func New(overrides map[string]string) *Table {
	t := &Table{commands: map[string]string{}}
	for k, v := range defaultCommands {
		t.commands[k] = v
	}

	for k, v := range overrides {
		if v == "" {
			delete(t.commands, k)
			continue
		}
		t.commands[k] = v
	}

	return t
}

// Names lists the known command names sorted alphabetically
func (t *Table) Names() []string {
	var names []string
	for k := range t.commands {
		names = append(names, k)
	}
	sort.Strings(names)

	return names
}

// Line returns the unparsed command line for name
func (t *Table) Line(name string) (string, bool) {
	l, ok := t.commands[name]
	return l, ok
}

// Command splits the command line for name into the program and its arguments
func (t *Table) Command(name string) ([]string, error) {
	line, ok := t.commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command %q, available commands: %v", name, t.Names())
	}

	parts, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("invalid command line for %s: %w", name, err)
	}

	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command line for %s", name)
	}

	return parts, nil
}

// Executable returns the program the command for name invokes
func (t *Table) Executable(name string) (string, error) {
	parts, err := t.Command(name)
	if err != nil {
		return "", err
	}

	return parts[0], nil
}
