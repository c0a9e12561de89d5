// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"fmt"
	"strings"

	"github.com/choria-io/devkit/catalog"
)

// MissingVariableError lists every required variable that could not be resolved
type MissingVariableError struct {
	Template catalog.Name
	Names    []string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("template %s requires variables that are not set: %s", e.Template, strings.Join(e.Names, ", "))
}

// InvalidVariableError lists every variable whose value failed validation
type InvalidVariableError struct {
	Template catalog.Name
	Problems []string
}

func (e *InvalidVariableError) Error() string {
	return fmt.Sprintf("invalid variables for template %s: %s", e.Template, strings.Join(e.Problems, "; "))
}

// UnresolvedPlaceholderError indicates a placeholder that names no known variable
type UnresolvedPlaceholderError struct {
	Name string
	File string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder {{%s}} in %s", e.Name, e.File)
}

// PathEscapeError indicates a destination that is not inside the project root
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("%s is not inside the project root", e.Path)
}

// DuplicatePathError indicates two template files rendering to the same destination
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("more than one file renders to %s", e.Path)
}

// TargetConflictError indicates a destination that cannot be written without losing existing content
type TargetConflictError struct {
	Path   string
	Reason string
}

func (e *TargetConflictError) Error() string {
	return fmt.Sprintf("cannot write %s: %s", e.Path, e.Reason)
}

// IOFailureError wraps a filesystem error encountered while writing a plan
type IOFailureError struct {
	Path string
	Err  error
}

func (e *IOFailureError) Error() string {
	return fmt.Sprintf("writing %s failed: %v", e.Path, e.Err)
}

func (e *IOFailureError) Unwrap() error {
	return e.Err
}
