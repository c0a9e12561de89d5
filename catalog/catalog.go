// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the fixed set of project templates.
//
// Templates are compiled in Go values: a template is a named, ordered list of
// files whose paths and contents contain {{var}} placeholders, plus the
// variables it accepts. Adding a template means adding an entry to the catalog,
// nothing is discovered at runtime.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/choria-io/devkit/internal/sprig"
	"github.com/choria-io/devkit/internal/validator"
)

// Name identifies a template
type Name string

const (
	Basic Name = "basic"
	Web   Name = "web"
	CLI   Name = "cli"
	Lib   Name = "lib"
)

// ErrUnknownTemplate is wrapped by UnknownTemplateError
var ErrUnknownTemplate = errors.New("unknown template")

// UnknownTemplateError is returned when looking up a template that is not in the catalog
type UnknownTemplateError struct {
	Name string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q, valid templates are %s", e.Name, strings.Join(NameStrings(), ", "))
}

func (e *UnknownTemplateError) Unwrap() error {
	return ErrUnknownTemplate
}

// FileSpec describes one file a template produces
type FileSpec struct {
	// Path is the slash separated destination relative to the project root, may hold placeholders
	Path string
	// Content is the file body with placeholders
	Content string
	// Executable marks files that should be made runnable after writing
	Executable bool
}

// Variable describes a value a template accepts
type Variable struct {
	Name        string
	Description string
	// Help explains the accepted values when validation fails
	Help     string
	Required bool
	// Default is either a literal value or a text/template expression over earlier variables
	Default string
	// Validation is an expr-lang expression over value that must be true
	Validation string
}

// IsDerived reports whether the default is computed from other variables
func (v Variable) IsDerived() bool {
	return strings.Contains(v.Default, "{{")
}

// DefaultValue computes the default given the variables resolved so far. The
// boolean is false when there is no default or it references unset variables.
func (v Variable) DefaultValue(vars map[string]string) (string, bool, error) {
	if v.Default == "" {
		return "", false, nil
	}

	if !v.IsDerived() {
		return v.Default, true, nil
	}

	t, err := template.New(v.Name).Option("missingkey=error").Funcs(sprig.TxtFuncMap()).Parse(v.Default)
	if err != nil {
		return "", false, fmt.Errorf("invalid default for %s: %w", v.Name, err)
	}

	buf := bytes.NewBuffer([]byte{})
	err = t.Execute(buf, vars)
	if err != nil {
		return "", false, nil
	}

	return buf.String(), true, nil
}

// Validate checks value against the variable validation expression
func (v Variable) Validate(value string) error {
	if v.Validation == "" {
		return nil
	}

	ok, err := validator.ValidateValue(value, v.Validation)
	if err != nil {
		return err
	}

	if !ok {
		if v.Help != "" {
			return fmt.Errorf("%q is not a valid %s: %s", value, v.Name, v.Help)
		}
		return fmt.Errorf("%q is not a valid %s", value, v.Name)
	}

	return nil
}

// Template is a named project skeleton
type Template struct {
	Name        Name
	Description string
	Files       []FileSpec
	Variables   []Variable
}

// Required lists the names of required variables in declaration order
func (t Template) Required() []string {
	var res []string
	for _, v := range t.Variables {
		if v.Required {
			res = append(res, v.Name)
		}
	}

	return res
}

// Defaults returns the literal defaults, derived defaults are not included
func (t Template) Defaults() map[string]string {
	res := map[string]string{}
	for _, v := range t.Variables {
		if v.Default != "" && !v.IsDerived() {
			res[v.Name] = v.Default
		}
	}

	return res
}

// Variable finds a declared variable by name
func (t Template) Variable(name string) (Variable, bool) {
	for _, v := range t.Variables {
		if v.Name == name {
			return v, true
		}
	}

	return Variable{}, false
}

// Names lists all template names in catalog order
func Names() []Name {
	res := make([]Name, len(templates))
	for i, t := range templates {
		res[i] = t.Name
	}

	return res
}

// NameStrings lists all template names as strings, useful for enum flags and prompts
func NameStrings() []string {
	res := make([]string, len(templates))
	for i, t := range templates {
		res[i] = string(t.Name)
	}

	return res
}

// clone copies t so callers cannot change the catalog through the returned slices
func (t Template) clone() Template {
	t.Files = slices.Clone(t.Files)
	t.Variables = slices.Clone(t.Variables)

	return t
}

// All returns a copy of every template in catalog order
func All() []Template {
	res := make([]Template, len(templates))
	for i, t := range templates {
		res[i] = t.clone()
	}

	return res
}

// Lookup finds a template by name
func Lookup(name string) (Template, error) {
	for _, t := range templates {
		if string(t.Name) == name {
			return t.clone(), nil
		}
	}

	return Template{}, &UnknownTemplateError{Name: name}
}
