// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/choria-io/devkit/catalog"
)

// placeholderRe finds every {{...}} in template text, only {{name}} with optional inner whitespace naming a known variable is valid
var placeholderRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PlannedFile is one fully rendered file ready to be written
type PlannedFile struct {
	// Path is clean, slash separated and relative to the project root
	Path       string
	Content    []byte
	Executable bool
}

// Plan is the complete set of files a template renders to
type Plan struct {
	Template catalog.Name
	Files    []PlannedFile
}

// Paths lists the destination paths in plan order
func (p *Plan) Paths() []string {
	res := make([]string, len(p.Files))
	for i, f := range p.Files {
		res[i] = f.Path
	}

	return res
}

// Render substitutes vars into the paths and contents of every file in t
func Render(t catalog.Template, vars Variables) (*Plan, error) {
	plan := &Plan{Template: t.Name}
	seen := map[string]struct{}{}

	for _, spec := range t.Files {
		dest, err := substitute(spec.Path, vars, spec.Path)
		if err != nil {
			return nil, err
		}

		dest, err = cleanDestination(dest)
		if err != nil {
			return nil, err
		}

		if _, ok := seen[dest]; ok {
			return nil, &DuplicatePathError{Path: dest}
		}
		seen[dest] = struct{}{}

		content, err := substitute(spec.Content, vars, spec.Path)
		if err != nil {
			return nil, err
		}

		plan.Files = append(plan.Files, PlannedFile{
			Path:       dest,
			Content:    []byte(content),
			Executable: spec.Executable,
		})
	}

	return plan, nil
}

// substitute replaces placeholders in a single pass, substituted values are not scanned again
func substitute(in string, vars Variables, file string) (string, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(in, -1)
	if len(matches) == 0 {
		return in, nil
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		name := strings.TrimSpace(in[m[2]:m[3]])
		val, ok := vars[name]
		if !ok || !identifierRe.MatchString(name) {
			return "", &UnresolvedPlaceholderError{Name: name, File: file}
		}

		out.WriteString(in[last:m[0]])
		out.WriteString(val)
		last = m[1]
	}
	out.WriteString(in[last:])

	return out.String(), nil
}

func cleanDestination(p string) (string, error) {
	if p == "" || strings.Contains(p, `\`) || path.IsAbs(p) || filepath.VolumeName(filepath.FromSlash(p)) != "" {
		return "", &PathEscapeError{Path: p}
	}

	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &PathEscapeError{Path: p}
	}

	return clean, nil
}
