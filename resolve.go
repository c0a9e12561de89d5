// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"sort"

	"github.com/choria-io/devkit/catalog"
)

// Variables maps variable names to their values
type Variables map[string]string

// Resolve merges supplied values over the template defaults and verifies every
// required variable is set and every value is valid.
//
// Supplied values always win over defaults. Derived defaults are computed in
// declaration order after the overlay, so they see supplied values. Missing and
// invalid variables are reported all at once.
func Resolve(t catalog.Template, supplied map[string]string) (Variables, error) {
	vars := Variables{}
	for k, v := range t.Defaults() {
		vars[k] = v
	}
	for k, v := range supplied {
		vars[k] = v
	}

	for _, v := range t.Variables {
		if !v.IsDerived() {
			continue
		}
		if _, ok := vars[v.Name]; ok {
			continue
		}

		val, ok, err := v.DefaultValue(vars)
		if err != nil {
			return nil, &InvalidVariableError{Template: t.Name, Problems: []string{err.Error()}}
		}
		if ok {
			vars[v.Name] = val
		}
	}

	var missing []string
	for _, name := range t.Required() {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingVariableError{Template: t.Name, Names: missing}
	}

	var problems []string
	for _, v := range t.Variables {
		val, ok := vars[v.Name]
		if !ok {
			continue
		}

		err := v.Validate(val)
		if err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return nil, &InvalidVariableError{Template: t.Name, Problems: problems}
	}

	return vars, nil
}
