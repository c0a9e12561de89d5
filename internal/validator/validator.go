// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package validator evaluates expr-lang boolean expressions used to validate
// template variables and interactive answers.
package validator

import (
	"fmt"
	"regexp"
	"unicode"

	"github.com/AlecAivazis/survey/v2"
	"github.com/Masterminds/semver/v3"
	"github.com/expr-lang/expr"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var pythonKeywords = map[string]struct{}{
	"False": {}, "None": {}, "True": {}, "and": {}, "as": {}, "assert": {}, "async": {},
	"await": {}, "break": {}, "class": {}, "continue": {}, "def": {}, "del": {}, "elif": {},
	"else": {}, "except": {}, "finally": {}, "for": {}, "from": {}, "global": {}, "if": {},
	"import": {}, "in": {}, "is": {}, "lambda": {}, "nonlocal": {}, "not": {}, "or": {},
	"pass": {}, "raise": {}, "return": {}, "try": {}, "while": {}, "with": {}, "yield": {},
}

// IsSemver reports whether v is a strict semantic version like 1.2.3
func IsSemver(v string) bool {
	_, err := semver.StrictNewVersion(v)
	return err == nil
}

// IsIdentifier reports whether v can be used as a Python module or package name
func IsIdentifier(v string) bool {
	if !identifierRe.MatchString(v) {
		return false
	}

	_, kw := pythonKeywords[v]

	return !kw
}

func stringFunc(name string, f func(string) bool) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		s, ok := params[0].(string)
		if !ok {
			return false, fmt.Errorf("%s requires a string argument", name)
		}

		return f(s), nil
	}, new(func(string) bool))
}

// IsPlainText reports whether v can be placed inside a quoted TOML or Python string
// without escaping, that is it holds no quotes, backslashes or control characters
func IsPlainText(v string) bool {
	for _, r := range v {
		if r == '"' || r == '\\' || unicode.IsControl(r) {
			return false
		}
	}

	return true
}

// Validate evaluates expression against env, the expression must return a boolean
func Validate(env map[string]any, expression string) (bool, error) {
	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AsBool(),
		stringFunc("isSemver", IsSemver),
		stringFunc("isIdentifier", IsIdentifier),
		stringFunc("isPlainText", IsPlainText),
	)
	if err != nil {
		return false, fmt.Errorf("invalid validation expression %q: %w", expression, err)
	}

	res, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}

	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("validation expression %q did not return a boolean", expression)
	}

	return ok, nil
}

// ValidateValue evaluates expression with v available as value
func ValidateValue(v any, expression string) (bool, error) {
	return Validate(map[string]any{"value": v}, expression)
}

// SurveyValidator adapts expression to a survey validator, empty answers pass when not required
func SurveyValidator(expression string, required bool) survey.Validator {
	return func(ans any) error {
		if s, ok := ans.(string); ok && s == "" && !required {
			return nil
		}

		ok, err := ValidateValue(ans, expression)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("validation using %q did not pass", expression)
		}

		return nil
	}
}
