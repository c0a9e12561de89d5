// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package forms implements the interactive terminal wizard used when creating
// projects. It asks for a template when none was chosen and then for every
// variable the template declares that was not supplied on the command line.
//
// Variable defaults are computed from the answers given so far, so a derived
// default like the package name reflects the project name just entered.
// Answers are validated with the same expressions used when resolving
// variables non interactively.
package forms

//go:generate mockgen -source forms.go -destination mock_test.go -package forms -typed

import (
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/choria-io/devkit/catalog"
	"github.com/choria-io/devkit/internal/validator"
)

// surveyor abstracts the survey library for testability.
type surveyor interface {
	AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error
}

type defaultSurveyor struct{}

func (d *defaultSurveyor) AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

type processOption func(*processor)

func withSurveyor(s surveyor) processOption {
	return func(p *processor) {
		p.surveyor = s
	}
}

func withIsTerminal(f func() bool) processOption {
	return func(p *processor) {
		p.isTerminal = f
	}
}

func withOutput(w io.Writer) processOption {
	return func(p *processor) {
		p.output = w
	}
}

// Result is the outcome of a completed wizard
type Result struct {
	Template  catalog.Name
	Variables map[string]string
}

type processor struct {
	surveyor   surveyor
	isTerminal func() bool
	output     io.Writer
}

func newProcessor(opts ...processOption) (*processor, error) {
	proc := &processor{
		surveyor:   &defaultSurveyor{},
		isTerminal: isTerminal,
		output:     os.Stdout,
	}

	for _, o := range opts {
		o(proc)
	}

	if !proc.isTerminal() {
		return nil, fmt.Errorf("can only process forms on a valid terminal")
	}

	return proc, nil
}

// Process runs the project creation wizard. When template is empty the user
// picks one from the catalog. Variables in supplied are kept as given and not
// asked for again.
func Process(template string, supplied map[string]string, opts ...processOption) (*Result, error) {
	proc, err := newProcessor(opts...)
	if err != nil {
		return nil, err
	}

	if template == "" {
		name, err := proc.askTemplate()
		if err != nil {
			return nil, err
		}
		template = string(name)
	}

	t, err := catalog.Lookup(template)
	if err != nil {
		return nil, err
	}

	intro, err := renderTemplate("{bold}Creating a {{ .name }} project:{/bold} {{ .description }}", map[string]any{
		"name":        t.Name,
		"description": t.Description,
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(proc.output, intro)

	vars, err := proc.askVariables(t, supplied)
	if err != nil {
		return nil, err
	}

	return &Result{Template: t.Name, Variables: vars}, nil
}

// AskTemplate presents the catalog and returns the chosen template
func AskTemplate(opts ...processOption) (catalog.Name, error) {
	proc, err := newProcessor(opts...)
	if err != nil {
		return "", err
	}

	return proc.askTemplate()
}

// AskVariables asks for every variable of t that is not in supplied and
// returns supplied merged with the answers
func AskVariables(t catalog.Template, supplied map[string]string, opts ...processOption) (map[string]string, error) {
	proc, err := newProcessor(opts...)
	if err != nil {
		return nil, err
	}

	return proc.askVariables(t, supplied)
}

// Confirm asks a yes or no question
func Confirm(prompt string, dflt bool, opts ...processOption) (bool, error) {
	proc, err := newProcessor(opts...)
	if err != nil {
		return false, err
	}

	return proc.askConfirmation(prompt, dflt)
}

func (p *processor) askTemplate() (catalog.Name, error) {
	all := catalog.All()
	descriptions := make(map[string]string, len(all))
	for _, t := range all {
		descriptions[string(t.Name)] = t.Description
	}

	var ans string
	err := p.surveyor.AskOne(&survey.Select{
		Message: "Template",
		Options: catalog.NameStrings(),
		Default: string(catalog.Basic),
		Description: func(value string, _ int) string {
			return descriptions[value]
		},
	}, &ans, survey.WithValidator(survey.Required))
	if err != nil {
		return "", err
	}

	return catalog.Name(ans), nil
}

func (p *processor) askVariables(t catalog.Template, supplied map[string]string) (map[string]string, error) {
	answers := make(map[string]string, len(t.Variables))
	for k, v := range supplied {
		answers[k] = v
	}

	for _, v := range t.Variables {
		if _, ok := answers[v.Name]; ok {
			continue
		}

		ans, err := p.askVariable(v, answers)
		if err != nil {
			return nil, err
		}

		if ans == "" && !v.Required {
			continue
		}

		answers[v.Name] = ans
	}

	return answers, nil
}

func (p *processor) askVariable(v catalog.Variable, answers map[string]string) (string, error) {
	dflt, _, err := v.DefaultValue(answers)
	if err != nil {
		return "", err
	}

	if v.Description != "" {
		d, err := renderTemplate(fmt.Sprintf("{cyan}%s{/cyan}", v.Description), answers)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(p.output)
		fmt.Fprintln(p.output, d)
	}

	var opts []survey.AskOpt
	if v.Required {
		opts = append(opts, survey.WithValidator(survey.MinLength(1)))
	}
	if v.Validation != "" {
		opts = append(opts, survey.WithValidator(validator.SurveyValidator(v.Validation, v.Required)))
	}

	var ans string
	err = p.surveyor.AskOne(&survey.Input{
		Message: v.Name,
		Help:    v.Help,
		Default: dflt,
	}, &ans, opts...)
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (p *processor) askConfirmation(prompt string, dflt bool) (bool, error) {
	ans := dflt

	err := p.surveyor.AskOne(&survey.Confirm{
		Message: prompt,
		Default: dflt,
	}, &ans)

	return ans, err
}
