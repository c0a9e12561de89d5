// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package devkit creates Python projects from a fixed catalog of templates and
// reports on the health of existing projects.
//
// Creating a project happens in three steps: Resolve merges supplied variables
// over the template defaults, Render produces an in-memory Plan of every file
// and Apply writes the plan, undoing all of its work if any write fails.
package devkit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/choria-io/devkit/catalog"
	"github.com/choria-io/devkit/internal/tools"
	"github.com/choria-io/devkit/status"
	"gopkg.in/yaml.v3"
)

// Config configures project creation and status reporting
type Config struct {
	// Defaults are variable values applied beneath the values supplied for a project
	Defaults map[string]string `yaml:"defaults"`
	// Tools overrides the command lines used for test, lint, format, typecheck and clean
	Tools map[string]string `yaml:"tools"`
	// ProbeTimeout bounds each tool lookup performed by status
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
	// ProbeConcurrency is how many status probes run at once
	ProbeConcurrency int `yaml:"probe_concurrency"`
}

// LoadConfig reads a YAML configuration file, unknown keys are an error
func LoadConfig(path string) (*Config, error) {
	cb, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseConfig(cb)
}

// ParseConfig parses YAML configuration, an empty document is a valid empty configuration
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

type Logger interface {
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
}

// InitRequest describes a project to create
type InitRequest struct {
	Template  string
	Variables map[string]string
	Root      string
}

type DevKit struct {
	cfg   *Config
	tools *tools.Table
	log   Logger
}

// New creates a new instance
func New(cfg Config) (*DevKit, error) {
	err := validateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	return &DevKit{cfg: &cfg, tools: tools.New(cfg.Tools)}, nil
}

func validateConfig(cfg *Config) error {
	if cfg.ProbeTimeout < 0 {
		return fmt.Errorf("probe timeout cannot be negative")
	}
	if cfg.ProbeTimeout == 0 {
		cfg.ProbeTimeout = status.DefaultTimeout
	}

	if cfg.ProbeConcurrency < 0 {
		return fmt.Errorf("probe concurrency cannot be negative")
	}
	if cfg.ProbeConcurrency == 0 {
		cfg.ProbeConcurrency = status.DefaultConcurrency
	}

	for name := range cfg.Tools {
		if name == "" {
			return fmt.Errorf("tool names cannot be empty")
		}
	}

	return nil
}

// Logger configures a logger to use, no logging is done without this
func (d *DevKit) Logger(log Logger) {
	d.log = log
}

// Tools is the development command table after configuration overrides
func (d *DevKit) Tools() *tools.Table {
	return d.tools
}

func (d *DevKit) debugf(format string, v ...any) {
	if d.log != nil {
		d.log.Debugf(format, v...)
	}
}

func (d *DevKit) infof(format string, v ...any) {
	if d.log != nil {
		d.log.Infof(format, v...)
	}
}

// Plan looks up a template, resolves variables with configured defaults beneath the supplied ones and renders it
func (d *DevKit) Plan(template string, vars map[string]string) (*Plan, error) {
	t, err := catalog.Lookup(template)
	if err != nil {
		return nil, err
	}

	supplied := map[string]string{}
	for k, v := range d.cfg.Defaults {
		supplied[k] = v
	}
	for k, v := range vars {
		supplied[k] = v
	}

	resolved, err := Resolve(t, supplied)
	if err != nil {
		return nil, err
	}
	d.debugf("Resolved %d variables for template %s", len(resolved), t.Name)

	plan, err := Render(t, resolved)
	if err != nil {
		return nil, err
	}
	d.debugf("Rendered %d files from template %s", len(plan.Files), t.Name)

	return plan, nil
}

// Init creates a project. Cancelling ctx before writing starts leaves the root untouched,
// once writing starts it completes or is rolled back.
func (d *DevKit) Init(ctx context.Context, req InitRequest) (*Plan, error) {
	if req.Root == "" {
		return nil, fmt.Errorf("project root is required")
	}

	plan, err := d.Plan(req.Template, req.Variables)
	if err != nil {
		return nil, err
	}

	err = ctx.Err()
	if err != nil {
		return nil, err
	}

	err = ApplyDir(plan, req.Root)
	if err != nil {
		return nil, err
	}

	for _, f := range plan.Files {
		d.infof("Rendered %s", f.Path)
	}

	return plan, nil
}

// Preview renders a project and reports what Init would do to root without writing anything
func (d *DevKit) Preview(req InitRequest) ([]PlannedChange, error) {
	if req.Root == "" {
		return nil, fmt.Errorf("project root is required")
	}

	plan, err := d.Plan(req.Template, req.Variables)
	if err != nil {
		return nil, err
	}

	return PreviewDir(plan, req.Root)
}

// Probes builds the default status probes using the configured tools and timeout
func (d *DevKit) Probes() []status.Probe {
	return status.DefaultProbes(status.Options{
		Tools:   d.tools,
		Timeout: d.cfg.ProbeTimeout,
	})
}

// Status reports on the project in root using the default probes
func (d *DevKit) Status(ctx context.Context, root string) *status.Report {
	return d.StatusWithProbes(ctx, root, d.Probes())
}

// StatusWithProbes reports on the project in root using the given probes
func (d *DevKit) StatusWithProbes(ctx context.Context, root string, probes []status.Probe) *status.Report {
	report := status.Run(ctx, root, probes, status.WithConcurrency(d.cfg.ProbeConcurrency))
	d.debugf("Status of %s is %s after %d probes", root, report.Overall, len(report.Findings))

	return report
}
