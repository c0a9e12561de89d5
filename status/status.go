// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package status inspects a project directory and derives a health report.
//
// A report is built from independent probes, each observing one optional
// signal such as a manifest file or an installed tool. Probes never fail the
// run: problems inside a probe are reported as critical error findings. The
// probe list is always passed in explicitly so callers and tests control it.
package status

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Kind is the outcome of a probe
type Kind string

const (
	KindPresent Kind = "present"
	KindAbsent  Kind = "absent"
	KindError   Kind = "error"
)

// Severity is how much a finding affects the project health
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Health is the overall classification of a report
type Health string

const (
	Healthy   Health = "healthy"
	Degraded  Health = "degraded"
	Unhealthy Health = "unhealthy"
)

// DefaultConcurrency is how many probes Run executes at once unless configured
const DefaultConcurrency = 4

// Finding is the result of a single probe
type Finding struct {
	Probe    string   `json:"probe"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Report is the ordered findings for a project and their overall classification
type Report struct {
	Root     string    `json:"root"`
	Findings []Finding `json:"findings"`
	Overall  Health    `json:"overall"`
}

// Probe observes one signal in a project, it must not modify the project
type Probe interface {
	Name() string
	Check(ctx context.Context, root string) Finding
}

// Aggregate classifies findings: unhealthy when any is critical, degraded when any is a warning, healthy otherwise
func Aggregate(root string, findings []Finding) *Report {
	report := &Report{
		Root:     root,
		Findings: findings,
		Overall:  Healthy,
	}

	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			report.Overall = Unhealthy
		case SeverityWarning:
			if report.Overall == Healthy {
				report.Overall = Degraded
			}
		}
	}

	return report
}

// Option configures Run
type Option func(*runner)

// WithConcurrency sets how many probes run at once, 1 runs them sequentially and 0 or less removes the limit
func WithConcurrency(n int) Option {
	return func(r *runner) {
		r.concurrency = n
	}
}

type runner struct {
	concurrency int
}

// Run executes probes against root and aggregates their findings in probe order
func Run(ctx context.Context, root string, probes []Probe, opts ...Option) *Report {
	r := &runner{concurrency: DefaultConcurrency}
	for _, o := range opts {
		o(r)
	}

	findings := make([]Finding, len(probes))

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i, p := range probes {
		g.Go(func() error {
			findings[i] = check(ctx, root, p)
			return nil
		})
	}

	// probes never return errors
	_ = g.Wait()

	return Aggregate(root, findings)
}

func check(ctx context.Context, root string, p Probe) (f Finding) {
	defer func() {
		if r := recover(); r != nil {
			f = errorFinding(p.Name(), fmt.Errorf("probe panicked: %v", r))
		}
	}()

	f = p.Check(ctx, root)
	if f.Probe == "" {
		f.Probe = p.Name()
	}

	return f
}

func presentFinding(probe string, detail string) Finding {
	return Finding{Probe: probe, Kind: KindPresent, Severity: SeverityInfo, Detail: detail}
}

func absentFinding(probe string, severity Severity, detail string) Finding {
	return Finding{Probe: probe, Kind: KindAbsent, Severity: severity, Detail: detail}
}

func errorFinding(probe string, err error) Finding {
	return Finding{Probe: probe, Kind: KindError, Severity: SeverityCritical, Detail: err.Error()}
}
