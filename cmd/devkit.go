// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/choria-io/devkit"
	"github.com/choria-io/devkit/catalog"
	"github.com/choria-io/devkit/forms"
	"github.com/choria-io/devkit/internal/tools"
	"github.com/choria-io/devkit/status"
	"github.com/choria-io/fisk"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"
)

const defaultConfigFile = ".devkit.yaml"

var (
	configFile string
	debug      bool
	version    string

	initName        string
	initTemplate    string
	initVars        map[string]string
	initDirectory   string
	initInteractive bool
	initDryRun      bool

	statusDir  string
	statusJSON bool

	runCommand string
	runDir     string
	runVerbose bool
)

func main() {
	initVars = map[string]string{}

	app := fisk.New("devkit", "Creates and checks Python projects")
	app.Version(version)

	app.Help = `
Create Python projects from a fixed set of templates and report on the health
of existing projects.

Configuration is read from .devkit.yaml in the current directory when present.
`
	app.Flag("config", "Configuration file to use").PlaceHolder("FILE").StringVar(&configFile)
	app.Flag("debug", "Enables debug logging").UnNegatableBoolVar(&debug)

	create := app.Command("init", "Creates a new project from a template").Action(initAction)
	create.HelpLong(`
Templates hold a pyproject.toml, README, .gitignore, a src layout and tests, the
web, cli and lib templates add files for their kind of project.

Variables are set using --var, the project name can also be given as an argument.
Nothing is written unless every file can be created, existing files with content
are never overwritten.
`)
	create.Arg("name", "The project name").StringVar(&initName)
	create.Flag("template", "The template to use").Short('t').PlaceHolder("TEMPLATE").EnumVar(&initTemplate, catalog.NameStrings()...)
	create.Flag("var", "Sets a template variable").PlaceHolder("KEY=VALUE").StringMapVar(&initVars)
	create.Flag("directory", "The directory to create the project in, defaults to the project name").Short('d').PlaceHolder("DIR").StringVar(&initDirectory)
	create.Flag("interactive", "Asks for the template and unset variables").Short('i').UnNegatableBoolVar(&initInteractive)
	create.Flag("dry-run", "Shows what would be written without writing anything").UnNegatableBoolVar(&initDryRun)

	stat := app.Command("status", "Reports on the health of a project").Action(statusAction)
	stat.Arg("dir", "The project directory").Default(".").StringVar(&statusDir)
	stat.Flag("json", "Produce JSON output").UnNegatableBoolVar(&statusJSON)

	app.Command("templates", "Lists the available templates").Action(templatesAction)

	run := app.Command("run", "Runs a development command like test, lint, format, typecheck or clean").Action(runAction)
	run.Arg("command", "The command to run").Required().StringVar(&runCommand)
	run.Arg("dir", "The project directory").Default(".").StringVar(&runDir)
	run.Flag("verbose", "Shows the command and its output as it runs").Short('v').UnNegatableBoolVar(&runVerbose)

	app.MustParseWithUsage(os.Args[1:])
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func loadConfig(log *logrus.Logger) (*devkit.Config, error) {
	file := configFile
	if file == "" {
		_, err := os.Stat(defaultConfigFile)
		if errors.Is(err, os.ErrNotExist) {
			return &devkit.Config{}, nil
		}
		file = defaultConfigFile
	}

	log.Debugf("Loading configuration from %s", file)

	return devkit.LoadConfig(file)
}

func newDevKit() (*devkit.DevKit, error) {
	log := newLogger()

	cfg, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	dk, err := devkit.New(*cfg)
	if err != nil {
		return nil, err
	}
	dk.Logger(log)

	return dk, nil
}

func initAction(_ *fisk.ParseContext) error {
	dk, err := newDevKit()
	if err != nil {
		return err
	}

	vars := map[string]string{}
	for k, v := range initVars {
		vars[k] = v
	}
	if initName != "" {
		vars["name"] = initName
	}

	tmpl := initTemplate
	if initInteractive {
		res, err := forms.Process(tmpl, vars)
		if err != nil {
			return err
		}
		tmpl = string(res.Template)
		vars = res.Variables
	} else if tmpl == "" {
		tmpl = string(catalog.Basic)
	}

	dir := initDirectory
	if dir == "" {
		dir = vars["name"]
	}
	if dir == "" {
		return fmt.Errorf("a project name or --directory is required")
	}

	req := devkit.InitRequest{Template: tmpl, Variables: vars, Root: dir}

	if initDryRun {
		changes, err := dk.Preview(req)
		if err != nil {
			return err
		}

		conflicts := 0
		for _, c := range changes {
			line := fmt.Sprintf("%s: %s", c.Action, filepath.Join(dir, c.Path))
			if c.Action == devkit.FileActionConflict {
				conflicts++
				line = text.Colors{text.FgRed}.Sprintf("%s (%s)", line, c.Reason)
			}
			fmt.Println(line)
		}

		if conflicts > 0 {
			return fmt.Errorf("%d files conflict with existing content", conflicts)
		}

		return nil
	}

	if initInteractive {
		ok, err := forms.Confirm(fmt.Sprintf("Create a %s project in %s", tmpl, dir), true)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	plan, err := dk.Init(ctx, req)
	if err != nil {
		return err
	}

	for _, f := range plan.Files {
		fmt.Printf("%s: %s\n", devkit.FileActionAdd, filepath.Join(dir, f.Path))
	}

	fmt.Println()
	fmt.Printf("Created %s project in %s, next steps:\n\n", plan.Template, dir)
	fmt.Printf("    cd %s\n", shellquote.Join(dir))
	fmt.Println("    uv sync --dev")
	fmt.Println("    devkit run test")

	return nil
}

func statusAction(_ *fisk.ParseContext) error {
	dk, err := newDevKit()
	if err != nil {
		return err
	}

	root, err := filepath.Abs(statusDir)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	report := dk.Status(ctx, root)

	if statusJSON {
		j, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(j))
	} else {
		showReport(report)
	}

	code := exitCode(report)
	cancel()

	if code != 0 {
		os.Exit(code)
	}

	return nil
}

// exitCode is the process exit status for a report, only unhealthy projects fail
func exitCode(report *status.Report) int {
	if report.Overall == status.Unhealthy {
		return 1
	}

	return 0
}

func showReport(report *status.Report) {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.SetTitle("Project %s", report.Root)
	tbl.AppendHeader(table.Row{"Check", "Status", "Detail"})

	for _, f := range report.Findings {
		tbl.AppendRow(table.Row{f.Probe, findingStatus(f), f.Detail})
	}

	fmt.Println(tbl.Render())
	fmt.Println()

	switch report.Overall {
	case status.Healthy:
		fmt.Println(text.Colors{text.FgGreen}.Sprint("Project is healthy"))
	case status.Degraded:
		fmt.Println(text.Colors{text.FgYellow}.Sprint("Project is degraded"))
	default:
		fmt.Println(text.Colors{text.FgRed}.Sprint("Project is unhealthy"))
	}
}

func findingStatus(f status.Finding) string {
	switch {
	case f.Kind == status.KindPresent:
		return text.Colors{text.FgGreen}.Sprint("ok")
	case f.Kind == status.KindError:
		return text.Colors{text.FgRed}.Sprint("error")
	case f.Severity == status.SeverityCritical:
		return text.Colors{text.FgRed}.Sprint("missing")
	case f.Severity == status.SeverityWarning:
		return text.Colors{text.FgYellow}.Sprint("missing")
	default:
		return "missing"
	}
}

func templatesAction(_ *fisk.ParseContext) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	tbl.AppendHeader(table.Row{"Template", "Description", "Files", "Variables"})

	for _, t := range catalog.All() {
		var vars []string
		for _, v := range t.Variables {
			switch {
			case v.Default != "" && !v.IsDerived():
				vars = append(vars, fmt.Sprintf("%s (%s)", v.Name, v.Default))
			case v.Required && v.Default == "":
				vars = append(vars, text.Colors{text.Bold}.Sprint(v.Name))
			default:
				vars = append(vars, v.Name)
			}
		}

		tbl.AppendRow(table.Row{t.Name, t.Description, len(t.Files), strings.Join(vars, "\n")})
		tbl.AppendSeparator()
	}

	fmt.Println(tbl.Render())

	return nil
}

func runAction(_ *fisk.ParseContext) error {
	dk, err := newDevKit()
	if err != nil {
		return err
	}

	if runVerbose {
		msg, err := runningMessage(dk.Tools(), runCommand)
		if err != nil {
			return err
		}
		fmt.Println(text.Colors{text.FgBlue}.Sprint(msg))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	req := devkit.RunRequest{Command: runCommand, Dir: runDir}
	stderr := bytes.NewBuffer(nil)
	if runVerbose {
		req.Stdout = os.Stdout
		req.Stderr = os.Stderr
	} else {
		req.Stderr = stderr
	}

	err = dk.RunTool(ctx, req)
	if err != nil {
		fmt.Println(text.Colors{text.FgRed}.Sprintf("%s failed", runCommand))
		if stderr.Len() > 0 {
			fmt.Fprint(os.Stderr, stderr.String())
		}
		return err
	}

	fmt.Println(text.Colors{text.FgGreen}.Sprintf("%s completed successfully", runCommand))

	return nil
}

func runningMessage(t *tools.Table, command string) (string, error) {
	line, ok := t.Line(command)
	if !ok {
		return "", fmt.Errorf("unknown command %q, available commands: %s", command, strings.Join(t.Names(), ", "))
	}

	return fmt.Sprintf("Running: %s", line), nil
}
