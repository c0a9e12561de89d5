// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"strings"
)

var templates = []Template{
	{
		Name:        Basic,
		Description: "A minimal Python project with a src layout and tests",
		Variables:   commonVariables("A Python project"),
		Files:       basicFiles(pyproject(nil, nil, "")),
	},
	{
		Name:        Web,
		Description: "A FastAPI web service",
		Variables:   commonVariables("A Python web service"),
		Files:       append(basicFiles(pyproject(
			[]string{"fastapi>=0.110.0", "uvicorn>=0.29.0"},
			[]string{"httpx>=0.27.0"},
			"",
		)),
			FileSpec{Path: "src/{{package}}/app.py", Content: webApp},
			FileSpec{Path: "scripts/serve.sh", Content: webServe, Executable: true},
			FileSpec{Path: "tests/test_app.py", Content: webTest},
		),
	},
	{
		Name:        CLI,
		Description: "A command line application built with click",
		Variables:   commonVariables("A Python command line tool"),
		Files:       append(basicFiles(pyproject(
			[]string{"click>=8.0.0"},
			nil,
			"[project.scripts]\n\"{{name}}\" = \"{{package}}.cli:main\"\n",
		)),
			FileSpec{Path: "src/{{package}}/cli.py", Content: cliMain},
			FileSpec{Path: "src/{{package}}/__main__.py", Content: cliEntryPoint, Executable: true},
		),
	},
	{
		Name:        Lib,
		Description: "A typed, distributable library",
		Variables:   commonVariables("A Python library"),
		Files:       append(basicFiles(pyproject(nil, nil, "")),
			FileSpec{Path: "src/{{package}}/py.typed", Content: ""},
		),
	},
}

func commonVariables(description string) []Variable {
	return []Variable{
		{
			Name:        "name",
			Description: "Project name",
			Help:        "letters, digits, dots, dashes and underscores starting with a letter",
			Required:    true,
			Validation:  `value matches "^[A-Za-z][A-Za-z0-9._-]*$"`,
		},
		{
			Name:        "package",
			Description: "Python package name",
			Help:        "a lower case Python identifier",
			Required:    true,
			Default:     `{{ .name | lower | replace "-" "_" | replace "." "_" }}`,
			Validation:  "isIdentifier(value) && value == lower(value)",
		},
		{
			Name:        "description",
			Description: "Short description of the project",
			Help:        "text without quotes, backslashes or line breaks",
			Required:    true,
			Default:     description,
			Validation:  "isPlainText(value)",
		},
		{
			Name:        "version",
			Description: "Initial version",
			Help:        "a semantic version like 0.1.0",
			Required:    true,
			Default:     "0.1.0",
			Validation:  "isSemver(value)",
		},
		{
			Name:        "python",
			Description: "Supported Python versions",
			Help:        "a version specifier without quotes, backslashes or line breaks",
			Required:    true,
			Default:     ">=3.9",
			Validation:  "isPlainText(value)",
		},
	}
}

func basicFiles(pyproject string) []FileSpec {
	return []FileSpec{
		{Path: "pyproject.toml", Content: pyproject},
		{Path: "README.md", Content: readme},
		{Path: ".gitignore", Content: gitignore},
		{Path: "src/{{package}}/__init__.py", Content: packageInit},
		{Path: "tests/__init__.py", Content: ""},
		{Path: "tests/test_basic.py", Content: basicTest},
	}
}

func tomlList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}

	var b strings.Builder
	b.WriteString("[\n")
	for _, i := range items {
		b.WriteString("    \"" + i + "\",\n")
	}
	b.WriteString("]")

	return b.String()
}

func pyproject(deps []string, devDeps []string, extra string) string {
	dev := append([]string{"pytest>=7.0.0", "black>=23.0.0", "isort>=5.12.0", "mypy>=1.0.0"}, devDeps...)

	var b strings.Builder
	b.WriteString(`[project]
name = "{{name}}"
version = "{{version}}"
description = "{{description}}"
readme = "README.md"
requires-python = "{{python}}"
dependencies = ` + tomlList(deps) + `

[build-system]
requires = ["hatchling"]
build-backend = "hatchling.build"

[tool.hatch.build.targets.wheel]
packages = ["src/{{package}}"]

`)
	if extra != "" {
		b.WriteString(extra)
		b.WriteString("\n")
	}
	b.WriteString("[tool.uv]\ndev-dependencies = " + tomlList(dev) + "\n")

	return b.String()
}

const readme = `# {{name}}

{{description}}

## Development

    uv sync --dev
    uv run pytest
`

const gitignore = `__pycache__/
*.py[cod]
*.egg-info/
.venv/
venv/
dist/
build/
.pytest_cache/
.mypy_cache/
.coverage
`

const packageInit = `"""Main package for {{name}}."""

__version__ = "{{version}}"
`

const basicTest = `"""Basic tests."""

import {{package}}


def test_version():
    """The package exposes its version."""
    assert {{package}}.__version__ == "{{version}}"
`

const cliMain = `"""Command-line interface for {{name}}."""

import click


@click.group()
@click.version_option()
def main():
    """{{name}} command-line tool."""


@main.command()
def hello():
    """Say hello."""
    click.echo("Hello from {{name}}!")


if __name__ == "__main__":
    main()
`

const cliEntryPoint = `#!/usr/bin/env python3
"""Entry point for python -m {{package}}."""

from {{package}}.cli import main

if __name__ == "__main__":
    main()
`

const webApp = `"""HTTP service for {{name}}."""

from fastapi import FastAPI

app = FastAPI(title="{{name}}", version="{{version}}")


@app.get("/health")
def health() -> dict:
    """Report service health."""
    return {"status": "ok"}
`

const webServe = `#!/bin/sh
set -e

exec uvicorn {{package}}.app:app --reload "$@"
`

const webTest = `"""HTTP endpoint tests."""

from fastapi.testclient import TestClient

from {{package}}.app import app


def test_health():
    """The health endpoint reports ok."""
    client = TestClient(app)
    response = client.get("/health")
    assert response.status_code == 200
    assert response.json() == {"status": "ok"}
`
