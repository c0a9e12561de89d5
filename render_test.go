// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"errors"
	"path"
	"strings"

	"github.com/choria-io/devkit/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func customTemplate(files ...catalog.FileSpec) catalog.Template {
	return catalog.Template{Name: "custom", Files: files}
}

var _ = Describe("Render", func() {
	It("Should substitute paths and content", func() {
		plan, err := Render(customTemplate(
			catalog.FileSpec{Path: "src/{{package}}/__init__.py", Content: "# {{ name }} {{version}}\n"},
			catalog.FileSpec{Path: "run.sh", Content: "#!/bin/sh\n", Executable: true},
		), Variables{"package": "app", "name": "App", "version": "1.0.0"})
		Expect(err).ToNot(HaveOccurred())

		Expect(plan.Template).To(Equal(catalog.Name("custom")))
		Expect(plan.Files).To(Equal([]PlannedFile{
			{Path: "src/app/__init__.py", Content: []byte("# App 1.0.0\n")},
			{Path: "run.sh", Content: []byte("#!/bin/sh\n"), Executable: true},
		}))
		Expect(plan.Paths()).To(Equal([]string{"src/app/__init__.py", "run.sh"}))
	})

	It("Should not evaluate substituted values", func() {
		plan, err := Render(customTemplate(
			catalog.FileSpec{Path: "f", Content: "{{a}}"},
		), Variables{"a": "{{b}}", "b": "nested"})
		Expect(err).ToNot(HaveOccurred())
		Expect(string(plan.Files[0].Content)).To(Equal("{{b}}"))
	})

	It("Should leave single braces alone", func() {
		plan, err := Render(customTemplate(
			catalog.FileSpec{Path: "f", Content: `{a} f"{name}" d = {} {{{name}}}`},
		), Variables{"name": "x"})
		Expect(err).ToNot(HaveOccurred())
		Expect(string(plan.Files[0].Content)).To(Equal(`{a} f"{name}" d = {} {x}`))
	})

	DescribeTable("Malformed placeholders",
		func(content string, name string) {
			_, err := Render(customTemplate(
				catalog.FileSpec{Path: "a.txt", Content: "hi " + content},
			), Variables{"name": "v"})

			var upe *UnresolvedPlaceholderError
			Expect(errors.As(err, &upe)).To(BeTrue(), "expected %q to be rejected", content)
			Expect(upe.Name).To(Equal(name))
			Expect(upe.File).To(Equal("a.txt"))
		},
		Entry("dashes", "{{ na-me }}", "na-me"),
		Entry("template syntax", "{{ .name }}", ".name"),
		Entry("empty", "{{}}", ""),
		Entry("blank", "{{   }}", ""),
		Entry("leading digit", "{{ 1x }}", "1x"),
		Entry("dotted", "{{ a.b }}", "a.b"),
	)

	It("Should fail for malformed placeholders in paths", func() {
		_, err := Render(customTemplate(catalog.FileSpec{Path: "src/{{ .package }}/x.py"}), Variables{"package": "x"})

		var upe *UnresolvedPlaceholderError
		Expect(errors.As(err, &upe)).To(BeTrue())
		Expect(upe.Name).To(Equal(".package"))
	})

	It("Should fail for unresolved placeholders in content", func() {
		_, err := Render(customTemplate(
			catalog.FileSpec{Path: "README.md", Content: "# {{nmae}}"},
		), Variables{"name": "x"})

		var upe *UnresolvedPlaceholderError
		Expect(errors.As(err, &upe)).To(BeTrue())
		Expect(upe.Name).To(Equal("nmae"))
		Expect(upe.File).To(Equal("README.md"))
		Expect(err).To(MatchError("unresolved placeholder {{nmae}} in README.md"))
	})

	It("Should fail for unresolved placeholders in paths", func() {
		_, err := Render(customTemplate(
			catalog.FileSpec{Path: "src/{{pkg}}/x.py"},
		), Variables{"package": "x"})

		var upe *UnresolvedPlaceholderError
		Expect(errors.As(err, &upe)).To(BeTrue())
		Expect(upe.Name).To(Equal("pkg"))
	})

	DescribeTable("Path escapes",
		func(dir string) {
			_, err := Render(customTemplate(
				catalog.FileSpec{Path: "{{dir}}/x.py"},
			), Variables{"dir": dir})

			var pee *PathEscapeError
			Expect(errors.As(err, &pee)).To(BeTrue(), "expected escape for %q", dir)
		},
		Entry("parent", ".."),
		Entry("deep parent", "../../etc"),
		Entry("hidden parent", "a/../../b"),
		Entry("absolute", "/etc"),
		Entry("backslash", `..\..`),
	)

	It("Should fail for paths that resolve to the root", func() {
		_, err := Render(customTemplate(catalog.FileSpec{Path: "{{f}}"}), Variables{"f": "a/.."})
		var pee *PathEscapeError
		Expect(errors.As(err, &pee)).To(BeTrue())
	})

	It("Should clean paths that stay inside the root", func() {
		plan, err := Render(customTemplate(
			catalog.FileSpec{Path: "{{dir}}/x.py"},
		), Variables{"dir": "a/./b/../c"})
		Expect(err).ToNot(HaveOccurred())
		Expect(plan.Files[0].Path).To(Equal("a/c/x.py"))
	})

	It("Should fail when files render to the same destination", func() {
		_, err := Render(customTemplate(
			catalog.FileSpec{Path: "{{a}}/x"},
			catalog.FileSpec{Path: "{{b}}/x"},
		), Variables{"a": "same", "b": "same/."})

		var dpe *DuplicatePathError
		Expect(errors.As(err, &dpe)).To(BeTrue())
		Expect(dpe.Path).To(Equal("same/x"))
	})

	It("Should render every catalog template without leftover placeholders", func() {
		for _, t := range catalog.All() {
			vars, err := Resolve(t, map[string]string{"name": "my-app"})
			Expect(err).ToNot(HaveOccurred())

			plan, err := Render(t, vars)
			Expect(err).ToNot(HaveOccurred())

			seen := map[string]bool{}
			for _, f := range plan.Files {
				Expect(placeholderRe.MatchString(f.Path)).To(BeFalse())
				Expect(placeholderRe.Match(f.Content)).To(BeFalse(), "%s in %s", f.Path, t.Name)
				Expect(path.IsAbs(f.Path)).To(BeFalse())
				Expect(strings.HasPrefix(f.Path, "..")).To(BeFalse())
				Expect(seen).ToNot(HaveKey(f.Path))
				seen[f.Path] = true
			}
		}
	})

	It("Should be deterministic", func() {
		for _, t := range catalog.All() {
			vars, err := Resolve(t, map[string]string{"name": "my-app"})
			Expect(err).ToNot(HaveOccurred())

			first, err := Render(t, vars)
			Expect(err).ToNot(HaveOccurred())
			second, err := Render(t, vars)
			Expect(err).ToNot(HaveOccurred())

			Expect(second).To(Equal(first))
		}
	})
})
