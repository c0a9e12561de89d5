// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package devkit

import (
	"errors"

	"github.com/choria-io/devkit/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	var basic catalog.Template

	BeforeEach(func() {
		var err error
		basic, err = catalog.Lookup("basic")
		Expect(err).ToNot(HaveOccurred())
	})

	It("Should apply defaults and derive the package name", func() {
		vars, err := Resolve(basic, map[string]string{"name": "my-app"})
		Expect(err).ToNot(HaveOccurred())
		Expect(vars).To(Equal(Variables{
			"name":        "my-app",
			"package":     "my_app",
			"description": "A Python project",
			"version":     "0.1.0",
			"python":      ">=3.9",
		}))
	})

	It("Should prefer supplied values over defaults", func() {
		vars, err := Resolve(basic, map[string]string{"name": "my-app", "package": "custom", "version": "2.0.0"})
		Expect(err).ToNot(HaveOccurred())
		Expect(vars["package"]).To(Equal("custom"))
		Expect(vars["version"]).To(Equal("2.0.0"))
	})

	It("Should not modify the supplied map", func() {
		supplied := map[string]string{"name": "my-app"}
		_, err := Resolve(basic, supplied)
		Expect(err).ToNot(HaveOccurred())
		Expect(supplied).To(Equal(map[string]string{"name": "my-app"}))
	})

	It("Should report every missing variable at once", func() {
		t := catalog.Template{
			Name: "custom",
			Variables: []catalog.Variable{
				{Name: "b", Required: true},
				{Name: "a", Required: true},
				{Name: "c", Required: true, Default: "x"},
				{Name: "d", Required: false},
			},
		}

		_, err := Resolve(t, nil)
		var mve *MissingVariableError
		Expect(errors.As(err, &mve)).To(BeTrue())
		Expect(mve.Names).To(Equal([]string{"a", "b"}))
		Expect(err).To(MatchError("template custom requires variables that are not set: a, b"))
	})

	It("Should report derived variables as missing when their inputs are missing", func() {
		_, err := Resolve(basic, nil)
		var mve *MissingVariableError
		Expect(errors.As(err, &mve)).To(BeTrue())
		Expect(mve.Names).To(Equal([]string{"name", "package"}))
	})

	It("Should not need inputs of derived defaults that are supplied", func() {
		t := catalog.Template{
			Name: "custom",
			Variables: []catalog.Variable{
				{Name: "name"},
				{Name: "package", Required: true, Default: "{{ .name | upper }}"},
			},
		}

		vars, err := Resolve(t, map[string]string{"package": "pkg"})
		Expect(err).ToNot(HaveOccurred())
		Expect(vars).To(Equal(Variables{"package": "pkg"}))
	})

	It("Should report broken derived defaults as invalid variables", func() {
		t := catalog.Template{
			Name: "custom",
			Variables: []catalog.Variable{
				{Name: "name", Required: true},
				{Name: "package", Required: true, Default: "{{ .name | nosuchfunc }}"},
			},
		}

		_, err := Resolve(t, map[string]string{"name": "app"})
		var ive *InvalidVariableError
		Expect(errors.As(err, &ive)).To(BeTrue())
		Expect(ive.Template).To(Equal(catalog.Name("custom")))
		Expect(ive.Problems).To(HaveLen(1))
		Expect(ive.Problems[0]).To(ContainSubstring("invalid default for package"))
	})

	It("Should report every invalid variable at once", func() {
		_, err := Resolve(basic, map[string]string{"name": "1-app", "version": "one"})
		var ive *InvalidVariableError
		Expect(errors.As(err, &ive)).To(BeTrue())
		Expect(ive.Problems).To(HaveLen(3))
		Expect(ive.Problems[0]).To(ContainSubstring(`"1-app" is not a valid name`))
		Expect(ive.Problems[1]).To(ContainSubstring(`"1_app" is not a valid package`))
		Expect(ive.Problems[2]).To(ContainSubstring(`"one" is not a valid version`))
	})

	DescribeTable("Rejects values that would break quoted strings",
		func(name string, value string) {
			for _, t := range catalog.All() {
				_, err := Resolve(t, map[string]string{"name": "app", name: value})
				var ive *InvalidVariableError
				Expect(errors.As(err, &ive)).To(BeTrue(), "expected %s=%q to be rejected by %s", name, value, t.Name)
				Expect(ive.Problems[0]).To(ContainSubstring("is not a valid " + name))
			}
		},
		Entry("quoted description", "description", `Say "hi"`),
		Entry("description with backslash", "description", `a\b`),
		Entry("multi line description", "description", "one\ntwo"),
		Entry("quoted python", "python", `>=3.9"`),
	)

	DescribeTable("Succeeds exactly when required variables are covered",
		func(supplied map[string]string, missing []string) {
			for _, t := range catalog.All() {
				_, err := Resolve(t, supplied)
				if missing == nil {
					Expect(err).ToNot(HaveOccurred())
					continue
				}

				var mve *MissingVariableError
				Expect(errors.As(err, &mve)).To(BeTrue())
				Expect(mve.Names).To(Equal(missing))
			}
		},
		Entry("only name", map[string]string{"name": "app"}, nil),
		Entry("name and package", map[string]string{"name": "app", "package": "pkg"}, nil),
		Entry("only package", map[string]string{"package": "pkg"}, []string{"name"}),
		Entry("unrelated", map[string]string{"author": "bob"}, []string{"name", "package"}),
		Entry("nothing", map[string]string{}, []string{"name", "package"}),
	)
})
