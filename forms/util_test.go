// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package forms

import (
	"github.com/jedib0t/go-pretty/v6/text"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func red(s string) string   { return text.Colors{text.FgRed}.Sprint(s) }
func blue(s string) string  { return text.Colors{text.FgBlue}.Sprint(s) }
func green(s string) string { return text.Colors{text.FgGreen}.Sprint(s) }

var _ = Describe("Util", func() {
	DescribeTable("colorMarkup",
		func(input string, expected string) {
			Expect(colorMarkup(input)).To(Equal(expected))
		},
		Entry("plain text", "Hello World", "Hello World"),
		Entry("single tag", "{red}Hello{/red} World", red("Hello")+" World"),
		Entry("multiple tags", "{red}Hello{/red} {blue}World{/blue}", red("Hello")+" "+blue("World")),
		Entry("nested tags", "{red}Outer {green}Inner{/green} Text{/red}", red("Outer "+green("Inner")+" Text")),
		Entry("upper case names", "{RED}Hello{/RED} {Blue}World{/Blue}", red("Hello")+" "+blue("World")),
		Entry("high intensity", "{hired}Error{/hired}", text.Colors{text.FgHiRed}.Sprint("Error")),
		Entry("bold", "{bold}Strong{/bold}", text.Colors{text.Bold}.Sprint("Strong")),
		Entry("unknown names lose their tags", "{invalid}Text{/invalid}", "Text"),
		Entry("mixed known and unknown", "{red}A{/red} {nope}B{/nope}", red("A")+" B"),
		Entry("empty content", "{red}{/red}", red("")),
		Entry("unclosed tags", "{red}Hello", "{red}Hello"),
		Entry("literal braces", "dict = {}", "dict = {}"),
		Entry("python format fields", `f"{name}"`, `f"{name}"`),
	)

	It("Should keep all text of deeply nested tags", func() {
		result := colorMarkup("{red}Start {blue}Middle {green}End{/green} More{/blue} Final{/red}")
		for _, s := range []string{"Start", "Middle", "End", "More", "Final"} {
			Expect(result).To(ContainSubstring(s))
		}
		Expect(result).ToNot(ContainSubstring("{"))
	})

	Describe("renderTemplate", func() {
		It("Should render with sprig functions and colors", func() {
			res, err := renderTemplate("{red}{{ .name | upper }}{/red}", map[string]string{"name": "app"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(Equal(red("APP")))
		})

		It("Should not offer nondeterministic functions", func() {
			_, err := renderTemplate("{{ now }}", nil)
			Expect(err).To(HaveOccurred())
		})
	})
})
