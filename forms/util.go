// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package forms

import (
	"bytes"
	"os"
	"strings"
	"text/template"

	"github.com/choria-io/devkit/internal/sprig"
	"github.com/jedib0t/go-pretty/v6/text"
	terminal "golang.org/x/term"
)

var colorMap = map[string]text.Color{
	"bold":      text.Bold,
	"black":     text.FgBlack,
	"red":       text.FgRed,
	"green":     text.FgGreen,
	"yellow":    text.FgYellow,
	"blue":      text.FgBlue,
	"magenta":   text.FgMagenta,
	"cyan":      text.FgCyan,
	"white":     text.FgWhite,
	"hiblack":   text.FgHiBlack,
	"hired":     text.FgHiRed,
	"higreen":   text.FgHiGreen,
	"hiyellow":  text.FgHiYellow,
	"hiblue":    text.FgHiBlue,
	"himagenta": text.FgHiMagenta,
	"hicyan":    text.FgHiCyan,
	"hiwhite":   text.FgHiWhite,
}

func isTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd())) && terminal.IsTerminal(int(os.Stdout.Fd()))
}

// renderTemplate executes tmpl with the deterministic sprig functions and applies color markup
func renderTemplate(tmpl string, data any) (string, error) {
	t, err := template.New("form").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", err
	}

	out := bytes.NewBuffer([]byte{})

	err = t.Execute(out, data)
	if err != nil {
		return "", err
	}

	return colorMarkup(out.String()), nil
}

// colorMarkup replaces tags like {red}text{/red} with terminal colors,
// innermost tags first so nesting works. Unknown colors lose their tags.
func colorMarkup(input string) string {
	result := input

	for {
		next, changed := replaceInnermostTag(result)
		if !changed {
			return result
		}
		result = next
	}
}

func replaceInnermostTag(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}

		end := strings.IndexByte(s[i:], '}')
		if end == -1 {
			return s, false
		}
		end += i

		name := s[i+1 : end]
		if name == "" || strings.ContainsAny(name, "/{") {
			continue
		}

		closeTag := "{/" + name + "}"
		closeStart := strings.Index(s[end+1:], closeTag)
		if closeStart == -1 {
			continue
		}
		closeStart += end + 1

		content := s[end+1 : closeStart]
		if open := strings.IndexByte(content, '{'); open != -1 && !strings.HasPrefix(content[open:], "{/") {
			continue
		}

		replacement := content
		if color, ok := colorMap[strings.ToLower(name)]; ok {
			replacement = text.Colors{color}.Sprint(content)
		}

		return s[:i] + replacement + s[closeStart+len(closeTag):], true
	}

	return s, false
}
