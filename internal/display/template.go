package display

import (
	"bytes"
	"log/slog"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides sprig's helpers plus the table banners.
var templateFuncs = func() template.FuncMap {
	f := sprig.TxtFuncMap()
	f["title"] = Title
	f["rule"] = Rule
	return f
}()

// NewTemplate parses a built-in template, panicking on a syntax error.
func NewTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

// Render executes t against data. Built-in templates are expected to render,
// so a failure is logged and yields an empty string.
func Render(t *template.Template, data any) string {
	var buf bytes.Buffer
	err := t.Execute(&buf, data)
	if err != nil {
		slog.Error("rendering template", "template", t.Name(), "error", err)
		return ""
	}
	return buf.String()
}

// Title centres s in a DefaultWidth line of dashes.
func Title(s string) string {
	s = " " + s + " "
	if len(s) >= DefaultWidth {
		return s
	}
	left := (DefaultWidth - len(s)) / 2
	right := DefaultWidth - len(s) - left
	return strings.Repeat("-", left) + s + strings.Repeat("-", right)
}

// Rule is a DefaultWidth line of dashes.
func Rule() string {
	return strings.Repeat("-", DefaultWidth)
}
