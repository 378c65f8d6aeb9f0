package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth. Line breaks, wrapped or already in
// text, come out as the <newline> tag so they translate to CRLF.
func Wrap(text string) string {
	wrapped := wordwrap.String(strings.ReplaceAll(text, "\r\n", "\n"), DefaultWidth)
	return strings.ReplaceAll(wrapped, "\n", "<newline>")
}
