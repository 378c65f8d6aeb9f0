package markup

import (
	"strings"
)

const (
	esc     = "\x1b["
	Newline = "\r\n"
)

// styles maps the paired tags to their SGR parameters.
var styles = map[string]string{
	"white":   "37",
	"red":     "31",
	"green":   "32",
	"yellow":  "33",
	"cyan":    "36",
	"magenta": "35",
	"bold":    "1",
	"dim":     "2",
}

// Code returns the transport sequence for a style name, or "" if the name is not a style.
func Code(name string) string {
	if name == "reset" {
		return esc + "0m"
	}
	p, ok := styles[name]
	if !ok {
		return ""
	}
	return esc + p + "m"
}

// Translate converts a markup string into telnet output.
//
// Paired tags push a style and closing tags restore whatever styles enclose
// them. <newline> and bare \n become \r\n, <reset> emits a reset without
// touching the nesting. Anything between angle brackets that is not a known
// tag is copied through unchanged.
func Translate(s string) string {
	var b strings.Builder
	var stack []string

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '<':
			name, closing, n := parseTag(s[i:])
			if n == 0 {
				b.WriteByte(c)
				i++
				continue
			}
			i += n

			switch {
			case name == "newline":
				b.WriteString(Newline)
			case name == "reset":
				b.WriteString(Code("reset"))
			case closing:
				idx := lastIndex(stack, name)
				if idx < 0 {
					continue
				}
				stack = stack[:idx]
				b.WriteString(Code("reset"))
				for _, st := range stack {
					b.WriteString(Code(st))
				}
			default:
				stack = append(stack, name)
				b.WriteString(Code(name))
			}

		case c == '\n':
			if i == 0 || s[i-1] != '\r' {
				b.WriteByte('\r')
			}
			b.WriteByte('\n')
			i++

		default:
			b.WriteByte(c)
			i++
		}
	}

	if len(stack) > 0 {
		b.WriteString(Code("reset"))
	}

	return b.String()
}

// Strip removes every known tag, leaving plain text with \n line breaks.
func Strip(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '<' {
			name, _, n := parseTag(s[i:])
			if n > 0 {
				if name == "newline" {
					b.WriteByte('\n')
				}
				i += n
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseTag reports the tag at the start of s. n is zero when s does not start
// with a known tag.
func parseTag(s string) (name string, closing bool, n int) {
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", false, 0
	}
	name = s[1:end]
	if strings.HasPrefix(name, "/") {
		closing = true
		name = name[1:]
	}

	switch {
	case name == "newline" || name == "reset":
		if closing {
			return "", false, 0
		}
	case styles[name] == "":
		return "", false, 0
	}

	return name, closing, end + 1
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}
	return -1
}
