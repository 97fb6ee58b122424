package tui

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

//nolint:gochecknoglobals // Compiled once.
var (
	codePattern   = regexp.MustCompile("```([^`]+)```")
	boldPattern   = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicPattern = regexp.MustCompile(`_([^_\n]+)_`)
	strikePattern = regexp.MustCompile(`~([^~\n]+)~`)
)

// Sanitize removes terminal escape sequences and control characters from
// user content. Newlines and tabs survive; everything else below U+0020,
// DEL and the C1 range are dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// SingleLine sanitizes s and collapses all whitespace runs to one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(Sanitize(s)), " ")
}

// FormatInline sanitizes s and renders its inline markup: *bold*, _italic_,
// ~strike~ and ```code```. Code spans are not formatted further.
func FormatInline(s string) string {
	s = Sanitize(s)

	var b strings.Builder
	last := 0
	for _, loc := range codePattern.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(formatSpans(s[last:loc[0]]))
		b.WriteString(CodeStyle.Render(s[loc[2]:loc[3]]))
		last = loc[1]
	}
	b.WriteString(formatSpans(s[last:]))
	return b.String()
}

func formatSpans(s string) string {
	s = applyStyle(boldPattern, BoldStyle, s)
	s = applyStyle(italicPattern, ItalicStyle, s)
	return applyStyle(strikePattern, StrikeStyle, s)
}

func applyStyle(re *regexp.Regexp, style lipgloss.Style, s string) string {
	return re.ReplaceAllStringFunc(s, func(m string) string {
		return style.Render(re.FindStringSubmatch(m)[1])
	})
}
