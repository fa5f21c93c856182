package render

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/threadline/pkg/feed"
)

var (
	colorAuthor = lipgloss.Color("36")  // Teal - authors
	colorTitle  = lipgloss.Color("36")  // Teal - feed title
	colorSep    = lipgloss.Color("240") // Dim gray - separators
)

// textStyles holds the lipgloss styles applied to each line segment.
// The zero value renders everything unstyled.
type textStyles struct {
	title  lipgloss.Style
	author lipgloss.Style
	sep    lipgloss.Style
}

func stylesFor(style string) textStyles {
	if style != StyleColor {
		return textStyles{}
	}
	return textStyles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		author: lipgloss.NewStyle().Bold(true).Foreground(colorAuthor),
		sep:    lipgloss.NewStyle().Foreground(colorSep),
	}
}

// Text renders the thread as indented lines, one record per line:
//
//	ada: hello
//	  bob: hi
//	    eve: yo
//
// Each nesting level indents by two spaces. Record bodies are collapsed
// onto a single line. With Options.MaxDepth set, deeper entries are shown
// at the capped indentation; with Options.Width set, lines are truncated
// to fit.
func Text(f *feed.Feed, entries []feed.Entry, opts Options) []byte {
	st := stylesFor(opts.Style)
	var buf bytes.Buffer

	if f != nil && f.Title != "" {
		buf.WriteString(st.title.Render(f.Title))
		buf.WriteString("\n\n")
	}

	for _, e := range entries {
		depth := e.Depth
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			depth = opts.MaxDepth
		}
		indent := strings.Repeat("  ", depth-1)

		author := e.Item.DisplayAuthor()
		body := collapseSpace(e.Item.Body)
		if opts.Width > 0 {
			body = truncate(body, opts.Width-utf8.RuneCountInString(indent+author)-2)
		}

		buf.WriteString(indent)
		buf.WriteString(st.author.Render(author))
		buf.WriteString(st.sep.Render(":"))
		if body != "" {
			buf.WriteString(" ")
			buf.WriteString(body)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// collapseSpace flattens a body onto one line.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to max runes, ending with an ellipsis. A max of
// zero or less leaves room for nothing; the ellipsis alone is returned.
func truncate(s string, max int) string {
	if max <= 0 {
		if s == "" {
			return ""
		}
		return "…"
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
