package render

import (
	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"
)

// Visual styles for text output.
const (
	StylePlain = "plain"
	StyleColor = "color"
)

// ValidStyles is the set of supported text styles.
var ValidStyles = map[string]bool{
	StylePlain: true,
	StyleColor: true,
}

// Options configures rendering across all formats. Formats ignore the
// fields that do not apply to them.
type Options struct {
	// Style selects plain or colored text output.
	Style string

	// MaxDepth caps the displayed nesting depth. Entries deeper than
	// this are shown at MaxDepth; zero means no cap. Threading depth is
	// unaffected, only the indentation is clamped.
	MaxDepth int

	// Width truncates text lines to this many cells. Zero means no
	// truncation.
	Width int
}

// Render produces an artifact for the given format. The entries must come
// from threading the feed; the feed itself contributes the title and is
// never consulted for structure.
func Render(f *feed.Feed, entries []feed.Entry, format string, opts Options) ([]byte, error) {
	switch format {
	case feed.FormatText:
		return Text(f, entries, opts), nil
	case feed.FormatJSON:
		return JSON(f, entries)
	case feed.FormatDOT:
		return []byte(ToDOT(f, entries)), nil
	case feed.FormatSVG:
		return RenderSVG(ToDOT(f, entries))
	case feed.FormatPNG:
		return RenderPNG(ToDOT(f, entries))
	}
	return nil, apperrors.New(apperrors.ErrCodeInvalidFormat,
		"unknown format: %q (supported: text, json, dot, svg, png)", format)
}
