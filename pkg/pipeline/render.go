package pipeline

import (
	"fmt"

	"github.com/matzehuels/threadline/pkg/feed"
	"github.com/matzehuels/threadline/pkg/render"
)

// RenderFromEntries renders every requested format from threaded entries.
// The feed contributes only its title; structure comes from the entries.
func RenderFromEntries(f *feed.Feed, entries []feed.Entry, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()

	ropts := render.Options{
		Style:    opts.Style,
		MaxDepth: opts.MaxDepth,
		Width:    opts.Width,
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		data, err := render.Render(f, entries, format, ropts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
