package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/threadline/pkg/feed"
)

// labelBodyRunes caps how much of a record body appears in a node label.
const labelBodyRunes = 40

// ToDOT converts a thread to Graphviz DOT format. Each record becomes a
// node labeled with its author and the start of its body; reply edges
// point from parent to child. Only threaded entries appear: records the
// threading dropped are absent here too.
//
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
func ToDOT(f *feed.Feed, entries []feed.Entry) string {
	var buf bytes.Buffer
	buf.WriteString("digraph thread {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if f != nil && f.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", f.Title)
	}
	buf.WriteString("\n")

	included := make(map[string]bool, len(entries))
	for _, e := range entries {
		included[e.Item.ID] = true
	}

	for _, e := range entries {
		fmt.Fprintf(&buf, "  %q [label=%q];\n", e.Item.ID, nodeLabel(e.Item))
	}

	buf.WriteString("\n")
	for _, e := range entries {
		if e.Item.HasParent() && included[e.Item.Parent] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Item.Parent, e.Item.ID)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(r feed.Record) string {
	label := r.DisplayAuthor()
	if body := collapseSpace(r.Body); body != "" {
		label += "\n" + truncate(body, labelBodyRunes)
	}
	return label
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the viewBox starts at
// the origin and the width/height match it. Graphviz emits pt-based sizes
// with offset viewBoxes that scale badly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
