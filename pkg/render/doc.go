// Package render turns threaded entries into display artifacts.
//
// # Overview
//
// Every renderer takes the same inputs: the feed (for its title) and the
// entry list produced by threading. Five formats are supported:
//
//   - text: indented lines for terminals, plain or colored
//   - json: records with depths, for downstream tooling
//   - dot: Graphviz source for the reply graph
//   - svg, png: the DOT graph rendered through Graphviz
//
// # Usage
//
// Render through the format dispatcher:
//
//	entries := feed.Thread(f, feed.OrderOldest)
//	out, err := render.Render(f, entries, feed.FormatText, render.Options{
//	    Style: render.StyleColor,
//	})
//
// Or call a renderer directly:
//
//	dot := render.ToDOT(f, entries)
//	svg, err := render.RenderSVG(dot)
//
// # Display Depth
//
// Options.MaxDepth caps indentation, not structure. A reply chain deeper
// than the cap still threads at its true depth; only the printed
// indentation stops growing. This keeps deep threads readable in narrow
// terminals without changing what is shown.
package render
