package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/ha1tch/automata-diagram/pkg/render"
)

// GenerateSVG renders a projected frame as a standalone SVG document.
func GenerateSVG(f render.Frame, opts Options) string {
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	c := layout(f, opts)
	w, h := c.width, c.height
	nw, nh := opts.Render.NodeWidth, opts.Render.NodeHeight

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
  <marker id="arrowclosed" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">
    <polygon points="0 0, 10 3.5, 0 7" fill="#b1b1b7"/>
  </marker>
  <marker id="arrow" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">
    <polyline points="0 0, 10 3.5, 0 7" fill="none" stroke="#b1b1b7"/>
  </marker>
</defs>
<style>
  .state { fill: white; stroke: #1a192b; stroke-width: 1; }
  .state-selected { fill: white; stroke: #1a192b; stroke-width: 2; }
  .state-label { font-family: sans-serif; font-size: %dpx; text-anchor: middle; dominant-baseline: middle; }
  .transition { fill: none; stroke: #b1b1b7; stroke-width: 1.5; }
  .transition-selected { fill: none; stroke: #555; stroke-width: 2; }
  .trans-label { font-family: sans-serif; font-size: %dpx; fill: #333; text-anchor: middle; }
  .title { font-family: sans-serif; font-size: %dpx; font-weight: bold; text-anchor: middle; }
</style>
`, w, h, w, h, opts.FontSize-2, opts.FontSize-2, opts.FontSize+4))

	sb.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="white"/>
`, w, h))

	if opts.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.0f" y="25" class="title">%s</text>
`, w/2, html.EscapeString(opts.Title)))
	}

	// Edges first so nodes cover their ends.
	for _, e := range f.Edges {
		class := "transition"
		if e.Selected {
			class = "transition-selected"
		}
		sb.WriteString(fmt.Sprintf(`<path id="%s" d="%s" class="%s" marker-end="url(#%s)"/>
`, html.EscapeString(e.ID), svgPath(c, e.Path), class, e.MarkerEnd.Type))
		if e.Label != "" {
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="trans-label">%s</text>
`, c.x(e.View.X), c.y(e.View.Y), html.EscapeString(e.Label)))
		}
	}

	for _, n := range f.Nodes {
		class := "state"
		if n.Selected {
			class = "state-selected"
		}
		x, y := c.x(n.Position.X), c.y(n.Position.Y)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" class="%s"/>
`, x, y, nw, nh, class))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" class="state-label">%s</text>
`, x+nw/2, y+nh/2, html.EscapeString(n.Data.Label)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// svgPath writes a path of chained cubic segments. Paths shorter than a
// cubic are drawn as polylines.
func svgPath(c canvas, pts []render.Point) string {
	if len(pts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("M%.1f,%.1f", c.x(pts[0].X), c.y(pts[0].Y)))
	if len(pts) < 4 {
		for _, p := range pts[1:] {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", c.x(p.X), c.y(p.Y)))
		}
		return sb.String()
	}
	for i := 1; i+2 < len(pts); i += 3 {
		sb.WriteString(fmt.Sprintf(" C%.1f,%.1f %.1f,%.1f %.1f,%.1f",
			c.x(pts[i].X), c.y(pts[i].Y),
			c.x(pts[i+1].X), c.y(pts[i+1].Y),
			c.x(pts[i+2].X), c.y(pts[i+2].Y)))
	}
	return sb.String()
}
