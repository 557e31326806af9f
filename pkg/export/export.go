// Package export writes diagrams to image and graph description formats.
// Exports are write-only: nothing here reads a diagram back.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ha1tch/automata-diagram/pkg/editing"
	"github.com/ha1tch/automata-diagram/pkg/editor"
	"github.com/ha1tch/automata-diagram/pkg/render"
)

// ErrUnknownFormat is returned for a format name that has no writer.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export target.
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// Formats lists every supported format.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatDOT, FormatSVG, FormatPNG:
		return f, nil
	case "gv":
		return FormatDOT, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Options controls all exporters.
type Options struct {
	Title    string
	Padding  float64
	FontSize int
	Render   render.Options
}

// DefaultOptions returns options matching the on-screen renderer.
func DefaultOptions() Options {
	return Options{
		Padding:  40,
		FontSize: 14,
		Render:   render.DefaultOptions(),
	}
}

// Write renders snap in format f to w. Only committed labels are exported;
// an open edit session is ignored.
func Write(w io.Writer, snap editor.Snapshot, f Format, opts Options) error {
	snap.Editing = editing.Idle{}
	switch f {
	case FormatDOT:
		_, err := io.WriteString(w, GenerateDOT(snap.Graph, opts.Title))
		return err
	case FormatSVG:
		_, err := io.WriteString(w, GenerateSVG(render.Project(snap, opts.Render), opts))
		return err
	case FormatPNG:
		return RenderPNG(render.Project(snap, opts.Render), w, opts)
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

// canvas maps frame coordinates onto a padded image.
type canvas struct {
	minX, minY float64
	width      float64
	height     float64
	pad        float64
	titleSpace float64
}

func (c canvas) x(v float64) float64 { return v - c.minX + c.pad }
func (c canvas) y(v float64) float64 { return v - c.minY + c.pad + c.titleSpace }

// layout finds the extent of a frame: every node box, every path control
// point and every label anchor.
func layout(f render.Frame, opts Options) canvas {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	for _, n := range f.Nodes {
		grow(n.Position.X, n.Position.Y)
		grow(n.Position.X+opts.Render.NodeWidth, n.Position.Y+opts.Render.NodeHeight)
	}
	for _, e := range f.Edges {
		for _, p := range e.Path {
			grow(p.X, p.Y)
		}
		grow(e.View.X, e.View.Y)
	}

	if math.IsInf(minX, 1) {
		minX, minY, maxX, maxY = 0, 0, 200, 100
	}

	c := canvas{minX: minX, minY: minY, pad: opts.Padding}
	if opts.Title != "" {
		c.titleSpace = 30
	}
	c.width = maxX - minX + 2*opts.Padding
	c.height = maxY - minY + 2*opts.Padding + c.titleSpace
	return c
}
