// Native PNG rendering. Mirrors the SVG output using Go's image packages.

package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/automata-diagram/pkg/render"
)

// supersample is the oversize factor; the image is drawn large and
// downsampled with CatmullRom.
const supersample = 4

// MaxPNGSide caps each side of an exported PNG, in pixels.
const MaxPNGSide = 8192

// ErrCanvasTooLarge is returned when the nodes are spread too far apart for
// a PNG export.
var ErrCanvasTooLarge = errors.New("diagram too large for png export")

var (
	colorWhite    = color.RGBA{255, 255, 255, 255}
	colorInk      = color.RGBA{26, 25, 43, 255}    // #1a192b
	colorEdge     = color.RGBA{177, 177, 183, 255} // #b1b1b7
	colorSelected = color.RGBA{85, 85, 85, 255}    // #555
	colorText     = color.RGBA{51, 51, 51, 255}    // #333
)

// renderContext holds the target image and scaled drawing parameters.
type renderContext struct {
	img       *image.RGBA
	scale     float64
	lineWidth float64
	face      font.Face
}

func newRenderContext(img *image.RGBA, scale, fontSize int) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(fontSize * scale),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return &renderContext{
		img:       img,
		scale:     float64(scale),
		lineWidth: float64(scale) * 1.5,
		face:      face,
	}, nil
}

// RenderPNG renders a projected frame to PNG.
func RenderPNG(f render.Frame, w io.Writer, opts Options) error {
	if opts.FontSize == 0 {
		opts.FontSize = 14
	}
	c := layout(f, opts)
	if !(c.width <= MaxPNGSide && c.height <= MaxPNGSide) {
		return fmt.Errorf("%.0fx%.0f exceeds %dx%d: %w", c.width, c.height, MaxPNGSide, MaxPNGSide, ErrCanvasTooLarge)
	}
	width, height := int(math.Ceil(c.width)), int(math.Ceil(c.height))

	large := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	draw.Draw(large, large.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	ctx, err := newRenderContext(large, supersample, opts.FontSize-2)
	if err != nil {
		return err
	}
	s := float64(supersample)
	at := func(x, y float64) (float64, float64) { return c.x(x) * s, c.y(y) * s }

	if opts.Title != "" {
		drawTextCentered(ctx, int(c.width*s/2), int(18*s), opts.Title, colorInk)
	}

	for _, e := range f.Edges {
		stroke := colorEdge
		if e.Selected {
			stroke = colorSelected
		}
		pts := make([]render.Point, len(e.Path))
		for i, p := range e.Path {
			pts[i].X, pts[i].Y = at(p.X, p.Y)
		}
		drawSplineArrow(ctx, pts, stroke)
		if e.Label != "" {
			x, y := at(e.View.X, e.View.Y)
			drawTextCentered(ctx, int(x), int(y), e.Label, colorText)
		}
	}

	nw, nh := opts.Render.NodeWidth*s, opts.Render.NodeHeight*s
	for _, n := range f.Nodes {
		x, y := at(n.Position.X, n.Position.Y)
		thick := ctx.lineWidth
		if n.Selected {
			thick *= 2
		}
		drawRect(ctx, x, y, nw, nh, colorWhite, colorInk, thick)
		drawTextCentered(ctx, int(x+nw/2), int(y+nh/2), n.Data.Label, colorInk)
	}

	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

// drawRect fills a box and strokes its outline.
func drawRect(ctx *renderContext, x, y, w, h float64, fill, stroke color.Color, thickness float64) {
	draw.Draw(ctx.img, image.Rect(int(x), int(y), int(x+w), int(y+h)), image.NewUniform(fill), image.Point{}, draw.Src)
	half := thickness / 2
	for t := -half; t <= half; t += 0.5 {
		for px := x; px <= x+w; px++ {
			ctx.img.Set(int(px), int(y+t), stroke)
			ctx.img.Set(int(px), int(y+h+t), stroke)
		}
		for py := y; py <= y+h; py++ {
			ctx.img.Set(int(x+t), int(py), stroke)
			ctx.img.Set(int(x+w+t), int(py), stroke)
		}
	}
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}
	half := ctx.lineWidth / 2

	dist := math.Hypot(dx, dy)
	if dist < 1 {
		for ty := -half; ty <= half; ty++ {
			for tx := -half; tx <= half; tx++ {
				ctx.img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist
	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -half; offset <= half; offset += 0.5 {
			ctx.img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawSplineArrow samples a path and finishes it with a filled arrowhead
// aligned to the end tangent.
func drawSplineArrow(ctx *renderContext, pts []render.Point, c color.Color) {
	if len(pts) < 2 {
		return
	}
	const steps = 100.0
	prev := render.PointAt(pts, 0)
	for i := 1.0; i <= steps; i++ {
		p := render.PointAt(pts, i/steps)
		drawLine(ctx, prev.X, prev.Y, p.X, p.Y, c)
		prev = p
	}

	end := pts[len(pts)-1]
	tan := render.TangentAt(pts, 1)
	dist := math.Hypot(tan.X, tan.Y)
	if dist < 1e-9 {
		return
	}
	nx, ny := tan.X/dist, tan.Y/dist

	arrowLen := 8.0 * ctx.scale
	arrowWidth := 4.0 * ctx.scale
	ax1 := end.X - nx*arrowLen + ny*arrowWidth
	ay1 := end.Y - ny*arrowLen - nx*arrowWidth
	ax2 := end.X - nx*arrowLen - ny*arrowWidth
	ay2 := end.Y - ny*arrowLen + nx*arrowWidth

	for t := 0.0; t <= 1.0; t += 0.05 {
		drawLine(ctx, end.X, end.Y, ax1+(ax2-ax1)*t, ay1+(ay2-ay1)*t, c)
	}
}

// drawTextCentered draws text centred on (x, y).
func drawTextCentered(ctx *renderContext, x, y int, text string, c color.Color) {
	width := font.MeasureString(ctx.face, text).Ceil()
	ascent := ctx.face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: ctx.face,
		Dot: fixed.Point26_6{
			X: fixed.I(x - width/2),
			Y: fixed.I(y + int(float64(ascent)*0.35)),
		},
	}
	d.DrawString(text)
}
