package mesh

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// nrgbaToRGBA converts color.NRGBA to color.RGBA by premultiplying alpha
// This is needed for the canvas library which expects premultiplied RGBA
func nrgbaToRGBA(c color.NRGBA) color.RGBA {
	if c.A == 0 {
		return color.RGBA{0, 0, 0, 0}
	}
	if c.A == 255 {
		return color.RGBA{c.R, c.G, c.B, 255}
	}
	alpha32 := uint32(c.A)
	return color.RGBA{
		R: uint8((uint32(c.R) * alpha32) / 255),
		G: uint8((uint32(c.G) * alpha32) / 255),
		B: uint8((uint32(c.B) * alpha32) / 255),
		A: c.A,
	}
}

// VectorRenderer draws a top-down (XY) vector view of a global map.
// Canvas units equal coordinate units.
type VectorRenderer struct {
	Map          *GlobalMap
	Padding      float64 // Padding in coordinate units
	BeaconRadius float64
	MarkerSize   float64
	Resolution   canvas.Resolution // Resolution for PNG output
	GridSpacing  float64           // Grid line spacing in coordinate units; 0 disables
}

// NewVectorRenderer creates a vector renderer with default settings
func NewVectorRenderer(gm *GlobalMap) *VectorRenderer {
	return &VectorRenderer{
		Map:          gm,
		Padding:      200.0,
		BeaconRadius: 12.0,
		MarkerSize:   60.0,
		Resolution:   canvas.DPI(30),
		GridSpacing:  500.0,
	}
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

func (r *VectorRenderer) frame() (orb.Bound, float64, float64) {
	b, ok := ProjectedBounds(r.Map)
	if !ok {
		b = orb.Bound{}
	}
	width := (b.Right() - b.Left()) + 2*r.Padding
	height := (b.Top() - b.Bottom()) + 2*r.Padding
	return b, width, height
}

// RenderToSVG writes the map as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	b, width, height := r.frame()

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, b, width, height)

	return svgRenderer.Close()
}

// RenderToPNG writes the map as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	b, width, height := r.frame()

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, b, width, height)

	return png.Encode(w, rast)
}

// renderToCanvas holds the drawing shared by SVG and PNG output.
// Canvas coordinates have +Y up, matching the map.
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, b orb.Bound, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p Point) (float64, float64) {
		return float64(p.X) - b.Left() + r.Padding, float64(p.Y) - b.Bottom() + r.Padding
	}

	if r.GridSpacing > 0 {
		gridStyle := canvas.DefaultStyle
		gridStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		gridStyle.Stroke = canvas.Paint{Color: canvas.Gray}
		gridStyle.StrokeWidth = 2.0
		gridStyle.Dashes = []float64{10.0, 10.0}

		for x := math.Floor(b.Left()/r.GridSpacing) * r.GridSpacing; x <= b.Right(); x += r.GridSpacing {
			cx := x - b.Left() + r.Padding
			gp := &canvas.Path{}
			gp.MoveTo(cx, 0)
			gp.LineTo(cx, height)
			renderer.RenderPath(gp, gridStyle, canvas.Identity)
		}
		for y := math.Floor(b.Bottom()/r.GridSpacing) * r.GridSpacing; y <= b.Top(); y += r.GridSpacing {
			cy := y - b.Bottom() + r.Padding
			gp := &canvas.Path{}
			gp.MoveTo(0, cy)
			gp.LineTo(width, cy)
			renderer.RenderPath(gp, gridStyle, canvas.Identity)
		}
	}

	positions := r.Map.Positions()

	for id, parent := range r.Map.Parents {
		if parent < 0 {
			continue
		}
		linkStyle := canvas.DefaultStyle
		linkStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		linkStyle.Stroke = canvas.Paint{Color: nrgbaToRGBA(ColorFor(id).Link)}
		linkStyle.StrokeWidth = 8.0

		x0, y0 := toCanvas(positions[parent])
		x1, y1 := toCanvas(positions[id])
		lp := &canvas.Path{}
		lp.MoveTo(x0, y0)
		lp.LineTo(x1, y1)
		renderer.RenderPath(lp, linkStyle, canvas.Identity)
	}

	beaconStyle := canvas.DefaultStyle
	beaconStyle.Fill = canvas.Paint{Color: canvas.Black}
	beaconStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, p := range r.Map.Beacons() {
		cx, cy := toCanvas(p)
		renderer.RenderPath(canvas.Circle(r.BeaconRadius).Translate(cx, cy), beaconStyle, canvas.Identity)
	}

	for id, p := range positions {
		markerStyle := canvas.DefaultStyle
		markerStyle.Fill = canvas.Paint{Color: nrgbaToRGBA(ColorFor(id).Marker)}
		markerStyle.Stroke = canvas.Paint{Color: canvas.Black}
		markerStyle.StrokeWidth = 4.0

		cx, cy := toCanvas(p)
		half := r.MarkerSize / 2
		marker := canvas.Rectangle(r.MarkerSize, r.MarkerSize).Translate(cx-half, cy-half)
		renderer.RenderPath(marker, markerStyle, canvas.Identity)
	}
}
