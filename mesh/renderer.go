package mesh

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ScannerColor defines the colors used for one scanner's marker and match link
type ScannerColor struct {
	Marker color.NRGBA
	Link   color.NRGBA
}

// DefaultColors returns a palette cycled through by scanner index
func DefaultColors() []ScannerColor {
	return []ScannerColor{
		{ // Anchor - Blue
			Marker: color.NRGBA{0, 0, 255, 255},
			Link:   color.NRGBA{100, 149, 237, 200}, // Cornflower blue
		},
		{ // Red
			Marker: color.NRGBA{220, 20, 60, 255},
			Link:   color.NRGBA{255, 99, 71, 200}, // Tomato
		},
		{ // Green
			Marker: color.NRGBA{0, 128, 0, 255},
			Link:   color.NRGBA{144, 238, 144, 200},
		},
		{ // Gold
			Marker: color.NRGBA{184, 134, 11, 255}, // Dark goldenrod
			Link:   color.NRGBA{255, 215, 0, 200},
		},
	}
}

// ColorFor returns the palette entry for a scanner index
func ColorFor(id int) ScannerColor {
	colors := DefaultColors()
	return colors[id%len(colors)]
}

var (
	backgroundColor = color.RGBA{240, 240, 240, 255}
	beaconColor     = color.RGBA{40, 40, 40, 255}
	textColor       = color.RGBA{0, 0, 0, 255}
)

// maxImageSide caps raster output in either dimension
const maxImageSide = 4000

// CompositeRenderer draws a top-down (XY) raster view of a global map
type CompositeRenderer struct {
	Map        *GlobalMap
	Scale      float64 // Pixels per coordinate unit
	Padding    int     // Padding around the image in pixels
	ShowLabels bool
}

// NewCompositeRenderer creates a renderer with default settings
func NewCompositeRenderer(gm *GlobalMap) *CompositeRenderer {
	return &CompositeRenderer{
		Map:        gm,
		Scale:      0.25,
		Padding:    30,
		ShowLabels: true,
	}
}

// Render creates the composite image
func (r *CompositeRenderer) Render() *image.RGBA {
	bounds, ok := ProjectedBounds(r.Map)
	if !ok {
		bounds = orb.Bound{}
	}
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}

	width := int((bounds.Right()-bounds.Left())*scale) + 2*r.Padding
	height := int((bounds.Top()-bounds.Bottom())*scale) + 2*r.Padding

	if width > maxImageSide {
		scale *= float64(maxImageSide) / float64(width)
		width = maxImageSide
		height = int((bounds.Top()-bounds.Bottom())*scale) + 2*r.Padding
	}
	if height > maxImageSide {
		scale *= float64(maxImageSide) / float64(height)
		height = maxImageSide
		width = int((bounds.Right()-bounds.Left())*scale) + 2*r.Padding
	}
	if width <= 0 {
		width = 2*r.Padding + 1
	}
	if height <= 0 {
		height = 2*r.Padding + 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, backgroundColor)
		}
	}

	// Image Y grows downwards; flip so +Y points up like the map.
	toImage := func(p Point) (int, int) {
		x := int((float64(p.X)-bounds.Left())*scale) + r.Padding
		y := height - 1 - (int((float64(p.Y)-bounds.Bottom())*scale) + r.Padding)
		return x, y
	}

	positions := r.Map.Positions()

	// Match links first so markers draw on top
	for id, parent := range r.Map.Parents {
		if parent < 0 {
			continue
		}
		x0, y0 := toImage(positions[parent])
		x1, y1 := toImage(positions[id])
		drawLine(img, x0, y0, x1, y1, toRGBA(ColorFor(id).Link))
	}

	for _, p := range r.Map.Beacons() {
		ix, iy := toImage(p)
		drawSquare(img, ix, iy, 3, beaconColor)
	}

	for id, p := range positions {
		ix, iy := toImage(p)
		drawSquare(img, ix, iy, 9, toRGBA(ColorFor(id).Marker))
		if r.ShowLabels {
			drawText(img, ix+8, iy-6, r.Map.Scanners[id].Label(), textColor)
		}
	}

	return img
}

// WritePNG encodes the composite image as PNG
func (r *CompositeRenderer) WritePNG(w io.Writer) error {
	return png.Encode(w, r.Render())
}

// SavePNG saves the composite image to a file
func (r *CompositeRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := r.WritePNG(f); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func toRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// drawSquare fills a size x size square centred on (cx, cy)
func drawSquare(img *image.RGBA, cx, cy, size int, c color.RGBA) {
	half := size / 2
	b := img.Bounds()
	for dy := -half; dy <= half; dy++ {
		for dx := -half; dx <= half; dx++ {
			p := image.Pt(cx+dx, cy+dy)
			if p.In(b) {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}

// drawLine rasterises a segment with Bresenham's algorithm
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	b := img.Bounds()
	for {
		if image.Pt(x0, y0).In(b) {
			img.SetRGBA(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
