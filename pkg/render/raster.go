package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/dd0wney/cluso-netgraph/pkg/geometry"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// RasterSurface draws into an RGBA image with anti-aliased vector paths and
// the embedded Go Regular face. With supersampling the frame is drawn at a
// multiple of its size and downsampled on output.
type RasterSurface struct {
	width, height int
	scale         float64

	img   *image.RGBA
	z     *vector.Rasterizer
	faces *geometry.FaceMeasurer
}

// NewRasterSurface creates a width x height surface. supersample values
// below 2 draw at native size.
func NewRasterSurface(width, height, supersample int) (*RasterSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster surface %dx%d: empty canvas", width, height)
	}
	if supersample < 1 {
		supersample = 1
	}
	faces, err := geometry.NewFaceMeasurer()
	if err != nil {
		return nil, err
	}
	w, h := width*supersample, height*supersample
	return &RasterSurface{
		width:  width,
		height: height,
		scale:  float64(supersample),
		img:    image.NewRGBA(image.Rect(0, 0, w, h)),
		z:      vector.NewRasterizer(w, h),
		faces:  faces,
	}, nil
}

// Name labels render metrics.
func (s *RasterSurface) Name() string { return "raster" }

func (s *RasterSurface) Size() (int, int) { return s.width, s.height }

func (s *RasterSurface) Measurer() geometry.Measurer { return s.faces }

func (s *RasterSurface) Clear(bg color.RGBA) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func (s *RasterSurface) Line(a, b geometry.Point, stroke Stroke) {
	w := math.Max(stroke.Width, 0.5) * s.scale / 2
	ax, ay, bx, by := a.X*s.scale, a.Y*s.scale, b.X*s.scale, b.Y*s.scale
	dx, dy := bx-ax, by-ay
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*w, dx/l*w

	s.begin()
	s.moveTo(ax+nx, ay+ny)
	s.lineTo(bx+nx, by+ny)
	s.lineTo(bx-nx, by-ny)
	s.lineTo(ax-nx, ay-ny)
	s.z.ClosePath()
	s.fill(stroke.Color)
}

func (s *RasterSurface) Circle(center geometry.Point, radius float64, fill color.RGBA, stroke Stroke) {
	cx, cy, r := center.X*s.scale, center.Y*s.scale, radius*s.scale
	sw := stroke.Width * s.scale
	if sw > 0 {
		s.begin()
		s.ellipse(cx, cy, r)
		s.fill(stroke.Color)
	}
	s.begin()
	s.ellipse(cx, cy, math.Max(0, r-sw))
	s.fill(fill)
}

func (s *RasterSurface) RoundedRect(r geometry.Rect, corner float64, fill color.RGBA, stroke Stroke) {
	x, y, w, h := r.X*s.scale, r.Y*s.scale, r.W*s.scale, r.H*s.scale
	c := corner * s.scale
	sw := stroke.Width * s.scale
	if sw > 0 {
		s.begin()
		s.roundedRect(x, y, w, h, c)
		s.fill(stroke.Color)
	}
	s.begin()
	s.roundedRect(x+sw, y+sw, w-2*sw, h-2*sw, math.Max(0, c-sw))
	s.fill(fill)
}

func (s *RasterSurface) Text(p geometry.Point, text string, fontSize float64, c color.RGBA) {
	face, err := s.faces.Face(fontSize * s.scale)
	if err != nil {
		return
	}
	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(p.X * s.scale * 64),
			Y: fixed.Int26_6(p.Y*s.scale*64) + face.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}

// Image returns the frame at its logical size.
func (s *RasterSurface) Image() *image.RGBA {
	if s.scale == 1 {
		return s.img
	}
	out := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.CatmullRom.Scale(out, out.Bounds(), s.img, s.img.Bounds(), draw.Over, nil)
	return out
}

// EncodePNG writes the frame as PNG.
func (s *RasterSurface) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.Image()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases cached font faces.
func (s *RasterSurface) Close() error {
	return s.faces.Close()
}

func (s *RasterSurface) begin() {
	b := s.img.Bounds()
	s.z.Reset(b.Dx(), b.Dy())
	s.z.DrawOp = draw.Over
}

func (s *RasterSurface) fill(c color.RGBA) {
	s.z.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{})
}

func (s *RasterSurface) moveTo(x, y float64) { s.z.MoveTo(float32(x), float32(y)) }
func (s *RasterSurface) lineTo(x, y float64) { s.z.LineTo(float32(x), float32(y)) }

func (s *RasterSurface) cubeTo(bx, by, cx, cy, dx, dy float64) {
	s.z.CubeTo(float32(bx), float32(by), float32(cx), float32(cy), float32(dx), float32(dy))
}

func (s *RasterSurface) ellipse(cx, cy, r float64) {
	if r <= 0 {
		return
	}
	k := r * kappa
	s.moveTo(cx+r, cy)
	s.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	s.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	s.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	s.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	s.z.ClosePath()
}

func (s *RasterSurface) roundedRect(x, y, w, h, c float64) {
	if w <= 0 || h <= 0 {
		return
	}
	c = math.Min(c, math.Min(w, h)/2)
	k := c * (1 - kappa)
	s.moveTo(x+c, y)
	s.lineTo(x+w-c, y)
	s.cubeTo(x+w-k, y, x+w, y+k, x+w, y+c)
	s.lineTo(x+w, y+h-c)
	s.cubeTo(x+w, y+h-k, x+w-k, y+h, x+w-c, y+h)
	s.lineTo(x+c, y+h)
	s.cubeTo(x+k, y+h, x, y+h-k, x, y+h-c)
	s.lineTo(x, y+c)
	s.cubeTo(x, y+k, x+k, y, x+c, y)
	s.z.ClosePath()
}
