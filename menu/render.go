package menu

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/go-text/render"

	"github.com/gogpu/spin/pyramid"
)

// Overlay is a rendered menu ready for compositing: a premultiplied BGRA
// buffer and its top-left position on the surface.
type Overlay struct {
	Buf  *pyramid.Buffer
	X, Y int
}

// Menu palette. Opaque so the menu stays readable over any image.
var (
	colBackground = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	colHover      = color.NRGBA{R: 70, G: 70, B: 90, A: 255}
	colBorder     = color.NRGBA{R: 110, G: 110, B: 110, A: 255}
	colText       = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
)

// Render draws the menu into a fresh overlay buffer. The same code path
// serves both backends, so output bytes depend only on (m, vw, vh) and
// the resolved font: rendering twice with unchanged state is
// byte-identical.
//
// The model position is clamped into the vw x vh viewport first.
func Render(m *Model, vw, vh int, fc *FontContext) (*Overlay, error) {
	if fc.Closed() {
		return nil, ErrFontsClosed
	}
	face := fc.Face()
	if face == nil {
		return nil, ErrNoFont
	}

	m.ClampTo(vw, vh)
	items := Items(m.KeepAspect)
	w, h := Width, m.Height()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Rect, image.NewUniform(colBackground), image.Point{}, draw.Src)
	if m.Hovered >= 0 && m.Hovered < len(items) {
		hr := image.Rect(0, m.Hovered*RowHeight, w, (m.Hovered+1)*RowHeight)
		draw.Draw(img, hr, image.NewUniform(colHover), image.Point{}, draw.Src)
	}
	drawBorder(img, colBorder)

	fontSize := m.FontSize
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	r := &render.Renderer{
		FontSize: float32(fontSize),
		Color:    colText,
	}
	textX := 10
	for i, it := range items {
		// Baseline roughly centers the label in its row.
		baseline := i*RowHeight + (RowHeight+int(fontSize))/2 - 1
		r.DrawStringAt(it.Label, img, textX, baseline, face)
	}

	return &Overlay{Buf: toBGRA(img), X: m.X, Y: m.Y}, nil
}

// drawBorder outlines the full image rect with a 1 px frame.
func drawBorder(img *image.RGBA, c color.NRGBA) {
	b := img.Rect
	for x := b.Min.X; x < b.Max.X; x++ {
		img.SetRGBA(x, b.Min.Y, rgba(c))
		img.SetRGBA(x, b.Max.Y-1, rgba(c))
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		img.SetRGBA(b.Min.X, y, rgba(c))
		img.SetRGBA(b.Max.X-1, y, rgba(c))
	}
}

func rgba(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// toBGRA repacks the premultiplied RGBA scratch image into the BGRA
// order the compositor consumes.
func toBGRA(img *image.RGBA) *pyramid.Buffer {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	buf := pyramid.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		srow := img.Pix[y*img.Stride : y*img.Stride+w*4]
		drow := buf.Pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			o := x * 4
			drow[o+0] = srow[o+2]
			drow[o+1] = srow[o+1]
			drow[o+2] = srow[o+0]
			drow[o+3] = srow[o+3]
		}
	}
	return buf
}
