// Package imageio decodes image files into the premultiplied BGRA
// buffers the rest of spin works with, applying the optional one-shot
// startup scale.
//
// Registered formats: png, jpeg, gif (stdlib) and webp, bmp, tiff
// (golang.org/x/image).
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/spin/pyramid"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Package errors.
var (
	// ErrDecodeFailure is returned for unreadable or unsupported input bytes.
	ErrDecodeFailure = errors.New("imageio: cannot decode image")

	// ErrEmptyInput is returned when the input stream holds no bytes.
	ErrEmptyInput = errors.New("imageio: empty input")
)

// Load reads and decodes the image at path. An empty path or "-" reads
// standard input. scale is applied once at load time; 0 or 1 means no
// scaling.
func Load(path string, scale float64) (*pyramid.Buffer, error) {
	var r io.Reader
	if path == "" || path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("imageio: %w", err)
		}
		defer f.Close()
		r = f
	}
	return Decode(r, scale)
}

// Decode decodes one image from r and converts it to premultiplied BGRA,
// applying scale (CatmullRom resampling) when it differs from 1.
func Decode(r io.Reader, scale float64) (*pyramid.Buffer, error) {
	br := bufio.NewReader(r)
	if _, err := br.Peek(1); err != nil {
		return nil, ErrEmptyInput
	}
	img, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	rgba := toRGBA(img)
	if scale > 0 && scale != 1 {
		rgba = scaleRGBA(rgba, scale)
	}
	return toBGRA(rgba), nil
}

// toRGBA converts any decoded image to premultiplied RGBA with a
// zero-origin bounds rectangle.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// scaleRGBA resamples src by the given factor with the CatmullRom kernel.
func scaleRGBA(src *image.RGBA, scale float64) *image.RGBA {
	w := int(float64(src.Rect.Dx())*scale + 0.5)
	h := int(float64(src.Rect.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst
}

// toBGRA repacks premultiplied RGBA pixels into a tight BGRA buffer
// (Wayland ARGB8888 little-endian byte order).
func toBGRA(src *image.RGBA) *pyramid.Buffer {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	buf := pyramid.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+w*4]
		drow := buf.Pix[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			o := x * 4
			drow[o+0] = srow[o+2] // B
			drow[o+1] = srow[o+1] // G
			drow[o+2] = srow[o+0] // R
			drow[o+3] = srow[o+3] // A
		}
	}
	return buf
}

// EncodePNG writes buf as a PNG stream, undoing the BGRA byte order.
// Used by the clipboard exporter.
func EncodePNG(w io.Writer, buf *pyramid.Buffer) error {
	img := image.NewRGBA(image.Rect(0, 0, buf.W, buf.H))
	for y := 0; y < buf.H; y++ {
		srow := buf.Pix[y*buf.W*4 : (y+1)*buf.W*4]
		drow := img.Pix[y*img.Stride : y*img.Stride+buf.W*4]
		for x := 0; x < buf.W; x++ {
			o := x * 4
			drow[o+0] = srow[o+2]
			drow[o+1] = srow[o+1]
			drow[o+2] = srow[o+0]
			drow[o+3] = srow[o+3]
		}
	}
	return png.Encode(w, img)
}
