package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// pngBytes encodes a small test image with distinct channel values so
// the BGRA repack is observable.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBGRAOrder(t *testing.T) {
	out, err := Decode(bytes.NewReader(pngBytes(t, 4, 3)), 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.W != 4 || out.H != 3 {
		t.Fatalf("size = %dx%d, want 4x3", out.W, out.H)
	}
	// First pixel is pure red: BGRA bytes 0,0,255,255.
	if got := out.Pix[:4]; got[0] != 0 || got[1] != 0 || got[2] != 255 || got[3] != 255 {
		t.Errorf("red pixel = %v, want [0 0 255 255]", got)
	}
	// Second pixel: R200 G100 B50 -> BGRA 50,100,200,255.
	if got := out.Pix[4:8]; got[0] != 50 || got[1] != 100 || got[2] != 200 || got[3] != 255 {
		t.Errorf("pixel = %v, want [50 100 200 255]", got)
	}
}

func TestDecodeScale(t *testing.T) {
	out, err := Decode(bytes.NewReader(pngBytes(t, 100, 60)), 0.5)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if out.W != 50 || out.H != 30 {
		t.Errorf("scaled size = %dx%d, want 50x30", out.W, out.H)
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("not an image at all")), 0)
	if !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("Decode = %v, want ErrDecodeFailure", err)
	}
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), 0)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Decode = %v, want ErrEmptyInput", err)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src, err := Decode(bytes.NewReader(pngBytes(t, 8, 8)), 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, src); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	back, err := Decode(&buf, 0)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if !bytes.Equal(back.Pix, src.Pix) {
		t.Error("PNG round trip altered pixels")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/image.png", 0); err == nil {
		t.Error("Load of missing file must fail")
	}
}
