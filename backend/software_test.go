package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"
)

// solidSource builds a premultiplied BGRA source with a uniform color.
func solidSource(w, h int, b, g, r, a byte) *pyramid.Buffer {
	buf := pyramid.NewBuffer(w, h)
	for i := 0; i < w*h; i++ {
		buf.Pix[i*4+0] = b
		buf.Pix[i*4+1] = g
		buf.Pix[i*4+2] = r
		buf.Pix[i*4+3] = a
	}
	return buf
}

func newTestSoftware(t *testing.T, src *pyramid.Buffer) *softwareBackend {
	t.Helper()
	b, err := newSoftware()
	if err != nil {
		t.Fatalf("newSoftware failed: %v", err)
	}
	sw := b.(*softwareBackend)
	if src != nil {
		if err := sw.SetSource(src); err != nil {
			t.Fatalf("SetSource failed: %v", err)
		}
	}
	return sw
}

func TestSoftwarePresentBeforeSource(t *testing.T) {
	sw := newTestSoftware(t, nil)
	defer sw.Close()

	sw.Resize(10, 10)
	err := sw.Present(make([]byte, 10*10*4), Params{}, nil)
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestSoftwarePresentCanvasTooSmall(t *testing.T) {
	sw := newTestSoftware(t, solidSource(64, 64, 10, 20, 30, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	err := sw.Present(make([]byte, 32*32*4-1), Params{Opacity: 1}, nil)
	if !errors.Is(err, ErrCanvasTooSmall) {
		t.Fatalf("expected ErrCanvasTooSmall, got %v", err)
	}
}

func TestSoftwarePresentSolidColor(t *testing.T) {
	sw := newTestSoftware(t, solidSource(64, 64, 10, 20, 30, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	canvas := make([]byte, 32*32*4)
	err := sw.Present(canvas, Params{Quality: pyramid.QualityFinal, Opacity: 1}, nil)
	if err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	// Uniform source stays uniform through any filter.
	for i := 0; i < 32*32; i++ {
		if canvas[i*4] != 10 || canvas[i*4+1] != 20 || canvas[i*4+2] != 30 || canvas[i*4+3] != 255 {
			t.Fatalf("pixel %d = %v, expected [10 20 30 255]", i, canvas[i*4:i*4+4])
		}
	}
}

func TestSoftwarePresentOpacity(t *testing.T) {
	sw := newTestSoftware(t, solidSource(16, 16, 200, 200, 200, 255))
	defer sw.Close()

	sw.Resize(16, 16)
	canvas := make([]byte, 16*16*4)
	err := sw.Present(canvas, Params{Quality: pyramid.QualityFast, Opacity: 0.5}, nil)
	if err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	for c := 0; c < 4; c++ {
		v := int(canvas[c])
		want := 255
		if c != 3 {
			want = 200
		}
		want = want / 2
		if v < want-2 || v > want+2 {
			t.Errorf("channel %d = %d, expected about %d", c, v, want)
		}
	}
}

func TestSoftwarePresentOpacityClamped(t *testing.T) {
	sw := newTestSoftware(t, solidSource(8, 8, 100, 100, 100, 255))
	defer sw.Close()

	sw.Resize(8, 8)
	canvas := make([]byte, 8*8*4)
	if err := sw.Present(canvas, Params{Opacity: 7.0}, nil); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if canvas[3] != 255 {
		t.Errorf("opacity above 1 should clamp to 1, alpha = %d", canvas[3])
	}
	if err := sw.Present(canvas, Params{Opacity: -1.0}, nil); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if canvas[3] != 0 {
		t.Errorf("opacity below 0 should clamp to 0, alpha = %d", canvas[3])
	}
}

func TestSoftwareCachedFrameReuse(t *testing.T) {
	sw := newTestSoftware(t, solidSource(64, 64, 1, 2, 3, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	canvas := make([]byte, 32*32*4)
	p := Params{Quality: pyramid.QualityFast, Opacity: 1}
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("first Present failed: %v", err)
	}
	first := sw.cached
	if first == nil {
		t.Fatal("expected cached frame after Present")
	}

	// Same size and params reuses the cache.
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("second Present failed: %v", err)
	}
	if sw.cached != first {
		t.Error("unchanged Present should not recompute the cached frame")
	}

	// A parameter change invalidates it.
	p.Opacity = 0.5
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("third Present failed: %v", err)
	}
	if sw.cached == first {
		t.Error("parameter change should recompute the cached frame")
	}

	// A resize invalidates it too.
	second := sw.cached
	sw.Resize(16, 16)
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("fourth Present failed: %v", err)
	}
	if sw.cached == second {
		t.Error("resize should recompute the cached frame")
	}
}

func TestSoftwareInvalidateDropsCache(t *testing.T) {
	sw := newTestSoftware(t, solidSource(64, 64, 1, 2, 3, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	canvas := make([]byte, 32*32*4)
	p := Params{Quality: pyramid.QualityFinal, Opacity: 1}
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	first := sw.cached
	if first == nil {
		t.Fatal("expected cached frame after Present")
	}

	sw.Invalidate()
	if sw.cached != nil {
		t.Fatal("Invalidate should drop the cached frame")
	}
	if err := sw.Present(canvas, p, nil); err != nil {
		t.Fatalf("Present after Invalidate failed: %v", err)
	}
	if sw.cached == first {
		t.Error("Present after Invalidate should recompute the frame")
	}
}

func TestSoftwareSetSourceInvalidatesCache(t *testing.T) {
	sw := newTestSoftware(t, solidSource(32, 32, 9, 9, 9, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	canvas := make([]byte, 32*32*4)
	if err := sw.Present(canvas, Params{Opacity: 1}, nil); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if err := sw.SetSource(solidSource(32, 32, 50, 50, 50, 255)); err != nil {
		t.Fatalf("SetSource failed: %v", err)
	}
	if sw.cached != nil {
		t.Error("SetSource should drop the cached frame")
	}
	if err := sw.Present(canvas, Params{Opacity: 1}, nil); err != nil {
		t.Fatalf("Present after SetSource failed: %v", err)
	}
	if canvas[0] != 50 {
		t.Errorf("expected new source pixels, got %d", canvas[0])
	}
}

func TestSoftwareOverlayBlit(t *testing.T) {
	sw := newTestSoftware(t, solidSource(32, 32, 0, 0, 0, 255))
	defer sw.Close()

	sw.Resize(32, 32)
	canvas := make([]byte, 32*32*4)

	ov := &menu.Overlay{Buf: solidSource(8, 8, 255, 255, 255, 255), X: 4, Y: 4}
	if err := sw.Present(canvas, Params{Opacity: 1}, ov); err != nil {
		t.Fatalf("Present failed: %v", err)
	}

	inside := (5*32 + 5) * 4
	if canvas[inside] != 255 {
		t.Errorf("pixel inside overlay = %d, expected 255", canvas[inside])
	}
	outside := (1*32 + 1) * 4
	if canvas[outside] != 0 {
		t.Errorf("pixel outside overlay = %d, expected 0", canvas[outside])
	}
}

func TestSoftwareOverlayClipped(t *testing.T) {
	sw := newTestSoftware(t, solidSource(16, 16, 0, 0, 0, 255))
	defer sw.Close()

	sw.Resize(16, 16)
	canvas := make([]byte, 16*16*4)

	// Overlay hangs off every edge; blit must not panic or write out of
	// bounds.
	ov := &menu.Overlay{Buf: solidSource(32, 32, 255, 255, 255, 255), X: -8, Y: -8}
	if err := sw.Present(canvas, Params{Opacity: 1}, ov); err != nil {
		t.Fatalf("Present failed: %v", err)
	}
	if canvas[0] != 255 {
		t.Errorf("clipped overlay should still cover the origin, got %d", canvas[0])
	}
}

func TestInitForcedCPU(t *testing.T) {
	b, err := Init(KindCPU)
	if err != nil {
		t.Fatalf("Init(KindCPU) failed: %v", err)
	}
	defer b.Close()
	if b.Name() != BackendSoftware {
		t.Errorf("expected software backend, got %q", b.Name())
	}
}

func TestInitGPUFailureFallsBack(t *testing.T) {
	orig := Get(BackendGPU)
	Register(BackendGPU, func() (Backend, error) {
		return nil, errors.New("no adapters")
	})
	defer func() {
		if orig != nil {
			Register(BackendGPU, orig)
		} else {
			Unregister(BackendGPU)
		}
	}()

	b, err := Init(KindAuto)
	if err != nil {
		t.Fatalf("Init must not surface GPU bring-up failure, got %v", err)
	}
	defer b.Close()
	if b.Name() != BackendSoftware {
		t.Errorf("expected fallback to software, got %q", b.Name())
	}
}
