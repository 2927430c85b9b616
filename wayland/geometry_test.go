package wayland

import "testing"

func TestInitialSizeLargeImage(t *testing.T) {
	// 4000x3000 on a 1920x1080 output opens at about 192x144: the width
	// lands on its tenth-of-output bound, the height follows the aspect.
	w, h := InitialSize(4000, 3000, 1920, 1080)
	if w < 190 || w > 194 {
		t.Errorf("width = %d, expected about 192", w)
	}
	if h < 142 || h > 146 {
		t.Errorf("height = %d, expected about 144", h)
	}
	// 4:3 held within a pixel.
	if d := w*3 - h*4; d < -4 || d > 4 {
		t.Errorf("aspect drift %d for %dx%d", d, w, h)
	}
}

func TestInitialSizePortraitImage(t *testing.T) {
	// For a portrait image the width ratio governs; the height exceeds
	// its bound but stays aspect-true.
	w, h := InitialSize(3000, 4000, 1920, 1080)
	if w != 192 {
		t.Errorf("width = %d, want 192", w)
	}
	if h != 256 {
		t.Errorf("height = %d, want 256", h)
	}
}

func TestInitialSizeNeverUpscales(t *testing.T) {
	// Wider than the startup box on one axis only: the fitting scale
	// would exceed 1, so the image stays native.
	w, h := InitialSize(200, 50, 1920, 1080)
	if w != 200 || h != 50 {
		t.Errorf("expected native 200x50, got %dx%d", w, h)
	}
}

func TestInitialSizeSmallImageKeepsNativeSize(t *testing.T) {
	w, h := InitialSize(100, 80, 1920, 1080)
	if w != 100 || h != 80 {
		t.Errorf("small image should keep native size, got %dx%d", w, h)
	}
}

func TestInitialSizeZeroImage(t *testing.T) {
	w, h := InitialSize(0, 0, 1920, 1080)
	if w != MinSize || h != MinSize {
		t.Errorf("expected %dx%d fallback, got %dx%d", MinSize, MinSize, w, h)
	}
}

func TestClampSize(t *testing.T) {
	tests := []struct {
		name             string
		w, h, outW, outH int
		wantW, wantH     int
	}{
		{"in range", 300, 200, 1920, 1080, 300, 200},
		{"below minimum", 10, 10, 1920, 1080, MinSize, MinSize},
		{"above output", 2500, 1500, 1920, 1080, 1920, 1080},
		{"above absolute cap", 9000, 9000, 10000, 10000, MaxSize, MaxSize},
		{"tiny output still yields minimum", 300, 300, 20, 20, MinSize, MinSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, h := ClampSize(tc.w, tc.h, tc.outW, tc.outH)
			if w != tc.wantW || h != tc.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestClampSizeBufferBudget(t *testing.T) {
	// 4096x4096x4 = 64 MiB exactly, within budget.
	w, h := ClampSize(4096, 4096, 8192, 8192)
	if w != 4096 || h != 4096 {
		t.Errorf("64 MiB exactly should pass, got %dx%d", w, h)
	}
}
