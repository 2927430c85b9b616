package spin

import (
	"testing"
	"time"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/wayland"
)

func newTestMachine(vp Viewport) *Machine {
	return NewMachine(DefaultConfig(), vp, 1920, 1080)
}

func TestDetectEdge(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	tests := []struct {
		name string
		x, y float64
		want Edge
	}{
		{"center", 100, 75, EdgeNone},
		{"left band", 5, 75, EdgeLeft},
		{"right band", 195, 75, EdgeRight},
		{"top band", 100, 5, EdgeTop},
		{"bottom band", 100, 145, EdgeBottom},
		{"top-left corner wins over edges", 5, 5, EdgeTopLeft},
		{"top-right corner", 195, 5, EdgeTopRight},
		{"bottom-left corner", 5, 145, EdgeBottomLeft},
		{"bottom-right corner", 195, 145, EdgeBottomRight},
		{"just inside the band boundary", 10, 75, EdgeNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.DetectEdge(tc.x, tc.y); got != tc.want {
				t.Errorf("DetectEdge(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestDoubleClickExits(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})
	base := time.Now()
	m.now = func() time.Time { return base }

	m.PointerEnter(100, 75)
	eff := m.PointerButton(wayland.BtnLeft, true)
	if eff.Exit {
		t.Fatal("first click must not exit")
	}
	m.PointerButton(wayland.BtnLeft, false)

	m.now = func() time.Time { return base.Add(200 * time.Millisecond) }
	m.PointerMotion(103, 78)
	eff = m.PointerButton(wayland.BtnLeft, true)
	if !eff.Exit {
		t.Fatal("second click within interval and radius must exit")
	}
}

func TestDoubleClickTooSlow(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})
	base := time.Now()
	m.now = func() time.Time { return base }

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerButton(wayland.BtnLeft, false)

	m.now = func() time.Time { return base.Add(500 * time.Millisecond) }
	if eff := m.PointerButton(wayland.BtnLeft, true); eff.Exit {
		t.Fatal("slow second click must not exit")
	}
}

func TestDoubleClickTooFar(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})
	base := time.Now()
	m.now = func() time.Time { return base }

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerButton(wayland.BtnLeft, false)

	m.now = func() time.Time { return base.Add(100 * time.Millisecond) }
	m.PointerMotion(130, 75)
	if eff := m.PointerButton(wayland.BtnLeft, true); eff.Exit {
		t.Fatal("distant second click must not exit")
	}
}

func TestMoveDrag(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, X: 300, Y: 200, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnLeft, true)
	if m.State() != StateDraggingMove {
		t.Fatalf("expected dragging-move, got %v", m.State())
	}

	eff := m.PointerMotion(140, 95)
	if !eff.Moved {
		t.Fatal("expected Moved effect")
	}
	vp := m.Viewport()
	if vp.X != 340 || vp.Y != 220 {
		t.Errorf("position = (%d, %d), want (340, 220)", vp.X, vp.Y)
	}
	if vp.W != 200 || vp.H != 150 {
		t.Errorf("move must not resize, got %dx%d", vp.W, vp.H)
	}

	m.PointerButton(wayland.BtnLeft, false)
	if m.State() != StateIdle {
		t.Errorf("expected idle after release, got %v", m.State())
	}
}

func TestResizeDragFreeMode(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	m.PointerEnter(195, 75)
	m.PointerButton(wayland.BtnLeft, true)
	if m.State() != StateDraggingResize {
		t.Fatalf("expected dragging-resize, got %v", m.State())
	}

	m.vp.KeepAspect = false
	eff := m.PointerMotion(295, 75)
	if !eff.Sized {
		t.Fatal("expected Sized effect")
	}
	vp := m.Viewport()
	if vp.W != 300 || vp.H != 150 {
		t.Errorf("right edge drag: got %dx%d, want 300x150", vp.W, vp.H)
	}

	eff = m.PointerButton(wayland.BtnLeft, false)
	if !eff.Redraw || !eff.FinalQuality {
		t.Error("release after resize must force one final-quality frame")
	}
}

func TestResizeDragKeepAspectEdge(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, KeepAspect: true, Aspect: 4.0 / 3.0})

	m.PointerEnter(195, 75)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerMotion(395, 75)

	vp := m.Viewport()
	if vp.W != 400 || vp.H != 300 {
		t.Errorf("got %dx%d, want 400x300", vp.W, vp.H)
	}
}

func TestResizeDragKeepAspectCorner(t *testing.T) {
	// Corner drag requesting 500x100 from 200x150: the width axis
	// implies the larger scale and governs, so the result is 500x375
	// rather than the raw 500x100.
	m := newTestMachine(Viewport{W: 200, H: 150, KeepAspect: true, Aspect: 4.0 / 3.0})

	m.PointerEnter(195, 145)
	m.PointerButton(wayland.BtnLeft, true)
	if m.edge != EdgeBottomRight {
		t.Fatalf("expected bottom-right edge, got %v", m.edge)
	}
	m.PointerMotion(495, 95)

	vp := m.Viewport()
	if d := vp.W*3 - vp.H*4; d < -8 || d > 8 {
		t.Errorf("aspect drift %d for %dx%d", d, vp.W, vp.H)
	}
	if vp.W != 500 || vp.H != 375 {
		t.Errorf("larger scale factor must govern, got %dx%d, want 500x375", vp.W, vp.H)
	}
}

func TestResizeKeepAspectCornerNeverShrinksOutwardDrag(t *testing.T) {
	// Mixed deltas with both axes still pulled past the start size must
	// not produce a surface smaller than the starting one.
	m := newTestMachine(Viewport{W: 200, H: 150, KeepAspect: true, Aspect: 4.0 / 3.0})

	m.PointerEnter(195, 145)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerMotion(295, 155)

	vp := m.Viewport()
	if vp.W < 200 || vp.H < 150 {
		t.Errorf("outward corner drag shrank surface to %dx%d", vp.W, vp.H)
	}
}

func TestResizeLeftEdgeShiftsPosition(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, X: 500, Y: 300, Aspect: 4.0 / 3.0})
	m.vp.KeepAspect = false

	m.PointerEnter(5, 75)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerMotion(-45, 75)

	vp := m.Viewport()
	if vp.W != 250 {
		t.Errorf("width = %d, want 250", vp.W)
	}
	if vp.X != 450 {
		t.Errorf("left edge drag must shift position, x = %d, want 450", vp.X)
	}
}

func TestResizeClampsToMinimum(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})
	m.vp.KeepAspect = false

	m.PointerEnter(195, 75)
	m.PointerButton(wayland.BtnLeft, true)
	m.PointerMotion(-400, 75)

	if vp := m.Viewport(); vp.W != wayland.MinSize {
		t.Errorf("width = %d, want %d", vp.W, wayland.MinSize)
	}
}

func TestScrollOpacityClamps(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Opacity: 0.2, Aspect: 4.0 / 3.0})

	// Five downward ticks at step 0.05 bottom out at zero.
	for i := 0; i < 5; i++ {
		m.PointerAxis(1.0)
	}
	if op := m.Viewport().Opacity; op != 0 {
		t.Errorf("opacity = %v, want 0", op)
	}

	// Further ticks stay clamped and request no redraw.
	if eff := m.PointerAxis(1.0); eff.Redraw {
		t.Error("clamped scroll must not redraw")
	}

	m.PointerAxis(-1.0)
	if op := m.Viewport().Opacity; op != 0.05 {
		t.Errorf("opacity = %v, want 0.05", op)
	}
}

func TestMenuOpenCloseLifecycle(t *testing.T) {
	m := newTestMachine(Viewport{W: 400, H: 300, Aspect: 4.0 / 3.0})

	m.PointerEnter(200, 150)
	eff := m.PointerButton(wayland.BtnRight, true)
	if !eff.MenuOpened {
		t.Fatal("right click must open the menu")
	}
	if m.State() != StateMenuOpen {
		t.Fatalf("expected menu-open, got %v", m.State())
	}
	if m.Menu() == nil {
		t.Fatal("expected a menu model while open")
	}

	// Click outside closes without action.
	m.PointerMotion(10, 10)
	eff = m.PointerButton(wayland.BtnLeft, true)
	if !eff.MenuClosed {
		t.Fatal("outside click must close the menu")
	}
	if eff.Exit || eff.Copy {
		t.Error("outside click must not trigger an action")
	}
	if m.Menu() != nil {
		t.Error("menu model must be gone after close")
	}
}

func TestMenuActionClose(t *testing.T) {
	m := newTestMachine(Viewport{W: 400, H: 300, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 100)
	m.PointerButton(wayland.BtnRight, true)
	model := m.Menu()

	// First row is Close.
	m.PointerMotion(float64(model.X+10), float64(model.Y+5))
	eff := m.PointerButton(wayland.BtnLeft, true)
	if !eff.Exit {
		t.Fatal("Close item must exit")
	}
}

func TestMenuActionToggleScaleMode(t *testing.T) {
	m := newTestMachine(Viewport{W: 400, H: 300, KeepAspect: true, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 100)
	m.PointerButton(wayland.BtnRight, true)
	model := m.Menu()

	// Last row toggles the scale mode.
	y := model.Y + 4*menu.RowHeight + 5
	m.PointerMotion(float64(model.X+10), float64(y))
	eff := m.PointerButton(wayland.BtnLeft, true)
	if !eff.CacheInvalid {
		t.Error("scale toggle must invalidate the frame cache")
	}
	if m.Viewport().KeepAspect {
		t.Error("scale mode should have flipped to free")
	}
	if !eff.MenuClosed {
		t.Error("any menu action closes the menu")
	}
}

func TestMenuBlocksScroll(t *testing.T) {
	m := newTestMachine(Viewport{W: 400, H: 300, Opacity: 0.5, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 100)
	m.PointerButton(wayland.BtnRight, true)
	m.PointerAxis(1.0)
	if op := m.Viewport().Opacity; op != 0.5 {
		t.Errorf("scroll while menu open must not change opacity, got %v", op)
	}
}

func TestKeyEscape(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	if eff := m.KeyPressed(wayland.KeyEsc); !eff.Exit {
		t.Error("Escape in idle must exit")
	}

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnRight, true)
	eff := m.KeyPressed(wayland.KeyEsc)
	if eff.Exit {
		t.Error("Escape with the menu open must not exit")
	}
	if !eff.MenuClosed {
		t.Error("Escape with the menu open must close it")
	}
}

func TestConfigureDuringDragKeepsOwnSize(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnLeft, true)

	w, h := m.Configure(500, 400)
	if w != 200 || h != 150 {
		t.Errorf("configure during drag returned %dx%d, want 200x150", w, h)
	}
}

func TestConfigureAppliesSuggestion(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	w, h := m.Configure(320, 240)
	if w != 320 || h != 240 {
		t.Errorf("configure returned %dx%d, want 320x240", w, h)
	}
	if vp := m.Viewport(); vp.W != 320 || vp.H != 240 {
		t.Errorf("viewport = %dx%d, want 320x240", vp.W, vp.H)
	}
}

func TestPointerLeaveAbortsDrag(t *testing.T) {
	m := newTestMachine(Viewport{W: 200, H: 150, Aspect: 4.0 / 3.0})

	m.PointerEnter(100, 75)
	m.PointerButton(wayland.BtnLeft, true)
	eff := m.PointerLeave()
	if m.State() != StateIdle {
		t.Errorf("expected idle after pointer leave, got %v", m.State())
	}
	if !eff.Redraw {
		t.Error("aborted drag should settle with a redraw")
	}
}
