package spin

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/spin/backend"
	"github.com/gogpu/spin/imageio"
	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"
	"github.com/gogpu/spin/wayland"
)

// App wires the session, the state machine, and the active backend into
// one event loop. A single goroutine owns all of it.
type App struct {
	cfg     Config
	machine *Machine
	session *wayland.Session
	backend backend.Backend

	// encoded retains the original compressed input bytes for the
	// clipboard exporter; the decoded pixels belong to the backend.
	encoded []byte

	fonts   *menu.FontContext
	overlay *menu.Overlay

	configured   bool
	needsFrame   bool
	pendingFinal bool
	lastDragDraw time.Time

	exit    bool
	exitErr error
}

// Run decodes nothing itself: it takes the decoded image, hands it to a
// backend, creates the overlay surface, and blocks in the event loop
// until exit. encoded holds the original compressed bytes.
func Run(cfg Config, img *pyramid.Buffer, encoded []byte) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	kind := backend.KindAuto
	if cfg.ForceCPU {
		kind = backend.KindCPU
	}
	b, err := backend.Init(kind)
	if err != nil {
		return err
	}
	defer b.Close()

	imgW, imgH := img.W, img.H
	if err := b.SetSource(img); err != nil {
		return err
	}

	app := &App{cfg: cfg, backend: b, encoded: encoded}

	session, err := wayland.Connect(app)
	if err != nil {
		return err
	}
	defer session.Close()
	app.session = session

	outW, outH := session.OutputSize()
	w, h := wayland.InitialSize(imgW, imgH, outW, outH)
	w, h = wayland.ClampSize(w, h, outW, outH)

	x, y := cfg.PosX, cfg.PosY
	if x < 0 {
		x = (outW - w) / 2
	}
	if y < 0 {
		y = (outH - h) / 2
	}

	app.machine = NewMachine(cfg, Viewport{
		W: w, H: h, X: x, Y: y,
		Opacity:    cfg.Opacity,
		KeepAspect: true,
		Aspect:     float64(imgW) / float64(imgH),
	}, outW, outH)

	if err := b.Resize(w, h); err != nil {
		return err
	}
	if err := session.CreateOverlay(w, h, x, y); err != nil {
		return err
	}
	slogger().Info("overlay created",
		"image", fmt.Sprintf("%dx%d", imgW, imgH),
		"surface", fmt.Sprintf("%dx%d", w, h),
		"backend", b.Name())

	for !app.exit {
		if err := session.Dispatch(); err != nil {
			return fmt.Errorf("spin: event loop: %w", err)
		}
	}
	app.releaseFonts()
	return app.exitErr
}

// apply carries out the side effects of one state transition.
func (a *App) apply(eff Effects) {
	if eff.Exit {
		a.exit = true
		return
	}
	vp := a.machine.Viewport()

	if eff.MenuOpened {
		a.openFonts()
	}
	if eff.MenuClosed {
		a.releaseFonts()
		a.overlay = nil
	}
	if eff.Copy {
		a.copyToClipboard()
	}
	if eff.CacheInvalid {
		a.backend.Invalidate()
	}

	if eff.Sized {
		if err := a.backend.Resize(vp.W, vp.H); err != nil {
			a.fatal(err)
			return
		}
		if err := a.session.Resize(vp.W, vp.H); err != nil {
			a.fatal(err)
			return
		}
	}
	if eff.Moved {
		if err := a.session.Move(vp.X, vp.Y); err != nil {
			a.fatal(err)
			return
		}
	}

	if eff.Redraw || eff.Sized {
		a.draw(eff.FinalQuality)
	}
}

// draw renders one frame, honoring the drag redraw rate limit. Skipped
// drag frames are made up by the final post-release frame.
func (a *App) draw(final bool) {
	if !a.configured {
		return
	}

	if a.machine.Dragging() && !final {
		interval := time.Duration(a.cfg.DragRedrawMs) * time.Millisecond
		if since := time.Since(a.lastDragDraw); since < interval {
			a.needsFrame = true
			a.pendingFinal = false
			if err := a.session.ScheduleFrame(); err != nil {
				slogger().Warn("frame request failed", "error", err)
			}
			return
		}
		a.lastDragDraw = time.Now()
	}

	a.renderMenuOverlay()

	quality := pyramid.QualityFinal
	if a.machine.Dragging() && !final {
		quality = pyramid.QualityFast
	}
	vp := a.machine.Viewport()

	err := a.session.Present(func(canvas []byte) error {
		p := backend.Params{Quality: quality, Opacity: vp.Opacity}
		if err := a.backend.Present(canvas, p, a.overlay); err != nil {
			return err
		}
		drawCornerTicks(canvas, vp.W, vp.H, a.cfg.ResizeMargin)
		return nil
	})
	switch {
	case err == nil:
		a.needsFrame = false
	case errors.Is(err, wayland.ErrNoFreeBuffer):
		// Both slots busy; retry on the next frame callback.
		a.needsFrame = true
		a.pendingFinal = final
		if err := a.session.ScheduleFrame(); err != nil {
			slogger().Warn("frame request failed", "error", err)
		}
	case errors.Is(err, backend.ErrBackendLost):
		a.fatal(err)
	default:
		slogger().Warn("present failed", "error", err)
	}
}

func (a *App) renderMenuOverlay() {
	model := a.machine.Menu()
	if model == nil || a.fonts == nil {
		return
	}
	vp := a.machine.Viewport()
	ov, err := menu.Render(model, vp.W, vp.H, a.fonts)
	if err != nil {
		slogger().Warn("menu render failed", "error", err)
		a.overlay = nil
		return
	}
	a.overlay = ov
}

func (a *App) openFonts() {
	fc, err := menu.OpenFonts()
	if err != nil {
		slogger().Warn("font setup failed, menu labels disabled", "error", err)
		return
	}
	a.fonts = fc
}

func (a *App) releaseFonts() {
	if a.fonts != nil {
		a.fonts.Close()
		a.fonts = nil
	}
}

func (a *App) copyToClipboard() {
	src, err := imageio.Decode(bytes.NewReader(a.encoded), 1.0)
	if err != nil {
		slogger().Warn("clipboard decode failed", "error", err)
		return
	}
	if err := CopyImage(src); err != nil {
		slogger().Warn("clipboard copy failed", "error", err)
	}
}

func (a *App) fatal(err error) {
	a.exitErr = err
	a.exit = true
}

// Configure implements wayland.Handler.
func (a *App) Configure(w, h int) (int, int) {
	useW, useH := a.machine.Configure(w, h)
	vp := a.machine.Viewport()
	if !a.configured || useW != vp.W || useH != vp.H {
		if err := a.backend.Resize(useW, useH); err != nil {
			a.fatal(err)
			return useW, useH
		}
	}
	first := !a.configured
	a.configured = true
	if first {
		a.draw(true)
	}
	return useW, useH
}

// Closed implements wayland.Handler.
func (a *App) Closed() {
	a.exit = true
}

// Frame implements wayland.Handler.
func (a *App) Frame() {
	if a.needsFrame {
		a.draw(a.pendingFinal)
	}
}

// PointerEnter implements wayland.Handler.
func (a *App) PointerEnter(x, y float64) {
	a.apply(a.machine.PointerEnter(x, y))
}

// PointerLeave implements wayland.Handler.
func (a *App) PointerLeave() {
	a.apply(a.machine.PointerLeave())
}

// PointerMotion implements wayland.Handler.
func (a *App) PointerMotion(x, y float64) {
	a.apply(a.machine.PointerMotion(x, y))
}

// PointerButton implements wayland.Handler.
func (a *App) PointerButton(button uint32, pressed bool) {
	a.apply(a.machine.PointerButton(button, pressed))
}

// PointerAxis implements wayland.Handler.
func (a *App) PointerAxis(vertical float64) {
	a.apply(a.machine.PointerAxis(vertical))
}

// KeyPressed implements wayland.Handler.
func (a *App) KeyPressed(code uint32) {
	a.apply(a.machine.KeyPressed(code))
}

// drawCornerTicks marks the four corners with short resize affordance
// ticks, drawn over the finished frame.
func drawCornerTicks(canvas []byte, w, h, size int) {
	if w < 2 || h < 2 {
		return
	}
	tick := [4]byte{150, 150, 150, 100}
	put := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		copy(canvas[(y*w+x)*4:], tick[:])
	}
	for i := 0; i < size; i++ {
		put(i, 0)
		put(0, i)
		put(w-1-i, 0)
		put(w-1, i)
		put(i, h-1)
		put(0, h-1-i)
		put(w-1-i, h-1)
		put(w-1, h-1-i)
	}
}
