// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package spin is a Wayland layer-shell image overlay: it pins a single
// image above all windows and drives move, resize, opacity, and menu
// interaction entirely with the pointer.
package spin

import (
	"math"
	"time"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/wayland"
)

// State is the interaction state. Exactly one value holds at a time.
type State int

const (
	StateIdle State = iota
	StateDraggingMove
	StateDraggingResize
	StateMenuOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraggingMove:
		return "dragging-move"
	case StateDraggingResize:
		return "dragging-resize"
	case StateMenuOpen:
		return "menu-open"
	default:
		return "unknown"
	}
}

// Edge tags which border band a resize drag grabbed. Corners take
// priority where edge bands overlap.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeBottom
	EdgeLeft
	EdgeRight
	EdgeTopLeft
	EdgeTopRight
	EdgeBottomLeft
	EdgeBottomRight
)

// Viewport is the mutable window geometry and presentation state. Only
// the state machine mutates it.
type Viewport struct {
	W, H int
	X, Y int

	Opacity    float64
	KeepAspect bool

	// Aspect is the original image width/height ratio, fixed at load.
	Aspect float64
}

// Effects tells the caller what a state transition requires. The event
// loop applies them in order: geometry first, then redraw.
type Effects struct {
	Exit  bool
	Moved bool
	Sized bool

	// Redraw requests one frame; FinalQuality forces the bilinear
	// filter (set on resize-drag release and any still redraw).
	Redraw       bool
	FinalQuality bool

	// MenuOpened and MenuClosed bracket the font context lifecycle.
	MenuOpened bool
	MenuClosed bool

	// Copy requests a clipboard export.
	Copy bool

	// CacheInvalid is set when the scale mode toggles; the CPU backend
	// cache must not survive it.
	CacheInvalid bool
}

// Machine is the interaction state machine. It owns the Viewport and
// the menu model and translates raw input events into Effects; it never
// talks to the compositor or the backends itself.
type Machine struct {
	cfg Config
	vp  Viewport

	state State
	edge  Edge

	outW, outH int

	pointerX, pointerY float64

	dragStartX, dragStartY float64
	dragStartVP            Viewport

	lastClickAt time.Time
	lastClickX  float64
	lastClickY  float64

	menu *menu.Model

	now func() time.Time
}

// NewMachine builds a machine for a viewport on an outW x outH output.
func NewMachine(cfg Config, vp Viewport, outW, outH int) *Machine {
	if vp.Aspect <= 0 {
		vp.Aspect = 1
	}
	return &Machine{
		cfg:   cfg,
		vp:    vp,
		state: StateIdle,
		outW:  outW,
		outH:  outH,
		now:   time.Now,
	}
}

// Viewport returns the current geometry and presentation state.
func (m *Machine) Viewport() Viewport { return m.vp }

// State returns the current interaction state.
func (m *Machine) State() State { return m.state }

// Menu returns the menu model while the menu is open, else nil.
func (m *Machine) Menu() *menu.Model {
	if m.state != StateMenuOpen {
		return nil
	}
	return m.menu
}

// Dragging reports whether a move or resize drag is active. The session
// re-asserts its own size against compositor configures while true.
func (m *Machine) Dragging() bool {
	return m.state == StateDraggingMove || m.state == StateDraggingResize
}

// SetOutput updates the output bounds used for clamping.
func (m *Machine) SetOutput(w, h int) {
	m.outW, m.outH = w, h
}

// DetectEdge maps a surface position to the resize band it falls in.
func (m *Machine) DetectEdge(x, y float64) Edge {
	margin := float64(m.cfg.ResizeMargin)
	w, h := float64(m.vp.W), float64(m.vp.H)

	left := x < margin
	right := x > w-margin
	top := y < margin
	bottom := y > h-margin

	switch {
	case top && left:
		return EdgeTopLeft
	case top && right:
		return EdgeTopRight
	case bottom && left:
		return EdgeBottomLeft
	case bottom && right:
		return EdgeBottomRight
	case left:
		return EdgeLeft
	case right:
		return EdgeRight
	case top:
		return EdgeTop
	case bottom:
		return EdgeBottom
	default:
		return EdgeNone
	}
}

// PointerEnter records the pointer position.
func (m *Machine) PointerEnter(x, y float64) Effects {
	m.pointerX, m.pointerY = x, y
	return Effects{}
}

// PointerLeave aborts any active drag.
func (m *Machine) PointerLeave() Effects {
	m.pointerX, m.pointerY = -1, -1
	if m.Dragging() {
		m.state = StateIdle
		m.edge = EdgeNone
		return Effects{Redraw: true, FinalQuality: true}
	}
	return Effects{}
}

// PointerMotion updates drags and menu hover.
func (m *Machine) PointerMotion(x, y float64) Effects {
	m.pointerX, m.pointerY = x, y

	switch m.state {
	case StateMenuOpen:
		prev := m.menu.Hovered
		m.menu.Hovered = m.menu.ItemAt(int(x), int(y))
		if m.menu.Hovered != prev {
			return Effects{Redraw: true, FinalQuality: true}
		}
		return Effects{}

	case StateDraggingMove:
		dx := x - m.dragStartX
		dy := y - m.dragStartY
		m.vp.X = m.dragStartVP.X + int(dx)
		m.vp.Y = m.dragStartVP.Y + int(dy)
		return Effects{Moved: true}

	case StateDraggingResize:
		return m.applyResize(x, y)

	default:
		return Effects{}
	}
}

// PointerButton handles press and release of pointer buttons.
func (m *Machine) PointerButton(button uint32, pressed bool) Effects {
	if pressed {
		switch button {
		case wayland.BtnLeft:
			return m.primaryPress()
		case wayland.BtnRight:
			return m.secondaryPress()
		}
		return Effects{}
	}

	if button != wayland.BtnLeft {
		return Effects{}
	}
	wasResizing := m.state == StateDraggingResize
	if m.Dragging() {
		m.state = StateIdle
		m.edge = EdgeNone
	}
	if wasResizing {
		// One full-quality frame after the drag settles.
		return Effects{Redraw: true, FinalQuality: true, CacheInvalid: true}
	}
	return Effects{}
}

func (m *Machine) primaryPress() Effects {
	x, y := m.pointerX, m.pointerY

	if m.state == StateMenuOpen {
		item := m.menu.ItemAt(int(x), int(y))
		if item < 0 {
			return m.closeMenu(Effects{})
		}
		items := menu.Items(m.vp.KeepAspect)
		return m.menuAction(items[item].Action)
	}

	now := m.now()
	if m.isDoubleClick(now, x, y) {
		slogger().Info("double-click, exiting")
		return Effects{Exit: true}
	}
	m.lastClickAt = now
	m.lastClickX, m.lastClickY = x, y

	if edge := m.DetectEdge(x, y); edge != EdgeNone {
		m.state = StateDraggingResize
		m.edge = edge
		m.dragStartX, m.dragStartY = x, y
		m.dragStartVP = m.vp
		return Effects{}
	}

	m.state = StateDraggingMove
	m.dragStartX, m.dragStartY = x, y
	m.dragStartVP = m.vp
	return Effects{}
}

func (m *Machine) secondaryPress() Effects {
	if m.state != StateIdle && m.state != StateMenuOpen {
		return Effects{}
	}
	m.menu = menu.NewModel(int(m.pointerX), int(m.pointerY), m.vp.KeepAspect)
	m.menu.FontSize = m.cfg.MenuFontSize
	m.menu.ClampTo(m.vp.W, m.vp.H)
	opened := m.state != StateMenuOpen
	m.state = StateMenuOpen
	return Effects{MenuOpened: opened, Redraw: true, FinalQuality: true}
}

func (m *Machine) isDoubleClick(now time.Time, x, y float64) bool {
	if m.lastClickAt.IsZero() {
		return false
	}
	if now.Sub(m.lastClickAt) >= time.Duration(m.cfg.DoubleClickMs)*time.Millisecond {
		return false
	}
	dist := math.Hypot(x-m.lastClickX, y-m.lastClickY)
	return dist < m.cfg.DoubleClickRadius
}

func (m *Machine) menuAction(a menu.Action) Effects {
	switch a {
	case menu.ActionClose:
		return m.closeMenu(Effects{Exit: true})
	case menu.ActionCopy:
		return m.closeMenu(Effects{Copy: true})
	case menu.ActionOpacityUp:
		eff := m.stepOpacity(m.cfg.OpacityStep)
		return m.closeMenu(eff)
	case menu.ActionOpacityDown:
		eff := m.stepOpacity(-m.cfg.OpacityStep)
		return m.closeMenu(eff)
	case menu.ActionToggleScaleMode:
		m.vp.KeepAspect = !m.vp.KeepAspect
		slogger().Info("scale mode toggled", "keepAspect", m.vp.KeepAspect)
		return m.closeMenu(Effects{CacheInvalid: true})
	default:
		return m.closeMenu(Effects{})
	}
}

func (m *Machine) closeMenu(eff Effects) Effects {
	if m.state == StateMenuOpen {
		m.state = StateIdle
		m.menu = nil
		eff.MenuClosed = true
		eff.Redraw = true
		eff.FinalQuality = true
	}
	return eff
}

func (m *Machine) stepOpacity(delta float64) Effects {
	next := m.vp.Opacity + delta
	if next < 0 {
		next = 0
	} else if next > 1 {
		next = 1
	}
	if next == m.vp.Opacity {
		return Effects{}
	}
	m.vp.Opacity = next
	slogger().Debug("opacity adjusted", "opacity", m.vp.Opacity)
	return Effects{Redraw: true, FinalQuality: true}
}

// PointerAxis steps opacity on scroll. Scrolling up raises it.
func (m *Machine) PointerAxis(vertical float64) Effects {
	if m.state == StateMenuOpen || vertical == 0 {
		return Effects{}
	}
	delta := m.cfg.OpacityStep
	if vertical > 0 {
		delta = -delta
	}
	return m.stepOpacity(delta)
}

// KeyPressed closes the menu or exits on Escape and Q.
func (m *Machine) KeyPressed(code uint32) Effects {
	if code != wayland.KeyEsc && code != wayland.KeyQ {
		return Effects{}
	}
	if m.state == StateMenuOpen {
		return m.closeMenu(Effects{})
	}
	return Effects{Exit: true}
}

// Configure folds a compositor size suggestion into the viewport.
// During drags the machine keeps its own size.
func (m *Machine) Configure(w, h int) (int, int) {
	if m.Dragging() {
		return m.vp.W, m.vp.H
	}
	if w > 0 {
		m.vp.W = w
	}
	if h > 0 {
		m.vp.H = h
	}
	m.clampViewport()
	return m.vp.W, m.vp.H
}

// applyResize recomputes geometry for the active resize drag.
func (m *Machine) applyResize(x, y float64) Effects {
	dx := int(x - m.dragStartX)
	dy := int(y - m.dragStartY)

	start := m.dragStartVP
	w, h := start.W, start.H
	px, py := start.X, start.Y
	keep := m.vp.KeepAspect
	aspect := m.vp.Aspect

	switch m.edge {
	case EdgeRight:
		w = maxInt(start.W+dx, wayland.MinSize)
		if keep {
			h = int(float64(w)/aspect + 0.5)
		}
	case EdgeBottom:
		h = maxInt(start.H+dy, wayland.MinSize)
		if keep {
			w = int(float64(h)*aspect + 0.5)
		}
	case EdgeLeft:
		w = maxInt(start.W-dx, wayland.MinSize)
		if keep {
			h = int(float64(w)/aspect + 0.5)
			py = start.Y - (h-start.H)/2
		}
		px = start.X + (start.W - w)
	case EdgeTop:
		h = maxInt(start.H-dy, wayland.MinSize)
		if keep {
			w = int(float64(h)*aspect + 0.5)
			px = start.X - (w-start.W)/2
		}
		py = start.Y + (start.H - h)
	case EdgeBottomRight:
		w, h = m.cornerSize(start.W+dx, start.H+dy, start, keep)
	case EdgeTopRight:
		w, h = m.cornerSize(start.W+dx, start.H-dy, start, keep)
		py = start.Y + (start.H - h)
	case EdgeBottomLeft:
		w, h = m.cornerSize(start.W-dx, start.H+dy, start, keep)
		px = start.X + (start.W - w)
	case EdgeTopLeft:
		w, h = m.cornerSize(start.W-dx, start.H-dy, start, keep)
		px = start.X + (start.W - w)
		py = start.Y + (start.H - h)
	}

	w, h = wayland.ClampSize(w, h, m.outW, m.outH)

	sized := w != m.vp.W || h != m.vp.H
	moved := px != m.vp.X || py != m.vp.Y
	m.vp.W, m.vp.H = w, h
	m.vp.X, m.vp.Y = px, py
	return Effects{Sized: sized, Moved: moved, Redraw: sized}
}

// cornerSize resolves a corner drag. In KeepAspect mode the larger of
// the two implied scale factors governs; the other axis is derived
// from the original aspect ratio, so the drag never shrinks the image
// while either axis is being pulled outward.
func (m *Machine) cornerSize(reqW, reqH int, start Viewport, keep bool) (int, int) {
	reqW = maxInt(reqW, wayland.MinSize)
	reqH = maxInt(reqH, wayland.MinSize)
	if !keep {
		return reqW, reqH
	}
	sx := float64(reqW) / float64(start.W)
	sy := float64(reqH) / float64(start.H)
	scale := sx
	if sy > sx {
		scale = sy
	}
	if minScale := float64(wayland.MinSize) / float64(start.W); scale < minScale {
		scale = minScale
	}
	w := int(float64(start.W)*scale + 0.5)
	h := int(float64(w)/m.vp.Aspect + 0.5)
	return w, h
}

func (m *Machine) clampViewport() {
	m.vp.W, m.vp.H = wayland.ClampSize(m.vp.W, m.vp.H, m.outW, m.outH)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
