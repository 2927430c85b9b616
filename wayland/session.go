// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wayland owns the compositor session: the connection, the
// layer-shell overlay surface, shm buffering, and the translation of
// protocol events into the application's input callbacks.
package wayland

import (
	"errors"
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"

	"github.com/gogpu/spin/wayland/layershell"
)

// Session errors.
var (
	// ErrProtocol is returned when the compositor violates expected
	// protocol behavior.
	ErrProtocol = errors.New("wayland: protocol error")

	// ErrNoLayerShell is returned when the compositor does not
	// advertise zwlr_layer_shell_v1.
	ErrNoLayerShell = errors.New("wayland: compositor does not support zwlr_layer_shell_v1")

	// ErrNoFreeBuffer is returned by Present when both shm slots are
	// still held by the compositor.
	ErrNoFreeBuffer = errors.New("wayland: no free shm buffer")
)

// Linux evdev codes delivered in pointer button and keyboard key events.
const (
	BtnLeft  = 272
	BtnRight = 273

	KeyEsc = 1
	KeyQ   = 16
)

// Handler receives translated session events. All callbacks run on the
// goroutine that calls Dispatch.
type Handler interface {
	// Configure reports the compositor's suggested surface size (zero
	// means no suggestion). The returned size is the one the surface
	// will use; returning the current size re-asserts it.
	Configure(w, h int) (int, int)

	// Closed is called when the compositor dismisses the surface.
	Closed()

	PointerEnter(x, y float64)
	PointerLeave()
	PointerMotion(x, y float64)
	PointerButton(button uint32, pressed bool)
	PointerAxis(vertical float64)

	// KeyPressed receives evdev key codes for pressed keys.
	KeyPressed(code uint32)

	// Frame is called when the compositor signals the previous frame
	// was presented and a new one may be drawn.
	Frame()
}

// Session is the connection to the compositor and the single overlay
// surface. Not safe for concurrent use; one event-loop goroutine owns
// it.
type Session struct {
	display  *client.Display
	ctx      *client.Context
	registry *client.Registry

	compositor *client.Compositor
	shm        *client.Shm
	seat       *client.Seat
	pointer    *client.Pointer
	keyboard   *client.Keyboard
	shell      *layershell.LayerShell
	outputs    []*output

	surface      *client.Surface
	layerSurface *layershell.LayerSurface

	pool *shmPool
	w, h int
	x, y int

	handler      Handler
	frameWaiting bool
}

// Connect establishes the Wayland connection and binds the globals the
// overlay needs. It is fatal when the compositor lacks layer-shell.
func Connect(h Handler) (*Session, error) {
	display, err := client.Connect("")
	if err != nil {
		return nil, fmt.Errorf("wayland: connect: %w", err)
	}

	s := &Session{
		display: display,
		ctx:     display.Context(),
		handler: h,
	}

	registry, err := display.GetRegistry()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("wayland: get registry: %w", err)
	}
	s.registry = registry
	registry.SetGlobalHandler(s.handleGlobal)

	// First pass binds globals, second collects output modes.
	if err := s.RoundTrip(); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.RoundTrip(); err != nil {
		s.Close()
		return nil, err
	}

	if s.compositor == nil || s.shm == nil {
		s.Close()
		return nil, fmt.Errorf("%w: missing wl_compositor or wl_shm", ErrProtocol)
	}
	if s.shell == nil {
		s.Close()
		return nil, ErrNoLayerShell
	}
	slogger().Info("wayland session established", "outputs", len(s.outputs))
	return s, nil
}

func (s *Session) handleGlobal(e client.RegistryGlobalEvent) {
	switch e.Interface {
	case "wl_compositor":
		compositor := client.NewCompositor(s.ctx)
		if err := s.registry.Bind(e.Name, e.Interface, e.Version, compositor); err != nil {
			slogger().Error("bind wl_compositor failed", "error", err)
			return
		}
		s.compositor = compositor
	case "wl_shm":
		shm := client.NewShm(s.ctx)
		if err := s.registry.Bind(e.Name, e.Interface, e.Version, shm); err != nil {
			slogger().Error("bind wl_shm failed", "error", err)
			return
		}
		s.shm = shm
	case "wl_seat":
		if s.seat != nil {
			return
		}
		seat := client.NewSeat(s.ctx)
		if err := s.registry.Bind(e.Name, e.Interface, e.Version, seat); err != nil {
			slogger().Error("bind wl_seat failed", "error", err)
			return
		}
		s.seat = seat
		seat.SetCapabilitiesHandler(s.handleSeatCapabilities)
	case "wl_output":
		proxy := client.NewOutput(s.ctx)
		if err := s.registry.Bind(e.Name, e.Interface, e.Version, proxy); err != nil {
			slogger().Error("bind wl_output failed", "error", err)
			return
		}
		s.outputs = append(s.outputs, newOutput(proxy))
	case "zwlr_layer_shell_v1":
		shell := layershell.NewLayerShell(s.ctx)
		if err := s.registry.Bind(e.Name, e.Interface, e.Version, shell); err != nil {
			slogger().Error("bind zwlr_layer_shell_v1 failed", "error", err)
			return
		}
		s.shell = shell
	}
}

func (s *Session) handleSeatCapabilities(e client.SeatCapabilitiesEvent) {
	caps := uint32(e.Capabilities)

	if caps&uint32(client.SeatCapabilityPointer) != 0 && s.pointer == nil {
		pointer, err := s.seat.GetPointer()
		if err != nil {
			slogger().Error("get pointer failed", "error", err)
		} else {
			s.pointer = pointer
			s.attachPointerHandlers(pointer)
		}
	}
	if caps&uint32(client.SeatCapabilityKeyboard) != 0 && s.keyboard == nil {
		keyboard, err := s.seat.GetKeyboard()
		if err != nil {
			slogger().Error("get keyboard failed", "error", err)
		} else {
			s.keyboard = keyboard
			keyboard.SetKeyHandler(func(e client.KeyboardKeyEvent) {
				if uint32(e.State) == uint32(client.KeyboardKeyStatePressed) {
					s.handler.KeyPressed(e.Key)
				}
			})
		}
	}
}

func (s *Session) attachPointerHandlers(pointer *client.Pointer) {
	pointer.SetEnterHandler(func(e client.PointerEnterEvent) {
		s.handler.PointerEnter(e.SurfaceX, e.SurfaceY)
	})
	pointer.SetLeaveHandler(func(e client.PointerLeaveEvent) {
		s.handler.PointerLeave()
	})
	pointer.SetMotionHandler(func(e client.PointerMotionEvent) {
		s.handler.PointerMotion(e.SurfaceX, e.SurfaceY)
	})
	pointer.SetButtonHandler(func(e client.PointerButtonEvent) {
		s.handler.PointerButton(e.Button, uint32(e.State) == uint32(client.PointerButtonStatePressed))
	})
	pointer.SetAxisHandler(func(e client.PointerAxisEvent) {
		if uint32(e.Axis) == uint32(client.PointerAxisVerticalScroll) {
			s.handler.PointerAxis(e.Value)
		}
	})
}

// OutputSize returns the current output's dimensions, falling back to
// 1920x1080 when no mode has been reported.
func (s *Session) OutputSize() (int, int) {
	return outputSize(s.outputs)
}

// Size returns the current surface size.
func (s *Session) Size() (int, int) {
	return s.w, s.h
}

// Position returns the current surface position (top-left margins).
func (s *Session) Position() (int, int) {
	return s.x, s.y
}

// CreateOverlay creates the layer-shell surface: overlay layer,
// anchored top-left with margins as position. The initial commit has no
// buffer attached; the first frame renders after the configure round.
func (s *Session) CreateOverlay(w, h, x, y int) error {
	surface, err := s.compositor.CreateSurface()
	if err != nil {
		return fmt.Errorf("wayland: create surface: %w", err)
	}
	s.surface = surface

	ls, err := s.shell.GetLayerSurface(surface, nil, layershell.LayerShellLayerOverlay, "spin")
	if err != nil {
		return fmt.Errorf("wayland: get layer surface: %w", err)
	}
	s.layerSurface = ls

	ls.SetConfigureHandler(s.handleConfigure)
	ls.SetClosedHandler(func(layershell.LayerSurfaceClosedEvent) {
		slogger().Info("layer surface closed by compositor")
		s.handler.Closed()
	})

	s.w, s.h, s.x, s.y = w, h, x, y
	if err := ls.SetAnchor(layershell.LayerSurfaceAnchorTop | layershell.LayerSurfaceAnchorLeft); err != nil {
		return err
	}
	if err := ls.SetMargin(int32(y), 0, 0, int32(x)); err != nil {
		return err
	}
	if err := ls.SetSize(uint32(w), uint32(h)); err != nil {
		return err
	}
	if err := ls.SetKeyboardInteractivity(layershell.LayerSurfaceKeyboardInteractivityOnDemand); err != nil {
		return err
	}
	return surface.Commit()
}

func (s *Session) handleConfigure(e layershell.LayerSurfaceConfigureEvent) {
	// Ack first so any attach/commit the handler triggers follows it.
	if err := s.layerSurface.AckConfigure(e.Serial); err != nil {
		slogger().Error("ack_configure failed", "error", err)
		return
	}

	w, h := s.handler.Configure(int(e.Width), int(e.Height))
	if w == s.w && h == s.h {
		return
	}
	if err := s.applySize(w, h); err != nil {
		slogger().Error("resize after configure failed", "error", err)
	}
}

// Move repositions the surface by updating the anchor margins.
func (s *Session) Move(x, y int) error {
	s.x, s.y = x, y
	if err := s.layerSurface.SetMargin(int32(y), 0, 0, int32(x)); err != nil {
		return err
	}
	return s.surface.Commit()
}

// Resize requests a new surface size. The shm pool is recreated lazily
// on the next Present.
func (s *Session) Resize(w, h int) error {
	if w == s.w && h == s.h {
		return nil
	}
	return s.applySize(w, h)
}

func (s *Session) applySize(w, h int) error {
	s.w, s.h = w, h
	if s.pool != nil {
		s.pool.destroy()
		s.pool = nil
	}
	if err := s.layerSurface.SetSize(uint32(w), uint32(h)); err != nil {
		return err
	}
	return s.surface.Commit()
}

// Present renders one frame via render into a free shm slot, then
// attaches, damages, and commits it.
func (s *Session) Present(render func(canvas []byte) error) error {
	if s.pool == nil {
		pool, err := newShmPool(s.shm, s.w, s.h)
		if err != nil {
			return err
		}
		s.pool = pool
	}

	buffer, canvas, ok := s.pool.acquire()
	if !ok {
		return ErrNoFreeBuffer
	}
	if err := render(canvas); err != nil {
		// Nothing was attached, so no release event will free the slot.
		s.pool.release(buffer)
		return err
	}

	if err := s.surface.Attach(buffer, 0, 0); err != nil {
		return fmt.Errorf("wayland: attach: %w", err)
	}
	if err := s.surface.Damage(0, 0, int32(s.w), int32(s.h)); err != nil {
		return fmt.Errorf("wayland: damage: %w", err)
	}
	return s.surface.Commit()
}

// ScheduleFrame requests a frame callback; Handler.Frame fires when the
// compositor is ready for the next frame. At most one request is in
// flight.
func (s *Session) ScheduleFrame() error {
	if s.frameWaiting {
		return nil
	}
	cb, err := s.surface.Frame()
	if err != nil {
		return fmt.Errorf("wayland: frame request: %w", err)
	}
	s.frameWaiting = true
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		s.frameWaiting = false
		s.handler.Frame()
	})
	return s.surface.Commit()
}

// Dispatch blocks for the next batch of events and runs their handlers.
func (s *Session) Dispatch() error {
	return s.ctx.Dispatch()
}

// RoundTrip flushes pending requests and waits until the compositor has
// processed them all.
func (s *Session) RoundTrip() error {
	cb, err := s.display.Sync()
	if err != nil {
		return fmt.Errorf("wayland: sync: %w", err)
	}
	done := false
	cb.SetDoneHandler(func(client.CallbackDoneEvent) {
		done = true
	})
	for !done {
		if err := s.ctx.Dispatch(); err != nil {
			return fmt.Errorf("wayland: dispatch: %w", err)
		}
	}
	return nil
}

// Close tears down the surface, buffers, and connection.
func (s *Session) Close() {
	if s.pool != nil {
		s.pool.destroy()
		s.pool = nil
	}
	if s.layerSurface != nil {
		s.layerSurface.Destroy()
		s.layerSurface = nil
	}
	if s.surface != nil {
		s.surface.Destroy()
		s.surface = nil
	}
	if s.ctx != nil {
		s.ctx.Close()
		s.ctx = nil
	}
}
