// Package backend provides the two render backends (GPU via wgpu, and
// software) behind one contract. Callers hold an opaque Backend and
// dispatch through it; both implementations are substitutable and
// testable in isolation with a fake.
package backend

import (
	"errors"

	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoSource is returned by Present before SetSource.
	ErrNoSource = errors.New("backend: no source image set")

	// ErrBackendLost is returned when a backend failed during Present and a
	// single reinitialization attempt also failed. Fatal for the caller.
	ErrBackendLost = errors.New("backend: render backend lost")

	// ErrCanvasTooSmall is returned when the canvas slice cannot hold the
	// configured surface size.
	ErrCanvasTooSmall = errors.New("backend: canvas smaller than configured size")
)

// Params are the per-frame presentation parameters.
type Params struct {
	// Quality selects the resampling filter for this frame.
	Quality pyramid.Quality

	// Opacity is the frame alpha multiplier, clamped to [0, 1].
	Opacity float64
}

// Backend renders frames into a caller-provided BGRA canvas that backs
// the committed wl_shm buffer.
//
// The call sequence is SetSource once, then any interleaving of Resize
// and Present, then Close. Present composites exactly one frame sized to
// the last Resize into canvas; the caller attaches and commits it.
type Backend interface {
	// Name returns the backend identifier ("gpu" or "software").
	Name() string

	// SetSource hands the decoded image to the backend, transferring
	// ownership: the caller must not touch src afterwards. The GPU
	// backend uploads it to a texture in bounded row-band chunks; the
	// software backend builds its image pyramid from it.
	SetSource(src *pyramid.Buffer) error

	// Resize reconfigures render targets for a w x h surface. It never
	// resamples the image; the next Present does.
	Resize(w, h int) error

	// Present renders one frame into canvas (len >= w*h*4 for the
	// configured size) and composites overlay at its rect when non-nil.
	Present(canvas []byte, p Params, overlay *menu.Overlay) error

	// Invalidate drops any cached frame so the next Present recomputes
	// from the source. No-op for backends without a frame cache.
	Invalidate()

	// Close releases all backend resources.
	Close()
}

// Kind selects which backend Init prefers.
type Kind int

const (
	// KindAuto tries the GPU backend first and falls back to software.
	KindAuto Kind = iota

	// KindGPU behaves like KindAuto. GPU bring-up failure is never fatal.
	KindGPU

	// KindCPU forces the software backend.
	KindCPU
)

// Init returns a ready backend. GPU initialization is attempted first
// unless KindCPU forces software; any GPU bring-up failure downgrades to
// software with a warning log and is never surfaced as an error.
func Init(preferred Kind) (Backend, error) {
	if preferred != KindCPU {
		if factory := Get(BackendGPU); factory != nil {
			b, err := factory()
			if err == nil {
				slogger().Info("backend: using GPU renderer")
				return b, nil
			}
			slogger().Warn("backend: GPU init failed, falling back to software", "error", err)
		}
	}

	factory := Get(BackendSoftware)
	if factory == nil {
		return nil, ErrBackendNotAvailable
	}
	b, err := factory()
	if err != nil {
		return nil, err
	}
	slogger().Info("backend: using software renderer")
	return b, nil
}
