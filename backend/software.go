// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/gogpu/spin/menu"
	"github.com/gogpu/spin/pyramid"
)

func init() {
	Register(BackendSoftware, newSoftware)
}

// softwareBackend renders on the CPU: it resamples through the image
// pyramid and blits straight into the shm canvas.
//
// It keeps exactly one cached scaled frame so move drags and repeated
// commits at an unchanged size cost a memcpy. Any change in size or
// presentation parameters recomputes the cache. The GPU backend keeps no
// such cache.
type softwareBackend struct {
	pyr  *pyramid.Pyramid
	w, h int

	cached  *pyramid.Buffer
	cachedP Params
}

func newSoftware() (Backend, error) {
	return &softwareBackend{}, nil
}

func (s *softwareBackend) Name() string { return BackendSoftware }

func (s *softwareBackend) SetSource(src *pyramid.Buffer) error {
	pyr, err := pyramid.Build(src)
	if err != nil {
		return err
	}
	s.pyr = pyr
	s.cached = nil
	slogger().Debug("software: pyramid built", "levels", pyr.Levels())
	return nil
}

func (s *softwareBackend) Resize(w, h int) error {
	s.w, s.h = w, h
	return nil
}

func (s *softwareBackend) Present(canvas []byte, p Params, overlay *menu.Overlay) error {
	if s.pyr == nil {
		return ErrNoSource
	}
	if len(canvas) < s.w*s.h*4 {
		return ErrCanvasTooSmall
	}
	if p.Opacity < 0 {
		p.Opacity = 0
	} else if p.Opacity > 1 {
		p.Opacity = 1
	}

	if s.cached == nil || s.cached.W != s.w || s.cached.H != s.h || s.cachedP != p {
		s.cached = s.pyr.Resample(s.w, s.h, pyramid.ModeFree, p.Quality, p.Opacity)
		s.cachedP = p
	}
	copy(canvas[:s.w*s.h*4], s.cached.Pix)

	if overlay != nil {
		blitOverlay(canvas, s.w, s.h, overlay)
	}
	return nil
}

func (s *softwareBackend) Invalidate() {
	s.cached = nil
}

func (s *softwareBackend) Close() {
	s.pyr = nil
	s.cached = nil
}

// blitOverlay copies the menu buffer into the canvas at its rect,
// clipped to the canvas bounds. The menu is opaque so a row copy is
// enough; no blending.
func blitOverlay(canvas []byte, w, h int, ov *menu.Overlay) {
	for row := 0; row < ov.Buf.H; row++ {
		dy := ov.Y + row
		if dy < 0 || dy >= h {
			continue
		}
		dx := ov.X
		sw := ov.Buf.W
		sx := 0
		if dx < 0 {
			sx = -dx
			sw -= sx
			dx = 0
		}
		if dx+sw > w {
			sw = w - dx
		}
		if sw <= 0 {
			continue
		}
		src := ov.Buf.Pix[(row*ov.Buf.W+sx)*4 : (row*ov.Buf.W+sx+sw)*4]
		dst := canvas[(dy*w+dx)*4 : (dy*w+dx+sw)*4]
		copy(dst, src)
	}
}
