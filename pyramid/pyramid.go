// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pyramid builds and resamples mipmap-style image pyramids.
//
// Level 0 is the decoded source image. Each further level halves the
// previous one with a 2x2 box filter until the shorter side would drop
// below a minimum or a fixed level count is reached. Display-size frames
// are produced by selecting the smallest level that still covers the
// target and resampling it down, so extreme downscales stay cheap and
// alias-free.
//
// All buffers are tightly packed premultiplied BGRA, the byte order of
// Wayland ARGB8888 on little-endian hosts.
package pyramid

import "errors"

// Package errors.
var (
	// ErrTooLarge is returned by Build when the source exceeds MaxSourcePixels.
	ErrTooLarge = errors.New("pyramid: source image too large")

	// ErrEmptySource is returned by Build for nil or zero-sized input.
	ErrEmptySource = errors.New("pyramid: empty source image")
)

const (
	// MaxSourcePixels is the largest source accepted by Build.
	MaxSourcePixels = 16384 * 16384

	// minLevelSide stops level generation once the shorter side of the
	// next level would fall below it.
	minLevelSide = 32

	// maxExtraLevels caps the number of levels generated beyond level 0.
	maxExtraLevels = 8
)

// Buffer is a tightly packed premultiplied BGRA pixel buffer.
// Stride is always W*4.
type Buffer struct {
	W, H int
	Pix  []byte
}

// NewBuffer allocates a zeroed (fully transparent) buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]byte, w*h*4)}
}

// Mode selects how a resample target box is interpreted.
type Mode int

const (
	// ModeFree stretches the image to the exact target box.
	ModeFree Mode = iota

	// ModeKeepAspect shrinks one axis of the target box so the output
	// preserves the source aspect ratio.
	ModeKeepAspect
)

// Quality selects the resampling filter.
type Quality int

const (
	// QualityFast is nearest-neighbor sampling, used during active drags.
	QualityFast Quality = iota

	// QualityFinal is bilinear sampling, used for settled frames.
	QualityFinal
)

// Pyramid holds the source image and its downsampled levels.
// A Pyramid is immutable after Build and safe to share by reference.
type Pyramid struct {
	levels []*Buffer
}

// Build constructs the pyramid from src. The source buffer becomes
// level 0 and is owned by the pyramid afterwards; callers must not
// mutate it.
func Build(src *Buffer) (*Pyramid, error) {
	if src == nil || src.W <= 0 || src.H <= 0 {
		return nil, ErrEmptySource
	}
	// The ceiling fires on dimensions alone, before the pixel data is
	// inspected or any level allocated.
	if src.W*src.H > MaxSourcePixels {
		return nil, ErrTooLarge
	}
	if len(src.Pix) < src.W*src.H*4 {
		return nil, ErrEmptySource
	}

	levels := []*Buffer{src}
	cur := src
	for i := 0; i < maxExtraLevels; i++ {
		nw := (cur.W + 1) / 2
		nh := (cur.H + 1) / 2
		if min(nw, nh) < minLevelSide {
			break
		}
		next := downsample(cur, nw, nh)
		levels = append(levels, next)
		cur = next
	}
	return &Pyramid{levels: levels}, nil
}

// Levels returns the number of pyramid levels including level 0.
func (p *Pyramid) Levels() int { return len(p.levels) }

// Level returns the buffer for level i. Level 0 is the source image.
func (p *Pyramid) Level(i int) *Buffer { return p.levels[i] }

// SourceSize returns the dimensions of level 0.
func (p *Pyramid) SourceSize() (w, h int) {
	return p.levels[0].W, p.levels[0].H
}

// SelectLevel returns the smallest level whose dimensions are at least
// targetW x targetH in both axes. If even level 0 is smaller than the
// target (upscaling), level 0 is returned.
func (p *Pyramid) SelectLevel(targetW, targetH int) int {
	for i := len(p.levels) - 1; i > 0; i-- {
		if p.levels[i].W >= targetW && p.levels[i].H >= targetH {
			return i
		}
	}
	return 0
}

// downsample halves src into a dstW x dstH buffer with a 2x2 box filter.
// Odd source edges clamp the second tap to the last row/column.
func downsample(src *Buffer, dstW, dstH int) *Buffer {
	dst := NewBuffer(dstW, dstH)
	for y := 0; y < dstH; y++ {
		sy0 := y * 2
		sy1 := sy0 + 1
		if sy1 >= src.H {
			sy1 = src.H - 1
		}
		row0 := src.Pix[sy0*src.W*4:]
		row1 := src.Pix[sy1*src.W*4:]
		out := dst.Pix[y*dstW*4:]
		for x := 0; x < dstW; x++ {
			sx0 := x * 2 * 4
			sx1 := sx0 + 4
			if x*2+1 >= src.W {
				sx1 = sx0
			}
			o := x * 4
			for c := 0; c < 4; c++ {
				sum := uint32(row0[sx0+c]) + uint32(row0[sx1+c]) +
					uint32(row1[sx0+c]) + uint32(row1[sx1+c])
				out[o+c] = byte((sum + 2) / 4)
			}
		}
	}
	return dst
}
