// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pyramid

// Resample produces a targetW x targetH frame from the best pyramid
// level, with the opacity multiply fused into the sampling pass.
//
// In ModeKeepAspect the target box is treated as a bound: one axis is
// shrunk so the output preserves the source aspect ratio. The returned
// buffer carries the final dimensions.
//
// Opacity is clamped to [0, 1] and applied to all four channels, since
// buffers are premultiplied.
func (p *Pyramid) Resample(targetW, targetH int, mode Mode, q Quality, opacity float64) *Buffer {
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	if mode == ModeKeepAspect {
		targetW, targetH = p.fitAspect(targetW, targetH)
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}

	src := p.levels[p.SelectLevel(targetW, targetH)]
	if q == QualityFinal {
		return resampleBilinear(src, targetW, targetH, opacity)
	}
	return resampleNearest(src, targetW, targetH, opacity)
}

// fitAspect shrinks one axis of the target box so the result matches the
// level-0 aspect ratio. The smaller of the two implied scale factors wins,
// so the output always fits inside the requested box.
func (p *Pyramid) fitAspect(tw, th int) (int, int) {
	sw, sh := p.SourceSize()
	sx := float64(tw) / float64(sw)
	sy := float64(th) / float64(sh)
	if sx < sy {
		th = int(float64(sh)*sx + 0.5)
	} else {
		tw = int(float64(sw)*sy + 0.5)
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	return tw, th
}

// resampleNearest samples with 16.16 fixed-point stepping. The half-step
// start makes each output pixel take the source pixel nearest its center,
// matching floor((x+0.5)*srcW/dstW).
func resampleNearest(src *Buffer, tw, th int, opacity float64) *Buffer {
	dst := NewBuffer(tw, th)
	xstep := (src.W << 16) / tw
	ystep := (src.H << 16) / th
	alpha := uint32(opacity*256 + 0.5)

	fy := ystep / 2
	for y := 0; y < th; y++ {
		sy := fy >> 16
		if sy >= src.H {
			sy = src.H - 1
		}
		srow := src.Pix[sy*src.W*4 : (sy+1)*src.W*4]
		drow := dst.Pix[y*tw*4 : (y+1)*tw*4]
		fx := xstep / 2
		if alpha >= 256 {
			for x := 0; x < tw; x++ {
				s := (fx >> 16) * 4
				copy(drow[x*4:x*4+4], srow[s:s+4])
				fx += xstep
			}
		} else {
			for x := 0; x < tw; x++ {
				s := (fx >> 16) * 4
				o := x * 4
				drow[o+0] = byte(uint32(srow[s+0]) * alpha >> 8)
				drow[o+1] = byte(uint32(srow[s+1]) * alpha >> 8)
				drow[o+2] = byte(uint32(srow[s+2]) * alpha >> 8)
				drow[o+3] = byte(uint32(srow[s+3]) * alpha >> 8)
				fx += xstep
			}
		}
		fy += ystep
	}
	return dst
}

// resampleBilinear samples with center-aligned bilinear filtering.
// Source coordinate for output x is (x+0.5)*srcW/dstW - 0.5, clamped to
// the image bounds. At identity scale the fractional weights vanish and
// the source bytes pass through unchanged.
func resampleBilinear(src *Buffer, tw, th int, opacity float64) *Buffer {
	dst := NewBuffer(tw, th)
	xr := float64(src.W) / float64(tw)
	yr := float64(src.H) / float64(th)

	// Precompute horizontal taps: left index and weight per output column.
	x0s := make([]int, tw)
	wxs := make([]float64, tw)
	for x := 0; x < tw; x++ {
		fx := (float64(x)+0.5)*xr - 0.5
		if fx < 0 {
			fx = 0
		}
		x0 := int(fx)
		if x0 > src.W-1 {
			x0 = src.W - 1
		}
		x0s[x] = x0
		wxs[x] = fx - float64(x0)
	}

	for y := 0; y < th; y++ {
		fy := (float64(y)+0.5)*yr - 0.5
		if fy < 0 {
			fy = 0
		}
		y0 := int(fy)
		if y0 > src.H-1 {
			y0 = src.H - 1
		}
		wy := fy - float64(y0)
		y1 := y0 + 1
		if y1 > src.H-1 {
			y1 = src.H - 1
		}

		row0 := src.Pix[y0*src.W*4:]
		row1 := src.Pix[y1*src.W*4:]
		out := dst.Pix[y*tw*4 : (y+1)*tw*4]
		for x := 0; x < tw; x++ {
			x0 := x0s[x]
			x1 := x0 + 1
			if x1 > src.W-1 {
				x1 = src.W - 1
			}
			wx := wxs[x]
			s00 := x0 * 4
			s01 := x1 * 4
			o := x * 4
			for c := 0; c < 4; c++ {
				top := float64(row0[s00+c])*(1-wx) + float64(row0[s01+c])*wx
				bot := float64(row1[s00+c])*(1-wx) + float64(row1[s01+c])*wx
				out[o+c] = byte((top*(1-wy)+bot*wy)*opacity + 0.5)
			}
		}
	}
	return dst
}
