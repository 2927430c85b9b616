package wayland

import "math"

// Surface size limits. Every size the session commits passes through
// ClampSize with these bounds.
const (
	// MinSize is the smallest surface dimension in pixels.
	MinSize = 50

	// MaxSize is the absolute cap on either surface dimension.
	MaxSize = 4096

	// MaxBufferBytes caps the shm buffer at 64 MiB. Oversized requests
	// shrink both axes by the square root of the overshoot so the
	// aspect holds.
	MaxBufferBytes = 64 * 1024 * 1024

	// initialFraction is the share of each output dimension the surface
	// may occupy at startup.
	initialFraction = 0.10
)

// InitialSize fits an image into the startup box, a tenth of the output
// in each dimension. The image is shown at native size when it already
// fits. Otherwise it is shrunk aspect-preserved until the less
// constrained axis meets its bound, so a 4000x3000 image on a 1920x1080
// output opens at 192x144. Images are never scaled up.
func InitialSize(imgW, imgH, outW, outH int) (int, int) {
	if imgW <= 0 || imgH <= 0 {
		return MinSize, MinSize
	}
	maxW := float64(outW) * initialFraction
	maxH := float64(outH) * initialFraction

	if float64(imgW) <= maxW && float64(imgH) <= maxH {
		return imgW, imgH
	}

	sx := maxW / float64(imgW)
	sy := maxH / float64(imgH)
	scale := sx
	if sy > sx {
		scale = sy
	}
	if scale > 1 {
		scale = 1
	}
	w := int(float64(imgW)*scale + 0.5)
	h := int(float64(imgH)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// ClampSize bounds a requested surface size: at least MinSize per axis,
// at most the output dimension and MaxSize, and at most MaxBufferBytes
// of BGRA pixels.
func ClampSize(w, h, outW, outH int) (int, int) {
	maxW := outW
	if maxW < MinSize {
		maxW = MinSize
	}
	if maxW > MaxSize {
		maxW = MaxSize
	}
	maxH := outH
	if maxH < MinSize {
		maxH = MinSize
	}
	if maxH > MaxSize {
		maxH = MaxSize
	}

	w = clampInt(w, MinSize, maxW)
	h = clampInt(h, MinSize, maxH)

	if need := w * h * 4; need > MaxBufferBytes {
		scale := math.Sqrt(float64(MaxBufferBytes) / float64(need))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		slogger().Info("surface size capped to fit buffer budget", "w", w, "h", h)
	}
	return w, h
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
