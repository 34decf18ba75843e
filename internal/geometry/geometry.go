// Package geometry provides the pure math behind the crop editor:
// cover-fit sizing, translation bounds, rubber-band resistance, and the
// mapping from a display transform back to source pixel coordinates.
// All functions are stateless and safe to call from the gesture path.
package geometry

import (
	"errors"
	"image"
	"math"
)

// ErrDegenerateCrop is returned when a computed crop rectangle ends up with
// a non-positive width or height. Callers fall back to the untransformed
// source image.
var ErrDegenerateCrop = errors.New("degenerate crop rectangle")

// Resistance is the compression factor applied to the part of a drag that
// reaches past the translation bounds.
const Resistance = 0.3

// Size is a width/height pair in either display points or source pixels.
type Size struct {
	W float64
	H float64
}

// CoverFit scales a source image so it fully covers the frame while keeping
// the source aspect ratio. Sources wider than the frame fit by height,
// taller sources fit by width, so the frame never shows letterboxing.
// Degenerate input (any dimension <= 0) yields the frame size as a safe
// fallback.
func CoverFit(sourceW, sourceH, frameW, frameH float64) (float64, float64) {
	if sourceW <= 0 || sourceH <= 0 || frameW <= 0 || frameH <= 0 {
		return frameW, frameH
	}

	sourceAspect := sourceW / sourceH
	frameAspect := frameW / frameH

	if sourceAspect > frameAspect {
		// Wider than the frame: fill the height, overflow horizontally.
		return frameH * sourceAspect, frameH
	}
	// Taller than (or equal to) the frame: fill the width.
	return frameW, frameW / sourceAspect
}

// MaxTranslation returns the largest translation per axis that still keeps
// the scaled image covering the frame. Translation is measured from the
// center, so the bound is half the size difference.
func MaxTranslation(scale, displayW, displayH, frameW, frameH float64) (float64, float64) {
	maxX := math.Max(0, (displayW*scale-frameW)/2)
	maxY := math.Max(0, (displayH*scale-frameH)/2)
	return maxX, maxY
}

// RubberBand applies elastic resistance to an out-of-bounds offset. Inside
// [-max, max] it is the identity; past either boundary the excess is
// compressed by Resistance. Only used while a gesture is in flight, never
// for committed values.
func RubberBand(offset, max float64) float64 {
	if offset > max {
		return max + (offset-max)*Resistance
	}
	if offset < -max {
		return -max + (offset+max)*Resistance
	}
	return offset
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CropRect converts a display transform back into pixel coordinates of the
// original image: the returned rectangle is exactly the region of the source
// visible through the frame at the given scale and translation.
//
// The translation describes how far the scaled image has been shifted from
// center, so (-translateX/scale, -translateY/scale) is the point of the
// unscaled display image sitting at the frame's center.
func CropRect(scale, translateX, translateY float64, display, source, frame Size) (image.Rectangle, error) {
	if scale <= 0 || display.W <= 0 || display.H <= 0 || source.W <= 0 || source.H <= 0 {
		return image.Rectangle{}, ErrDegenerateCrop
	}

	scaleToSourceX := source.W / display.W
	scaleToSourceY := source.H / display.H

	visibleCenterX := -translateX / scale
	visibleCenterY := -translateY / scale

	// Size of the visible region, first in display points, then in source
	// pixels, never larger than the source itself.
	cropW := math.Min(frame.W/scale*scaleToSourceX, source.W)
	cropH := math.Min(frame.H/scale*scaleToSourceY, source.H)

	originX := source.W/2 + visibleCenterX*scaleToSourceX - cropW/2
	originY := source.H/2 + visibleCenterY*scaleToSourceY - cropH/2
	originX = Clamp(originX, 0, source.W-cropW)
	originY = Clamp(originY, 0, source.H-cropH)

	x := int(math.Round(originX))
	y := int(math.Round(originY))
	w := int(math.Round(cropW))
	h := int(math.Round(cropH))
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, ErrDegenerateCrop
	}

	return image.Rect(x, y, x+w, y+h), nil
}
