// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "image"

// Trapezoid fast path.
//
// A band of whole pixel rows can be drawn as one trapezoid per span when
// the anti-aliasing ramps of neighbouring edges stay apart over the whole
// band. Each ramp is centred on the edge at the pixel boundary and is
// 1+|slope| pixels wide. The separation test below works on integer
// bounds in 1/64 pixel units and only ever under-estimates the gap, so a
// band it accepts can never overlap itself.

// rampMargin is the minimum accepted gap between ramps, in 1/64 pixel.
const rampMargin = 1

// rampBounds returns a lower bound on the left end and an upper bound on
// the right end of the ramp of e, in 1/64 pixel units, on the pixel
// boundary above the row n rows below the current one.
func rampBounds(e *Edge, n int32) (lo, hi int64) {
	x, errTerm := e.stepsAhead(n)
	d := int64(e.ErrorDown)
	up := int64(e.ErrorUp)
	dx := int64(e.Dx)

	// 8*position = 8X - 4Dx + (8*Error - 4*ErrorUp)/ErrorDown
	base := 8*int64(x) - 4*dx
	t := 8*int64(errTerm) - 4*up
	floor8b := base + floorDiv(t, d)
	ceil8b := base + ceilDiv(t, d)

	// 8*halfWidth = 32 + 32*|Dx + ErrorUp/ErrorDown|
	var width int64
	if dx >= 0 {
		width = 32 + 32*dx + ceilDiv(32*up, d)
	} else {
		width = 32 - 32*dx - floorDiv(32*up, d)
	}
	return floor8b - width, ceil8b + width
}

// rampsSeparated reports whether the ramps of all adjacent active edges
// keep at least rampMargin apart n rows below the current row.
func rampsSeparated(active []*Edge, n int32) bool {
	_, prevHi := rampBounds(active[0], n)
	for _, e := range active[1:] {
		lo, hi := rampBounds(e, n)
		if lo-prevHi < rampMargin {
			return false
		}
		prevHi = hi
	}
	return true
}

// rampsInClip reports whether every ramp stays between the left and right
// clip borders n rows below the current row. Partially clipped edges are
// not collapsed, so their ramps would otherwise reach past the clip. A
// vertical edge may sit on a border: its ramp then ends with zero coverage
// on the first pixel centre outside.
func rampsInClip(active []*Edge, n int32, clip image.Rectangle) bool {
	// In rampBounds units the pixel boundary x lies at 64x - 4.
	minX := 64*int64(clip.Min.X) - 4
	maxX := 64*int64(clip.Max.X) - 4
	for _, e := range active {
		lo, hi := rampBounds(e, n)
		if e.Dx == 0 && e.ErrorUp == 0 {
			lo, hi = lo+32, hi-32
		}
		if lo < minX || hi > maxX {
			return false
		}
	}
	return true
}

// ComputeTrapezoidsEndScan returns the sample row down to which the active
// edges may be emitted as trapezoids starting at the pixel-aligned row y.
// The result is a multiple of SubpixelCount no greater than limit and no
// greater than the end of any active edge. It returns y when no whole
// pixel row qualifies.
//
// For the non-zero rule every span must be bounded by edges of opposite
// direction, otherwise even-odd trapezoids would not match the fill.
func (r *Rasterizer) ComputeTrapezoidsEndScan(y, limit int32, fill FillMode) int32 {
	active := r.active
	yEnd := limit
	for _, e := range active {
		yEnd = min(yEnd, e.EndY)
	}
	yEnd &^= SubpixelMask
	if yEnd-y < SubpixelCount {
		return y
	}

	if fill == FillWinding {
		for i := 0; i+1 < len(active); i += 2 {
			if active[i].WindingDirection+active[i+1].WindingDirection != 0 {
				return y
			}
		}
	}

	// Edges are straight, so ramps and the gaps between them move
	// linearly and checking both ends of a band covers every row in it.
	clip := r.cfg.Clip
	if !rampsSeparated(active, 0) || !rampsInClip(active, 0, clip) {
		return y
	}
	for rows := (yEnd - y) / SubpixelCount; rows > 0; rows /= 2 {
		n := rows * SubpixelCount
		if rampsSeparated(active, n) && rampsInClip(active, n, clip) {
			return y + n
		}
	}
	return y
}

// OutputTrapezoids emits one trapezoid per span of the active list for
// the pixel rows between sample rows y and yEnd.
func (r *Rasterizer) OutputTrapezoids(y, yEnd int32, sink GeometrySink) error {
	n := yEnd - y
	yTop := float32(y / SubpixelCount)
	yBottom := float32(yEnd / SubpixelCount)
	active := r.active
	for i := 0; i+1 < len(active); i += 2 {
		left, right := active[i], active[i+1]

		lx, le := left.stepsAhead(n)
		rx, re := right.stepsAhead(n)
		err := sink.AddTrapezoid(
			yTop,
			float32(left.boundaryX(left.X, left.Error)),
			float32(right.boundaryX(right.X, right.Error)),
			yBottom,
			float32(left.boundaryX(lx, le)),
			float32(right.boundaryX(rx, re)),
			float32(left.expandDelta()),
			float32(right.expandDelta()),
		)
		if err != nil {
			return err
		}
		r.stats.Trapezoids++
	}
	r.stats.TrapezoidBands++
	return nil
}
