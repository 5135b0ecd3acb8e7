// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "golang.org/x/image/math/f32"

// PointXYA is a device-space position carrying coverage in A (0..1).
type PointXYA struct {
	X, Y, A float32
}

// GeometrySink receives the output of a Rasterizer.
//
// All coordinates are device pixels with pixel centres at half integers.
// Vertical ranges are half open: a trapezoid from yTop to yBottom covers
// the pixel rows yTop <= y < yBottom.
type GeometrySink interface {
	// AddComplexScan receives the coverage of pixel row pixelY. The list
	// is only valid for the duration of the call.
	AddComplexScan(pixelY int32, intervals *CoverageInterval) error

	// AddTrapezoid receives a band whose left and right edges are lines.
	// The expand deltas are the half widths of the anti-aliasing ramps
	// centred on each edge: coverage is 0 at x-delta and 1 at x+delta on
	// the left edge, mirrored on the right edge.
	AddTrapezoid(
		yTop, xTopLeft, xTopRight,
		yBottom, xBottomLeft, xBottomRight,
		leftExpandDelta, rightExpandDelta float32,
	) error

	// AddParallelogram receives a fully covered quad given in strip order.
	AddParallelogram(p [4]f32.Vec2) error

	// AddLine receives a one pixel tall segment with per-vertex coverage.
	AddLine(v0, v1 PointXYA) error

	// AddVertex appends a fully covered vertex and returns its index for
	// use with AddTriangle.
	AddVertex(p f32.Vec2) (uint16, error)

	// AddTriangle appends a triangle of vertices returned by AddVertex.
	AddTriangle(i1, i2, i3 uint16) error

	// IsEmpty reports whether no geometry has been received.
	IsEmpty() bool
}
