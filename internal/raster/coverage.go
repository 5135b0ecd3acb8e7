// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "math"

// CoverageInterval is one run of a complex scan row: the pixels
// [PixelX, Next.PixelX) all have the same Coverage, in [0, MaxCoverage].
// The list ends with a sentinel whose PixelX is math.MaxInt32.
type CoverageInterval struct {
	Next     *CoverageInterval
	PixelX   int32
	Coverage int32
}

// IsSentinel reports whether the interval terminates its list.
func (c *CoverageInterval) IsSentinel() bool {
	return c.PixelX == math.MaxInt32
}

// intervalChunkSize is the number of intervals allocated at once.
// Chunks are never reallocated so interval pointers stay valid.
const intervalChunkSize = 128

// CoverageBuffer accumulates sample coverage for one pixel row.
//
// Spans from up to SubpixelCount sample rows are added to a sorted list
// of intervals; overlapping contributions add up. The buffer keeps its
// interval chunks across Reset calls.
type CoverageBuffer struct {
	head, tail CoverageInterval

	chunks [][]CoverageInterval
	chunk  int // index of the chunk being filled
	used   int // intervals used in that chunk

	// clip bounds in sample columns
	minX, maxX int32

	// cursor is the last interval touched by the current row fill.
	cursor *CoverageInterval
}

// NewCoverageBuffer creates an empty buffer.
func NewCoverageBuffer() *CoverageBuffer {
	c := &CoverageBuffer{}
	c.Reset()
	return c
}

// SetClip limits accumulated spans to the pixel columns [minX, maxX).
func (c *CoverageBuffer) SetClip(minX, maxX int32) {
	c.minX = minX * SubpixelCount
	c.maxX = maxX * SubpixelCount
}

// Reset clears all intervals.
func (c *CoverageBuffer) Reset() {
	c.head = CoverageInterval{PixelX: math.MinInt32, Next: &c.tail}
	c.tail = CoverageInterval{PixelX: math.MaxInt32}
	c.chunk = 0
	c.used = 0
	c.cursor = &c.head
}

// Intervals returns the first interval of the accumulated row. The
// returned list stays valid until the next Reset.
func (c *CoverageBuffer) Intervals() *CoverageInterval {
	return c.head.Next
}

// IsEmpty reports whether nothing has been accumulated since Reset.
func (c *CoverageBuffer) IsEmpty() bool {
	return c.head.Next == &c.tail
}

func (c *CoverageBuffer) alloc() *CoverageInterval {
	if c.chunk == len(c.chunks) {
		c.chunks = append(c.chunks, make([]CoverageInterval, intervalChunkSize))
	}
	iv := &c.chunks[c.chunk][c.used]
	c.used++
	if c.used == intervalChunkSize {
		c.chunk++
		c.used = 0
	}
	return iv
}

// split makes sure an interval starts at pixel x, searching forward from
// cur, and returns that interval.
func (c *CoverageBuffer) split(cur *CoverageInterval, x int32) *CoverageInterval {
	for cur.Next.PixelX <= x {
		cur = cur.Next
	}
	if cur.PixelX == x {
		return cur
	}
	iv := c.alloc()
	*iv = CoverageInterval{Next: cur.Next, PixelX: x, Coverage: cur.Coverage}
	cur.Next = iv
	return iv
}

// addPixels adds cov to every pixel in [x0, x1).
func (c *CoverageBuffer) addPixels(x0, x1, cov int32) {
	if x0 >= x1 {
		return
	}
	if c.cursor.PixelX > x0 {
		c.cursor = &c.head
	}
	cur := c.split(c.cursor, x0)
	end := c.split(cur, x1)
	for ; cur != end; cur = cur.Next {
		cur.Coverage += cov
	}
	c.cursor = end
}

// addSpan adds one sample row worth of coverage for the sample columns
// [x0, x1).
func (c *CoverageBuffer) addSpan(x0, x1 int32) {
	x0 = max(x0, c.minX)
	x1 = min(x1, c.maxX)
	if x0 >= x1 {
		return
	}
	p0 := x0 >> SubpixelShift
	p1 := x1 >> SubpixelShift
	if p0 == p1 {
		c.addPixels(p0, p0+1, x1-x0)
		return
	}
	c.addPixels(p0, p0+1, SubpixelCount-(x0&SubpixelMask))
	c.addPixels(p0+1, p1, SubpixelCount)
	if rem := x1 & SubpixelMask; rem != 0 {
		c.addPixels(p1, p1+1, rem)
	}
}

// FillEdgesAlternating accumulates one sample row using the even-odd
// rule: consecutive edge pairs bound the covered spans.
func (c *CoverageBuffer) FillEdgesAlternating(active []*Edge) {
	c.cursor = &c.head
	for i := 0; i+1 < len(active); i += 2 {
		c.addSpan(active[i].X, active[i+1].X)
	}
}

// FillEdgesWinding accumulates one sample row using the non-zero rule.
func (c *CoverageBuffer) FillEdgesWinding(active []*Edge) {
	c.cursor = &c.head
	winding := int32(0)
	var start int32
	for _, e := range active {
		if winding == 0 {
			start = e.X
		}
		winding += e.WindingDirection
		if winding == 0 {
			c.addSpan(start, e.X)
		}
	}
}
