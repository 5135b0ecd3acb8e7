// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"slices"
)

// Point represents a 2D point (internal copy to avoid import cycle).
type Point struct {
	X, Y float64
}

// Edge is one y-monotonic boundary segment of a shape in sweep space.
//
// The edge position on the current sample row is X + Error/ErrorDown
// sample columns, where X is the first sample column at or right of the
// edge and Error lies in (-ErrorDown, 0]. Stepping one sample row adds
// Dx + ErrorUp/ErrorDown to that position without floating point.
type Edge struct {
	X         int32 // first covered sample column on the current row
	Dx        int32 // whole columns advanced per row
	Error     int32 // fractional position numerator, in (-ErrorDown, 0]
	ErrorUp   int32 // fractional advance per row
	ErrorDown int32 // fractional denominator (16 * dy in 28.4)

	StartY int32 // first sample row
	EndY   int32 // exclusive last sample row

	// WindingDirection is +1 for edges going down in the source path
	// and -1 for edges going up.
	WindingDirection int32
}

// step advances the edge by one sample row.
func (e *Edge) step() {
	e.X += e.Dx
	e.Error += e.ErrorUp
	if e.Error > 0 {
		e.X++
		e.Error -= e.ErrorDown
	}
}

// stepsAhead returns the DDA state n rows below the current one without
// modifying the edge. All products are carried in int64 so that any n
// within the working range is exact.
func (e *Edge) stepsAhead(n int32) (x, errTerm int32) {
	d := int64(e.ErrorDown)
	t := int64(e.Error) + int64(n)*int64(e.ErrorUp)
	carry := ceilDiv(t, d)
	x = int32(int64(e.X) + int64(n)*int64(e.Dx) + carry)
	errTerm = int32(t - carry*d)
	return x, errTerm
}

// AdvanceDDAMultipleSteps moves the edge n sample rows down in closed form.
func (e *Edge) AdvanceDDAMultipleSteps(n int32) {
	e.X, e.Error = e.stepsAhead(n)
}

// boundaryX returns the edge position, in device pixels, on the pixel
// boundary half a sample row above a row whose DDA state is (x, errTerm).
func (e *Edge) boundaryX(x, errTerm int32) float64 {
	d := float64(e.ErrorDown)
	s := float64(x) + (float64(errTerm)-0.5*float64(e.ErrorUp))/d - 0.5*float64(e.Dx)
	return sampleToPixel(s)
}

// slope returns the edge slope in columns per row.
func (e *Edge) slope() float64 {
	return float64(e.Dx) + float64(e.ErrorUp)/float64(e.ErrorDown)
}

// expandDelta is the half width of the anti-aliasing ramp centred on the
// edge, in device pixels.
func (e *Edge) expandDelta() float64 {
	s := e.slope()
	if s < 0 {
		s = -s
	}
	return 0.5 + 0.5*s
}

// less orders edges by exact position on the current row.
func (e *Edge) less(o *Edge) bool {
	if e.X != o.X {
		return e.X < o.X
	}
	// Same column: compare Error/ErrorDown without division.
	return int64(e.Error)*int64(o.ErrorDown) < int64(o.Error)*int64(e.ErrorDown)
}

// EdgeStore owns the edges of one rasterization call. Its storage is
// reused across calls.
type EdgeStore struct {
	edges    []Edge
	inactive []*Edge
	clip     image.Rectangle // in pixels
}

// Reset clears the store and sets the clip rectangle, in device pixels,
// for subsequently added edges.
func (s *EdgeStore) Reset(clip image.Rectangle) {
	s.edges = s.edges[:0]
	s.inactive = s.inactive[:0]
	s.clip = clip
}

// Len returns the number of stored edges.
func (s *EdgeStore) Len() int {
	return len(s.edges)
}

// AddEdge appends the segment (x1,y1)-(x2,y2), given in 28.4 sweep
// coordinates. Horizontal segments, segments that cross no sample row,
// and segments outside the vertical clip range are dropped. Segments
// entirely left or right of the clip collapse onto the nearest vertical
// border, which keeps spans paired without drawing outside the clip.
func (s *EdgeStore) AddEdge(x1, y1, x2, y2 int32) {
	dir := int32(1)
	if y1 > y2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
		dir = -1
	}
	if y1 == y2 {
		return
	}

	yStart := ceilDiv(y1, fixOne)
	yEnd := ceilDiv(y2, fixOne)
	top := int32(s.clip.Min.Y) * SubpixelCount
	bottom := int32(s.clip.Max.Y) * SubpixelCount
	yStart = max(yStart, top)
	yEnd = min(yEnd, bottom)
	if yStart >= yEnd {
		return
	}

	dM := x2 - x1
	dN := y2 - y1
	e := Edge{
		StartY:           yStart,
		EndY:             yEnd,
		WindingDirection: dir,
		ErrorDown:        dN * fixOne,
	}

	left := int32(s.clip.Min.X) * SubpixelCount
	right := int32(s.clip.Max.X) * SubpixelCount
	// A collapsed edge lies on the pixel boundary, half a sample left
	// of its first covered column.
	switch {
	case min(x1, x2) >= right*fixOne:
		e.X = right
		e.Error = -e.ErrorDown / 2
		s.edges = append(s.edges, e)
		return
	case max(x1, x2) <= left*fixOne:
		e.X = left
		e.Error = -e.ErrorDown / 2
		s.edges = append(s.edges, e)
		return
	}

	e.Dx = floorDiv(dM, dN)
	e.ErrorUp = (dM - e.Dx*dN) * fixOne

	d := int64(e.ErrorDown)
	n := int64(x1)*int64(dN) + int64(dM)*(int64(yStart)*fixOne-int64(y1))
	x := ceilDiv(n, d)
	e.X = int32(x)
	e.Error = int32(n - x*d)
	s.edges = append(s.edges, e)
}

// sortInactive orders the stored edges by start row, then by position.
// It must be called once after the last AddEdge.
func (s *EdgeStore) sortInactive() {
	s.inactive = s.inactive[:0]
	for i := range s.edges {
		s.inactive = append(s.inactive, &s.edges[i])
	}
	slices.SortStableFunc(s.inactive, func(a, b *Edge) int {
		if a.StartY != b.StartY {
			if a.StartY < b.StartY {
				return -1
			}
			return 1
		}
		if a.less(b) {
			return -1
		}
		if b.less(a) {
			return 1
		}
		return 0
	})
}

// activeList holds the edges crossing the current sample row in
// left-to-right order.
type activeList []*Edge

// insert adds e keeping position order.
func (l activeList) insert(e *Edge) activeList {
	i := len(l)
	l = append(l, e)
	for i > 0 && e.less(l[i-1]) {
		l[i] = l[i-1]
		i--
	}
	l[i] = e
	return l
}

// resort restores position order after the edges were stepped. Edges
// rarely swap, so insertion sort runs in near linear time.
func (l activeList) resort() {
	for i := 1; i < len(l); i++ {
		e := l[i]
		j := i
		for j > 0 && e.less(l[j-1]) {
			l[j] = l[j-1]
			j--
		}
		l[j] = e
	}
}

// retire drops edges that end at or above row y.
func (l activeList) retire(y int32) activeList {
	n := 0
	for _, e := range l {
		if e.EndY > y {
			l[n] = e
			n++
		}
	}
	clear(l[n:])
	return l[:n]
}
