// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/hwraster/internal/raster"
)

// Waffling.
//
// A texture packed into a sub-rectangle of a larger one cannot use
// hardware wrapping. Instead every primitive is cut at each integer
// crossing of every waffled texture axis, so that each piece lies in a
// single tile. The pieces are recorded as groups and their texture
// coordinates are moved into the sub-rectangle once they are known, see
// viewportToPackedCoordinates.

// sectionKind names the primitive list a group lives in.
type sectionKind uint8

const (
	sectionTriangles sectionKind = iota
	sectionLines
)

// group is a run of vertices produced by one waffled piece.
type group struct {
	kind  sectionKind
	first int
	count int
}

// splitPolygon cuts the convex polygon poly along the first axis and
// recurses on the remaining ones. Each final piece is emitted as a
// triangle fan.
func (b *Builder[V, P]) splitPolygon(poly []raster.PointXYA, axes []waffleAxis) error {
	if len(axes) == 0 {
		return b.emitPolygon(poly)
	}
	ax := axes[0]
	lo, hi := axisRange(poly, ax)
	k0, k1 := math32.Floor(lo), math32.Ceil(hi)
	if k1-k0 <= 1 {
		return b.splitPolygon(poly, axes[1:])
	}
	for k := k0; k < k1; k++ {
		piece := clipHalfPlane(poly, ax, k, 1)
		if len(piece) < 3 {
			continue
		}
		piece = clipHalfPlane(piece, ax, k+1, -1)
		if len(piece) < 3 || polygonArea(piece) == 0 {
			continue
		}
		if err := b.splitPolygon(piece, axes[1:]); err != nil {
			return err
		}
	}
	return nil
}

// splitLine cuts the segment v0-v1 at every integer crossing of the
// first axis and recurses on the remaining ones.
func (b *Builder[V, P]) splitLine(v0, v1 raster.PointXYA, axes []waffleAxis) error {
	if len(axes) == 0 {
		return b.emitLine(v0, v1)
	}
	ax := axes[0]
	a0, a1 := ax.at(v0.X, v0.Y), ax.at(v1.X, v1.Y)
	prev := v0
	cut := func(k float32) error {
		mid := lerpXYA(v0, v1, (k-a0)/(a1-a0))
		if err := b.splitLine(prev, mid, axes[1:]); err != nil {
			return err
		}
		prev = mid
		return nil
	}
	if a0 < a1 {
		for k := math32.Floor(a0) + 1; k < a1; k++ {
			if err := cut(k); err != nil {
				return err
			}
		}
	} else {
		for k := math32.Ceil(a0) - 1; k > a1; k-- {
			if err := cut(k); err != nil {
				return err
			}
		}
	}
	return b.splitLine(prev, v1, axes[1:])
}

// emitPolygon appends poly to the triangle list as one group.
func (b *Builder[V, P]) emitPolygon(poly []raster.PointXYA) error {
	if err := b.reserveTriangles(len(poly)); err != nil {
		return err
	}
	first := b.tri.len()
	for _, v := range poly {
		b.push(&b.tri, v)
	}
	for i := 1; i+1 < len(poly); i++ {
		b.indices = append(b.indices, uint16(first), uint16(first+i), uint16(first+i+1))
	}
	b.groups = append(b.groups, group{kind: sectionTriangles, first: first, count: len(poly)})
	return nil
}

// emitLine appends a segment to the line list as one group.
func (b *Builder[V, P]) emitLine(v0, v1 raster.PointXYA) error {
	first := b.lines.len()
	b.push(&b.lines, v0)
	b.push(&b.lines, v1)
	b.groups = append(b.groups, group{kind: sectionLines, first: first, count: 2})
	return nil
}

func axisRange(poly []raster.PointXYA, ax waffleAxis) (lo, hi float32) {
	lo = ax.at(poly[0].X, poly[0].Y)
	hi = lo
	for _, p := range poly[1:] {
		v := ax.at(p.X, p.Y)
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// clipHalfPlane keeps the part of poly where sign*(axis-bound) >= 0.
func clipHalfPlane(poly []raster.PointXYA, ax waffleAxis, bound, sign float32) []raster.PointXYA {
	out := make([]raster.PointXYA, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	dPrev := sign * (ax.at(prev.X, prev.Y) - bound)
	for _, cur := range poly {
		dCur := sign * (ax.at(cur.X, cur.Y) - bound)
		if (dPrev > 0 && dCur < 0) || (dPrev < 0 && dCur > 0) {
			out = append(out, lerpXYA(prev, cur, dPrev/(dPrev-dCur)))
		}
		if dCur >= 0 {
			out = append(out, cur)
		}
		prev, dPrev = cur, dCur
	}
	return out
}

func polygonArea(poly []raster.PointXYA) float32 {
	var a float32
	prev := poly[len(poly)-1]
	for _, p := range poly {
		a += prev.X*p.Y - p.X*prev.Y
		prev = p
	}
	return a / 2
}

func lerpXYA(p, q raster.PointXYA, t float32) raster.PointXYA {
	return raster.PointXYA{
		X: p.X + (q.X-p.X)*t,
		Y: p.Y + (q.Y-p.Y)*t,
		A: p.A + (q.A-p.A)*t,
	}
}
