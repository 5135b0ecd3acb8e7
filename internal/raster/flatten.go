// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// PointType tags each point of a path.
type PointType uint8

const (
	// PointStart begins a new figure. The previous figure is closed.
	PointStart PointType = iota

	// PointLine ends a straight segment.
	PointLine

	// PointBezier marks the two control points and the end point of a
	// cubic segment. Bezier points always come in groups of three.
	PointBezier
)

// DefaultTolerance is the maximum distance, in device pixels, between a
// curve and the polyline that replaces it.
const DefaultTolerance = 0.25

// maxFlattenDepth bounds curve subdivision to 2^16 segments per curve.
const maxFlattenDepth = 16

var (
	// ErrMalformedPath is returned when point types do not describe a
	// valid path.
	ErrMalformedPath = errors.New("raster: malformed path")

	// errOverflow aborts enumeration when a point leaves the sweep range.
	errOverflow = errors.New("raster: coordinate overflow")
)

// enumerator transforms, flattens and converts one path into edges.
type enumerator struct {
	store *EdgeStore
	m     f64.Aff3
	tol   float64

	// device-space current point and figure start
	cur, first Point
	// fixed-point counterparts
	curX, curY     int32
	firstX, firstY int32
	open           bool
}

func (en *enumerator) transform(p Point) Point {
	m := &en.m
	return Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// moveTo closes the open figure and starts a new one at device point p.
func (en *enumerator) moveTo(p Point) error {
	en.closeFigure()
	x, okX := toFixed(p.X)
	y, okY := toFixed(p.Y)
	if !okX || !okY {
		return errOverflow
	}
	en.cur, en.first = p, p
	en.curX, en.curY = x, y
	en.firstX, en.firstY = x, y
	en.open = true
	return nil
}

// lineTo adds an edge from the current point to device point p.
func (en *enumerator) lineTo(p Point) error {
	x, okX := toFixed(p.X)
	y, okY := toFixed(p.Y)
	if !okX || !okY {
		return errOverflow
	}
	en.store.AddEdge(en.curX, en.curY, x, y)
	en.cur = p
	en.curX, en.curY = x, y
	return nil
}

func (en *enumerator) closeFigure() {
	if en.open {
		en.store.AddEdge(en.curX, en.curY, en.firstX, en.firstY)
		en.open = false
	}
}

// cubicTo flattens a cubic from the current point using recursive
// de Casteljau subdivision. Both control points must lie within the
// tolerance of the chord; the factor of 16 is the cubic error bound.
func (en *enumerator) cubicTo(c1, c2, p Point) error {
	return en.flattenCubic(en.cur, c1, c2, p, 0)
}

func (en *enumerator) flattenCubic(p0, c1, c2, p1 Point, depth int) error {
	ux := 3*c1.X - 2*p0.X - p1.X
	uy := 3*c1.Y - 2*p0.Y - p1.Y
	vx := 3*c2.X - p0.X - 2*p1.X
	vy := 3*c2.Y - p0.Y - 2*p1.Y

	distSq := math.Max(ux*ux+uy*uy, vx*vx+vy*vy)
	if distSq <= 16*en.tol*en.tol || depth >= maxFlattenDepth {
		return en.lineTo(p1)
	}
	if math.IsNaN(distSq) || math.IsInf(distSq, 0) {
		return errOverflow
	}

	ab1 := mid(p0, c1)
	ab2 := mid(c1, c2)
	ab3 := mid(c2, p1)
	bc1 := mid(ab1, ab2)
	bc2 := mid(ab2, ab3)
	m := mid(bc1, bc2)

	if err := en.flattenCubic(p0, ab1, bc1, m, depth+1); err != nil {
		return err
	}
	return en.flattenCubic(m, bc2, ab3, p1, depth+1)
}

func mid(a, b Point) Point {
	return Point{X: 0.5 * (a.X + b.X), Y: 0.5 * (a.Y + b.Y)}
}

// enumerate walks the whole path. Overflow is reported as errOverflow so
// the caller can turn it into an empty result.
func (en *enumerator) enumerate(points []Point, types []PointType) error {
	if len(points) != len(types) {
		return fmt.Errorf("%w: %d points but %d types", ErrMalformedPath, len(points), len(types))
	}
	for i := 0; i < len(points); i++ {
		p := en.transform(points[i])
		switch {
		case i == 0 || types[i] == PointStart:
			if err := en.moveTo(p); err != nil {
				return err
			}
		case types[i] == PointLine:
			if err := en.lineTo(p); err != nil {
				return err
			}
		case types[i] == PointBezier:
			if i+2 >= len(points) || types[i+1] != PointBezier || types[i+2] != PointBezier {
				return fmt.Errorf("%w: incomplete bezier at point %d", ErrMalformedPath, i)
			}
			c2 := en.transform(points[i+1])
			end := en.transform(points[i+2])
			if err := en.cubicTo(p, c2, end); err != nil {
				return err
			}
			i += 2
		default:
			return fmt.Errorf("%w: unknown point type %d at point %d", ErrMalformedPath, types[i], i)
		}
	}
	en.closeFigure()
	return nil
}
