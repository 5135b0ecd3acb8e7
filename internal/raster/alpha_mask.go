// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"errors"
	"image"
	"math"

	"golang.org/x/image/math/f32"
)

var errMaskVertexOverflow = errors.New("raster: alpha mask vertex index overflow")

// AlphaMask is a GeometrySink that evaluates the geometry it receives on
// the CPU, the way a GPU would shade it at pixel centres with additive
// blending. It is used to inspect rasterizer output without a device.
type AlphaMask struct {
	bounds   image.Rectangle
	coverage []float64
	vertices []f32.Vec2
	empty    bool

	// Counts of received primitives.
	Trapezoids     int
	ComplexScans   int
	Lines          int
	Parallelograms int
	Triangles      int
}

// NewAlphaMask creates a mask covering bounds.
func NewAlphaMask(bounds image.Rectangle) *AlphaMask {
	return &AlphaMask{
		bounds:   bounds,
		coverage: make([]float64, bounds.Dx()*bounds.Dy()),
		empty:    true,
	}
}

// Reset clears the mask for reuse.
func (m *AlphaMask) Reset() {
	clear(m.coverage)
	m.vertices = m.vertices[:0]
	m.empty = true
	m.Trapezoids, m.ComplexScans, m.Lines, m.Parallelograms, m.Triangles = 0, 0, 0, 0, 0
}

// Bounds returns the mask rectangle.
func (m *AlphaMask) Bounds() image.Rectangle { return m.bounds }

// At returns the accumulated coverage of pixel (x, y), clamped to [0, 1].
// Pixels outside the mask have zero coverage.
func (m *AlphaMask) At(x, y int) float64 {
	if !(image.Point{X: x, Y: y}).In(m.bounds) {
		return 0
	}
	return min(m.coverage[m.offset(x, y)], 1)
}

// Image converts the mask to an 8-bit alpha image.
func (m *AlphaMask) Image() *image.Alpha {
	img := image.NewAlpha(m.bounds)
	for y := m.bounds.Min.Y; y < m.bounds.Max.Y; y++ {
		for x := m.bounds.Min.X; x < m.bounds.Max.X; x++ {
			img.Pix[img.PixOffset(x, y)] = uint8(math.Round(255 * m.At(x, y)))
		}
	}
	return img
}

func (m *AlphaMask) offset(x, y int) int {
	return (y-m.bounds.Min.Y)*m.bounds.Dx() + (x - m.bounds.Min.X)
}

func (m *AlphaMask) add(x, y int, a float64) {
	if a <= 0 || !(image.Point{X: x, Y: y}).In(m.bounds) {
		return
	}
	m.coverage[m.offset(x, y)] += a
}

// AddComplexScan implements GeometrySink.
func (m *AlphaMask) AddComplexScan(pixelY int32, intervals *CoverageInterval) error {
	m.empty = false
	m.ComplexScans++
	for iv := intervals; !iv.IsSentinel(); iv = iv.Next {
		if iv.Coverage == 0 {
			continue
		}
		a := float64(iv.Coverage) / MaxCoverage
		x0 := max(int(iv.PixelX), m.bounds.Min.X)
		x1 := min(int(iv.Next.PixelX), m.bounds.Max.X)
		for x := x0; x < x1; x++ {
			m.add(x, int(pixelY), a)
		}
	}
	return nil
}

// AddTrapezoid implements GeometrySink.
func (m *AlphaMask) AddTrapezoid(
	yTop, xTopLeft, xTopRight,
	yBottom, xBottomLeft, xBottomRight,
	leftExpandDelta, rightExpandDelta float32,
) error {
	m.empty = false
	m.Trapezoids++
	h := float64(yBottom - yTop)
	dl := float64(leftExpandDelta)
	dr := float64(rightExpandDelta)
	for y := int(math.Floor(float64(yTop))); float64(y) < float64(yBottom); y++ {
		t := (float64(y) + 0.5 - float64(yTop)) / h
		if t < 0 || t > 1 {
			continue
		}
		xl := lerp(float64(xTopLeft), float64(xBottomLeft), t)
		xr := lerp(float64(xTopRight), float64(xBottomRight), t)
		x0 := int(math.Floor(xl - dl))
		x1 := int(math.Ceil(xr + dr))
		for x := x0; x < x1; x++ {
			c := float64(x) + 0.5
			left := clamp01((c - (xl - dl)) / (2 * dl))
			right := clamp01(((xr + dr) - c) / (2 * dr))
			m.add(x, y, min(left, right))
		}
	}
	return nil
}

// AddParallelogram implements GeometrySink. The points are in triangle
// strip order.
func (m *AlphaMask) AddParallelogram(p [4]f32.Vec2) error {
	m.empty = false
	m.Parallelograms++
	m.fillTriangle(p[0], p[1], p[2])
	m.fillTriangle(p[1], p[2], p[3])
	return nil
}

// AddLine implements GeometrySink. Lines are horizontal and cover the
// pixels whose centres lie in [min x, max x) on the line's row.
func (m *AlphaMask) AddLine(v0, v1 PointXYA) error {
	m.empty = false
	m.Lines++
	if v1.X < v0.X {
		v0, v1 = v1, v0
	}
	y := int(math.Floor(float64(v0.Y)))
	w := float64(v1.X - v0.X)
	for x := int(math.Floor(float64(v0.X))); float64(x)+0.5 < float64(v1.X); x++ {
		c := float64(x) + 0.5
		if c < float64(v0.X) {
			continue
		}
		t := 0.0
		if w > 0 {
			t = (c - float64(v0.X)) / w
		}
		m.add(x, y, lerp(float64(v0.A), float64(v1.A), t))
	}
	return nil
}

// AddVertex implements GeometrySink.
func (m *AlphaMask) AddVertex(p f32.Vec2) (uint16, error) {
	if len(m.vertices) > math.MaxUint16 {
		return 0, errMaskVertexOverflow
	}
	m.vertices = append(m.vertices, p)
	return uint16(len(m.vertices) - 1), nil
}

// AddTriangle implements GeometrySink.
func (m *AlphaMask) AddTriangle(i1, i2, i3 uint16) error {
	m.empty = false
	m.Triangles++
	m.fillTriangle(m.vertices[i1], m.vertices[i2], m.vertices[i3])
	return nil
}

// IsEmpty implements GeometrySink.
func (m *AlphaMask) IsEmpty() bool { return m.empty }

// fillTriangle adds full coverage to pixels whose centres lie inside the
// triangle. Centres on an edge count as inside.
func (m *AlphaMask) fillTriangle(a, b, c f32.Vec2) {
	area := cross(a, b, c)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
	}
	minX := int(math.Floor(float64(min(a[0], b[0], c[0]))))
	maxX := int(math.Ceil(float64(max(a[0], b[0], c[0]))))
	minY := int(math.Floor(float64(min(a[1], b[1], c[1]))))
	maxY := int(math.Ceil(float64(max(a[1], b[1], c[1]))))
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			p := f32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			if cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0 {
				m.add(x, y, 1)
			}
		}
	}
}

func cross(a, b, p f32.Vec2) float64 {
	return float64(b[0]-a[0])*float64(p[1]-a[1]) - float64(b[1]-a[1])*float64(p[0]-a[0])
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(v float64) float64 { return max(0, min(v, 1)) }
