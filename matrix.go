package hwraster

import (
	"math"

	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transform mapping (x, y) to
// (A*x + B*y + C, D*x + E*y + F).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the transform that leaves points unchanged.
func Identity() Matrix { return Matrix{A: 1, E: 1} }

// Translate returns a transform moving points by (x, y).
func Translate(x, y float64) Matrix { return Matrix{A: 1, C: x, E: 1, F: y} }

// Scale returns a transform scaling about the origin.
func Scale(x, y float64) Matrix { return Matrix{A: x, E: y} }

// Rotate returns a rotation about the origin by angle radians. With y
// pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Multiply returns m * n, the transform that applies n first.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// TransformPoint applies m to p.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// aff3 converts m to the layout used by the rasterizer.
func (m Matrix) aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}

// aff3f32 converts m for the vertex mappings.
func (m Matrix) aff3f32() f32.Aff3 {
	return f32.Aff3{
		float32(m.A), float32(m.B), float32(m.C),
		float32(m.D), float32(m.E), float32(m.F),
	}
}
