package hwraster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/hwraster/internal/raster"
)

func TestFillModeString(t *testing.T) {
	assert.Equal(t, "NonZero", FillNonZero.String())
	assert.Equal(t, "EvenOdd", FillEvenOdd.String())
	assert.Equal(t, "Unknown", FillMode(7).String())

	assert.Equal(t, raster.FillWinding, FillNonZero.raster())
	assert.Equal(t, raster.FillAlternate, FillEvenOdd.raster())
}

func TestPathPointTypes(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.CubicTo(12, 2, 12, 8, 10, 10)
	p.Close()
	p.LineTo(0, 10)

	want := []raster.PointType{
		raster.PointStart, raster.PointLine,
		raster.PointBezier, raster.PointBezier, raster.PointBezier,
		raster.PointStart, raster.PointLine,
	}
	require.Equal(t, want, p.types)
	assert.Equal(t, raster.Point{X: 0, Y: 0}, p.points[5], "figure after Close restarts at the start point")
	assert.Equal(t, Pt(0, 10), p.CurrentPoint())
}

func TestPathLineToWithoutMoveTo(t *testing.T) {
	p := NewPath()
	p.LineTo(5, 5)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, raster.PointStart, p.types[0])
	assert.Equal(t, raster.Point{}, p.points[0])
}

func TestPathQuadraticToCubic(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(3, 6, 6, 0)

	require.Equal(t, 4, p.Len())
	assert.InDelta(t, 2, p.points[1].X, 1e-12)
	assert.InDelta(t, 4, p.points[1].Y, 1e-12)
	assert.InDelta(t, 4, p.points[2].X, 1e-12)
	assert.InDelta(t, 4, p.points[2].Y, 1e-12)
	assert.Equal(t, raster.Point{X: 6, Y: 0}, p.points[3])
}

func TestPathBounds(t *testing.T) {
	_, _, ok := NewPath().Bounds()
	assert.False(t, ok)

	p := NewPath()
	p.Rectangle(2, 3, 10, 4)
	p.MoveTo(-1, 20)
	minPt, maxPt, ok := p.Bounds()
	require.True(t, ok)
	assert.Equal(t, Pt(-1, 3), minPt)
	assert.Equal(t, Pt(12, 20), maxPt)
}

func TestPathShapes(t *testing.T) {
	tests := []struct {
		name       string
		build      func(p *Path)
		minX, maxX float64
	}{
		{"circle", func(p *Path) { p.Circle(10, 10, 5) }, 5, 15},
		{"ellipse", func(p *Path) { p.Ellipse(10, 10, 8, 2) }, 2, 18},
		{"rounded rectangle", func(p *Path) { p.RoundedRectangle(0, 0, 20, 10, 3) }, 0, 20},
		{"quarter arc", func(p *Path) { p.Arc(0, 0, 10, 0, math.Pi/2) }, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.build(p)
			minPt, maxPt, ok := p.Bounds()
			require.True(t, ok)
			assert.InDelta(t, tt.minX, minPt.X, 1e-9)
			assert.InDelta(t, tt.maxX, maxPt.X, 1e-9)
			assert.Equal(t, raster.PointStart, p.types[0])
			assert.Len(t, p.points, len(p.types))
		})
	}
}

func TestPathTransformAndClone(t *testing.T) {
	p := NewPath()
	p.Rectangle(0, 0, 2, 2)
	p.SetFillMode(FillEvenOdd)

	q := p.Transform(Translate(5, 5))
	assert.Equal(t, FillEvenOdd, q.FillMode())
	assert.Equal(t, raster.Point{X: 7, Y: 7}, q.points[2])
	assert.Equal(t, raster.Point{X: 2, Y: 2}, p.points[2], "source is unchanged")

	c := p.Clone()
	c.LineTo(9, 9)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, 6, c.Len())
}

func TestPathClear(t *testing.T) {
	p := NewPath()
	p.SetFillMode(FillEvenOdd)
	p.Circle(0, 0, 1)
	p.Clear()
	assert.Zero(t, p.Len())
	assert.Equal(t, FillEvenOdd, p.FillMode())
}
