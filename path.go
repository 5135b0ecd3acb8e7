package hwraster

import (
	"math"

	"github.com/gogpu/hwraster/internal/raster"
)

// FillMode selects which regions of a path are filled.
type FillMode int

const (
	// FillNonZero fills regions with a non-zero winding number.
	FillNonZero FillMode = iota

	// FillEvenOdd fills regions crossed an odd number of times.
	FillEvenOdd
)

// String returns the fill mode name.
func (f FillMode) String() string {
	switch f {
	case FillNonZero:
		return "NonZero"
	case FillEvenOdd:
		return "EvenOdd"
	default:
		return "Unknown"
	}
}

func (f FillMode) raster() raster.FillMode {
	if f == FillEvenOdd {
		return raster.FillAlternate
	}
	return raster.FillWinding
}

// Path is a sequence of figures made of lines and cubic Bezier curves.
// Every figure is closed implicitly when filled.
type Path struct {
	points []raster.Point
	types  []raster.PointType
	fill   FillMode

	start   Point
	current Point
	closed  bool
}

// NewPath creates a new empty path filled with the non-zero rule.
func NewPath() *Path {
	return &Path{
		points: make([]raster.Point, 0, 16),
		types:  make([]raster.PointType, 0, 16),
	}
}

// SetFillMode sets the fill rule.
func (p *Path) SetFillMode(f FillMode) { p.fill = f }

// FillMode returns the fill rule.
func (p *Path) FillMode() FillMode { return p.fill }

// Len returns the number of points.
func (p *Path) Len() int { return len(p.points) }

func (p *Path) add(pt Point, t raster.PointType) {
	p.points = append(p.points, raster.Point{X: pt.X, Y: pt.Y})
	p.types = append(p.types, t)
}

// ensureFigure starts a figure at the current point when the path is
// empty or the last figure was closed.
func (p *Path) ensureFigure() {
	if len(p.points) == 0 || p.closed {
		p.add(p.current, raster.PointStart)
		p.start = p.current
		p.closed = false
	}
}

// MoveTo starts a new figure at (x, y).
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.add(pt, raster.PointStart)
	p.start = pt
	p.current = pt
	p.closed = false
}

// LineTo adds a straight segment to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.ensureFigure()
	pt := Pt(x, y)
	p.add(pt, raster.PointLine)
	p.current = pt
}

// QuadraticTo adds a quadratic Bezier curve. It is stored as the
// equivalent cubic.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	p.ensureFigure()
	ctrl := Pt(cx, cy)
	end := Pt(x, y)
	c1 := p.current.Lerp(ctrl, 2.0/3)
	c2 := end.Lerp(ctrl, 2.0/3)
	p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, x, y)
}

// CubicTo adds a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureFigure()
	p.add(Pt(c1x, c1y), raster.PointBezier)
	p.add(Pt(c2x, c2y), raster.PointBezier)
	p.add(Pt(x, y), raster.PointBezier)
	p.current = Pt(x, y)
}

// Close ends the current figure. The next segment starts a new figure at
// the start point of this one.
func (p *Path) Close() {
	p.current = p.start
	p.closed = true
}

// Clear removes all figures. The fill rule is kept.
func (p *Path) Clear() {
	p.points = p.points[:0]
	p.types = p.types[:0]
	p.start = Point{}
	p.current = Point{}
	p.closed = false
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Bounds returns the bounding box of all points, control points included.
// ok is false for an empty path.
func (p *Path) Bounds() (minPt, maxPt Point, ok bool) {
	if len(p.points) == 0 {
		return Point{}, Point{}, false
	}
	minPt = Pt(math.Inf(1), math.Inf(1))
	maxPt = Pt(math.Inf(-1), math.Inf(-1))
	for _, q := range p.points {
		minPt.X, minPt.Y = min(minPt.X, q.X), min(minPt.Y, q.Y)
		maxPt.X, maxPt.Y = max(maxPt.X, q.X), max(maxPt.Y, q.Y)
	}
	return minPt, maxPt, true
}

// Transform returns a copy of the path with every point transformed by m.
func (p *Path) Transform(m Matrix) *Path {
	result := p.Clone()
	for i, q := range result.points {
		t := m.TransformPoint(Point(q))
		result.points[i] = raster.Point(t)
	}
	result.start = m.TransformPoint(p.start)
	result.current = m.TransformPoint(p.current)
	return result
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	result := *p
	result.points = append([]raster.Point(nil), p.points...)
	result.types = append([]raster.PointType(nil), p.types...)
	return &result
}

// Rectangle adds a rectangle to the path.
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// Circle adds a circle to the path using cubic Bezier curves.
func (p *Path) Circle(cx, cy, r float64) {
	p.Ellipse(cx, cy, r, r)
}

// Ellipse adds an ellipse to the path.
func (p *Path) Ellipse(cx, cy, rx, ry float64) {
	const k = 0.5522847498307936 // 4/3 * (sqrt(2) - 1)
	ox := rx * k
	oy := ry * k

	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

// Arc adds a circular arc to the path.
// The arc is drawn from angle1 to angle2 (in radians) around center (cx, cy).
func (p *Path) Arc(cx, cy, r, angle1, angle2 float64) {
	const twoPi = 2 * math.Pi
	for angle2 < angle1 {
		angle2 += twoPi
	}

	// At most 90 degrees per cubic.
	const maxAngle = math.Pi / 2
	n := max(1, int(math.Ceil((angle2-angle1)/maxAngle)))
	step := (angle2 - angle1) / float64(n)

	for i := range n {
		a1 := angle1 + float64(i)*step
		p.arcSegment(cx, cy, r, a1, a1+step)
	}
}

// arcSegment adds a single arc segment of at most 90 degrees.
func (p *Path) arcSegment(cx, cy, r, a1, a2 float64) {
	tan := math.Tan((a2 - a1) / 2)
	alpha := math.Sin(a2-a1) * (math.Sqrt(4+3*tan*tan) - 1) / 3

	cos1, sin1 := math.Cos(a1), math.Sin(a1)
	cos2, sin2 := math.Cos(a2), math.Sin(a2)

	p0 := Pt(cx+r*cos1, cy+r*sin1)
	p1 := Pt(cx+r*cos2, cy+r*sin2)
	c1 := p0.Add(Pt(-sin1, cos1).Mul(alpha * r))
	c2 := p1.Sub(Pt(-sin2, cos2).Mul(alpha * r))

	if len(p.points) == 0 || p.closed {
		p.MoveTo(p0.X, p0.Y)
	} else if p.current.Sub(p0).Length() > 1e-9 {
		p.LineTo(p0.X, p0.Y)
	}
	p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p1.X, p1.Y)
}

// RoundedRectangle adds a rectangle with rounded corners.
func (p *Path) RoundedRectangle(x, y, w, h, r float64) {
	r = min(r, math.Min(w, h)/2)

	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.Arc(x+w-r, y+r, r, -math.Pi/2, 0)
	p.LineTo(x+w, y+h-r)
	p.Arc(x+w-r, y+h-r, r, 0, math.Pi/2)
	p.LineTo(x+r, y+h)
	p.Arc(x+r, y+h-r, r, math.Pi/2, math.Pi)
	p.LineTo(x, y+r)
	p.Arc(x+r, y+r, r, math.Pi, 3*math.Pi/2)
	p.Close()
}
