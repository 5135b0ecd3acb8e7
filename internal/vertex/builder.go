// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vertex turns rasterizer output into GPU vertex buffers.
//
// A Builder implements raster.GeometrySink. It collects positions and
// coverage for three primitive lists (an indexed triangle list, one
// stitched triangle strip and a line list) and expands them into the
// full vertex format when building ends. Coverage is carried in the
// alpha of the diffuse color.
package vertex

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/hwraster/internal/raster"
)

// Errors returned by Builder.
var (
	// ErrNotImplemented is returned for vertex formats and channels the
	// builder cannot generate.
	ErrNotImplemented = errors.New("vertex: not implemented")

	// ErrIndexOverflow is returned when the triangle list exceeds the
	// 16-bit index range and cannot be flushed.
	ErrIndexOverflow = errors.New("vertex: 16-bit index range exceeded")

	// ErrNotBuilding is returned for geometry outside BeginBuilding and
	// EndBuilding.
	ErrNotBuilding = errors.New("vertex: builder is not building")

	// ErrWaffleOutside is returned when waffling is combined with outside
	// bounds.
	ErrWaffleOutside = errors.New("vertex: waffling cannot be combined with outside bounds")

	// ErrNoDevice is returned by FlushInternal without a device.
	ErrNoDevice = errors.New("vertex: no device")
)

// maxIndexedVertices is the capacity of the triangle list.
const maxIndexedVertices = math.MaxUint16 + 1

// Stats counts the output of a Builder since BeginBuilding.
type Stats struct {
	TriangleVertices int
	Indices          int
	StripVertices    int
	LineVertices     int
	WaffleGroups     int
	Flushes          int
}

// section is one primitive list before expansion. alpha holds the
// coverage of each vertex.
type section[V any] struct {
	verts []V
	alpha []float32
}

func (s *section[V]) len() int { return len(s.verts) }

func (s *section[V]) reset() {
	s.verts = s.verts[:0]
	s.alpha = s.alpha[:0]
}

// Builder is a raster.GeometrySink producing vertices of type V.
// It is not safe for concurrent use.
type Builder[V any, P Vertex[V]] struct {
	format  Format
	maps    Mappings
	device  Device
	aaScale bool

	expanders map[expandKey]expandFunc[V]
	colors    colorCache

	viewport    image.Rectangle
	viewportTop float32
	building    bool
	received    bool

	tri     section[V]
	indices []uint16
	strip   section[V]
	lines   section[V]

	axes        []waffleAxis
	axesDirty   bool
	waffleVerts []raster.PointXYA
	groups      []group

	outside    bool
	bounds     Rect
	needInside bool
	stratum    stratum

	out   Buffer[V]
	stats Stats
}

var _ raster.GeometrySink = (*Builder[XYZDUV2, *XYZDUV2])(nil)

// NewBuilder creates a builder for vertices of type V. The device may be
// nil, in which case FlushInternal is unavailable and the caller draws
// the buffer returned by EndBuilding itself.
//
// The format of V must carry a diffuse color, which transports coverage.
func NewBuilder[V any, P Vertex[V]](device Device) (*Builder[V, P], error) {
	f := P(new(V)).Format()
	if !f.Has(FormatDiffuse) {
		return nil, fmt.Errorf("%w: format %v without diffuse", ErrNotImplemented, f)
	}
	return &Builder[V, P]{
		format:    f,
		maps:      newMappings(f),
		device:    device,
		aaScale:   true,
		expanders: expanders[V, P](),
		axesDirty: true,
	}, nil
}

// Format returns the vertex format.
func (b *Builder[V, P]) Format() Format { return b.format }

// SetDevice sets the device used by FlushInternal.
func (b *Builder[V, P]) SetDevice(d Device) { b.device = d }

// SetViewport sets the destination viewport. BeginBuilding captures its
// top row.
func (b *Builder[V, P]) SetViewport(r image.Rectangle) { b.viewport = r }

// SetAntialiasScale selects whether the synthesized diffuse color is
// scaled by vertex coverage. It is on by default.
func (b *Builder[V, P]) SetAntialiasScale(enabled bool) { b.aaScale = enabled }

// Mappings returns the channel mappings. Mappings are read when building
// ends, so they should be set before geometry is submitted.
func (b *Builder[V, P]) Mappings() *Mappings { return &b.maps }

// SetConstantMapping sets the Z and color of every vertex.
func (b *Builder[V, P]) SetConstantMapping(z float32, c gputypes.Color) {
	b.maps.SetConstantMapping(z, c)
}

// SetTextureMapping generates texture channel i from the device position.
func (b *Builder[V, P]) SetTextureMapping(i int, m f32.Aff3) error {
	b.axesDirty = true
	return b.maps.SetTextureMapping(i, m)
}

// SetWaffling tiles channel i into sub.
func (b *Builder[V, P]) SetWaffling(i int, mode WaffleMode, sub Rect) error {
	b.axesDirty = true
	return b.maps.SetWaffling(i, mode, sub)
}

// SetTransformMapping transforms positions before texture coordinates
// are generated.
func (b *Builder[V, P]) SetTransformMapping(t f32.Aff3) {
	b.axesDirty = true
	b.maps.SetTransformMapping(t)
}

// Stats returns the counters accumulated since BeginBuilding.
func (b *Builder[V, P]) Stats() Stats { return b.stats }

// BeginBuilding resets the buffers and starts a new draw.
func (b *Builder[V, P]) BeginBuilding() {
	b.tri.reset()
	b.indices = b.indices[:0]
	b.strip.reset()
	b.lines.reset()
	b.waffleVerts = b.waffleVerts[:0]
	b.groups = b.groups[:0]
	b.viewportTop = float32(b.viewport.Min.Y)
	b.stratum = stratum{coveredTo: b.bounds.MinY}
	b.stats = Stats{}
	b.received = false
	b.building = true
}

// IsEmpty reports whether no geometry was received since BeginBuilding.
func (b *Builder[V, P]) IsEmpty() bool { return !b.received }

// prepare validates the builder state before geometry is added.
func (b *Builder[V, P]) prepare() error {
	if !b.building {
		return ErrNotBuilding
	}
	if b.axesDirty {
		b.axes = b.maps.waffleAxes()
		b.axesDirty = false
	}
	if b.outside && b.waffling() {
		return ErrWaffleOutside
	}
	return nil
}

func (b *Builder[V, P]) waffling() bool { return len(b.axes) > 0 }

// push appends a raw vertex to s.
func (b *Builder[V, P]) push(s *section[V], p raster.PointXYA) {
	var v V
	P(&v).SetPosition(p.X, p.Y)
	s.verts = append(s.verts, v)
	s.alpha = append(s.alpha, p.A)
}

// at returns raw vertex i of s.
func (b *Builder[V, P]) at(s *section[V], i int) raster.PointXYA {
	x, y := P(&s.verts[i]).Position()
	return raster.PointXYA{X: x, Y: y, A: s.alpha[i]}
}

// appendStrip adds a strip primitive, joining it to the previous one
// with two degenerate vertices.
func (b *Builder[V, P]) appendStrip(vs ...raster.PointXYA) {
	if n := b.strip.len(); n > 0 {
		b.push(&b.strip, b.at(&b.strip, n-1))
		b.push(&b.strip, vs[0])
	}
	for _, v := range vs {
		b.push(&b.strip, v)
	}
}

// AddVertex implements raster.GeometrySink. Indices refer to the current
// batch and are invalidated by FlushInternal.
//
// AddVertex never flushes, even with a device attached: a flush would
// invalidate indices the caller still holds for its next AddTriangle.
// Past 65536 vertices in one batch it returns ErrIndexOverflow; callers
// emitting larger meshes must call FlushInternal between meshes.
func (b *Builder[V, P]) AddVertex(p f32.Vec2) (uint16, error) {
	if err := b.prepare(); err != nil {
		return 0, err
	}
	v := raster.PointXYA{X: p[0], Y: p[1], A: 1}
	if b.waffling() {
		if len(b.waffleVerts) >= maxIndexedVertices {
			return 0, ErrIndexOverflow
		}
		b.waffleVerts = append(b.waffleVerts, v)
		return uint16(len(b.waffleVerts) - 1), nil
	}
	if b.tri.len() >= maxIndexedVertices {
		return 0, ErrIndexOverflow
	}
	b.push(&b.tri, v)
	return uint16(b.tri.len() - 1), nil
}

// AddTriangle implements raster.GeometrySink.
func (b *Builder[V, P]) AddTriangle(i1, i2, i3 uint16) error {
	if err := b.prepare(); err != nil {
		return err
	}
	b.received = true
	if b.waffling() {
		w := b.waffleVerts
		return b.splitPolygon([]raster.PointXYA{w[i1], w[i2], w[i3]}, b.axes)
	}
	b.indices = append(b.indices, i1, i2, i3)
	return nil
}

// AddTrapezoid implements raster.GeometrySink. The trapezoid becomes an
// eight vertex strip: outer and inner ramp columns of the left edge, then
// of the right edge, with coverage 0, 1, 1, 0 across them.
func (b *Builder[V, P]) AddTrapezoid(
	yTop, xTopLeft, xTopRight,
	yBottom, xBottomLeft, xBottomRight,
	leftExpandDelta, rightExpandDelta float32,
) error {
	if err := b.prepare(); err != nil {
		return err
	}
	b.received = true
	q := [8]raster.PointXYA{
		{X: xTopLeft - leftExpandDelta, Y: yTop},
		{X: xBottomLeft - leftExpandDelta, Y: yBottom},
		{X: xTopLeft + leftExpandDelta, Y: yTop, A: 1},
		{X: xBottomLeft + leftExpandDelta, Y: yBottom, A: 1},
		{X: xTopRight - rightExpandDelta, Y: yTop, A: 1},
		{X: xBottomRight - rightExpandDelta, Y: yBottom, A: 1},
		{X: xTopRight + rightExpandDelta, Y: yTop},
		{X: xBottomRight + rightExpandDelta, Y: yBottom},
	}
	if b.waffling() {
		for i := 0; i+2 < len(q); i++ {
			if err := b.splitPolygon([]raster.PointXYA{q[i], q[i+1], q[i+2]}, b.axes); err != nil {
				return err
			}
		}
		return nil
	}
	if b.outside {
		b.addBandTrapezoid(q)
		return nil
	}
	b.appendStrip(q[:]...)
	return nil
}

// AddParallelogram implements raster.GeometrySink.
func (b *Builder[V, P]) AddParallelogram(p [4]f32.Vec2) error {
	if err := b.prepare(); err != nil {
		return err
	}
	b.received = true
	var q [4]raster.PointXYA
	for i := range p {
		q[i] = raster.PointXYA{X: p[i][0], Y: p[i][1], A: 1}
	}
	if b.waffling() {
		return b.splitPolygon([]raster.PointXYA{q[0], q[1], q[3], q[2]}, b.axes)
	}
	if b.outside {
		b.closeBand()
	}
	b.appendStrip(q[:]...)
	return nil
}

// AddLine implements raster.GeometrySink.
func (b *Builder[V, P]) AddLine(v0, v1 raster.PointXYA) error {
	if err := b.prepare(); err != nil {
		return err
	}
	b.received = true
	if b.waffling() {
		return b.splitLine(v0, v1, b.axes)
	}
	b.push(&b.lines, v0)
	b.push(&b.lines, v1)
	return nil
}

// AddComplexScan implements raster.GeometrySink. Every interval with
// coverage becomes a line through the row's pixel centres. In outside
// mode the row is covered from the left to the right outside bound, with
// zero coverage where the shape is absent.
func (b *Builder[V, P]) AddComplexScan(pixelY int32, intervals *raster.CoverageInterval) error {
	if err := b.prepare(); err != nil {
		return err
	}
	b.received = true
	y := float32(pixelY)

	if !b.outside {
		for iv := intervals; !iv.IsSentinel(); iv = iv.Next {
			if iv.Coverage == 0 {
				continue
			}
			a := float32(iv.Coverage) / raster.MaxCoverage
			if err := b.scanSegment(y, float32(iv.PixelX), float32(iv.Next.PixelX), a); err != nil {
				return err
			}
		}
		return nil
	}

	b.closeBand()
	b.fillGap(y)
	left, right := b.bounds.MinX, b.bounds.MaxX
	if !intervals.IsSentinel() && float32(intervals.PixelX) > left {
		if err := b.scanSegment(y, left, min(float32(intervals.PixelX), right), 0); err != nil {
			return err
		}
	}
	for iv := intervals; !iv.IsSentinel(); iv = iv.Next {
		if iv.Coverage == raster.MaxCoverage && !b.needInside {
			continue
		}
		x0 := max(float32(iv.PixelX), left)
		x1 := min(float32(iv.Next.PixelX), right)
		if x0 >= x1 {
			continue
		}
		a := float32(iv.Coverage) / raster.MaxCoverage
		if err := b.scanSegment(y, x0, x1, a); err != nil {
			return err
		}
	}
	b.stratum.coveredTo = y + 1
	return nil
}

// scanSegment emits the pixels [x0, x1) of row y with coverage a. A
// horizontal line on the top viewport row can be clipped away by the
// GPU, so that row is drawn as a quad.
func (b *Builder[V, P]) scanSegment(y, x0, x1, a float32) error {
	if y <= b.viewportTop {
		q := [4]raster.PointXYA{
			{X: x0, Y: y, A: a},
			{X: x0, Y: y + 1, A: a},
			{X: x1, Y: y, A: a},
			{X: x1, Y: y + 1, A: a},
		}
		if b.waffling() {
			return b.splitPolygon([]raster.PointXYA{q[0], q[1], q[3], q[2]}, b.axes)
		}
		b.appendStrip(q[:]...)
		return nil
	}
	v0 := raster.PointXYA{X: x0, Y: y + 0.5, A: a}
	v1 := raster.PointXYA{X: x1, Y: y + 0.5, A: a}
	if b.waffling() {
		return b.splitLine(v0, v1, b.axes)
	}
	b.push(&b.lines, v0)
	b.push(&b.lines, v1)
	return nil
}

// FlushInternal draws the geometry collected so far and continues with
// empty buffers. Indices returned by AddVertex become invalid.
func (b *Builder[V, P]) FlushInternal() error {
	if !b.building {
		return ErrNotBuilding
	}
	if b.device == nil {
		return ErrNoDevice
	}
	if b.outside {
		b.closeBand()
	}
	buf := b.finish()
	if err := buf.Draw(b.device); err != nil {
		return fmt.Errorf("vertex: flush: %w", err)
	}
	b.tri.reset()
	b.indices = b.indices[:0]
	b.strip.reset()
	b.lines.reset()
	b.groups = b.groups[:0]
	b.stats.Flushes++
	slogger().Debug("vertex: flushed batch",
		"triangles", buf.TriangleCount(),
		"strip", buf.StripVertices,
		"lines", buf.LineCount())
	return nil
}

// EndBuilding finishes the draw and returns the expanded vertices. In
// outside mode the remaining gap down to the outside bounds is filled
// first.
func (b *Builder[V, P]) EndBuilding() (*Buffer[V], error) {
	if !b.building {
		return nil, ErrNotBuilding
	}
	if b.outside {
		if err := b.EndBuildingOutside(); err != nil {
			return nil, err
		}
	}
	buf := b.finish()
	b.building = false
	return buf, nil
}

// finish expands the current batch into b.out.
func (b *Builder[V, P]) finish() *Buffer[V] {
	b.ExpandVertices()
	b.viewportToPackedCoordinates()

	out := &b.out
	out.Vertices = append(out.Vertices[:0], b.tri.verts...)
	out.Vertices = append(out.Vertices, b.strip.verts...)
	out.Vertices = append(out.Vertices, b.lines.verts...)
	out.Indices = append(out.Indices[:0], b.indices...)
	out.TriangleVertices = b.tri.len()
	out.StripVertices = b.strip.len()
	out.LineVertices = b.lines.len()
	out.Layout = Layout(b.format)

	b.stats.TriangleVertices += out.TriangleVertices
	b.stats.Indices += len(out.Indices)
	b.stats.StripVertices += out.StripVertices
	b.stats.LineVertices += out.LineVertices
	b.stats.WaffleGroups += len(b.groups)
	return out
}

// reserveTriangles makes room for n more triangle list vertices,
// flushing when a device is available.
func (b *Builder[V, P]) reserveTriangles(n int) error {
	if b.tri.len()+n <= maxIndexedVertices {
		return nil
	}
	if b.device == nil {
		return ErrIndexOverflow
	}
	slogger().Debug("vertex: index range full, flushing", "vertices", b.tri.len())
	return b.FlushInternal()
}
