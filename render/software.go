// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/hwraster/internal/vertex"
)

var _ vertex.Device = (*SoftwareDevice)(nil)

// SoftwareDevice draws vertex buffers into an *image.RGBA on the CPU.
//
// It follows the conventions of a GPU rasterizer: a triangle covers the
// pixels whose centres lie inside it, shared edges are owned by exactly
// one triangle, colors are interpolated across the primitive and blended
// source-over with premultiplied alpha. Lines cover one pixel per step
// along their major axis. SetBlendMode(BlendCopy) replaces pixels
// instead, which is how coverage masks are written.
//
// Example:
//
//	dev := render.NewSoftwareDevice(800, 600)
//	// ... rasterize paths with dev ...
//	img := dev.Image()
type SoftwareDevice struct {
	img *image.RGBA

	layout    gputypes.VertexBufferLayout
	hasLayout bool
	posOffset uint64
	posZ      bool
	colOffset uint64

	vertices []byte
	stride   uint32
	indices  []uint16

	draws int
	mode  BlendMode
}

// BlendMode selects how a SoftwareDevice combines drawn colors with the
// target.
type BlendMode int

const (
	// BlendSourceOver composites premultiplied colors over the target.
	BlendSourceOver BlendMode = iota

	// BlendCopy replaces the target pixel, zero alpha included.
	BlendCopy
)

// String returns the mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendSourceOver:
		return "SourceOver"
	case BlendCopy:
		return "Copy"
	default:
		return "Unknown"
	}
}

// NewSoftwareDevice creates a device drawing into a new transparent image.
func NewSoftwareDevice(width, height int) *SoftwareDevice {
	return &SoftwareDevice{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewSoftwareDeviceFromImage wraps an existing *image.RGBA.
// The image is used directly without copying.
func NewSoftwareDeviceFromImage(img *image.RGBA) *SoftwareDevice {
	return &SoftwareDevice{img: img}
}

// Image returns the target image. It shares memory with the device.
func (d *SoftwareDevice) Image() *image.RGBA { return d.img }

// SetBlendMode sets how subsequent draws are combined with the target.
func (d *SoftwareDevice) SetBlendMode(m BlendMode) { d.mode = m }

// BlendMode returns the current blend mode.
func (d *SoftwareDevice) BlendMode() BlendMode { return d.mode }

// Draws returns the number of draw calls executed.
func (d *SoftwareDevice) Draws() int { return d.draws }

// Clear fills the entire target with the given color.
func (d *SoftwareDevice) Clear(c color.Color) {
	r, g, b, a := c.RGBA()
	//nolint:gosec // G115: 16-bit channels shifted to 8 bits
	rgba := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}

	bounds := d.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			d.img.SetRGBA(x, y, rgba)
		}
	}
}

// SetVertexLayout sets the layout of subsequent vertex uploads.
func (d *SoftwareDevice) SetVertexLayout(layout gputypes.VertexBufferLayout) error {
	var havePos, haveCol bool
	for _, a := range layout.Attributes {
		switch {
		case a.ShaderLocation == locationPosition && a.Format == gputypes.VertexFormatFloat32x2:
			d.posOffset, d.posZ, havePos = a.Offset, false, true
		case a.ShaderLocation == locationPosition && a.Format == gputypes.VertexFormatFloat32x3:
			d.posOffset, d.posZ, havePos = a.Offset, true, true
		case a.ShaderLocation == locationDiffuse && a.Format == gputypes.VertexFormatUnorm8x4:
			d.colOffset, haveCol = a.Offset, true
		}
	}
	if !havePos || !haveCol || layout.ArrayStride == 0 {
		return ErrLayoutUnsupported
	}
	d.layout = layout
	d.hasLayout = true
	return nil
}

// WriteVertexBuffer copies the vertex data.
func (d *SoftwareDevice) WriteVertexBuffer(data []byte, stride uint32) error {
	if !d.hasLayout {
		return ErrNoLayout
	}
	if uint64(stride) != d.layout.ArrayStride {
		return fmt.Errorf("render: stride %d does not match layout stride %d", stride, d.layout.ArrayStride)
	}
	d.vertices = append(d.vertices[:0], data...)
	d.stride = stride
	return nil
}

// WriteIndexBuffer copies the indices.
func (d *SoftwareDevice) WriteIndexBuffer(indices []uint16) error {
	d.indices = append(d.indices[:0], indices...)
	return nil
}

// DrawIndexedPrimitive draws an indexed triangle list.
func (d *SoftwareDevice) DrawIndexedPrimitive(topology gputypes.PrimitiveTopology, baseVertex int32, firstIndex, primitiveCount uint32) error {
	if topology != gputypes.PrimitiveTopologyTriangleList {
		return fmt.Errorf("%w: indexed %v", ErrTopology, topology)
	}
	end := int(firstIndex) + int(primitiveCount)*3
	if end > len(d.indices) {
		return fmt.Errorf("render: index range %d..%d exceeds %d indices", firstIndex, end, len(d.indices))
	}
	var tri [3]swVertex
	for i := int(firstIndex); i < end; i += 3 {
		for k := range 3 {
			v, err := d.vertex(int(baseVertex) + int(d.indices[i+k]))
			if err != nil {
				return err
			}
			tri[k] = v
		}
		d.fillTriangle(tri)
	}
	d.draws++
	return nil
}

// DrawPrimitive draws a non-indexed triangle list, triangle strip or
// line list.
func (d *SoftwareDevice) DrawPrimitive(topology gputypes.PrimitiveTopology, firstVertex, primitiveCount uint32) error {
	n, err := primitiveVertices(topology, primitiveCount)
	if err != nil {
		return err
	}
	vs := make([]swVertex, n)
	for i := range vs {
		if vs[i], err = d.vertex(int(firstVertex) + i); err != nil {
			return err
		}
	}

	switch topology {
	case gputypes.PrimitiveTopologyTriangleList:
		for i := 0; i+2 < len(vs); i += 3 {
			d.fillTriangle([3]swVertex{vs[i], vs[i+1], vs[i+2]})
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		for i := 0; i+2 < len(vs); i++ {
			d.fillTriangle([3]swVertex{vs[i], vs[i+1], vs[i+2]})
		}
	case gputypes.PrimitiveTopologyLineList:
		for i := 0; i+1 < len(vs); i += 2 {
			d.drawLine(vs[i], vs[i+1])
		}
	default:
		return fmt.Errorf("%w: %v", ErrTopology, topology)
	}
	d.draws++
	return nil
}

// swVertex is a decoded vertex with a premultiplied color in [0, 1].
type swVertex struct {
	x, y float32
	c    [4]float32
}

func (d *SoftwareDevice) vertex(i int) (swVertex, error) {
	base := uint64(i) * uint64(d.stride)
	if i < 0 || base+uint64(d.stride) > uint64(len(d.vertices)) {
		return swVertex{}, fmt.Errorf("render: vertex %d out of range", i)
	}
	v := d.vertices[base : base+uint64(d.stride)]
	p := v[d.posOffset:]
	c := v[d.colOffset : d.colOffset+4]
	return swVertex{
		x: math.Float32frombits(binary.LittleEndian.Uint32(p[0:])),
		y: math.Float32frombits(binary.LittleEndian.Uint32(p[4:])),
		c: [4]float32{
			float32(c[0]) / 255, float32(c[1]) / 255,
			float32(c[2]) / 255, float32(c[3]) / 255,
		},
	}, nil
}

func orient(a, b swVertex, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// ownsEdge breaks ties for pixel centres exactly on edge a->b. The
// reversed edge of a neighbouring triangle gets the opposite answer.
func ownsEdge(a, b swVertex) bool {
	dy := b.y - a.y
	return dy > 0 || (dy == 0 && b.x < a.x)
}

func (d *SoftwareDevice) fillTriangle(t [3]swVertex) {
	area := orient(t[0], t[1], t[2].x, t[2].y)
	if area == 0 {
		return
	}
	if area < 0 {
		t[1], t[2] = t[2], t[1]
		area = -area
	}

	bounds := d.img.Bounds()
	minX := max(bounds.Min.X, int(math32.Floor(min(t[0].x, t[1].x, t[2].x))))
	maxX := min(bounds.Max.X, int(math32.Ceil(max(t[0].x, t[1].x, t[2].x))))
	minY := max(bounds.Min.Y, int(math32.Floor(min(t[0].y, t[1].y, t[2].y))))
	maxY := min(bounds.Max.Y, int(math32.Ceil(max(t[0].y, t[1].y, t[2].y))))

	own := [3]bool{ownsEdge(t[1], t[2]), ownsEdge(t[2], t[0]), ownsEdge(t[0], t[1])}
	inside := func(w float32, owned bool) bool { return w > 0 || (w == 0 && owned) }

	for y := minY; y < maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x < maxX; x++ {
			px := float32(x) + 0.5
			w0 := orient(t[1], t[2], px, py)
			w1 := orient(t[2], t[0], px, py)
			w2 := orient(t[0], t[1], px, py)
			if !inside(w0, own[0]) || !inside(w1, own[1]) || !inside(w2, own[2]) {
				continue
			}
			var c [4]float32
			for k := range 4 {
				c[k] = (w0*t[0].c[k] + w1*t[1].c[k] + w2*t[2].c[k]) / area
			}
			d.blend(x, y, c)
		}
	}
}

// drawLine covers the pixels whose centre projection on the major axis
// lies in [start, end).
func (d *SoftwareDevice) drawLine(a, b swVertex) {
	dx, dy := b.x-a.x, b.y-a.y
	if dx == 0 && dy == 0 {
		return
	}
	xMajor := math32.Abs(dx) >= math32.Abs(dy)
	lo, hi := a.y, b.y
	if xMajor {
		lo, hi = a.x, b.x
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	first := int(math32.Ceil(lo - 0.5))
	last := int(math32.Ceil(hi - 0.5))

	for i := first; i < last; i++ {
		centre := float32(i) + 0.5
		var t float32
		var x, y int
		if xMajor {
			t = (centre - a.x) / dx
			x, y = i, int(math32.Floor(a.y+t*dy))
		} else {
			t = (centre - a.y) / dy
			x, y = int(math32.Floor(a.x+t*dx)), i
		}
		if !(image.Point{X: x, Y: y}).In(d.img.Bounds()) {
			continue
		}
		var c [4]float32
		for k := range 4 {
			c[k] = a.c[k] + t*(b.c[k]-a.c[k])
		}
		d.blend(x, y, c)
	}
}

// blend writes a premultiplied color to the pixel at (x, y) according
// to the blend mode.
func (d *SoftwareDevice) blend(x, y int, c [4]float32) {
	i := d.img.PixOffset(x, y)
	px := d.img.Pix[i : i+4 : i+4]
	inv := 1 - c[3]
	if d.mode == BlendCopy {
		inv = 0
	}
	for k := range 4 {
		v := c[k]*255 + float32(px[k])*inv
		px[k] = uint8(min(255, max(0, v+0.5)))
	}
}
