// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"math"

	"github.com/gogpu/gputypes"
)

// Vertex is the pointer constraint every output vertex type satisfies.
// V is the vertex value type stored in buffers.
type Vertex[V any] interface {
	*V

	// Format returns the channels of the layout. It must not depend on
	// the receiver's contents.
	Format() Format

	Position() (x, y float32)
	SetPosition(x, y float32)
	SetZ(z float32)
	Diffuse() uint32
	SetDiffuse(c uint32)
	UV(i int) (u, v float32)
	SetUV(i int, u, v float32)
}

// XYZDUV2 has a position, a diffuse color and two texture coordinate pairs.
type XYZDUV2 struct {
	X, Y, Z float32
	Color   uint32
	Tex     [2][2]float32
}

func (*XYZDUV2) Format() Format {
	return FormatZ | FormatDiffuse | FormatUV(0) | FormatUV(1)
}

func (v *XYZDUV2) Position() (x, y float32)  { return v.X, v.Y }
func (v *XYZDUV2) SetPosition(x, y float32)  { v.X, v.Y = x, y }
func (v *XYZDUV2) SetZ(z float32)            { v.Z = z }
func (v *XYZDUV2) Diffuse() uint32           { return v.Color }
func (v *XYZDUV2) SetDiffuse(c uint32)       { v.Color = c }
func (v *XYZDUV2) UV(i int) (u, w float32)   { return v.Tex[i][0], v.Tex[i][1] }
func (v *XYZDUV2) SetUV(i int, u, w float32) { v.Tex[i] = [2]float32{u, w} }

// XYZDUV8 has a position, a diffuse color and eight texture coordinate
// pairs.
type XYZDUV8 struct {
	X, Y, Z float32
	Color   uint32
	Tex     [8][2]float32
}

func (*XYZDUV8) Format() Format {
	return FormatZ | FormatDiffuse | formatUVMask
}

func (v *XYZDUV8) Position() (x, y float32)  { return v.X, v.Y }
func (v *XYZDUV8) SetPosition(x, y float32)  { v.X, v.Y = x, y }
func (v *XYZDUV8) SetZ(z float32)            { v.Z = z }
func (v *XYZDUV8) Diffuse() uint32           { return v.Color }
func (v *XYZDUV8) SetDiffuse(c uint32)       { v.Color = c }
func (v *XYZDUV8) UV(i int) (u, w float32)   { return v.Tex[i][0], v.Tex[i][1] }
func (v *XYZDUV8) SetUV(i int, u, w float32) { v.Tex[i] = [2]float32{u, w} }

// PackColor converts c to premultiplied RGBA8 with red in the lowest
// byte, matching gputypes.VertexFormatUnorm8x4 in little-endian memory.
func PackColor(c gputypes.Color) uint32 {
	p := c.Premultiplied()
	return uint32(unorm8(p.R)) |
		uint32(unorm8(p.G))<<8 |
		uint32(unorm8(p.B))<<16 |
		uint32(unorm8(p.A))<<24
}

// ScaleColor multiplies every channel of a packed premultiplied color by
// coverage a in [0, 1].
func ScaleColor(c uint32, a float32) uint32 {
	var out uint32
	for shift := 0; shift < 32; shift += 8 {
		ch := float32((c >> shift) & 0xFF)
		out |= uint32(ch*a+0.5) << shift
	}
	return out
}

// ColorAlpha returns the alpha channel of a packed color.
func ColorAlpha(c uint32) uint8 {
	return uint8(c >> 24)
}

func unorm8(v float64) uint8 {
	return uint8(math.Round(max(0, min(v, 1)) * 255))
}
