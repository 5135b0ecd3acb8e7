// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"math/bits"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format is a bitmask of the channels a vertex layout carries besides
// its X and Y position.
type Format uint16

const (
	// FormatZ is a depth value.
	FormatZ Format = 1 << iota

	// FormatDiffuse is a packed premultiplied RGBA8 color. Its alpha
	// carries anti-aliasing coverage.
	FormatDiffuse

	// FormatUV0 is the first texture coordinate pair. Further pairs
	// follow in consecutive bits, see FormatUV.
	FormatUV0
)

// MaxUVChannels is the number of texture coordinate pairs a format can have.
const MaxUVChannels = 8

// formatUVMask covers all texture coordinate bits.
const formatUVMask = Format(0xFF) * FormatUV0

// FormatUV returns the bit of texture coordinate pair i.
func FormatUV(i int) Format {
	return FormatUV0 << uint(i)
}

// Has reports whether f contains every channel of o.
func (f Format) Has(o Format) bool {
	return f&o == o
}

// UVCount returns the number of texture coordinate pairs in f.
func (f Format) UVCount() int {
	return bits.OnesCount16(uint16(f & formatUVMask))
}

// String lists the channels, e.g. "XYZ|Diffuse|UV0|UV1".
func (f Format) String() string {
	var sb strings.Builder
	sb.WriteString("XY")
	if f.Has(FormatZ) {
		sb.WriteString("Z")
	}
	if f.Has(FormatDiffuse) {
		sb.WriteString("|Diffuse")
	}
	for i := range MaxUVChannels {
		if f.Has(FormatUV(i)) {
			sb.WriteString("|UV")
			sb.WriteByte(byte('0' + i))
		}
	}
	return sb.String()
}

// Shader locations used by Layout.
const (
	LocationPosition = 0
	LocationDiffuse  = 1
	LocationUV0      = 2
)

// Layout describes a vertex of format f for pipeline creation. Channels
// are packed in the order position, diffuse, UV0..UV7, which is also the
// field order of the vertex types in this package.
func Layout(f Format) gputypes.VertexBufferLayout {
	var attrs []gputypes.VertexAttribute
	offset := uint64(0)
	add := func(format gputypes.VertexFormat, location uint32) {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += format.Size()
	}

	if f.Has(FormatZ) {
		add(gputypes.VertexFormatFloat32x3, LocationPosition)
	} else {
		add(gputypes.VertexFormatFloat32x2, LocationPosition)
	}
	if f.Has(FormatDiffuse) {
		add(gputypes.VertexFormatUnorm8x4, LocationDiffuse)
	}
	for i := range MaxUVChannels {
		if f.Has(FormatUV(i)) {
			add(gputypes.VertexFormatFloat32x2, uint32(LocationUV0+i))
		}
	}

	return gputypes.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}
}
