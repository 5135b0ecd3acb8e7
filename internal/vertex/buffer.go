// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"honnef.co/go/safeish"
)

// Buffer is the finished output of a Builder. Vertices holds the indexed
// triangle list, then the triangle strip, then the line list.
//
// A Buffer is owned by its Builder and is valid until the next
// FlushInternal or BeginBuilding.
type Buffer[V any] struct {
	Vertices []V
	Indices  []uint16

	TriangleVertices int
	StripVertices    int
	LineVertices     int

	Layout gputypes.VertexBufferLayout
}

// IsEmpty reports whether the buffer draws nothing.
func (b *Buffer[V]) IsEmpty() bool {
	return len(b.Indices) == 0 && b.StripVertices < 3 && b.LineVertices < 2
}

// TriangleCount returns the number of indexed triangles.
func (b *Buffer[V]) TriangleCount() int { return len(b.Indices) / 3 }

// StripTriangleCount returns the number of strip triangles, degenerate
// stitching triangles included.
func (b *Buffer[V]) StripTriangleCount() int { return max(0, b.StripVertices-2) }

// LineCount returns the number of line segments.
func (b *Buffer[V]) LineCount() int { return b.LineVertices / 2 }

// Strip returns the triangle strip vertices.
func (b *Buffer[V]) Strip() []V {
	return b.Vertices[b.TriangleVertices : b.TriangleVertices+b.StripVertices]
}

// Lines returns the line list vertices.
func (b *Buffer[V]) Lines() []V {
	first := b.TriangleVertices + b.StripVertices
	return b.Vertices[first : first+b.LineVertices]
}

// Draw uploads the buffer to d and issues one draw per non-empty
// primitive list.
func (b *Buffer[V]) Draw(d Device) error {
	if b.IsEmpty() {
		return nil
	}
	if err := d.SetVertexLayout(b.Layout); err != nil {
		return fmt.Errorf("vertex: set layout: %w", err)
	}
	data := safeish.SliceCast[[]byte](b.Vertices)
	if err := d.WriteVertexBuffer(data, uint32(b.Layout.ArrayStride)); err != nil {
		return fmt.Errorf("vertex: write vertices: %w", err)
	}

	if n := b.TriangleCount(); n > 0 {
		if err := d.WriteIndexBuffer(b.Indices); err != nil {
			return fmt.Errorf("vertex: write indices: %w", err)
		}
		if err := d.DrawIndexedPrimitive(gputypes.PrimitiveTopologyTriangleList, 0, 0, uint32(n)); err != nil {
			return err
		}
	}
	if n := b.StripTriangleCount(); n > 0 {
		if err := d.DrawPrimitive(gputypes.PrimitiveTopologyTriangleStrip, uint32(b.TriangleVertices), uint32(n)); err != nil {
			return err
		}
	}
	if n := b.LineCount(); n > 0 {
		first := b.TriangleVertices + b.StripVertices
		if err := d.DrawPrimitive(gputypes.PrimitiveTopologyLineList, uint32(first), uint32(n)); err != nil {
			return err
		}
	}
	return nil
}
