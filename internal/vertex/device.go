// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import "github.com/gogpu/gputypes"

// Device is the part of a GPU device the builder draws through.
//
// Calls arrive in the order SetVertexLayout, WriteVertexBuffer, optional
// WriteIndexBuffer, then one or more draws that read the buffers written
// last. Primitive counts are triangles for triangle topologies and
// segments for line lists.
type Device interface {
	// SetVertexLayout selects the pipeline matching layout.
	SetVertexLayout(layout gputypes.VertexBufferLayout) error

	// WriteVertexBuffer uploads data, a whole number of vertices of the
	// given stride, and binds it.
	WriteVertexBuffer(data []byte, stride uint32) error

	// WriteIndexBuffer uploads and binds 16-bit indices.
	WriteIndexBuffer(indices []uint16) error

	// DrawIndexedPrimitive draws primitiveCount primitives reading indices
	// from firstIndex, each offset by baseVertex.
	DrawIndexedPrimitive(topology gputypes.PrimitiveTopology, baseVertex int32, firstIndex, primitiveCount uint32) error

	// DrawPrimitive draws primitiveCount primitives from consecutive
	// vertices starting at firstVertex.
	DrawPrimitive(topology gputypes.PrimitiveTopology, firstVertex, primitiveCount uint32) error
}
