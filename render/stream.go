// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// minStreamSize is the initial size of a stream buffer in bytes.
const minStreamSize = 64 << 10

// streamBuffer is a GPU buffer filled front to back during one pass.
//
// Draws recorded earlier in the pass still read the ranges they were
// given, so a full buffer is never rewritten in place. It is replaced by
// a larger one and the old buffer is kept in retired until reset.
type streamBuffer struct {
	label string
	usage gputypes.BufferUsage

	buf     hal.Buffer
	size    uint64
	offset  uint64
	retired []hal.Buffer

	grown int
}

// write uploads data at the current offset and returns the buffer and
// offset the data landed at. len(data) must be a multiple of 4.
func (s *streamBuffer) write(device hal.Device, queue hal.Queue, data []byte) (hal.Buffer, uint64, error) {
	n := alignUp(uint64(len(data)), 4)
	if s.buf == nil || s.offset+n > s.size {
		size := max(s.size*2, n, minStreamSize)
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  size,
			Usage: s.usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("create %s: %w", s.label, err)
		}
		if s.buf != nil {
			s.retired = append(s.retired, s.buf)
			s.grown++
			slogger().Debug("render: stream buffer grown",
				"label", s.label, "size", size, "retired", len(s.retired))
		}
		s.buf, s.size, s.offset = buf, size, 0
	}

	if err := queue.WriteBuffer(s.buf, s.offset, data); err != nil {
		return nil, 0, fmt.Errorf("write %s: %w", s.label, err)
	}
	off := s.offset
	s.offset += n
	return s.buf, off, nil
}

// reset rewinds the buffer and releases retired buffers. The caller must
// have waited for all submissions that used them.
func (s *streamBuffer) reset(device hal.Device) {
	for _, b := range s.retired {
		device.DestroyBuffer(b)
	}
	s.retired = s.retired[:0]
	s.offset = 0
}

func (s *streamBuffer) destroy(device hal.Device) {
	s.reset(device)
	if s.buf != nil {
		device.DestroyBuffer(s.buf)
		s.buf = nil
	}
	s.size = 0
}

func alignUp(n, a uint64) uint64 {
	return (n + a - 1) &^ (a - 1)
}
