// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"honnef.co/go/safeish"

	"github.com/gogpu/hwraster/internal/vertex"
)

// DeviceHandle provides GPU device access from the host application.
//
// Key principle: hwraster RECEIVES the device from the host, it does NOT
// create one. DeviceHandle is an alias for gpucontext.DeviceProvider so any
// host in the gpucontext ecosystem can be passed directly.
type DeviceHandle = gpucontext.DeviceProvider

var (
	// ErrNoRenderPass is returned when a draw is issued outside
	// BeginPass and EndPass.
	ErrNoRenderPass = errors.New("render: no render pass")

	// ErrProviderNotHAL is returned when a DeviceHandle does not expose
	// its hal.Device and hal.Queue.
	ErrProviderNotHAL = errors.New("render: provider does not expose a HAL device")

	// ErrNoLayout is returned when a draw is issued before SetVertexLayout.
	ErrNoLayout = errors.New("render: vertex layout not set")

	// ErrTopology is returned for topologies the device cannot draw.
	ErrTopology = errors.New("render: unsupported primitive topology")
)

var _ vertex.Device = (*HALDevice)(nil)

// DeviceStats counts the work recorded by a HALDevice since creation.
type DeviceStats struct {
	Passes       int
	Draws        int
	VertexBytes  uint64
	IndexBytes   uint64
	BufferGrowth int
}

// HALDevice records hwraster draws into a render pass of a hal.Device.
//
// A HALDevice is not safe for concurrent use. Draws are only accepted
// between BeginPass and EndPass.
type HALDevice struct {
	device hal.Device
	queue  hal.Queue

	pipelines *PipelineCache
	vertices  streamBuffer
	indices   streamBuffer

	uniform   hal.Buffer
	bindGroup hal.BindGroup

	pass      hal.RenderPassEncoder
	layout    gputypes.VertexBufferLayout
	hasLayout bool
	indexTmp  []uint16

	stats DeviceStats
}

// NewHALDevice wraps device and queue.
func NewHALDevice(device hal.Device, queue hal.Queue, config PipelineConfig) *HALDevice {
	return &HALDevice{
		device:    device,
		queue:     queue,
		pipelines: NewPipelineCache(device, config),
		vertices: streamBuffer{
			label: "hwraster_vertices",
			usage: gputypes.BufferUsageVertex,
		},
		indices: streamBuffer{
			label: "hwraster_indices",
			usage: gputypes.BufferUsageIndex,
		},
	}
}

// NewHALDeviceFromProvider extracts the hal.Device and hal.Queue from a
// host DeviceHandle. The provider must implement HalDevice() any and
// HalQueue() any.
func NewHALDeviceFromProvider(provider DeviceHandle, config PipelineConfig) (*HALDevice, error) {
	hp, ok := provider.(interface {
		HalDevice() any
		HalQueue() any
	})
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrProviderNotHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrProviderNotHAL, hp.HalQueue())
	}
	return NewHALDevice(device, queue, config), nil
}

// Stats returns the counters recorded so far.
func (d *HALDevice) Stats() DeviceStats {
	s := d.stats
	s.BufferGrowth = d.vertices.grown + d.indices.grown
	return s
}

// Pipelines returns the device's pipeline cache.
func (d *HALDevice) Pipelines() *PipelineCache { return d.pipelines }

// BeginPass starts recording into pass. target is the pixel rectangle the
// pass renders to; vertex positions are interpreted relative to it.
//
// All submissions that used this device must have completed before the
// next BeginPass, as stream buffers are rewound and reused.
func (d *HALDevice) BeginPass(pass hal.RenderPassEncoder, target image.Rectangle) error {
	if target.Empty() {
		return fmt.Errorf("render: empty target %v", target)
	}
	if err := d.ensureUniform(); err != nil {
		return err
	}
	u := []float32{
		float32(target.Dx()), float32(target.Dy()),
		float32(target.Min.X), float32(target.Min.Y),
	}
	if err := d.queue.WriteBuffer(d.uniform, 0, safeish.SliceCast[[]byte](u)); err != nil {
		return fmt.Errorf("write viewport uniform: %w", err)
	}

	d.vertices.reset(d.device)
	d.indices.reset(d.device)
	d.pass = pass
	d.stats.Passes++
	pass.SetBindGroup(0, d.bindGroup, nil)
	return nil
}

// EndPass stops recording. It does not end the hal pass, which belongs to
// the caller.
func (d *HALDevice) EndPass() {
	d.pass = nil
	d.hasLayout = false
}

func (d *HALDevice) ensureUniform() error {
	if d.bindGroup != nil {
		return nil
	}
	layout, err := d.pipelines.BindGroupLayout()
	if err != nil {
		return err
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "hwraster_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create viewport uniform: %w", err)
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "hwraster_viewport_bind",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: viewportUniformSize,
			}},
		},
	})
	if err != nil {
		d.device.DestroyBuffer(buf)
		return fmt.Errorf("create viewport bind group: %w", err)
	}
	d.uniform = buf
	d.bindGroup = bg
	return nil
}

// SetVertexLayout sets the layout of subsequent vertex uploads.
func (d *HALDevice) SetVertexLayout(layout gputypes.VertexBufferLayout) error {
	if layout.ArrayStride == 0 || len(layout.Attributes) == 0 {
		return ErrLayoutUnsupported
	}
	d.layout = layout
	d.hasLayout = true
	return nil
}

// WriteVertexBuffer uploads vertex data and binds it to slot 0.
func (d *HALDevice) WriteVertexBuffer(data []byte, stride uint32) error {
	if d.pass == nil {
		return ErrNoRenderPass
	}
	if !d.hasLayout {
		return ErrNoLayout
	}
	if uint64(stride) != d.layout.ArrayStride {
		return fmt.Errorf("render: stride %d does not match layout stride %d", stride, d.layout.ArrayStride)
	}
	buf, off, err := d.vertices.write(d.device, d.queue, data)
	if err != nil {
		return err
	}
	d.stats.VertexBytes += uint64(len(data))
	d.pass.SetVertexBuffer(0, buf, off)
	return nil
}

// WriteIndexBuffer uploads 16-bit indices and binds them.
func (d *HALDevice) WriteIndexBuffer(indices []uint16) error {
	if d.pass == nil {
		return ErrNoRenderPass
	}
	// Buffer writes must be a multiple of 4 bytes.
	if len(indices)%2 != 0 {
		d.indexTmp = append(append(d.indexTmp[:0], indices...), 0)
		indices = d.indexTmp
	}
	data := safeish.SliceCast[[]byte](indices)
	buf, off, err := d.indices.write(d.device, d.queue, data)
	if err != nil {
		return err
	}
	d.stats.IndexBytes += uint64(len(data))
	d.pass.SetIndexBuffer(buf, gputypes.IndexFormatUint16, off)
	return nil
}

// DrawIndexedPrimitive draws primitiveCount primitives from the bound
// index buffer.
func (d *HALDevice) DrawIndexedPrimitive(topology gputypes.PrimitiveTopology, baseVertex int32, firstIndex, primitiveCount uint32) error {
	n, err := d.prepareDraw(topology, primitiveCount)
	if err != nil {
		return err
	}
	d.pass.DrawIndexed(n, 1, firstIndex, baseVertex, 0)
	return nil
}

// DrawPrimitive draws primitiveCount primitives starting at firstVertex.
func (d *HALDevice) DrawPrimitive(topology gputypes.PrimitiveTopology, firstVertex, primitiveCount uint32) error {
	n, err := d.prepareDraw(topology, primitiveCount)
	if err != nil {
		return err
	}
	d.pass.Draw(n, 1, firstVertex, 0)
	return nil
}

func (d *HALDevice) prepareDraw(topology gputypes.PrimitiveTopology, primitiveCount uint32) (uint32, error) {
	if d.pass == nil {
		return 0, ErrNoRenderPass
	}
	if !d.hasLayout {
		return 0, ErrNoLayout
	}
	n, err := primitiveVertices(topology, primitiveCount)
	if err != nil {
		return 0, err
	}
	p, err := d.pipelines.Pipeline(d.layout, topology)
	if err != nil {
		return 0, err
	}
	d.pass.SetPipeline(p)
	d.stats.Draws++
	return n, nil
}

// Destroy releases all GPU objects owned by the device.
func (d *HALDevice) Destroy() {
	d.vertices.destroy(d.device)
	d.indices.destroy(d.device)
	if d.bindGroup != nil {
		d.device.DestroyBindGroup(d.bindGroup)
		d.bindGroup = nil
	}
	if d.uniform != nil {
		d.device.DestroyBuffer(d.uniform)
		d.uniform = nil
	}
	d.pipelines.Destroy()
}

// primitiveVertices converts a primitive count to a vertex count.
func primitiveVertices(topology gputypes.PrimitiveTopology, count uint32) (uint32, error) {
	switch topology {
	case gputypes.PrimitiveTopologyTriangleList:
		return count * 3, nil
	case gputypes.PrimitiveTopologyTriangleStrip:
		return count + 2, nil
	case gputypes.PrimitiveTopologyLineList:
		return count * 2, nil
	case gputypes.PrimitiveTopologyLineStrip:
		return count + 1, nil
	case gputypes.PrimitiveTopologyPointList:
		return count, nil
	}
	return 0, fmt.Errorf("%w: %v", ErrTopology, topology)
}

// NullDeviceHandle is a DeviceHandle without a device.
// Used for CPU-only rendering where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
