// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Vertex shader input locations. They match the vertex package layout.
const (
	locationPosition = 0
	locationDiffuse  = 1
)

// viewportUniformSize is the size of the Viewport uniform: size and origin.
const viewportUniformSize = 16

// ErrLayoutUnsupported is returned for vertex layouts without a position
// and a diffuse color attribute.
var ErrLayoutUnsupported = errors.New("render: vertex layout needs position and diffuse attributes")

// PipelineConfig configures the render pipelines created by a
// PipelineCache. The zero value renders to a single-sampled BGRA8 target.
type PipelineConfig struct {
	// Format is the color target format.
	Format gputypes.TextureFormat

	// SampleCount is the MSAA sample count of the target.
	SampleCount uint32
}

func (c PipelineConfig) withDefaults() PipelineConfig {
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
	return c
}

type pipelineKey struct {
	layout   string
	topology gputypes.PrimitiveTopology
}

// PipelineCache creates render pipelines on demand, one per vertex layout
// and primitive topology. All pipelines share one bind group layout with
// the viewport uniform at binding 0.
type PipelineCache struct {
	device hal.Device
	config PipelineConfig

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout

	shaders   map[string]hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline
}

// NewPipelineCache returns an empty cache. No GPU objects are created
// until the first pipeline is requested.
func NewPipelineCache(device hal.Device, config PipelineConfig) *PipelineCache {
	return &PipelineCache{
		device:    device,
		config:    config.withDefaults(),
		shaders:   make(map[string]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}
}

// Len returns the number of cached pipelines.
func (c *PipelineCache) Len() int { return len(c.pipelines) }

// BindGroupLayout returns the layout of the viewport bind group.
func (c *PipelineCache) BindGroupLayout() (hal.BindGroupLayout, error) {
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}
	return c.bindLayout, nil
}

func (c *PipelineCache) ensureLayouts() error {
	if c.pipeLayout != nil {
		return nil
	}
	bindLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "hwraster_viewport_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create viewport bind group layout: %w", err)
	}
	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "hwraster_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		c.device.DestroyBindGroupLayout(bindLayout)
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	c.bindLayout = bindLayout
	c.pipeLayout = pipeLayout
	return nil
}

// Pipeline returns the pipeline drawing layout with topology, creating it
// on first use.
func (c *PipelineCache) Pipeline(layout gputypes.VertexBufferLayout, topology gputypes.PrimitiveTopology) (hal.RenderPipeline, error) {
	lk := layoutKey(layout)
	key := pipelineKey{layout: lk, topology: topology}
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}
	shader, err := c.shader(lk, layout)
	if err != nil {
		return nil, err
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "hwraster_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{layout},
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    c.config.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: c.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %v pipeline: %w", topology, err)
	}
	c.pipelines[key] = pipeline
	slogger().Debug("render: pipeline created", "layout", lk, "topology", topology)
	return pipeline, nil
}

func (c *PipelineCache) shader(lk string, layout gputypes.VertexBufferLayout) (hal.ShaderModule, error) {
	if m, ok := c.shaders[lk]; ok {
		return m, nil
	}
	src, err := ShaderSource(layout)
	if err != nil {
		return nil, err
	}
	spirv, err := compileShaderToSPIRV(src)
	if err != nil {
		return nil, err
	}
	m, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "hwraster_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("create shader module: %w", err)
	}
	c.shaders[lk] = m
	return m, nil
}

// Destroy releases every GPU object owned by the cache.
func (c *PipelineCache) Destroy() {
	for k, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
	for k, m := range c.shaders {
		c.device.DestroyShaderModule(m)
		delete(c.shaders, k)
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
}

func layoutKey(l gputypes.VertexBufferLayout) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", l.ArrayStride)
	for _, a := range l.Attributes {
		fmt.Fprintf(&sb, ";%d:%d@%d", a.ShaderLocation, a.Format, a.Offset)
	}
	return sb.String()
}

// ShaderSource generates the WGSL for a vertex layout. Positions are in
// target pixels and are mapped to clip space with the Viewport uniform.
// The diffuse color is premultiplied and written unchanged.
func ShaderSource(layout gputypes.VertexBufferLayout) (string, error) {
	var posFormat, diffuseFormat gputypes.VertexFormat
	for _, a := range layout.Attributes {
		switch a.ShaderLocation {
		case locationPosition:
			posFormat = a.Format
		case locationDiffuse:
			diffuseFormat = a.Format
		}
	}

	var posType, posZ string
	switch posFormat {
	case gputypes.VertexFormatFloat32x2:
		posType, posZ = "vec2<f32>", "0.0"
	case gputypes.VertexFormatFloat32x3:
		posType, posZ = "vec3<f32>", "position.z"
	default:
		return "", ErrLayoutUnsupported
	}
	if diffuseFormat != gputypes.VertexFormatUnorm8x4 {
		return "", ErrLayoutUnsupported
	}

	var sb strings.Builder
	sb.WriteString(`struct Viewport {
    size: vec2<f32>,
    origin: vec2<f32>,
}

@group(0) @binding(0) var<uniform> viewport: Viewport;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(`)
	fmt.Fprintf(&sb, "@location(%d) position: %s, @location(%d) diffuse: vec4<f32>", locationPosition, posType, locationDiffuse)
	sb.WriteString(`) -> VertexOutput {
    var out: VertexOutput;
    let ndc = (position.xy - viewport.origin) / viewport.size * vec2<f32>(2.0, -2.0) + vec2<f32>(-1.0, 1.0);
`)
	fmt.Fprintf(&sb, "    out.position = vec4<f32>(ndc, %s, 1.0);\n", posZ)
	sb.WriteString(`    out.color = diffuse;
    return out;
}

@fragment
fn fs_main(input: VertexOutput) -> @location(0) vec4<f32> {
    return input.color;
}
`)
	return sb.String(), nil
}

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(src string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
