// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"
)

// WaffleMode selects how a texture coordinate channel is tiled when the
// texture cannot wrap in hardware.
type WaffleMode uint8

const (
	// WaffleNone disables waffling.
	WaffleNone WaffleMode = 0

	// WaffleX repeats the sub-rectangle along U.
	WaffleX WaffleMode = 1 << iota

	// WaffleY repeats the sub-rectangle along V.
	WaffleY

	// WaffleFlipX mirrors odd tiles along U. Implies WaffleX.
	WaffleFlipX

	// WaffleFlipY mirrors odd tiles along V. Implies WaffleY.
	WaffleFlipY
)

// MinWaffleWidthPixels is the narrowest tile, in device pixels, that is
// still waffled. Narrower tiles would split primitives into slivers, so
// such axes are left alone.
const MinWaffleWidthPixels = 0.25

// Rect is an axis-aligned rectangle in float32 coordinates.
type Rect struct {
	MinX, MinY, MaxX, MaxY float32
}

// Width returns the horizontal extent.
func (r Rect) Width() float32 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

// Identity is the identity affine transform.
var Identity = f32.Aff3{1, 0, 0, 0, 1, 0}

// uvMapping generates one texture coordinate channel.
type uvMapping struct {
	enabled bool
	m       f32.Aff3 // device position to UV
	waffle  WaffleMode
	sub     Rect // packed sub-rectangle in texture space
}

// Mappings holds the per-draw state used to synthesize vertex channels.
// It is configured before geometry is submitted and read-only while
// vertices are expanded.
type Mappings struct {
	format Format

	z       float32
	diffuse uint32

	uv [MaxUVChannels]uvMapping

	transform    f32.Aff3
	hasTransform bool
}

func newMappings(f Format) Mappings {
	m := Mappings{format: f}
	m.Reset()
	return m
}

// Reset restores default mappings: Z of 0, opaque white, no texture
// coordinates and no position transform.
func (m *Mappings) Reset() {
	m.z = 0
	m.diffuse = PackColor(gputypes.ColorWhite)
	m.uv = [MaxUVChannels]uvMapping{}
	m.transform = Identity
	m.hasTransform = false
}

// SetConstantMapping sets the Z value and color given to every vertex.
func (m *Mappings) SetConstantMapping(z float32, c gputypes.Color) {
	m.z = z
	m.diffuse = PackColor(c)
}

// SetTextureMapping makes channel i a function of the device position.
func (m *Mappings) SetTextureMapping(i int, tex f32.Aff3) error {
	if i < 0 || i >= MaxUVChannels || !m.format.Has(FormatUV(i)) {
		return fmt.Errorf("%w: texture channel %d in format %v", ErrNotImplemented, i, m.format)
	}
	m.uv[i].enabled = true
	m.uv[i].m = tex
	return nil
}

// SetWaffling enables waffling of channel i into the sub-rectangle sub of
// the packed texture. The channel needs a texture mapping.
func (m *Mappings) SetWaffling(i int, mode WaffleMode, sub Rect) error {
	if i < 0 || i >= MaxUVChannels || !m.uv[i].enabled {
		return fmt.Errorf("vertex: waffling channel %d without texture mapping", i)
	}
	if mode&WaffleFlipX != 0 {
		mode |= WaffleX
	}
	if mode&WaffleFlipY != 0 {
		mode |= WaffleY
	}
	m.uv[i].waffle = mode
	m.uv[i].sub = sub
	return nil
}

// SetTransformMapping sets a 2D transform applied to positions before
// texture coordinates are generated.
func (m *Mappings) SetTransformMapping(t f32.Aff3) {
	m.transform = t
	m.hasTransform = t != Identity
}

// transformPoint applies the position transform.
func (m *Mappings) transformPoint(x, y float32) (float32, float32) {
	t := &m.transform
	return t[0]*x + t[1]*y + t[2], t[3]*x + t[4]*y + t[5]
}

// synthesized returns the channels the builder must generate.
func (m *Mappings) synthesized() Format {
	f := m.format & (FormatZ | FormatDiffuse)
	for i := range MaxUVChannels {
		if m.uv[i].enabled {
			f |= FormatUV(i)
		}
	}
	return f
}

// waffleAxis is a linear function of the incoming device position whose
// integer crossings are tile boundaries.
type waffleAxis struct {
	a, b, c float32
}

func (w waffleAxis) at(x, y float32) float32 {
	return w.a*x + w.b*y + w.c
}

// waffleAxes returns one axis per waffled UV direction whose tiles are
// at least MinWaffleWidthPixels wide. The axes are expressed in the
// coordinates geometry arrives in, so the position transform is folded
// in.
func (m *Mappings) waffleAxes() []waffleAxis {
	var axes []waffleAxis
	for i := range MaxUVChannels {
		uv := &m.uv[i]
		if !uv.enabled || uv.waffle == WaffleNone {
			continue
		}
		if uv.waffle&WaffleX != 0 {
			if axis, ok := m.axis(uv.m[0], uv.m[1], uv.m[2]); ok {
				axes = append(axes, axis)
			}
		}
		if uv.waffle&WaffleY != 0 {
			if axis, ok := m.axis(uv.m[3], uv.m[4], uv.m[5]); ok {
				axes = append(axes, axis)
			}
		}
	}
	return axes
}

// axis composes the UV row (a, b, c) with the position transform and
// applies the minimum tile width.
func (m *Mappings) axis(a, b, c float32) (waffleAxis, bool) {
	if !tileWide(a, b) {
		return waffleAxis{}, false
	}
	t := &m.transform
	return waffleAxis{
		a: a*t[0] + b*t[3],
		b: a*t[1] + b*t[4],
		c: a*t[2] + b*t[5] + c,
	}, true
}

// tileWide reports whether a UV row with gradient (a, b) per pixel has
// tiles at least MinWaffleWidthPixels wide.
func tileWide(a, b float32) bool {
	grad := math32.Hypot(a, b)
	return grad != 0 && 1/grad >= MinWaffleWidthPixels
}
