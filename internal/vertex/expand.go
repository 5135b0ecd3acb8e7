// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

// expandFunc fills the synthesized channels of verts in place. alpha is
// the coverage of each vertex.
type expandFunc[V any] func(m *Mappings, c *colorCache, verts []V, alpha []float32)

// expandKey selects an expansion routine: the synthesized channels and
// whether the diffuse color is scaled by coverage.
type expandKey struct {
	channels Format
	aa       bool
}

// expanders returns the routines specialized for the common channel
// combinations. They do not apply a position transform.
func expanders[V any, P Vertex[V]]() map[expandKey]expandFunc[V] {
	const (
		d   = FormatDiffuse
		zd  = FormatZ | FormatDiffuse
		duv = FormatDiffuse | FormatUV0
		all = FormatZ | FormatDiffuse | FormatUV0
	)
	return map[expandKey]expandFunc[V]{
		{d, false}:   expandD[V, P],
		{d, true}:    expandDAA[V, P],
		{zd, false}:  expandZD[V, P],
		{zd, true}:   expandZDAA[V, P],
		{duv, false}: expandDUV0[V, P],
		{duv, true}:  expandDUV0AA[V, P],
		{all, false}: expandZDUV0[V, P],
		{all, true}:  expandZDUV0AA[V, P],
	}
}

// ExpandVertices converts the collected positions and coverage into the
// full vertex format. The position transform is applied first so that
// texture coordinates derive from device positions.
func (b *Builder[V, P]) ExpandVertices() {
	m := &b.maps
	b.colors.reset(m.diffuse)

	fn, ok := b.expanders[expandKey{channels: m.synthesized(), aa: b.aaScale}]
	if !ok || m.hasTransform {
		aa := b.aaScale
		fn = func(m *Mappings, c *colorCache, verts []V, alpha []float32) {
			expandGeneral[V, P](m, c, aa, verts, alpha)
		}
	}
	for _, s := range []*section[V]{&b.tri, &b.strip, &b.lines} {
		fn(m, &b.colors, s.verts, s.alpha)
	}
}

// colorCache scales the constant diffuse color by coverage. Runs of equal
// coverage are common, so the last result is kept.
type colorCache struct {
	color uint32

	valid bool
	lastA float32
	last  uint32

	computed int
}

func (c *colorCache) reset(color uint32) {
	*c = colorCache{color: color}
}

func (c *colorCache) scaled(a float32) uint32 {
	switch {
	case a <= 0:
		return 0
	case a >= 1:
		return c.color
	case c.valid && a == c.lastA:
		return c.last
	}
	c.valid, c.lastA, c.last = true, a, ScaleColor(c.color, a)
	c.computed++
	return c.last
}

func expandGeneral[V any, P Vertex[V]](m *Mappings, c *colorCache, aa bool, verts []V, alpha []float32) {
	ch := m.synthesized()
	for i := range verts {
		p := P(&verts[i])
		x, y := p.Position()
		if m.hasTransform {
			x, y = m.transformPoint(x, y)
			p.SetPosition(x, y)
		}
		if ch.Has(FormatZ) {
			p.SetZ(m.z)
		}
		if ch.Has(FormatDiffuse) {
			if aa {
				p.SetDiffuse(c.scaled(alpha[i]))
			} else {
				p.SetDiffuse(m.diffuse)
			}
		}
		for j := range MaxUVChannels {
			if !ch.Has(FormatUV(j)) {
				continue
			}
			t := &m.uv[j].m
			p.SetUV(j, t[0]*x+t[1]*y+t[2], t[3]*x+t[4]*y+t[5])
		}
	}
}

func expandD[V any, P Vertex[V]](m *Mappings, _ *colorCache, verts []V, _ []float32) {
	for i := range verts {
		P(&verts[i]).SetDiffuse(m.diffuse)
	}
}

func expandDAA[V any, P Vertex[V]](_ *Mappings, c *colorCache, verts []V, alpha []float32) {
	for i := range verts {
		P(&verts[i]).SetDiffuse(c.scaled(alpha[i]))
	}
}

func expandZD[V any, P Vertex[V]](m *Mappings, _ *colorCache, verts []V, _ []float32) {
	for i := range verts {
		p := P(&verts[i])
		p.SetZ(m.z)
		p.SetDiffuse(m.diffuse)
	}
}

func expandZDAA[V any, P Vertex[V]](m *Mappings, c *colorCache, verts []V, alpha []float32) {
	for i := range verts {
		p := P(&verts[i])
		p.SetZ(m.z)
		p.SetDiffuse(c.scaled(alpha[i]))
	}
}

func expandDUV0[V any, P Vertex[V]](m *Mappings, _ *colorCache, verts []V, _ []float32) {
	t := m.uv[0].m
	for i := range verts {
		p := P(&verts[i])
		x, y := p.Position()
		p.SetDiffuse(m.diffuse)
		p.SetUV(0, t[0]*x+t[1]*y+t[2], t[3]*x+t[4]*y+t[5])
	}
}

func expandDUV0AA[V any, P Vertex[V]](m *Mappings, c *colorCache, verts []V, alpha []float32) {
	t := m.uv[0].m
	for i := range verts {
		p := P(&verts[i])
		x, y := p.Position()
		p.SetDiffuse(c.scaled(alpha[i]))
		p.SetUV(0, t[0]*x+t[1]*y+t[2], t[3]*x+t[4]*y+t[5])
	}
}

func expandZDUV0[V any, P Vertex[V]](m *Mappings, _ *colorCache, verts []V, _ []float32) {
	t := m.uv[0].m
	for i := range verts {
		p := P(&verts[i])
		x, y := p.Position()
		p.SetZ(m.z)
		p.SetDiffuse(m.diffuse)
		p.SetUV(0, t[0]*x+t[1]*y+t[2], t[3]*x+t[4]*y+t[5])
	}
}

func expandZDUV0AA[V any, P Vertex[V]](m *Mappings, c *colorCache, verts []V, alpha []float32) {
	t := m.uv[0].m
	for i := range verts {
		p := P(&verts[i])
		x, y := p.Position()
		p.SetZ(m.z)
		p.SetDiffuse(c.scaled(alpha[i]))
		p.SetUV(0, t[0]*x+t[1]*y+t[2], t[3]*x+t[4]*y+t[5])
	}
}
