// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import "github.com/chewxy/math32"

// viewportToPackedCoordinates moves the tile-space texture coordinates of
// every waffled group into the packed sub-rectangle of its channel. The
// tile of a group is the tile of its centroid, which lies strictly inside
// the tile even when vertices sit on its border. Odd tiles are mirrored
// when the channel flips. Axes that do not wrap keep their coordinates.
func (b *Builder[V, P]) viewportToPackedCoordinates() {
	if len(b.groups) == 0 {
		return
	}
	for i := range MaxUVChannels {
		uv := &b.maps.uv[i]
		if !uv.enabled || uv.waffle == WaffleNone {
			continue
		}
		wrapU := uv.waffle&WaffleX != 0 && tileWide(uv.m[0], uv.m[1])
		wrapV := uv.waffle&WaffleY != 0 && tileWide(uv.m[3], uv.m[4])
		if !wrapU && !wrapV {
			continue
		}
		flipU := uv.waffle&WaffleFlipX != 0
		flipV := uv.waffle&WaffleFlipY != 0

		for _, g := range b.groups {
			s := &b.tri
			if g.kind == sectionLines {
				s = &b.lines
			}
			verts := s.verts[g.first : g.first+g.count]

			var cu, cv float32
			for j := range verts {
				u, v := P(&verts[j]).UV(i)
				cu += u
				cv += v
			}
			n := float32(len(verts))
			tu, mu := tileOf(cu/n, wrapU, flipU)
			tv, mv := tileOf(cv/n, wrapV, flipV)

			for j := range verts {
				p := P(&verts[j])
				u, v := p.UV(i)
				if wrapU {
					u = packAxis(u, tu, mu, uv.sub.MinX, uv.sub.Width())
				}
				if wrapV {
					v = packAxis(v, tv, mv, uv.sub.MinY, uv.sub.Height())
				}
				p.SetUV(i, u, v)
			}
		}
	}
}

// tileOf returns the origin of the tile containing c and whether that
// tile is mirrored.
func tileOf(c float32, wrap, flip bool) (origin float32, mirror bool) {
	if !wrap {
		return 0, false
	}
	t := math32.Floor(c)
	return t, flip && int64(t)&1 != 0
}

// packAxis maps tile-space u into [lo, lo+size].
func packAxis(u, origin float32, mirror bool, lo, size float32) float32 {
	local := u - origin
	if mirror {
		local = 1 - local
	}
	return lo + local*size
}
