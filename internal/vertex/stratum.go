// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vertex

import "github.com/gogpu/hwraster/internal/raster"

// Outside bounds.
//
// In outside mode every pixel of the outside rectangle is touched exactly
// once: shape pixels carry their coverage and everything else carries
// zero. The output is grouped in strata, horizontal bands of the strip.
// All trapezoids of one band share one strip run that starts at the left
// bound, passes through each trapezoid with zero-coverage quads between
// them, and ends at the right bound. Rows between bands are filled with
// zero-coverage quads.

// stratum tracks the band being built.
type stratum struct {
	open        bool
	top, bottom float32
	right       float32 // rightmost outer vertex so far

	// coveredTo is the row down to which the bounds are covered.
	coveredTo float32
}

// SetOutsideBounds enables outside mode for r. When needInside is false,
// fully covered pixels are left out: trapezoid interiors are skipped so
// only their ramps are emitted, and full coverage complex scan intervals
// are dropped.
func (b *Builder[V, P]) SetOutsideBounds(r Rect, needInside bool) {
	b.outside = true
	b.bounds = r
	b.needInside = needInside
	b.stratum = stratum{coveredTo: r.MinY}
}

// ClearOutsideBounds disables outside mode.
func (b *Builder[V, P]) ClearOutsideBounds() {
	b.outside = false
	b.stratum = stratum{}
}

// addBandTrapezoid appends q to the band of its rows, opening a new band
// when the rows differ from the current one.
func (b *Builder[V, P]) addBandTrapezoid(q [8]raster.PointXYA) {
	top, bottom := q[0].Y, q[1].Y
	s := &b.stratum
	if s.open && (s.top != top || s.bottom != bottom) {
		b.closeBand()
	}
	if !s.open {
		b.fillGap(top)
		left := min(b.bounds.MinX, q[0].X, q[1].X)
		b.appendStrip(
			raster.PointXYA{X: left, Y: top},
			raster.PointXYA{X: left, Y: bottom},
		)
		s.open = true
		s.top, s.bottom = top, bottom
		s.right = b.bounds.MaxX
		s.coveredTo = bottom
	}
	if b.needInside {
		for _, v := range q {
			b.push(&b.strip, v)
		}
	} else {
		// Degenerate stitch between the ramps leaves the interior
		// uncovered.
		for _, v := range q[:4] {
			b.push(&b.strip, v)
		}
		b.push(&b.strip, q[3])
		b.push(&b.strip, q[4])
		for _, v := range q[4:] {
			b.push(&b.strip, v)
		}
	}
	s.right = max(s.right, q[6].X, q[7].X)
}

// closeBand ends the open band at the right bound.
func (b *Builder[V, P]) closeBand() {
	s := &b.stratum
	if !s.open {
		return
	}
	b.push(&b.strip, raster.PointXYA{X: s.right, Y: s.top})
	b.push(&b.strip, raster.PointXYA{X: s.right, Y: s.bottom})
	s.open = false
}

// fillGap covers the rows between the covered area and y with zero
// coverage.
func (b *Builder[V, P]) fillGap(y float32) {
	s := &b.stratum
	if y <= s.coveredTo {
		return
	}
	r := b.bounds
	b.appendStrip(
		raster.PointXYA{X: r.MinX, Y: s.coveredTo},
		raster.PointXYA{X: r.MinX, Y: y},
		raster.PointXYA{X: r.MaxX, Y: s.coveredTo},
		raster.PointXYA{X: r.MaxX, Y: y},
	)
	s.coveredTo = y
	b.received = true
}

// EndBuildingOutside closes the last band and fills the outside bounds
// down to their bottom. EndBuilding calls it in outside mode.
func (b *Builder[V, P]) EndBuildingOutside() error {
	if err := b.prepare(); err != nil {
		return err
	}
	if !b.outside {
		return nil
	}
	b.closeBand()
	b.fillGap(b.bounds.MaxY)
	return nil
}
