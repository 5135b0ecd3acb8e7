// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster converts filled paths into anti-aliased geometry.
//
// The Rasterizer sweeps the edges of a path from top to bottom in an 8x8
// sample grid per pixel. Bands of whole pixel rows whose edges are far
// enough apart are emitted as trapezoids with linear coverage ramps;
// everything else is sampled row by row into a CoverageBuffer and emitted
// as complex scans. Both kinds of output go to a GeometrySink.
package raster

import (
	"errors"
	"image"

	"golang.org/x/image/math/f64"
)

// FillMode selects the rule deciding which regions of a path are inside.
type FillMode uint8

const (
	// FillAlternate is the even-odd rule.
	FillAlternate FillMode = iota

	// FillWinding is the non-zero winding rule.
	FillWinding
)

// String returns the fill mode name.
func (f FillMode) String() string {
	switch f {
	case FillAlternate:
		return "Alternate"
	case FillWinding:
		return "Winding"
	default:
		return "Unknown"
	}
}

// Status is the outcome of a successful rasterization.
type Status uint8

const (
	// StatusEmpty means nothing was produced: too few points, geometry
	// outside the clip, or coordinates beyond the working range.
	StatusEmpty Status = iota

	// StatusDrawn means the sink received geometry.
	StatusDrawn
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusDrawn {
		return "Drawn"
	}
	return "Empty"
}

// Config holds Rasterizer settings.
type Config struct {
	// Clip is the device-space clip rectangle in pixels.
	Clip image.Rectangle

	// Tolerance is the curve flattening tolerance in pixels.
	// Zero means DefaultTolerance.
	Tolerance float64

	// DisableTrapezoids forces every row through the coverage buffer.
	DisableTrapezoids bool
}

// Stats describes the last rasterization.
type Stats struct {
	Edges          int
	TrapezoidBands int
	Trapezoids     int
	ComplexScans   int
}

// Rasterizer scan-converts paths. It keeps its buffers between calls and
// is not safe for concurrent use.
type Rasterizer struct {
	cfg      Config
	store    EdgeStore
	active   activeList
	coverage CoverageBuffer
	stats    Stats
}

// NewRasterizer creates a rasterizer with the given configuration.
func NewRasterizer(cfg Config) *Rasterizer {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	r := &Rasterizer{cfg: cfg}
	r.coverage.Reset()
	return r
}

// SetClip changes the clip rectangle for subsequent calls.
func (r *Rasterizer) SetClip(clip image.Rectangle) {
	r.cfg.Clip = clip
}

// Clip returns the clip rectangle.
func (r *Rasterizer) Clip() image.Rectangle {
	return r.cfg.Clip
}

// SetTrapezoidsEnabled turns the trapezoid fast path on or off.
func (r *Rasterizer) SetTrapezoidsEnabled(enabled bool) {
	r.cfg.DisableTrapezoids = !enabled
}

// Stats returns statistics about the last call.
func (r *Rasterizer) Stats() Stats {
	return r.stats
}

// Edges gives access to the edge store, letting callers add edges
// directly before RasterizeEdges. Call ResetEdges first.
func (r *Rasterizer) Edges() *EdgeStore {
	return &r.store
}

// ResetEdges clears the edge store using the current clip.
func (r *Rasterizer) ResetEdges() {
	r.store.Reset(r.cfg.Clip)
}

// RasterizePath transforms points by m into device space, fills the
// resulting shape with the given rule and sends the geometry to sink.
//
// Paths with fewer than two points, paths outside the clip and paths
// whose coordinates exceed the working range produce StatusEmpty and no
// error. Malformed point types return ErrMalformedPath.
func (r *Rasterizer) RasterizePath(
	points []Point, types []PointType, m f64.Aff3, fill FillMode, sink GeometrySink,
) (Status, error) {
	r.ResetEdges()
	r.stats = Stats{}
	if len(points) < 2 || r.cfg.Clip.Empty() {
		return StatusEmpty, nil
	}

	en := enumerator{store: &r.store, m: m, tol: r.cfg.Tolerance}
	if err := en.enumerate(points, types); err != nil {
		if errors.Is(err, errOverflow) {
			slogger().Warn("raster: path exceeds fixed-point range, skipping", "points", len(points))
			return StatusEmpty, nil
		}
		return StatusEmpty, err
	}

	if err := r.RasterizeEdges(fill, sink); err != nil {
		return StatusEmpty, err
	}
	if sink.IsEmpty() {
		return StatusEmpty, nil
	}
	return StatusDrawn, nil
}

// RasterizeEdges sweeps the edges currently in the store.
func (r *Rasterizer) RasterizeEdges(fill FillMode, sink GeometrySink) error {
	r.stats = Stats{Edges: r.store.Len()}
	r.store.sortInactive()
	inactive := r.store.inactive
	if len(inactive) == 0 {
		return nil
	}

	clip := r.cfg.Clip
	bottom := int32(clip.Max.Y) * SubpixelCount
	r.active = r.active[:0]
	r.coverage.Reset()
	r.coverage.SetClip(int32(clip.Min.X), int32(clip.Max.X))

	pending := false
	var pendingRow int32
	flush := func() error {
		pending = false
		if r.coverage.IsEmpty() {
			return nil
		}
		r.stats.ComplexScans++
		err := sink.AddComplexScan(pendingRow, r.coverage.Intervals())
		r.coverage.Reset()
		return err
	}

	y := inactive[0].StartY
	for y < bottom {
		for len(inactive) > 0 && inactive[0].StartY <= y {
			r.active = r.active.insert(inactive[0])
			inactive = inactive[1:]
		}

		if pending && y>>SubpixelShift != pendingRow {
			if err := flush(); err != nil {
				return err
			}
		}

		if len(r.active) == 0 {
			if len(inactive) == 0 {
				break
			}
			y = inactive[0].StartY
			continue
		}

		if !pending && y&SubpixelMask == 0 && !r.cfg.DisableTrapezoids {
			limit := bottom
			if len(inactive) > 0 {
				limit = min(limit, inactive[0].StartY)
			}
			if yEnd := r.ComputeTrapezoidsEndScan(y, limit, fill); yEnd > y {
				if err := r.OutputTrapezoids(y, yEnd, sink); err != nil {
					return err
				}
				for _, e := range r.active {
					e.AdvanceDDAMultipleSteps(yEnd - y)
				}
				y = yEnd
				r.active = r.active.retire(y)
				continue
			}
		}

		if fill == FillWinding {
			r.coverage.FillEdgesWinding(r.active)
		} else {
			r.coverage.FillEdgesAlternating(r.active)
		}
		pending = true
		pendingRow = y >> SubpixelShift

		for _, e := range r.active {
			e.step()
		}
		y++
		r.active = r.active.retire(y)
		r.active.resort()
		if debugInvariants {
			checkActive(r.active)
		}
	}

	if pending {
		if err := flush(); err != nil {
			return err
		}
	}

	slogger().Debug("raster: sweep done",
		"edges", r.stats.Edges,
		"trapezoidBands", r.stats.TrapezoidBands,
		"trapezoids", r.stats.Trapezoids,
		"complexScans", r.stats.ComplexScans)
	return nil
}
