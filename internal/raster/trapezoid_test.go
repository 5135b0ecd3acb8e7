// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// segment is an edge in 28.4 sweep coordinates.
type segment struct {
	x1, y1, x2, y2 int32
}

// pixelX returns the exact device-space x of the segment's line at
// device row boundary y.
func (s segment) pixelX(y float64) float64 {
	px := func(v int32) float64 { return sampleToPixel(float64(v) / fixOne) }
	x1, y1, x2, y2 := px(s.x1), px(s.y1), px(s.x2), px(s.y2)
	return x1 + (x2-x1)*(y-y1)/(y2-y1)
}

// halfWidth returns the exact ramp half width of the segment.
func (s segment) halfWidth() float64 {
	return 0.5 + 0.5*math.Abs(float64(s.x2-s.x1)/float64(s.y2-s.y1))
}

// setupActive loads segments into r and activates them at their common
// start row.
func setupActive(t *testing.T, r *Rasterizer, segs []segment) int32 {
	t.Helper()
	r.ResetEdges()
	for _, s := range segs {
		r.Edges().AddEdge(s.x1, s.y1, s.x2, s.y2)
	}
	require.Equal(t, len(segs), r.Edges().Len())
	r.store.sortInactive()
	r.active = r.active[:0]
	for _, e := range r.store.inactive {
		r.active = r.active.insert(e)
	}
	return r.store.inactive[0].StartY
}

func TestTrapezoidRampsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1))
	r := NewRasterizer(Config{Clip: image.Rect(-64, -64, 192, 192)})

	// Both edges run from device row 0 to row 64.
	top, _ := toFixed(0)
	bottom, _ := toFixed(64)
	coord := func() int32 {
		v, _ := toFixed(rng.Float64() * 48)
		return v
	}

	accepted := 0
	for i := 0; i < 20000; i++ {
		segs := []segment{
			{coord(), top, coord(), bottom},
			{coord(), top, coord(), bottom},
		}
		y := setupActive(t, r, segs)
		require.Equal(t, int32(0), y)

		yEnd := r.ComputeTrapezoidsEndScan(y, 64*SubpixelCount, FillAlternate)
		if yEnd == y {
			continue
		}
		accepted++
		require.Zero(t, yEnd%SubpixelCount)

		// Identify which segment ended up on the left.
		left, right := segs[0], segs[1]
		if r.active[0] != &r.store.edges[0] {
			left, right = right, left
		}
		for _, py := range []float64{0, float64(yEnd) / SubpixelCount} {
			innerLeft := left.pixelX(py) + left.halfWidth()
			innerRight := right.pixelX(py) - right.halfWidth()
			require.LessOrEqual(t, innerLeft, innerRight+1e-9,
				"iteration %d: ramps overlap at row %v (yEnd %d)", i, py, yEnd)
		}
	}
	assert.Greater(t, accepted, 1000, "fast path should accept well separated pairs")
}

func TestTrapezoidEndScanLimits(t *testing.T) {
	r := NewRasterizer(Config{Clip: image.Rect(0, 0, 100, 100)})
	fix := func(v float64) int32 {
		f, ok := toFixed(v)
		require.True(t, ok)
		return f
	}

	segs := []segment{
		{fix(10), fix(0), fix(10), fix(50.5)},
		{fix(40), fix(0), fix(40), fix(60)},
	}
	y := setupActive(t, r, segs)

	// The shorter edge ends within pixel row 50.
	assert.Equal(t, int32(50*SubpixelCount), r.ComputeTrapezoidsEndScan(y, 100*SubpixelCount, FillAlternate))
	// A pending edge start bounds the band.
	assert.Equal(t, int32(24*SubpixelCount), r.ComputeTrapezoidsEndScan(y, 24*SubpixelCount+5, FillAlternate))
	// Less than a pixel row available.
	assert.Equal(t, y, r.ComputeTrapezoidsEndScan(y, 7, FillAlternate))
}

func TestTrapezoidWindingNeedsOppositeDirections(t *testing.T) {
	r := NewRasterizer(Config{Clip: image.Rect(0, 0, 100, 100)})
	fix := func(v float64) int32 {
		f, _ := toFixed(v)
		return f
	}

	same := []segment{
		{fix(10), fix(0), fix(10), fix(40)},
		{fix(40), fix(0), fix(40), fix(40)},
	}
	y := setupActive(t, r, same)
	assert.Equal(t, int32(40*SubpixelCount), r.ComputeTrapezoidsEndScan(y, 800, FillAlternate))
	assert.Equal(t, y, r.ComputeTrapezoidsEndScan(y, 800, FillWinding))

	opposite := []segment{
		{fix(10), fix(40), fix(10), fix(0)},
		{fix(40), fix(0), fix(40), fix(40)},
	}
	y = setupActive(t, r, opposite)
	assert.Equal(t, int32(40*SubpixelCount), r.ComputeTrapezoidsEndScan(y, 800, FillWinding))
}

func TestTrapezoidRejectsCloseEdges(t *testing.T) {
	r := NewRasterizer(Config{Clip: image.Rect(0, 0, 100, 100)})
	fix := func(v float64) int32 {
		f, _ := toFixed(v)
		return f
	}

	// One pixel wide: the ramps touch, which leaves no margin.
	y := setupActive(t, r, []segment{
		{fix(10), fix(0), fix(10), fix(40)},
		{fix(11), fix(0), fix(11), fix(40)},
	})
	assert.Equal(t, y, r.ComputeTrapezoidsEndScan(y, 800, FillAlternate))

	// Converging edges qualify for a shorter band only.
	y = setupActive(t, r, []segment{
		{fix(0), fix(0), fix(20), fix(40)},
		{fix(40), fix(0), fix(20), fix(40)},
	})
	yEnd := r.ComputeTrapezoidsEndScan(y, 800, FillAlternate)
	assert.Greater(t, yEnd, y)
	assert.Less(t, yEnd, int32(40*SubpixelCount))
}

// recordingSink captures trapezoid calls.
type recordingSink struct {
	AlphaMask
	traps [][8]float32
}

func (s *recordingSink) AddTrapezoid(yTop, xTL, xTR, yBottom, xBL, xBR, dl, dr float32) error {
	s.traps = append(s.traps, [8]float32{yTop, xTL, xTR, yBottom, xBL, xBR, dl, dr})
	return s.AlphaMask.AddTrapezoid(yTop, xTL, xTR, yBottom, xBL, xBR, dl, dr)
}

func TestOutputTrapezoidsGeometry(t *testing.T) {
	r := NewRasterizer(Config{Clip: image.Rect(0, 0, 100, 100)})
	sink := &recordingSink{AlphaMask: *NewAlphaMask(r.Clip())}

	b := new(pathBuilder).moveTo(10, 0).lineTo(30, 0).lineTo(50, 40).lineTo(10, 40)
	_, err := r.RasterizePath(b.points, b.types, identity, FillAlternate, sink)
	require.NoError(t, err)
	require.Len(t, sink.traps, 1)

	got := sink.traps[0]
	assert.Equal(t, [8]float32{0, 10, 30, 40, 10, 50, 0.5, 0.75}, got)
}
