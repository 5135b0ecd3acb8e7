// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPoint(t *testing.T, x, y float64) (int32, int32) {
	t.Helper()
	fx, okX := toFixed(x)
	fy, okY := toFixed(y)
	require.True(t, okX && okY, "point (%v, %v) out of range", x, y)
	return fx, fy
}

func TestAddEdgeDropsDegenerate(t *testing.T) {
	var s EdgeStore
	s.Reset(image.Rect(0, 0, 100, 100))

	x1, y1 := fixedPoint(t, 10, 10)
	x2, _ := fixedPoint(t, 50, 10)
	s.AddEdge(x1, y1, x2, y1)
	assert.Equal(t, 0, s.Len(), "horizontal edge must be dropped")

	// Crosses no sample row: both ends between sample rows 80 and 81.
	s.AddEdge(x1, 80*fixOne+2, x2, 80*fixOne+10)
	assert.Equal(t, 0, s.Len(), "edge between sample rows must be dropped")

	ya, _ := fixedPoint(t, 0, 200)
	yb, _ := fixedPoint(t, 0, 300)
	s.AddEdge(x1, ya, x2, yb)
	assert.Equal(t, 0, s.Len(), "edge below clip must be dropped")
}

func TestAddEdgeOrientation(t *testing.T) {
	var s EdgeStore
	s.Reset(image.Rect(0, 0, 100, 100))

	x1, y1 := fixedPoint(t, 10, 10)
	x2, y2 := fixedPoint(t, 10, 20)
	s.AddEdge(x1, y1, x2, y2)
	s.AddEdge(x2, y2, x1, y1)
	require.Equal(t, 2, s.Len())

	down, up := s.edges[0], s.edges[1]
	assert.Equal(t, int32(1), down.WindingDirection)
	assert.Equal(t, int32(-1), up.WindingDirection)
	for _, e := range []Edge{down, up} {
		assert.Equal(t, int32(80), e.StartY)
		assert.Equal(t, int32(160), e.EndY)
		assert.Equal(t, int32(80), e.X)
		assert.Equal(t, int32(0), e.Dx)
	}
}

func TestAddEdgeClipsVertically(t *testing.T) {
	var s EdgeStore
	s.Reset(image.Rect(0, 10, 100, 20))

	x1, y1 := fixedPoint(t, 0, 0)
	x2, y2 := fixedPoint(t, 40, 40)
	s.AddEdge(x1, y1, x2, y2)
	require.Equal(t, 1, s.Len())

	e := s.edges[0]
	assert.Equal(t, int32(80), e.StartY)
	assert.Equal(t, int32(160), e.EndY)
	// The line x == y puts sample row 80 at sample column 80.
	assert.Equal(t, int32(80), e.X)
	assert.Equal(t, int32(0), e.Error)
}

func TestAddEdgeCollapsesOutsideClip(t *testing.T) {
	var s EdgeStore
	s.Reset(image.Rect(10, 0, 50, 100))

	x1, y1 := fixedPoint(t, 60, 10)
	x2, y2 := fixedPoint(t, 80, 30)
	s.AddEdge(x1, y1, x2, y2)
	x3, y3 := fixedPoint(t, 2, 10)
	x4, y4 := fixedPoint(t, 5, 30)
	s.AddEdge(x3, y3, x4, y4)
	require.Equal(t, 2, s.Len())

	assert.Equal(t, int32(50*SubpixelCount), s.edges[0].X)
	assert.Equal(t, int32(10*SubpixelCount), s.edges[1].X)
	for _, e := range s.edges {
		assert.Equal(t, int32(0), e.Dx)
		assert.Equal(t, int32(0), e.ErrorUp)
	}
}

// TestEdgeDDAMatchesLine checks that every row lands on the first sample
// column at or right of the exact line.
func TestEdgeDDAMatchesLine(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	var s EdgeStore
	for i := 0; i < 500; i++ {
		s.Reset(image.Rect(-1000, -1000, 1000, 1000))
		x1 := int32(rng.IntN(40000) - 20000)
		y1 := int32(rng.IntN(40000) - 20000)
		x2 := int32(rng.IntN(40000) - 20000)
		y2 := int32(rng.IntN(40000) - 20000)
		s.AddEdge(x1, y1, x2, y2)
		if s.Len() == 0 {
			continue
		}
		e := s.edges[0]
		if y1 > y2 {
			x1, y1, x2, y2 = x2, y2, x1, y1
		}
		dM, dN := int64(x2-x1), int64(y2-y1)
		for y := e.StartY; y < e.EndY; y++ {
			// Exact position is n / (16*dN) sample columns.
			n := int64(x1)*dN + dM*(int64(y)*fixOne-int64(y1))
			want := ceilDiv(n, dN*fixOne)
			require.Equal(t, want, int64(e.X), "edge %d row %d", i, y)
			require.LessOrEqual(t, e.Error, int32(0))
			require.Greater(t, e.Error, -e.ErrorDown)
			e.step()
		}
	}
}

func TestAdvanceDDAMultipleSteps(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	var s EdgeStore
	for i := 0; i < 500; i++ {
		s.Reset(image.Rect(-4096, -4096, 4096, 4096))
		s.AddEdge(
			int32(rng.IntN(1<<20)-1<<19), int32(rng.IntN(1<<20)-1<<19),
			int32(rng.IntN(1<<20)-1<<19), int32(rng.IntN(1<<20)-1<<19),
		)
		if s.Len() == 0 {
			continue
		}
		stepped := s.edges[0]
		jumped := s.edges[0]
		n := rng.Int32N(stepped.EndY-stepped.StartY) + 1
		for range n {
			stepped.step()
		}
		jumped.AdvanceDDAMultipleSteps(n)
		require.Equal(t, stepped, jumped, "edge %d advanced %d rows", i, n)
	}
}

func TestActiveListOrder(t *testing.T) {
	a := &Edge{X: 5, Error: -3, ErrorDown: 4, EndY: 10}
	b := &Edge{X: 5, Error: -1, ErrorDown: 4, EndY: 10}
	c := &Edge{X: 2, ErrorDown: 4, EndY: 10}
	d := &Edge{X: 9, ErrorDown: 4, EndY: 1}

	var l activeList
	for _, e := range []*Edge{b, d, a, c} {
		l = l.insert(e)
	}
	assert.Equal(t, activeList{c, a, b, d}, l)

	c.X = 7
	l.resort()
	assert.Equal(t, activeList{a, b, c, d}, l)

	l = l.retire(1)
	assert.Equal(t, activeList{a, b, c}, l)
}
