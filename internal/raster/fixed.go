// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Fixed-point layout of the sweep space.
//
// Device pixels are subdivided into an 8x8 grid of samples. Sweep
// coordinates are measured in samples and stored as 28.4 fixed point,
// so one device pixel spans 8*16 = 128 units along each axis.
const (
	// SubpixelShift is log2 of the samples per pixel along each axis.
	SubpixelShift = 3

	// SubpixelCount is the number of samples per pixel along each axis.
	SubpixelCount = 1 << SubpixelShift

	// SubpixelMask extracts the sample index within a pixel.
	SubpixelMask = SubpixelCount - 1

	// MaxCoverage is the coverage of a fully covered pixel.
	MaxCoverage = SubpixelCount * SubpixelCount

	// fixShift is the number of fractional bits of a 28.4 value.
	fixShift = 4

	// fixOne is 1.0 in 28.4.
	fixOne = 1 << fixShift

	// maxFixed bounds every 28.4 sweep coordinate. Keeping coordinates
	// within +-2^25 keeps ErrorDown (16*dy) below 2^30 and every
	// step product inside int64.
	maxFixed = 1 << 25
)

// floorDiv returns floor(n/d) for d > 0.
func floorDiv[T constraints.Signed](n, d T) T {
	q := n / d
	if (n%d != 0) && (n < 0) {
		q--
	}
	return q
}

// ceilDiv returns ceil(n/d) for d > 0.
func ceilDiv[T constraints.Signed](n, d T) T {
	q := n / d
	if (n%d != 0) && (n > 0) {
		q++
	}
	return q
}

// toFixed converts a device-space coordinate into a 28.4 sweep
// coordinate. The half-sample offset moves sample centers onto integer
// sweep positions. ok is false when the result leaves the working range.
func toFixed(v float64) (fixed int32, ok bool) {
	s := math.Round((v*SubpixelCount - 0.5) * fixOne)
	// NaN fails both comparisons, so test the accepted range.
	if !(s >= -maxFixed && s <= maxFixed) {
		return 0, false
	}
	return int32(s), true
}

// sampleToPixel converts a real-valued sample column or row into device
// pixels, undoing the half-sample offset applied by toFixed.
func sampleToPixel(s float64) float64 {
	return (s + 0.5) / SubpixelCount
}
