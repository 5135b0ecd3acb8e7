// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "fmt"

// checkActive panics when the active list is not ordered or has an odd
// number of edges. Only called when debugInvariants is set.
func checkActive(active []*Edge) {
	if len(active)%2 != 0 {
		panic(fmt.Sprintf("raster: odd active edge count %d", len(active)))
	}
	for i := 1; i < len(active); i++ {
		if active[i].less(active[i-1]) {
			panic(fmt.Sprintf("raster: active edges out of order at %d", i))
		}
	}
}
