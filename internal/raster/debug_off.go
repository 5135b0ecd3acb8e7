// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !hwdebug

package raster

// debugInvariants enables active list validation. Build with the
// hwdebug tag to turn it on.
const debugInvariants = false
