// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the devices that consume hwraster vertex buffers.
//
// hwraster RECEIVES a GPU device from the host application, it does NOT
// create its own. The host hands over a DeviceHandle (or the underlying
// hal.Device and hal.Queue) and an open render pass, and the rasterizer
// records its draws into that pass.
//
// # Devices
//
//   - HALDevice: records draws into a hal.RenderPassEncoder. Vertex and
//     index data are streamed through growable GPU buffers and pipelines
//     are generated per vertex layout by a PipelineCache.
//   - SoftwareDevice: draws the same primitive lists into an *image.RGBA
//     on the CPU. It is used for headless output and for tests.
//
// Both implement the Device contract of the vertex builder, so a
// rasterized path can be drawn on either without changes.
//
// # Usage
//
//	dev, err := render.NewHALDeviceFromProvider(provider, render.PipelineConfig{})
//	if err != nil {
//	    return err
//	}
//	defer dev.Destroy()
//
//	// Each frame, inside a render pass opened by the host:
//	if err := dev.BeginPass(pass, image.Rect(0, 0, width, height)); err != nil {
//	    return err
//	}
//	// ... rasterize paths with the device ...
//	dev.EndPass()
package render
