// Package hwraster fills anti-aliased 2D paths with a GPU.
//
// # Overview
//
// A path is swept on the CPU in an 8x8 sample grid per pixel. Regions with
// simple edges become trapezoids whose anti-aliased borders are linear
// coverage ramps; the remaining rows are sampled into coverage intervals.
// Both are turned into triangle strips and line lists carrying coverage in
// the vertex color, and drawn with ordinary premultiplied blending. No
// stencil buffer or multisampling is needed.
//
// # Quick Start
//
//	dev := render.NewSoftwareDevice(256, 256)
//	r, err := hwraster.NewRenderer(
//	    hwraster.WithDevice(dev),
//	    hwraster.WithViewport(image.Rect(0, 0, 256, 256)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	p := hwraster.NewPath()
//	p.Circle(128, 128, 100)
//	r.SetColor(gputypes.Color{R: 1, A: 1})
//	status, err := r.FillPath(p)
//
// On a GPU, use render.NewHALDevice or render.NewHALDeviceFromProvider and
// fill paths between BeginPass and EndPass.
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Pixel (x, y) covers [x, x+1) x [y, y+1), its centre is (x+0.5, y+0.5)
//
// # Architecture
//
//   - Public API: Renderer, Path, Matrix, Point
//   - internal/raster: edge sweep, trapezoid detection, coverage buffer
//   - internal/vertex: vertex buffer builder, mappings, waffling
//   - render: devices (hal render pass, CPU image)
package hwraster
