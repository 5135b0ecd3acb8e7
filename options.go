package hwraster

import (
	"image"

	"github.com/gogpu/hwraster/internal/raster"
)

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	r, err := hwraster.NewRenderer(
//	    hwraster.WithViewport(image.Rect(0, 0, 800, 600)),
//	    hwraster.WithDevice(dev),
//	)
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	viewport   image.Rectangle
	clip       image.Rectangle
	device     Device
	trapezoids bool
	tolerance  float64
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		trapezoids: true,
		tolerance:  raster.DefaultTolerance,
	}
}

// WithViewport sets the pixel rectangle of the render target. It is
// required.
func WithViewport(r image.Rectangle) RendererOption {
	return func(o *rendererOptions) {
		o.viewport = r
	}
}

// WithClip restricts filling to r. The clip is intersected with the
// viewport; without WithClip the viewport is the clip.
func WithClip(r image.Rectangle) RendererOption {
	return func(o *rendererOptions) {
		o.clip = r
	}
}

// WithDevice sets the device that receives the vertex buffers. Without a
// device FillPath builds the buffers but draws nothing.
func WithDevice(d Device) RendererOption {
	return func(o *rendererOptions) {
		o.device = d
	}
}

// WithTrapezoids enables or disables the trapezoid fast path. It is on
// by default; with it off every row is emitted as a complex scan.
func WithTrapezoids(enabled bool) RendererOption {
	return func(o *rendererOptions) {
		o.trapezoids = enabled
	}
}

// WithFlattenTolerance sets the maximum distance in pixels between a
// curve and its flattened polyline. Non-positive values keep the default.
func WithFlattenTolerance(tol float64) RendererOption {
	return func(o *rendererOptions) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}
