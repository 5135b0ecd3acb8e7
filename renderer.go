package hwraster

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/hwraster/internal/raster"
	"github.com/gogpu/hwraster/internal/vertex"
)

// ErrEmptyViewport is returned by NewRenderer without a viewport.
var ErrEmptyViewport = errors.New("hwraster: empty viewport")

// Status is the outcome of a successful fill.
type Status int

const (
	// StatusEmpty means nothing was drawn: the path had too few points,
	// lay outside the clip or exceeded the coordinate range.
	StatusEmpty Status = iota

	// StatusDrawn means geometry was produced and drawn.
	StatusDrawn
)

// String returns the status name.
func (s Status) String() string {
	if s == StatusDrawn {
		return "Drawn"
	}
	return "Empty"
}

// Device receives finished vertex buffers. render.HALDevice and
// render.SoftwareDevice implement it.
type Device = vertex.Device

// Rect is a float rectangle in device pixels or texture coordinates.
type Rect = vertex.Rect

// WaffleMode selects on which texture axes a mapping repeats.
type WaffleMode = vertex.WaffleMode

// Waffle modes.
const (
	WaffleNone  = vertex.WaffleNone
	WaffleX     = vertex.WaffleX
	WaffleY     = vertex.WaffleY
	WaffleFlipX = vertex.WaffleFlipX
	WaffleFlipY = vertex.WaffleFlipY
)

// Stats accumulates counters over all fills of a Renderer.
type Stats struct {
	Fills        int
	Drawn        int
	Trapezoids   int
	ComplexScans int

	TriangleVertices int
	StripVertices    int
	LineVertices     int
	Flushes          int
}

// Renderer fills paths. It owns a rasterizer and a vertex builder and is
// not safe for concurrent use.
type Renderer struct {
	opts    rendererOptions
	rast    *raster.Rasterizer
	builder *vertex.Builder[vertex.XYZDUV2, *vertex.XYZDUV2]

	transform Matrix
	color     gputypes.Color
	depth     float32

	last  *vertex.Buffer[vertex.XYZDUV2]
	stats Stats
}

// NewRenderer creates a renderer. WithViewport is required.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.viewport.Empty() {
		return nil, ErrEmptyViewport
	}
	clip := o.viewport
	if o.clip != (image.Rectangle{}) {
		clip = o.clip.Intersect(o.viewport)
	}

	b, err := vertex.NewBuilder[vertex.XYZDUV2](o.device)
	if err != nil {
		return nil, fmt.Errorf("hwraster: create builder: %w", err)
	}
	b.SetViewport(o.viewport)

	r := &Renderer{
		opts: o,
		rast: raster.NewRasterizer(raster.Config{
			Clip:              clip,
			Tolerance:         o.tolerance,
			DisableTrapezoids: !o.trapezoids,
		}),
		builder:   b,
		transform: Identity(),
		color:     gputypes.ColorWhite,
	}
	Logger().Info("hwraster: renderer created",
		"viewport", o.viewport, "clip", clip, "device", o.device != nil, "trapezoids", o.trapezoids)
	return r, nil
}

// SetDevice replaces the device. A nil device disables drawing.
func (r *Renderer) SetDevice(d Device) {
	r.opts.device = d
	r.builder.SetDevice(d)
}

// SetTransform sets the matrix applied to path points.
func (r *Renderer) SetTransform(m Matrix) { r.transform = m }

// Transform returns the path transform.
func (r *Renderer) Transform() Matrix { return r.transform }

// SetColor sets the fill color. Colors are straight alpha and are
// premultiplied when packed into vertices.
func (r *Renderer) SetColor(c gputypes.Color) { r.color = c }

// SetDepth sets the z written to every vertex.
func (r *Renderer) SetDepth(z float32) { r.depth = z }

// SetAntialiasScale turns coverage scaling of the diffuse color on or
// off. With it off, every emitted vertex has the full color.
func (r *Renderer) SetAntialiasScale(enabled bool) { r.builder.SetAntialiasScale(enabled) }

// SetTextureMapping maps device positions to texture coordinates of
// channel i (0 or 1).
func (r *Renderer) SetTextureMapping(i int, m Matrix) error {
	return r.builder.SetTextureMapping(i, m.aff3f32())
}

// SetWaffling repeats texture channel i over sub, a sub-rectangle of a
// packed texture.
func (r *Renderer) SetWaffling(i int, mode WaffleMode, sub Rect) error {
	return r.builder.SetWaffling(i, mode, sub)
}

// SetPositionTransform applies m to vertex positions after rasterization.
// Texture coordinates are computed from the transformed positions.
func (r *Renderer) SetPositionTransform(m Matrix) {
	r.builder.SetTransformMapping(m.aff3f32())
}

// SetOutsideBounds makes subsequent fills touch every pixel of bounds
// exactly once: shape pixels carry their coverage and the gap between
// the shape and bounds is drawn with zero alpha. Under source-over the
// result equals a plain fill; a replacing blend writes a complete
// coverage mask of bounds. With needInside false, fully covered pixels
// are left untouched and only edges and the gap are drawn.
func (r *Renderer) SetOutsideBounds(bounds image.Rectangle, needInside bool) {
	r.builder.SetOutsideBounds(Rect{
		MinX: float32(bounds.Min.X), MinY: float32(bounds.Min.Y),
		MaxX: float32(bounds.Max.X), MaxY: float32(bounds.Max.Y),
	}, needInside)
}

// ClearOutsideBounds returns to normal filling.
func (r *Renderer) ClearOutsideBounds() { r.builder.ClearOutsideBounds() }

// Stats returns the accumulated counters.
func (r *Renderer) Stats() Stats { return r.stats }

// FillPath rasterizes p with the current transform and color and draws
// the result on the device.
func (r *Renderer) FillPath(p *Path) (Status, error) {
	r.stats.Fills++
	b := r.builder
	b.SetConstantMapping(r.depth, r.color)
	b.BeginBuilding()

	if _, err := r.rast.RasterizePath(p.points, p.types, r.transform.aff3(), p.fill.raster(), b); err != nil {
		return StatusEmpty, fmt.Errorf("hwraster: rasterize: %w", err)
	}
	buf, err := b.EndBuilding()
	if err != nil {
		return StatusEmpty, fmt.Errorf("hwraster: build vertices: %w", err)
	}
	r.last = buf

	rs := r.rast.Stats()
	bs := b.Stats()
	r.stats.Trapezoids += rs.Trapezoids
	r.stats.ComplexScans += rs.ComplexScans
	r.stats.TriangleVertices += bs.TriangleVertices
	r.stats.StripVertices += bs.StripVertices
	r.stats.LineVertices += bs.LineVertices
	r.stats.Flushes += bs.Flushes

	if buf.IsEmpty() && bs.Flushes == 0 {
		return StatusEmpty, nil
	}
	if d := r.opts.device; d != nil && !buf.IsEmpty() {
		if err := buf.Draw(d); err != nil {
			return StatusEmpty, fmt.Errorf("hwraster: draw: %w", err)
		}
	}
	r.stats.Drawn++
	Logger().Debug("hwraster: path filled",
		"points", p.Len(), "fill", p.fill,
		"trapezoids", rs.Trapezoids, "complex", rs.ComplexScans,
		"strip", buf.StripVertices, "lines", buf.LineVertices)
	return StatusDrawn, nil
}
