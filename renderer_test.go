package hwraster

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/hwraster/internal/vertex"
	"github.com/gogpu/hwraster/render"
)

// edgeTolerance allows for the sub-sample placement of anti-aliasing
// ramps on boundary pixels.
const edgeTolerance = 20

// rampTolerance bounds the difference between a linear trapezoid ramp
// and sampled coverage on a sloped edge.
const rampTolerance = 64

func newSoftwareRenderer(t *testing.T, w, h int, opts ...RendererOption) (*Renderer, *render.SoftwareDevice) {
	t.Helper()
	dev := render.NewSoftwareDevice(w, h)
	opts = append([]RendererOption{WithViewport(image.Rect(0, 0, w, h)), WithDevice(dev)}, opts...)
	r, err := NewRenderer(opts...)
	require.NoError(t, err)
	return r, dev
}

func alpha(dev *render.SoftwareDevice, x, y int) uint8 {
	return dev.Image().RGBAAt(x, y).A
}

func rectPath(x0, y0, x1, y1 float64) *Path {
	p := NewPath()
	p.Rectangle(x0, y0, x1-x0, y1-y0)
	return p
}

func TestNewRendererRequiresViewport(t *testing.T) {
	_, err := NewRenderer()
	require.ErrorIs(t, err, ErrEmptyViewport)

	_, err = NewRenderer(WithViewport(image.Rect(4, 4, 4, 10)))
	require.ErrorIs(t, err, ErrEmptyViewport)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Empty", StatusEmpty.String())
	assert.Equal(t, "Drawn", StatusDrawn.String())
}

func TestFillPathAlignedRectangle(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32)

	status, err := r.FillPath(rectPath(10, 10, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, StatusDrawn, status)

	for y := range 32 {
		for x := range 32 {
			inside := x >= 10 && x < 20 && y >= 10 && y < 20
			var want uint8
			if inside {
				want = 255
			}
			require.InDelta(t, want, alpha(dev, x, y), edgeTolerance, "pixel (%d, %d)", x, y)
		}
	}
	for y := 11; y < 19; y++ {
		for x := 11; x < 19; x++ {
			require.Equal(t, uint8(255), alpha(dev, x, y), "interior pixel (%d, %d)", x, y)
		}
	}

	st := r.Stats()
	assert.Equal(t, 1, st.Fills)
	assert.Equal(t, 1, st.Drawn)
	assert.Positive(t, st.Trapezoids)
	assert.Positive(t, dev.Draws())
}

func TestFillPathHalfPixelRectangle(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32)

	status, err := r.FillPath(rectPath(10.5, 10.5, 20.5, 20.5))
	require.NoError(t, err)
	assert.Equal(t, StatusDrawn, status)

	tests := []struct {
		name string
		x, y int
		want uint8
	}{
		{"interior", 15, 15, 255},
		{"left edge", 10, 15, 128},
		{"right edge", 20, 15, 128},
		{"top edge", 15, 10, 128},
		{"bottom edge", 15, 20, 128},
		{"top left corner", 10, 10, 64},
		{"bottom right corner", 20, 20, 64},
		{"outside left", 9, 15, 0},
		{"outside below", 15, 21, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, alpha(dev, tt.x, tt.y), edgeTolerance)
		})
	}
	assert.Positive(t, r.Stats().ComplexScans, "partial rows are complex scans")
}

func TestFillPathEmpty(t *testing.T) {
	tests := []struct {
		name string
		path func() *Path
	}{
		{"no points", NewPath},
		{"single point", func() *Path {
			p := NewPath()
			p.MoveTo(5, 5)
			return p
		}},
		{"outside viewport", func() *Path { return rectPath(100, 100, 120, 120) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dev := newSoftwareRenderer(t, 32, 32)
			status, err := r.FillPath(tt.path())
			require.NoError(t, err)
			assert.Equal(t, StatusEmpty, status)
			assert.Zero(t, dev.Draws())
			assert.Zero(t, r.Stats().Drawn)
		})
	}
}

func TestFillPathFillRules(t *testing.T) {
	overlapping := func(mode FillMode) *Path {
		p := NewPath()
		p.Rectangle(4, 4, 12, 12)
		p.Rectangle(8, 8, 12, 12)
		p.SetFillMode(mode)
		return p
	}

	tests := []struct {
		mode        FillMode
		wantOverlap uint8
	}{
		{FillNonZero, 255},
		{FillEvenOdd, 0},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			r, dev := newSoftwareRenderer(t, 32, 32)
			_, err := r.FillPath(overlapping(tt.mode))
			require.NoError(t, err)

			assert.Equal(t, tt.wantOverlap, alpha(dev, 12, 12), "overlap")
			assert.Equal(t, uint8(255), alpha(dev, 6, 6), "first rectangle only")
			assert.Equal(t, uint8(255), alpha(dev, 18, 18), "second rectangle only")
			assert.Equal(t, uint8(0), alpha(dev, 26, 26), "outside")
		})
	}
}

func TestFillPathTrapezoidsMatchComplexScans(t *testing.T) {
	shapes := map[string]func() *Path{
		"rectangle": func() *Path { return rectPath(3.25, 2.75, 27.5, 20.125) },
		"triangle": func() *Path {
			p := NewPath()
			p.MoveTo(4, 2)
			p.LineTo(28, 14)
			p.LineTo(6, 29)
			p.Close()
			return p
		},
		"circle": func() *Path {
			p := NewPath()
			p.Circle(16, 16, 11)
			return p
		},
	}
	for name, shape := range shapes {
		t.Run(name, func(t *testing.T) {
			fast, fastDev := newSoftwareRenderer(t, 32, 32)
			slow, slowDev := newSoftwareRenderer(t, 32, 32, WithTrapezoids(false))

			_, err := fast.FillPath(shape())
			require.NoError(t, err)
			_, err = slow.FillPath(shape())
			require.NoError(t, err)

			assert.Zero(t, slow.Stats().Trapezoids)
			for y := range 32 {
				for x := range 32 {
					require.InDelta(t, alpha(slowDev, x, y), alpha(fastDev, x, y), rampTolerance,
						"pixel (%d, %d)", x, y)
				}
			}
		})
	}
}

func TestFillPathClip(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32, WithClip(image.Rect(0, 0, 15, 32)))

	_, err := r.FillPath(rectPath(10, 10, 20, 20))
	require.NoError(t, err)

	assert.Equal(t, uint8(255), alpha(dev, 12, 15))
	for x := 15; x < 32; x++ {
		assert.Zero(t, alpha(dev, x, 15), "x=%d", x)
	}
}

func TestFillPathClipSlopedEdge(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 64, 64, WithClip(image.Rect(0, 0, 15, 64)))

	p := NewPath()
	p.MoveTo(2, 2)
	p.LineTo(12, 2)
	p.LineTo(40, 60)
	p.LineTo(2, 60)
	p.Close()
	_, err := r.FillPath(p)
	require.NoError(t, err)

	assert.Equal(t, uint8(255), alpha(dev, 5, 30))
	for y := range 64 {
		for x := 15; x < 64; x++ {
			require.Zero(t, alpha(dev, x, y), "pixel (%d, %d)", x, y)
		}
	}
}

func TestFillPathColorAndTransform(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32)
	r.SetColor(gputypes.Color{R: 1, A: 1})
	r.SetTransform(Translate(10, 10).Multiply(Scale(2, 2)))
	assert.Equal(t, Translate(10, 10).Multiply(Scale(2, 2)), r.Transform())

	_, err := r.FillPath(rectPath(0, 0, 5, 5))
	require.NoError(t, err)

	c := dev.Image().RGBAAt(15, 15)
	assert.Equal(t, uint8(255), c.R)
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
	assert.Equal(t, uint8(255), c.A)
	assert.Zero(t, alpha(dev, 8, 8))
	assert.Zero(t, alpha(dev, 21, 21))
}

func TestFillPathOutsideBounds(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}

	tests := []struct {
		name       string
		needInside bool
		inside     color.RGBA
	}{
		{"with inside", true, red},
		{"without inside", false, blue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dev := newSoftwareRenderer(t, 32, 32)
			dev.Clear(blue)
			dev.SetBlendMode(render.BlendCopy)
			r.SetColor(gputypes.Color{R: 1, A: 1})
			r.SetOutsideBounds(image.Rect(0, 0, 32, 32), tt.needInside)

			status, err := r.FillPath(rectPath(10, 10, 20, 20))
			require.NoError(t, err)
			assert.Equal(t, StatusDrawn, status)

			img := dev.Image()
			assert.Equal(t, tt.inside, img.RGBAAt(15, 15), "inside shape")
			for _, p := range []image.Point{
				{X: 15, Y: 2}, {X: 3, Y: 15}, {X: 27, Y: 15}, {X: 15, Y: 28}, {X: 0, Y: 0}, {X: 31, Y: 31},
			} {
				assert.Equal(t, color.RGBA{}, img.RGBAAt(p.X, p.Y), "gap pixel %v", p)
			}
		})
	}
}

func TestFillPathOutsideBoundsSourceOver(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32)
	r.SetOutsideBounds(image.Rect(0, 0, 32, 32), true)

	_, err := r.FillPath(rectPath(10, 10, 20, 20))
	require.NoError(t, err)

	// Zero-alpha gap geometry leaves the target unchanged.
	assert.Equal(t, uint8(255), alpha(dev, 15, 15))
	assert.Zero(t, alpha(dev, 3, 15))
	assert.Zero(t, alpha(dev, 31, 31))

	strip := r.last.Strip()
	require.NotEmpty(t, strip)
	minX, maxX, minY, maxY := strip[0].X, strip[0].X, strip[0].Y, strip[0].Y
	for _, v := range strip {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	assert.Equal(t, []float32{0, 0, 32, 32}, []float32{minX, minY, maxX, maxY}, "gap geometry spans the bounds")

	r.ClearOutsideBounds()
	dev.Clear(image.Transparent)
	_, err = r.FillPath(rectPath(10, 10, 20, 20))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), alpha(dev, 15, 15))
	for _, v := range r.last.Strip() {
		assert.GreaterOrEqual(t, v.X, float32(9))
		assert.LessOrEqual(t, v.X, float32(21))
	}
}

func TestFillPathWithoutDevice(t *testing.T) {
	r, err := NewRenderer(WithViewport(image.Rect(0, 0, 32, 32)))
	require.NoError(t, err)

	status, err := r.FillPath(rectPath(4, 4, 12, 12))
	require.NoError(t, err)
	assert.Equal(t, StatusDrawn, status)
	require.NotNil(t, r.last)
	assert.False(t, r.last.IsEmpty())

	dev := render.NewSoftwareDevice(32, 32)
	r.SetDevice(dev)
	_, err = r.FillPath(rectPath(4, 4, 12, 12))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), alpha(dev, 8, 8))
}

func TestRendererTextureMapping(t *testing.T) {
	r, dev := newSoftwareRenderer(t, 32, 32)

	require.ErrorIs(t, r.SetTextureMapping(2, Identity()), vertex.ErrNotImplemented)
	require.Error(t, r.SetWaffling(1, WaffleX, Rect{MaxX: 1, MaxY: 1}), "channel 1 has no mapping")

	require.NoError(t, r.SetTextureMapping(0, Scale(0.125, 0.125)))
	require.NoError(t, r.SetWaffling(0, WaffleX|WaffleY, Rect{MaxX: 1, MaxY: 1}))

	_, err := r.FillPath(rectPath(10, 10, 20, 20))
	require.NoError(t, err)
	assert.Positive(t, r.Stats().TriangleVertices, "waffled pieces are indexed triangles")

	for y := 11; y < 19; y++ {
		for x := 11; x < 19; x++ {
			require.InDelta(t, 255, alpha(dev, x, y), 1, "pixel (%d, %d)", x, y)
		}
	}
}

func TestRendererStatsAccumulate(t *testing.T) {
	r, _ := newSoftwareRenderer(t, 32, 32)
	_, err := r.FillPath(rectPath(2, 2, 8, 8))
	require.NoError(t, err)
	first := r.Stats()
	require.Positive(t, first.StripVertices)

	for range 2 {
		_, err = r.FillPath(rectPath(2, 2, 8, 8))
		require.NoError(t, err)
	}
	_, err = r.FillPath(NewPath())
	require.NoError(t, err)

	st := r.Stats()
	assert.Equal(t, 4, st.Fills)
	assert.Equal(t, 3, st.Drawn)
	assert.Equal(t, 3*first.StripVertices, st.StripVertices)
	assert.Equal(t, 3*first.Trapezoids, st.Trapezoids)
}
