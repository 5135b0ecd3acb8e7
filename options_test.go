package hwraster

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/hwraster/internal/raster"
	"github.com/gogpu/hwraster/render"
)

// recordingDevice counts draws without rendering.
type recordingDevice struct {
	layouts int
	draws   []gputypes.PrimitiveTopology
}

func (d *recordingDevice) SetVertexLayout(gputypes.VertexBufferLayout) error {
	d.layouts++
	return nil
}
func (d *recordingDevice) WriteVertexBuffer([]byte, uint32) error { return nil }
func (d *recordingDevice) WriteIndexBuffer([]uint16) error        { return nil }
func (d *recordingDevice) DrawIndexedPrimitive(t gputypes.PrimitiveTopology, _ int32, _, _ uint32) error {
	d.draws = append(d.draws, t)
	return nil
}
func (d *recordingDevice) DrawPrimitive(t gputypes.PrimitiveTopology, _, _ uint32) error {
	d.draws = append(d.draws, t)
	return nil
}

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if !o.trapezoids {
		t.Error("trapezoids should be enabled by default")
	}
	if o.tolerance != raster.DefaultTolerance {
		t.Errorf("tolerance = %v, want %v", o.tolerance, raster.DefaultTolerance)
	}
	if o.device != nil {
		t.Error("default device should be nil")
	}
}

func TestOptionsApply(t *testing.T) {
	dev := render.NewSoftwareDevice(8, 8)
	o := defaultOptions()
	for _, opt := range []RendererOption{
		WithViewport(image.Rect(0, 0, 64, 48)),
		WithClip(image.Rect(8, 8, 32, 32)),
		WithDevice(dev),
		WithTrapezoids(false),
		WithFlattenTolerance(0.1),
	} {
		opt(&o)
	}

	if o.viewport != image.Rect(0, 0, 64, 48) {
		t.Errorf("viewport = %v", o.viewport)
	}
	if o.clip != image.Rect(8, 8, 32, 32) {
		t.Errorf("clip = %v", o.clip)
	}
	if o.device != dev {
		t.Error("device was not stored")
	}
	if o.trapezoids {
		t.Error("WithTrapezoids(false) did not disable trapezoids")
	}
	if o.tolerance != 0.1 {
		t.Errorf("tolerance = %v, want 0.1", o.tolerance)
	}
}

func TestWithFlattenToleranceIgnoresNonPositive(t *testing.T) {
	for _, tol := range []float64{0, -1} {
		o := defaultOptions()
		WithFlattenTolerance(tol)(&o)
		if o.tolerance != raster.DefaultTolerance {
			t.Errorf("WithFlattenTolerance(%v) changed tolerance to %v", tol, o.tolerance)
		}
	}
}

func TestWithDeviceReceivesDraws(t *testing.T) {
	dev := &recordingDevice{}
	r, err := NewRenderer(WithViewport(image.Rect(0, 0, 32, 32)), WithDevice(dev))
	if err != nil {
		t.Fatal(err)
	}

	p := NewPath()
	p.Rectangle(4, 4, 8, 8)
	if _, err := r.FillPath(p); err != nil {
		t.Fatal(err)
	}
	if dev.layouts != 1 {
		t.Errorf("layouts = %d, want 1", dev.layouts)
	}
	if len(dev.draws) == 0 || dev.draws[0] != gputypes.PrimitiveTopologyTriangleStrip {
		t.Errorf("draws = %v, want a triangle strip first", dev.draws)
	}
}
