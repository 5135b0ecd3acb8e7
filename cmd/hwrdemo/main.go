// Command hwrdemo fills a set of sample paths with the hwraster pipeline
// and writes the result as a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/hwraster"
	"github.com/gogpu/hwraster/render"
)

func main() {
	var (
		width      = flag.Int("width", 800, "image width")
		height     = flag.Int("height", 600, "image height")
		output     = flag.String("output", "demo.png", "output file")
		trapezoids = flag.Bool("trapezoids", true, "use the trapezoid fast path")
		verbose    = flag.Bool("v", false, "log sweep and buffer statistics")
	)
	flag.Parse()

	if *verbose {
		hwraster.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	dev := render.NewSoftwareDevice(*width, *height)
	dev.Clear(color.RGBA{R: 24, G: 28, B: 40, A: 255})

	r, err := hwraster.NewRenderer(
		hwraster.WithViewport(image.Rect(0, 0, *width, *height)),
		hwraster.WithDevice(dev),
		hwraster.WithTrapezoids(*trapezoids),
	)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}

	drawShapesDemo(r)
	drawTransformDemo(r)
	drawFillRuleDemo(r)
	drawVignette(r, dev, *width, *height)

	if err := savePNG(*output, dev.Image()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := r.Stats()
	slog.Info("demo saved",
		"output", *output, "width", *width, "height", *height,
		"fills", st.Fills, "drawn", st.Drawn,
		"trapezoids", st.Trapezoids, "complexScans", st.ComplexScans,
		"draws", dev.Draws())
}

func fill(r *hwraster.Renderer, p *hwraster.Path) {
	if _, err := r.FillPath(p); err != nil {
		log.Fatalf("Failed to fill: %v", err)
	}
}

func drawShapesDemo(r *hwraster.Renderer) {
	circles := []struct {
		x, y float64
		c    gputypes.Color
	}{
		{150, 150, gputypes.NewColor(1, 0.3, 0.3, 0.8)},
		{200, 150, gputypes.NewColor(0.3, 1, 0.3, 0.8)},
		{175, 200, gputypes.NewColor(0.3, 0.3, 1, 0.8)},
	}
	for _, c := range circles {
		p := hwraster.NewPath()
		p.Circle(c.x, c.y, 60)
		r.SetColor(c.c)
		fill(r, p)
	}

	p := hwraster.NewPath()
	p.RoundedRectangle(350, 100, 120, 80, 15)
	r.SetColor(gputypes.NewColorRGB(1, 0.8, 0))
	fill(r, p)
}

func drawTransformDemo(r *hwraster.Renderer) {
	square := hwraster.NewPath()
	square.Rectangle(-30, -30, 60, 60)

	for i := range 8 {
		angle := float64(i) * math.Pi / 16
		r.SetTransform(hwraster.Translate(600, 150).Multiply(hwraster.Rotate(angle)))
		t := float64(i) / 8
		r.SetColor(gputypes.NewColor(0.2+0.8*t, 0.6, 1-0.8*t, 0.5))
		fill(r, square)
	}
	r.SetTransform(hwraster.Identity())
}

// star returns a self-intersecting five-pointed star.
func star(cx, cy, radius float64) *hwraster.Path {
	p := hwraster.NewPath()
	for i := range 5 {
		angle := float64(i)*4*math.Pi/5 - math.Pi/2
		x, y := cx+radius*math.Cos(angle), cy+radius*math.Sin(angle)
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	p.Close()
	return p
}

func drawFillRuleDemo(r *hwraster.Renderer) {
	r.SetColor(gputypes.NewColorRGB(1, 1, 0))
	fill(r, star(200, 430, 100))

	p := star(500, 430, 100)
	p.SetFillMode(hwraster.FillEvenOdd)
	r.SetColor(gputypes.NewColorRGB(0, 0.9, 0.9))
	fill(r, p)

	wave := hwraster.NewPath()
	wave.MoveTo(620, 520)
	wave.CubicTo(660, 440, 700, 600, 740, 520)
	wave.QuadraticTo(760, 580, 740, 590)
	wave.LineTo(620, 590)
	wave.Close()
	r.SetColor(gputypes.NewColor(1, 0.5, 0, 0.9))
	fill(r, wave)
}

// drawVignette darkens everything outside a centred ellipse. The ellipse
// is written as a coverage mask that sets every pixel of the image, and
// the mask then scales the color channels.
func drawVignette(r *hwraster.Renderer, dev *render.SoftwareDevice, w, h int) {
	mask := render.NewSoftwareDevice(w, h)
	mask.SetBlendMode(render.BlendCopy)
	r.SetDevice(mask)
	r.SetOutsideBounds(image.Rect(0, 0, w, h), true)
	defer func() {
		r.ClearOutsideBounds()
		r.SetDevice(dev)
	}()

	p := hwraster.NewPath()
	p.Ellipse(float64(w)/2, float64(h)/2, float64(w)*0.55, float64(h)*0.55)
	r.SetColor(gputypes.ColorWhite)
	fill(r, p)

	img, m := dev.Image().Pix, mask.Image().Pix
	for i := 0; i+3 < len(img); i += 4 {
		k := 0.65 + 0.35*float64(m[i+3])/255
		for c := i; c < i+3; c++ {
			img[c] = uint8(float64(img[c])*k + 0.5)
		}
	}
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
