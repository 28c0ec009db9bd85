package viewport

import (
	"errors"
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/example/imageslicer/internal/geom"
)

func newController(t *testing.T, img, scr geom.Size) *Controller {
	t.Helper()
	c, err := New(img, scr, DefaultOptions())
	if err != nil {
		t.Fatalf("New(%v, %v): %v", img, scr, err)
	}
	return c
}

func assertContained(t *testing.T, c *Controller) {
	t.Helper()
	v := c.Viewport()
	if v.Dx() <= 0 || v.Dy() <= 0 {
		t.Fatalf("degenerate viewport %v", v)
	}
	if !v.In(c.Bounds()) {
		t.Fatalf("viewport %v escapes image %v", v, c.Bounds())
	}
}

func TestInitializeUsesSmallerExtent(t *testing.T) {
	tests := []struct {
		img, scr geom.Size
		want     image.Rectangle
	}{
		{geom.Sz(1000, 800), geom.Sz(800, 600), image.Rect(0, 0, 800, 600)},
		{geom.Sz(400, 300), geom.Sz(800, 600), image.Rect(0, 0, 400, 300)},
		{geom.Sz(1000, 300), geom.Sz(800, 600), image.Rect(0, 0, 800, 300)},
	}
	for _, tt := range tests {
		c := newController(t, tt.img, tt.scr)
		if got := c.Viewport(); got != tt.want {
			t.Errorf("image %v screen %v: viewport %v, want %v", tt.img, tt.scr, got, tt.want)
		}
	}
}

func TestInitializeRejectsEmptyImage(t *testing.T) {
	for _, img := range []geom.Size{geom.Sz(0, 10), geom.Sz(10, 0), geom.Sz(-1, 5)} {
		if _, err := New(img, geom.Sz(800, 600), DefaultOptions()); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("New(%v) error = %v, want ErrInvalidInput", img, err)
		}
	}
	if _, err := New(geom.Sz(10, 10), geom.Sz(0, 600), DefaultOptions()); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero screen accepted: %v", err)
	}
}

func TestZoomInThenOutRoundTrips(t *testing.T) {
	sizes := [][2]geom.Size{
		{geom.Sz(1000, 800), geom.Sz(800, 600)},
		{geom.Sz(4000, 3000), geom.Sz(1280, 800)},
		{geom.Sz(5000, 5000), geom.Sz(333, 777)},
	}
	// Images smaller than the screen, with a different aspect.
	for w := 50; w <= 700; w += 10 {
		sizes = append(sizes, [2]geom.Size{geom.Sz(w, 400), geom.Sz(800, 600)})
	}
	for _, s := range sizes {
		c := newController(t, s[0], s[1])
		// Walk a few steps in first so the check also covers interior sizes.
		for i := 0; i < 6; i++ {
			before := c.Viewport()
			c.Zoom(ZoomIn)
			c.Zoom(ZoomOut)
			after := c.Viewport()
			if d := after.Dx() - before.Dx(); d < -1 || d > 1 {
				t.Fatalf("%v: width drifted %d -> %d", s, before.Dx(), after.Dx())
			}
			if d := after.Dy() - before.Dy(); d < -1 || d > 1 {
				t.Fatalf("%v: height drifted %d -> %d", s, before.Dy(), after.Dy())
			}
			c.Zoom(ZoomIn)
		}
	}
}

func TestZoomKeepsProportions(t *testing.T) {
	for _, scr := range []geom.Size{geom.Sz(800, 600), geom.Sz(1280, 800), geom.Sz(400, 300)} {
		c := newController(t, geom.Sz(4000, 3000), scr)
		check := func(step int) {
			t.Helper()
			v := c.Viewport()
			sx, sy := c.ScaleFactors()
			if d := math.Abs(sx/sy - 1); d > 1/float64(min(v.Dx(), v.Dy())) {
				t.Fatalf("screen %v step %d: viewport %v scales %.4f x %.4f", scr, step, v, sx, sy)
			}
		}
		for i := 0; i < 300; i++ {
			c.Zoom(ZoomIn)
			check(i)
		}
		m := c.Viewport()
		if want := geom.Sz(geom.Round(float64(scr.W)*0.02), geom.Round(float64(scr.H)*0.02)); geom.SizeOf(m) != want {
			t.Fatalf("screen %v: minimum viewport %v, want %v", scr, m, want)
		}
		for i := 0; i < 300; i++ {
			c.Zoom(ZoomOut)
			check(i)
		}
		assertContained(t, c)
	}
}

func TestZoomInKeepsCentre(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	c.Zoom(ZoomIn)
	if got, want := c.Viewport(), image.Rect(20, 15, 780, 585); got != want {
		t.Fatalf("viewport %v, want %v", got, want)
	}
}

func TestZoomInSnapsToMinimum(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	for i := 0; i < 500; i++ {
		c.Zoom(ZoomIn)
	}
	v := c.Viewport()
	if v.Dx() != 16 || v.Dy() != 12 {
		t.Fatalf("minimum viewport %v, want 16x12", v)
	}
	assertContained(t, c)
}

func TestZoomOutClampsToImageAndIsStable(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	var prev image.Rectangle
	for i := 0; i < 20; i++ {
		c.Zoom(ZoomOut)
		assertContained(t, c)
		if i > 10 && c.Viewport() != prev {
			t.Fatalf("viewport oscillates: %v then %v", prev, c.Viewport())
		}
		prev = c.Viewport()
	}
	v := c.Viewport()
	if v.Dx() != 1000 || v.Min.X != 0 {
		t.Fatalf("width not clamped to image: %v", v)
	}
	if v.Dy() != 750 {
		t.Fatalf("height not rescaled to screen aspect: %v", v)
	}
}

func TestZoomAtKeepsFocusUnderPointer(t *testing.T) {
	c := newController(t, geom.Sz(4000, 3000), geom.Sz(800, 600))
	c.Pan(image.Pt(1000, 1000))
	screenPt := image.Pt(200, 150)
	focus := c.MapScreenToImage(screenPt)
	c.ZoomAt(ZoomIn, focus)
	got := c.MapScreenToImage(screenPt)
	if d := got.Sub(focus); d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
		t.Fatalf("focus moved from %v to %v", focus, got)
	}
}

func TestPanDropsAxisAtBoundary(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	applied := c.Pan(image.Pt(150, 50))
	if applied != image.Pt(150, 50) {
		t.Fatalf("applied %v", applied)
	}
	// X would overshoot by 50 so only Y moves.
	applied = c.Pan(image.Pt(100, 10))
	if applied != image.Pt(0, 10) {
		t.Fatalf("applied %v, want only Y", applied)
	}
	if got := c.Viewport().Min; got != image.Pt(150, 60) {
		t.Fatalf("origin %v", got)
	}
	if applied := c.Pan(image.Pt(-151, -61)); applied != (image.Point{}) {
		t.Fatalf("negative overshoot applied %v", applied)
	}
}

func TestScrollStep(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	c.ScrollStep(Right)
	c.ScrollStep(Down)
	if got := c.Viewport().Min; got != image.Pt(20, 20) {
		t.Fatalf("origin %v", got)
	}
	c.ScrollStep(Left)
	c.ScrollStep(Left)
	if got := c.Viewport().Min; got != image.Pt(0, 20) {
		t.Fatalf("origin after left scrolls %v", got)
	}
}

func TestRandomOperationsStayInside(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		img := geom.Sz(1+rng.IntN(3000), 1+rng.IntN(3000))
		scr := geom.Sz(1+rng.IntN(1600), 1+rng.IntN(1200))
		c := newController(t, img, scr)
		for i := 0; i < 200; i++ {
			switch rng.IntN(5) {
			case 0:
				c.Zoom(ZoomIn)
			case 1:
				c.Zoom(ZoomOut)
			case 2:
				c.Pan(image.Pt(rng.IntN(400)-200, rng.IntN(400)-200))
			case 3:
				c.ScrollStep(Direction(rng.IntN(4)))
			case 4:
				c.ZoomAt(ZoomDirection(rng.IntN(2)), image.Pt(rng.IntN(img.W), rng.IntN(img.H)))
			}
			assertContained(t, c)
			v := c.Viewport()
			if v.Min.X < 0 || v.Min.X > img.W-v.Dx() || v.Min.Y < 0 || v.Min.Y > img.H-v.Dy() {
				t.Fatalf("origin out of range: %v in %v", v, img)
			}
			sx, sy := c.ScaleFactors()
			if sx <= 0 || sy <= 0 {
				t.Fatalf("non-positive scale %v %v", sx, sy)
			}
		}
	}
}

func TestMapScreenToImage(t *testing.T) {
	c := newController(t, geom.Sz(4000, 3000), geom.Sz(800, 600))
	for i := 0; i < 10; i++ {
		c.Zoom(ZoomOut)
	}
	c.Pan(image.Pt(37, 53))
	v := c.Viewport()
	sx, sy := c.ScaleFactors()
	for _, p := range []image.Point{{0, 0}, {799, 599}, {123, 456}, {400, 1}} {
		got := c.MapScreenToImage(p)
		wantX := float64(v.Min.X) + float64(p.X)*sx
		wantY := float64(v.Min.Y) + float64(p.Y)*sy
		if dx := float64(got.X) - wantX; dx < -1 || dx > 0 {
			t.Errorf("x for %v: got %d want %.2f", p, got.X, wantX)
		}
		if dy := float64(got.Y) - wantY; dy < -1 || dy > 0 {
			t.Errorf("y for %v: got %d want %.2f", p, got.Y, wantY)
		}
		back := c.MapImageToScreen(got)
		if d := back.Sub(p); d.X < -1 || d.X > 1 || d.Y < -1 || d.Y > 1 {
			t.Errorf("round trip %v -> %v -> %v", p, got, back)
		}
	}
}

func TestResizeScreenKeepsViewport(t *testing.T) {
	c := newController(t, geom.Sz(1000, 800), geom.Sz(800, 600))
	before := c.Viewport()
	if err := c.ResizeScreen(geom.Sz(400, 300)); err != nil {
		t.Fatal(err)
	}
	if c.Viewport() != before {
		t.Fatalf("viewport changed on resize")
	}
	if sx, sy := c.ScaleFactors(); sx != 2 || sy != 2 {
		t.Fatalf("scale factors %v %v", sx, sy)
	}
	if err := c.ResizeScreen(geom.Sz(0, 300)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
