// Package viewport maps between the full image and the bounded on-screen
// window onto it. The visible window is a rectangle in image space that is
// always fully contained in the image; the screen size determines the scale
// factors used to translate pointer positions.
package viewport

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/example/imageslicer/internal/geom"
)

// ErrInvalidInput reports a non-positive image or screen dimension.
var ErrInvalidInput = errors.New("viewport: invalid input")

// ZoomDirection selects whether a zoom shrinks or grows the visible region.
type ZoomDirection int

const (
	// ZoomIn shows less of the image, magnifying it.
	ZoomIn ZoomDirection = iota
	// ZoomOut shows more of the image.
	ZoomOut
)

func (d ZoomDirection) String() string {
	if d == ZoomIn {
		return "in"
	}
	return "out"
}

// Direction is a cardinal direction for discrete scrolling.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Options tunes the fixed steps used by the controller.
type Options struct {
	// ZoomStep is the fraction of the current size removed by one zoom in.
	// Zooming out divides by the same factor so in/out are inverses.
	ZoomStep float64
	// ScrollStep is the distance in image pixels moved by ScrollStep.
	ScrollStep int
	// MinFraction is the smallest viewport allowed, as a fraction of the
	// screen size.
	MinFraction float64
}

// DefaultOptions returns a 5% zoom step, 20 pixel scroll step and a minimum
// viewport of 2% of the screen.
func DefaultOptions() Options {
	return Options{ZoomStep: 0.05, ScrollStep: 20, MinFraction: 0.02}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.ZoomStep <= 0 || o.ZoomStep >= 1 || math.IsNaN(o.ZoomStep) {
		o.ZoomStep = def.ZoomStep
	}
	if o.ScrollStep <= 0 {
		o.ScrollStep = def.ScrollStep
	}
	if o.MinFraction <= 0 || o.MinFraction > 1 || math.IsNaN(o.MinFraction) {
		o.MinFraction = def.MinFraction
	}
	return o
}

// Controller owns the visible sub-window of an image.
type Controller struct {
	opts   Options
	image  geom.Size
	screen geom.Size
	view   image.Rectangle

	// base is the viewport size at Initialize; every zoom sizes both axes
	// from base and the one factor scale, so the proportions never drift.
	base  geom.Size
	scale float64
}

// New creates a controller for the given image and screen sizes.
func New(imageSize, screenSize geom.Size, opts Options) (*Controller, error) {
	c := &Controller{opts: opts.normalized()}
	if err := c.Initialize(imageSize, screenSize); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize resets the viewport to the top-left corner of the image, sized
// to the smaller of the image and the screen along each axis.
func (c *Controller) Initialize(imageSize, screenSize geom.Size) error {
	if !imageSize.Positive() {
		return fmt.Errorf("%w: image size %v", ErrInvalidInput, imageSize)
	}
	if !screenSize.Positive() {
		return fmt.Errorf("%w: screen size %v", ErrInvalidInput, screenSize)
	}
	c.image = imageSize
	c.screen = screenSize
	s := imageSize.Min(screenSize)
	c.view = image.Rect(0, 0, s.W, s.H)
	c.base = s
	c.scale = 1
	return nil
}

// Viewport returns the visible region in image coordinates.
func (c *Controller) Viewport() image.Rectangle { return c.view }

// ImageSize returns the size of the full image.
func (c *Controller) ImageSize() geom.Size { return c.image }

// ScreenSize returns the size of the on-screen drawing area.
func (c *Controller) ScreenSize() geom.Size { return c.screen }

// Bounds returns the full image rectangle.
func (c *Controller) Bounds() image.Rectangle {
	return image.Rectangle{Max: c.image.Point()}
}

// ResizeScreen changes the screen size used for the scale factors. The
// viewport itself is left untouched.
func (c *Controller) ResizeScreen(s geom.Size) error {
	if !s.Positive() {
		return fmt.Errorf("%w: screen size %v", ErrInvalidInput, s)
	}
	c.screen = s
	return nil
}

// ScaleFactors returns the image pixels per screen pixel along each axis.
func (c *Controller) ScaleFactors() (float64, float64) {
	return float64(c.view.Dx()) / float64(c.screen.W),
		float64(c.view.Dy()) / float64(c.screen.H)
}

// ZoomPercent reports the horizontal magnification as a percentage.
func (c *Controller) ZoomPercent() float64 {
	sx, _ := c.ScaleFactors()
	return 100 / sx
}

// MapScreenToImage converts a point on the screen into image coordinates
// using the current viewport and screen size.
func (c *Controller) MapScreenToImage(p image.Point) image.Point {
	sx, sy := c.ScaleFactors()
	return image.Point{
		X: c.view.Min.X + int(math.Floor(float64(p.X)*sx)),
		Y: c.view.Min.Y + int(math.Floor(float64(p.Y)*sy)),
	}
}

// MapImageToScreen is the render-time transform from image to screen space.
func (c *Controller) MapImageToScreen(p image.Point) image.Point {
	sx, sy := c.ScaleFactors()
	return image.Point{
		X: int(math.Floor(float64(p.X-c.view.Min.X) / sx)),
		Y: int(math.Floor(float64(p.Y-c.view.Min.Y) / sy)),
	}
}

// MapRectToScreen maps both corners of an image-space rectangle.
func (c *Controller) MapRectToScreen(r image.Rectangle) image.Rectangle {
	return image.Rectangle{Min: c.MapImageToScreen(r.Min), Max: c.MapImageToScreen(r.Max)}
}

// Zoom shrinks or grows the viewport by one step, keeping its centre fixed.
func (c *Controller) Zoom(dir ZoomDirection) {
	focus := c.view.Min.Add(image.Pt(c.view.Dx()/2, c.view.Dy()/2))
	c.zoom(dir, focus, 0.5, 0.5)
}

// ZoomAt zooms by one step while keeping the image point focus at the same
// relative position inside the viewport.
func (c *Controller) ZoomAt(dir ZoomDirection, focus image.Point) {
	focus = geom.ClampPoint(focus, c.view)
	fx := float64(focus.X-c.view.Min.X) / float64(c.view.Dx())
	fy := float64(focus.Y-c.view.Min.Y) / float64(c.view.Dy())
	c.zoom(dir, focus, fx, fy)
}

func (c *Controller) zoom(dir ZoomDirection, focus image.Point, fx, fy float64) {
	factor := 1 - c.opts.ZoomStep
	lo, hi := c.scaleLimits()
	switch dir {
	case ZoomIn:
		c.scale = min(c.scale, max(c.scale*factor, lo))
	case ZoomOut:
		// The largest scale keeps the base proportions and fits the image
		// on both axes.
		c.scale = max(c.scale, min(c.scale/factor, hi))
	default:
		return
	}
	nw := geom.Clamp(geom.Round(float64(c.base.W)*c.scale), 1, c.image.W)
	nh := geom.Clamp(geom.Round(float64(c.base.H)*c.scale), 1, c.image.H)
	x := focus.X - geom.Round(fx*float64(nw))
	y := focus.Y - geom.Round(fy*float64(nh))
	x = geom.Clamp(x, 0, c.image.W-nw)
	y = geom.Clamp(y, 0, c.image.H-nh)
	c.view = image.Rect(x, y, x+nw, y+nh)
}

// scaleLimits returns the zoom factors, relative to base, of the smallest
// viewport a zoom in may produce and of the largest that fits the image.
func (c *Controller) scaleLimits() (lo, hi float64) {
	bw, bh := float64(c.base.W), float64(c.base.H)
	m := c.minSize()
	lo = max(float64(m.W)/bw, float64(m.H)/bh)
	hi = min(float64(c.image.W)/bw, float64(c.image.H)/bh)
	return min(lo, hi), hi
}

// minSize is the smallest viewport a zoom in may produce. It never exceeds
// the image so a tiny image can still be shown whole.
func (c *Controller) minSize() geom.Size {
	w := max(geom.Round(float64(c.screen.W)*c.opts.MinFraction), 1)
	h := max(geom.Round(float64(c.screen.H)*c.opts.MinFraction), 1)
	return geom.Sz(w, h).Min(c.image)
}

// Pan translates the viewport by delta, given in image pixels. Each axis
// moves only if the whole viewport stays inside the image on that axis;
// otherwise that axis does not move at all. The applied delta is returned.
func (c *Controller) Pan(delta image.Point) image.Point {
	var applied image.Point
	if x := c.view.Min.X + delta.X; x >= 0 && x+c.view.Dx() <= c.image.W {
		applied.X = delta.X
	}
	if y := c.view.Min.Y + delta.Y; y >= 0 && y+c.view.Dy() <= c.image.H {
		applied.Y = delta.Y
	}
	c.view = c.view.Add(applied)
	return applied
}

// ScrollStep pans one fixed step in a cardinal direction.
func (c *Controller) ScrollStep(dir Direction) image.Point {
	step := c.opts.ScrollStep
	switch dir {
	case Left:
		return c.Pan(image.Pt(-step, 0))
	case Right:
		return c.Pan(image.Pt(step, 0))
	case Up:
		return c.Pan(image.Pt(0, -step))
	case Down:
		return c.Pan(image.Pt(0, step))
	}
	return image.Point{}
}
