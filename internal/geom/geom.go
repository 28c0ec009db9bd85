// Package geom holds the integer pixel geometry shared by the viewport and
// selection packages. Points and rectangles are the standard library's
// image.Point and image.Rectangle; rectangles are half-open.
package geom

import (
	"fmt"
	"image"
	"math"
)

// Size is a width and height in pixels.
type Size struct {
	W, H int
}

// Sz is shorthand for Size{W: w, H: h}.
func Sz(w, h int) Size { return Size{W: w, H: h} }

// SizeOf returns the dimensions of r.
func SizeOf(r image.Rectangle) Size { return Size{W: r.Dx(), H: r.Dy()} }

// Point returns s as a vector suitable for image.Rectangle arithmetic.
func (s Size) Point() image.Point { return image.Point{X: s.W, Y: s.H} }

// Positive reports whether both dimensions are strictly positive.
func (s Size) Positive() bool { return s.W > 0 && s.H > 0 }

// Min returns the component-wise minimum of s and o.
func (s Size) Min(o Size) Size {
	return Size{W: min(s.W, o.W), H: min(s.H, o.H)}
}

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.W, s.H) }

// Span returns the bounding box of two corner points. The corners may be
// given in any order so drags in all four directions produce the same box.
func Span(a, b image.Point) image.Rectangle {
	return image.Rect(a.X, a.Y, b.X, b.Y)
}

// ClampPoint moves p inside r. Max is inclusive here because a corner lying
// on the far edge still spans pixels inside r.
func ClampPoint(p image.Point, r image.Rectangle) image.Point {
	return image.Point{
		X: Clamp(p.X, r.Min.X, r.Max.X),
		Y: Clamp(p.Y, r.Min.Y, r.Max.Y),
	}
}

// Centered returns a rectangle of size s centred on within.
func Centered(s Size, within image.Rectangle) image.Rectangle {
	x := within.Min.X + (within.Dx()-s.W)/2
	y := within.Min.Y + (within.Dy()-s.H)/2
	return image.Rect(x, y, x+s.W, y+s.H)
}

// Confine translates r so that it lies inside bounds, shrinking it first if
// it is larger than bounds along an axis.
func Confine(r, bounds image.Rectangle) image.Rectangle {
	s := SizeOf(r).Min(SizeOf(bounds))
	x := Clamp(r.Min.X, bounds.Min.X, bounds.Max.X-s.W)
	y := Clamp(r.Min.Y, bounds.Min.Y, bounds.Max.Y-s.H)
	return image.Rect(x, y, x+s.W, y+s.H)
}

// FitAspect returns the largest size with the proportions of aspect that
// fits inside within. Both axes are at least 1.
func FitAspect(within, aspect Size) Size {
	if !within.Positive() || !aspect.Positive() {
		return within
	}
	k := math.Min(float64(within.W)/float64(aspect.W), float64(within.H)/float64(aspect.H))
	return Sz(
		Clamp(Round(float64(aspect.W)*k), 1, within.W),
		Clamp(Round(float64(aspect.H)*k), 1, within.H),
	)
}

// Clamp limits v to [lo, hi]. When hi < lo the result is lo.
func Clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Round converts f to the nearest int, halves away from zero.
func Round(f float64) int { return int(math.Round(f)) }
