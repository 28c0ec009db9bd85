package render

import (
	"image"
	"image/color"
	"image/draw"
)

// fill paints r, clipped to dst.
func fill(dst *image.RGBA, r image.Rectangle, col color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, &image.Uniform{col}, image.Point{}, draw.Over)
}

// outline makes a zero-width or zero-height rectangle one pixel wide so a
// click or a straight drag still shows up.
func outline(r image.Rectangle) image.Rectangle {
	r = r.Canon()
	if r.Dx() == 0 {
		r.Max.X++
	}
	if r.Dy() == 0 {
		r.Max.Y++
	}
	return r
}

// Rect draws a solid border of width thick just inside r.
func Rect(dst *image.RGBA, r image.Rectangle, col color.Color, thick int) {
	r = outline(r)
	t := max(thick, 1)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), col)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), col)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), col)
	fill(dst, image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// DashedRect walks the border of r clockwise from its top-left corner,
// switching between c1 and c2 every dash pixels.
func DashedRect(dst *image.RGBA, r image.Rectangle, dash, thick int, c1, c2 color.Color) {
	r = outline(r)
	dash = max(dash, 1)
	for k := 0; k < max(thick, 1); k++ {
		in := r.Inset(k)
		if in.Empty() {
			return
		}
		dashedBorder(dst, in, dash, c1, c2)
	}
}

func dashedBorder(dst *image.RGBA, r image.Rectangle, dash int, c1, c2 color.Color) {
	i := 0
	plot := func(x, y int) {
		col := c1
		if (i/dash)%2 == 1 {
			col = c2
		}
		i++
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.Set(x, y, col)
		}
	}
	x0, y0, x1, y1 := r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1
	for x := x0; x <= x1; x++ {
		plot(x, y0)
	}
	for y := y0 + 1; y <= y1; y++ {
		plot(x1, y)
	}
	if y1 > y0 {
		for x := x1 - 1; x >= x0; x-- {
			plot(x, y1)
		}
	}
	if x1 > x0 {
		for y := y1 - 1; y > y0; y-- {
			plot(x0, y)
		}
	}
}

// Crosshair draws a full-width horizontal and full-height vertical line
// through p, limited to area.
func Crosshair(dst *image.RGBA, area image.Rectangle, p image.Point, col color.Color) {
	if !p.In(area) {
		return
	}
	fill(dst, image.Rect(area.Min.X, p.Y, area.Max.X, p.Y+1).Intersect(area), col)
	fill(dst, image.Rect(p.X, area.Min.Y, p.X+1, area.Max.Y).Intersect(area), col)
}
