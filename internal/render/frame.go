// Package render composes the on-screen picture: the visible part of the
// image scaled to the window, selection overlays, guides and a status bar.
package render

import (
	"image"

	"github.com/example/imageslicer/internal/geom"
)

// Frame is everything needed to draw one picture. Rectangles and the cursor
// are already in screen space.
type Frame struct {
	Image  image.Image
	View   image.Rectangle // image space
	Screen geom.Size

	Confirmed      []image.Rectangle
	Unconfirmed    image.Rectangle
	HasUnconfirmed bool
	Locked         bool

	Guides    bool
	Cursor    image.Point
	HasCursor bool

	Status string
}
