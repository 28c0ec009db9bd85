package theme

import (
	"image/color"
)

// Theme defines the colours used to draw selections over the image.
type Theme struct {
	Name string

	// Canvas
	Background color.RGBA // Shown around an image smaller than the window

	// Selections
	Unconfirmed    color.RGBA // Rectangle being dragged or awaiting confirmation
	UnconfirmedAlt color.RGBA // Alternate dash colour for the unconfirmed rectangle
	Confirmed      color.RGBA // Rectangles queued for export
	Locked         color.RGBA // Synthesized fixed-size rectangle
	Guide          color.RGBA // Crosshair at the cursor

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
}

// Default returns the hardcoded default theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Background:       color.RGBA{64, 64, 64, 255},
		Unconfirmed:      color.RGBA{0, 0, 255, 255},
		UnconfirmedAlt:   color.RGBA{255, 255, 255, 255},
		Confirmed:        color.RGBA{0, 255, 0, 255},
		Locked:           color.RGBA{255, 160, 0, 255},
		Guide:            color.RGBA{255, 0, 255, 255},
		StatusBackground: color.RGBA{220, 220, 220, 255},
		StatusText:       color.RGBA{0, 0, 0, 255},
	}
}
