// Package display finds the size of the monitor the window opens on.
package display

import (
	"errors"
	"image"

	"github.com/example/imageslicer/internal/geom"
)

var errNoMonitors = errors.New("display: no active monitors")

// ErrUnavailable is returned where monitors cannot be queried.
var ErrUnavailable = errors.New("display: monitor query not supported")

// Monitor is one active output in desktop coordinates.
type Monitor struct {
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Primary returns the primary monitor, or the first one when none is marked.
func Primary(monitors []Monitor) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	for _, m := range monitors {
		if m.Primary {
			return m, true
		}
	}
	return monitors[0], true
}

// Usable is the share of the monitor the window may cover, leaving room for
// panels and decorations.
const Usable = 0.9

// WindowSize picks the on-screen size for an image: the image size, capped
// per axis by the usable part of the monitor.
func WindowSize(img, monitor geom.Size) geom.Size {
	limit := geom.Sz(int(float64(monitor.W)*Usable), int(float64(monitor.H)*Usable))
	if !limit.Positive() {
		return img
	}
	return img.Min(limit)
}

var list = List

// ScreenSize queries the primary monitor and returns the window size for
// img, falling back to fallback when the monitor cannot be queried.
func ScreenSize(img, fallback geom.Size) (geom.Size, error) {
	monitors, err := list()
	if err != nil {
		return WindowSize(img, fallback), err
	}
	m, ok := Primary(monitors)
	if !ok {
		return WindowSize(img, fallback), errNoMonitors
	}
	return WindowSize(img, geom.SizeOf(m.Rect)), nil
}
