package session

import (
	"image"

	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/viewport"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Key names the non-character keys the session reacts to.
type Key int

const (
	KeyNone Key = iota
	KeyEscape
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Event is one input delivered to Session.Handle. Pointer positions are in
// screen space.
type Event interface {
	event()
}

type (
	PointerDown struct {
		Pos    image.Point
		Button Button
	}
	PointerMove struct {
		Pos image.Point
	}
	PointerUp struct {
		Pos    image.Point
		Button Button
	}
	// Scroll is a wheel notch at Pos.
	Scroll struct {
		Pos image.Point
		Dir viewport.ZoomDirection
	}
	// KeyPress carries either a character or a named key.
	KeyPress struct {
		Rune rune
		Key  Key
	}
	Resize struct {
		Size geom.Size
	}
	// Tick is sent on a timer so per-frame work runs without input.
	Tick struct{}
)

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Scroll) event()      {}
func (KeyPress) event()    {}
func (Resize) event()      {}
func (Tick) event()        {}
