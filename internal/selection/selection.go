// Package selection turns a drag gesture plus a few discrete commands into an
// ordered list of confirmed rectangles. All coordinates are image space.
package selection

import (
	"errors"
	"fmt"
	"image"

	"github.com/example/imageslicer/internal/geom"
)

var (
	// ErrInvalidState is returned when an operation is not valid in the
	// current state. Interactive callers treat it as a no-op.
	ErrInvalidState = errors.New("selection: invalid state")
	// ErrDegenerateRectangle is returned when confirming a rectangle with
	// zero width or height. The selection stays pending.
	ErrDegenerateRectangle = errors.New("selection: degenerate rectangle")
)

// State is the lifecycle stage of the in-progress selection.
type State int

const (
	// Idle has no unconfirmed rectangle.
	Idle State = iota
	// Dragging has the anchor corner fixed and tracks the pointer.
	Dragging
	// Pending holds a finished rectangle awaiting confirm or delete.
	Pending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Pending:
		return "pending"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Machine is the selection state machine. The zero value is not usable; call
// New.
type Machine struct {
	bounds      image.Rectangle
	state       State
	anchor      image.Point
	unconfirmed image.Rectangle
	confirmed   []image.Rectangle

	locked    geom.Size
	hasLocked bool
}

// New creates an idle machine whose points are clamped to bounds.
func New(bounds image.Rectangle) *Machine {
	return &Machine{bounds: bounds}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Bounds returns the rectangle points are clamped to.
func (m *Machine) Bounds() image.Rectangle { return m.bounds }

// Unconfirmed returns the in-progress rectangle, if any.
func (m *Machine) Unconfirmed() (image.Rectangle, bool) {
	if m.state == Idle {
		return image.Rectangle{}, false
	}
	return m.unconfirmed, true
}

// Confirmed returns a copy of the confirmed rectangles in confirmation order.
func (m *Machine) Confirmed() []image.Rectangle {
	out := make([]image.Rectangle, len(m.confirmed))
	copy(out, m.confirmed)
	return out
}

// Snapshot returns the confirmed rectangles for export. Exporting mid-drag is
// not allowed.
func (m *Machine) Snapshot() ([]image.Rectangle, error) {
	if m.state == Dragging {
		return nil, fmt.Errorf("%w: export while %v", ErrInvalidState, m.state)
	}
	return m.Confirmed(), nil
}

// Len returns the number of confirmed rectangles.
func (m *Machine) Len() int { return len(m.confirmed) }

// PointerDown fixes the anchor corner and starts a drag. Only valid when idle.
func (m *Machine) PointerDown(p image.Point) error {
	if m.state != Idle {
		return fmt.Errorf("%w: pointer down while %v", ErrInvalidState, m.state)
	}
	m.anchor = geom.ClampPoint(p, m.bounds)
	m.unconfirmed = geom.Span(m.anchor, m.anchor)
	m.state = Dragging
	return nil
}

// PointerMove updates the second corner while dragging and is ignored in
// every other state.
func (m *Machine) PointerMove(p image.Point) {
	if m.state != Dragging {
		return
	}
	m.unconfirmed = geom.Span(m.anchor, geom.ClampPoint(p, m.bounds))
}

// PointerUp finishes the drag at p and leaves the rectangle pending.
func (m *Machine) PointerUp(p image.Point) error {
	if m.state != Dragging {
		return fmt.Errorf("%w: pointer up while %v", ErrInvalidState, m.state)
	}
	m.unconfirmed = geom.Span(m.anchor, geom.ClampPoint(p, m.bounds))
	m.state = Pending
	return nil
}

// Confirm appends the pending rectangle to the confirmed list and returns it.
func (m *Machine) Confirm() (image.Rectangle, error) {
	if m.state != Pending {
		return image.Rectangle{}, fmt.Errorf("%w: confirm while %v", ErrInvalidState, m.state)
	}
	r := m.unconfirmed
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %v", ErrDegenerateRectangle, r)
	}
	m.confirmed = append(m.confirmed, r)
	m.clearUnconfirmed()
	return r, nil
}

// Delete discards the pending rectangle.
func (m *Machine) Delete() error {
	if m.state != Pending {
		return fmt.Errorf("%w: delete while %v", ErrInvalidState, m.state)
	}
	m.clearUnconfirmed()
	return nil
}

// Reset clears everything from any state. The locked size survives a reset.
func (m *Machine) Reset() {
	m.clearUnconfirmed()
	m.confirmed = nil
}

// Rebind clears the machine and changes the clamp bounds, as after loading a
// different image.
func (m *Machine) Rebind(bounds image.Rectangle) {
	m.Reset()
	m.bounds = bounds
}

func (m *Machine) clearUnconfirmed() {
	m.state = Idle
	m.unconfirmed = image.Rectangle{}
	m.anchor = image.Point{}
}

// Locked returns the fixed selection size, if locked mode is on.
func (m *Machine) Locked() (geom.Size, bool) { return m.locked, m.hasLocked }

// SetLocked turns locked mode on with size s. Sizes are at least 1x1.
func (m *Machine) SetLocked(s geom.Size) {
	m.locked = geom.Sz(max(s.W, 1), max(s.H, 1))
	m.hasLocked = true
}

// Unlock turns locked mode off and drops any synthesized rectangle.
func (m *Machine) Unlock() {
	if m.hasLocked && m.state == Pending {
		m.clearUnconfirmed()
	}
	m.hasLocked = false
}

// SyncLocked replaces the unconfirmed rectangle with one of the locked size
// centred in view. It runs every frame while locked mode is on and does
// nothing otherwise or mid-drag.
func (m *Machine) SyncLocked(view image.Rectangle) {
	if !m.hasLocked || m.state == Dragging {
		return
	}
	r := geom.Confine(geom.Centered(m.locked, view), m.bounds)
	if r.Empty() {
		return
	}
	m.unconfirmed = r
	m.state = Pending
}

// ResizeLocked grows (positive pct) or shrinks the locked size by pct
// percent of its current size, always changing by at least one pixel.
func (m *Machine) ResizeLocked(pct float64) {
	if !m.hasLocked {
		return
	}
	step := func(v int) int {
		d := geom.Round(float64(v) * pct / 100)
		if d == 0 {
			d = 1
			if pct < 0 {
				d = -1
			}
		}
		return max(v+d, 1)
	}
	m.locked = geom.Sz(step(m.locked.W), step(m.locked.H))
	if b := geom.SizeOf(m.bounds); b.Positive() {
		m.locked = m.locked.Min(b)
	}
}
