package render

import (
	"context"
	"image"
	"image/draw"
	"log"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/imageslicer/internal/geom"
	"github.com/example/imageslicer/internal/theme"
)

// StatusHeight is the height of the status bar under the image.
const StatusHeight = 20

const (
	dashLength     = 4
	selectionThick = 2
)

// Renderer draws frames with one theme and font.
type Renderer struct {
	Theme *theme.Theme
	Face  font.Face
}

// New returns a Renderer using th, or the default theme when th is nil.
// The status bar uses Go Regular and falls back to the fixed 7x13 face.
func New(th *theme.Theme) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	face, err := statusFace(13)
	if err != nil {
		log.Printf("status font: %v", err)
		face = basicfont.Face7x13
	}
	return &Renderer{Theme: th, Face: face}
}

func statusFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// Size returns the buffer size needed for a screen: the image area plus
// the status bar.
func Size(screen geom.Size) image.Point {
	return image.Pt(screen.W, screen.H+StatusHeight)
}

// Draw composes f into dst. It stops early and returns ctx.Err() when the
// frame is superseded.
func (r *Renderer) Draw(ctx context.Context, dst *image.RGBA, f Frame) error {
	th := r.Theme
	area := image.Rectangle{Max: f.Screen.Point()}
	fill(dst, dst.Bounds(), th.Background)

	if f.Image != nil && !f.View.Empty() {
		src := f.View.Add(f.Image.Bounds().Min)
		var scaler xdraw.Scaler = xdraw.NearestNeighbor
		if f.View.Dx() > area.Dx() || f.View.Dy() > area.Dy() {
			scaler = xdraw.ApproxBiLinear
		}
		scaler.Scale(dst, area, f.Image, src, draw.Src, nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, c := range f.Confirmed {
		Rect(dst, c, th.Confirmed, selectionThick)
	}
	if f.HasUnconfirmed {
		col := th.Unconfirmed
		if f.Locked {
			col = th.Locked
		}
		DashedRect(dst, f.Unconfirmed, dashLength, selectionThick, col, th.UnconfirmedAlt)
	}
	if f.Guides && f.HasCursor {
		Crosshair(dst, area, f.Cursor, th.Guide)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.drawStatus(dst, image.Rect(0, area.Max.Y, dst.Bounds().Dx(), area.Max.Y+StatusHeight), f.Status)
	return nil
}

func (r *Renderer) drawStatus(dst *image.RGBA, bar image.Rectangle, text string) {
	fill(dst, bar, r.Theme.StatusBackground)
	if text == "" {
		return
	}
	m := r.Face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(r.Theme.StatusText), Face: r.Face}
	d.Dot = fixed.P(bar.Min.X+4, bar.Min.Y+(bar.Dy()-ascent-descent)/2+ascent)
	d.DrawString(text)
}
