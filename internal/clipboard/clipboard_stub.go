//go:build !(windows || ((linux || darwin) && cgo))

// Package clipboard publishes image regions to the system clipboard.
package clipboard

import (
	"errors"
	"image"
)

var errUnsupported = errors.New("clipboard is not supported in this build")

func WriteImage(image.Image) error { return errUnsupported }

func WriteText(string) error { return errUnsupported }
