// Package export writes confirmed selections out as individual image files.
package export

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"log"
	"strings"
)

// Writer persists the part of img bounded by r to the file name.
type Writer interface {
	Write(img image.Image, r image.Rectangle, name string) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(img image.Image, r image.Rectangle, name string) error

func (f WriterFunc) Write(img image.Image, r image.Rectangle, name string) error {
	return f(img, r, name)
}

// Filename returns the export name for one rectangle: prefix, index, a dot
// and the extension.
func Filename(prefix string, index int, ext string) string {
	return fmt.Sprintf("%s%d.%s", prefix, index, strings.TrimPrefix(ext, "."))
}

// Failure records one rectangle that could not be written.
type Failure struct {
	Name string
	Rect image.Rectangle
	Err  error
}

// BatchError summarises the failed writes of an export. The remaining
// rectangles were still attempted.
type BatchError struct {
	Total    int
	Failures []Failure
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "export: %d of %d files failed", len(e.Failures), e.Total)
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, "; %s: %v", f.Name, f.Err)
	}
	return sb.String()
}

// Unwrap exposes the individual write errors to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// ExportAll requests one write per rectangle, in order, named
// prefix<start+i>.ext. A failed write is logged and the batch continues; the
// names that were written are returned along with a *BatchError when any
// write failed. rects is read but never modified.
func ExportAll(w Writer, img image.Image, rects []image.Rectangle, prefix, ext string, start int) ([]string, error) {
	written := make([]string, 0, len(rects))
	var failures []Failure
	for i, r := range rects {
		name := Filename(prefix, start+i, ext)
		if err := w.Write(img, r, name); err != nil {
			log.Printf("export %s: %v", name, err)
			failures = append(failures, Failure{Name: name, Rect: r, Err: err})
			continue
		}
		written = append(written, name)
	}
	if len(failures) > 0 {
		return written, &BatchError{Total: len(rects), Failures: failures}
	}
	return written, nil
}

// DescriptionName is the sidecar file written next to the exports.
func DescriptionName(prefix string) string {
	return prefix + "description.txt"
}

// WriteDescription lists each rectangle on its own line as
// "<image-path> <export-index> <x> <y> <width> <height>".
func WriteDescription(w io.Writer, imagePath string, rects []image.Rectangle, start int) error {
	bw := bufio.NewWriter(w)
	for i, r := range rects {
		if _, err := fmt.Fprintf(bw, "%s %d %d %d %d %d\n", imagePath, start+i, r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
