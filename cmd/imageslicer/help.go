package main

import (
	"embed"
	"errors"
	"flag"
	"log"
	"strings"
	"sync"
	"text/template"

	"github.com/example/imageslicer/internal/session"
)

//go:embed templates/*.txt
var helpFS embed.FS

var helpTemplates = sync.OnceValue(func() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"flags":     flagList,
		"shortcuts": session.Shortcuts,
		"join":      strings.Join,
	}).ParseFS(helpFS, "templates/*.txt"))
})

// flagInfo is one row of the flag table in the help text.
type flagInfo struct {
	Name, DefValue, Usage string
}

func flagList(fs *flag.FlagSet) []flagInfo {
	var out []flagInfo
	fs.VisitAll(func(f *flag.Flag) {
		out = append(out, flagInfo{Name: f.Name, DefValue: f.DefValue, Usage: f.Usage})
	})
	return out
}

// HelpData is what the help templates render.
type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
	Themes() []string
}

// UsageError reports bad arguments; its message is the rendered help,
// preceded by the reason when there is one.
type UsageError struct {
	of  HelpData
	err error
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.err != nil && !errors.Is(e.err, flag.ErrHelp) {
		return "error: " + e.err.Error() + "\n\n" + help
	}
	return help
}

func (e *UsageError) Unwrap() error { return e.err }

func (e *UsageError) renderHelp() (string, error) {
	var sb strings.Builder
	if err := helpTemplates().ExecuteTemplate(&sb, e.of.Template(), e.of); err != nil {
		log.Printf("help template %s: %v", e.of.Template(), err)
		return "", err
	}
	return sb.String(), nil
}

// LoadError is returned when the source image cannot be opened. It is
// reported together with the usage text.
type LoadError struct {
	of   HelpData
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	msg := "error: cannot load image " + e.Path + ": " + e.Err.Error()
	help, err := (&UsageError{of: e.of}).renderHelp()
	if err != nil {
		return msg
	}
	return msg + "\n\n" + help
}

func (e *LoadError) Unwrap() error { return e.Err }

func (r *root) Template() string {
	return "root.txt"
}
