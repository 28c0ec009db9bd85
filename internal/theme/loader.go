package theme

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Loader resolves theme names to definitions.
type Loader struct {
	ConfigDir string
	SystemDir string
	// Inline holds themes defined in the configuration file. They take
	// precedence over every other source except an explicit path.
	Inline map[string]*Theme
}

// NewLoader creates a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "imageslicer", "themes"),
		SystemDir: "/usr/share/imageslicer/themes",
	}
}

// Load resolves name in order: an existing file path, an inline theme,
// the embedded themes, ConfigDir, SystemDir. An empty name or "default"
// yields Default.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" || name == "default" {
		return Default(), nil
	}
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}
	if t, ok := l.Inline[name]; ok {
		c := *t
		return &c, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if t, err := parseFile(EmbeddedThemes, path.Join("defaults", filename)); err == nil {
		return t, nil
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
			return parseFile(os.DirFS(dir), filename)
		}
	}
	return nil, fmt.Errorf("theme %q not found", name)
}

// Names lists the built-in and inline theme names.
func (l *Loader) Names() []string {
	names := []string{"default"}
	entries, _ := fs.ReadDir(EmbeddedThemes, "defaults")
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	for n := range l.Inline {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}
