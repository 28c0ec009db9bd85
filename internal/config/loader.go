package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader locates and reads the configuration file.
type Loader struct {
	Version      string // Build version; "dev" also looks in the working directory
	OverridePath string // From the -config flag
}

// NewLoader creates a new Loader.
func NewLoader(version, overridePath string) *Loader {
	return &Loader{Version: version, OverridePath: overridePath}
}

// Load reads the configuration file, if any, then applies the environment.
// A missing file yields the defaults; a missing -config file is an error.
func (l *Loader) Load() (*Config, error) {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		if cfg, err = Parse(f); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfigPath returns the first configuration file that exists, or "".
func (l *Loader) GetConfigPath() string {
	var candidates []string
	if l.OverridePath != "" {
		candidates = append(candidates, l.OverridePath)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			candidates = append(candidates, filepath.Join(wd, ".imageslicerrc"))
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "imageslicer", "config.rc"),
			filepath.Join(dir, "imageslicer", "imageslicer.rc"))
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}
