package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Loaded is the effective configuration and where it was read from.
type Loaded struct {
	Path     string
	Exists   bool
	Config   Config
	Warnings []Warning
}

// Load reads the config file at explicitPath (or the XDG default) over the
// built-in defaults. A missing file is a warning, not an error. On return
// Config.Store.Path always holds the absolute location of the command
// database; a relative store.path is taken from the config file's directory.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: path, Config: Default()}
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults and built-in commands only", path),
		})
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	default:
		cfg, warnings, err := Parse(string(content), loaded.Config)
		if err != nil {
			return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
		}
		loaded.Exists = true
		loaded.Config = cfg
		loaded.Warnings = warnings
	}

	storePath, err := storeLocation(path, loaded.Config.Store.Path)
	if err != nil {
		return Loaded{}, fmt.Errorf("resolve store path: %w", err)
	}
	loaded.Config.Store.Path = storePath
	if warning, ok := storeWarning(storePath); ok {
		loaded.Warnings = append(loaded.Warnings, warning)
	}
	return loaded, nil
}

func storeLocation(configPath string, configured string) (string, error) {
	resolved, err := ResolveStorePath(configured)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(configPath), resolved)
	}
	return filepath.Abs(resolved)
}

// storeWarning flags a store location sqlite cannot open. Saved commands are
// then unavailable but the built-in commands still work.
func storeWarning(path string) (Warning, bool) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return Warning{Message: fmt.Sprintf("store.path %q is a directory; saved commands are unavailable", path)}, true
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return Warning{Message: fmt.Sprintf("store.path %q is not accessible: %v", path, err)}, true
	default:
		return Warning{}, false
	}
}
