package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath applies CLI/XDG/home fallback rules for config.jsonc location.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "leya", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}

	return filepath.Join(home, ".config", "leya", "config.jsonc"), nil
}

// ResolveStorePath returns configured, or commands.db under the XDG data home.
func ResolveStorePath(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return expandHome(configured)
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "leya", "commands.db"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for store fallback")
	}
	return filepath.Join(home, ".local", "share", "leya", "commands.db"), nil
}

// ResolveScreenshotDir returns configured, or ~/Pictures.
func ResolveScreenshotDir(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return expandHome(configured)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for screenshot directory")
	}
	return filepath.Join(home, "Pictures"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for ~ expansion")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
