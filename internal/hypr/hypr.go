// Package hypr wraps the hyprctl commands leya drives.
package hypr

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Focus brings the first window matching selector (for example
// "class:chromium" or "title:Inbox") to the front.
func Focus(ctx context.Context, selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.New("focuswindow selector must not be empty")
	}
	return runHyprctl(ctx, "--quiet", "dispatch", "focuswindow", selector)
}

// ClassSelector returns a focuswindow selector for a window class.
func ClassSelector(class string) string {
	return "class:" + strings.TrimSpace(class)
}

// AddressSelector returns a focuswindow selector for a window address.
func AddressSelector(address string) string {
	return "address:" + strings.TrimSpace(address)
}

func runHyprctl(ctx context.Context, args ...string) error {
	_, err := runHyprctlOutput(ctx, args...)
	return err
}

func runHyprctlOutput(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "hyprctl", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return nil, fmt.Errorf("hyprctl %v failed: %w", args, err)
		}
		return nil, fmt.Errorf("hyprctl %v failed: %w (%s)", args, err, trimmed)
	}
	return out, nil
}
