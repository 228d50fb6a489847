package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Window is the subset of a hyprctl client record leya needs.
type Window struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
}

type monitor struct {
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
}

func (w *Window) trim() {
	w.Address = strings.TrimSpace(w.Address)
	w.Class = strings.TrimSpace(w.Class)
	w.InitialClass = strings.TrimSpace(w.InitialClass)
	w.Title = strings.TrimSpace(w.Title)
}

// MatchesClass reports whether the window's class or initial class equals
// class, ignoring case.
func (w Window) MatchesClass(class string) bool {
	class = strings.TrimSpace(class)
	if class == "" {
		return false
	}
	return strings.EqualFold(w.Class, class) || strings.EqualFold(w.InitialClass, class)
}

// QueryActiveWindow fetches and validates the active-window contract from hyprctl.
func QueryActiveWindow(ctx context.Context) (Window, error) {
	output, err := runHyprctlJSON(ctx, "activewindow")
	if err != nil {
		return Window{}, err
	}

	var window Window
	if err := json.Unmarshal(output, &window); err != nil {
		return Window{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	window.trim()
	if window.Address == "" {
		return Window{}, fmt.Errorf("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// QueryClients lists every mapped window.
func QueryClients(ctx context.Context) ([]Window, error) {
	output, err := runHyprctlJSON(ctx, "clients")
	if err != nil {
		return nil, err
	}

	var windows []Window
	if err := json.Unmarshal(output, &windows); err != nil {
		return nil, fmt.Errorf("decode hyprctl clients json: %w", err)
	}
	for i := range windows {
		windows[i].trim()
	}
	return windows, nil
}

// FindByClass returns the first window whose class matches.
func FindByClass(windows []Window, class string) (Window, bool) {
	for _, w := range windows {
		if w.MatchesClass(class) {
			return w, true
		}
	}
	return Window{}, false
}

// FindByTitle returns the first window whose title contains fragment,
// ignoring case.
func FindByTitle(windows []Window, fragment string) (Window, bool) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return Window{}, false
	}
	for _, w := range windows {
		if strings.Contains(strings.ToLower(w.Title), fragment) {
			return w, true
		}
	}
	return Window{}, false
}

// QueryFocusedMonitor returns the focused monitor name (or the first monitor fallback).
func QueryFocusedMonitor(ctx context.Context) (string, error) {
	output, err := runHyprctlJSON(ctx, "monitors")
	if err != nil {
		return "", err
	}

	var monitors []monitor
	if err := json.Unmarshal(output, &monitors); err != nil {
		return "", fmt.Errorf("decode hyprctl monitors json: %w", err)
	}

	for _, mon := range monitors {
		if mon.Focused {
			return strings.TrimSpace(mon.Name), nil
		}
	}
	if len(monitors) == 0 {
		return "", fmt.Errorf("hyprctl monitors returned no outputs")
	}
	return strings.TrimSpace(monitors[0].Name), nil
}

// SendShortcut sends a literal hyprctl sendshortcut payload.
func SendShortcut(ctx context.Context, shortcut string) error {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return fmt.Errorf("sendshortcut requires a non-empty payload")
	}
	return runHyprctl(ctx, "--quiet", "dispatch", "sendshortcut", shortcut)
}

// Shortcut builds a sendshortcut payload from key names such as
// ["ctrl", "shift", "t"], targeting the window at address when set.
func Shortcut(keys []string, address string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("shortcut requires at least one key")
	}
	mods := make([]string, 0, len(keys)-1)
	for _, key := range keys[:len(keys)-1] {
		mod, ok := modifiers[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return "", fmt.Errorf("unsupported modifier %q", key)
		}
		mods = append(mods, mod)
	}
	key := strings.TrimSpace(keys[len(keys)-1])
	if named, ok := keyNames[strings.ToLower(key)]; ok {
		key = named
	}
	if key == "" {
		return "", fmt.Errorf("shortcut key must not be empty")
	}

	payload := strings.Join(mods, " ") + "," + key
	if address = strings.TrimSpace(address); address != "" {
		payload += "," + AddressSelector(address)
	}
	return payload, nil
}

var modifiers = map[string]string{
	"ctrl":  "CTRL",
	"shift": "SHIFT",
	"alt":   "ALT",
	"super": "SUPER",
}

var keyNames = map[string]string{
	"+":     "plus",
	"-":     "minus",
	"left":  "left",
	"right": "right",
	"esc":   "escape",
	"f5":    "F5",
	"f11":   "F11",
}

// Notify sends a Hyprland notification payload.
func Notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if strings.TrimSpace(color) == "" {
		color = "rgb(89b4fa)"
	}
	return runHyprctl(
		ctx,
		"--quiet",
		"dispatch",
		"notify",
		strconv.Itoa(icon),
		strconv.Itoa(timeoutMS),
		color,
		text,
	)
}

// DismissNotify dismisses active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	return runHyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
}

// runHyprctlJSON executes a JSON-returning hyprctl subcommand.
func runHyprctlJSON(ctx context.Context, target string) ([]byte, error) {
	output, err := runHyprctlOutput(ctx, "-j", target)
	if err != nil {
		return nil, err
	}
	return output, nil
}
