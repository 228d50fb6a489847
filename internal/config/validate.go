package config

import (
	"fmt"
	"maps"
	"net"
	"net/url"
	"slices"
	"strings"

	"github.com/rbright/leya/internal/lexical"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if !lexical.Supported(cfg.Language) {
		return nil, fmt.Errorf("language %q has no stemmer", cfg.Language)
	}
	if cfg.ActiveWindowMS <= 0 {
		return nil, fmt.Errorf("active_window_ms must be > 0")
	}
	if cfg.ListenTimeoutMS <= 0 {
		return nil, fmt.Errorf("listen_timeout_ms must be > 0")
	}

	m := cfg.Match
	if m.ExecuteThreshold <= 0 || m.ExecuteThreshold > 1 {
		return nil, fmt.Errorf("match.execute_threshold must be in (0, 1]")
	}
	if m.SuggestThreshold < 0 || m.SuggestThreshold >= m.ExecuteThreshold {
		return nil, fmt.Errorf("match.suggest_threshold must be in [0, match.execute_threshold)")
	}
	if m.FuzzyCutoff <= 0 || m.FuzzyCutoff > 1 {
		return nil, fmt.Errorf("match.fuzzy_cutoff must be in (0, 1]")
	}
	if strings.TrimSpace(m.ConfirmToken) == "" {
		return nil, fmt.Errorf("match.confirm_token must not be empty")
	}

	seen := make(map[string]struct{}, len(cfg.Sites))
	for i, site := range cfg.Sites {
		if site.Name == "" {
			return nil, fmt.Errorf("sites[%d].name must not be empty", i)
		}
		if _, dup := seen[site.Name]; dup {
			return nil, fmt.Errorf("sites[%d].name %q is duplicated", i, site.Name)
		}
		seen[site.Name] = struct{}{}
		if err := validateHTTPURL(site.URL); err != nil {
			return nil, fmt.Errorf("sites[%d].url: %w", i, err)
		}
	}

	if len(cfg.Browser.Open.Argv) == 0 {
		return nil, fmt.Errorf("browser.open_cmd must not be empty")
	}
	if err := validateHTTPURL(cfg.Browser.SearchURL); err != nil {
		return nil, fmt.Errorf("browser.search_url: %w", err)
	}
	if len(cfg.Browser.Launch.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "browser.launch_cmd is empty; \"abrir chrome\" will only focus a running browser"})
	}
	if strings.TrimSpace(cfg.Browser.WindowClass) == "" {
		warnings = append(warnings, Warning{Message: "browser.window_class is empty; the browser is never focused before shortcuts"})
	}

	if cfg.Actions.VolumeStepPct <= 0 || cfg.Actions.VolumeStepPct > 100 {
		return nil, fmt.Errorf("actions.volume_step must be in 1..100")
	}
	if len(cfg.Actions.Speak.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "actions.speak_cmd is empty; prompts are returned but not spoken"})
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend == "" {
		return nil, fmt.Errorf("indicator.backend must not be empty")
	}
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}

	commands := map[string]CommandConfig{
		"browser.launch_cmd":         cfg.Browser.Launch,
		"browser.open_cmd":           cfg.Browser.Open,
		"actions.scroll_cmd":         cfg.Actions.Scroll,
		"actions.screenshot_cmd":     cfg.Actions.Screenshot,
		"actions.clipboard_read_cmd": cfg.Actions.ClipboardRead,
		"actions.speak_cmd":          cfg.Actions.Speak,
	}
	for _, key := range slices.Sorted(maps.Keys(commands)) {
		if warning, ok := placeholderWarning(key, commands[key]); ok {
			warnings = append(warnings, warning)
		}
	}

	if listen := strings.TrimSpace(cfg.RPC.Listen); listen != "" {
		if _, _, err := net.SplitHostPort(listen); err != nil {
			return nil, fmt.Errorf("rpc.listen must be host:port: %w", err)
		}
	}

	return warnings, nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
