package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

type jsoncConfig struct {
	Language        *string `json:"language"`
	WakeWord        *string `json:"wake_word"`
	ActiveWindowMS  *int    `json:"active_window_ms"`
	ListenTimeoutMS *int    `json:"listen_timeout_ms"`

	Match     *jsoncMatch     `json:"match"`
	Store     *jsoncStore     `json:"store"`
	Sites     []jsoncSite     `json:"sites"`
	Browser   *jsoncBrowser   `json:"browser"`
	Actions   *jsoncActions   `json:"actions"`
	Indicator *jsoncIndicator `json:"indicator"`
	RPC       *jsoncRPC       `json:"rpc"`
}

type jsoncMatch struct {
	ExecuteThreshold *float64 `json:"execute_threshold"`
	SuggestThreshold *float64 `json:"suggest_threshold"`
	FuzzyCutoff      *float64 `json:"fuzzy_cutoff"`
	ConfirmToken     *string  `json:"confirm_token"`
}

type jsoncStore struct {
	Path *string `json:"path"`
}

type jsoncSite struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type jsoncBrowser struct {
	LaunchCmd   *string `json:"launch_cmd"`
	OpenCmd     *string `json:"open_cmd"`
	WindowClass *string `json:"window_class"`
	SearchURL   *string `json:"search_url"`
}

type jsoncActions struct {
	ScrollCmd        *string `json:"scroll_cmd"`
	ScreenshotCmd    *string `json:"screenshot_cmd"`
	ScreenshotPath   *string `json:"screenshot_path"`
	ClipboardReadCmd *string `json:"clipboard_read_cmd"`
	SpeakCmd         *string `json:"speak_cmd"`
	VolumeStep       *int    `json:"volume_step"`
}

type jsoncIndicator struct {
	Enable         *bool   `json:"enable"`
	Backend        *string `json:"backend"`
	DesktopAppName *string `json:"desktop_app_name"`
	SoundEnable    *bool   `json:"sound_enable"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms"`
}

type jsoncRPC struct {
	Listen *string `json:"listen"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	cfg.Sites = append([]SiteConfig(nil), base.Sites...)
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if payload.Language != nil {
		cfg.Language = strings.ToLower(strings.TrimSpace(*payload.Language))
	}
	if payload.WakeWord != nil {
		cfg.WakeWord = strings.ToLower(strings.TrimSpace(*payload.WakeWord))
	}
	if payload.ActiveWindowMS != nil {
		cfg.ActiveWindowMS = *payload.ActiveWindowMS
	}
	if payload.ListenTimeoutMS != nil {
		cfg.ListenTimeoutMS = *payload.ListenTimeoutMS
	}

	if payload.Match != nil {
		if payload.Match.ExecuteThreshold != nil {
			cfg.Match.ExecuteThreshold = *payload.Match.ExecuteThreshold
		}
		if payload.Match.SuggestThreshold != nil {
			cfg.Match.SuggestThreshold = *payload.Match.SuggestThreshold
		}
		if payload.Match.FuzzyCutoff != nil {
			cfg.Match.FuzzyCutoff = *payload.Match.FuzzyCutoff
		}
		if payload.Match.ConfirmToken != nil {
			cfg.Match.ConfirmToken = strings.ToLower(strings.TrimSpace(*payload.Match.ConfirmToken))
		}
	}

	if payload.Store != nil && payload.Store.Path != nil {
		cfg.Store.Path = strings.TrimSpace(*payload.Store.Path)
	}

	// A sites array replaces the defaults wholesale; an empty array disables them.
	if payload.Sites != nil {
		cfg.Sites = make([]SiteConfig, 0, len(payload.Sites))
		for _, site := range payload.Sites {
			cfg.Sites = append(cfg.Sites, SiteConfig{
				Name: strings.ToLower(strings.TrimSpace(site.Name)),
				URL:  strings.TrimSpace(site.URL),
			})
		}
	}

	if payload.Browser != nil {
		if err := applyCommand("browser.launch_cmd", payload.Browser.LaunchCmd, &cfg.Browser.Launch); err != nil {
			return nil, err
		}
		if err := applyCommand("browser.open_cmd", payload.Browser.OpenCmd, &cfg.Browser.Open); err != nil {
			return nil, err
		}
		if payload.Browser.WindowClass != nil {
			cfg.Browser.WindowClass = strings.TrimSpace(*payload.Browser.WindowClass)
		}
		if payload.Browser.SearchURL != nil {
			cfg.Browser.SearchURL = strings.TrimSpace(*payload.Browser.SearchURL)
		}
	}

	if payload.Actions != nil {
		if err := applyCommand("actions.scroll_cmd", payload.Actions.ScrollCmd, &cfg.Actions.Scroll); err != nil {
			return nil, err
		}
		if err := applyCommand("actions.screenshot_cmd", payload.Actions.ScreenshotCmd, &cfg.Actions.Screenshot); err != nil {
			return nil, err
		}
		if err := applyCommand("actions.clipboard_read_cmd", payload.Actions.ClipboardReadCmd, &cfg.Actions.ClipboardRead); err != nil {
			return nil, err
		}
		if err := applyCommand("actions.speak_cmd", payload.Actions.SpeakCmd, &cfg.Actions.Speak); err != nil {
			return nil, err
		}
		if payload.Actions.ScreenshotPath != nil {
			cfg.Actions.ScreenshotDir = strings.TrimSpace(*payload.Actions.ScreenshotPath)
		}
		if payload.Actions.VolumeStep != nil {
			cfg.Actions.VolumeStepPct = *payload.Actions.VolumeStep
		}
	}

	if payload.Indicator != nil {
		if payload.Indicator.Enable != nil {
			cfg.Indicator.Enable = *payload.Indicator.Enable
		}
		if payload.Indicator.Backend != nil {
			cfg.Indicator.Backend = strings.TrimSpace(*payload.Indicator.Backend)
		}
		if payload.Indicator.DesktopAppName != nil {
			cfg.Indicator.DesktopAppName = strings.TrimSpace(*payload.Indicator.DesktopAppName)
		}
		if payload.Indicator.SoundEnable != nil {
			cfg.Indicator.SoundEnable = *payload.Indicator.SoundEnable
		}
		if payload.Indicator.ErrorTimeoutMS != nil {
			cfg.Indicator.ErrorTimeoutMS = *payload.Indicator.ErrorTimeoutMS
		}
	}

	if payload.RPC != nil && payload.RPC.Listen != nil {
		cfg.RPC.Listen = strings.TrimSpace(*payload.RPC.Listen)
	}

	return warnings, nil
}

func applyCommand(key string, raw *string, dst *CommandConfig) error {
	if raw == nil {
		return nil
	}
	argv, err := splitCommand(*raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = CommandConfig{Raw: *raw, Argv: argv}
	return nil
}
