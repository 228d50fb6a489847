package config

// DefaultSites are the stock "abrir <site>" shortcuts.
var DefaultSites = []SiteConfig{
	{Name: "correo", URL: "https://mail.google.com"},
	{Name: "youtube", URL: "https://www.youtube.com"},
	{Name: "facebook", URL: "https://www.facebook.com"},
	{Name: "whatsapp", URL: "https://web.whatsapp.com"},
	{Name: "drive", URL: "https://drive.google.com"},
	{Name: "maps", URL: "https://maps.google.com"},
	{Name: "noticias", URL: "https://news.google.com"},
	{Name: "traductor", URL: "https://translate.google.com"},
}

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	launch := "chromium --start-maximized"
	open := "xdg-open"
	scroll := "wlrctl pointer scroll {amount} 0"
	screenshot := "grim {path}"
	clipboardRead := "wl-paste --no-newline"
	speak := "espeak-ng -v es"

	return Config{
		Language:        "spanish",
		WakeWord:        "",
		ActiveWindowMS:  60_000,
		ListenTimeoutMS: 10_000,
		Match: MatchConfig{
			ExecuteThreshold: 0.7,
			SuggestThreshold: 0.5,
			FuzzyCutoff:      0.6,
			ConfirmToken:     "confirmo",
		},
		Sites: append([]SiteConfig(nil), DefaultSites...),
		Browser: BrowserConfig{
			Launch:      CommandConfig{Raw: launch, Argv: mustSplitCommand(launch)},
			Open:        CommandConfig{Raw: open, Argv: mustSplitCommand(open)},
			WindowClass: "chromium",
			SearchURL:   "https://www.google.com/search?q=",
		},
		Actions: ActionsConfig{
			Scroll:        CommandConfig{Raw: scroll, Argv: mustSplitCommand(scroll)},
			Screenshot:    CommandConfig{Raw: screenshot, Argv: mustSplitCommand(screenshot)},
			ClipboardRead: CommandConfig{Raw: clipboardRead, Argv: mustSplitCommand(clipboardRead)},
			Speak:         CommandConfig{Raw: speak, Argv: mustSplitCommand(speak)},
			VolumeStepPct: 5,
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "hypr",
			DesktopAppName: "leya",
			SoundEnable:    true,
			ErrorTimeoutMS: 1600,
		},
	}
}
