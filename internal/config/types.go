// Package config resolves, parses, validates, and defaults leya configuration.
package config

// Config is the fully materialized runtime configuration used by leya.
type Config struct {
	Language        string
	WakeWord        string
	ActiveWindowMS  int
	ListenTimeoutMS int
	Match           MatchConfig
	Store           StoreConfig
	Sites           []SiteConfig
	Browser         BrowserConfig
	Actions         ActionsConfig
	Indicator       IndicatorConfig
	RPC             RPCConfig
}

// MatchConfig holds the utterance resolution thresholds.
type MatchConfig struct {
	ExecuteThreshold float64
	SuggestThreshold float64
	FuzzyCutoff      float64
	ConfirmToken     string
}

// StoreConfig locates the custom command database. An empty path resolves
// under XDG_DATA_HOME.
type StoreConfig struct {
	Path string
}

// SiteConfig is one "abrir <name>" shortcut.
type SiteConfig struct {
	Name string
	URL  string
}

// BrowserConfig controls how the browser is launched, focused, and fed URLs.
type BrowserConfig struct {
	Launch      CommandConfig
	Open        CommandConfig
	WindowClass string
	SearchURL   string
}

// ActionsConfig holds the external commands behind desktop actions.
type ActionsConfig struct {
	Scroll        CommandConfig
	Screenshot    CommandConfig
	ScreenshotDir string
	ClipboardRead CommandConfig
	Speak         CommandConfig
	VolumeStepPct int
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	Backend        string
	DesktopAppName string
	SoundEnable    bool
	ErrorTimeoutMS int
}

// RPCConfig enables the gRPC surface when Listen is set.
type RPCConfig struct {
	Listen string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
