// Package doctor runs runtime readiness diagnostics for leya.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/leya/internal/audio"
	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/hypr"
	"github.com/rbright/leya/internal/lexical"
	"github.com/rbright/leya/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))

	checks = append(checks, checkBinary("hyprctl", "desktop actions require hyprctl"))
	checks = append(checks, checkHyprland())

	actions := cfg.Config.Actions
	checks = append(checks,
		checkCommand(cfg.Config.Browser.Launch.Argv, "browser.launch_cmd"),
		checkCommand(cfg.Config.Browser.Open.Argv, "browser.open_cmd"),
		checkCommand(actions.Scroll.Argv, "actions.scroll_cmd"),
		checkCommand(actions.Screenshot.Argv, "actions.screenshot_cmd"),
		checkCommand(actions.ClipboardRead.Argv, "actions.clipboard_read_cmd"),
		checkCommand(actions.Speak.Argv, "actions.speak_cmd"),
	)

	checks = append(checks, checkLanguage(cfg.Config.Language))
	checks = append(checks, checkStore(cfg.Config))
	checks = append(checks, checkAudioInput())
	checks = append(checks, checkAudioOutput(audio.PulseMixer{}))

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkHyprland asks hyprctl for the focused monitor.
func checkHyprland() Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	monitor, err := hypr.QueryFocusedMonitor(ctx)
	if err != nil {
		return Check{Name: "hyprland", Pass: false, Message: err.Error()}
	}
	return Check{Name: "hyprland", Pass: true, Message: fmt.Sprintf("focused monitor %q", monitor)}
}

func checkLanguage(lang string) Check {
	if !lexical.Supported(lang) {
		return Check{Name: "language", Pass: false, Message: fmt.Sprintf("no stemmer for %q", lang)}
	}
	return Check{Name: "language", Pass: true, Message: fmt.Sprintf("stemming with %q", lang)}
}

// checkStore opens the command database and counts saved commands.
func checkStore(cfg config.Config) Check {
	path, err := config.ResolveStorePath(cfg.Store.Path)
	if err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := store.Open(ctx, path)
	if err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}
	defer db.Close()

	records, err := db.List(ctx)
	if err != nil {
		return Check{Name: "store", Pass: false, Message: err.Error()}
	}
	return Check{Name: "store", Pass: true, Message: fmt.Sprintf("%d custom command(s) in %s", len(records), path)}
}

// checkAudioInput reports the microphone the speech front end will use.
func checkAudioInput() Check {
	devices, err := audio.ListDevices(context.Background())
	if err != nil {
		return Check{Name: "audio.input", Pass: false, Message: err.Error()}
	}
	device, err := audio.DefaultInput(devices)
	if err != nil {
		return Check{Name: "audio.input", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("default source %q", device.ID)
	if device.Muted {
		message += " (muted)"
	}
	return Check{Name: "audio.input", Pass: true, Message: message}
}

// checkAudioOutput reads the default sink volume used by volume commands.
func checkAudioOutput(mixer audio.Mixer) Check {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	level, err := mixer.Volume(ctx)
	if err != nil {
		return Check{Name: "audio.output", Pass: false, Message: err.Error()}
	}
	return Check{Name: "audio.output", Pass: true, Message: fmt.Sprintf("default sink at %d%%", level)}
}
