// Package actions performs dispatched commands on the Hyprland desktop.
package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/leya/internal/audio"
	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/dispatch"
	"github.com/rbright/leya/internal/hypr"
)

const (
	commandTimeout = 2 * time.Second
	// clipboardSettle is how long the browser gets to publish a copied URL.
	clipboardSettle = 150 * time.Millisecond
)

// Runner executes dispatch actions using hyprctl, Pulse, and the configured
// external commands.
type Runner struct {
	config config.Config
	mixer  audio.Mixer
	logger *slog.Logger

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

var _ dispatch.Executor = (*Runner)(nil)

// NewRunner constructs a Runner. A nil mixer disables volume actions.
func NewRunner(cfg config.Config, mixer audio.Mixer, logger *slog.Logger) *Runner {
	return &Runner{
		config: cfg,
		mixer:  mixer,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

// Execute performs action. The returned message, when non-empty, replaces the
// command's default acknowledgement.
func (r *Runner) Execute(ctx context.Context, action dispatch.Action) (string, error) {
	switch action.Kind {
	case dispatch.ActionLaunchBrowser:
		return r.launchBrowser(ctx)
	case dispatch.ActionShortcut:
		return "", r.browserShortcut(ctx, action.Keys...)
	case dispatch.ActionVideoFullscreen:
		return "", r.browserShortcut(ctx, "f")
	case dispatch.ActionOpenURL:
		return "", r.openURL(ctx, action.URL)
	case dispatch.ActionSearch:
		return "", r.openURL(ctx, r.SearchURL(action.Query))
	case dispatch.ActionScroll:
		return "", r.scroll(ctx, action.Amount)
	case dispatch.ActionScreenshot:
		return r.screenshot(ctx)
	case dispatch.ActionSetVolume:
		return r.setVolume(ctx, action.Level)
	case dispatch.ActionChangeVolume:
		return r.changeVolume(ctx, action.Delta)
	case dispatch.ActionFocusWindow:
		return r.focusWindow(ctx, action.Title)
	default:
		return "", fmt.Errorf("unsupported action %q", action.Kind)
	}
}

// CurrentURL copies the address bar of the focused browser window and reads
// it back from the clipboard.
func (r *Runner) CurrentURL(ctx context.Context) (string, error) {
	if err := r.browserShortcut(ctx, "ctrl", "l"); err != nil {
		return "", err
	}
	if err := r.browserShortcut(ctx, "ctrl", "c"); err != nil {
		return "", err
	}
	if err := r.sleep(ctx, clipboardSettle); err != nil {
		return "", err
	}

	readCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	out, err := runCommandOutput(readCtx, r.config.Actions.ClipboardRead.Argv)
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	current := strings.TrimSpace(out)
	if current == "" {
		return "", errors.New("clipboard is empty")
	}
	return current, nil
}

// SearchURL returns the search page URL for query.
func (r *Runner) SearchURL(query string) string {
	return r.config.Browser.SearchURL + url.QueryEscape(strings.TrimSpace(query))
}

func (r *Runner) launchBrowser(ctx context.Context) (string, error) {
	if window, ok := r.browserWindow(ctx); ok {
		if err := hypr.Focus(ctx, hypr.AddressSelector(window.Address)); err != nil {
			return "", err
		}
		return "Navegador ya abierto, enfocado", nil
	}
	if err := startDetached(r.config.Browser.Launch.Argv); err != nil {
		return "", fmt.Errorf("launch browser: %w", err)
	}
	return "", nil
}

func (r *Runner) openURL(ctx context.Context, target string) error {
	if strings.TrimSpace(target) == "" {
		return errors.New("url must not be empty")
	}
	argv := append(append([]string(nil), r.config.Browser.Open.Argv...), target)
	if err := startDetached(argv); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	return nil
}

func (r *Runner) scroll(ctx context.Context, amount int) error {
	argv := r.config.Actions.Scroll.Expand(map[string]string{"amount": strconv.Itoa(amount)})
	runCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	if err := runCommandWithInput(runCtx, argv, ""); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

func (r *Runner) screenshot(ctx context.Context) (string, error) {
	dir, err := config.ResolveScreenshotDir(r.config.Actions.ScreenshotDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "captura_"+r.now().Format("20060102_150405")+".png")

	argv := r.config.Actions.Screenshot.Expand(map[string]string{"path": path})
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := runCommandWithInput(runCtx, argv, ""); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if r.logger != nil {
		r.logger.Info("screenshot saved", "path", path)
	}
	return "", nil
}

func (r *Runner) setVolume(ctx context.Context, level int) (string, error) {
	if r.mixer == nil {
		return "", errors.New("volume control unavailable")
	}
	applied, err := r.mixer.SetVolume(ctx, level)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Volumen al %d por ciento", applied), nil
}

func (r *Runner) changeVolume(ctx context.Context, delta int) (string, error) {
	if r.mixer == nil {
		return "", errors.New("volume control unavailable")
	}
	if _, err := r.mixer.ChangeVolume(ctx, delta); err != nil {
		return "", err
	}
	return "", nil
}

func (r *Runner) focusWindow(ctx context.Context, title string) (string, error) {
	windows, err := hypr.QueryClients(ctx)
	if err != nil {
		return "", err
	}
	window, ok := hypr.FindByTitle(windows, title)
	if !ok {
		return fmt.Sprintf("No encontré ninguna ventana con %s", title), nil
	}
	if err := hypr.Focus(ctx, hypr.AddressSelector(window.Address)); err != nil {
		return "", err
	}
	return "", nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
