package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/rbright/leya/internal/hypr"
)

// browserShortcut focuses the browser and sends keys to it. Without a
// running browser the keys go to the active window.
func (r *Runner) browserShortcut(ctx context.Context, keys ...string) error {
	address := ""
	if window, ok := r.browserWindow(ctx); ok {
		if err := hypr.Focus(ctx, hypr.AddressSelector(window.Address)); err != nil {
			return err
		}
		address = window.Address
	} else {
		window, err := activeWindowWithRetry(ctx, 3, 10*time.Millisecond)
		if err != nil {
			return err
		}
		address = window.Address
	}

	payload, err := hypr.Shortcut(keys, address)
	if err != nil {
		return err
	}
	if err := hypr.SendShortcut(ctx, payload); err != nil {
		return fmt.Errorf("send %s: %w", payload, err)
	}
	return nil
}

// browserWindow returns the first client window of the configured browser class.
func (r *Runner) browserWindow(ctx context.Context) (hypr.Window, bool) {
	if r.config.Browser.WindowClass == "" {
		return hypr.Window{}, false
	}
	windows, err := hypr.QueryClients(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.Debug("list hyprland clients failed", "error", err.Error())
		}
		return hypr.Window{}, false
	}
	return hypr.FindByClass(windows, r.config.Browser.WindowClass)
}

func activeWindowWithRetry(ctx context.Context, attempts int, delay time.Duration) (hypr.Window, error) {
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		window, err := hypr.QueryActiveWindow(ctx)
		if err == nil {
			return window, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return hypr.Window{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("active window unavailable")
	}
	return hypr.Window{}, fmt.Errorf("resolve active window: %w", lastErr)
}
