package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbright/leya/internal/lexical"
)

// ErrNoStore is returned when a command is learned without a command store.
var ErrNoStore = errors.New("command store is not configured")

// Learn persists phrase → url and makes phrase matchable immediately. The
// registry is untouched when persisting fails. It reports whether phrase was
// new to the registry.
func (d *Dispatcher) Learn(ctx context.Context, phrase string, url string) (bool, error) {
	phrase = lexical.Clean(phrase)
	if phrase == "" {
		return false, errors.New("command phrase must not be empty")
	}
	if d.commands == nil {
		return false, ErrNoStore
	}
	if _, err := d.commands.Insert(ctx, phrase, url); err != nil {
		return false, fmt.Errorf("learn %q: %w", phrase, err)
	}
	added := d.engine.Add(phrase)
	if d.logger != nil {
		d.logger.InfoContext(ctx, "custom command added", "phrase", phrase, "url", url, "new_phrase", added)
	}
	return added, nil
}

// createCommand runs the spoken dialogue that saves the active tab under a
// new phrase.
func (d *Dispatcher) createCommand(ctx context.Context, conv *recorder) error {
	conv.Say(ctx, msgCreateAsk)
	answer := lexical.Clean(conv.Listen(ctx, d.opts.ListenTimeout))
	if !affirmative(d.plain(answer)) {
		conv.Say(ctx, msgCreateCancelled)
		return nil
	}

	conv.Say(ctx, msgCreateName)
	name := lexical.Clean(conv.Listen(ctx, d.opts.ListenTimeout))
	if name == "" {
		conv.Say(ctx, msgCreateCancelled)
		return nil
	}

	conv.Say(ctx, msgCreateCopying(name))
	url, err := d.exec.CurrentURL(ctx)
	if err != nil {
		d.log(ctx, "read active tab url failed", err)
		conv.Say(ctx, msgCreateFailed)
		return err
	}

	if _, err := d.Learn(ctx, name, url); err != nil {
		d.log(ctx, "create command failed", err, "phrase", name)
		conv.Say(ctx, msgCreateFailed)
		return err
	}
	conv.Say(ctx, msgCreateDone(name))
	return nil
}
