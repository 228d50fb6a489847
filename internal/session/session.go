// Package session runs the single dispatch loop that turns utterances into
// commands, one at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/leya/internal/dispatch"
	"github.com/rbright/leya/internal/fsm"
	"github.com/rbright/leya/internal/ipc"
	"github.com/rbright/leya/internal/resolve"
)

// StateAwaitingReply is reported while a dialogue waits for the next utterance.
const StateAwaitingReply = "awaiting_reply"

const promptWake = "¿Sí?"

// ErrStopped is returned by Submit once the loop has exited.
var ErrStopped = errors.New("session loop is not running")

// Speaker voices prompts.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// SpeakFunc adapts a function to the Speaker interface.
type SpeakFunc func(context.Context, string) error

func (f SpeakFunc) Say(ctx context.Context, text string) error {
	return f(ctx, text)
}

// Indicator is the session-facing subset of indicator behavior.
type Indicator interface {
	ShowListening(context.Context)
	ShowPrompt(context.Context, string)
	ShowError(context.Context, string)
	CueExecuted(context.Context)
	CueSuggest(context.Context)
	CueNoMatch(context.Context)
	Hide(context.Context)
}

// noopIndicator preserves session flow when no indicator is wired.
type noopIndicator struct{}

func (noopIndicator) ShowListening(context.Context)      {}
func (noopIndicator) ShowPrompt(context.Context, string) {}
func (noopIndicator) ShowError(context.Context, string)  {}
func (noopIndicator) CueExecuted(context.Context)        {}
func (noopIndicator) CueSuggest(context.Context)         {}
func (noopIndicator) CueNoMatch(context.Context)         {}
func (noopIndicator) Hide(context.Context)               {}

// Options configures the wake-word gate and dialogue timeouts.
type Options struct {
	// WakeWord opens the command window. Empty means always listening.
	WakeWord string
	// ActiveWindow is how long the window stays open after the last command.
	ActiveWindow time.Duration
	// ListenTimeout bounds how long a dialogue waits for a reply.
	ListenTimeout time.Duration
}

// Result is the outcome of one submitted utterance.
type Result struct {
	TurnID string
	Text   string
	// Ignored is set when the wake-word gate dropped the utterance.
	Ignored bool
	// Awaiting is set when a dialogue consumed this turn and wants another.
	Awaiting bool
	Prompts  []string
	Outcome  dispatch.Outcome
	Err      error
}

type turn struct {
	id    string
	text  string
	reply chan Result
}

// Controller serializes utterances through one dispatcher.
type Controller struct {
	logger     *slog.Logger
	dispatcher *dispatch.Dispatcher
	engine     *resolve.Engine
	speaker    Speaker
	indicator  Indicator
	opts       Options
	now        func() time.Time

	turns chan *turn
	done  chan struct{}

	mu          sync.RWMutex
	activeUntil time.Time
	awaiting    bool
	running     bool
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	dispatcher *dispatch.Dispatcher,
	engine *resolve.Engine,
	speaker Speaker,
	indicator Indicator,
	opts Options,
) *Controller {
	if speaker == nil {
		speaker = SpeakFunc(func(context.Context, string) error { return nil })
	}
	if indicator == nil {
		indicator = noopIndicator{}
	}
	if opts.ActiveWindow <= 0 {
		opts.ActiveWindow = 60 * time.Second
	}
	if opts.ListenTimeout <= 0 {
		opts.ListenTimeout = 10 * time.Second
	}
	opts.WakeWord = strings.ToLower(strings.TrimSpace(opts.WakeWord))

	return &Controller{
		logger:     logger,
		dispatcher: dispatcher,
		engine:     engine,
		speaker:    speaker,
		indicator:  indicator,
		opts:       opts,
		now:        time.Now,
		turns:      make(chan *turn),
		done:       make(chan struct{}),
	}
}

// Run processes turns until ctx is cancelled. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("session loop already running")
	}
	c.running = true
	c.mu.Unlock()
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-c.turns:
			c.process(ctx, t)
		}
	}
}

// Submit hands text to the loop and waits for its result.
func (c *Controller) Submit(ctx context.Context, text string) (Result, error) {
	reply := make(chan Result, 1)
	t := &turn{
		id:    uuid.NewString(),
		text:  text,
		reply: reply,
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-c.done:
		return Result{}, ErrStopped
	case c.turns <- t:
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case result := <-reply:
		return result, nil
	case <-c.done:
		// The loop may have answered just before stopping.
		select {
		case result := <-reply:
			return result, nil
		default:
			return Result{}, ErrStopped
		}
	}
}

// State reports the dialogue state: awaiting_reply, the engine's
// confirmation state, or idle.
func (c *Controller) State() string {
	c.mu.RLock()
	awaiting := c.awaiting
	c.mu.RUnlock()
	if awaiting {
		return StateAwaitingReply
	}
	if c.engine == nil {
		return string(fsm.StateIdle)
	}
	return string(c.engine.State())
}

// Active reports whether the wake-word window is open.
func (c *Controller) Active() bool {
	if c.opts.WakeWord == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now().Before(c.activeUntil)
}

// Handle serves IPC commands.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		message := "listening"
		if !c.Active() {
			message = "waiting for wake word"
		}
		return ipc.Response{OK: true, State: c.State(), Message: message}
	case ipc.CommandSay:
		if strings.TrimSpace(req.Text) == "" {
			return ipc.Response{OK: false, State: c.State(), Error: "say requires text"}
		}
		result, err := c.Submit(ctx, req.Text)
		if err != nil {
			return ipc.Response{OK: false, State: c.State(), Error: err.Error()}
		}
		return c.response(result)
	case ipc.CommandAdd:
		return c.handleAdd(ctx, req)
	case ipc.CommandPhrases:
		if c.engine == nil {
			return ipc.Response{OK: false, Error: "engine unavailable"}
		}
		return ipc.Response{OK: true, State: c.State(), Phrases: c.engine.Filter(req.Text)}
	default:
		return ipc.Response{OK: false, State: c.State(), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) handleAdd(ctx context.Context, req ipc.Request) ipc.Response {
	if c.dispatcher == nil {
		return ipc.Response{OK: false, Error: "dispatcher unavailable"}
	}
	added, err := c.dispatcher.Learn(ctx, req.Phrase, req.URL)
	if err != nil {
		return ipc.Response{OK: false, State: c.State(), Error: err.Error()}
	}
	message := "command added"
	if !added {
		message = "command saved; phrase already registered"
	}
	return ipc.Response{OK: true, State: c.State(), Message: message, Phrase: strings.ToLower(strings.TrimSpace(req.Phrase))}
}

func (c *Controller) response(result Result) ipc.Response {
	resp := ipc.Response{
		OK:      result.Err == nil,
		State:   c.State(),
		Prompts: result.Prompts,
	}
	switch {
	case result.Ignored:
		resp.Message = "ignored: wake word not heard"
	case result.Awaiting:
		resp.Message = "awaiting reply"
	default:
		decision := result.Outcome.Decision
		resp.Decision = string(decision.Kind)
		resp.Phrase = decision.Phrase
		resp.Score = decision.Score
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return resp
}

// process runs one top-level turn through the gate and the dispatcher. The
// dispatcher runs under the loop context because a dialogue outlives the
// turn that started it.
func (c *Controller) process(ctx context.Context, t *turn) {
	logger := c.turnLogger(t.id)
	text, pass, woke := c.gate(t.text)
	if !pass {
		logger.Debug("utterance ignored outside command window", "text", t.text)
		t.reply <- Result{TurnID: t.id, Text: t.text, Ignored: true}
		return
	}

	conv := &conversation{controller: c, loop: ctx, current: t}
	if text == "" {
		if woke {
			c.indicator.ShowListening(ctx)
			conv.Say(ctx, promptWake)
		}
		conv.finish(Result{})
		return
	}

	outcome := c.dispatcher.Handle(ctx, conv, text)
	c.signal(ctx, outcome)
	if outcome.Exit {
		c.closeWindow()
	} else {
		c.renew()
	}

	logger = c.turnLogger(conv.current.id)
	logger.Info("utterance handled",
		"text", text,
		"decision", string(outcome.Decision.Kind),
		"phrase", outcome.Decision.Phrase,
		"score", outcome.Decision.Score,
		"source", string(outcome.Decision.Source),
		"exit", outcome.Exit,
	)
	if outcome.Err != nil {
		logger.Error("command failed", "error", outcome.Err.Error())
	}
	conv.finish(Result{Outcome: outcome, Err: outcome.Err})
}

func (c *Controller) signal(ctx context.Context, outcome dispatch.Outcome) {
	switch {
	case outcome.Err != nil:
		c.indicator.ShowError(ctx, "")
	case outcome.Decision.Kind == resolve.KindExecute:
		c.indicator.CueExecuted(ctx)
		c.indicator.Hide(ctx)
	case outcome.Decision.Kind == resolve.KindAwaitConfirmation:
		c.indicator.CueSuggest(ctx)
		if n := len(outcome.Prompts); n > 0 {
			c.indicator.ShowPrompt(ctx, outcome.Prompts[n-1])
		}
	default:
		c.indicator.CueNoMatch(ctx)
	}
}

func (c *Controller) speak(ctx context.Context, text string) {
	if err := c.speaker.Say(ctx, text); err != nil && c.logger != nil {
		c.logger.Error("speak prompt failed", "error", err.Error())
	}
}

func (c *Controller) setAwaiting(awaiting bool) {
	c.mu.Lock()
	c.awaiting = awaiting
	c.mu.Unlock()
}

func (c *Controller) turnLogger(id string) *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger.With("turn_id", id)
}
