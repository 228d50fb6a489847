// Package dispatch turns utterances into desktop actions. Fixed phrases are
// matched directly; everything else goes through the resolve engine.
package dispatch

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/leya/internal/lexical"
	"github.com/rbright/leya/internal/registry"
	"github.com/rbright/leya/internal/resolve"
	"github.com/rbright/leya/internal/store"
)

// Conversation is the speech channel of the current turn.
type Conversation interface {
	Say(ctx context.Context, text string)
	Listen(ctx context.Context, timeout time.Duration) string
}

// Outcome summarizes one handled utterance.
type Outcome struct {
	Decision resolve.Decision
	Prompts  []string
	// Exit is set when the user ended the command window.
	Exit bool
	Err  error
}

// Options configures a Dispatcher.
type Options struct {
	Sites         []registry.Site
	VolumeStep    int
	ListenTimeout time.Duration
}

// Dispatcher owns the direct-match chain and the create-command dialogue.
type Dispatcher struct {
	engine     *resolve.Engine
	normalizer *lexical.Normalizer
	commands   store.Commands
	exec       Executor
	logger     *slog.Logger
	opts       Options

	direct []Builtin
}

var (
	exitPhrases  = []string{"adiós", "apagar sistema", "cerrar sistema"}
	volumeTarget = regexp.MustCompile(`(?:sube|aumenta|baja|disminuye).*volumen a (\d+)`)
)

const (
	selectPrefix = "selecciona "
)

// New builds a Dispatcher.
func New(engine *resolve.Engine, normalizer *lexical.Normalizer, commands store.Commands, exec Executor, opts Options, logger *slog.Logger) *Dispatcher {
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = 5
	}
	if opts.ListenTimeout <= 0 {
		opts.ListenTimeout = 10 * time.Second
	}
	direct := append(Builtins(), extras(opts.VolumeStep)...)
	return &Dispatcher{
		engine:     engine,
		normalizer: normalizer,
		commands:   commands,
		exec:       exec,
		logger:     logger,
		opts:       opts,
		direct:     direct,
	}
}

// Handle processes one utterance.
func (d *Dispatcher) Handle(ctx context.Context, conv Conversation, utterance string) Outcome {
	rec := &recorder{conv: conv}
	out := d.handle(ctx, rec, lexical.Clean(utterance))
	out.Prompts = rec.prompts
	return out
}

func (d *Dispatcher) handle(ctx context.Context, conv *recorder, text string) Outcome {
	if text == "" {
		return Outcome{Decision: resolve.Decision{Kind: resolve.KindNoMatch}}
	}

	if pending, ok := d.engine.Pending(); ok && d.engine.Confirms(text) {
		decision := d.engine.Resolve(text)
		conv.Say(ctx, msgExecuting(pending))
		out, handled := d.directChain(ctx, conv, decision.Phrase)
		if !handled {
			conv.Say(ctx, msgNotUnderstood)
		}
		out.Decision = decision
		return out
	}
	d.engine.Discard()

	if out, handled := d.directChain(ctx, conv, text); handled {
		return out
	}

	decision := d.engine.Resolve(text)
	switch decision.Kind {
	case resolve.KindExecute:
		out, handled := d.directChain(ctx, conv, decision.Phrase)
		if !handled {
			conv.Say(ctx, msgNotUnderstood)
		}
		out.Decision = decision
		return out
	case resolve.KindAwaitConfirmation:
		conv.Say(ctx, msgSuggest(decision.Phrase, d.engine.ConfirmToken()))
	default:
		conv.Say(ctx, msgNotUnderstood)
	}
	return Outcome{Decision: decision}
}

// directChain runs the fixed-phrase chain against text.
func (d *Dispatcher) directChain(ctx context.Context, conv *recorder, text string) (Outcome, bool) {
	plain := d.plain(text)
	hit := func(phrase string) Outcome {
		return Outcome{Decision: resolve.Decision{Kind: resolve.KindExecute, Phrase: phrase, Score: 1, Source: resolve.SourceDirect}}
	}

	for _, phrase := range exitPhrases {
		if lexical.ContainsPhrase(plain, phrase) {
			conv.Say(ctx, msgGoodbye)
			out := hit(phrase)
			out.Exit = true
			return out, true
		}
	}

	for _, site := range d.opts.Sites {
		if lexical.ContainsPhrase(plain, site.OpenPhrase()) {
			out := hit(site.OpenPhrase())
			out.Err = d.run(ctx, conv, Action{Kind: ActionOpenURL, URL: site.URL}, msgOpening(site.Name))
			return out, true
		}
	}

	if m := volumeTarget.FindStringSubmatch(plain); m != nil {
		level, err := strconv.Atoi(m[1])
		if err == nil {
			out := hit(m[0])
			out.Err = d.run(ctx, conv, Action{Kind: ActionSetVolume, Level: level}, msgVolumeSet(min(level, 100)))
			return out, true
		}
	}

	if b, ok := d.longestDirect(plain); ok {
		out := hit(b.Phrase)
		if b.Action.Kind == ActionCreateCommand {
			out.Err = d.createCommand(ctx, conv)
		} else {
			out.Err = d.run(ctx, conv, b.Action, b.Message)
		}
		return out, true
	}

	if token := d.engine.ConfirmToken(); plain == token {
		conv.Say(ctx, msgNothingPending)
		return hit(token), true
	}

	if strings.HasPrefix(text, selectPrefix) {
		title := strings.TrimSpace(strings.TrimPrefix(text, selectPrefix))
		if title != "" {
			out := hit(strings.TrimSpace(selectPrefix))
			out.Err = d.run(ctx, conv, Action{Kind: ActionFocusWindow, Title: title}, msgSelecting(title))
			return out, true
		}
	}

	if lexical.ContainsPhrase(plain, registry.SearchPhrase) {
		out := hit(registry.SearchPhrase)
		out.Err = d.search(ctx, conv, text)
		return out, true
	}

	if d.commands != nil {
		url, ok, err := d.commands.Lookup(ctx, text)
		if err != nil {
			d.log(ctx, "custom command lookup failed", err)
		} else if ok {
			out := hit(text)
			out.Err = d.run(ctx, conv, Action{Kind: ActionOpenURL, URL: url}, msgOpening(text))
			return out, true
		}
	}

	return Outcome{}, false
}

// longestDirect returns the longest fixed phrase contained in plain, earliest
// first on ties.
func (d *Dispatcher) longestDirect(plain string) (Builtin, bool) {
	var (
		best  Builtin
		found bool
	)
	for _, b := range d.direct {
		if !lexical.ContainsPhrase(plain, b.Phrase) {
			continue
		}
		if !found || len(b.Phrase) > len(best.Phrase) {
			best, found = b, true
		}
	}
	return best, found
}

func (d *Dispatcher) search(ctx context.Context, conv *recorder, text string) error {
	query := ""
	if i := strings.LastIndex(text, registry.SearchPhrase); i >= 0 {
		query = strings.TrimSpace(text[i+len(registry.SearchPhrase):])
	}
	if query == "" {
		conv.Say(ctx, msgAskSearch)
		query = lexical.Clean(conv.Listen(ctx, d.opts.ListenTimeout))
		if query == "" {
			conv.Say(ctx, msgSearchCancelled)
			return nil
		}
	}
	return d.run(ctx, conv, Action{Kind: ActionSearch, Query: query}, msgSearching(query))
}

// run executes action and speaks message (or the executor's own message).
func (d *Dispatcher) run(ctx context.Context, conv *recorder, action Action, message string) error {
	spoken, err := d.exec.Execute(ctx, action)
	if err != nil {
		d.log(ctx, "action failed", err, "action", string(action.Kind))
		conv.Say(ctx, failureMessage(action.Kind))
		return err
	}
	if spoken != "" {
		message = spoken
	}
	if message != "" {
		conv.Say(ctx, message)
	}
	return nil
}

// plain joins the word tokens of text, dropping punctuation.
func (d *Dispatcher) plain(text string) string {
	if d.normalizer == nil {
		return text
	}
	return strings.Join(d.normalizer.Tokens(text), " ")
}

func (d *Dispatcher) log(ctx context.Context, message string, err error, attrs ...any) {
	if d.logger == nil {
		return
	}
	d.logger.ErrorContext(ctx, message, append([]any{"error", err.Error()}, attrs...)...)
}

type recorder struct {
	conv    Conversation
	prompts []string
}

func (r *recorder) Say(ctx context.Context, text string) {
	r.prompts = append(r.prompts, text)
	if r.conv != nil {
		r.conv.Say(ctx, text)
	}
}

func (r *recorder) Listen(ctx context.Context, timeout time.Duration) string {
	if r.conv == nil {
		return ""
	}
	return r.conv.Listen(ctx, timeout)
}
