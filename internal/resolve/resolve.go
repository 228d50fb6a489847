// Package resolve turns an utterance into a decision: execute a phrase, ask
// the user to confirm one, or report no match.
package resolve

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rbright/leya/internal/fsm"
	"github.com/rbright/leya/internal/fuzzy"
	"github.com/rbright/leya/internal/lexical"
	"github.com/rbright/leya/internal/registry"
)

type Kind string

const (
	KindExecute           Kind = "execute"
	KindAwaitConfirmation Kind = "await_confirmation"
	KindNoMatch           Kind = "no_match"
)

type Source string

const (
	SourceIndex        Source = "index"
	SourceFuzzy        Source = "fuzzy"
	SourceConfirmation Source = "confirmation"
	SourceDirect       Source = "direct"
)

// Decision is the outcome of resolving one utterance.
type Decision struct {
	Kind   Kind    `json:"kind"`
	Phrase string  `json:"phrase,omitempty"`
	Score  float64 `json:"score"`
	Source Source  `json:"source,omitempty"`
}

func (d Decision) String() string {
	if d.Kind == KindNoMatch {
		return string(d.Kind)
	}
	return fmt.Sprintf("%s(%q, %.2f, %s)", d.Kind, d.Phrase, d.Score, d.Source)
}

// Scorer is a trainable nearest-phrase model.
type Scorer interface {
	Train(phrases []string, version uint64)
	Query(utterance string) (string, float64)
	Version() uint64
	Trained() bool
}

// Options holds the decision thresholds.
type Options struct {
	ExecuteThreshold float64
	SuggestThreshold float64
	FuzzyCutoff      float64
	ConfirmToken     string
}

// DefaultOptions returns the stock thresholds and confirmation token.
func DefaultOptions() Options {
	return Options{
		ExecuteThreshold: 0.7,
		SuggestThreshold: 0.5,
		FuzzyCutoff:      fuzzy.DefaultCutoff,
		ConfirmToken:     "confirmo",
	}
}

type suggestion struct {
	phrase string
	score  float64
	source Source
}

// Engine owns the pending suggestion and keeps the scorer trained against the
// registry. All methods are safe for concurrent use; resolutions are
// serialized.
type Engine struct {
	logger   *slog.Logger
	registry *registry.Registry
	scorer   Scorer
	opts     Options

	mu      sync.Mutex
	state   fsm.State
	pending suggestion
}

// New returns an engine in the idle state.
func New(reg *registry.Registry, scorer Scorer, opts Options, logger *slog.Logger) *Engine {
	opts.ConfirmToken = lexical.Clean(opts.ConfirmToken)
	return &Engine{
		logger:   logger,
		registry: reg,
		scorer:   scorer,
		opts:     opts,
		state:    fsm.StateIdle,
	}
}

// Resolve classifies utterance. A pending suggestion is executed when the
// utterance carries the confirmation token and discarded otherwise.
func (e *Engine) Resolve(utterance string) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	cleaned := lexical.Clean(utterance)

	if e.state == fsm.StateAwaitingConfirmation && e.confirms(cleaned) {
		confirmed := e.pending
		e.transition(fsm.EventConfirm)
		decision := Decision{Kind: KindExecute, Phrase: confirmed.phrase, Score: confirmed.score, Source: SourceConfirmation}
		e.log(cleaned, decision)
		return decision
	}
	e.transition(fsm.EventDiscard)

	e.ensureTrainedLocked()

	best, score := e.scorer.Query(cleaned)
	var decision Decision
	switch {
	case best != "" && score > e.opts.ExecuteThreshold:
		decision = Decision{Kind: KindExecute, Phrase: best, Score: score, Source: SourceIndex}
	case best != "" && score > e.opts.SuggestThreshold:
		decision = Decision{Kind: KindAwaitConfirmation, Phrase: best, Score: score, Source: SourceIndex}
	default:
		if hit, fallback, ok := fuzzy.Match(cleaned, e.registry.All(), e.opts.FuzzyCutoff); ok {
			decision = Decision{Kind: KindAwaitConfirmation, Phrase: hit, Score: fallback, Source: SourceFuzzy}
		} else {
			decision = Decision{Kind: KindNoMatch, Score: score}
		}
	}

	if decision.Kind == KindAwaitConfirmation {
		e.pending = suggestion{phrase: decision.Phrase, score: decision.Score, source: decision.Source}
		e.transition(fsm.EventSuggest)
	}
	e.log(cleaned, decision)
	return decision
}

// Add registers phrase and retrains before returning so the next Resolve can
// match it. It reports false when the phrase was already known.
func (e *Engine) Add(phrase string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	added := e.registry.Add(phrase)
	e.ensureTrainedLocked()
	return added
}

// Retrain rebuilds the scorer if it is behind the registry.
func (e *Engine) Retrain() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureTrainedLocked()
}

// Pending returns the suggestion awaiting confirmation, if any.
func (e *Engine) Pending() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != fsm.StateAwaitingConfirmation {
		return "", false
	}
	return e.pending.phrase, true
}

// Discard drops any pending suggestion.
func (e *Engine) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transition(fsm.EventDiscard)
}

// State returns the confirmation state.
func (e *Engine) State() fsm.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Query scores utterance against the registry without touching the pending
// suggestion.
func (e *Engine) Query(utterance string) (string, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureTrainedLocked()
	return e.scorer.Query(lexical.Clean(utterance))
}

// Phrases returns the registry contents.
func (e *Engine) Phrases() []string {
	return e.registry.All()
}

// Filter returns registry phrases matching pattern, best first.
func (e *Engine) Filter(pattern string) []string {
	return e.registry.Filter(pattern)
}

// Confirms reports whether utterance carries the confirmation token as a
// whole word.
func (e *Engine) Confirms(utterance string) bool {
	return e.confirms(utterance)
}

func (e *Engine) confirms(utterance string) bool {
	return lexical.ContainsPhrase(utterance, e.opts.ConfirmToken)
}

// ConfirmToken returns the normalized confirmation token.
func (e *Engine) ConfirmToken() string {
	return e.opts.ConfirmToken
}

func (e *Engine) ensureTrainedLocked() {
	phrases, version := e.registry.Snapshot()
	if e.scorer.Trained() && e.scorer.Version() == version {
		return
	}
	e.scorer.Train(phrases, version)
	if e.logger != nil {
		e.logger.Debug("similarity index trained", "phrases", len(phrases), "version", version)
	}
}

func (e *Engine) transition(event fsm.Event) {
	next, err := fsm.Transition(e.state, event)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("confirmation state transition failed", "error", err.Error())
		}
		return
	}
	if next == fsm.StateIdle {
		e.pending = suggestion{}
	}
	e.state = next
}

func (e *Engine) log(utterance string, d Decision) {
	if e.logger == nil {
		return
	}
	e.logger.Debug("utterance resolved",
		"utterance", utterance,
		"decision", string(d.Kind),
		"phrase", d.Phrase,
		"score", d.Score,
		"source", string(d.Source),
	)
}
