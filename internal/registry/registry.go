// Package registry holds the live, ordered set of recognizable command phrases.
package registry

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// SearchPhrase is the fixed phrase that introduces a web search.
const SearchPhrase = "buscar"

// Site is one "open site" entry.
type Site struct {
	Name string
	URL  string
}

// OpenPhrase returns the phrase that opens site.
func (s Site) OpenPhrase() string {
	return "abrir " + s.Name
}

// Source lists persisted custom phrases.
type Source interface {
	Phrases(context.Context) ([]string, error)
}

// LoadReport describes how a registry was populated.
type LoadReport struct {
	Builtin  int
	Custom   int
	Degraded bool
	Reason   error
}

// Compose builds the fixed phrase prefix: built-ins, one open phrase per site,
// the search phrase, then the confirmation token.
func Compose(builtins []string, sites []Site, confirmToken string) []string {
	out := make([]string, 0, len(builtins)+len(sites)+2)
	out = append(out, builtins...)
	for _, site := range sites {
		out = append(out, site.OpenPhrase())
	}
	out = append(out, SearchPhrase)
	if confirmToken != "" {
		out = append(out, confirmToken)
	}
	return out
}

// Registry is an append-only, deduplicated phrase list with a version that
// increases on every mutation.
type Registry struct {
	logger *slog.Logger
	base   []string

	mu      sync.RWMutex
	phrases []string
	seen    map[string]struct{}
	version uint64
}

// New returns a registry containing base in order.
func New(base []string) *Registry {
	r := &Registry{base: append([]string(nil), base...)}
	r.reset(nil)
	return r
}

// Load builds a registry from base plus every phrase in source. A failing
// source leaves the base phrases in place and marks the report degraded.
func Load(ctx context.Context, logger *slog.Logger, base []string, source Source) (*Registry, LoadReport) {
	r := New(base)
	r.logger = logger
	report := r.Reload(ctx, source)
	return r, report
}

// Reload rebuilds the registry from its base phrases and source.
func (r *Registry) Reload(ctx context.Context, source Source) LoadReport {
	var (
		custom []string
		err    error
	)
	if source != nil {
		custom, err = source.Phrases(ctx)
	}

	r.mu.Lock()
	if err != nil {
		r.reset(nil)
	} else {
		r.reset(custom)
	}
	report := LoadReport{Builtin: len(r.base), Custom: len(r.phrases) - len(r.base)}
	if report.Builtin > len(r.phrases) {
		report.Builtin = len(r.phrases)
		report.Custom = 0
	}
	r.mu.Unlock()

	if err != nil {
		report.Degraded = true
		report.Reason = err
		if r.logger != nil {
			r.logger.Warn("custom commands unavailable; using built-in phrases only", "error", err.Error())
		}
	}
	return report
}

// reset must be called with mu held (or before the registry is shared).
func (r *Registry) reset(custom []string) {
	r.phrases = make([]string, 0, len(r.base)+len(custom))
	r.seen = make(map[string]struct{}, len(r.base)+len(custom))
	for _, phrase := range r.base {
		r.appendLocked(phrase)
	}
	for _, phrase := range custom {
		r.appendLocked(phrase)
	}
	r.version++
}

func (r *Registry) appendLocked(phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return false
	}
	if _, ok := r.seen[phrase]; ok {
		return false
	}
	r.seen[phrase] = struct{}{}
	r.phrases = append(r.phrases, phrase)
	return true
}

// Add appends phrase. It returns false, leaving the registry untouched, for
// empty or already-known phrases.
func (r *Registry) Add(phrase string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.appendLocked(phrase) {
		return false
	}
	r.version++
	return true
}

// All returns a copy of every phrase in registry order.
func (r *Registry) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.phrases...)
}

// Snapshot returns the phrases together with the version they belong to.
func (r *Registry) Snapshot() ([]string, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.phrases...), r.version
}

// Contains reports whether phrase is registered.
func (r *Registry) Contains(phrase string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[strings.TrimSpace(phrase)]
	return ok
}

// Version returns the mutation counter.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Len returns the number of phrases.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.phrases)
}

// Filter returns phrases matching pattern ranked best first. An empty pattern
// returns every phrase in registry order.
func (r *Registry) Filter(pattern string) []string {
	phrases := r.All()
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return phrases
	}
	matches := fuzzy.Find(pattern, phrases)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Str)
	}
	return out
}
