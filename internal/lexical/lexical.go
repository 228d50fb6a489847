// Package lexical turns free-form utterances into canonical stemmed terms.
package lexical

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultLanguage is the stemmer language used when none is configured.
const DefaultLanguage = "spanish"

var stemmerTags = map[string]language.Tag{
	"english":   language.English,
	"spanish":   language.Spanish,
	"french":    language.French,
	"russian":   language.Russian,
	"swedish":   language.Swedish,
	"norwegian": language.Norwegian,
	"hungarian": language.Hungarian,
}

// Supported reports whether the stemmer has rules for language.
func Supported(lang string) bool {
	_, ok := stemmerTags[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

// Normalizer lower-cases, tokenizes, and stems text for one language.
type Normalizer struct {
	language string
	tag      language.Tag
}

// New builds a normalizer for a Snowball language name such as "spanish".
func New(lang string) (*Normalizer, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, ok := stemmerTags[lang]
	if !ok {
		return nil, fmt.Errorf("unsupported stemmer language %q", lang)
	}
	return &Normalizer{language: lang, tag: tag}, nil
}

// Language returns the configured stemmer language.
func (n *Normalizer) Language() string {
	return n.language
}

// Normalize returns the stemmed term sequence of text. Indexing and querying
// must both go through this method so terms share one space.
func (n *Normalizer) Normalize(text string) []string {
	tokens := n.Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		terms = append(terms, n.stem(token))
	}
	return terms
}

// Tokens returns the lower-cased word runs of text without stemming.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}
	// Casers carry state; build one per call.
	lowered := cases.Lower(n.tag).String(norm.NFC.String(text))
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !isWordRune(r)
	})
}

func (n *Normalizer) stem(token string) string {
	stemmed, err := snowball.Stem(token, n.language, true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// Clean lower-cases text and collapses whitespace runs, keeping punctuation.
func Clean(text string) string {
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ContainsPhrase reports whether the words of phrase occur contiguously in
// text. Case and punctuation are ignored.
func ContainsPhrase(text, phrase string) bool {
	want := words(phrase)
	if want == "" {
		return false
	}
	return strings.Contains(" "+words(text)+" ", " "+want+" ")
}

func words(text string) string {
	return strings.Join(strings.FieldsFunc(Clean(text), func(r rune) bool {
		return !isWordRune(r)
	}), " ")
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
