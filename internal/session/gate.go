package session

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// gate applies the wake word. It returns the text to dispatch, whether the
// utterance passes, and whether it carried the wake word. Text after the
// wake word is dispatched in the same turn.
func (c *Controller) gate(text string) (string, bool, bool) {
	text = strings.TrimSpace(text)
	wake := c.opts.WakeWord
	if wake == "" {
		return text, true, false
	}

	lowered := strings.ToLower(text)
	if i := indexWord(lowered, wake); i >= 0 {
		c.renew()
		rest := strings.TrimLeftFunc(lowered[i+len(wake):], func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
		return strings.TrimSpace(rest), true, true
	}
	if c.Active() {
		return text, true, false
	}
	return "", false, false
}

// renew extends the command window from now.
func (c *Controller) renew() {
	if c.opts.WakeWord == "" {
		return
	}
	c.mu.Lock()
	c.activeUntil = c.now().Add(c.opts.ActiveWindow)
	c.mu.Unlock()
}

// closeWindow ends the command window until the wake word is heard again.
func (c *Controller) closeWindow() {
	c.mu.Lock()
	c.activeUntil = c.now()
	c.mu.Unlock()
}

// indexWord returns the byte offset of word in text on word boundaries, or -1.
func indexWord(text, word string) int {
	from := 0
	for from <= len(text) {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return start
		}
		from = start + 1
	}
	return -1
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
