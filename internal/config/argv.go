package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// placeholder matches a {name} slot filled in when a command runs.
var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// commandSlots lists the placeholders each configurable command may use.
var commandSlots = map[string][]string{
	"browser.launch_cmd":         nil,
	"browser.open_cmd":           nil,
	"actions.scroll_cmd":         {"amount"},
	"actions.screenshot_cmd":     {"path"},
	"actions.clipboard_read_cmd": nil,
	"actions.speak_cmd":          {"text"},
}

// splitCommand splits a command line into argv the way a POSIX shell splits
// words, without expansion. Quotes group words (so "" is an empty argument),
// a backslash escapes the next rune, and a line starting with # disables the
// command.
func splitCommand(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	var (
		argv   []string
		word   strings.Builder
		inWord bool
		quote  rune
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && quote != '\'':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("trailing backslash in command %q", line)
			}
			i++
			word.WriteRune(runes[i])
			inWord = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			word.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in command %q", quote, line)
	}
	if inWord {
		argv = append(argv, word.String())
	}
	return argv, nil
}

func mustSplitCommand(line string) []string {
	argv, err := splitCommand(line)
	if err != nil {
		panic(err)
	}
	return argv
}

// Placeholders returns the distinct {name} placeholders in argv, in order of
// first use.
func (c CommandConfig) Placeholders() []string {
	var names []string
	for _, arg := range c.Argv {
		for _, m := range placeholder.FindAllStringSubmatch(arg, -1) {
			if !slices.Contains(names, m[1]) {
				names = append(names, m[1])
			}
		}
	}
	return names
}

// Expand returns argv with every {key} placeholder replaced by vars[key].
// Unknown placeholders are left untouched.
func (c CommandConfig) Expand(vars map[string]string) []string {
	out := make([]string, len(c.Argv))
	for i, arg := range c.Argv {
		out[i] = placeholder.ReplaceAllStringFunc(arg, func(slot string) string {
			if value, ok := vars[slot[1:len(slot)-1]]; ok {
				return value
			}
			return slot
		})
	}
	return out
}

// placeholderWarning reports placeholders key never fills.
func placeholderWarning(key string, cmd CommandConfig) (Warning, bool) {
	allowed := commandSlots[key]
	var unknown []string
	for _, name := range cmd.Placeholders() {
		if !slices.Contains(allowed, name) {
			unknown = append(unknown, "{"+name+"}")
		}
	}
	if len(unknown) == 0 {
		return Warning{}, false
	}
	msg := fmt.Sprintf("%s uses %s, which leya never fills", key, strings.Join(unknown, ", "))
	if len(allowed) > 0 {
		msg += fmt.Sprintf("; known placeholders: {%s}", strings.Join(allowed, "}, {"))
	}
	return Warning{Message: msg}, true
}
