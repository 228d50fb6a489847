package indicator

import (
	"strings"

	"golang.org/x/text/language"
)

type messages struct {
	listening string
	failed    string
}

// Spanish comes first so unmatched locales fall back to it.
var (
	messageLanguages = []language.Tag{language.Spanish, language.English}
	messageMatcher   = language.NewMatcher(messageLanguages)
	messageCatalog   = map[language.Tag]messages{
		language.Spanish: {listening: "Te escucho…", failed: "No pude completar el comando"},
		language.English: {listening: "Listening…", failed: "Could not complete the command"},
	}
)

// messagesFor picks indicator text for a POSIX locale such as es_MX.UTF-8.
func messagesFor(posixLocale string) messages {
	tag, err := language.Parse(bcp47(posixLocale))
	if err != nil {
		tag = language.Und
	}
	_, index, _ := messageMatcher.Match(tag)
	return messageCatalog[messageLanguages[index]]
}

func bcp47(posixLocale string) string {
	locale, _, _ := strings.Cut(strings.TrimSpace(posixLocale), ".")
	locale, _, _ = strings.Cut(locale, "@")
	return strings.ReplaceAll(locale, "_", "-")
}
