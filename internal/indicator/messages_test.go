package indicator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessagesFor(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{locale: "es_ES.UTF-8", want: "Te escucho…"},
		{locale: "es_MX.UTF-8@euro", want: "Te escucho…"},
		{locale: "en_US.UTF-8", want: "Listening…"},
		{locale: "en_GB", want: "Listening…"},
		{locale: "fr_FR.UTF-8", want: "Te escucho…"},
		{locale: "C", want: "Te escucho…"},
		{locale: "", want: "Te escucho…"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, messagesFor(tc.locale).listening, tc.locale)
	}
	require.NotEmpty(t, messagesFor("es_ES").failed)
}
