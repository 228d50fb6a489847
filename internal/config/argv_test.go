package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr string
	}{
		{name: "empty", line: "  ", want: nil},
		{name: "disabled", line: "# wl-paste --no-newline", want: nil},
		{name: "words", line: "wl-paste  --no-newline", want: []string{"wl-paste", "--no-newline"}},
		{name: "double quotes", line: `espeak-ng -v "es la"`, want: []string{"espeak-ng", "-v", "es la"}},
		{name: "single quotes keep backslash", line: `piper-say 'C:\voz'`, want: []string{"piper-say", `C:\voz`}},
		{name: "escaped space", line: `grim ~/Capturas\ de\ pantalla/{path}`, want: []string{"grim", "~/Capturas de pantalla/{path}"}},
		{name: "empty argument", line: `notify-send "" hola`, want: []string{"notify-send", "", "hola"}},
		{name: "adjacent quotes join", line: `echo pre"fi"'jo'`, want: []string{"echo", "prefijo"}},
		{name: "unterminated quote", line: `espeak-ng "hola`, wantErr: "unterminated \" quote"},
		{name: "trailing backslash", line: `espeak-ng hola\`, wantErr: "trailing backslash"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := splitCommand(tc.line)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMustSplitCommandPanicsOnInvalidInput(t *testing.T) {
	require.Panics(t, func() {
		_ = mustSplitCommand(`grim "unterminated`)
	})
}

func TestCommandConfigExpand(t *testing.T) {
	cmd := CommandConfig{Argv: mustSplitCommand(`grim -t png "{path}" --scale={scale} {unknown}`)}

	got := cmd.Expand(map[string]string{"path": "/tmp/captura_20250101_120000.png", "scale": "2"})
	require.Equal(t, []string{"grim", "-t", "png", "/tmp/captura_20250101_120000.png", "--scale=2", "{unknown}"}, got)
	require.Equal(t, "{path}", cmd.Argv[3])
}

func TestCommandConfigPlaceholders(t *testing.T) {
	cmd := CommandConfig{Argv: mustSplitCommand(`wlrctl pointer scroll {amount} {amount}{axis} {Upper}`)}
	require.Equal(t, []string{"amount", "axis"}, cmd.Placeholders())
	require.Empty(t, CommandConfig{Argv: []string{"xdg-open"}}.Placeholders())
}

func TestPlaceholderWarning(t *testing.T) {
	_, ok := placeholderWarning("actions.speak_cmd", CommandConfig{Argv: []string{"espeak-ng", "{text}"}})
	require.False(t, ok)

	warning, ok := placeholderWarning("actions.scroll_cmd", CommandConfig{Argv: []string{"wlrctl", "pointer", "scroll", "{amt}"}})
	require.True(t, ok)
	require.Equal(t, "actions.scroll_cmd uses {amt}, which leya never fills; known placeholders: {amount}", warning.Message)

	warning, ok = placeholderWarning("browser.open_cmd", CommandConfig{Argv: []string{"firefox", "{url}"}})
	require.True(t, ok)
	require.Equal(t, "browser.open_cmd uses {url}, which leya never fills", warning.Message)
}
