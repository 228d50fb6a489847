package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/leya.jsonc", "--debug", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/leya.jsonc", parsed.ConfigPath)
	require.True(t, parsed.Debug)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantCmd    Command
		wantHelp   bool
		wantPath   string
		wantArgs   []string
		wantRemote string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "missing remote address",
			args:    []string{"--remote"},
			wantErr: "requires an address",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "say without utterance",
			args:    []string{"say"},
			wantErr: "requires at least 1",
		},
		{
			name:     "say keeps flag-like words",
			args:     []string{"say", "buscar", "--help"},
			wantCmd:  CommandSay,
			wantArgs: []string{"buscar", "--help"},
		},
		{
			name:       "say through remote",
			args:       []string{"--remote", "127.0.0.1:7070", "say", "nueva", "pestaña"},
			wantCmd:    CommandSay,
			wantArgs:   []string{"nueva", "pestaña"},
			wantRemote: "127.0.0.1:7070",
		},
		{
			name:     "add phrase and url",
			args:     []string{"--config", "/tmp/cfg", "add", "mi", "banco", "https://banco.example.com"},
			wantCmd:  CommandAdd,
			wantPath: "/tmp/cfg",
			wantArgs: []string{"mi", "banco", "https://banco.example.com"},
		},
		{
			name:    "add without url",
			args:    []string{"add", "mi", "banco"},
			wantErr: "trailing http(s) URL",
		},
		{
			name:     "phrases without filter",
			args:     []string{"phrases"},
			wantCmd:  CommandPhrases,
			wantArgs: nil,
		},
		{
			name:     "serve",
			args:     []string{"serve"},
			wantCmd:  CommandServe,
			wantHelp: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
			require.Equal(t, tc.wantArgs, parsed.Args)
			require.Equal(t, tc.wantRemote, parsed.Remote)
		})
	}
}

func TestPhraseAndURL(t *testing.T) {
	parsed, err := Parse([]string{"add", "mi", "banco", "https://banco.example.com"})
	require.NoError(t, err)
	phrase, url := parsed.PhraseAndURL()
	require.Equal(t, "mi banco", phrase)
	require.Equal(t, "https://banco.example.com", url)

	phrase, url = Parsed{Args: []string{"solo"}}.PhraseAndURL()
	require.Empty(t, phrase)
	require.Empty(t, url)
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("leya")
	require.Contains(t, text, "serve")
	require.Contains(t, text, "say <utterance…>")
	require.Contains(t, text, "add <phrase…> <url>")
	require.Contains(t, text, "doctor")
	require.Contains(t, text, "--config PATH")
}
