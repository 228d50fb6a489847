// Package cli parses leya's command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandListen  Command = "listen"
	CommandSay     Command = "say"
	CommandAdd     Command = "add"
	CommandPhrases Command = "phrases"
	CommandExport  Command = "export"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// argSpec bounds the positional arguments of a command; max < 0 is unbounded.
type argSpec struct {
	min int
	max int
}

var validCommands = map[Command]argSpec{
	CommandServe:   {},
	CommandListen:  {},
	CommandSay:     {min: 1, max: -1},
	CommandAdd:     {min: 2, max: -1},
	CommandPhrases: {max: -1},
	CommandExport:  {},
	CommandStatus:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	Args       []string
	ConfigPath string
	// Remote sends say/add/phrases/status to a gRPC endpoint instead of the
	// local socket.
	Remote   string
	Debug    bool
	ShowHelp bool
}

// Text joins the positional arguments with single spaces.
func (p Parsed) Text() string {
	return strings.Join(p.Args, " ")
}

// PhraseAndURL splits add arguments into the phrase words and the trailing URL.
func (p Parsed) PhraseAndURL() (string, string) {
	if len(p.Args) < 2 {
		return "", ""
	}
	last := len(p.Args) - 1
	return strings.Join(p.Args[:last], " "), p.Args[last]
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	commandSet := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if commandSet {
			parsed.Args = append(parsed.Args, arg)
			continue
		}

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--debug":
			parsed.Debug = true
		case "--config", "--remote":
			i++
			if i >= len(args) {
				if arg == "--config" {
					return Parsed{}, errors.New("--config requires a path")
				}
				return Parsed{}, errors.New("--remote requires an address")
			}
			if arg == "--config" {
				parsed.ConfigPath = args[i]
			} else {
				parsed.Remote = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			commandSet = true
		}
	}

	bounds := validCommands[parsed.Command]
	switch {
	case len(parsed.Args) < bounds.min:
		return Parsed{}, fmt.Errorf("command %q requires at least %d argument(s)", parsed.Command, bounds.min)
	case bounds.max >= 0 && len(parsed.Args) > bounds.max:
		return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
	}
	if parsed.Command == CommandAdd {
		if _, url := parsed.PhraseAndURL(); !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return Parsed{}, fmt.Errorf("add expects a trailing http(s) URL, got %q", url)
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--remote ADDR] [--debug] <command> [args]

Commands:
  serve                Run the assistant and accept utterances over IPC
  listen               Run the assistant reading utterances from stdin
  say <utterance…>     Send one utterance to the running assistant
  add <phrase…> <url>  Save a custom command that opens url
  phrases [filter]     List recognizable phrases, fuzzy-filtered
  export               Print saved custom commands as YAML
  status               Print current state
  devices              List available input devices
  doctor               Run configuration and environment checks
  version              Print version information
  help                 Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/leya/config.jsonc)
  --remote ADDR   Talk to a leya gRPC endpoint instead of the local socket
  --debug         Log at debug level
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
