// Package app wires configuration, logging, and the assistant runtime behind
// the leya CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rbright/leya/internal/audio"
	"github.com/rbright/leya/internal/cli"
	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/doctor"
	"github.com/rbright/leya/internal/ipc"
	"github.com/rbright/leya/internal/logging"
	"github.com/rbright/leya/internal/rpc"
	"github.com/rbright/leya/internal/store"
	"github.com/rbright/leya/internal/version"
)

const (
	forwardTimeout = 220 * time.Millisecond
	// sayTimeout covers a full utterance roundtrip including spoken replies.
	sayTimeout    = 30 * time.Second
	remoteTimeout = 3 * time.Second
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("leya"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("leya"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New(logging.Options{Debug: parsed.Debug, Command: string(parsed.Command)})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx, parsed)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	case cli.CommandListen:
		return r.commandListen(ctx, cfgLoaded.Config, logger)
	case cli.CommandSay:
		return r.forwardOrLocal(ctx, parsed, cfgLoaded.Config, logger, ipc.Request{
			Command: ipc.CommandSay,
			Text:    parsed.Text(),
		})
	case cli.CommandAdd:
		phrase, url := parsed.PhraseAndURL()
		return r.forwardOrLocal(ctx, parsed, cfgLoaded.Config, logger, ipc.Request{
			Command: ipc.CommandAdd,
			Phrase:  phrase,
			URL:     url,
		})
	case cli.CommandPhrases:
		return r.forwardOrLocal(ctx, parsed, cfgLoaded.Config, logger, ipc.Request{
			Command: ipc.CommandPhrases,
			Text:    parsed.Text(),
		})
	case cli.CommandExport:
		return r.commandExport(ctx, cfgLoaded.Config)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}
	writeDevices(r.Stdout, devices)
	return 0
}

// writeDevices prints one row per device; * marks the defaults leya listens
// on and speaks through.
func writeDevices(w io.Writer, devices []audio.Device) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tKIND\tID\tVOLUME\tSTATE\tNOTES")
	for _, dev := range devices {
		mark := ""
		if dev.Default {
			mark = "*"
		}
		var notes []string
		if dev.Monitor {
			notes = append(notes, "monitor")
		}
		if !dev.Available {
			notes = append(notes, "unplugged")
		}
		if dev.Muted {
			notes = append(notes, "muted")
		}
		if dev.Description != "" {
			notes = append(notes, strconv.Quote(dev.Description))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%%\t%s\t%s\n", mark, dev.Kind, dev.ID, dev.VolumePct, dev.State, strings.Join(notes, " "))
	}
	_ = tw.Flush()
}

func (r Runner) commandStatus(ctx context.Context, parsed cli.Parsed) int {
	req := ipc.Request{Command: ipc.CommandStatus}
	if parsed.Remote != "" {
		resp, err := callRemote(ctx, parsed.Remote, req)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, stateOrIdle(resp.State))
		return 0
	}

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, req, forwardTimeout)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintln(r.Stdout, stateOrIdle(resp.State))
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func stateOrIdle(state string) string {
	if state == "" {
		return "idle"
	}
	return state
}

// forwardOrLocal sends req to the running assistant, or to --remote, and
// falls back to a one-shot in-process assistant when nothing is listening.
func (r Runner) forwardOrLocal(ctx context.Context, parsed cli.Parsed, cfg config.Config, logger *slog.Logger, req ipc.Request) int {
	if parsed.Remote != "" {
		resp, err := callRemote(ctx, parsed.Remote, req)
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		return r.printResponse(resp)
	}

	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, req, sayTimeout)
		if handled {
			// A refused request still carries the prompts spoken before it failed.
			if err != nil && resp.Error == "" {
				fmt.Fprintf(r.Stderr, "error: %v\n", err)
				return 1
			}
			return r.printResponse(resp)
		}
	}

	asst, err := buildAssistant(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = asst.Close() }()
	stop := asst.run(ctx)
	defer stop()

	return r.printResponse(ipc.Dispatch(ctx, asst.controller, req))
}

func (r Runner) printResponse(resp ipc.Response) int {
	for _, prompt := range resp.Prompts {
		fmt.Fprintln(r.Stdout, prompt)
	}
	for _, phrase := range resp.Phrases {
		fmt.Fprintln(r.Stdout, phrase)
	}
	if resp.Message != "" && len(resp.Prompts) == 0 {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	if !resp.OK {
		if resp.Error != "" {
			fmt.Fprintf(r.Stderr, "error: %s\n", resp.Error)
		}
		return 1
	}
	return 0
}

func (r Runner) commandExport(ctx context.Context, cfg config.Config) int {
	path, err := config.ResolveStorePath(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	db, err := store.Open(ctx, path)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	if err := store.Export(ctx, db, r.Stdout); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func callRemote(ctx context.Context, endpoint string, req ipc.Request) (ipc.Response, error) {
	client, err := rpc.Dial(ctx, endpoint, remoteTimeout)
	if err != nil {
		return ipc.Response{}, err
	}
	defer func() { _ = client.Close() }()

	callCtx, cancel := context.WithTimeout(ctx, sayTimeout)
	defer cancel()
	return client.Call(callCtx, req)
}

func tryForward(ctx context.Context, socketPath string, req ipc.Request, timeout time.Duration) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, timeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return ipc.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
