package ipc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Commands understood by the serving process.
const (
	CommandStatus  = "status"
	CommandSay     = "say"
	CommandAdd     = "add"
	CommandPhrases = "phrases"
)

var validate = validator.New()

var (
	// ErrUnknownCommand marks a request naming no known command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidRequest marks a known command missing its arguments.
	ErrInvalidRequest = errors.New("invalid request")
)

// Request is one newline-delimited JSON command. Text carries the utterance
// for say and the filter for phrases.
type Request struct {
	Command string `json:"command"`
	Text    string `json:"text,omitempty"`
	Phrase  string `json:"phrase,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Response answers a Request. Decision fields are set for say.
type Response struct {
	OK       bool     `json:"ok"`
	State    string   `json:"state,omitempty"`
	Message  string   `json:"message,omitempty"`
	Prompts  []string `json:"prompts,omitempty"`
	Phrases  []string `json:"phrases,omitempty"`
	Decision string   `json:"decision,omitempty"`
	Phrase   string   `json:"phrase,omitempty"`
	Score    float64  `json:"score,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Validate checks that r names a known command and carries what it needs:
// say needs text, add needs a phrase and a URL the command store accepts.
func (r Request) Validate() error {
	switch r.Command {
	case CommandStatus, CommandPhrases:
		return nil
	case CommandSay:
		if strings.TrimSpace(r.Text) == "" {
			return fmt.Errorf("%w: say requires text", ErrInvalidRequest)
		}
		return nil
	case CommandAdd:
		if strings.TrimSpace(r.Phrase) == "" {
			return fmt.Errorf("%w: add requires a phrase", ErrInvalidRequest)
		}
		if err := validate.Var(strings.TrimSpace(r.URL), "required,url"); err != nil {
			return fmt.Errorf("%w: add requires a url, got %q", ErrInvalidRequest, r.URL)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, r.Command)
	}
}

// Handler processes one validated request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Dispatch validates req and hands it to h. Invalid requests are answered
// here and never reach h.
func Dispatch(ctx context.Context, h Handler, req Request) Response {
	if err := req.Validate(); err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return h.Handle(ctx, req)
}
