package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/leya/internal/config"
)

// Speaker reads prompts aloud through the configured speech command. Prompts
// are spoken one at a time.
type Speaker struct {
	command config.CommandConfig
	logger  *slog.Logger

	mu sync.Mutex
}

// NewSpeaker builds a Speaker. An empty command makes Say a no-op.
func NewSpeaker(command config.CommandConfig, logger *slog.Logger) *Speaker {
	return &Speaker{command: command, logger: logger}
}

// Say speaks text and returns when playback finishes. The text replaces a
// {text} placeholder or is appended as the last argument.
func (s *Speaker) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || len(s.command.Argv) == 0 {
		return nil
	}

	argv := s.argv(text)
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := runCommandWithInput(runCtx, argv, ""); err != nil {
		if s.logger != nil {
			s.logger.Error("speech synthesis failed", "error", err.Error())
		}
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

func (s *Speaker) argv(text string) []string {
	for _, arg := range s.command.Argv {
		if strings.Contains(arg, "{text}") {
			return s.command.Expand(map[string]string{"text": text})
		}
	}
	return append(append([]string(nil), s.command.Argv...), text)
}
