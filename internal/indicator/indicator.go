// Package indicator shows leya's state on screen and plays its audio cues.
package indicator

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/hypr"
)

// Controller is the session-facing indicator contract.
type Controller interface {
	ShowListening(context.Context)
	ShowPrompt(context.Context, string)
	ShowError(context.Context, string)
	CueExecuted(context.Context)
	CueSuggest(context.Context)
	CueNoMatch(context.Context)
	Hide(context.Context)
}

type tone int

const (
	toneListening tone = iota
	tonePrompt
	toneError
)

const (
	promptTimeoutMS       = 4000
	fallbackErrorTimeout  = 1200
	surfaceCommandTimeout = 400 * time.Millisecond
)

// notice is one message drawn on the indicator surface.
type notice struct {
	tone      tone
	text      string
	timeoutMS int
}

// surface draws and clears notices.
type surface interface {
	show(context.Context, notice) error
	hide(context.Context) error
}

// Notifier draws notices on Hyprland or a freedesktop notification server
// and plays cues through PulseAudio. Failures are logged at debug level and
// never reach the session.
type Notifier struct {
	visible       bool
	sound         bool
	listenTimeout int
	errorTimeout  int
	surface       surface
	text          messages
	logger        *slog.Logger
	play          func([]int16) error
	cueMu         sync.Mutex
}

// New builds a Notifier from cfg. The listening notice stays up for the
// wake word's active window.
func New(cfg config.Config, logger *slog.Logger) *Notifier {
	n := &Notifier{
		visible:       cfg.Indicator.Enable,
		sound:         cfg.Indicator.SoundEnable,
		listenTimeout: cfg.ActiveWindowMS,
		errorTimeout:  cfg.Indicator.ErrorTimeoutMS,
		surface:       hyprSurface{},
		text:          messagesFor(os.Getenv("LANG")),
		logger:        logger,
		play:          playPulse,
	}
	if n.errorTimeout <= 0 {
		n.errorTimeout = fallbackErrorTimeout
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Indicator.Backend), "desktop") {
		n.surface = newDesktopSurface(cfg.Indicator.DesktopAppName)
	}
	return n
}

// ShowListening signals that the command window is open.
func (n *Notifier) ShowListening(ctx context.Context) {
	n.cue(ctx, cueListen)
	n.show(ctx, notice{tone: toneListening, text: n.text.listening, timeoutMS: n.listenTimeout})
}

// ShowPrompt mirrors a spoken prompt on screen.
func (n *Notifier) ShowPrompt(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	n.show(ctx, notice{tone: tonePrompt, text: text, timeoutMS: promptTimeoutMS})
}

// ShowError shows text, or the generic failure message when text is empty.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = n.text.failed
	}
	n.show(ctx, notice{tone: toneError, text: text, timeoutMS: n.errorTimeout})
}

func (n *Notifier) CueExecuted(ctx context.Context) { n.cue(ctx, cueExecuted) }
func (n *Notifier) CueSuggest(ctx context.Context)  { n.cue(ctx, cueSuggest) }
func (n *Notifier) CueNoMatch(ctx context.Context)  { n.cue(ctx, cueNoMatch) }

// Hide clears the current notice.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.visible {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, surfaceCommandTimeout)
	defer cancel()
	n.debug("indicator hide failed", n.surface.hide(ctx))
}

func (n *Notifier) show(ctx context.Context, msg notice) {
	if !n.visible {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, surfaceCommandTimeout)
	defer cancel()
	n.debug("indicator show failed", n.surface.show(ctx, msg))
}

// cue plays kind in the background. Cues never overlap.
func (n *Notifier) cue(ctx context.Context, kind cueKind) {
	if !n.sound {
		return
	}
	samples := cueSamples(kind)
	if len(samples) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		n.cueMu.Lock()
		defer n.cueMu.Unlock()
		if ctx.Err() != nil {
			return
		}
		n.debug("indicator cue failed", n.play(samples))
	}()
}

func (n *Notifier) debug(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

// hyprSurface draws notices with hyprctl's notify dispatcher.
type hyprSurface struct{}

var hyprStyle = map[tone]struct {
	icon  int
	color string
}{
	toneListening: {icon: 1, color: "rgb(89b4fa)"},
	tonePrompt:    {icon: 1, color: "rgb(cba6f7)"},
	toneError:     {icon: 3, color: "rgb(f38ba8)"},
}

func (hyprSurface) show(ctx context.Context, msg notice) error {
	style := hyprStyle[msg.tone]
	return hypr.Notify(ctx, style.icon, msg.timeoutMS, style.color, msg.text)
}

func (hyprSurface) hide(ctx context.Context) error {
	return hypr.DismissNotify(ctx)
}

// Nop is a Controller that does nothing.
type Nop struct{}

func (Nop) ShowListening(context.Context)      {}
func (Nop) ShowPrompt(context.Context, string) {}
func (Nop) ShowError(context.Context, string)  {}
func (Nop) CueExecuted(context.Context)        {}
func (Nop) CueSuggest(context.Context)         {}
func (Nop) CueNoMatch(context.Context)         {}
func (Nop) Hide(context.Context)               {}
