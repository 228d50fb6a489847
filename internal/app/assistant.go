package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/rbright/leya/internal/actions"
	"github.com/rbright/leya/internal/audio"
	"github.com/rbright/leya/internal/config"
	"github.com/rbright/leya/internal/dispatch"
	"github.com/rbright/leya/internal/index"
	"github.com/rbright/leya/internal/indicator"
	"github.com/rbright/leya/internal/lexical"
	"github.com/rbright/leya/internal/registry"
	"github.com/rbright/leya/internal/resolve"
	"github.com/rbright/leya/internal/session"
	"github.com/rbright/leya/internal/store"
)

// assistant is the wired object graph behind serve, listen, and the local
// fallbacks of say/add/phrases.
type assistant struct {
	commands   store.Commands
	report     registry.LoadReport
	engine     *resolve.Engine
	dispatcher *dispatch.Dispatcher
	controller *session.Controller
}

func buildAssistant(ctx context.Context, cfg config.Config, logger *slog.Logger) (*assistant, error) {
	normalizer, err := lexical.New(cfg.Language)
	if err != nil {
		return nil, err
	}

	commands := openCommands(ctx, cfg, logger)

	sites := make([]registry.Site, 0, len(cfg.Sites))
	for _, site := range cfg.Sites {
		sites = append(sites, registry.Site{Name: site.Name, URL: site.URL})
	}
	base := registry.Compose(dispatch.BuiltinPhrases(), sites, cfg.Match.ConfirmToken)
	reg, report := registry.Load(ctx, logger, base, commands)

	engine := resolve.New(reg, index.New(normalizer), resolve.Options{
		ExecuteThreshold: cfg.Match.ExecuteThreshold,
		SuggestThreshold: cfg.Match.SuggestThreshold,
		FuzzyCutoff:      cfg.Match.FuzzyCutoff,
		ConfirmToken:     cfg.Match.ConfirmToken,
	}, logger)
	engine.Retrain()

	listenTimeout := time.Duration(cfg.ListenTimeoutMS) * time.Millisecond
	runner := actions.NewRunner(cfg, audio.PulseMixer{}, logger)
	dispatcher := dispatch.New(engine, normalizer, commands, runner, dispatch.Options{
		Sites:         sites,
		VolumeStep:    cfg.Actions.VolumeStepPct,
		ListenTimeout: listenTimeout,
	}, logger)

	var ind session.Indicator = indicator.Nop{}
	if cfg.Indicator.Enable || cfg.Indicator.SoundEnable {
		ind = indicator.New(cfg, logger)
	}
	controller := session.NewController(
		logger,
		dispatcher,
		engine,
		actions.NewSpeaker(cfg.Actions.Speak, logger),
		ind,
		session.Options{
			WakeWord:      cfg.WakeWord,
			ActiveWindow:  time.Duration(cfg.ActiveWindowMS) * time.Millisecond,
			ListenTimeout: listenTimeout,
		},
	)

	if logger != nil {
		logger.Info("assistant ready",
			"language", normalizer.Language(),
			"builtin_phrases", report.Builtin,
			"custom_phrases", report.Custom,
			"degraded", report.Degraded,
		)
	}
	return &assistant{
		commands:   commands,
		report:     report,
		engine:     engine,
		dispatcher: dispatcher,
		controller: controller,
	}, nil
}

// openCommands opens the command store, degrading to an offline store so the
// built-in commands keep working.
func openCommands(ctx context.Context, cfg config.Config, logger *slog.Logger) store.Commands {
	path, err := config.ResolveStorePath(cfg.Store.Path)
	if err == nil {
		var db *store.DB
		db, err = store.Open(ctx, path)
		if err == nil {
			return db
		}
	}
	if logger != nil {
		logger.Warn("command store unavailable", "error", err.Error())
	}
	return store.Offline{Err: err}
}

func (a *assistant) Close() error {
	if a == nil || a.commands == nil {
		return nil
	}
	return a.commands.Close()
}

// run starts the session loop and returns a function that stops it.
func (a *assistant) run(ctx context.Context) func() {
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.controller.Run(loopCtx) }()
	return func() {
		cancel()
		<-done
	}
}
