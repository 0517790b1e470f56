package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/snipbot/internal/config"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/providers/evaluator"
	"github.com/sandevgo/snipbot/internal/providers/github"
	"github.com/sandevgo/snipbot/internal/service/calc"
	"github.com/sandevgo/snipbot/internal/service/command"
	"github.com/sandevgo/snipbot/internal/service/guard"
	"github.com/sandevgo/snipbot/internal/service/inspect"
	"github.com/sandevgo/snipbot/internal/service/resolver"
	"github.com/sandevgo/snipbot/internal/service/session"
	"github.com/sandevgo/snipbot/internal/transport/cli"
	"github.com/sandevgo/snipbot/internal/transport/telegram"
	"github.com/sandevgo/snipbot/pkg/log"
	"github.com/sandevgo/snipbot/pkg/retry"
	"github.com/sandevgo/snipbot/pkg/srv"
)

var errNoTransport = errors.New("no transport enabled")

// shared holds the platform-independent pieces every transport is built on.
type shared struct {
	cfg       *config.AppConfig
	guard     *guard.Guard
	fetcher   core.BlobFetcher
	evaluator core.Evaluator
}

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	ghCfg := config.NewGitHubConfig(ctx)

	// 2. Session state and providers
	deps := shared{
		cfg:       appCfg,
		guard:     guard.New(),
		fetcher:   github.NewClient(ghCfg, retry.NewDefaultConfig()),
		evaluator: evaluator.New(),
	}

	// 3. Transports
	transports, err := initTransports(ctx, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(ctx context.Context, deps shared) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if deps.cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		tg, err := initTelegram(ctx, deps, tgCfg)
		if err != nil {
			return nil, err
		}
		services = append(services, tg...)
	}

	// Local console
	if deps.cfg.IsCLISelected() {
		console, err := cli.NewConsole(config.GetRuntimePath(), deps.cfg.MaxAttachmentSize)
		if err != nil {
			return nil, err
		}
		p := newPipeline(ctx, deps, console)
		console.Attach(cli.Handlers{
			Dispatcher: p.dispatcher,
			Router:     p.router,
			Controls:   p.registry,
			Views:      p.view,
		})
		services = append(services, console, p.cleanup())
	}

	if len(services) == 0 {
		return nil, errNoTransport
	}
	return services, nil
}

func initTelegram(ctx context.Context, deps shared, tgCfg *config.TelegramConfig) ([]srv.Service, error) {
	api, err := telegram.NewAPI(tgCfg)
	if err != nil {
		return nil, err
	}
	messenger := telegram.NewMessenger(api, deps.cfg.MaxAttachmentSize)
	p := newPipeline(ctx, deps, messenger)

	bot := telegram.NewBot(ctx, api, tgCfg, messenger, telegram.Handlers{
		Dispatcher: p.dispatcher,
		Router:     p.router,
		Controls:   p.registry,
		Views:      p.view,
	})

	return []srv.Service{bot, p.cleanup()}, nil
}

// pipeline is the detection stack bound to one messenger.
type pipeline struct {
	dispatcher *session.Dispatcher
	router     *command.Router
	registry   *session.Registry
	view       *inspect.View
}

func newPipeline(ctx context.Context, deps shared, messenger core.Messenger) *pipeline {
	view := inspect.NewView(deps.guard, messenger, deps.cfg.InspectTimeout)
	registry := session.NewRegistry()
	controller := session.NewController(deps.guard, messenger, view, registry, session.Options{
		PacingDelay:    deps.cfg.PacingDelay,
		ControlTimeout: deps.cfg.ControlTimeout,
	})

	detectors := session.DefaultDetectors(
		deps.cfg.IsDetectorEnabled,
		resolver.NewCodeBlock(),
		resolver.NewAttachment(messenger, deps.cfg.MaxAttachmentSize),
		resolver.NewGitHubLink(deps.fetcher, messenger),
	)

	var responders []session.Responder
	if deps.cfg.IsDetectorEnabled(config.DetectorCalc) {
		responders = append(responders, calc.NewResponder(deps.evaluator, messenger))
	}

	enabled := make([]string, 0, len(detectors)+len(responders))
	for _, d := range detectors {
		enabled = append(enabled, d.Name)
	}
	for _, r := range responders {
		enabled = append(enabled, r.Name())
	}
	log.FromCtx(ctx).Debug().Strs("detectors", enabled).Msgf("%T pipeline ready", messenger)

	return &pipeline{
		dispatcher: session.NewDispatcher(controller, detectors, responders...),
		router:     command.New(command.NewCommands(enabled, deps.guard, registry)),
		registry:   registry,
		view:       view,
	}
}

// cleanup releases open inspection views on shutdown.
func (p *pipeline) cleanup() srv.Service {
	return srv.NewCleanup(func() error {
		p.view.CloseAll()
		return nil
	})
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
