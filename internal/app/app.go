package app

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"chatsync/pkg/config"
	"chatsync/pkg/history"
	"chatsync/pkg/identity"
	"chatsync/pkg/logger"
	"chatsync/pkg/state"
	"chatsync/pkg/timeline"

	"chatsync/internal/sweeper"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	session *timeline.Session
	avatars *identity.Resolver
	srv     serverHandle

	sweepCancel context.CancelFunc
}

// New initializes resources that do not require a running context (archive,
// runtime tokens, session engine). It does not start the HTTP server; call
// Run to start it and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	// runtime push tokens
	runtimeCfg := &config.RuntimeConfig{PushTokens: map[string]struct{}{}}
	for _, t := range eff.Config.Security.PushTokens {
		runtimeCfg.PushTokens[t] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	// runtime folder layout
	if err := state.Init(eff.ArchivePath); err != nil {
		return nil, fmt.Errorf("failed to prepare state dirs under %s: %w", eff.ArchivePath, err)
	}

	// the pebble dir lives under store/, beside the state/ layout
	if err := history.Open(state.PathsVar.Store); err != nil {
		return nil, fmt.Errorf("failed to open archive at %s: %w", state.PathsVar.Store, err)
	}

	a := &App{eff: eff, version: version, commit: commit, buildDate: buildDate}
	a.avatars = buildAvatars(eff.Config)
	a.session = timeline.NewSession(timeline.Config{
		PageSize:      eff.Config.Session.PageSize,
		QueueCapacity: eff.Config.Session.QueueCapacity,
		ItemHeight:    eff.Config.Session.ItemHeight,
		Overscan:      eff.Config.Session.Overscan,
	}, history.Archive{}, history.LoopbackSender{}, a.avatars)
	return a, nil
}

// buildAvatars wires the resolver when a profile-picture backend is
// configured. No endpoint means no avatar resolution.
func buildAvatars(cfg *config.Config) *identity.Resolver {
	if cfg == nil || cfg.Avatars.Endpoint == "" {
		return nil
	}
	lookup := identity.NewHTTPLookup(cfg.Avatars.Endpoint)
	return identity.NewResolverWithLimit(lookup, cfg.Avatars.RPS, cfg.Avatars.Burst)
}

// Run starts the session loop, sweeper and HTTP server, and blocks until
// ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.session.Start()

	cancel, err := sweeper.Start(ctx, a.eff.Config.Sweeper, a.avatars)
	if err != nil {
		return err
	}
	a.sweepCancel = cancel

	a.printBanner()

	errCh, err := a.startHTTP()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	timeout := a.eff.Config.Security.ShutdownTimeout.Duration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Warn("http_shutdown_error", "error", err)
		}
	}
	if a.sweepCancel != nil {
		a.sweepCancel()
	}
	a.session.Close()
	if err := history.Close(); err != nil {
		logger.Warn("archive_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}
