package app

import (
	"context"

	"chatsync/pkg/api"
	"chatsync/pkg/banner"
	"chatsync/pkg/httpx"
	"chatsync/pkg/logger"
	"chatsync/pkg/telemetry"
)

type serverHandle interface {
	Shutdown(ctx context.Context) error
}

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" && a.commit != "" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" && a.buildDate != "" {
		verStr += " @ " + a.buildDate
	}
	banner.PrintWithEff(a.eff, verStr)
}

// startHTTP builds the handler stack, starts the server on the configured
// engine in a goroutine and returns a channel that carries any fatal error.
func (a *App) startHTTP() (<-chan error, error) {
	handler := api.New(a.session, a.avatars, a.eff.Config).Router()
	handler = telemetry.Middleware(handler)

	engine, err := httpx.ParseEngine(a.eff.Config.Server.Engine)
	if err != nil {
		return nil, err
	}
	srv := httpx.NewServer(engine, handler)
	a.srv = srv

	logger.Info("http_starting", "addr", a.eff.Addr, "engine", string(engine))
	errCh := make(chan error, 1)
	go func() {
		cert := a.eff.Config.Server.TLS.CertFile
		key := a.eff.Config.Server.TLS.KeyFile
		errCh <- srv.ListenAndServe(a.eff.Addr, cert, key)
	}()
	return errCh, nil
}
