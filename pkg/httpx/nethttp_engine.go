package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type netServer struct {
	srv *http.Server
}

func newNetServer(h http.Handler) *netServer {
	return &netServer{srv: &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

func (n *netServer) listenAndServe(addr, certFile, keyFile string) error {
	n.srv.Addr = addr
	var err error
	if certFile != "" && keyFile != "" {
		err = n.srv.ListenAndServeTLS(certFile, keyFile)
	} else {
		err = n.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (n *netServer) shutdown(ctx context.Context) error {
	return n.srv.Shutdown(ctx)
}
