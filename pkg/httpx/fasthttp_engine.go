package httpx

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

type fastServer struct {
	srv *fasthttp.Server
}

func newFastServer(h http.Handler) *fastServer {
	return &fastServer{srv: &fasthttp.Server{
		Handler: fasthttpadaptor.NewFastHTTPHandler(h),
		// the push ingress takes JSON bodies only; keep the cap modest
		MaxRequestBodySize: 4 * 1024 * 1024,
	}}
}

func (f *fastServer) listenAndServe(addr, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return f.srv.ListenAndServeTLS(addr, certFile, keyFile)
	}
	return f.srv.ListenAndServe(addr)
}

func (f *fastServer) shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- f.srv.Shutdown() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
