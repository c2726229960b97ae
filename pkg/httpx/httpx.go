package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// The server can run on either net/http or fasthttp. Both engines serve the
// same http.Handler; the engine choice is a deployment tunable, not an API
// difference.

// Engine selects the HTTP serving stack.
type Engine string

const (
	EngineNetHTTP  Engine = "nethttp"
	EngineFastHTTP Engine = "fasthttp"
)

// ParseEngine normalizes a configured engine name. Empty means net/http.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nethttp", "net/http":
		return EngineNetHTTP, nil
	case "fasthttp":
		return EngineFastHTTP, nil
	}
	return "", fmt.Errorf("unknown http engine: %q", s)
}

// Server serves one handler on the selected engine.
type Server struct {
	engine Engine
	net    *netServer
	fast   *fastServer
}

// NewServer wraps handler for the given engine.
func NewServer(engine Engine, handler http.Handler) *Server {
	s := &Server{engine: engine}
	switch engine {
	case EngineFastHTTP:
		s.fast = newFastServer(handler)
	default:
		s.engine = EngineNetHTTP
		s.net = newNetServer(handler)
	}
	return s
}

// Engine returns the selected engine.
func (s *Server) Engine() Engine { return s.engine }

// ListenAndServe blocks serving on addr. certFile/keyFile empty means
// plaintext.
func (s *Server) ListenAndServe(addr, certFile, keyFile string) error {
	if s.fast != nil {
		return s.fast.listenAndServe(addr, certFile, keyFile)
	}
	return s.net.listenAndServe(addr, certFile, keyFile)
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.fast != nil {
		return s.fast.shutdown(ctx)
	}
	return s.net.shutdown(ctx)
}
