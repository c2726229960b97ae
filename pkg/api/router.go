package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatsync/pkg/config"
	"chatsync/pkg/history"
	"chatsync/pkg/identity"
	"chatsync/pkg/timeline"
)

// Server holds the handler dependencies. One server fronts one session; the
// engine itself is single-conversation, the HTTP layer is just its operator
// surface plus the push ingress.
type Server struct {
	session *timeline.Session
	avatars *identity.Resolver
	limits  Limits
	pool    *limiterPool
	cors    []string
}

// New builds a Server from the effective config.
func New(sess *timeline.Session, avatars *identity.Resolver, cfg *config.Config) *Server {
	s := &Server{
		session: sess,
		avatars: avatars,
		limits:  limitsFromConfig(cfg),
	}
	if cfg != nil {
		s.cors = cfg.Security.CORS.AllowedOrigins
		s.pool = newLimiterPool(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst)
	} else {
		s.pool = newLimiterPool(0, 0)
	}
	return s
}

// Router assembles all routes with middleware applied.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !history.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"archive not ready"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	// operator actions
	v1.HandleFunc("/session/open", s.openConversation).Methods(http.MethodPost)
	v1.HandleFunc("/session/send", s.sendMessage).Methods(http.MethodPost)
	v1.HandleFunc("/session/load-older", s.loadOlder).Methods(http.MethodPost)
	v1.HandleFunc("/session/scroll", s.scroll).Methods(http.MethodPost)

	// read side
	v1.HandleFunc("/session/timeline", s.getTimeline).Methods(http.MethodGet)
	v1.HandleFunc("/session/viewport", s.getViewport).Methods(http.MethodGet)
	v1.HandleFunc("/session/grouping", s.getGrouping).Methods(http.MethodGet)
	v1.HandleFunc("/session/ack/{id}", s.getAck).Methods(http.MethodGet)

	// push ingress (gateway-facing)
	v1.Handle("/session/push", pushAuth(http.HandlerFunc(s.push))).Methods(http.MethodPost)

	// archive introspection
	v1.HandleFunc("/chats", s.listChats).Methods(http.MethodGet)
	v1.HandleFunc("/chats/{id}/count", s.chatCount).Methods(http.MethodGet)

	// identity
	v1.HandleFunc("/avatars/{identity}", s.getAvatar).Methods(http.MethodGet)

	return s.corsMiddleware(s.rateLimitMiddleware(r))
}
