package api

import (
	"net/http"
	"strings"

	"chatsync/pkg/config"
	"chatsync/pkg/utils"
)

// corsMiddleware applies the configured allowed origins. No configured
// origins means same-origin deployments only; nothing is reflected back.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && len(s.cors) > 0 {
			allowed := false
			for _, o := range s.cors {
				if o == "*" || strings.EqualFold(o, origin) {
					allowed = true
					break
				}
			}
			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// pushAuth guards the push ingress with the configured bearer tokens. With
// no tokens configured the endpoint is open (local gateway deployments).
func pushAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens := config.GetPushTokens()
		if len(tokens) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token == "" {
			token = r.Header.Get("X-Push-Token")
		}
		if _, ok := tokens[token]; !ok {
			utils.JSONError(w, http.StatusUnauthorized, "invalid push token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
