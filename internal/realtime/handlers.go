// Package realtime exposes the HTTP surface: the authenticated WebSocket
// upgrade and the health check.
package realtime

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/taskboard/realtime/internal/auth"
	"github.com/taskboard/realtime/internal/config"
)

// NewWebSocketHandler returns the /ws handler. The bearer credential is
// verified before the upgrade; a connection that fails verification is
// rejected with 401 and never reaches the hub. On success the connection is
// upgraded and handed to the hub, which registers the session and starts the
// pumps.
func NewWebSocketHandler(hub *Hub, verifier *auth.Verifier, cfg config.Config, log zerolog.Logger) http.HandlerFunc {
	policy := NewOriginPolicy(cfg.AllowedOrigins, log)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     policy.Check,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		identity, err := verifier.Verify(r.Context(), bearerCredential(r))
		if err != nil {
			log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("rejecting connection")
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		clientLog := log.With().Str("remote_addr", conn.RemoteAddr().String()).Logger()
		client := newClient(conn, hub, cfg, clientLog)
		select {
		case hub.register <- &registration{client: client, identity: identity}:
		case <-hub.ctx.Done():
			_ = client.Close()
		}
	}
}

// bearerCredential extracts the connect-time credential: the Authorization
// header when present, otherwise the token query parameter.
func bearerCredential(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// HealthHandler provides a simple health check endpoint that returns server
// status as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Collaboration server is running!")
}
