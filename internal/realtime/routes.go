// Package realtime wires the HTTP handlers into a ServeMux.
package realtime

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/taskboard/realtime/internal/auth"
	"github.com/taskboard/realtime/internal/config"
)

// SetupRoutes configures and returns the application's HTTP routes: the
// health check and the authenticated WebSocket endpoint.
func SetupRoutes(hub *Hub, verifier *auth.Verifier, cfg config.Config, log zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.Handle("/ws", NewWebSocketHandler(hub, verifier, cfg, log))
	return mux
}
