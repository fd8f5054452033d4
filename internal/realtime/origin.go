// Package realtime normalizes and validates HTTP origins for WebSocket
// requests to enforce configured access control.
package realtime

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// OriginPolicy decides which HTTP origins may open WebSocket connections.
// Origins are normalized to scheme://host before comparison; "*" in the
// configured list allows all origins.
type OriginPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
	log      zerolog.Logger
}

// NewOriginPolicy builds a policy from the configured origin list, ignoring
// entries that do not parse as scheme://host.
func NewOriginPolicy(origins []string, log zerolog.Logger) *OriginPolicy {
	policy := &OriginPolicy{allowed: make(map[string]struct{}), log: log}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			policy.allowAll = true
			continue
		}
		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Warn().Str("origin", origin).Msg("ignoring invalid origin in configuration")
			continue
		}
		policy.allowed[normalized] = struct{}{}
	}
	return policy
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// Check reports whether the request's origin is allowed, logging rejections.
func (p *OriginPolicy) Check(r *http.Request) bool {
	if p.isAllowed(r) {
		return true
	}
	p.log.Warn().Str("origin", r.Header.Get("Origin")).Msg("blocked websocket connection from disallowed origin")
	return false
}

func (p *OriginPolicy) isAllowed(r *http.Request) bool {
	originHeader := r.Header.Get("Origin")
	if originHeader == "" {
		return false
	}
	normalized, ok := normalizeOrigin(originHeader)
	if !ok {
		return false
	}
	if p.allowAll {
		return true
	}
	_, exists := p.allowed[normalized]
	return exists
}
