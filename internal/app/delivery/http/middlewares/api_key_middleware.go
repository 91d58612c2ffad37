package middlewares

import (
	"crypto/subtle"
	"net/http"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"slotbook-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// RequireInboundAPIKey guards the inbound webhook. With no key configured
// every request passes.
func (m *Middlewares) RequireInboundAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := m.InternalConfig.Transport.InboundAPIKey
		if expected == "" {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(constvars.HeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			m.Log.Warn("inbound request rejected",
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}
