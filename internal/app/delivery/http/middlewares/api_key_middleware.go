package middlewares

import (
	"context"
	"crypto/subtle"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"net/http"

	"go.uber.org/zap"
)

const ContextAPIKeyAuth constvars.ContextKey = "api_key_auth"

func (m *Middlewares) validAPIKey(apiKey string) bool {
	expected := m.InternalConfig.App.SuperadminAPIKey
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) == 1
}

// RequireSuperadminAPIKey guards operator endpoints such as booking listing and payment overrides.
func (m *Middlewares) RequireSuperadminAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		apiKey := r.Header.Get(constvars.HeaderXAPIKey)

		if apiKey == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrAPIKeyRequired(nil))
			return
		}

		if !m.validAPIKey(apiKey) {
			utils.LogSecurityEvent(m.Log, "invalid_api_key", requestID, utils.SecuritySeverityHigh,
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		m.Log.Info("API Key authentication successful",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
		)

		ctx := context.WithValue(r.Context(), ContextAPIKeyAuth, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIKeyAuth marks the request as API key authenticated when a valid key is present
// and lets requests without a key through untouched.
func (m *Middlewares) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(constvars.HeaderXAPIKey)
		if apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !m.validAPIKey(apiKey) {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrInvalidAPIKey(nil))
			return
		}

		ctx := context.WithValue(r.Context(), ContextAPIKeyAuth, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
