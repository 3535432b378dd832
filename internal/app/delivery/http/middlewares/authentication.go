package middlewares

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const sessionResolveTimeout = 5 * time.Second

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get(constvars.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, constvars.AuthorizationBearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, constvars.AuthorizationBearerPrefix))
}

// Authenticate resolves the bearer token into a live session and stores it in the request context.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

		token := bearerToken(r)
		if token == "" {
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), sessionResolveTimeout)
		defer cancel()

		session, err := m.AuthUsecase.ResolveSession(ctx, token)
		if err != nil {
			m.Log.Warn("Middlewares.Authenticate session rejected",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.Error(err),
			)
			utils.BuildErrorResponse(m.Log, w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(models.ContextWithSession(r.Context(), session)))
	})
}
