package middleware

import (
	"net/http"

	"github.com/2beens/rundash/internal/telemetry/metrics"
	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SyncTokenHeader = "X-Sync-Token"

// SyncTokenCheck guards the sync endpoints. With an empty hash every request
// passes; otherwise the X-Sync-Token header must match the bcrypt hash.
func SyncTokenCheck(syncTokenHash string, metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if syncTokenHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.syncToken")
			token := r.Header.Get(SyncTokenHeader)
			if token == "" || !pkg.CheckPasswordHash(token, syncTokenHash) {
				reqIp, _ := pkg.ReadUserIP(r)
				log.Warnf("unauthorized %s request from [%s], token present: %t", r.URL.Path, reqIp, token != "")
				if metricsManager != nil {
					metricsManager.CounterUnauthorizedSyncs.Inc()
				}
				span.SetStatus(codes.Error, "unauthorized")
				span.End()
				http.Error(w, "no can do", http.StatusUnauthorized)
				return
			}
			span.SetStatus(codes.Ok, "ok")
			span.End()

			next.ServeHTTP(w, r)
		})
	}
}
