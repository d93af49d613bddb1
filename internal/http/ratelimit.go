package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sympauthy/sympauthy/internal/observability/logger"
	"github.com/sympauthy/sympauthy/internal/rate"
)

// WithRateLimit aplica un limiter por IP + nombre de operación. Un limiter
// nil desactiva el middleware.
func WithRateLimit(limiter rate.Limiter, op string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := op + ":" + clientIP(r)
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// El limiter caído no voltea el endpoint.
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				WriteError(w, http.StatusTooManyRequests, "rate_limited", "demasiados intentos, reintentá más tarde")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
