package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// MethodAPIKey indicates authentication via the X-API-Key header.
const MethodAPIKey = "apikey"

// Identity is the authenticated caller attached to a request's context.
type Identity struct {
	Subject string
	Role    string
	Method  string
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the Identity stored in ctx, or nil if none.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// Middleware authenticates the caller via the X-API-Key header and stores
// the resulting Identity in the request context. Requests without a valid
// key are rejected with 401. When rl is non-nil, it throttles authentication
// attempts per source IP, rejecting with 429 once the caller's failed
// attempts within the window exceed its limit.
func Middleware(apikeyAuth *APIKeyAuthenticator, rl *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			if rl != nil {
				result, err := rl.Check(r.Context(), ip)
				if err != nil {
					logger.Error("auth rate limit check failed", "error", err)
				} else if !result.Allowed {
					retryAfter := int(time.Until(result.RetryAt).Seconds())
					if retryAfter < 1 {
						retryAfter = 1
					}
					w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
					respondErr(w, http.StatusTooManyRequests, "rate_limited", "too many authentication attempts")
					return
				}
			}

			rawKey := r.Header.Get("X-API-Key")
			identity, err := apikeyAuth.Authenticate(rawKey)
			if err != nil {
				logger.Warn("api key authentication failed", "error", err)
				if rl != nil {
					_ = rl.Record(r.Context(), ip)
				}
				respondErr(w, http.StatusUnauthorized, "unauthorized", "invalid API key")
				return
			}
			if rl != nil {
				_ = rl.Reset(r.Context(), ip)
			}

			ctx := NewContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondErr(w http.ResponseWriter, status int, errStr, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errStr,
		"message": message,
	})
}
