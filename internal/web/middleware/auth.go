package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/mkarpin/clubsite/internal/config"
)

// AdminGate returns middleware that validates the X-Admin-Password header
// against the configured admin password. There are no accounts or tokens;
// the club runs on one shared password, checked per request.
// If no password is configured, all admin requests are rejected.
func AdminGate(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AdminPassword == "" {
				slog.Warn("auth: admin endpoints disabled, no password configured",
					"path", r.URL.Path,
					"method", r.Method,
				)
				http.Error(w, `{"error":"admin access is not configured","code":"AUTH_DISABLED"}`, http.StatusForbidden)
				return
			}

			password := r.Header.Get("X-Admin-Password")
			if password == "" {
				slog.Warn("auth: missing admin password",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"missing admin password","code":"AUTH_MISSING"}`, http.StatusUnauthorized)
				return
			}

			if !PasswordMatches(password, cfg.AdminPassword) {
				slog.Warn("auth: wrong admin password",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"wrong admin password","code":"AUTH_INVALID"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PasswordMatches compares a submitted password with the configured one in
// constant time.
func PasswordMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
