package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const corsMaxAge = 10 * time.Minute

var (
	corsAllowHeaders  = strings.Join([]string{"Authorization", "Content-Type", "X-Locale", "X-Request-ID"}, ", ")
	corsAllowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}, ",")
	corsExposeHeaders = strings.Join([]string{"X-Request-ID", "Retry-After"}, ", ")
)

type corsPolicy struct {
	origins  map[string]struct{}
	allowAll bool
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin. A
// wildcard policy answers "*" and never allows credentials.
func (p corsPolicy) allowOrigin(origin string) (value string, credentials bool) {
	if _, ok := p.origins[origin]; ok {
		return origin, true
	}
	if p.allowAll {
		return "*", false
	}
	return "", false
}

// CORS answers browser preflights and tags responses for listed origins.
// Bearer tokens travel in headers, so "*" is safe for public deployments.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := corsPolicy{origins: make(map[string]struct{}, len(allowedOrigins))}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			policy.allowAll = true
			continue
		}
		policy.origins[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" {
				if value, credentials := policy.allowOrigin(origin); value != "" {
					h.Set("Access-Control-Allow-Origin", value)
					h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
					if credentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if r.Method == http.MethodOptions {
						h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
						h.Set("Access-Control-Allow-Methods", corsAllowMethods)
						h.Set("Access-Control-Max-Age", strconv.Itoa(int(corsMaxAge.Seconds())))
					}
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
