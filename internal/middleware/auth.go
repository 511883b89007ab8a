package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	TenantKey contextKey = "tenant"
	APIKeyKey contextKey = "api_key"
)

// publicPaths skip authentication and rate limiting.
var publicPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/readyz":  true,
	"/metrics": true,
}

// APIKeyAuth validates API key from Authorization header. An empty key map
// disables authentication.
func APIKeyAuth(validKeys map[string]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(validKeys) == 0 || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// constant-time comparison
			var tenant string
			for t, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					tenant = t
					break
				}
			}
			if tenant == "" {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), TenantKey, tenant)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenantFromContext extracts tenant from context
func GetTenantFromContext(ctx context.Context) string {
	if tenant, ok := ctx.Value(TenantKey).(string); ok {
		return tenant
	}
	return ""
}

// RequireValidTenant ensures the {tenant} URL parameter is well formed and
// matches the authenticated tenant. Mount it inside a route that declares {tenant}.
func RequireValidTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlTenant := chi.URLParam(r, "tenant")
		if err := ValidateTenantID(urlTenant); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		authTenant := GetTenantFromContext(r.Context())
		if authTenant != "" && authTenant != urlTenant {
			http.Error(w, "tenant mismatch", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
