// pkg/middleware/tenant.go
package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxTenantKey struct{}

// WithTenant resolves the tenant (server) ID for the request and stores it in
// the context. Clients send it as the X-Tenant-ID header; a ?tenant= query
// parameter is accepted as a fallback for browser tooling. Health and metrics
// endpoints pass through without tenant context.
func WithTenant(defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz", "/metrics":
				next.ServeHTTP(w, r)
				return
			}
			id := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
			if id == "" {
				id = strings.TrimSpace(r.URL.Query().Get("tenant"))
			}
			if id == "" {
				id = defaultTenant
			}
			if id == "" {
				http.Error(w, "unknown tenant", http.StatusNotFound)
				return
			}
			ctx := context.WithValue(r.Context(), ctxTenantKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TenantFrom(ctx context.Context) string {
	if v := ctx.Value(ctxTenantKey{}); v != nil {
		return v.(string)
	}
	return ""
}
