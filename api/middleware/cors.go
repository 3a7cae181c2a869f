package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev frontend
	"http://localhost:5001", // local dev same-origin
}

// CORS returns middleware that applies the portal's allowed origin policy.
// Tenant custom domains are matched by the wildcard https origins.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   defaultCORSOrigins,
		AllowOriginFunc:  allowTenantOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// allowTenantOrigin admits any https origin; tenant domains are not known
// ahead of time. Auth still rides on bearer tokens, not cookies.
func allowTenantOrigin(r *http.Request, origin string) bool {
	if len(origin) >= 8 && origin[:8] == "https://" {
		return true
	}
	for _, allowed := range defaultCORSOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
